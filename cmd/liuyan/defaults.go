package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Relay plugin schema.
	viper.SetDefault("platform_name", "aiocqhttp")
	viper.SetDefault("send_to_users", true)
	viper.SetDefault("send_to_groups", true)
	viper.SetDefault("developer_user_ids", []string{})
	viper.SetDefault("developer_group_ids", []string{})
	viper.SetDefault("destination_umo", "")
	viper.SetDefault("render_image", false)

	// State
	viper.SetDefault("data_dir", "data/plugin_data/astrbot_plugin_liuyan")

	// OneBot endpoint
	viper.SetDefault("onebot.ws_url", "")
	viper.SetDefault("onebot.access_token", "")
	viper.SetDefault("onebot.reconnect_interval", 5*time.Second)

	// Render service
	viper.SetDefault("render.endpoint", "")
	viper.SetDefault("render.timeout", 30*time.Second)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
