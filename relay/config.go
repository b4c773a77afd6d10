package relay

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the read-only slice of host configuration the relay cares
// about. Defaults mirror the plugin schema: sending to both user and
// group destinations is on, image rendering is off.
type Config struct {
	PlatformName      string
	SendToUsers       bool
	SendToGroups      bool
	DeveloperUserIDs  []string
	DeveloperGroupIDs []string
	DestinationUMO    string
	RenderImage       bool
}

func ConfigFromViper() Config {
	cfg := Config{
		PlatformName:      viper.GetString("platform_name"),
		SendToUsers:       true,
		SendToGroups:      true,
		DeveloperUserIDs:  viper.GetStringSlice("developer_user_ids"),
		DeveloperGroupIDs: viper.GetStringSlice("developer_group_ids"),
		DestinationUMO:    viper.GetString("destination_umo"),
		RenderImage:       viper.GetBool("render_image"),
	}
	if viper.IsSet("send_to_users") {
		cfg.SendToUsers = viper.GetBool("send_to_users")
	}
	if viper.IsSet("send_to_groups") {
		cfg.SendToGroups = viper.GetBool("send_to_groups")
	}
	return cfg
}

func cleanIDs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
