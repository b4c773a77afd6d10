package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type configFileOneBot struct {
	WSURL             string `yaml:"ws_url"`
	AccessToken       string `yaml:"access_token"`
	ReconnectInterval string `yaml:"reconnect_interval"`
}

type configFileRender struct {
	Endpoint string `yaml:"endpoint"`
}

type configFileLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type configFile struct {
	PlatformName      string            `yaml:"platform_name"`
	SendToUsers       bool              `yaml:"send_to_users"`
	SendToGroups      bool              `yaml:"send_to_groups"`
	DeveloperUserIDs  []string          `yaml:"developer_user_ids"`
	DeveloperGroupIDs []string          `yaml:"developer_group_ids"`
	DestinationUMO    string            `yaml:"destination_umo"`
	RenderImage       bool              `yaml:"render_image"`
	DataDir           string            `yaml:"data_dir"`
	OneBot            configFileOneBot  `yaml:"onebot"`
	Render            configFileRender  `yaml:"render"`
	Logging           configFileLogging `yaml:"logging"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "~/.liuyan/"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = expandHomePath(dir)
			if strings.TrimSpace(dir) == "" {
				return fmt.Errorf("invalid dir")
			}
			dir = filepath.Clean(dir)

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			body, err := renderConfigExample(dir)
			if err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
				return err
			}

			fmt.Printf("initialized %s\n", cfgPath)
			return nil
		},
	}
}

func renderConfigExample(dir string) (string, error) {
	cfg := configFile{
		PlatformName:      "aiocqhttp",
		SendToUsers:       true,
		SendToGroups:      true,
		DeveloperUserIDs:  []string{},
		DeveloperGroupIDs: []string{},
		DestinationUMO:    "",
		RenderImage:       false,
		DataDir:           filepath.ToSlash(filepath.Join(dir, "data")),
		OneBot: configFileOneBot{
			WSURL:             "ws://127.0.0.1:3001",
			AccessToken:       "",
			ReconnectInterval: "5s",
		},
		Render: configFileRender{
			Endpoint: "",
		},
		Logging: configFileLogging{
			Level:  "info",
			Format: "text",
		},
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config example: %w", err)
	}

	var b strings.Builder
	b.WriteString("# liuyan relay bot configuration.\n")
	b.WriteString("# Notes are forwarded to every developer_user_id (friend and private\n")
	b.WriteString("# scope) and developer_group_id; destination_umo appends one extra\n")
	b.WriteString("# destination verbatim (platform:scope:id).\n")
	b.Write(raw)
	return b.String(), nil
}
