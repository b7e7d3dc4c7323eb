// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notion-publish/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration export would run with, after the config
file, environment and .secrets/ have been applied. The token is redacted.
The output is a valid notion-publish.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		return writeConfig(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func writeConfig(w io.Writer, cfg *types.Config) error {
	redacted := *cfg
	if redacted.Notion.Token != "" {
		redacted.Notion.Token = "********"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&redacted); err != nil {
		return err
	}
	return enc.Close()
}
