// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the notion-publish CLI, which exports
// the published pages of a Notion database as Jekyll posts.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/secrets"
	"github.com/pdiddy/notion-publish/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	logger = zap.NewNop()
)

// rootCmd is the base command for the notion-publish CLI.
var rootCmd = &cobra.Command{
	Use:   "notion-publish",
	Short: "Export a Notion database to Jekyll posts",
	Long: `notion-publish reads every page of a Notion database whose publish
checkbox is ticked and writes it to _posts/ as a Markdown file with front
matter. Images are downloaded to assets/img/posts/<post>/ and the post is
rewritten to point at the local copies.

Credentials come from NOTION_TOKEN and DATABASE_ID, read from the
environment, a .env file, or .secrets/notion-token and
.secrets/notion-database-id.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.LoadEnvFile(".env"); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		l, err := newLogger(debug)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./notion-publish.yaml or ~/.config/notion-publish/notion-publish.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose development logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configureViper(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureViper points v at the config file and the environment. The two
// credentials keep their conventional unprefixed names.
func configureViper(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("notion-publish")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notion-publish"))
		}
	}

	// Defaults register the keys so AutomaticEnv can see them, e.g.
	// NOTION_PUBLISH_EXPORT_POSTS_DIR.
	d := types.NewDefaultConfig()
	v.SetDefault("notion.base_url", d.Notion.BaseURL)
	v.SetDefault("notion.version", d.Notion.Version)
	v.SetDefault("notion.timeout", d.Notion.Timeout)
	v.SetDefault("notion.user_agent", d.Notion.UserAgent)
	v.SetDefault("export.site_dir", d.Export.SiteDir)
	v.SetDefault("export.posts_dir", d.Export.PostsDir)
	v.SetDefault("export.assets_dir", d.Export.AssetsDir)
	v.SetDefault("export.ledger_path", d.Export.LedgerPath)
	v.SetDefault("export.utc_offset", d.Export.UTCOffset)
	v.SetDefault("export.max_parallel", d.Export.MaxParallel)

	v.SetEnvPrefix("NOTION_PUBLISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("notion.token", "NOTION_TOKEN")
	_ = v.BindEnv("notion.database_id", "DATABASE_ID")
}

// loadConfig layers the config file and environment over the defaults, fills
// missing credentials from .secrets/. Callers validate what they need.
func loadConfig(v *viper.Viper, s map[string]string) (*types.Config, error) {
	cfg := types.NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.Notion.Token = secrets.Default(s, secrets.KeyNotionToken, cfg.Notion.Token)
	cfg.Notion.DatabaseID = secrets.Default(s, secrets.KeyNotionDatabaseID, cfg.Notion.DatabaseID)
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
