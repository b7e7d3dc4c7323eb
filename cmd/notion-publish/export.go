// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/notion-publish/internal/emit"
	"github.com/pdiddy/notion-publish/internal/export"
	"github.com/pdiddy/notion-publish/internal/ledger"
	"github.com/pdiddy/notion-publish/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every published page to _posts/",
	Long: `Export queries the database for pages whose publish checkbox is ticked,
renders each page body to Markdown, escapes code fences for Liquid, demotes
headings by one level and writes <date>-<title>.md with front matter.
Existing files of the same name are overwritten. Pages with an empty body
are skipped.

Images are saved as assets/img/posts/<date>-<title>/<n>.png. The command
exits only after every download and write has finished.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("site-dir", "", "Jekyll site root (default .)")
	exportCmd.Flags().String("posts-dir", "", "posts directory relative to the site root (default _posts)")
	exportCmd.Flags().String("assets-dir", "", "image directory relative to the site root (default assets/img/posts)")
	exportCmd.Flags().String("ledger", "", "export ledger path relative to the site root (default .notion-publish/export.db)")
	exportCmd.Flags().Bool("no-ledger", false, "do not record exports")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	applyExportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var recorder emit.Recorder
	if path := cfg.Export.LedgerFile(); path != "" {
		l, err := ledger.Open(path)
		if err != nil {
			return err
		}
		defer l.Close()
		recorder = l
	}

	client := &http.Client{
		Timeout: cfg.Notion.Timeout,
	}

	exp, err := export.New(cfg, client, recorder, os.Stdout, logger)
	if err != nil {
		return err
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	logger.Info("export finished",
		zap.Int("exported", result.Exported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("images", result.Images))

	if result.HasFailures() {
		return fmt.Errorf("%d page(s) and %d background task(s) failed", result.Failed, result.Background.Failed)
	}
	return nil
}

func applyExportFlags(cmd *cobra.Command, cfg *types.Config) {
	if v, _ := cmd.Flags().GetString("site-dir"); v != "" {
		cfg.Export.SiteDir = v
	}
	if v, _ := cmd.Flags().GetString("posts-dir"); v != "" {
		cfg.Export.PostsDir = v
	}
	if v, _ := cmd.Flags().GetString("assets-dir"); v != "" {
		cfg.Export.AssetsDir = v
	}
	if v, _ := cmd.Flags().GetString("ledger"); v != "" {
		cfg.Export.LedgerPath = v
	}
	if off, _ := cmd.Flags().GetBool("no-ledger"); off {
		cfg.Export.LedgerPath = ""
	}
}
