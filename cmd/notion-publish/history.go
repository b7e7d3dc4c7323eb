// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notion-publish/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [page-id]",
	Short: "List recent exports from the ledger",
	Long: `History reads the export ledger written by the export command. With a
page ID it shows where that page was last written; otherwise it lists the
most recent exports, newest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("site-dir", "", "Jekyll site root (default .)")
	historyCmd.Flags().String("ledger", "", "export ledger path relative to the site root (default .notion-publish/export.db)")
	historyCmd.Flags().Int("limit", 20, "maximum number of entries (0 for all)")
	historyCmd.Flags().String("format", "text", "output format: text, yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("site-dir"); v != "" {
		cfg.Export.SiteDir = v
	}
	if v, _ := cmd.Flags().GetString("ledger"); v != "" {
		cfg.Export.LedgerPath = v
	}
	path := cfg.Export.LedgerFile()
	if path == "" {
		return fmt.Errorf("no ledger configured: set export.ledger_path or pass --ledger")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ledger %s: %w", path, err)
	}

	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := context.Background()
	var entries []ledger.Entry
	if len(args) == 1 {
		e, ok, err := l.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("page %s has not been exported", args[0])
		}
		entries = []ledger.Entry{e}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err = l.Recent(ctx, limit)
		if err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return writeHistory(os.Stdout, entries, format)
}

func writeHistory(w io.Writer, entries []ledger.Entry, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "text", "":
	default:
		return fmt.Errorf("unsupported format %q: use text, yaml or json", format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No exports recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-40s  %-6s  %s\n", "Exported", "Title", "Images", "Path")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		title := e.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:37]) + "..."
		}
		fmt.Fprintf(w, "%-20s  %-40s  %-6d  %s\n",
			e.ExportedAt.Local().Format(time.DateTime), title, e.Images, e.Path)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}
