// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notion-publish/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of notion-publish",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notion-publish %s (Notion API %s)\n", version, types.DefaultNotionVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
