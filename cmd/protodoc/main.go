// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command protodoc generates Markdown documentation from protobuf schema
// files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "protodoc",
		Short: "Protobuf schema documentation generator",
		Long:  "protodoc scans directories of .proto files and renders one Markdown document per file, with cross-file type links, a navigation tree, and change-aware caching.",
	}

	// Global flags.
	rootCmd.PersistentFlags().StringSlice("schema-path", []string{"."}, "Directories or files to scan for schemas")
	rootCmd.PersistentFlags().String("output-dir", "docs/api", "Directory where documents are written")
	rootCmd.PersistentFlags().String("cache-path", "", "Cache file location (default: <output-dir>/.protodoc-cache.json)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Parallel workers (0 = number of CPUs)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the cache and render everything")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	// Bind flags to viper.
	viper.BindPFlag("schema-path", rootCmd.PersistentFlags().Lookup("schema-path"))
	viper.BindPFlag("output-dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("cache-path", rootCmd.PersistentFlags().Lookup("cache-path"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("no-cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: PROTODOC_OUTPUT_DIR, PROTODOC_CACHE_PATH, etc.
	viper.SetEnvPrefix("PROTODOC")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".protodoc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print protodoc version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("protodoc %s\n", version)
		},
	}
}
