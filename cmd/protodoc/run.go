// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/protodoc/pkg/protodoc"
)

// newGenerateCmd creates the "generate" command.
func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate documentation once",
		Long:  "Generate scans the schema paths, renders documents for changed files, and writes the navigation tree.",
		RunE:  runGenerate,
	}
}

// runGenerate executes one generation cycle.
func runGenerate(cmd *cobra.Command, args []string) error {
	gen, err := newGenerator()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := gen.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil {
			printResult(result)
		}
		return err
	}

	printResult(result)
	return nil
}

// newWatchCmd creates the "watch" command.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Generate and re-generate on file changes",
		Long:  "Watch generates documentation, then keeps re-generating whenever a schema file changes, until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := newGenerator()
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if err := gen.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// newGenerator builds the Generator from the viper-resolved config.
func newGenerator() (protodoc.Generator, error) {
	return protodoc.New(protodoc.Config{
		SchemaPaths: viper.GetStringSlice("schema-path"),
		OutputDir:   viper.GetString("output-dir"),
		CachePath:   viper.GetString("cache-path"),
		Concurrency: viper.GetInt("concurrency"),
		NoCache:     viper.GetBool("no-cache"),
		Verbose:     viper.GetBool("verbose"),
	})
}

// printResult outputs the result as JSON to stdout.
func printResult(result *protodoc.Result) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
