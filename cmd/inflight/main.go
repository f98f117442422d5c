// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command inflight is the CLI for the inflight bridge: it packages a
// project's working state and shares it with the inflight service.
// Implements: prd001-share-pipeline R7.1-R7.8;
//
//	docs/ARCHITECTURE § Project Structure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

const defaultBaseURL = "https://api.inflight.dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "inflight",
		Short: "Share your working state for remote analysis",
		Long:  "inflight packages your project files and git diff, uploads them to the inflight service, and relays analysis progress back to your terminal.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("base-url", defaultBaseURL, "Share service endpoint")
	rootCmd.PersistentFlags().String("auth-url", "", "Login page (defaults to base-url + /login)")
	rootCmd.PersistentFlags().StringP("directory", "d", ".", "Project root directory")
	rootCmd.PersistentFlags().String("workspace", "", "Workspace ID (defaults to the account default)")
	rootCmd.PersistentFlags().String("base-branch", "", "Diff baseline branch override")
	rootCmd.PersistentFlags().Bool("static-analysis", false, "Share only the dependency closure of UI changes")
	rootCmd.PersistentFlags().Int("max-diff-bytes", 0, "Git diff size cap in bytes (0 = default)")

	// Bind flags to viper.
	viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("auth-url", rootCmd.PersistentFlags().Lookup("auth-url"))
	viper.BindPFlag("directory", rootCmd.PersistentFlags().Lookup("directory"))
	viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	viper.BindPFlag("base-branch", rootCmd.PersistentFlags().Lookup("base-branch"))
	viper.BindPFlag("static-analysis", rootCmd.PersistentFlags().Lookup("static-analysis"))
	viper.BindPFlag("max-diff-bytes", rootCmd.PersistentFlags().Lookup("max-diff-bytes"))

	// Env vars: INFLIGHT_BASE_URL, INFLIGHT_WORKSPACE, etc.
	viper.SetEnvPrefix("INFLIGHT")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".inflight")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print inflight version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inflight %s\n", version)
		},
	}
}
