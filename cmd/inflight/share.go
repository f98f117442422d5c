// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-share-pipeline R7.2-R7.5.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/inflight/pkg/share"
	"github.com/petar-djukic/inflight/pkg/types"
)

// newShareCmd creates the "share" command.
func newShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Package and upload the project for remote analysis",
		Long:  "Share collects the project files and git diff, uploads them to the inflight service, and streams analysis progress until the share link is ready.",
		RunE:  runShare,
	}

	cmd.Flags().String("project", "", "Existing project ID to update")
	cmd.Flags().String("git-url", "", "Remote repository URL to attach")

	return cmd
}

// runShare executes the share operation, relaying progress to stderr.
func runShare(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString("project")
	gitURL, _ := cmd.Flags().GetString("git-url")

	events := make(chan types.ProgressEvent, 16)
	client, err := newClient(events)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percentage, ev.Step)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := client.Share(ctx, share.ShareOptions{
		Directory:         viper.GetString("directory"),
		WorkspaceID:       viper.GetString("workspace"),
		ExistingProjectID: projectID,
		GitURL:            gitURL,
		BaseBranch:        viper.GetString("base-branch"),
		UseStaticAnalysis: viper.GetBool("static-analysis"),
	})
	close(events)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	printJSON(result)
	return nil
}

// newAnalyzeCmd creates the "analyze" command.
func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Resolve the dependency closure of changed files",
		Long:  "Analyze walks the import graph from the project's changed files (or the given paths) and reports the local files, npm packages, and workspace packages they depend on. Nothing is uploaded.",
		RunE:  runAnalyze,
	}
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	client, err := newClient(nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := client.Analyze(ctx, share.AnalyzeOptions{
		ProjectPath:  viper.GetString("directory"),
		ChangedFiles: args,
		BaseBranch:   viper.GetString("base-branch"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	printJSON(result)
	return nil
}

// newClient builds the bridge client from viper settings.
func newClient(events chan<- types.ProgressEvent) (share.Client, error) {
	client, err := share.New(share.Config{
		BaseURL:      viper.GetString("base-url"),
		AuthURL:      viper.GetString("auth-url"),
		MaxDiffBytes: viper.GetInt("max-diff-bytes"),
		Progress:     events,
	})
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return client, nil
}

// printJSON outputs a result as indented JSON to stdout.
func printJSON(result any) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
