package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"scribe/internal/config"
	"scribe/internal/credential"
	"scribe/internal/helpers"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	// tokenLookup supplies tokens missing from the config and environment.
	tokenLookup config.TokenLookup = credential.Get
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "scribe",
		Short: "Scribe - script JIRA issues and Confluence pages",
		Long: `Scribe wraps the JIRA and Confluence REST APIs so that issues can be
searched, created, transitioned and commented on, and wiki pages created,
updated and given attachments, from scripts and CI jobs.

Connection settings come from the config file and the JIRA_URL,
ENCODED_JIRA_TOKEN, CONFLUENCE_URL and ENCODED_CONFLUENCE_TOKEN
environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every API response to stderr")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file without asking")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newIssueCmd())
	rootCmd.AddCommand(newPageCmd())
	rootCmd.AddCommand(newAuthCmd())

	return rootCmd
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile, tokenLookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	helpers.PrintTitle("Initializing Scribe Configuration")

	if helpers.FileExists(configFile) && !force {
		if !confirm(fmt.Sprintf("Configuration file already exists at %s. Overwrite it?", configFile)) {
			helpers.PrintInfo("Configuration initialization cancelled.")
			return nil
		}
	}

	if err := config.WriteSample(configFile); err != nil {
		return err
	}

	helpers.PrintSuccess("Configuration file created at %s", configFile)
	helpers.PrintWarning("Please edit the configuration file and add your API tokens, or store them with `scribe auth set`.")
	return nil
}

func confirm(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Fprintf(os.Stderr, "%s (y/N): ", question)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
