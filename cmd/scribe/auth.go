package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"scribe/internal/config"
	"scribe/internal/credential"
	"scribe/internal/helpers"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	var authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Manage API tokens in the system keyring",
	}

	var setCmd = &cobra.Command{
		Use:       "set <jira|confluence>",
		Short:     "Store a token used when the config and environment carry none",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{config.ServiceJira, config.ServiceConfluence},
		RunE:      runAuthSet,
	}
	setCmd.Flags().String("email", "", "Account email, combined with the API token read from stdin")

	var deleteCmd = &cobra.Command{
		Use:       "delete <jira|confluence>",
		Short:     "Remove a stored token",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{config.ServiceJira, config.ServiceConfluence},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(args[0]); err != nil {
				return err
			}
			helpers.PrintSuccess("Removed %s token", args[0])
			return nil
		},
	}

	authCmd.AddCommand(setCmd, deleteCmd)
	return authCmd
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	service := args[0]
	email, _ := cmd.Flags().GetString("email")

	if email != "" {
		fmt.Fprint(os.Stderr, "API token: ")
	} else {
		fmt.Fprint(os.Stderr, "Encoded token (base64 email:api_token): ")
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(line)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if email != "" {
		token = config.EncodeToken(email, token)
	}

	if err := credential.Set(service, token); err != nil {
		return err
	}

	helpers.PrintSuccess("Stored %s token", service)
	return nil
}
