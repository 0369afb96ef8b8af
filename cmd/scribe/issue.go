package main

import (
	"fmt"

	"scribe/internal/helpers"
	"scribe/internal/repositories"
	"scribe/internal/services"

	"github.com/spf13/cobra"
)

func newIssueCmd() *cobra.Command {
	var issueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Search, create, transition and comment on JIRA issues",
	}
	issueCmd.PersistentFlags().StringP("project", "p", "", "Project key (defaults to jira.project_key)")

	var existsCmd = &cobra.Command{
		Use:   "exists <unique-term>",
		Short: "Print whether an issue's description contains the term",
		Long: `Check for an issue whose description contains the unique term.
The term is placed into JQL without escaping, so it must not contain quotes.`,
		Args: cobra.ExactArgs(1),
		RunE: runIssueExists,
	}

	var listCmd = &cobra.Command{
		Use:   "list [unique-term]",
		Short: "List the project's issues, optionally filtered by description",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIssueList,
	}
	listCmd.Flags().StringP("output", "o", "", "Also save the result to this JSON file")

	var createCmd = &cobra.Command{
		Use:   "create <summary>",
		Short: "Create an issue and print its key",
		Args:  cobra.ExactArgs(1),
		RunE:  runIssueCreate,
	}
	createCmd.Flags().StringP("description", "d", "", "Issue description")
	createCmd.Flags().StringP("type", "t", "Task", "Issue type name")

	var ensureCmd = &cobra.Command{
		Use:   "ensure <unique-term> <summary>",
		Short: "Print the key of the issue carrying the term, creating it if needed",
		Args:  cobra.ExactArgs(2),
		RunE:  runIssueEnsure,
	}
	ensureCmd.Flags().StringP("description", "d", "", "Issue description (the term is appended when missing)")
	ensureCmd.Flags().StringP("type", "t", "Task", "Issue type name")

	var transitionCmd = &cobra.Command{
		Use:   "transition <issue-key> <transition-id>",
		Short: "Apply a workflow transition by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJira(func(svc *services.JiraService) error {
				return svc.Transition(cmd.Context(), args[0], args[1])
			})
		},
	}

	var closeCmd = &cobra.Command{
		Use:   "close <issue-key>",
		Short: "Apply the configured close transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJira(func(svc *services.JiraService) error {
				return svc.CloseIssue(cmd.Context(), args[0])
			})
		},
	}

	var reopenCmd = &cobra.Command{
		Use:   "reopen <issue-key>",
		Short: "Apply the configured open transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJira(func(svc *services.JiraService) error {
				return svc.ReopenIssue(cmd.Context(), args[0])
			})
		},
	}

	var startCmd = &cobra.Command{
		Use:   "start <issue-key>",
		Short: "Apply the configured in-progress transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJira(func(svc *services.JiraService) error {
				return svc.StartProgress(cmd.Context(), args[0])
			})
		},
	}

	var commentCmd = &cobra.Command{
		Use:   "comment <issue-key> <text>",
		Short: "Add a plain text comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJira(func(svc *services.JiraService) error {
				return svc.AddComment(cmd.Context(), args[0], args[1])
			})
		},
	}

	issueCmd.AddCommand(existsCmd, listCmd, createCmd, ensureCmd, transitionCmd, closeCmd, reopenCmd, startCmd, commentCmd)
	return issueCmd
}

// withJira loads the config and runs fn against a JIRA service.
func withJira(fn func(*services.JiraService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := services.NewJiraService(&cfg.Jira)
	if err != nil {
		return err
	}

	return fn(svc)
}

func projectFlag(cmd *cobra.Command, svc *services.JiraService) (string, error) {
	project, _ := cmd.Flags().GetString("project")
	return svc.ProjectKey(project)
}

func runIssueExists(cmd *cobra.Command, args []string) error {
	return withJira(func(svc *services.JiraService) error {
		project, err := projectFlag(cmd, svc)
		if err != nil {
			return err
		}

		exists, err := svc.IssueExists(cmd.Context(), project, args[0])
		if err != nil {
			return err
		}

		if exists {
			helpers.PrintInfo("An issue in %s contains %q", project, args[0])
		} else {
			helpers.PrintInfo("No issue in %s contains %q", project, args[0])
		}

		fmt.Println(exists)
		return nil
	})
}

func runIssueList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	return withJira(func(svc *services.JiraService) error {
		project, err := projectFlag(cmd, svc)
		if err != nil {
			return err
		}

		term := ""
		if len(args) == 1 {
			term = args[0]
		}

		issues, err := svc.ListIssues(cmd.Context(), project, term)
		if err != nil {
			return err
		}

		if output != "" {
			if err := helpers.SaveJSON(issues, output); err != nil {
				return err
			}
			helpers.PrintSuccess("Saved %d issues to %s", len(issues), output)
		}

		return helpers.PrintJSON(issues)
	})
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	issueType, _ := cmd.Flags().GetString("type")

	return withJira(func(svc *services.JiraService) error {
		project, err := projectFlag(cmd, svc)
		if err != nil {
			return err
		}

		key, err := svc.CreateIssue(cmd.Context(), project, args[0], description, issueType)
		if err != nil {
			return err
		}

		if key == repositories.NoIssueKey {
			return fmt.Errorf("issue was not created")
		}

		fmt.Println(key)
		return nil
	})
}

func runIssueEnsure(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	issueType, _ := cmd.Flags().GetString("type")

	return withJira(func(svc *services.JiraService) error {
		project, err := projectFlag(cmd, svc)
		if err != nil {
			return err
		}

		key, _, err := svc.EnsureIssue(cmd.Context(), project, args[0], args[1], description, issueType)
		if err != nil {
			return err
		}

		if key == repositories.NoIssueKey {
			return fmt.Errorf("issue was not created")
		}

		fmt.Println(key)
		return nil
	})
}
