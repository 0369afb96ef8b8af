package main

import (
	"fmt"

	"scribe/internal/helpers"
	"scribe/internal/services"

	"github.com/spf13/cobra"
)

func newPageCmd() *cobra.Command {
	var pageCmd = &cobra.Command{
		Use:   "page",
		Short: "Create, update and find Confluence pages and upload attachments",
	}
	pageCmd.PersistentFlags().StringP("space", "s", "", "Space key (defaults to confluence.space_key)")

	var createCmd = &cobra.Command{
		Use:   "create <title>",
		Short: "Create a page from storage-format content and print its id",
		Args:  cobra.ExactArgs(1),
		RunE:  runPageCreate,
	}
	addContentFlags(createCmd)

	var updateCmd = &cobra.Command{
		Use:   "update <page-id> <title>",
		Short: "Replace a page's title and content",
		Long: `Replace a page's title and content.
The update is always submitted as version 2, so it only succeeds on pages
that have not been updated before.`,
		Args: cobra.ExactArgs(2),
		RunE: runPageUpdate,
	}
	addContentFlags(updateCmd)

	var findCmd = &cobra.Command{
		Use:   "find <title>",
		Short: "Find pages by title",
		Args:  cobra.ExactArgs(1),
		RunE:  runPageFind,
	}
	findCmd.Flags().Bool("all-spaces", false, "Search every space instead of the default one")

	var attachCmd = &cobra.Command{
		Use:   "attach <page-id> <file>...",
		Short: "Upload files as page attachments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfluence(func(svc *services.ConfluenceService) error {
				return svc.UploadAttachments(cmd.Context(), args[0], args[1:])
			})
		},
	}

	var publishCmd = &cobra.Command{
		Use:   "publish <title>",
		Short: "Create or update the page titled <title>, then upload attachments",
		Args:  cobra.ExactArgs(1),
		RunE:  runPagePublish,
	}
	addContentFlags(publishCmd)
	publishCmd.Flags().StringSliceP("attach", "a", nil, "File to attach (repeatable)")

	pageCmd.AddCommand(createCmd, updateCmd, findCmd, attachCmd, publishCmd)
	return pageCmd
}

func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().String("content", "", "Storage-format page content")
	cmd.Flags().StringP("file", "f", "", "Read storage-format page content from a file")
}

func contentFlags(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("file")
	return helpers.ReadContent(content, file)
}

// withConfluence loads the config and runs fn against a Confluence service.
func withConfluence(fn func(*services.ConfluenceService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := services.NewConfluenceService(&cfg.Confluence)
	if err != nil {
		return err
	}

	return fn(svc)
}

func spaceFlag(cmd *cobra.Command, svc *services.ConfluenceService) string {
	space, _ := cmd.Flags().GetString("space")
	return svc.SpaceKey(space)
}

func runPageCreate(cmd *cobra.Command, args []string) error {
	content, err := contentFlags(cmd)
	if err != nil {
		return err
	}

	return withConfluence(func(svc *services.ConfluenceService) error {
		id, err := svc.CreatePage(cmd.Context(), spaceFlag(cmd, svc), args[0], content)
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	})
}

func runPageUpdate(cmd *cobra.Command, args []string) error {
	content, err := contentFlags(cmd)
	if err != nil {
		return err
	}

	return withConfluence(func(svc *services.ConfluenceService) error {
		return svc.UpdatePage(cmd.Context(), args[0], args[1], content)
	})
}

func runPageFind(cmd *cobra.Command, args []string) error {
	allSpaces, _ := cmd.Flags().GetBool("all-spaces")

	return withConfluence(func(svc *services.ConfluenceService) error {
		space := ""
		if !allSpaces {
			space = spaceFlag(cmd, svc)
		}

		pages, err := svc.FindPages(cmd.Context(), args[0], space)
		if err != nil {
			return err
		}

		return helpers.PrintJSON(pages)
	})
}

func runPagePublish(cmd *cobra.Command, args []string) error {
	content, err := contentFlags(cmd)
	if err != nil {
		return err
	}
	attachments, _ := cmd.Flags().GetStringSlice("attach")

	return withConfluence(func(svc *services.ConfluenceService) error {
		id, created, err := svc.PublishPage(cmd.Context(), spaceFlag(cmd, svc), args[0], content, attachments)
		if err != nil {
			return err
		}

		if created {
			helpers.PrintSuccess("Published new page %s", id)
		} else {
			helpers.PrintSuccess("Published page %s", id)
		}

		fmt.Println(id)
		return nil
	})
}
