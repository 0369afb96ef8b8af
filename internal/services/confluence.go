package services

import (
	"context"
	"fmt"
	"path/filepath"

	"scribe/internal/config"
	"scribe/internal/helpers"
	"scribe/internal/models"
	"scribe/internal/repositories"
)

// ConfluenceService handles Confluence page publishing
type ConfluenceService struct {
	repo   *repositories.ConfluenceRepository
	config *config.ConfluenceConfig
}

// NewConfluenceService creates a new Confluence service
func NewConfluenceService(confluenceConfig *config.ConfluenceConfig, opts ...repositories.Option) (*ConfluenceService, error) {
	repo, err := repositories.NewConfluenceRepository(confluenceConfig.ClientConfig, opts...)
	if err != nil {
		return nil, err
	}

	return &ConfluenceService{
		repo:   repo,
		config: confluenceConfig,
	}, nil
}

// SpaceKey returns key, or the configured default space.
func (s *ConfluenceService) SpaceKey(key string) string {
	if key != "" {
		return key
	}
	return s.config.SpaceKey
}

// CreatePage creates a page and returns its id
func (s *ConfluenceService) CreatePage(ctx context.Context, spaceKey, title, content string) (string, error) {
	if spaceKey == "" {
		return "", fmt.Errorf("no space given and no confluence space_key configured")
	}

	id, err := s.repo.CreatePage(ctx, spaceKey, title, content)
	if err != nil {
		return "", err
	}

	helpers.PrintSuccess("Created page %q (%s) in %s", title, id, spaceKey)
	return id, nil
}

// UpdatePage submits new content for a page
func (s *ConfluenceService) UpdatePage(ctx context.Context, pageID, title, content string) error {
	err := s.repo.UpdatePage(ctx, pageID, title, content)
	if remoteErr, ok := repositories.AsRemoteRequestError(err); ok && remoteErr.IsConflict() {
		helpers.PrintWarning("Page %s is past version %d; updates always submit version %d",
			pageID, repositories.FixedUpdateVersion-1, repositories.FixedUpdateVersion)
	}
	if err != nil {
		return err
	}

	helpers.PrintSuccess("Updated page %s", pageID)
	return nil
}

// FindPages finds pages by title, scoped to spaceKey when set
func (s *ConfluenceService) FindPages(ctx context.Context, title, spaceKey string) ([]models.ConfluencePage, error) {
	pages, err := s.repo.FindPages(ctx, title, spaceKey)
	if err != nil {
		return nil, err
	}

	helpers.PrintInfo("Found %d pages titled %q", len(pages), title)
	return pages, nil
}

// UploadAttachments uploads files to a page in order, stopping at the
// first failure.
func (s *ConfluenceService) UploadAttachments(ctx context.Context, pageID string, filePaths []string) error {
	for i, filePath := range filePaths {
		helpers.PrintProgress(i+1, len(filePaths), fmt.Sprintf("Uploading %s", filepath.Base(filePath)))

		if err := s.repo.UploadAttachment(ctx, pageID, filePath); err != nil {
			return fmt.Errorf("failed to upload %s: %w", filePath, err)
		}
	}

	if len(filePaths) > 0 {
		helpers.PrintSuccess("Uploaded %d attachments to page %s", len(filePaths), pageID)
	}
	return nil
}

// PublishPage creates the page titled title in spaceKey, or updates it
// when one already exists, then uploads the attachments. It returns the
// page id and whether the page was created.
func (s *ConfluenceService) PublishPage(ctx context.Context, spaceKey, title, content string, attachments []string) (string, bool, error) {
	if spaceKey == "" {
		return "", false, fmt.Errorf("no space given and no confluence space_key configured")
	}

	pages, err := s.repo.FindPages(ctx, title, spaceKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to search for page: %w", err)
	}

	var (
		pageID  string
		created bool
	)
	if len(pages) == 0 {
		pageID, err = s.CreatePage(ctx, spaceKey, title, content)
		if err != nil {
			return "", false, fmt.Errorf("failed to create page: %w", err)
		}
		created = true
	} else {
		pageID = pages[0].ID
		if len(pages) > 1 {
			helpers.PrintWarning("%d pages titled %q in %s, updating %s", len(pages), title, spaceKey, pageID)
		}
		if err := s.UpdatePage(ctx, pageID, title, content); err != nil {
			return pageID, false, fmt.Errorf("failed to update page: %w", err)
		}
	}

	if err := s.UploadAttachments(ctx, pageID, attachments); err != nil {
		return pageID, created, err
	}

	return pageID, created, nil
}
