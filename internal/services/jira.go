package services

import (
	"context"
	"fmt"
	"strings"

	"scribe/internal/config"
	"scribe/internal/helpers"
	"scribe/internal/models"
	"scribe/internal/repositories"
)

// JiraService handles JIRA business logic
type JiraService struct {
	repo   *repositories.JiraRepository
	config *config.JiraConfig
}

// NewJiraService creates a new JIRA service
func NewJiraService(jiraConfig *config.JiraConfig, opts ...repositories.Option) (*JiraService, error) {
	repo, err := repositories.NewJiraRepository(jiraConfig.ClientConfig, opts...)
	if err != nil {
		return nil, err
	}

	return &JiraService{
		repo:   repo,
		config: jiraConfig,
	}, nil
}

// ProjectKey returns key, or the configured default project when key is empty.
func (s *JiraService) ProjectKey(key string) (string, error) {
	if key != "" {
		return key, nil
	}
	if s.config.ProjectKey == "" {
		return "", fmt.Errorf("no project given and no jira project_key configured")
	}
	return s.config.ProjectKey, nil
}

// IssueExists checks whether an issue carrying uniqueTerm already exists
func (s *JiraService) IssueExists(ctx context.Context, projectKey, uniqueTerm string) (bool, error) {
	return s.repo.IssueExists(ctx, projectKey, uniqueTerm)
}

// ListIssues lists the issues of a project, optionally filtered by uniqueTerm
func (s *JiraService) ListIssues(ctx context.Context, projectKey, uniqueTerm string) ([]models.SearchIssue, error) {
	helpers.PrintInfo("Searching: %s", repositories.BuildIssueQuery(projectKey, uniqueTerm))

	issues, err := s.repo.ListIssues(ctx, projectKey, uniqueTerm)
	if err != nil {
		return nil, err
	}

	helpers.PrintInfo("Found %d issues", len(issues))
	return issues, nil
}

// CreateIssue creates a single JIRA issue. An empty key with a nil error
// means the tracker accepted the request without creating an issue.
func (s *JiraService) CreateIssue(ctx context.Context, projectKey, summary, description, issueType string) (string, error) {
	helpers.PrintInfo("Project Key: %s, Issue Type: %s", projectKey, issueType)

	key, err := s.repo.CreateIssue(ctx, projectKey, summary, description, issueType)
	if err != nil {
		return repositories.NoIssueKey, err
	}

	if key == repositories.NoIssueKey {
		helpers.PrintWarning("JIRA accepted the request but returned no issue key")
		return key, nil
	}

	helpers.PrintSuccess("Created issue: %s", key)
	return key, nil
}

// EnsureIssue returns the key of the issue whose description carries
// marker, creating it first if none exists. The marker is appended to the
// description when missing so later calls find the issue.
func (s *JiraService) EnsureIssue(ctx context.Context, projectKey, marker, summary, description, issueType string) (string, bool, error) {
	if marker == "" {
		return "", false, fmt.Errorf("a unique marker is required")
	}

	exists, err := s.repo.IssueExists(ctx, projectKey, marker)
	if err != nil {
		return "", false, fmt.Errorf("failed to check for existing issue: %w", err)
	}

	if exists {
		issues, err := s.repo.ListIssues(ctx, projectKey, marker)
		if err != nil {
			return "", false, fmt.Errorf("failed to look up existing issue: %w", err)
		}
		if len(issues) > 0 {
			helpers.PrintInfo("Issue already exists: %s", issues[0].Key)
			return issues[0].Key, false, nil
		}
	}

	if !strings.Contains(description, marker) {
		description = strings.TrimRight(description, "\n") + "\n\n" + marker
		description = strings.TrimLeft(description, "\n")
	}

	key, err := s.CreateIssue(ctx, projectKey, summary, description, issueType)
	if err != nil {
		return "", false, fmt.Errorf("failed to create issue: %w", err)
	}

	return key, key != repositories.NoIssueKey, nil
}

// Transition applies a transition id to an issue
func (s *JiraService) Transition(ctx context.Context, issueKey, transitionID string) error {
	if transitionID == "" {
		return fmt.Errorf("transition id is required")
	}

	if err := s.repo.TransitionIssue(ctx, issueKey, transitionID); err != nil {
		return err
	}

	helpers.PrintSuccess("Applied transition %s to %s", transitionID, issueKey)
	return nil
}

// CloseIssue applies the configured close transition
func (s *JiraService) CloseIssue(ctx context.Context, issueKey string) error {
	return s.Transition(ctx, issueKey, s.config.Transitions.Close)
}

// ReopenIssue applies the configured open transition
func (s *JiraService) ReopenIssue(ctx context.Context, issueKey string) error {
	return s.Transition(ctx, issueKey, s.config.Transitions.Open)
}

// StartProgress applies the configured in-progress transition
func (s *JiraService) StartProgress(ctx context.Context, issueKey string) error {
	return s.Transition(ctx, issueKey, s.config.Transitions.InProgress)
}

// AddComment adds a plain text comment to an issue
func (s *JiraService) AddComment(ctx context.Context, issueKey, comment string) error {
	if err := s.repo.AddComment(ctx, issueKey, comment); err != nil {
		return err
	}

	helpers.PrintSuccess("Commented on %s", issueKey)
	return nil
}
