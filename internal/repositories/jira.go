package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scribe/internal/config"
	"scribe/internal/models"
)

// NoIssueKey is returned by CreateIssue when the tracker answered with a
// success status other than 201 Created.
const NoIssueKey = ""

// JiraRepository handles JIRA API interactions
type JiraRepository struct {
	rest *restClient
}

// NewJiraRepository creates a new JIRA repository. It fails with a
// *config.ConfigurationError if the base URL or auth token is missing.
func NewJiraRepository(cfg config.ClientConfig, opts ...Option) (*JiraRepository, error) {
	rest, err := newRESTClient(config.ServiceJira, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &JiraRepository{rest: rest}, nil
}

// BuildIssueQuery builds the JQL matching issues of projectKey whose
// description contains uniqueTerm. Both values are interpolated as-is:
// input containing quotes changes the query, so callers must not pass
// untrusted text.
func BuildIssueQuery(projectKey, uniqueTerm string) string {
	if uniqueTerm == "" {
		return fmt.Sprintf("project = %s", projectKey)
	}
	return fmt.Sprintf("project = %s AND description ~ \"%s\"", projectKey, uniqueTerm)
}

// IssueExists reports whether any issue of projectKey has uniqueTerm in
// its description.
func (r *JiraRepository) IssueExists(ctx context.Context, projectKey, uniqueTerm string) (bool, error) {
	search := &models.SearchRequest{
		JQL:    BuildIssueQuery(projectKey, uniqueTerm),
		Fields: []string{"key", "summary", "description"},
	}

	result, err := r.search(ctx, search)
	if err != nil {
		return false, err
	}

	return len(result.Issues) > 0, nil
}

// ListIssues returns the issues of projectKey, filtered by description when
// uniqueTerm is not empty, in the order the tracker returned them.
func (r *JiraRepository) ListIssues(ctx context.Context, projectKey, uniqueTerm string) ([]models.SearchIssue, error) {
	result, err := r.search(ctx, &models.SearchRequest{JQL: BuildIssueQuery(projectKey, uniqueTerm)})
	if err != nil {
		return nil, err
	}

	return result.Issues, nil
}

func (r *JiraRepository) search(ctx context.Context, search *models.SearchRequest) (*models.SearchResponse, error) {
	req, err := r.rest.newJSONRequest(ctx, http.MethodPost, "/rest/api/3/search", search)
	if err != nil {
		return nil, err
	}

	_, body, err := r.rest.do(req)
	if err != nil {
		return nil, err
	}

	var result models.SearchResponse
	if err := decode(body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CreateIssue creates a new JIRA issue and returns its key. A success
// status other than 201 yields NoIssueKey and a nil error.
func (r *JiraRepository) CreateIssue(ctx context.Context, projectKey, summary, description, issueType string) (string, error) {
	issue := &models.JiraIssue{
		Fields: models.JiraFields{
			Project: models.JiraProject{
				Key: projectKey,
			},
			Summary:     summary,
			Description: description,
			IssueType: models.JiraIssueType{
				Name: issueType,
			},
		},
	}

	req, err := r.rest.newJSONRequest(ctx, http.MethodPost, "/rest/api/2/issue", issue)
	if err != nil {
		return NoIssueKey, err
	}

	status, body, err := r.rest.do(req)
	if err != nil {
		return NoIssueKey, err
	}

	if status != http.StatusCreated {
		r.rest.logger.Warn("failed to create JIRA issue", "status", status, "project", projectKey)
		return NoIssueKey, nil
	}

	var jiraResp models.JiraResponse
	if err := decode(body, &jiraResp); err != nil {
		return NoIssueKey, err
	}

	return jiraResp.Key, nil
}

// TransitionIssue applies a workflow transition to an issue. The id is
// passed through without checking it against the issue's workflow.
func (r *JiraRepository) TransitionIssue(ctx context.Context, issueKey, transitionID string) error {
	payload := &models.TransitionRequest{
		Transition: models.TransitionRef{ID: transitionID},
	}

	path := fmt.Sprintf("/rest/api/3/issue/%s/transitions", url.PathEscape(issueKey))
	req, err := r.rest.newJSONRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	_, _, err = r.rest.do(req)
	return err
}

// AddComment adds a plain text comment to an issue.
func (r *JiraRepository) AddComment(ctx context.Context, issueKey, comment string) error {
	payload := &models.CommentRequest{
		Body: models.NewParagraphDocument(comment),
	}

	path := fmt.Sprintf("/rest/api/3/issue/%s/comment", url.PathEscape(issueKey))
	req, err := r.rest.newJSONRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	_, _, err = r.rest.do(req)
	return err
}
