package repositories

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"scribe/internal/config"
	"scribe/internal/models"
)

// FixedUpdateVersion is the version number every UpdatePage call submits.
// Confluence rejects the update with 409 Conflict unless the page is
// currently at version 1, so only the first update of a page succeeds.
const FixedUpdateVersion = 2

// ConfluenceRepository handles Confluence API interactions
type ConfluenceRepository struct {
	rest *restClient
}

// NewConfluenceRepository creates a new Confluence repository. It fails with
// a *config.ConfigurationError if the base URL or auth token is missing.
func NewConfluenceRepository(cfg config.ClientConfig, opts ...Option) (*ConfluenceRepository, error) {
	rest, err := newRESTClient(config.ServiceConfluence, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &ConfluenceRepository{rest: rest}, nil
}

// BuildPageQuery builds the CQL matching pages titled title, scoped to
// spaceKey when it is not empty. Values are interpolated without escaping.
func BuildPageQuery(title, spaceKey string) string {
	if spaceKey == "" {
		return fmt.Sprintf("title = \"%s\"", title)
	}
	return fmt.Sprintf("title = \"%s\" and space.key = \"%s\"", title, spaceKey)
}

// CreatePage creates a page from storage-format content and returns its id.
func (r *ConfluenceRepository) CreatePage(ctx context.Context, spaceKey, title, content string) (string, error) {
	page := &models.ConfluencePage{
		Type:  "page",
		Title: title,
		Space: &models.ConfluenceSpace{Key: spaceKey},
		Body:  models.NewStorageBody(content),
	}

	req, err := r.rest.newJSONRequest(ctx, http.MethodPost, "/rest/api/content", page)
	if err != nil {
		return "", err
	}

	_, body, err := r.rest.do(req)
	if err != nil {
		return "", err
	}

	var created models.ConfluencePage
	if err := decode(body, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// UpdatePage replaces a page's title and content, always as version
// FixedUpdateVersion.
func (r *ConfluenceRepository) UpdatePage(ctx context.Context, pageID, title, content string) error {
	page := &models.ConfluencePage{
		Type:    "page",
		Title:   title,
		Body:    models.NewStorageBody(content),
		Version: &models.PageVersion{Number: FixedUpdateVersion},
	}

	path := "/rest/api/content/" + url.PathEscape(pageID)
	req, err := r.rest.newJSONRequest(ctx, http.MethodPut, path, page)
	if err != nil {
		return err
	}

	_, _, err = r.rest.do(req)
	return err
}

// FindPages searches pages by title, optionally within a space.
func (r *ConfluenceRepository) FindPages(ctx context.Context, title, spaceKey string) ([]models.ConfluencePage, error) {
	query := url.Values{"cql": {BuildPageQuery(title, spaceKey)}}

	req, err := r.rest.newJSONRequest(ctx, http.MethodGet, "/rest/api/content/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	_, body, err := r.rest.do(req)
	if err != nil {
		return nil, err
	}

	var results models.ContentResults
	if err := decode(body, &results); err != nil {
		return nil, err
	}

	return results.Results, nil
}

// UploadAttachment streams a local file to a page as a multipart upload.
// The file is opened before any request is made.
func (r *ConfluenceRepository) UploadAttachment(ctx context.Context, pageID, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeAttachment(writer, filepath.Base(filePath), file))
	}()
	// The writer goroutine must finish before the deferred file close.
	defer func() {
		pr.Close()
		<-done
	}()

	path := fmt.Sprintf("/rest/api/content/%s/child/attachment", url.PathEscape(pageID))
	req, err := r.rest.newRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	_, _, err = r.rest.do(req)
	return err
}

func writeAttachment(writer *multipart.Writer, name string, src io.Reader) error {
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, src); err != nil {
		return err
	}

	return writer.Close()
}
