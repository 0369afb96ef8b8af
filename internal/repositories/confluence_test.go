package repositories

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribe/internal/config"
	"scribe/internal/models"
)

func newTestConfluence(t *testing.T, server *httptest.Server) *ConfluenceRepository {
	t.Helper()
	repo, err := NewConfluenceRepository(config.ClientConfig{BaseURL: server.URL, AuthToken: testToken})
	require.NoError(t, err)
	return repo
}

func TestNewConfluenceRepositoryRequiresConfig(t *testing.T) {
	_, err := NewConfluenceRepository(config.ClientConfig{BaseURL: "https://example.atlassian.net/wiki"})

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ServiceConfluence, cfgErr.Service)
	assert.Equal(t, "confluence auth token is required", err.Error())

	_, err = NewConfluenceRepository(config.ClientConfig{AuthToken: testToken})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "base URL", cfgErr.Field)
}

func TestCreatePage(t *testing.T) {
	var got recordedRequest
	server := newTestServer(t, http.StatusOK, `{"id": "98765", "type": "page", "title": "Runbook"}`, &got)

	id, err := newTestConfluence(t, server).CreatePage(context.Background(), "OPS", "Runbook", "<p>Hello</p>")
	require.NoError(t, err)
	assert.Equal(t, "98765", id)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/rest/api/content", got.Path)
	assert.Equal(t, "Basic "+testToken, got.Header.Get("Authorization"))
	assert.JSONEq(t, `{
		"type": "page",
		"title": "Runbook",
		"space": {"key": "OPS"},
		"body": {"storage": {"value": "<p>Hello</p>", "representation": "storage"}}
	}`, string(got.Body))
}

func TestUpdatePageAlwaysSubmitsVersionTwo(t *testing.T) {
	for _, pageID := range []string{"1", "555", "98765"} {
		t.Run(pageID, func(t *testing.T) {
			var got recordedRequest
			server := newTestServer(t, http.StatusOK, `{"id": "`+pageID+`", "version": {"number": 2}}`, &got)

			err := newTestConfluence(t, server).UpdatePage(context.Background(), pageID, "Runbook", "<p>v2</p>")
			require.NoError(t, err)

			assert.Equal(t, http.MethodPut, got.Method)
			assert.Equal(t, "/rest/api/content/"+pageID, got.Path)

			var page models.ConfluencePage
			require.NoError(t, json.Unmarshal(got.Body, &page))
			require.NotNil(t, page.Version)
			assert.Equal(t, 2, page.Version.Number)
			assert.Equal(t, "Runbook", page.Title)
			assert.Equal(t, "<p>v2</p>", page.Body.Storage.Value)
			assert.Nil(t, page.Space)
		})
	}
}

func TestUpdatePageConflict(t *testing.T) {
	server := newTestServer(t, http.StatusConflict, `{"message":"Version must be incremented"}`, nil)

	err := newTestConfluence(t, server).UpdatePage(context.Background(), "1", "t", "c")

	remoteErr, ok := AsRemoteRequestError(err)
	require.True(t, ok)
	assert.True(t, remoteErr.IsConflict())
	assert.Equal(t, http.MethodPut, remoteErr.Method)
}

func TestFindPages(t *testing.T) {
	tests := []struct {
		name     string
		spaceKey string
		wantCQL  string
	}{
		{name: "any space", wantCQL: `title = "Runbook"`},
		{name: "scoped", spaceKey: "OPS", wantCQL: `title = "Runbook" and space.key = "OPS"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cql, method, path string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				cql = r.URL.Query().Get("cql")
				_, _ = io.WriteString(w, `{"results": [{"id": "1", "type": "page", "title": "Runbook"}, {"id": "2", "type": "page", "title": "Runbook"}], "size": 2}`)
			}))
			defer server.Close()

			pages, err := newTestConfluence(t, server).FindPages(context.Background(), "Runbook", tt.spaceKey)
			require.NoError(t, err)

			assert.Equal(t, http.MethodGet, method)
			assert.Equal(t, "/rest/api/content/search", path)
			assert.Equal(t, tt.wantCQL, cql)
			assert.Equal(t, []models.ConfluencePage{
				{ID: "1", Type: "page", Title: "Runbook"},
				{ID: "2", Type: "page", Title: "Runbook"},
			}, pages)
		})
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadAttachment(t *testing.T) {
	filePath := writeTempFile(t, "report.csv", "a,b\n1,2\n")

	var (
		path, csrf, filename, payload string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		csrf = r.Header.Get("X-Atlassian-Token")

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		if assert.NoError(t, err) {
			assert.Equal(t, "file", part.FormName())
			filename = part.FileName()
			data, _ := io.ReadAll(part)
			payload = string(data)
		}

		_, _ = io.WriteString(w, `{"results": [{"id": "att1", "type": "attachment", "title": "report.csv"}]}`)
	}))
	defer server.Close()

	err := newTestConfluence(t, server).UploadAttachment(context.Background(), "98765", filePath)
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/content/98765/child/attachment", path)
	assert.Equal(t, "no-check", csrf)
	assert.Equal(t, "report.csv", filename)
	assert.Equal(t, "a,b\n1,2\n", payload)
}

func TestUploadAttachmentDoesNotLeakCSRFHeader(t *testing.T) {
	filePath := writeTempFile(t, "notes.txt", "hi")

	var headers []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		headers = append(headers, r.Header.Get("X-Atlassian-Token"))
		_, _ = io.WriteString(w, `{"id": "1", "results": []}`)
	}))
	defer server.Close()

	repo := newTestConfluence(t, server)
	require.NoError(t, repo.UploadAttachment(context.Background(), "1", filePath))
	_, err := repo.CreatePage(context.Background(), "OPS", "t", "c")
	require.NoError(t, err)

	assert.Equal(t, []string{"no-check", ""}, headers)
}

func TestUploadAttachmentMissingFile(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	missing := filepath.Join(t.TempDir(), "does-not-exist.bin")
	err := newTestConfluence(t, server).UploadAttachment(context.Background(), "1", missing)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, remote := AsRemoteRequestError(err)
	assert.False(t, remote)
	assert.Zero(t, calls.Load())
}

func TestConfluenceMutationsFailOnErrorStatus(t *testing.T) {
	filePath := writeTempFile(t, "a.txt", "payload")

	calls := map[string]func(*ConfluenceRepository) error{
		"create page": func(r *ConfluenceRepository) error {
			_, err := r.CreatePage(context.Background(), "OPS", "t", "c")
			return err
		},
		"upload attachment": func(r *ConfluenceRepository) error {
			return r.UploadAttachment(context.Background(), "1", filePath)
		},
	}

	for name, call := range calls {
		for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusBadGateway} {
			t.Run(name+"/"+http.StatusText(status), func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = io.Copy(io.Discard, r.Body)
					w.WriteHeader(status)
					_, _ = io.WriteString(w, `{"message":"nope"}`)
				}))
				defer server.Close()

				err := call(newTestConfluence(t, server))

				remoteErr, ok := AsRemoteRequestError(err)
				require.True(t, ok, "expected RemoteRequestError, got %v", err)
				assert.Equal(t, status, remoteErr.StatusCode)
				assert.Equal(t, config.ServiceConfluence, remoteErr.Service)
				assert.Equal(t, `{"message":"nope"}`, remoteErr.Body)
			})
		}
	}
}

func TestBuildPageQuery(t *testing.T) {
	assert.Equal(t, `title = "Release notes"`, BuildPageQuery("Release notes", ""))
	assert.Equal(t, `title = "Release notes" and space.key = "DOC"`, BuildPageQuery("Release notes", "DOC"))
}
