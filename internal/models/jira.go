package models

// JiraIssue represents a JIRA issue create payload
type JiraIssue struct {
	Fields JiraFields `json:"fields"`
}

// JiraFields represents JIRA issue fields
type JiraFields struct {
	Project     JiraProject   `json:"project"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   JiraIssueType `json:"issuetype"`
}

// JiraProject represents a JIRA project
type JiraProject struct {
	Key string `json:"key"`
}

// JiraIssueType represents a JIRA issue type
type JiraIssueType struct {
	Name string `json:"name"`
}

// JiraResponse represents a JIRA create issue response
type JiraResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self,omitempty"`
}

// SearchRequest is the POST body of the JQL search endpoint.
type SearchRequest struct {
	JQL    string   `json:"jql"`
	Fields []string `json:"fields,omitempty"`
}

// SearchResponse is the subset of the search response scribe reads.
type SearchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []SearchIssue `json:"issues"`
}

// SearchIssue is one issue as returned by search. Fields stay untyped
// because v3 returns rich-text descriptions as ADF objects.
type SearchIssue struct {
	ID     string         `json:"id,omitempty"`
	Key    string         `json:"key"`
	Self   string         `json:"self,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// TransitionRequest moves an issue along its workflow.
type TransitionRequest struct {
	Transition TransitionRef `json:"transition"`
}

// TransitionRef identifies a transition by its workflow id.
type TransitionRef struct {
	ID string `json:"id"`
}

// CommentRequest is the body of the add comment endpoint.
type CommentRequest struct {
	Body ADFDocument `json:"body"`
}

// ADFDocument is an Atlassian Document Format document, the rich text
// representation used by Jira Cloud API v3.
type ADFDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []ADFNode `json:"content"`
}

// ADFNode is a node of an ADF document.
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// NewParagraphDocument wraps text in a document with a single paragraph
// holding a single text run.
func NewParagraphDocument(text string) ADFDocument {
	return ADFDocument{
		Version: 1,
		Type:    "doc",
		Content: []ADFNode{
			{
				Type: "paragraph",
				Content: []ADFNode{
					{Type: "text", Text: text},
				},
			},
		},
	}
}
