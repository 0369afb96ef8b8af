package models

// RepresentationStorage is Confluence's native page markup.
const RepresentationStorage = "storage"

// ConfluencePage represents a Confluence content object, used both as the
// create/update payload and as a search or create result.
type ConfluencePage struct {
	ID      string           `json:"id,omitempty"`
	Type    string           `json:"type"`
	Status  string           `json:"status,omitempty"`
	Title   string           `json:"title"`
	Space   *ConfluenceSpace `json:"space,omitempty"`
	Body    *ConfluenceBody  `json:"body,omitempty"`
	Version *PageVersion     `json:"version,omitempty"`
}

// ConfluenceSpace represents a Confluence space reference
type ConfluenceSpace struct {
	Key string `json:"key"`
}

// ConfluenceBody wraps the page content
type ConfluenceBody struct {
	Storage Storage `json:"storage"`
}

// Storage holds content in a given representation
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// PageVersion represents a page version
type PageVersion struct {
	Number int `json:"number"`
}

// ContentResults is the envelope of content search and attachment
// responses.
type ContentResults struct {
	Results []ConfluencePage `json:"results"`
	Start   int              `json:"start"`
	Limit   int              `json:"limit"`
	Size    int              `json:"size"`
}

// NewStorageBody wraps storage-format markup.
func NewStorageBody(content string) *ConfluenceBody {
	return &ConfluenceBody{
		Storage: Storage{
			Value:          content,
			Representation: RepresentationStorage,
		},
	}
}
