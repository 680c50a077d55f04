// Package granola is a client for the Granola notes API: folder listings,
// batched documents and transcripts.
package granola

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/TobiSchelling/weeklynotes/internal/notes"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.granola.ai"

	// BatchSize is the number of documents requested per batch call.
	BatchSize = 50

	userAgent = "weeklynotes/1.0"
)

// ErrFolderNotFound is returned when no folder matches the requested name.
var ErrFolderNotFound = errors.New("folder not found")

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("granola %s returned %d: %s", e.Endpoint, e.Code, e.Body)
}

// Folder is a named document list shared with the user.
type Folder struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Documents   []docRef `json:"documents"`
	DocumentIDs []string `json:"document_ids"`
}

// DisplayName returns the folder name, falling back to its title.
func (f Folder) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Title
}

// IDs returns the folder's document ids from the v2 documents array, or
// the v1 document_ids array.
func (f Folder) IDs() []string {
	if f.Documents != nil {
		ids := make([]string, 0, len(f.Documents))
		for _, d := range f.Documents {
			if d.ID != "" {
				ids = append(ids, d.ID)
			}
		}
		return ids
	}
	return f.DocumentIDs
}

// docRef is a v2 folder entry: either {"id": ...} or a bare id string.
type docRef struct {
	ID string
}

func (r *docRef) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if m, ok := v.(map[string]any); ok {
		r.ID = cast.ToString(m["id"])
		return nil
	}
	r.ID = cast.ToString(v)
	return nil
}

// Client talks to the notes API with a bearer token.
type Client struct {
	BaseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("granola %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

// DocumentLists returns every folder the user can see. The v2 endpoint is
// tried first; any failure falls back to v1.
func (c *Client) DocumentLists(ctx context.Context) ([]Folder, error) {
	raw, err := c.post(ctx, "/v2/get-document-lists", nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Document lists v2 failed (%v), falling back to v1", err)
		raw, err = c.post(ctx, "/v1/get-document-lists", nil)
		if err != nil {
			return nil, fmt.Errorf("listing folders: %w", err)
		}
	}
	return decodeList[Folder](raw, "lists", "data")
}

// FindFolder returns the first folder whose name or title contains
// fragment, ignoring case.
func (c *Client) FindFolder(ctx context.Context, fragment string) (*Folder, error) {
	folders, err := c.DocumentLists(ctx)
	if err != nil {
		return nil, err
	}
	if f := matchFolder(folders, fragment); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: no folder matching %q", ErrFolderNotFound, fragment)
}

func matchFolder(folders []Folder, fragment string) *Folder {
	needle := strings.ToLower(fragment)
	for i := range folders {
		if strings.Contains(strings.ToLower(folders[i].DisplayName()), needle) {
			return &folders[i]
		}
	}
	return nil
}

// DocumentsBatch fetches full documents in batches of BatchSize.
func (c *Client) DocumentsBatch(ctx context.Context, ids []string) ([]notes.Document, error) {
	var all []notes.Document
	for start := 0; start < len(ids); start += BatchSize {
		end := min(start+BatchSize, len(ids))
		raw, err := c.post(ctx, "/v1/get-documents-batch", map[string]any{
			"document_ids":              ids[start:end],
			"include_last_viewed_panel": true,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching documents: %w", err)
		}
		docs, err := decodeList[notes.Document](raw, "documents", "data")
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// Transcript fetches the utterances of one document. Failures are logged
// and yield an empty transcript.
func (c *Client) Transcript(ctx context.Context, documentID string) []notes.Utterance {
	raw, err := c.post(ctx, "/v1/get-document-transcript", map[string]any{
		"document_id": documentID,
	})
	if err != nil {
		log.Printf("No transcript for %s: %v", documentID, err)
		return nil
	}
	utterances, err := decodeList[notes.Utterance](raw, "utterances", "transcript")
	if err != nil {
		log.Printf("Unreadable transcript for %s: %v", documentID, err)
		return nil
	}
	return utterances
}

// decodeList normalizes the two envelope shapes the API uses: a bare array,
// or an object carrying the array under the first present key.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decoding response envelope: %w", err)
		}
		raw = nil
		for _, key := range keys {
			if v, ok := envelope[key]; ok {
				raw = v
				break
			}
		}
	}

	var items []T
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
