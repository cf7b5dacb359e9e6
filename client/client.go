// Package client is a small HTTP client for the trigramdex server package.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/threatflux/trigramdex/trigram"
)

// Client talks to a running trigramdex server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client pointed at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Index appends a document and returns its assigned DocID.
func (c *Client) Index(text string) (trigram.DocID, error) {
	return c.IndexWithMeta(text, "")
}

// IndexWithMeta appends a document tagged with a scalar metaindex value
// (e.g. a source or path prefix), returning its assigned DocID. An empty
// meta is equivalent to Index.
func (c *Client) IndexWithMeta(text, meta string) (trigram.DocID, error) {
	var resp struct {
		DocID int `json:"doc_id"`
	}
	body := map[string]string{"text": text}
	if meta != "" {
		body["meta"] = meta
	}
	if err := c.postJSON("/index", body, &resp); err != nil {
		return 0, err
	}
	return trigram.DocID(resp.DocID), nil
}

// Query returns the candidate DocIDs for a substring query.
func (c *Client) Query(text string) ([]trigram.DocID, error) {
	return c.QueryMetaEquals(text, "")
}

// QueryMetaEquals runs a substring query ANDed with a metaindex equality
// filter: only DocIDs tagged with exactly metaEquals are returned. An empty
// metaEquals is equivalent to Query.
func (c *Client) QueryMetaEquals(text, metaEquals string) ([]trigram.DocID, error) {
	var resp struct {
		DocIDs []trigram.DocID `json:"doc_ids"`
	}
	body := map[string]string{"text": text}
	if metaEquals != "" {
		body["meta_equals"] = metaEquals
	}
	if err := c.postJSON("/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.DocIDs, nil
}

// Prune requests pruning of postings above percent * N documents.
func (c *Client) Prune(percent float64) (int, error) {
	var resp struct {
		Pruned int `json:"pruned"`
	}
	if err := c.postJSON("/admin/prune", map[string]float64{"percent": percent}, &resp); err != nil {
		return 0, err
	}
	return resp.Pruned, nil
}

// Stats holds the corpus's operational counters as returned by /admin/stats.
type Stats struct {
	DocCount  int    `json:"doc_count"`
	FileSize  int64  `json:"file_size"`
	SyncCount uint64 `json:"sync_count"`
}

func (c *Client) Stats() (Stats, error) {
	var resp Stats
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/admin/stats", nil)
	if err != nil {
		return Stats{}, err
	}
	if err := c.do(req, &resp); err != nil {
		return Stats{}, err
	}
	return resp, nil
}

func (c *Client) postJSON(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
