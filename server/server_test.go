package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/threatflux/trigramdex/corpus"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := corpus.Open(filepath.Join(t.TempDir(), "corpus.yaml"), corpus.Options{
		InitialSize: 4096, MaxSize: 1 << 20, SyncInterval: 0,
	})
	if err != nil {
		t.Fatalf("corpus.Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	c.Append("foo")
	c.Append("foobar")
	c.Append("zotzot")

	return New(c, false)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/query", queryRequest{Text: "foo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.DocIDs) != 2 {
		t.Errorf("DocIDs = %v, want 2 entries", resp.DocIDs)
	}
}

func TestHandleIndexThenQuery(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/index", indexRequest{Text: "zottlequx"})
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var idxResp indexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &idxResp); err != nil {
		t.Fatalf("decode index response: %v", err)
	}
	if idxResp.DocID != 3 {
		t.Errorf("DocID = %d, want 3", idxResp.DocID)
	}

	rec = doJSON(t, s, http.MethodPost, "/query", queryRequest{Text: "zottle"})
	var qResp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &qResp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(qResp.DocIDs) != 1 || qResp.DocIDs[0] != 3 {
		t.Errorf("DocIDs = %v, want [3]", qResp.DocIDs)
	}
}

func TestHandleIndexWithMetaThenQueryFiltered(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/index", indexRequest{Text: "foobfoo", Meta: "sourceA"})
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var idxResp indexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &idxResp); err != nil {
		t.Fatalf("decode index response: %v", err)
	}

	rec = doJSON(t, s, http.MethodPost, "/query", queryRequest{Text: "foo", MetaEquals: "sourceA"})
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var qResp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &qResp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(qResp.DocIDs) != 1 || int(qResp.DocIDs[0]) != idxResp.DocID {
		t.Errorf("DocIDs = %v, want [%d]", qResp.DocIDs, idxResp.DocID)
	}
}

func TestHandleQueryMetaEqualsExcludesUntaggedDocs(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/query", queryRequest{Text: "foo", MetaEquals: "sourceA"})
	if rec.Code != http.StatusOK {
		t.Fatalf("query status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var qResp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &qResp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(qResp.DocIDs) != 0 {
		t.Errorf("DocIDs = %v, want none (no document tagged sourceA)", qResp.DocIDs)
	}
}

func TestHandlePruneRejectsOutOfRangePercent(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/admin/prune", pruneRequest{Percent: 1.5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/admin/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var st statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.DocCount != 3 {
		t.Errorf("DocCount = %d, want 3", st.DocCount)
	}
}
