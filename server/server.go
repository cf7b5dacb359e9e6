// Package server exposes a trigram index and its backing corpus over HTTP
// using gin, supplying the concurrency-safe wrapper spec.md §5 requires of
// any caller that needs concurrent access: query handlers take a read lock,
// mutating handlers take a write lock, matching the core's own
// readers-while-no-writer contract.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/threatflux/trigramdex/corpus"
	"github.com/threatflux/trigramdex/metaindex"
	"github.com/threatflux/trigramdex/trigram"
)

// Server wires a trigram.Index, its Corpus, and an optional metaindex field
// behind gin route handlers.
type Server struct {
	mu     sync.RWMutex
	idx    *trigram.Index
	docs   *corpus.Corpus
	meta   *metaindex.Index
	engine *gin.Engine
	debug  bool
}

// New builds a Server over an already-loaded corpus, reconstructing the
// trigram index from its documents (the index itself is never persisted —
// see SPEC_FULL.md's Non-goals).
func New(docs *corpus.Corpus, debug bool) *Server {
	byteDocs := make([][]byte, 0, docs.Len())
	for _, d := range docs.Documents() {
		byteDocs = append(byteDocs, []byte(d))
	}

	s := &Server{
		idx:   trigram.NewWithDocuments(byteDocs),
		docs:  docs,
		meta:  metaindex.New(),
		debug: debug,
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if debug {
		r.Use(gin.Logger())
	}

	index := r.Group("/index")
	{
		index.POST("", s.handleIndex())
	}
	query := r.Group("/query")
	{
		query.POST("", s.handleQuery())
	}
	admin := r.Group("/admin")
	{
		admin.POST("/prune", s.handlePrune())
		admin.GET("/stats", s.handleStats())
		admin.POST("/sync", s.handleSync())
	}

	s.engine = r
	return s
}

// Handler returns the underlying http.Handler, for use with http.Server or
// httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run starts listening on addr, blocking until the server exits.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// indexRequest / indexResponse are the wire shapes for POST /index. Meta is
// an optional scalar tag (e.g. a source or path prefix) recorded in the
// metaindex alongside the document; callers that never set it simply never
// show up in a meta_equals filter.
type indexRequest struct {
	Text string `json:"text" binding:"required"`
	Meta string `json:"meta,omitempty"`
}

type indexResponse struct {
	DocID int `json:"doc_id"`
}

func (s *Server) handleIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req indexRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		corpusID := s.docs.Append(req.Text)
		docID := s.idx.Add([]byte(req.Text))
		if int(docID) != corpusID {
			// Cannot happen as long as every mutation goes through this
			// handler: the corpus and the index are appended to in
			// lockstep under the same lock.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "corpus/index DocID drift"})
			return
		}

		if req.Meta != "" {
			s.meta.Set(docID, req.Meta)
		}

		c.JSON(http.StatusOK, indexResponse{DocID: int(docID)})
	}
}

// queryRequest's MetaEquals, when set, ANDs the trigram candidate set with
// the metaindex's exact-match filter via trigram.Intersect — "substring X
// AND field Y = Z" in one round trip.
type queryRequest struct {
	Text       string `json:"text" binding:"required"`
	MetaEquals string `json:"meta_equals,omitempty"`
}

type queryResponse struct {
	DocIDs []trigram.DocID `json:"doc_ids"`
}

func (s *Server) handleQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s.mu.RLock()
		ids := s.idx.Query([]byte(req.Text))
		if req.MetaEquals != "" {
			ids = trigram.Intersect(ids, s.meta.Equal(req.MetaEquals))
		}
		s.mu.RUnlock()

		c.JSON(http.StatusOK, queryResponse{DocIDs: ids})
	}
}

type pruneRequest struct {
	Percent float64 `json:"percent" binding:"required"`
}

type pruneResponse struct {
	Pruned int `json:"pruned"`
}

func (s *Server) handlePrune() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pruneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Percent <= 0 || req.Percent >= 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("percent must be in (0,1), got %v", req.Percent)})
			return
		}

		s.mu.Lock()
		n := s.idx.Prune(req.Percent)
		s.mu.Unlock()

		c.JSON(http.StatusOK, pruneResponse{Pruned: n})
	}
}

type statsResponse struct {
	DocCount  int    `json:"doc_count"`
	FileSize  int64  `json:"file_size"`
	SyncCount uint64 `json:"sync_count"`
}

func (s *Server) handleStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := s.docs.Stats()
		c.JSON(http.StatusOK, statsResponse{
			DocCount:  st.DocCount,
			FileSize:  st.FileSize,
			SyncCount: st.SyncCount,
		})
	}
}

func (s *Server) handleSync() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.docs.Sync(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
