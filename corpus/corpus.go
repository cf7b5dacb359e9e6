// Package corpus loads and persists the ordered document set a trigram
// index is built over. The core trigram package never retains document
// text, only identifiers — Corpus is where DocID maps back to the original
// bytes, and where the "document loading from files" spec.md places outside
// the index core actually lives.
//
// Corpus is append-only, mirroring the trigram index's own lifecycle: a
// document, once added, is never edited or removed, and its DocID (its
// index in Documents) is stable for the corpus's lifetime.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	mmap "github.com/edsrzf/mmap-go"
)

// Options configures a Corpus's on-disk snapshot behavior. MaxSize is not
// read by Corpus: Sync grows the snapshot file as far as the encoded
// documents require, with no upper bound.
type Options struct {
	InitialSize  int64
	MaxSize      int64
	SyncInterval time.Duration
}

// DefaultOptions mirrors the teacher store's defaults.
var DefaultOptions = Options{
	InitialSize:  1 << 20,
	MaxSize:      256 << 20,
	SyncInterval: time.Minute,
}

// Stats reports point-in-time operational counters, surfaced by the server
// package's /admin/stats endpoint.
type Stats struct {
	DocCount  int
	FileSize  int64
	SyncCount uint64
	Dirty     bool
}

// Corpus is a memory-mapped, YAML-backed append-only list of documents.
type Corpus struct {
	mu sync.RWMutex

	mm       mmap.MMap
	filepath string
	docs     []string
	dirty    bool
	syncs    uint64
	codec    *yamlCodec

	stopSync chan struct{}
}

// Open opens (creating if necessary) the snapshot file at path and loads any
// documents already persisted there.
func Open(path string, opts Options) (*Corpus, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("corpus: stat %s: %w", path, err)
	}
	if info.Size() < opts.InitialSize {
		if err := file.Truncate(opts.InitialSize); err != nil {
			return nil, fmt.Errorf("corpus: truncate %s: %w", path, err)
		}
	}

	mm, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("corpus: mmap %s: %w", path, err)
	}

	c := &Corpus{
		mm:       mm,
		filepath: path,
		codec:    newYAMLCodec(),
		stopSync: make(chan struct{}),
	}

	if err := c.load(); err != nil {
		mm.Unmap()
		return nil, fmt.Errorf("corpus: load %s: %w", path, err)
	}

	if opts.SyncInterval > 0 {
		go c.periodicSync(opts.SyncInterval)
	}

	return c, nil
}

// Documents returns a copy of every document added so far, DocID order.
func (c *Corpus) Documents() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.docs))
	copy(out, c.docs)
	return out
}

// Text returns the document at DocID i. Callers in this repository get i
// from a trigram.Index query result, which is always in range as long as no
// document is ever removed — Corpus, like the index, never removes one.
func (c *Corpus) Text(i int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.docs) {
		return "", false
	}
	return c.docs[i], true
}

// Append adds a document and marks the corpus dirty; it does not assign the
// DocID itself — callers pair this with trigram.Index.Add so the corpus
// index and the trigram DocID stay in lockstep.
func (c *Corpus) Append(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, text)
	c.dirty = true
	return len(c.docs) - 1
}

// Len returns the number of documents added so far.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Sync forces an encode-and-flush to the memory-mapped snapshot.
func (c *Corpus) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sync()
}

func (c *Corpus) sync() error {
	if !c.dirty {
		return nil
	}

	data, err := c.codec.Encode(c.docs)
	if err != nil {
		return fmt.Errorf("corpus: encode: %w", err)
	}

	if len(data) > len(c.mm) {
		if err := c.growFile(int64(len(data))); err != nil {
			return fmt.Errorf("corpus: grow: %w", err)
		}
	}

	copy(c.mm, data)
	for i := len(data); i < len(c.mm); i++ {
		c.mm[i] = 0
	}
	if err := c.mm.Flush(); err != nil {
		return fmt.Errorf("corpus: flush: %w", err)
	}

	c.dirty = false
	c.syncs++
	return nil
}

func (c *Corpus) growFile(required int64) error {
	newSize := int64(len(c.mm))
	if newSize == 0 {
		newSize = 1 << 16
	}
	for newSize < required {
		newSize *= 2
	}
	return c.resize(newSize)
}

func (c *Corpus) resize(newSize int64) error {
	if err := c.mm.Unmap(); err != nil {
		return fmt.Errorf("unmap: %w", err)
	}

	file, err := os.OpenFile(c.filepath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	defer file.Close()

	if err := file.Truncate(newSize); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	mm, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("remap: %w", err)
	}
	c.mm = mm
	return nil
}

func (c *Corpus) load() error {
	size := c.contentSize()
	if size == 0 {
		c.docs = nil
		return nil
	}

	docs, err := c.codec.Decode(c.mm[:size])
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.docs = nil
			return nil
		}
		return err
	}
	c.docs = docs
	return nil
}

// contentSize finds the end of the written YAML by looking for the
// null-byte padding sync() leaves after the encoded document.
func (c *Corpus) contentSize() int {
	for i, b := range c.mm {
		if b == 0 {
			return i
		}
	}
	return len(c.mm)
}

func (c *Corpus) periodicSync(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.sync()
			c.mu.Unlock()
		case <-c.stopSync:
			return
		}
	}
}

// Stats returns current operational counters.
func (c *Corpus) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		DocCount:  len(c.docs),
		FileSize:  int64(len(c.mm)),
		SyncCount: c.syncs,
		Dirty:     c.dirty,
	}
}

// Close flushes any pending writes and releases the memory mapping.
func (c *Corpus) Close() error {
	close(c.stopSync)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sync(); err != nil {
		return fmt.Errorf("corpus: sync on close: %w", err)
	}
	return c.mm.Unmap()
}
