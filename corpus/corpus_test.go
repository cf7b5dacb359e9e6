package corpus

import (
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Corpus {
	t.Helper()
	opts := Options{InitialSize: 4096, MaxSize: 1 << 20, SyncInterval: 0}
	c, err := Open(filepath.Join(t.TempDir(), "corpus.yaml"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAppendAssignsSequentialIndices(t *testing.T) {
	c := openTest(t)
	for i, want := range []string{"foo", "bar", "baz"} {
		if got := c.Append(want); got != i {
			t.Errorf("Append(%q) = %d, want %d", want, got, i)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestTextRoundTrip(t *testing.T) {
	c := openTest(t)
	c.Append("hello")
	c.Append("world")

	got, ok := c.Text(1)
	if !ok || got != "world" {
		t.Errorf("Text(1) = (%q, %v), want (%q, true)", got, ok, "world")
	}
	if _, ok := c.Text(5); ok {
		t.Errorf("Text(5) on a 2-document corpus should not be found")
	}
}

func TestSyncAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	opts := Options{InitialSize: 4096, MaxSize: 1 << 20, SyncInterval: 0}

	c, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Append("foo")
	c.Append("foobar")
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	docs := reopened.Documents()
	want := []string{"foo", "foobar"}
	if len(docs) != len(want) {
		t.Fatalf("Documents() = %v, want %v", docs, want)
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("Documents()[%d] = %q, want %q", i, docs[i], want[i])
		}
	}
}

func TestGrowFileOnLargeSnapshot(t *testing.T) {
	c := openTest(t)
	big := make([]byte, 16<<10)
	for i := range big {
		big[i] = 'x'
	}
	c.Append(string(big))
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync after growth: %v", err)
	}
	if c.Stats().FileSize < int64(len(big)) {
		t.Errorf("file did not grow to hold the snapshot: %d bytes", c.Stats().FileSize)
	}
}

func TestPeriodicSyncStopsOnClose(t *testing.T) {
	opts := Options{InitialSize: 4096, MaxSize: 1 << 20, SyncInterval: 10 * time.Millisecond}
	c, err := Open(filepath.Join(t.TempDir(), "corpus.yaml"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Append("x")
	time.Sleep(30 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
