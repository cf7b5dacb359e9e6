package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorpusFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create corpus file: %v", err)
	}
	defer f.Close()
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatalf("write corpus file: %v", err)
		}
	}
	return path
}

func TestRunIndexAndSearch(t *testing.T) {
	path := writeCorpusFile(t, "foo", "foobar", "zotzot")
	s := &session{}

	if err := s.runIndex([]string{path}); err != nil {
		t.Fatalf("runIndex: %v", err)
	}
	if len(s.docs) != 3 {
		t.Fatalf("loaded %d docs, want 3", len(s.docs))
	}

	if err := s.runSearch([]string{"foo"}); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if len(s.ids) != 2 {
		t.Errorf("search results = %v, want 2 hits", s.ids)
	}
}

func TestRunSearchWithoutIndexErrors(t *testing.T) {
	s := &session{}
	if err := s.runSearch([]string{"foo"}); err == nil {
		t.Error("expected error searching before indexing")
	}
}

func TestRunBrute(t *testing.T) {
	path := writeCorpusFile(t, "foo", "foobar", "zotzot")
	s := &session{}
	if err := s.runIndex([]string{path}); err != nil {
		t.Fatalf("runIndex: %v", err)
	}

	if err := s.runBrute([]string{"bar"}); err != nil {
		t.Fatalf("runBrute: %v", err)
	}
	if len(s.ids) != 1 || s.ids[0] != 1 {
		t.Errorf("runBrute results = %v, want [1]", s.ids)
	}
}

func TestRunPruneRejectsOutOfRangePercent(t *testing.T) {
	path := writeCorpusFile(t, "foo", "bar")
	s := &session{}
	if err := s.runIndex([]string{path}); err != nil {
		t.Fatalf("runIndex: %v", err)
	}
	if err := s.runPrune([]string{"0"}); err == nil {
		t.Error("expected error for percent 0")
	}
}
