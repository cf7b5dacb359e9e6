// Command trigramrepl is an interactive shell over a trigram.Index: it
// loads a corpus from a newline-delimited file, then accepts index/search/
// print/brute commands. This is spec.md's "interactive command REPL" and
// "brute-force substring verification" — both explicitly outside the
// trigram core, both implemented only here.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/threatflux/trigramdex/trigram"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	infoColor  = color.New(color.FgCyan)
	matchColor = color.New(color.FgGreen)
)

type session struct {
	idx  *trigram.Index
	docs []string
	ids  []trigram.DocID
}

func main() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "bye",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	s := &session{}

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF, readline.ErrInterrupt
			fmt.Println("bye")
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		if err := s.run(words[0], words[1:]); err != nil {
			errorColor.Printf("error: %v\n", err)
		}
	}
}

func (s *session) run(cmd string, args []string) error {
	switch cmd {
	case "index":
		return s.runIndex(args)
	case "search":
		return s.runSearch(args)
	case "print":
		return s.runPrint(args)
	case "brute":
		return s.runBrute(args)
	case "prune":
		return s.runPrune(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (s *session) runIndex(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: index <file>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var docs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		docs = append(docs, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read line: %w", err)
	}

	byteDocs := make([][]byte, len(docs))
	for i, d := range docs {
		byteDocs[i] = []byte(d)
	}

	t0 := time.Now()
	idx := trigram.NewWithDocuments(byteDocs)

	infoColor.Printf("indexed %d documents in %s\n", len(docs), time.Since(t0))

	s.idx = idx
	s.docs = docs
	s.ids = nil
	return nil
}

func (s *session) runSearch(args []string) error {
	if s.idx == nil {
		return fmt.Errorf("no index loaded")
	}
	if len(args) == 0 {
		return fmt.Errorf("missing query")
	}

	var ts []trigram.T
	for _, q := range args {
		ts = append(ts, trigram.ExtractAll([]byte(q), nil)...)
	}

	t0 := time.Now()
	ids := s.idx.QueryTrigrams(ts)
	infoColor.Printf("found %d hits in %s\n", len(ids), time.Since(t0))
	s.ids = ids
	return nil
}

func (s *session) runPrint(_ []string) error {
	if s.ids == nil {
		return fmt.Errorf("no search results")
	}
	for _, id := range s.ids {
		if int(id) < 0 || int(id) >= len(s.docs) {
			continue
		}
		matchColor.Println(s.docs[id])
	}
	return nil
}

// runBrute linearly scans the loaded corpus for documents containing every
// pattern as a literal substring — the exact-match verification pass that
// narrows the index's conservative candidate set down to true matches.
func (s *session) runBrute(args []string) error {
	if s.docs == nil {
		return fmt.Errorf("no index loaded")
	}
	if len(args) == 0 {
		return fmt.Errorf("missing query")
	}

	t0 := time.Now()
	var ids []trigram.DocID
nextDocument:
	for i, d := range s.docs {
		for _, pat := range args {
			if !strings.Contains(d, pat) {
				continue nextDocument
			}
		}
		ids = append(ids, trigram.DocID(i))
	}

	infoColor.Printf("found %d documents in %s\n", len(ids), time.Since(t0))
	s.ids = ids
	return nil
}

func (s *session) runPrune(args []string) error {
	if s.idx == nil {
		return fmt.Errorf("no index loaded")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: prune <percent 1..99>")
	}
	percent, err := parsePercent(args[0])
	if err != nil {
		return err
	}

	n := s.idx.Prune(percent)
	infoColor.Printf("pruned %d posting(s)\n", n)
	return nil
}

// parsePercent validates the REPL's own prune command input. The core
// accepts any positive float; this wrapper enforces the 1..99 range
// spec.md §6 assigns to it.
func parsePercent(s string) (float64, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("percent must be an integer 1..99: %w", err)
	}
	if n < 1 || n > 99 {
		return 0, fmt.Errorf("percent must be in 1..99, got %d", n)
	}
	return float64(n) / 100.0, nil
}
