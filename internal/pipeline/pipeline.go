// Package pipeline reads and writes launch streams on stdin/stdout.
// JSONL, one launch object per line, is the canonical pipe format.
package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/derickschaefer/liftoff/internal/model"
)

// ReadLaunches reads launches from r. Input is JSONL; blank lines and lines
// starting with // are skipped. A single JSON array (as the backend returns
// from GET /launches) is accepted too.
func ReadLaunches(r io.Reader) ([]model.Launch, error) {
	br := bufio.NewReader(r)
	if first, err := peekNonSpace(br); err == nil && first == '[' {
		var launches []model.Launch
		if err := json.NewDecoder(br).Decode(&launches); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		if len(launches) == 0 {
			return nil, fmt.Errorf("no launches read from input (is stdin empty?)")
		}
		for i := range launches {
			launches[i].Status = model.ParseStatus(string(launches[i].Status))
		}
		return launches, nil
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var launches []model.Launch
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var l model.Launch
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if l.ID == "" {
			return nil, fmt.Errorf("line %d: missing launch_id", lineNum)
		}
		l.Status = model.ParseStatus(string(l.Status))
		launches = append(launches, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(launches) == 0 {
		return nil, fmt.Errorf("no launches read from input (is stdin empty?)")
	}
	return launches, nil
}

// peekNonSpace discards leading whitespace and returns the next byte
// without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.ReadByte(); err != nil {
			return 0, err
		}
	}
}

// WriteJSONL writes launches as JSONL to w.
func WriteJSONL(w io.Writer, launches []model.Launch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range launches {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY reports whether stdout is a terminal rather than a pipe.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StdinIsPiped reports whether stdin is redirected from a file or pipe.
func StdinIsPiped() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}
