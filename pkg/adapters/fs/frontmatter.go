package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/swiftnote/pkg/core"
)

const noteExt = ".md"

var (
	fenceOpen  = []byte("---\n")
	fenceClose = []byte("\n---\n")

	errNoFrontmatter = errors.New("missing frontmatter")
)

// frontmatter is the YAML header stored above the note body.
type frontmatter struct {
	ID        int64  `yaml:"id"`
	Title     string `yaml:"title"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

// encodeNote renders a note as Markdown with a YAML frontmatter block.
// The body is written verbatim so decodeNote returns it byte for byte.
func encodeNote(n core.Note) ([]byte, error) {
	meta, err := yaml.Marshal(frontmatter{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: n.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(fenceOpen)
	buf.Write(meta)
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// decodeNote parses a file produced by encodeNote.
func decodeNote(data []byte) (core.Note, error) {
	if !bytes.HasPrefix(data, fenceOpen) {
		return core.Note{}, errNoFrontmatter
	}
	rest := data[len(fenceOpen):]

	// yaml.Marshal always ends with a newline, so the closing fence is
	// found as "\n---\n" with the newline belonging to the header.
	end := bytes.Index(rest, fenceClose)
	if end < 0 {
		return core.Note{}, errNoFrontmatter
	}

	var fm frontmatter
	if err := yaml.Unmarshal(rest[:end+1], &fm); err != nil {
		return core.Note{}, fmt.Errorf("invalid frontmatter: %w", err)
	}

	created, err := parseStamp(fm.CreatedAt)
	if err != nil {
		return core.Note{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updated, err := parseStamp(fm.UpdatedAt)
	if err != nil {
		return core.Note{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	return core.Note{
		ID:        fm.ID,
		Title:     fm.Title,
		Content:   string(rest[end+len(fenceClose):]),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func parseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// noteFile returns the file name for id, e.g. "42.md".
func noteFile(id int64) string {
	return strconv.FormatInt(id, 10) + noteExt
}

// parseNoteFile extracts the id from a note file name.
func parseNoteFile(name string) (int64, bool) {
	base, ok := strings.CutSuffix(name, noteExt)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(base, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
