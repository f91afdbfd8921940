package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aretw0/swiftnote"
)

const timeLayout = "2006-01-02 15:04"

func printNotes(w io.Writer, notes []swiftnote.Note) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, "No notes.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, n := range notes {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", n.ID, n.UpdatedAt.Local().Format(timeLayout), n.Title)
	}
	return tw.Flush()
}

func printNote(w io.Writer, n swiftnote.Note) error {
	_, err := fmt.Fprintf(w, "# %s\n\nid: %d\ncreated: %s\nupdated: %s\n\n%s",
		n.Title, n.ID,
		n.CreatedAt.Local().Format(timeLayout),
		n.UpdatedAt.Local().Format(timeLayout),
		n.Content,
	)
	if err == nil && n.Content != "" && n.Content[len(n.Content)-1] != '\n' {
		_, err = fmt.Fprintln(w)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

// parseSince accepts a duration back from now ("36h") or a date ("2024-03-01",
// RFC 3339 also works).
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want a duration like 24h or a date like 2024-03-01", s)
}
