package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printView prints a request summary followed by its progress steps and
// image groups.
func printView(out io.Writer, v *requestView) error {
	req := v.Request
	fmt.Fprintf(out, "Request %s\n", req.ID)
	fmt.Fprintf(out, "  Title:     %s\n", req.Title)
	fmt.Fprintf(out, "  Status:    %s\n", req.Status)
	fmt.Fprintf(out, "  Priority:  %s\n", req.Priority)
	fmt.Fprintf(out, "  Property:  %s\n", req.PropertyID)
	fmt.Fprintf(out, "  Rentee:    %s\n", req.RenteeID)
	if req.AssignedTo != nil {
		fmt.Fprintf(out, "  Assignee:  %s\n", *req.AssignedTo)
	}
	fmt.Fprintf(out, "  Version:   %d\n", req.Version)
	fmt.Fprintf(out, "  Comments:  %d\n", len(req.Comments))

	fmt.Fprintln(out)
	if c := v.Progress.Cancellation; c != nil {
		fmt.Fprintf(out, "Cancelled %s: %s\n", formatTime(c.CancelledAt), orDash(c.Reason))
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "STEP\tDONE\tAT\tDESCRIPTION"); err != nil {
			return fmt.Errorf("writing table header: %w", err)
		}
		for _, s := range v.Progress.Steps {
			done := " "
			if s.Completed {
				done = "x"
			}
			if _, err := fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", s.Title, done, formatTime(s.At), s.Description); err != nil {
				return fmt.Errorf("writing table row: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	for _, g := range v.Gallery {
		fmt.Fprintf(out, "\n%s (%d)\n", g.Label, len(g.Images))
		for _, img := range g.Images {
			fmt.Fprintf(out, "  %s  %s\n", formatTime(img.UploadedAt), img.ImageURL)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
