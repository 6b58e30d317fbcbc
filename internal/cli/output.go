package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

// render prints v as indented JSON with --raw, otherwise as a table.
func (s *session) render(v any, header string, rows func(w io.Writer)) error {
	if s.raw {
		return writeJSON(s.out, v)
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

// done prints a one-line confirmation, or {} with --raw.
func (s *session) done(format string, args ...any) error {
	if s.raw {
		return writeJSON(s.out, map[string]any{})
	}
	_, err := fmt.Fprintf(s.out, format+"\n", args...)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError writes err as one red line, plus a hint for credential failures.
func printError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintf(w, "ERROR: %v\n", err)

	var authErr *rpc.AuthenticationError
	if errors.As(err, &authErr) {
		_, _ = color.New(color.FgYellow).Fprintln(w,
			"hint: check --sf-login/--sf-password or SF_USERNAME/SF_PASSWORD")
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
