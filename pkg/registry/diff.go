package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrUnknownSHA is returned by Diff when one of the requested SHAs has
// never been recorded.
var ErrUnknownSHA = errors.New("unknown ruleset sha")

// Diff returns a line diff between two recorded rulesets. The output opens
// with "--- fromSHA" and "+++ toSHA" headers followed by one line per
// document line, prefixed "- " for removals, "+ " for additions, and "  "
// for unchanged context.
func (r *Registry) Diff(ctx context.Context, fromSHA, toSHA string) (string, error) {
	from, err := r.Get(ctx, fromSHA)
	if err != nil {
		return "", err
	}
	if from == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownSHA, fromSHA)
	}

	to, err := r.Get(ctx, toSHA)
	if err != nil {
		return "", err
	}
	if to == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownSHA, toSHA)
	}

	return renderLineDiff(fromSHA, toSHA, from.Content, to.Content), nil
}

// renderLineDiff produces a line-oriented diff of two documents. The inputs
// are re-encoded line by line so the diff never splits mid-line.
func renderLineDiff(fromSHA, toSHA, fromContent, toContent string) string {
	dmp := diffmatchpatch.New()
	fromChars, toChars, lines := dmp.DiffLinesToChars(fromContent, toContent)
	diffs := dmp.DiffMain(fromChars, toChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", fromSHA, toSHA)

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}

		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}

		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}
