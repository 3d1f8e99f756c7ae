package repository

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// RecordDiff returns a unified diff of the record entries of two compact
// snapshots. The header stamp is ignored, so an empty result means no record
// changed.
func RecordDiff(prevPath, nextPath string) (string, error) {
	prev, err := os.ReadFile(prevPath)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrFilesystem, prevPath, err)
	}
	next, err := os.ReadFile(nextPath)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrFilesystem, nextPath, err)
	}
	return diffEntries(compactEntries(string(prev)), compactEntries(string(next)), prevPath, nextPath)
}

func diffEntries(a, b []string, fromName, toName string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        withNewlines(a),
		B:        withNewlines(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(ud)
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
