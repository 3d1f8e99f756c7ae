package repository

import (
	"fmt"
	"strings"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
)

// Layout names a snapshot rendering.
type Layout string

// Supported layouts.
const (
	// LayoutCompact is the single-line archive format published remotely.
	LayoutCompact Layout = "compact"
	// LayoutReadable is the multi-line download format sorted by time.
	LayoutReadable Layout = "readable"
)

const (
	stampLayout    = "2006-01-02 15:04:05"
	filenameLayout = "20060102_150405"
	entrySeparator = " | "
	ruleWidth      = 60
)

// RenderCompact renders valid records as
// "As of: <stamp> from: <url> | <category> : <time> by: <runner>  | ...".
func RenderCompact(set *model.CategorySet, game catalog.GameProfile, stamp string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As of: %s from: %s | ", stamp, game.SourceURL)
	for _, rec := range set.Valid() {
		fmt.Fprintf(&b, "%s : %s by: %s  | ", rec.Category, rec.DetailedTime, rec.RunnerName)
	}
	return b.String()
}

// RenderReadable renders valid records fastest first, one block per record.
func RenderReadable(set *model.CategorySet, game catalog.GameProfile, stamp string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Speedrun World Records\n", game.Name)
	fmt.Fprintf(&b, "Generated on: %s\n", stamp)
	fmt.Fprintf(&b, "Data source: %s\n", game.SourceURL)
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteString("\n\n")
	for _, rec := range set.SortedByTime() {
		fmt.Fprintf(&b, "Category: %s\n", rec.Category)
		fmt.Fprintf(&b, "Time: %s\n", rec.DetailedTime)
		fmt.Fprintf(&b, "Runner: %s\n", rec.RunnerName)
		fmt.Fprintf(&b, "Date: %s\n", rec.SubmissionDate)
		b.WriteString("\n")
	}
	return b.String()
}

// compactEntries splits a compact snapshot into its record entries, dropping
// the header segment.
func compactEntries(content string) []string {
	parts := strings.Split(content, entrySeparator)
	if len(parts) <= 1 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
