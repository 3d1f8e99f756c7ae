// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// ValidRecordThreshold is the raw time (seconds) a record must exceed to be
// exported. Degenerate categories report a few milliseconds.
const ValidRecordThreshold = 1.0

// Sentinel display values shared with archive consumers.
const (
	UnknownRunner  = "Unknown"
	NoRunsRunner   = "No runs yet"
	UnknownDate    = "Unknown Date"
	NotApplicable  = "N/A"
	secondsPerHour = 3600
)

// Record is the resolved world record of one category.
type Record struct {
	Category       string  `json:"category"`       // display name
	FormattedTime  string  `json:"formatted_time"` // MM:SS or HH:MM:SS
	DetailedTime   string  `json:"detailed_time"`  // formatted time with .mmm
	RawTimeSeconds float64 `json:"raw_time"`       // 0 means no qualifying run
	RunnerName     string  `json:"runner"`
	SubmissionDate string  `json:"date"`
	CategoryKey    string  `json:"category_key"`
}

// Valid reports whether the record qualifies for export.
func (r *Record) Valid() bool {
	return r != nil && r.RawTimeSeconds > ValidRecordThreshold
}

// NoRuns builds the placeholder returned for a category without submissions.
func NoRuns(key, displayName string) Record {
	return Record{
		Category:       displayName,
		FormattedTime:  NotApplicable,
		DetailedTime:   NotApplicable,
		RawTimeSeconds: 0,
		RunnerName:     NoRunsRunner,
		SubmissionDate: NotApplicable,
		CategoryKey:    key,
	}
}

// FormatTime renders seconds as a short and a millisecond-precise string.
// The hour field is omitted when it is zero.
func FormatTime(seconds float64) (formatted, detailed string) {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	// Rounded to whole milliseconds so 3661.005 keeps its 5ms.
	totalMs := int64(math.Round(seconds * 1000))

	ms := totalMs % 1000
	totalSec := totalMs / 1000
	hours := totalSec / secondsPerHour
	minutes := (totalSec % secondsPerHour) / 60
	secs := totalSec % 60

	if hours == 0 {
		formatted = fmt.Sprintf("%02d:%02d", minutes, secs)
	} else {
		formatted = fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return formatted, fmt.Sprintf("%s.%03d", formatted, ms)
}
