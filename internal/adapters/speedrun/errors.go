package speedrun

import "errors"

// Sentinel kinds for leaderboard failures.
var (
	// ErrUpstream covers transport failures and non-2xx responses.
	ErrUpstream = errors.New("leaderboard upstream error")
	// ErrParse covers 2xx responses missing the expected fields.
	ErrParse = errors.New("leaderboard response malformed")
)
