package types

import "time"

// ParserState is the persistent cursor for one chain's Block Pipeline.
// CurrentBlock <= LatestBlock is the steady-state invariant; it may be
// violated transiently after a rewind and is recoverable by refetching.
type ParserState struct {
	Chain         ChainId
	CurrentBlock  int64
	LatestBlock   int64
	IsEnabled     bool
	UpdatedAt     time.Time
	ErrorCount    int64
	LastError     string
	LastErrorTime time.Time
}

// IsStale reports whether the row has not advanced within staleness,
// the detection rule used to flag a wedged pipeline.
func (p ParserState) IsStale(now time.Time, staleness time.Duration) bool {
	return now.Sub(p.UpdatedAt) > staleness
}
