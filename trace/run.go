package trace

import "time"

// Run is one recorded walk: which grammar ran, what input it got and
// how it ended.
type Run struct {
	Token     string
	Grammar   string
	Input     string
	OK        bool
	ParsedLen int
	CreatedAt time.Time
}

// Step is one dispatch of a run's main loop. Current, Head and Result
// are stored in display form; traces are for reading, not replaying.
type Step struct {
	RunToken string
	Seq      int
	Current  string
	Head     string
	Result   string
}
