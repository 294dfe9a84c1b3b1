package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/graphtalk/graphtalk/process"
)

// Recorder accumulates the dispatch steps of one walk at a time.
// Install Observe on the process, call Begin before each walk and
// Finish after it; the returned run plus Steps go to a Store.
//
// Recorder is not safe for concurrent use; each process gets its own.
type Recorder struct {
	gen TokenGenerator

	token   string
	grammar string
	input   string
	steps   []Step
}

// NewRecorder creates a recorder. A nil generator defaults to UUIDv7
// tokens.
func NewRecorder(gen TokenGenerator) *Recorder {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Recorder{gen: gen}
}

// Attach installs the recorder as the process observer.
func (r *Recorder) Attach(p *process.Process) {
	p.SetObserver(r.Observe)
}

// Begin starts recording a new walk and returns its token. Steps of the
// previous walk are dropped.
func (r *Recorder) Begin(grammar, input string) string {
	r.token = r.gen.Generate()
	r.grammar = grammar
	r.input = input
	r.steps = r.steps[:0]
	return r.token
}

// Observe appends one dispatch step. Values are kept in display form.
func (r *Recorder) Observe(s process.StepInfo) {
	r.steps = append(r.steps, Step{
		RunToken: r.token,
		Seq:      s.Seq,
		Current:  display(s.Current),
		Head:     display(s.Head),
		Result:   display(s.Result),
	})
}

// Token returns the current run token, empty before the first Begin.
func (r *Recorder) Token() string { return r.token }

// Steps returns the steps recorded since Begin. The slice is shared
// with the recorder; callers must not modify it.
func (r *Recorder) Steps() []Step { return r.steps }

// Finish closes the recording with the walk's outcome.
func (r *Recorder) Finish(ok bool, parsedLen int) Run {
	return Run{
		Token:     r.token,
		Grammar:   r.grammar,
		Input:     r.input,
		OK:        ok,
		ParsedLen: parsedLen,
		CreatedAt: time.Now().UTC(),
	}
}

// Flush writes the finished run and its steps to the store.
func (r *Recorder) Flush(ctx context.Context, s *Store, run Run) error {
	if err := s.WriteRun(ctx, run); err != nil {
		return err
	}
	return s.WriteSteps(ctx, r.steps)
}

func display(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
