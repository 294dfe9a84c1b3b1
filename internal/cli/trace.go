package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphtalk/graphtalk/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunToken string // optional - show steps for one run
}

// RunSummary is one recorded run in list output.
type RunSummary struct {
	Token        string `json:"token"`
	Grammar      string `json:"grammar"`
	Input        string `json:"input"`
	OK           bool   `json:"ok"`
	ParsedLength int    `json:"parsed_length"`
	CreatedAt    string `json:"created_at"`
}

// StepView is one recorded step in show output.
type StepView struct {
	Seq     int    `json:"seq"`
	Current string `json:"current"`
	Head    string `json:"head"`
	Result  string `json:"result,omitempty"`
}

// RunListResult holds the list output.
type RunListResult struct {
	Runs []RunSummary `json:"runs"`
}

// RunDetailResult holds the show output for a single run.
type RunDetailResult struct {
	Run   RunSummary `json:"run"`
	Steps []StepView `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded walks",
		Long: `Inspect walks recorded by parse --db.

Without --run, lists every recorded run in the database. With --run,
shows the full step timeline for that run: which element was current,
the head of the message it handled, and what the handler returned.

Examples:
  graphtalk trace --db ./trace.db
  graphtalk trace --db ./trace.db --run 0190cafe-...
  graphtalk trace --db ./trace.db --run 0190cafe-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token to show steps for")

	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := trace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer st.Close()

	if opts.RunToken == "" {
		return listRuns(ctx, opts, st, cmd)
	}
	return showRun(ctx, opts, st, cmd)
}

// listRuns prints every recorded run.
func listRuns(ctx context.Context, opts *TraceOptions, st *trace.Store, cmd *cobra.Command) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	result := RunListResult{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		result.Runs = append(result.Runs, summarize(run))
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%d run(s)\n\n", len(result.Runs))
	for _, run := range result.Runs {
		fmt.Fprintf(w, "  %s  %s  %s\n", truncateToken(run.Token), walkStatus(run.OK), run.CreatedAt)
		fmt.Fprintf(w, "      grammar=%s input=%q parsed=%d\n", run.Grammar, run.Input, run.ParsedLength)
	}
	return nil
}

// showRun prints the step timeline for a single run.
func showRun(ctx context.Context, opts *TraceOptions, st *trace.Store, cmd *cobra.Command) error {
	run, err := st.ReadRun(ctx, opts.RunToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	steps, err := st.ReadSteps(ctx, opts.RunToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := RunDetailResult{
		Run:   summarize(run),
		Steps: make([]StepView, 0, len(steps)),
	}
	for _, step := range steps {
		result.Steps = append(result.Steps, StepView{
			Seq:     step.Seq,
			Current: step.Current,
			Head:    step.Head,
			Result:  step.Result,
		})
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s\n", result.Run.Token)
	fmt.Fprintf(w, "Grammar: %s\n", result.Run.Grammar)
	fmt.Fprintf(w, "Input: %q\n", result.Run.Input)
	fmt.Fprintf(w, "Status: %s (%d character(s) parsed)\n", walkStatus(result.Run.OK), result.Run.ParsedLength)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Steps ===")
	if len(result.Steps) == 0 {
		fmt.Fprintln(w, "  (no steps)")
		return nil
	}
	for _, step := range result.Steps {
		fmt.Fprintf(w, "  [%d] %s <- %s\n", step.Seq, step.Current, step.Head)
		if opts.Verbose && step.Result != "" {
			fmt.Fprintf(w, "       returned: %s\n", step.Result)
		}
	}
	return nil
}

// summarize converts a stored run to its display form.
func summarize(run trace.Run) RunSummary {
	return RunSummary{
		Token:        run.Token,
		Grammar:      run.Grammar,
		Input:        run.Input,
		OK:           run.OK,
		ParsedLength: run.ParsedLen,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// outputTraceJSON outputs a trace query result as JSON.
func outputTraceJSON(cmd *cobra.Command, result interface{}) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// truncateToken truncates a long run token for display.
func truncateToken(token string) string {
	if len(token) <= 16 {
		return token
	}
	return token[:8] + "..." + token[len(token)-8:]
}

// walkStatus returns a human-readable walk outcome.
func walkStatus(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
