package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/graphtalk/graphtalk/grammar"
	"github.com/graphtalk/graphtalk/process"
	"github.com/graphtalk/graphtalk/trace"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Database string

	// TokenGenerator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator trace.TokenGenerator
}

// ParseResult holds the outcome of one walk.
type ParseResult struct {
	Definition   string `json:"definition"`
	Input        string `json:"input"`
	OK           bool   `json:"ok"`
	ParsedLength int    `json:"parsed_length"`
	LastParsed   string `json:"last_parsed,omitempty"`
	Remaining    string `json:"remaining,omitempty"`
	RunToken     string `json:"run_token,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <grammar-dir> <definition> <input>",
		Short: "Walk input text through a grammar definition",
		Long: `Walk input text through a grammar definition.

Loads the CUE grammar package from the directory, builds the named
definition into an executable graph, and drives the input through it.
Input is normalized to NFC before the walk so composed and decomposed
forms match the same conditions.

With --db, every step of the walk is recorded to a SQLite trace
database and the run token is printed for later inspection.

Exit codes:
  0 - Input accepted
  1 - Input rejected
  2 - Command error (bad grammar, unknown definition, etc.)

Examples:
  graphtalk parse ./grammars digits "12345"
  graphtalk parse ./grammars digits "12345" --db ./trace.db
  graphtalk parse ./grammars digits "12x" --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (optional)")

	return cmd
}

func runParse(opts *ParseOptions, grammarDir, defName, input string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	// Load and build the grammar
	slog.Debug("loading grammar", "dir", grammarDir)
	loadResult, loadErrors := grammar.LoadDefinitions(grammarDir, grammar.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return WrapExitError(ExitCommandError, "failed to load grammar", loadErrors[0])
	}

	def := loadResult.Definition(defName)
	if def == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("definition not found: %s", defName))
	}

	g, err := grammar.Build(def)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build grammar", err)
	}
	slog.Debug("grammar built", "definition", defName, "notions", len(g.Notions()), "relations", len(g.Relations()))

	// Composed and decomposed input must walk the same way
	text := norm.NFC.String(input)

	pp := process.NewParsingProcess()

	// Optional trace recording
	var rec *trace.Recorder
	var st *trace.Store
	if opts.Database != "" {
		st, err = trace.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing trace database", "error", closeErr)
			}
		}()

		rec = trace.NewRecorder(opts.TokenGenerator)
		rec.Attach(pp.Process)
		rec.Begin(defName, text)
		slog.Debug("trace recording enabled", "db", opts.Database, "token", rec.Token())
	}

	ok, parsed := pp.Parse(g.Root(), text, nil)
	slog.Debug("walk finished", "ok", ok, "parsed", parsed)

	result := ParseResult{
		Definition:   defName,
		Input:        text,
		OK:           ok,
		ParsedLength: parsed,
		LastParsed:   pp.LastParsed(),
		Remaining:    pp.Text(),
	}

	if rec != nil {
		run := rec.Finish(ok, parsed)
		if err := rec.Flush(context.Background(), st, run); err != nil {
			return WrapExitError(ExitCommandError, "failed to record trace", err)
		}
		result.RunToken = run.Token
	}

	if err := outputParseResult(opts, cmd, result); err != nil {
		return err
	}

	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("input rejected after %d character(s)", parsed))
	}
	return nil
}

// outputParseResult writes the walk outcome in the configured format.
func outputParseResult(opts *ParseOptions, cmd *cobra.Command, result ParseResult) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if result.OK {
		fmt.Fprintf(w, "✓ accepted: %q (%d characters)\n", result.Input, result.ParsedLength)
	} else {
		fmt.Fprintf(w, "✗ rejected after %d character(s)\n", result.ParsedLength)
		if result.Remaining != "" {
			fmt.Fprintf(w, "  remaining: %q\n", result.Remaining)
		}
	}
	if opts.Verbose && result.LastParsed != "" {
		fmt.Fprintf(w, "  last parsed: %q\n", result.LastParsed)
	}
	if result.RunToken != "" {
		fmt.Fprintf(w, "  run: %s\n", result.RunToken)
	}
	return nil
}
