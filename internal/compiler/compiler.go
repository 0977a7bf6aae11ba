// Package compiler wires the frontend stages together: parse, bind and
// check ownership, and optionally lint. It is the only package the
// command line tool talks to.
package compiler

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/checker"
	"github.com/velalang/vela/internal/diagnostic"
	"github.com/velalang/vela/internal/linter"
	"github.com/velalang/vela/internal/parser"
)

// Options configures a Compiler
type Options struct {
	Logger  zerolog.Logger
	Lint    bool             // run style checks after a clean ownership pass
	Globals []checker.Global // names pre-declared in the root scope
}

// Result holds the output of one pipeline run
type Result struct {
	Program     *ast.Program
	Diagnostics *diagnostic.Diagnostics
	Trace       []checker.Event
}

// Ok reports whether the run produced no errors
func (r *Result) Ok() bool {
	return !r.Diagnostics.HasErrors()
}

// Compiler runs the frontend pipeline with fixed options
type Compiler struct {
	log     zerolog.Logger
	lint    bool
	globals []checker.Global
}

// New creates a Compiler from options
func New(opts Options) *Compiler {
	return &Compiler{
		log:     opts.Logger,
		lint:    opts.Lint,
		globals: opts.Globals,
	}
}

// Check runs parse and ownership checking on a single source unit.
// Parse errors abort the run before the semantic phase.
func (c *Compiler) Check(source string) *Result {
	res := &Result{}

	c.log.Debug().Int("bytes", len(source)).Msg("parsing")
	p := parser.New(source)
	res.Program = p.Parse()

	if p.Diagnostics().HasErrors() {
		c.log.Debug().Int("errors", p.Diagnostics().ErrorCount()).Msg("parse failed")
		res.Diagnostics = p.Diagnostics()
		return res
	}

	c.log.Debug().
		Int("structs", len(res.Program.Structs)).
		Int("functions", len(res.Program.Functions)).
		Msg("checking ownership")
	checked := checker.CheckWithGlobals(res.Program, c.globals)
	res.Diagnostics = checked.Diagnostics
	res.Trace = checked.Trace

	if c.lint && !res.Diagnostics.HasErrors() {
		c.log.Debug().Msg("linting")
		res.Diagnostics.Merge(linter.Lint(res.Program), "")
	}

	c.log.Debug().
		Int("errors", res.Diagnostics.ErrorCount()).
		Int("warnings", res.Diagnostics.WarningCount()).
		Int("events", len(res.Trace)).
		Msg("pipeline done")
	return res
}

// CheckFile reads and checks a single source file
func (c *Compiler) CheckFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Check(string(source)), nil
}

// Check runs parse and ownership checking with default options
func Check(source string) *Result {
	return New(Options{Logger: zerolog.Nop()}).Check(source)
}
