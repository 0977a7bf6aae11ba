package main

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/checker"
	"github.com/velalang/vela/internal/compiler"
	"github.com/velalang/vela/internal/parser"
)

const usage = `velac - The Vela ownership checker

Usage:
  velac check <file.vela | directory>   Parse and run the ownership checker
  velac lint <file.vela>                Check, then run style checks
  velac ast <file.vela>                 Print the parsed syntax tree
  velac trace <file.vela>               Check and print the ownership event trace

Options:
  --json         Emit diagnostics (and trace) as JSON
  --no-color     Disable colored output
  --log-level    Set log verbosity: debug, info, warn, error (default error)

Directory mode:
  When check is given a directory, every .vela file under it is checked in
  path order, and top-level bindings of earlier units are visible to later
  ones.

Examples:
  velac check main.vela            Report ownership and borrow errors
  velac check src/                 Check a whole project directory
  velac lint main.vela             Include style warnings
  velac trace --json main.vela     Machine-readable ownership trace
`

type cliOptions struct {
	json     bool
	noColor  bool
	logLevel string
	path     string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "check":
		handleCheck(os.Args[2:], false)
	case "lint":
		handleCheck(os.Args[2:], true)
	case "ast":
		handleAst(os.Args[2:])
	case "trace":
		handleTrace(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func parseArgs(args []string) cliOptions {
	opts := cliOptions{logLevel: "error"}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			opts.json = true
		case arg == "--no-color":
			opts.noColor = true
		case arg == "--log-level":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --log-level needs a value")
				os.Exit(1)
			}
			i++
			opts.logLevel = args[i]
		case strings.HasPrefix(arg, "--log-level="):
			opts.logLevel = strings.TrimPrefix(arg, "--log-level=")
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
			os.Exit(1)
		default:
			opts.path = arg
		}
	}

	if opts.path == "" {
		fmt.Fprintln(os.Stderr, "Error: no input specified")
		os.Exit(1)
	}
	return opts
}

func newLogger(opts cliOptions) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown log level %q\n", opts.logLevel)
		os.Exit(1)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: opts.noColor}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func handleCheck(args []string, lint bool) {
	opts := parseArgs(args)
	c := compiler.New(compiler.Options{Logger: newLogger(opts), Lint: lint})

	info, err := os.Stat(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		checkDirectory(opts, c)
		return
	}

	res, err := c.CheckFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	reportDiagnostics(opts, res)
	if !res.Ok() {
		os.Exit(1)
	}
}

func checkDirectory(opts cliOptions, c *compiler.Compiler) {
	reg, err := compiler.NewUnitRegistry(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if err := reg.Discover(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	diag := reg.CheckAll(c)
	switch {
	case opts.json:
		data, err := json.Marshal(diag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case diag.Count() > 0:
		if opts.noColor {
			fmt.Println(diag.Format(opts.path))
		} else {
			fmt.Println(diag.FormatColored(opts.path))
		}
	}
	if diag.HasErrors() {
		os.Exit(1)
	}
	if !opts.json {
		fmt.Printf("%d unit(s) ok\n", len(reg.Paths()))
	}
}

func handleAst(args []string) {
	opts := parseArgs(args)
	source, err := os.ReadFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	p := parser.New(string(source))
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		if opts.noColor || opts.json {
			fmt.Fprintln(os.Stderr, p.Diagnostics().Format(opts.path))
		} else {
			fmt.Fprintln(os.Stderr, p.Diagnostics().FormatColored(opts.path))
		}
		os.Exit(1)
	}
	fmt.Print(ast.Print(prog))
}

func handleTrace(args []string) {
	opts := parseArgs(args)
	res, err := compiler.New(compiler.Options{Logger: newLogger(opts)}).CheckFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	reportDiagnostics(opts, res)
	if !res.Ok() {
		os.Exit(1)
	}

	if opts.json {
		data, err := json.Marshal(traceReport(res.Trace))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	for _, ev := range res.Trace {
		fmt.Printf("%3d:%-3d %-16s %s\n", ev.Line, ev.Column, ev.Kind, ev.Name)
	}
}

type traceEvent struct {
	Event  string `json:"event"`
	Name   string `json:"name"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func traceReport(trace []checker.Event) []traceEvent {
	events := make([]traceEvent, 0, len(trace))
	for _, ev := range trace {
		events = append(events, traceEvent{
			Event:  ev.Kind.String(),
			Name:   ev.Name,
			Line:   ev.Line,
			Column: ev.Column,
		})
	}
	return events
}

func reportDiagnostics(opts cliOptions, res *compiler.Result) {
	diag := res.Diagnostics
	if opts.json {
		data, err := json.Marshal(diag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	if diag.Count() == 0 {
		return
	}
	if opts.noColor {
		fmt.Println(diag.Format(opts.path))
	} else {
		fmt.Println(diag.FormatColored(opts.path))
	}
}
