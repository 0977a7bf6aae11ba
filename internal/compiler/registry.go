package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/checker"
	"github.com/velalang/vela/internal/diagnostic"
	"github.com/velalang/vela/internal/linter"
	"github.com/velalang/vela/internal/parser"
)

// UnitRegistry manages the source units of a project directory. Units are
// checked in lexical path order; the top-level bindings of each clean unit
// become globals for the units after it.
type UnitRegistry struct {
	root  string
	paths []string
	units map[string]*ast.Program // absolute file path -> parsed AST
}

// NewUnitRegistry creates a registry rooted at the given directory
func NewUnitRegistry(root string) (*UnitRegistry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	return &UnitRegistry{
		root:  abs,
		units: make(map[string]*ast.Program),
	}, nil
}

// Discover collects every .vela file under the project root
func (r *UnitRegistry) Discover() error {
	r.paths = r.paths[:0]
	err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".vela") {
			return nil
		}
		r.paths = append(r.paths, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", r.root, err)
	}
	sort.Strings(r.paths)
	if len(r.paths) == 0 {
		return fmt.Errorf("no .vela files under %s", r.root)
	}
	return nil
}

// Paths returns the discovered unit paths in checking order
func (r *UnitRegistry) Paths() []string {
	return r.paths
}

// Unit returns the parsed AST for a path, once CheckAll has run
func (r *UnitRegistry) Unit(path string) *ast.Program {
	return r.units[path]
}

// CheckAll parses and checks every discovered unit. Diagnostics carry the
// file path of the unit that produced them. A unit with parse errors is
// skipped by the semantic phase but does not stop the others.
func (r *UnitRegistry) CheckAll(c *Compiler) *diagnostic.Diagnostics {
	all := diagnostic.New()
	var globals []checker.Global

	for _, path := range r.paths {
		source, err := os.ReadFile(path)
		if err != nil {
			all.Errorf(diagnostic.SyntaxError, 0, 0, "cannot read %s: %v", path, err)
			continue
		}
		rel := r.relPath(path)

		p := parser.New(string(source))
		prog := p.Parse()
		r.units[path] = prog
		if p.Diagnostics().HasErrors() {
			all.Merge(p.Diagnostics(), rel)
			continue
		}

		unit := checker.CheckWithGlobals(prog, globals)
		all.Merge(unit.Diagnostics, rel)
		if c != nil && c.lint && !unit.Diagnostics.HasErrors() {
			all.Merge(linter.Lint(prog), rel)
		}

		if !unit.Diagnostics.HasErrors() {
			globals = append(globals, exportedGlobals(prog)...)
		}
	}
	return all
}

// exportedGlobals lifts a clean unit's top-level bindings into globals
// visible to later units
func exportedGlobals(prog *ast.Program) []checker.Global {
	var globals []checker.Global
	for _, stmt := range prog.Statements {
		if bind, ok := stmt.(*ast.BindStmt); ok {
			globals = append(globals, checker.Global{
				Name:    bind.Name,
				Mutable: bind.Mutable,
				Type:    bind.Type,
			})
		}
	}
	return globals
}

func (r *UnitRegistry) relPath(path string) string {
	if rel, err := filepath.Rel(r.root, path); err == nil {
		return rel
	}
	return path
}
