package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalang/vela/internal/diagnostic"
)

func TestCheckCleanSource(t *testing.T) {
	res := Check(`
struct Point { x: Int, y: Int }

immutable p = new Point{x: 1, y: 2};
immutable q = p;
`)
	require.True(t, res.Ok(), "unexpected errors: %s", res.Diagnostics.Format("test"))
	assert.NotNil(t, res.Program)
	assert.NotEmpty(t, res.Trace)
}

func TestParseErrorsAbortSemanticPhase(t *testing.T) {
	res := Check(`immutable = ;`)
	require.False(t, res.Ok())
	assert.True(t, res.Diagnostics.HasKind(diagnostic.SyntaxError))
	// the ownership pass never ran
	assert.Empty(t, res.Trace)
}

func TestCheckReportsOwnershipErrors(t *testing.T) {
	res := Check(`
immutable s = "data";
immutable t = s;
delete s;
`)
	require.False(t, res.Ok())
	assert.True(t, res.Diagnostics.HasKind(diagnostic.DoubleFreeError))
}

func TestLintRunsAfterCleanCheck(t *testing.T) {
	c := New(Options{Logger: zerolog.Nop(), Lint: true})
	res := c.Check(`
immutable unused = 1;
`)
	require.True(t, res.Ok())
	assert.True(t, res.Diagnostics.HasKind(diagnostic.StyleWarning))
}

func TestLintSkippedWhenCheckFails(t *testing.T) {
	c := New(Options{Logger: zerolog.Nop(), Lint: true})
	res := c.Check(`
immutable s = "data";
immutable t = s;
immutable u = s;
`)
	require.False(t, res.Ok())
	assert.False(t, res.Diagnostics.HasKind(diagnostic.StyleWarning))
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.vela")
	require.NoError(t, os.WriteFile(path, []byte(`immutable x = 1;`), 0o644))

	c := New(Options{Logger: zerolog.Nop()})
	res, err := c.CheckFile(path)
	require.NoError(t, err)
	assert.True(t, res.Ok())
}

func TestCheckFileMissing(t *testing.T) {
	c := New(Options{Logger: zerolog.Nop()})
	_, err := c.CheckFile(filepath.Join(t.TempDir(), "absent.vela"))
	require.Error(t, err)
}

func TestRegistryChecksUnitsInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.vela"),
		[]byte(`immutable base = 10;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.vela"),
		[]byte(`immutable doubled = base + base;`), 0o644))

	reg, err := NewUnitRegistry(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Discover())
	require.Len(t, reg.Paths(), 2)

	diag := reg.CheckAll(New(Options{Logger: zerolog.Nop()}))
	assert.False(t, diag.HasErrors(), "unexpected errors: %s", diag.Format("test"))
}

func TestRegistryReportsPerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.vela"),
		[]byte(`immutable x = missing;`), 0o644))

	reg, err := NewUnitRegistry(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Discover())

	diag := reg.CheckAll(nil)
	require.True(t, diag.HasErrors())
	errs := diag.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, "bad.vela", errs[0].File)
}

func TestRegistryEmptyDir(t *testing.T) {
	reg, err := NewUnitRegistry(t.TempDir())
	require.NoError(t, err)
	require.Error(t, reg.Discover())
}
