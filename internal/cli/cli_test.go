package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/persist"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/store"
)

var testNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

// isolate keeps user config and .env files out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"TADA_BACKEND", "TADA_DATA_DIR", "TADA_KEY", "TADA_THEME", "TADA_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

type result struct {
	out, errOut string
	err         error
}

func testEnv(slot store.Slot, logs *bytes.Buffer) Env {
	n := 0
	return Env{
		Slot:      slot,
		Now:       func() time.Time { return testNow },
		NewID:     func() string { n++; return fmt.Sprintf("%08d-aaaa", n) },
		LogOutput: logs,
	}
}

func run(t *testing.T, env Env, args ...string) result {
	t.Helper()
	root := NewRootCommand(env, "test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func mustRun(t *testing.T, env Env, args ...string) result {
	t.Helper()
	r := run(t, env, args...)
	require.NoError(t, r.err, "tada %v\nstderr: %s", args, r.errOut)
	return r
}

func storedRecords(t *testing.T, slot store.Slot) []persist.Record {
	t.Helper()
	raw, ok, err := slot.Get(context.Background(), persist.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok, "slot should be written")
	var recs []persist.Record
	require.NoError(t, json.Unmarshal(raw, &recs))
	return recs
}

func TestAdd(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()

	r := mustRun(t, testEnv(slot, nil), "add", "Buy", "milk")
	assert.Contains(t, r.out, "added")

	recs := storedRecords(t, slot)
	require.Len(t, recs, 1)
	assert.Equal(t, "Buy milk", recs[0].Value)
	assert.False(t, recs[0].Done)
	require.NotNil(t, recs[0].StartTime)
	assert.Equal(t, testNow.UnixMilli(), *recs[0].StartTime)
}

func TestAdd_EmptyTextIsUsageError(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()

	r := run(t, testEnv(slot, nil), "add", "   ")
	assert.ErrorIs(t, r.err, ErrUsage)
	assert.Equal(t, 0, slot.Writes())

	r = run(t, testEnv(slot, nil), "add")
	assert.ErrorIs(t, r.err, ErrUsage)
	assert.Contains(t, r.err.Error(), "usage: tada add")
}

func TestList(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	env := testEnv(slot, nil)
	mustRun(t, env, "add", "first")
	mustRun(t, env, "add", "second")

	r := mustRun(t, env, "ls")
	assert.Contains(t, r.out, "Todos")
	assert.Contains(t, r.out, "Total 2")
	assert.Contains(t, r.out, " 1. ☐ second")
	assert.Contains(t, r.out, " 2. ☐ first")
	assert.Contains(t, r.out, "now")
}

func TestList_Empty(t *testing.T) {
	isolate(t)
	r := mustRun(t, testEnv(store.NewMemory(), nil), "ls")
	assert.Contains(t, r.out, "no items")
}

func TestList_GroupKeepsIndexes(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	env := testEnv(slot, nil)
	mustRun(t, env, "add", "one")
	mustRun(t, env, "add", "two")
	mustRun(t, env, "add", "three")
	mustRun(t, env, "done", "2")

	r := mustRun(t, env, "--group", "ls")
	assert.Contains(t, r.out, "Pending")
	assert.Contains(t, r.out, "Done")
	assert.Contains(t, r.out, " 2. ☑ two")
	assert.Contains(t, r.out, " 3. ☐ one")
}

func TestList_ShowsIDs(t *testing.T) {
	isolate(t)
	env := testEnv(store.NewMemory(), nil)
	mustRun(t, env, "add", "x")

	r := mustRun(t, env, "ls", "--ids")
	assert.Contains(t, r.out, "00000001")
}

func TestToggle(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	env := testEnv(slot, nil)
	mustRun(t, env, "add", "Buy milk")

	r := mustRun(t, env, "done", "1")
	assert.Contains(t, r.out, "toggled")
	recs := storedRecords(t, slot)
	assert.True(t, recs[0].Done)
	require.NotNil(t, recs[0].FinishTime)

	mustRun(t, env, "done", "00000001")
	recs = storedRecords(t, slot)
	assert.False(t, recs[0].Done)
	assert.Nil(t, recs[0].FinishTime)
}

func TestRemove(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	env := testEnv(slot, nil)
	mustRun(t, env, "add", "Buy milk")

	r := mustRun(t, env, "rm", "1")
	assert.Contains(t, r.out, "removed")
	assert.Empty(t, storedRecords(t, slot))

	r = run(t, env, "rm", "1")
	assert.ErrorIs(t, r.err, ErrUsage)
	assert.Contains(t, r.errOut, "Hint")
}

func TestToggle_UnknownRef(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	env := testEnv(slot, nil)
	mustRun(t, env, "add", "x")
	writes := slot.Writes()

	for _, ref := range []string{"7", "99", "zzz"} {
		r := run(t, env, "done", ref)
		assert.ErrorIs(t, r.err, ErrUsage, "ref %s", ref)
	}
	assert.Equal(t, writes, slot.Writes())

	r := run(t, env, "done")
	assert.ErrorIs(t, r.err, ErrUsage)
}

func TestExport(t *testing.T) {
	isolate(t)
	env := testEnv(store.NewMemory(), nil)
	mustRun(t, env, "add", "Buy milk")

	r := mustRun(t, env, "export")
	assert.JSONEq(t, fmt.Sprintf(`[{"id":"00000001-aaaa","value":"Buy milk","done":false,"start_time":%d}]`, testNow.UnixMilli()), r.out)

	r = mustRun(t, env, "export", "--format", "yaml")
	assert.Contains(t, r.out, "value: Buy milk")
	assert.Contains(t, r.out, "done: false")

	r = run(t, env, "export", "-f", "xml")
	assert.ErrorIs(t, r.err, ErrUsage)
}

func TestMalformedSlotStartsEmpty(t *testing.T) {
	isolate(t)
	slot := store.NewMemory()
	require.NoError(t, slot.Set(context.Background(), persist.DefaultKey, []byte(`{"broken":`)))
	var logs bytes.Buffer

	r := mustRun(t, testEnv(slot, &logs), "ls")
	assert.Contains(t, r.out, "no items")
	assert.Contains(t, logs.String(), "starting empty")
	assert.Equal(t, 1, slot.Writes(), "load never writes")
}

func TestRootLaunchesTUI(t *testing.T) {
	isolate(t)
	env := testEnv(store.NewMemory(), nil)
	var got *state.Store
	env.RunTUI = func(_ *cobra.Command, s *state.Store) error {
		got = s
		return nil
	}

	mustRun(t, env)
	assert.NotNil(t, got)

	got = nil
	mustRun(t, env, "tui")
	assert.NotNil(t, got)
}

func TestTUIErrorIsRuntimeError(t *testing.T) {
	isolate(t)
	env := testEnv(store.NewMemory(), nil)
	env.RunTUI = func(*cobra.Command, *state.Store) error { return errors.New("no tty") }

	r := run(t, env, "tui")
	require.Error(t, r.err)
	assert.NotErrorIs(t, r.err, ErrUsage)
	assert.Equal(t, 1, ExitCode(r.err, &bytes.Buffer{}))
}

func TestUnknownSubcommand(t *testing.T) {
	isolate(t)
	r := run(t, testEnv(store.NewMemory(), nil), "frobnicate")
	assert.ErrorIs(t, r.err, ErrUsage)
}

func TestBadFlag(t *testing.T) {
	isolate(t)
	r := run(t, testEnv(store.NewMemory(), nil), "ls", "--nope")
	assert.ErrorIs(t, r.err, ErrUsage)
}

func TestBadBackendFlag(t *testing.T) {
	isolate(t)
	r := run(t, testEnv(store.NewMemory(), nil), "--backend", "redis", "ls")
	assert.ErrorIs(t, r.err, ErrUsage)
}

func TestFileBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	env := testEnv(nil, nil)

	mustRun(t, env, "--data-dir", dir, "add", "on disk")
	_, err := os.Stat(filepath.Join(dir, "Todos.json"))
	require.NoError(t, err)

	r := mustRun(t, env, "--data-dir", dir, "ls")
	assert.Contains(t, r.out, "on disk")
}

func TestSQLiteBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	env := testEnv(nil, nil)

	mustRun(t, env, "--backend", "sqlite", "--data-dir", dir, "add", "in a table")
	_, err := os.Stat(filepath.Join(dir, "tada.db"))
	require.NoError(t, err)

	r := mustRun(t, env, "--backend", "sqlite", "--data-dir", dir, "ls")
	assert.Contains(t, r.out, "in a table")
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	r := mustRun(t, testEnv(nil, nil), "--theme", "mono", "config")
	assert.Contains(t, r.out, "theme")
	assert.Contains(t, r.out, "mono")
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, ExitCode(nil, &buf))
	assert.Empty(t, buf.String())

	assert.Equal(t, 2, ExitCode(usageErrorf("usage: tada add <text...>"), &buf))
	assert.Contains(t, buf.String(), "usage: tada add")

	assert.Equal(t, 1, ExitCode(errors.New("save: disk full"), &buf))
}
