package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insinfo/insert-to-copy/internal/dumpio"
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level=error"))
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func TestConvertFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	in := testutil.WriteFile(t, dir, "in.sql",
		"CREATE TABLE public.users (id int, name text);\n"+
			"INSERT INTO public.users (id, name) VALUES (1, 'Ann'), (2, NULL);\n")
	out := filepath.Join(dir, "out.sql")

	_, err := execute(t, in, out, "--parser=native")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE public.users (id int, name text);\n"+
		"COPY public.users FROM stdin;\n1\tAnn\n2\t\\N\n\\.\n", string(got))
}

func TestCompressedOutput(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	in := testutil.WriteFile(t, dir, "in.sql", testutil.GenerateInserts("t", 3))
	out := filepath.Join(dir, "out.sql.gz")

	_, err := execute(t, in, out, "--parser=native", "--threshold=2")
	require.NoError(t, err)

	r, err := dumpio.OpenInput(out, dumpio.InputOptions{})
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "COPY t FROM stdin;\n"+testutil.ExpectedRows(1, 2)+"\\.\n"+
		"COPY t FROM stdin;\n"+testutil.ExpectedRows(3, 3)+"\\.\n", string(got))
}

func TestWrongArgumentCount(t *testing.T) {
	usage, err := execute(t, "only-one.sql")
	require.Error(t, err)
	assert.Contains(t, usage, "Usage:")

	_, err = execute(t)
	require.Error(t, err)
}

func TestMissingInput(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	_, err := execute(t, filepath.Join(dir, "missing.sql"), filepath.Join(dir, "out.sql"))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryIOFailure, errors.CategoryOf(err))
	assert.Contains(t, describe(err), "missing.sql")
}

func TestInvalidFlag(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	in := testutil.WriteFile(t, dir, "in.sql", "SELECT 1;\n")

	_, err := execute(t, in, filepath.Join(dir, "out.sql"), "--threshold=0")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.CategoryOf(err))
}

func TestConfigFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	cfg := testutil.WriteFile(t, dir, "cfg.yaml", "parser: native\nconvert:\n  threshold: 1\n")
	in := testutil.WriteFile(t, dir, "in.sql", "INSERT INTO t VALUES (1);\nINSERT INTO t VALUES (2);\n")
	out := filepath.Join(dir, "out.sql")

	_, err := execute(t, in, out, "--config", cfg)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "COPY t FROM stdin;\n1\n\\.\nCOPY t FROM stdin;\n2\n\\.\n", string(got))
}
