package dumpio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/testutil"
)

const sample = "INSERT INTO t VALUES (1, 'a');\nCREATE INDEX i ON t (a);\n"

func TestRoundTripByExtension(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	for _, name := range []string{"dump.sql", "dump.sql.gz", "dump.sql.zst", "dump.sql.lz4", "dump.sql.sz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			w, err := CreateOutput(path, CompressionAuto)
			require.NoError(t, err)
			_, err = io.WriteString(w, sample)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, FromExtension(name), Detect(raw))

			r, err := OpenInput(path, InputOptions{})
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, sample, string(got))
		})
	}
}

func TestExplicitCompressionOverridesExtension(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "dump.sql")

	w, err := CreateOutput(path, CompressionZstd)
	require.NoError(t, err)
	_, err = io.WriteString(w, sample)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Sniffed despite the plain extension.
	r, err := OpenInput(path, InputOptions{Compression: CompressionAuto})
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, sample, string(got))
}

func TestTranscodeLatin1(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	path := testutil.WriteFile(t, dir, "latin1.sql", "INSERT INTO t VALUES ('caf\xe9');")

	r, err := OpenInput(path, InputOptions{Encoding: "LATIN1"})
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t VALUES ('café');", string(got))
}

func TestTranscodeUTF8Passthrough(t *testing.T) {
	src := strings.NewReader("caf\xc3\xa9")
	for _, cs := range []string{"", "UTF-8", "utf8"} {
		r, err := Transcode(src, cs)
		require.NoError(t, err)
		assert.Same(t, src, r)
	}
}

func TestTranscodeUnknownCharset(t *testing.T) {
	_, err := Transcode(strings.NewReader(""), "klingon")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.CategoryOf(err))
}

func TestOpenMissingFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "nope.sql")

	_, err := OpenInput(path, InputOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryIOFailure, errors.CategoryOf(err))
	assert.Equal(t, path, errors.GetError(err).Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateInMissingDirectory(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	_, err := CreateOutput(filepath.Join(dir, "missing", "out.sql"), CompressionAuto)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryIOFailure, errors.CategoryOf(err))
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in   string
		want Compression
		ok   bool
	}{
		{"", CompressionAuto, true},
		{"AUTO", CompressionAuto, true},
		{"gzip", CompressionGzip, true},
		{" zstd ", CompressionZstd, true},
		{"lz4", CompressionLZ4, true},
		{"snappy", CompressionSnappy, true},
		{"none", CompressionNone, true},
		{"brotli", "", false},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, CompressionNone, Detect(nil))
	assert.Equal(t, CompressionNone, Detect([]byte("INSERT")))
	assert.Equal(t, CompressionGzip, Detect([]byte{0x1f, 0x8b, 8}))
	assert.Equal(t, CompressionNone, Detect([]byte{0x1f}))
}

func TestFromExtension(t *testing.T) {
	assert.Equal(t, CompressionGzip, FromExtension("a.SQL.GZ"))
	assert.Equal(t, CompressionSnappy, FromExtension("a.snappy"))
	assert.Equal(t, CompressionNone, FromExtension("a.sql"))
	assert.Equal(t, CompressionNone, FromExtension(Stdio))
}
