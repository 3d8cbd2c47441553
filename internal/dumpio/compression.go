package dumpio

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"

	"github.com/insinfo/insert-to-copy/internal/errors"
)

// Compression names a stream codec.
type Compression string

const (
	CompressionAuto   Compression = "auto"
	CompressionNone   Compression = "none"
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionLZ4    Compression = "lz4"
	CompressionSnappy Compression = "snappy"
)

// ParseCompression validates a codec name. The empty string means auto.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompressionAuto, nil
	case CompressionAuto, CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4, CompressionSnappy:
		return c, nil
	default:
		return "", errors.InvalidParameterError("compression", s).
			WithHint("Use auto, none, gzip, zstd, lz4 or snappy.")
	}
}

// FromExtension picks a codec from a file name.
func FromExtension(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".sz", ".snappy":
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic    = []byte{0x04, 0x22, 0x4d, 0x18}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// magicLen is the longest header Detect inspects.
const magicLen = 10

// Detect identifies a codec from the first bytes of a stream.
func Detect(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(header, lz4Magic):
		return CompressionLZ4
	case bytes.HasPrefix(header, snappyMagic):
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

// NewReader wraps r in a decompressor for c. Auto is not accepted here;
// resolve it first.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.IOErrorf("could not read gzip header: %v", err).WithCause(err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.IOErrorf("could not start zstd decoder: %v", err).WithCause(err)
		}
		return noErrorCloser{zr}, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, errors.InternalErrorf("unresolved compression %q", c)
	}
}

// NewWriter wraps w in a compressor for c. Closing the result flushes the
// codec but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return pgzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.IOErrorf("could not start zstd encoder: %v", err).WithCause(err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, errors.InternalErrorf("unresolved compression %q", c)
	}
}

type readCloserNoError interface {
	io.Reader
	Close()
}

type noErrorCloser struct {
	readCloserNoError
}

func (c noErrorCloser) Close() error {
	c.readCloserNoError.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
