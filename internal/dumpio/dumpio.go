// Package dumpio opens dump files for the converter: "-" for the standard
// streams, transparent decompression, and transcoding of legacy encodings
// to UTF-8.
package dumpio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/insinfo/insert-to-copy/internal/errors"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

// InputOptions controls OpenInput.
type InputOptions struct {
	// Compression of the input. Auto sniffs the stream header.
	Compression Compression
	// Encoding is an IANA charset name. Empty or UTF-8 reads bytes as-is.
	Encoding string
}

// OpenInput opens path for reading. The returned reader yields UTF-8 SQL.
func OpenInput(path string, opts InputOptions) (io.ReadCloser, error) {
	var (
		src    io.Reader
		closer io.Closer
	)
	if path == Stdio {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.FileIOError("open", path, err)
		}
		src, closer = f, f
	}

	r, err := wrapInput(src, opts)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &chainReadCloser{Reader: r, closers: compact(r, closer)}, nil
}

// wrapInput applies decompression then transcoding.
func wrapInput(src io.Reader, opts InputOptions) (io.Reader, error) {
	c := opts.Compression
	if c == "" {
		c = CompressionAuto
	}
	if c == CompressionAuto {
		br := bufio.NewReader(src)
		header, _ := br.Peek(magicLen)
		c = Detect(header)
		src = br
	}
	dr, err := NewReader(src, c)
	if err != nil {
		return nil, err
	}
	return Transcode(dr, opts.Encoding)
}

// Transcode returns r decoded from charset to UTF-8.
func Transcode(r io.Reader, charset string) (io.Reader, error) {
	if isUTF8(charset) {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, errors.InvalidParameterError("input_encoding", charset).
			WithHint("Use an IANA character set name such as LATIN1 or windows-1252.")
	}
	return &transcoder{Reader: transform.NewReader(r, enc.NewDecoder()), src: r}, nil
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.ReplaceAll(charset, "-", "")) {
	case "", "utf8":
		return true
	}
	return false
}

// transcoder keeps the undecoded reader reachable so Close can reach it.
type transcoder struct {
	io.Reader
	src io.Reader
}

func (t *transcoder) Close() error {
	if c, ok := t.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CreateOutput opens path for writing, truncating it, and compresses with
// c. Auto picks the codec from the file extension, and none for stdout.
func CreateOutput(path string, c Compression) (io.WriteCloser, error) {
	if c == "" || c == CompressionAuto {
		c = FromExtension(path)
		if path == Stdio {
			c = CompressionNone
		}
	}

	var (
		dst    io.Writer
		closer io.Closer
	)
	if path == Stdio {
		dst = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.FileIOError("create", path, err)
		}
		dst, closer = f, f
	}

	w, err := NewWriter(dst, c)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &chainWriteCloser{Writer: w, closers: compact(w, closer)}, nil
}

func compact(first any, rest io.Closer) []io.Closer {
	var cs []io.Closer
	if c, ok := first.(io.Closer); ok {
		cs = append(cs, c)
	}
	if rest != nil {
		cs = append(cs, rest)
	}
	return cs
}

// chainReadCloser closes the codec, then the file.
type chainReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *chainReadCloser) Close() error {
	return closeAll(c.closers)
}

// chainWriteCloser flushes the codec, then closes the file.
type chainWriteCloser struct {
	io.Writer
	closers []io.Closer
}

func (c *chainWriteCloser) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = errors.IOErrorf("could not close stream: %v", err).WithCause(err)
		}
	}
	return first
}

// CheckEncoding reports whether charset can be transcoded to UTF-8.
func CheckEncoding(charset string) error {
	_, err := Transcode(nil, charset)
	return err
}
