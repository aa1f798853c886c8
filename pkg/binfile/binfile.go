// Package binfile reads text inputs and writes binary outputs with the output
// handle scoped to a single call.
package binfile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ava-labs/avalanchego/utils/perms"
	"golang.org/x/crypto/blake2b"
)

// StdioPath selects stdin for reads and stdout for writes.
const StdioPath = "-"

var errShortWrite = errors.New("short write")

// Summary describes a completed write.
type Summary struct {
	Path   string
	Bytes  int64
	Digest string // blake2b-256, hex
}

// Digest returns the blake2b-256 of data as hex, the same value Summary.Digest
// holds after writing data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type options struct {
	atomic bool
	perm   fs.FileMode
	stdout io.Writer
}

// Option configures a write.
type Option func(*options)

// WithAtomic writes to a temporary file and renames it over path once the
// write has succeeded, so a failed write never leaves a truncated output.
func WithAtomic(atomic bool) Option {
	return func(o *options) {
		o.atomic = atomic
	}
}

// WithPerm sets the mode of a newly created file.
func WithPerm(perm fs.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithStdout redirects writes to StdioPath.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		perm:   perms.ReadWrite,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// target is an open output that must be either committed or closed.
type target interface {
	io.WriteSeeker
	Commit() error
	Close() error
}

type plainTarget struct {
	*os.File
	done bool
}

func openPlain(path string, perm fs.FileMode) (target, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	return &plainTarget{File: f}, nil
}

func (t *plainTarget) Commit() error {
	t.done = true
	return t.File.Close()
}

func (t *plainTarget) Close() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.File.Close()
}

func open(path string, o *options) (target, error) {
	if o.atomic {
		return openAtomic(path, o.perm)
	}
	return openPlain(path, o.perm)
}

// Open opens path for reading, or stdin for StdioPath.
func Open(path string) (io.ReadCloser, error) {
	if path == StdioPath {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// ReadText reads the whole input at path into memory.
func ReadText(path string) (string, error) {
	r, err := Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteBinary writes data to w in one call.
func WriteBinary(w io.Writer, data []byte) error {
	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", errShortWrite, n, len(data))
	}
	return nil
}

// WriteFile creates or truncates path and writes data to it.
func WriteFile(path string, data []byte, opts ...Option) (Summary, error) {
	return WriteWith(path, func(w io.Writer) (int64, error) {
		return int64(len(data)), WriteBinary(w, data)
	}, opts...)
}

// WriteFrom creates or truncates path and copies r into it.
func WriteFrom(path string, r io.Reader, opts ...Option) (Summary, error) {
	return WriteWith(path, func(w io.Writer) (int64, error) {
		return io.Copy(w, r)
	}, opts...)
}

// WriteWith creates or truncates path and lets fill write to it. fill returns
// the number of bytes it wrote. Without WithAtomic, whatever fill wrote before
// failing stays on disk.
func WriteWith(path string, fill func(io.Writer) (int64, error), opts ...Option) (Summary, error) {
	o := newOptions(opts)
	h, err := blake2b.New256(nil)
	if err != nil {
		return Summary{}, err
	}

	if path == StdioPath {
		n, err := fill(io.MultiWriter(o.stdout, h))
		if err != nil {
			return Summary{}, fmt.Errorf("failed to write to stdout: %w", err)
		}
		return Summary{Path: path, Bytes: n, Digest: hex.EncodeToString(h.Sum(nil))}, nil
	}

	t, err := open(path, o)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer t.Close()

	n, err := fill(io.MultiWriter(t, h))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := t.Commit(); err != nil {
		return Summary{}, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return Summary{Path: path, Bytes: n, Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// WriteSeekable creates or truncates path and hands it to fill, for encoders
// that patch headers after writing the payload.
func WriteSeekable(path string, fill func(io.WriteSeeker) error, opts ...Option) error {
	if path == StdioPath {
		return fmt.Errorf("cannot write seekable output to stdout")
	}

	t, err := open(path, newOptions(opts))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer t.Close()

	if err := fill(t); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
