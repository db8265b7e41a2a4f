package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binref/refinery-go/multibin"
)

// resolveSandboxed resolves path against the process's working directory
// and rejects anything that escapes it, so `file:../../etc/passwd` is
// refused rather than silently read (spec.md §4.3 file row; no path
// traversal outside launch cwd per SPEC_FULL.md §C).
func resolveSandboxed(path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(cwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file: %q escapes the working directory sandbox", path)
	}
	return abs, nil
}

// fileHandler reads an entire file named by the bytes to its right, e.g.
// `file:key.bin`.
type fileHandler struct{}

func File() multibin.Handler { return fileHandler{} }

func (fileHandler) Name() string { return "file" }

func (fileHandler) Eval(ctx *multibin.Context, args []string, name []byte) ([]byte, error) {
	path, err := resolveSandboxed(string(name))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	return data, nil
}

// rangeHandler reads a bounded byte range [offset, offset+length) from a
// file named by the bytes to its right: `range[offset,length]:key.bin`.
type rangeHandler struct{}

func Range() multibin.Handler { return rangeHandler{} }

func (rangeHandler) Name() string { return "range" }

func (rangeHandler) Eval(ctx *multibin.Context, args []string, name []byte) ([]byte, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("range: requires offset and length arguments")
	}
	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("range: invalid offset %q", args[0])
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length < 0 {
		return nil, fmt.Errorf("range: invalid length %q", args[1])
	}

	path, err := resolveSandboxed(string(name))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, 0); err != nil {
		return nil, fmt.Errorf("range: seek: %w", err)
	}
	buf := make([]byte, length)
	n, err := f.Read(buf)
	if err != nil && n == 0 && length > 0 {
		return nil, fmt.Errorf("range: read: %w", err)
	}
	return buf[:n], nil
}
