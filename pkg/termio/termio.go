// Package termio inspects and reads the standard streams.
package termio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInputTooLarge is returned by ReadAll when the input exceeds the limit.
var ErrInputTooLarge = errors.New("input too large")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// IsPiped reports whether f is a pipe or a regular file, i.e. has input
// that can be read without a prompt.
func IsPiped(f *os.File) bool {
	if f == nil || IsTerminal(f) {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&os.ModeNamedPipe != 0 || mode.IsRegular()
}

// ReadAll reads r up to limit bytes and trims surrounding whitespace.
func ReadAll(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), limit+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, limit)
	}
	return strings.TrimSpace(string(data)), nil
}
