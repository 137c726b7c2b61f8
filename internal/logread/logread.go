/*
PURPOSE:
  Reads the first N lines of a benchmark log.
  Never fails: unreadable logs degrade to tagged placeholder values.

REQUIREMENTS:
  User-specified:
  - Missing file -> N x "N/A" plus a warning.
  - Any other failure -> N x "ERROR" plus a warning with the detail.
  - Short files are not an error; missing lines come back empty.

  Implementation-discovered:
  - Only trailing whitespace is stripped; indentation is data.
  - Logs are UTF-8 text. A line that is not valid UTF-8 makes the whole
    file a read failure.

ARCHITECTURE INTEGRATION:
  - Called by: internal/extract
  - Uses: internal/model (Value), internal/output (Logger)

ERROR HANDLING:
  - Errors are folded into model.Value, never returned.

USAGE:
  lines := logread.ReadLines(path, 2)

RELATED FILES:
  - internal/model/value.go
*/

package logread

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/daryltucker/meshbench/internal/model"
	"github.com/daryltucker/meshbench/internal/output"
)

// ReadLines returns exactly n values for the first n lines of path.
func ReadLines(path string, n int) []model.Value {
	if n <= 0 {
		return nil
	}

	lines, err := readLines(path, n)
	if err == nil {
		return lines
	}

	if errors.Is(err, fs.ErrNotExist) {
		output.Logger.Warn("Log file not found", "path", path)
		return fill(n, model.Missing())
	}
	output.Logger.Warn("Failed to read log file", "path", path, "error", err)
	return fill(n, model.ReadError(err))
}

func readLines(path string, n int) ([]model.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	out := make([]model.Value, 0, n)
	eof := false
	for len(out) < n {
		if eof {
			out = append(out, model.Ok(""))
			continue
		}
		line, err := r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			eof = true
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("invalid UTF-8 in line %d", len(out)+1)
		}
		out = append(out, model.Ok(strings.TrimRightFunc(line, unicode.IsSpace)))
	}
	return out, nil
}

func fill(n int, v model.Value) []model.Value {
	out := make([]model.Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}
