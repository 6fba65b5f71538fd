package error

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// HeaderError is an error found while reading a header. Offset is a byte offset from the beginning of the
// source, Row and Col are 1-based. Zero values mean the position is unknown.
type HeaderError struct {
	Cause      error
	Detail     string
	FilePath   string
	SourceName string
	Offset     int
	Row        int
	Col        int
}

func (e *HeaderError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	}
	if e.Row != 0 {
		fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}

	line := readLine(e.FilePath, e.Row)
	if line != "" {
		fmt.Fprintf(&b, "\n    %v", line)
	}

	return b.String()
}

func (e *HeaderError) Unwrap() error {
	return e.Cause
}

// HeaderErrors is a list of errors collected while scanning continues past broken declarations.
type HeaderErrors []*HeaderError

func (e HeaderErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}

// SetSource attaches a file path to every error that has no source yet.
func (e HeaderErrors) SetSource(filePath, sourceName string) {
	for _, err := range e {
		if err.FilePath == "" {
			err.FilePath = filePath
		}
		if err.SourceName == "" {
			err.SourceName = sourceName
		}
	}
}

func readLine(filePath string, row int) string {
	if filePath == "" || row <= 0 {
		return ""
	}

	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	i := 1
	s := bufio.NewScanner(f)
	for s.Scan() {
		if i == row {
			return s.Text()
		}
		i++
	}

	return ""
}
