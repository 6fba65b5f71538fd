package tester

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
)

// TestCase is a golden test: a header source and the binding output expected from it.
//
// A test case file consists of three parts separated by lines of three or more hyphens:
//
//	<description>
//	---
//	<header source>
//	---
//	<expected binding output>
type TestCase struct {
	Description string
	Source      []byte
	Expected    string

	// ExpectedLine is the line number of the first expected output line in the test case file.
	ExpectedLine int
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	return &TestCase{
		Description:  string(parts[0].buf),
		Source:       parts[1].buf,
		Expected:     string(parts[2].buf),
		ExpectedLine: parts[0].lineCount + parts[1].lineCount + 3,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// An empty part is a non-nil empty slice; nil means the end of the input.
		return []byte{}, 0, nil
	}
	buf.Write(line)
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		buf.WriteString("\n")
		buf.Write(line)
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}
