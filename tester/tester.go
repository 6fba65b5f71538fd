package tester

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/hbind/binding"
	"github.com/nihei9/hbind/header"
)

// LineDiff is the first line where the actual output differs from the expected one.
type LineDiff struct {
	Line     int
	Expected string
	Actual   string
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diff         *LineDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if r.Diff == nil {
			return msg
		}
		diffLines := []string{
			fmt.Sprintf("line %v", r.Diff.Line),
			fmt.Sprintf("%vexpected: %q", indent1, r.Diff.Expected),
			fmt.Sprintf("%vactual:   %q", indent1, r.Diff.Actual),
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	ParserOptions   []header.ParserOption
	RendererOptions []binding.RendererOption
	Cases           []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, t.runTest(c))
	}
	return rs
}

func (t *Tester) runTest(c *TestCaseWithMetadata) *TestResult {
	decls, err := header.Parse(bytes.NewReader(c.TestCase.Source), t.ParserOptions...)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	r, err := binding.NewRenderer(t.RendererOptions...)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	actual, err := r.RenderString(decls)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	diff := diffLines(c.TestCase.Expected, actual)
	if diff != nil {
		diff.Line += c.TestCase.ExpectedLine - 1
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diff:         diff,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

// diffLines compares two texts line by line, ignoring trailing line breaks. Line is 1-based.
func diffLines(expected, actual string) *LineDiff {
	eLines := strings.Split(strings.TrimRight(expected, "\n"), "\n")
	aLines := strings.Split(strings.TrimRight(actual, "\n"), "\n")
	n := len(eLines)
	if len(aLines) > n {
		n = len(aLines)
	}
	for i := 0; i < n; i++ {
		var e, a string
		if i < len(eLines) {
			e = eLines[i]
		}
		if i < len(aLines) {
			a = aLines[i]
		}
		if e != a || i >= len(eLines) || i >= len(aLines) {
			return &LineDiff{
				Line:     i + 1,
				Expected: e,
				Actual:   a,
			}
		}
	}
	return nil
}
