package importer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tag is one group code / value pair of an ASCII DXF file.
type tag struct {
	code  int
	value string
	line  int // line number of the group code
}

// scanner reads tags two lines at a time.
type scanner struct {
	reader *bufio.Reader
	line   int
	last   tag
	err    error
}

func newScanner(r io.Reader) *scanner {
	return &scanner{reader: bufio.NewReader(r)}
}

func (s *scanner) readLine() (string, bool) {
	text, err := s.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			s.err = err
			return "", false
		}
		if text == "" {
			return "", false
		}
	}
	s.line++
	return strings.TrimRight(text, "\r\n"), true
}

// next advances to the next tag. It returns false at end of input or on
// error; Err distinguishes the two.
func (s *scanner) next() bool {
	codeLine, ok := s.readLine()
	if !ok {
		return false
	}
	codeStr := strings.TrimSpace(codeLine)
	if codeStr == "" {
		return s.next()
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		s.err = fmt.Errorf("line %d: invalid group code %q", s.line, codeStr)
		return false
	}
	at := s.line

	value, ok := s.readLine()
	if !ok {
		if s.err == nil {
			s.err = fmt.Errorf("line %d: group code %d has no value", at, code)
		}
		return false
	}
	// Leading spaces are significant in DXF string values; trailing
	// whitespace is not.
	s.last = tag{code: code, value: strings.TrimRight(value, " \t"), line: at}
	return true
}

func (s *scanner) tag() tag { return s.last }

func (s *scanner) Err() error { return s.err }

// readTags scans r to the end.
func readTags(r io.Reader) ([]tag, error) {
	s := newScanner(r)
	var tags []tag
	for s.next() {
		tags = append(tags, s.tag())
	}
	return tags, s.Err()
}

func (t tag) is(code int, value string) bool {
	return t.code == code && strings.TrimSpace(t.value) == value
}

func (t tag) float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(t.value), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: group %d: invalid number %q", t.line, t.code, t.value)
	}
	return f, nil
}

func (t tag) int() (int, error) {
	v := strings.TrimSpace(t.value)
	i, err := strconv.Atoi(v)
	if err != nil {
		// Some writers emit integer groups with a fractional part.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, fmt.Errorf("line %d: group %d: invalid integer %q", t.line, t.code, t.value)
		}
		i = int(f)
	}
	return i, nil
}

func (t tag) str() string { return strings.TrimSpace(t.value) }
