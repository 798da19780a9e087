package grf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	byteOrderMark = "\ufeff"
	maxScanBytes  = 1 << 20
)

// line is one parsed input line. data is everything after the single
// space that follows the tag, so leading spaces in values survive.
type line struct {
	number  int
	level   int
	pointer string
	tag     string
	data    string
}

// scanner reads lines with a one-line pushback.
type scanner struct {
	sc      *bufio.Scanner
	number  int
	current line
	pushed  bool
}

// newScanner splits r on LF. One CR before each LF is part of the line
// ending, so CRLF files read the same as LF files.
func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxScanBytes)
	return &scanner{sc: sc}
}

// next returns the next non-blank line, or the pushed-back one.
// ok is false at end of input.
func (s *scanner) next() (l line, ok bool, err error) {
	if s.pushed {
		s.pushed = false
		return s.current, true, nil
	}
	for s.sc.Scan() {
		s.number++
		text := s.sc.Text()
		if s.number == 1 {
			text = strings.TrimPrefix(text, byteOrderMark)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		l, err := parseLine(s.number, text)
		if err != nil {
			return line{}, false, err
		}
		s.current = l
		return l, true, nil
	}
	if err := s.sc.Err(); err != nil {
		return line{}, false, fmt.Errorf("reading line %d: %w", s.number+1, err)
	}
	return line{}, false, nil
}

// unread makes the next call to next return the current line again.
func (s *scanner) unread() {
	s.pushed = true
}

func parseLine(number int, text string) (line, error) {
	rest := strings.TrimLeft(text, " \t")
	levelToken, rest, _ := strings.Cut(rest, " ")
	level, err := strconv.Atoi(levelToken)
	if err != nil || level < 0 {
		return line{}, &SyntaxError{Line: number, Text: text, Msg: "invalid level"}
	}

	l := line{number: number, level: level}
	rest = strings.TrimLeft(rest, " ")
	if strings.HasPrefix(rest, "@") {
		pointer, after, found := strings.Cut(rest, " ")
		if !found {
			return line{}, &SyntaxError{Line: number, Text: text, Msg: "pointer without tag"}
		}
		l.pointer = pointer
		rest = strings.TrimLeft(after, " ")
	}

	tag, data, _ := strings.Cut(rest, " ")
	if tag == "" {
		return line{}, &SyntaxError{Line: number, Text: text, Msg: "missing tag"}
	}
	l.tag = tag
	l.data = data
	return l, nil
}

// parseRef parses a cross-reference token such as @I12@.
func parseRef(token string) (int, bool) {
	if len(token) < 4 || token[0] != '@' || token[len(token)-1] != '@' {
		return 0, false
	}
	c := token[1]
	if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
		return 0, false
	}
	num, err := strconv.Atoi(token[2 : len(token)-1])
	if err != nil || num <= 0 {
		return 0, false
	}
	return num, true
}

// formatRef builds a cross-reference token.
func formatRef(prefix byte, num int) string {
	return "@" + string(prefix) + strconv.Itoa(num) + "@"
}
