package grf

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// maxLineBytes bounds a record line, prefix included.
	maxLineBytes = 255
	// maxContinuationBytes bounds the data of a CONT or CONC line.
	maxContinuationBytes = 248
)

// wrap renders head followed by value as one or more lines. Embedded
// newlines start CONT lines; anything over the byte limits is split into
// CONC lines at level contLevel. Splits never cut a UTF-8 sequence and
// prefer the start of the last whitespace run, which keeps that whitespace
// at the front of the CONC data.
func wrap(head string, contLevel int, value string) []string {
	if value == "" {
		return []string{head}
	}
	level := strconv.Itoa(contLevel)
	var lines []string
	for i, segment := range strings.Split(value, "\n") {
		prefix, budget := head, maxLineBytes-len(head)-1
		if i > 0 {
			prefix, budget = level+" CONT", maxContinuationBytes
		}
		chunks := split(segment, budget, maxContinuationBytes)
		lines = append(lines, withData(prefix, chunks[0]))
		for _, chunk := range chunks[1:] {
			lines = append(lines, withData(level+" CONC", chunk))
		}
	}
	return lines
}

func withData(prefix, data string) string {
	if data == "" {
		return prefix
	}
	return prefix + " " + data
}

// split cuts s into chunks of at most first bytes, then rest bytes.
func split(s string, first, rest int) []string {
	budget := max(first, utf8.UTFMax)
	var chunks []string
	for len(s) > budget {
		cut := splitPoint(s, budget)
		chunks = append(chunks, s[:cut])
		s = s[cut:]
		budget = rest
	}
	return append(chunks, s)
}

// splitPoint picks where to cut s, which is longer than budget bytes.
func splitPoint(s string, budget int) int {
	limit := budget
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	for i := limit; i > 0; i-- {
		if isBlank(s[i]) && !isBlank(s[i-1]) {
			return i
		}
	}
	if limit == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return limit
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v'
}
