package diff

import (
	"bytes"
	"strings"
)

// binarySniffLen is how much of a file is scanned for a null byte.
const binarySniffLen = 8000

// SplitLines splits text into lines without their terminators. A trailing
// newline does not produce an empty final line, and a "\r" before a "\n" is
// dropped.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// CountLines returns len(SplitLines(text)) without allocating the lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// IsBinary reports whether content looks binary: a null byte within the
// first few kilobytes.
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
