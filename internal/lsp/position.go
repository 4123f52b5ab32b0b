package lsp

import (
	"unicode/utf16"
	"unicode/utf8"
)

// LSP positions count UTF-16 code units within a line.

// utf16Col converts a byte offset in line to a UTF-16 column.
func utf16Col(line string, byteOff int) int {
	if byteOff > len(line) {
		byteOff = len(line)
	}
	col := 0
	for _, r := range line[:byteOff] {
		col += utf16.RuneLen(r)
	}
	return col
}

// byteOffset converts a UTF-16 column to a byte offset in line, clamped to
// the line. A column inside a surrogate pair lands on the rune's start.
func byteOffset(line string, col int) int {
	if col <= 0 {
		return 0
	}
	units := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > col {
			return i
		}
		units += n
		i += size
	}
	return len(line)
}
