package forthic

import "fmt"

// CodeLocation is a source position record: a human-readable origin tag
// plus 1-based line/column and 0-based byte offsets into the originating
// string. It is attached to every Token and to every compiled Word.
type CodeLocation struct {
	Source   string
	File     string
	Line     int
	Column   int
	StartPos int
	EndPos   int
}

func (l CodeLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d, col %d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Translate shifts a Location measured in a local source into the frame of
// a reference Location (used when tokenizing a string that is itself a
// substring of a larger logical source, e.g. INTERPRET). Local line 1 maps
// to ref.Line and later lines follow it; the column is shifted by
// ref.Column only on local line 1, since later lines start at column 1 in
// both frames; start/end offsets are shifted by ref.StartPos.
func (l CodeLocation) Translate(ref *CodeLocation) CodeLocation {
	if ref == nil {
		return l
	}
	result := l
	if ref.Source != "" {
		result.Source = ref.Source
	}
	if ref.File != "" {
		result.File = ref.File
	}
	if l.Line == 1 {
		result.Line = ref.Line
		result.Column = ref.Column + l.Column - 1
	} else {
		result.Line = ref.Line + l.Line - 1
	}
	result.StartPos = ref.StartPos + l.StartPos
	result.EndPos = ref.StartPos + l.EndPos
	return result
}

// CaretWidth returns the width of the caret underline used when rendering
// an error against this location: always at least 1.
func (l CodeLocation) CaretWidth() int {
	width := l.EndPos - l.StartPos
	if width < 1 {
		return 1
	}
	return width
}
