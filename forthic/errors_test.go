package forthic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorDescription_PlainLocationlessError(t *testing.T) {
	err := NewUnknownWordError("MYSTERY")
	desc := GetErrorDescription("1 MYSTERY 2", err)
	assert.Equal(t, err.Error(), desc, "an error with no location renders as its plain message")
}

func TestGetErrorDescription_RendersSourceExcerptAndCaret(t *testing.T) {
	source := "line one\nline two\nline three"

	defLoc := &CodeLocation{Line: 2, Column: 6, StartPos: 14, EndPos: 17}
	callLoc := &CodeLocation{Line: 3, Column: 1, StartPos: 18, EndPos: 22}

	wee := NewWordExecutionError("BAD", NewForthicError("boom"), callLoc, defLoc)
	desc := GetErrorDescription(source, wee)

	assert.True(t, strings.Contains(desc, "boom"))
	assert.True(t, strings.Contains(desc, "at line 2"))
	assert.True(t, strings.Contains(desc, "Called from:"))
	assert.True(t, strings.Contains(desc, "at line 3"))
	assert.True(t, strings.Contains(desc, "line one"))
	assert.True(t, strings.Contains(desc, "line two"))
	assert.True(t, strings.Contains(desc, "line three"))
	assert.True(t, strings.Contains(desc, strings.Repeat("^", defLoc.CaretWidth())))
	assert.True(t, strings.Contains(desc, strings.Repeat("^", callLoc.CaretWidth())))
}

func TestGetErrorDescription_SingleLocationError(t *testing.T) {
	source := "only line"
	loc := &CodeLocation{Line: 1, Column: 6, StartPos: 5, EndPos: 9}

	err := NewUnknownWordError("line").WithLocation(loc)
	desc := GetErrorDescription(source, err)

	assert.True(t, strings.Contains(desc, "only line"))
	assert.True(t, strings.Contains(desc, "at line 1"))
	assert.False(t, strings.Contains(desc, "Called from:"))
}
