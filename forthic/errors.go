package forthic

import (
	"fmt"
	"strings"
)

// ForthicError is the base error type for all Forthic errors.
type ForthicError struct {
	Message  string
	Forthic  string
	Location *CodeLocation
	Cause    error
}

func (e *ForthicError) Error() string {
	var parts []string

	parts = append(parts, e.Message)

	if e.Location != nil {
		parts = append(parts, fmt.Sprintf("at %s", e.Location))
	}

	if e.Forthic != "" {
		parts = append(parts, fmt.Sprintf("in: %s", e.Forthic))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	return strings.Join(parts, "\n  ")
}

func (e *ForthicError) Unwrap() error {
	return e.Cause
}

func (e *ForthicError) location() *CodeLocation { return e.Location }

func (e *ForthicError) setLocation(loc *CodeLocation) { e.Location = loc }

// NewForthicError creates a new ForthicError
func NewForthicError(message string) *ForthicError {
	return &ForthicError{
		Message: message,
	}
}

// WithLocation adds location information to the error
func (e *ForthicError) WithLocation(loc *CodeLocation) *ForthicError {
	e.Location = loc
	return e
}

// WithForthic adds the Forthic code snippet to the error
func (e *ForthicError) WithForthic(forthic string) *ForthicError {
	e.Forthic = forthic
	return e
}

// WithCause adds a causal error
func (e *ForthicError) WithCause(cause error) *ForthicError {
	e.Cause = cause
	return e
}

// UnknownWordError represents an attempt to execute an unknown word whose
// text also failed every registered literal handler.
type UnknownWordError struct {
	*ForthicError
	Word string
}

func NewUnknownWordError(word string) *UnknownWordError {
	return &UnknownWordError{
		ForthicError: NewForthicError(fmt.Sprintf("Unknown word: %s", word)),
		Word:         word,
	}
}

// UnknownModuleError represents an attempt to use an unregistered module.
type UnknownModuleError struct {
	*ForthicError
	Module string
}

func NewUnknownModuleError(module string) *UnknownModuleError {
	return &UnknownModuleError{
		ForthicError: NewForthicError(fmt.Sprintf("Unknown module: %s", module)),
		Module:       module,
	}
}

// UnknownTokenError is defensive: the tokenizer emitted a token kind the
// interpreter's dispatch switch doesn't know how to handle.
type UnknownTokenError struct {
	*ForthicError
	Text string
}

func NewUnknownTokenError(text string) *UnknownTokenError {
	return &UnknownTokenError{
		ForthicError: NewForthicError(fmt.Sprintf("Unknown token: %s", text)),
		Text:         text,
	}
}

// StackUnderflowError represents an attempt to pop/peek an empty stack.
type StackUnderflowError struct {
	*ForthicError
}

func NewStackUnderflowError() *StackUnderflowError {
	return &StackUnderflowError{
		ForthicError: NewForthicError("Stack underflow"),
	}
}

// WordExecutionError wraps any error raised while a DefinitionWord is
// executing its contained words. It carries both the call site (where the
// definition itself was invoked) and the definition site (where the failing
// inner word was written), so error reports can show both.
type WordExecutionError struct {
	*ForthicError
	Word               string
	CallLocation       *CodeLocation
	DefinitionLocation *CodeLocation
}

func NewWordExecutionError(word string, err error, callLoc *CodeLocation, defLoc *CodeLocation) *WordExecutionError {
	return &WordExecutionError{
		ForthicError: NewForthicError(fmt.Sprintf("Error executing word: %s", word)).
			WithCause(err).
			WithLocation(callLoc),
		Word:               word,
		CallLocation:       callLoc,
		DefinitionLocation: defLoc,
	}
}

// MissingSemicolonError represents `:`/`@:` seen while already compiling.
type MissingSemicolonError struct {
	*ForthicError
}

func NewMissingSemicolonError() *MissingSemicolonError {
	return &MissingSemicolonError{
		ForthicError: NewForthicError("Missing semicolon (;) to end definition"),
	}
}

// ExtraSemicolonError represents `;` seen while not compiling.
type ExtraSemicolonError struct {
	*ForthicError
}

func NewExtraSemicolonError() *ExtraSemicolonError {
	return &ExtraSemicolonError{
		ForthicError: NewForthicError("Extra semicolon (;) outside of definition"),
	}
}

// ModuleError represents an error escaping a module's top-level evaluation.
type ModuleError struct {
	*ForthicError
	Module string
}

func NewModuleError(module string, message string) *ModuleError {
	return &ModuleError{
		ForthicError: NewForthicError(fmt.Sprintf("Module error in %s: %s", module, message)),
		Module:       module,
	}
}

// IntentionalStopError represents a deliberate halt, raised by debug words
// like PEEK!/STACK!. It is never handled by the recovery loop.
type IntentionalStopError struct {
	*ForthicError
}

func NewIntentionalStopError(message string) *IntentionalStopError {
	return &IntentionalStopError{
		ForthicError: NewForthicError(message),
	}
}

// InvalidVariableNameError represents a variable name starting with "__".
type InvalidVariableNameError struct {
	*ForthicError
	VarName string
}

func NewInvalidVariableNameError(varName string) *InvalidVariableNameError {
	return &InvalidVariableNameError{
		ForthicError: NewForthicError(fmt.Sprintf("Invalid variable name: %s", varName)),
		VarName:      varName,
	}
}

// InvalidWordNameError represents a `:`/`@:` definition name the tokenizer
// rejected (contains a quote or bracket character).
type InvalidWordNameError struct {
	*ForthicError
	Name string
}

func NewInvalidWordNameError(name string) *InvalidWordNameError {
	return &InvalidWordNameError{
		ForthicError: NewForthicError(fmt.Sprintf("Invalid word name: %s", name)),
		Name:         name,
	}
}

// UnterminatedStringError represents EOF reached inside an open string
// literal.
type UnterminatedStringError struct {
	*ForthicError
}

func NewUnterminatedStringError() *UnterminatedStringError {
	return &UnterminatedStringError{
		ForthicError: NewForthicError("Unterminated string"),
	}
}

// TooManyAttemptsError represents a recovery loop that exceeded
// Interpreter.maxAttempts without the error handler resolving the error.
type TooManyAttemptsError struct {
	*ForthicError
	Attempts int
	Max      int
}

func NewTooManyAttemptsError(attempts int, max int) *TooManyAttemptsError {
	return &TooManyAttemptsError{
		ForthicError: NewForthicError(fmt.Sprintf("Too many attempts: %d (max %d)", attempts, max)),
		Attempts:     attempts,
		Max:          max,
	}
}

// ============================================================================
// Error rendering
// ============================================================================

type locationer interface {
	location() *CodeLocation
}

type locationSetter interface {
	setLocation(*CodeLocation)
}

// TranslateLocation rewrites err's location(s) into ref's frame. Used by
// INTERPRET: code run through a nested Run shares its tokenizer's line/column
// numbering with the quoted string it came from, not with the outer program,
// so an error raised inside it needs its Location translated against the
// quoted string's own source Location before it propagates further.
func TranslateLocation(err error, ref *CodeLocation) error {
	if ref == nil || err == nil {
		return err
	}

	if wee, ok := err.(*WordExecutionError); ok {
		if wee.CallLocation != nil {
			t := wee.CallLocation.Translate(ref)
			wee.CallLocation = &t
		}
		if wee.DefinitionLocation != nil {
			t := wee.DefinitionLocation.Translate(ref)
			wee.DefinitionLocation = &t
		}
	}

	if ls, ok := err.(locationSetter); ok {
		if le, ok2 := err.(locationer); ok2 {
			if loc := le.location(); loc != nil {
				t := loc.Translate(ref)
				ls.setLocation(&t)
			}
		}
	}

	return err
}

// GetErrorDescription renders a multi-line, human-readable report for err
// against the original source it was raised from: a summary note, the
// "at line N[, source S]" locator, a source excerpt up to and including the
// offending line, and a caret underline aligned to the error's column.
//
// WordExecutionError renders both the definition site and the call site,
// in that order, separated by "Called from ...".
func GetErrorDescription(source string, err error) string {
	if wee, ok := err.(*WordExecutionError); ok {
		var b strings.Builder
		cause := wee.Message
		if wee.Cause != nil {
			cause = wee.Cause.Error()
		}
		b.WriteString(renderOne(source, cause, wee.DefinitionLocation))
		if wee.CallLocation != nil {
			b.WriteString("\nCalled from:\n")
			b.WriteString(renderOne(source, wee.Word, wee.CallLocation))
		}
		return b.String()
	}

	if le, ok := err.(locationer); ok {
		return renderOne(source, err.Error(), le.location())
	}

	return err.Error()
}

func renderOne(source string, note string, loc *CodeLocation) string {
	if loc == nil {
		return note
	}

	var b strings.Builder
	b.WriteString(note)
	b.WriteString(fmt.Sprintf("\nat line %d", loc.Line))
	if loc.Source != "" {
		b.WriteString(fmt.Sprintf(", source %s", loc.Source))
	}
	b.WriteString("\n")

	lines := strings.Split(source, "\n")
	if loc.Line >= 1 && loc.Line <= len(lines) {
		for i := 0; i < loc.Line; i++ {
			b.WriteString(lines[i])
			b.WriteString("\n")
		}
		col := loc.Column
		if col < 1 {
			col = 1
		}
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString(strings.Repeat("^", loc.CaretWidth()))
	}

	return b.String()
}
