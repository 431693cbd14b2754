package forthic

import (
	"fmt"
	"strings"
	"time"
)

// LiteralHandler tries to parse a string as a literal value
// Returns value and true if successful, nil and false otherwise
type LiteralHandler func(string) (interface{}, bool)

type literalHandlerEntry struct {
	id      int
	handler LiteralHandler
}

// ProfileTimestamp is one labeled marker recorded by PROFILE-TIMESTAMP.
type ProfileTimestamp struct {
	Label string
	At    time.Time
}

// Interpreter - Core Forthic interpreter
//
// Core interpreter that tokenizes and executes Forthic code.
// Manages the data stack, module stack, and execution context.
type Interpreter struct {
	stack            *Stack
	appModule        *Module
	moduleStack      []*Module
	registeredMods   map[string]*Module
	tokenizerStack   []*Tokenizer
	previousToken    *Token
	isCompiling      bool
	isMemoDefinition bool
	curDefinition    *DefinitionWord
	literalHandlers  []literalHandlerEntry
	nextHandlerID    int
	timezone         string

	// current_string_location: the source Location of the most recently
	// popped string literal, latched on pop so ops like INTERPRET can
	// attribute errors raised in nested code back to where it was quoted.
	stringLocation *CodeLocation

	// Recovery loop (error_handler / max_attempts).
	maxAttempts  int
	errorHandler func(error, *Interpreter) error

	// validation_mode: compile definitions and resolve word lookups, but
	// skip executing plain WORD tokens at the top level.
	validationMode bool

	// Profiling.
	profilingEnabled bool
	wordCounts       map[string]int
	timestamps       []ProfileTimestamp

	// Logging (START-LOG/END-LOG): buffers the text of every word executed
	// while enabled.
	logEnabled bool
	logBuffer  strings.Builder

	// Streaming driver cursor (component J). See streaming.go.
	streamingCursor int
	streamingActive bool
}

// NewInterpreter creates a new Interpreter
func NewInterpreter(modules ...*Module) *Interpreter {
	interp := &Interpreter{
		stack:            NewStack(),
		appModule:        NewModule(""),
		moduleStack:      make([]*Module, 0),
		registeredMods:   make(map[string]*Module),
		tokenizerStack:   make([]*Tokenizer, 0),
		previousToken:    nil,
		isCompiling:      false,
		isMemoDefinition: false,
		curDefinition:    nil,
		literalHandlers:  make([]literalHandlerEntry, 0),
		timezone:         "UTC",
		maxAttempts:      3,
	}

	// Set app module's interpreter
	interp.appModule.SetInterp(interp)

	// Initialize module stack with app module
	interp.moduleStack = append(interp.moduleStack, interp.appModule)

	// Register standard literal handlers
	interp.registerStandardLiterals()

	// Import provided modules (unprefixed)
	for _, module := range modules {
		interp.ImportModule(module, "")
	}

	return interp
}

// ============================================================================
// Stack Operations
// ============================================================================

// StackPush pushes a value onto the stack
func (i *Interpreter) StackPush(val interface{}) {
	i.stack.Push(val)
}

// StackPop pops a value from the stack. If the popped value is a
// PositionedString, it is unwrapped into a plain string and its source
// Location is latched as the current string location.
// Throws StackUnderflowError if stack is empty.
func (i *Interpreter) StackPop() interface{} {
	val, err := i.stack.Pop()
	if err != nil {
		// Get token location if available
		var loc *CodeLocation
		if len(i.tokenizerStack) > 0 {
			tokenizer := i.GetTokenizer()
			loc = tokenizer.getTokenLocation()
		}
		panic(NewStackUnderflowError().WithLocation(loc))
	}
	unwrapped, strLoc := UnwrapValue(val)
	if strLoc != nil {
		i.stringLocation = strLoc
	}
	return unwrapped
}

// StackPeek peeks at the top of the stack without removing it. Unlike
// StackPop it does not latch a string location, since nothing has actually
// been consumed.
func (i *Interpreter) StackPeek() interface{} {
	val, err := i.stack.Peek()
	if err != nil {
		// Get token location if available
		var loc *CodeLocation
		if len(i.tokenizerStack) > 0 {
			tokenizer := i.GetTokenizer()
			loc = tokenizer.getTokenLocation()
		}
		panic(NewStackUnderflowError().WithLocation(loc))
	}
	unwrapped, _ := UnwrapValue(val)
	return unwrapped
}

// GetStack returns the stack
func (i *Interpreter) GetStack() *Stack {
	return i.stack
}

// CurrentStringLocation returns the source Location of the most recently
// popped string literal, or nil if none has been popped yet.
func (i *Interpreter) CurrentStringLocation() *CodeLocation {
	return i.stringLocation
}

// ============================================================================
// Module Operations
// ============================================================================

// GetAppModule returns the app module
func (i *Interpreter) GetAppModule() *Module {
	return i.appModule
}

// CurModule returns the current module (top of module stack)
func (i *Interpreter) CurModule() *Module {
	return i.moduleStack[len(i.moduleStack)-1]
}

// ModuleStackPush pushes a module onto the module stack
func (i *Interpreter) ModuleStackPush(module *Module) {
	i.moduleStack = append(i.moduleStack, module)
}

// ModuleStackPop pops a module from the module stack
func (i *Interpreter) ModuleStackPop() *Module {
	if len(i.moduleStack) <= 1 {
		panic(NewForthicError("Cannot pop app module from module stack"))
	}
	module := i.moduleStack[len(i.moduleStack)-1]
	i.moduleStack = i.moduleStack[:len(i.moduleStack)-1]
	return module
}

// RegisterModule registers a module with the interpreter
func (i *Interpreter) RegisterModule(module *Module) {
	i.registeredMods[module.name] = module
	module.SetInterp(i)
}

// FindModule finds a registered module by name
func (i *Interpreter) FindModule(name string) (*Module, error) {
	module, ok := i.registeredMods[name]
	if !ok {
		return nil, NewUnknownModuleError(name)
	}
	return module, nil
}

// UseModules imports modules into the app module
// names can be strings or [string, string] pairs (module_name, prefix)
func (i *Interpreter) UseModules(names []interface{}) error {
	for _, name := range names {
		moduleName := ""
		prefix := ""

		// Check if it's an array [module_name, prefix]
		if arr, ok := name.([]interface{}); ok {
			if len(arr) >= 1 {
				moduleName = arr[0].(string)
			}
			if len(arr) >= 2 {
				prefix = arr[1].(string)
			}
		} else {
			// Simple string name
			moduleName = name.(string)
		}

		module, err := i.FindModule(moduleName)
		if err != nil {
			return err
		}

		i.appModule.ImportModule(prefix, module, i)
	}
	return nil
}

// ImportModule registers and imports a module
func (i *Interpreter) ImportModule(module *Module, prefix string) {
	i.RegisterModule(module)
	i.appModule.ImportModule(prefix, module, i)
}

// ============================================================================
// Tokenizer Operations
// ============================================================================

// GetTokenizer returns the current tokenizer
func (i *Interpreter) GetTokenizer() *Tokenizer {
	return i.tokenizerStack[len(i.tokenizerStack)-1]
}

// CurrentLocation returns the Location of the token currently being
// processed by the innermost active tokenizer, or nil if no tokenizer is
// active.
func (i *Interpreter) CurrentLocation() *CodeLocation {
	if len(i.tokenizerStack) == 0 {
		return nil
	}
	return i.GetTokenizer().getTokenLocation()
}

// ============================================================================
// Literal Handlers
// ============================================================================

// registerStandardLiterals registers the standard literal handlers
func (i *Interpreter) registerStandardLiterals() {
	// Load timezone
	loc, err := time.LoadLocation(i.timezone)
	if err != nil {
		loc = time.UTC // Fallback to UTC if timezone is invalid
	}

	// Order matters: most specific handlers first, so a looser pattern
	// never shadows a tighter one (zoned datetime before plain date,
	// numbers before the TRUE/FALSE boolean check).
	standard := []LiteralHandler{
		ToZonedDateTime(loc),
		ToLiteralDate(loc),
		ToTime,
		ToFloat,
		ToInt,
		ToBool,
	}
	i.literalHandlers = make([]literalHandlerEntry, 0, len(standard))
	for _, h := range standard {
		i.literalHandlers = append(i.literalHandlers, literalHandlerEntry{id: i.nextHandlerID, handler: h})
		i.nextHandlerID++
	}
}

// RegisterLiteralHandler adds a custom literal handler so it is tried before
// every previously-registered handler (last-registered-first). Returns an id
// that can later be passed to UnregisterLiteralHandler.
func (i *Interpreter) RegisterLiteralHandler(handler LiteralHandler) int {
	id := i.nextHandlerID
	i.nextHandlerID++
	// Add to front so it can override existing handlers
	i.literalHandlers = append([]literalHandlerEntry{{id: id, handler: handler}}, i.literalHandlers...)
	return id
}

// UnregisterLiteralHandler removes the handler previously returned by
// RegisterLiteralHandler. Returns false if no handler with that id is
// registered.
func (i *Interpreter) UnregisterLiteralHandler(id int) bool {
	for idx, entry := range i.literalHandlers {
		if entry.id == id {
			i.literalHandlers = append(i.literalHandlers[:idx], i.literalHandlers[idx+1:]...)
			return true
		}
	}
	return false
}

// findLiteralWord tries to parse a string as a literal
func (i *Interpreter) findLiteralWord(name string) Word {
	for _, entry := range i.literalHandlers {
		value, ok := entry.handler(name)
		if ok {
			return NewPushValueWord(name, value)
		}
	}
	return nil
}

// ============================================================================
// Find Word
// ============================================================================

// FindWord finds a word by name
// Searches module stack from top to bottom, then checks literal handlers
func (i *Interpreter) FindWord(name string) (Word, error) {
	// 1. Check module stack (from top to bottom)
	for j := len(i.moduleStack) - 1; j >= 0; j-- {
		module := i.moduleStack[j]
		word := module.FindWord(name)
		if word != nil {
			return word, nil
		}
	}

	// 2. Check literal handlers
	word := i.findLiteralWord(name)
	if word != nil {
		return word, nil
	}

	// 3. Not found
	return nil, NewUnknownWordError(name)
}

// ============================================================================
// Main Execution
// ============================================================================

// Run executes Forthic code. If an error handler is installed, a failing run
// is retried up to maxAttempts times: the handler is given a chance to
// mutate interpreter state (e.g. register a missing word, fix a variable)
// and execution resumes from the current tokenizer position -- the failing
// token is retried, but tokens already consumed (and their stack effects)
// are never replayed. Without a handler installed, the first error is
// returned immediately.
func (i *Interpreter) Run(code string) (err error) {
	attempts := 0
	maxAttempts := i.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	tokenizer := NewTokenizer(code, nil, false)
	i.tokenizerStack = append(i.tokenizerStack, tokenizer)
	defer func() {
		i.tokenizerStack = i.tokenizerStack[:len(i.tokenizerStack)-1]
	}()

	var resumeToken *Token
	for {
		attempts++
		var failedToken *Token
		failedToken, err = i.runOnce(tokenizer, resumeToken)
		resumeToken = nil
		if err == nil {
			return nil
		}
		if _, ok := err.(*IntentionalStopError); ok {
			return err
		}
		if i.errorHandler == nil {
			return err
		}

		handlerErr := i.errorHandler(err, i)
		if handlerErr != nil {
			return handlerErr
		}
		if attempts >= maxAttempts {
			tooMany := NewTooManyAttemptsError(attempts, maxAttempts)
			tooMany.Cause = err
			return tooMany
		}

		resumeToken = failedToken
	}
}

// runOnce drives tokenizer for one attempt, starting with resumeToken (a
// previously lexed token whose handling failed and must be retried without
// re-lexing it) when non-nil, then pulling further tokens from tokenizer as
// usual. It converts any panic that escapes (e.g. an unhandled
// StackUnderflowError) into a returned error. The returned token is whatever
// token was being handled when an error occurred, so a subsequent retry can
// resume exactly there; it is nil on success or when the failure was a
// tokenizer/lex error rather than a token-handling error.
func (i *Interpreter) runOnce(tokenizer *Tokenizer, resumeToken *Token) (failedToken *Token, err error) {
	token := resumeToken
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
			failedToken = token
		}
	}()

	for {
		if token == nil {
			token, err = tokenizer.NextToken()
			if err != nil {
				return nil, err
			}
		}

		if herr := i.handleToken(token); herr != nil {
			return token, herr
		}

		if token.Type == TOKEN_EOS {
			return nil, nil
		}

		i.previousToken = token
		token = nil
	}
}

// ============================================================================
// Reset / Duplication
// ============================================================================

// Reset clears the data stack and the app module's variables, returning the
// interpreter to a pristine runtime state while preserving every word
// definition and module registration made so far.
func (i *Interpreter) Reset() {
	i.stack.Clear()
	i.moduleStack = i.moduleStack[:1]
	i.appModule.ClearVariables()
	i.isCompiling = false
	i.isMemoDefinition = false
	i.curDefinition = nil
	i.previousToken = nil
	i.stringLocation = nil
}

// DupInterpreter creates a new Interpreter that shares src's registered
// module pool but gets its own app module (a deep duplicate with import
// prefixes restored, so redefining a word in the copy never affects src),
// its own fresh data stack, and the same error handler/timezone/validation
// settings. Used to give each of several concurrent executions of the same
// program an isolated mutable state.
func DupInterpreter(src *Interpreter) *Interpreter {
	dup := &Interpreter{
		stack:           NewStack(),
		moduleStack:     make([]*Module, 0),
		registeredMods:  src.registeredMods,
		tokenizerStack:  make([]*Tokenizer, 0),
		literalHandlers: append([]literalHandlerEntry(nil), src.literalHandlers...),
		nextHandlerID:   src.nextHandlerID,
		timezone:        src.timezone,
		maxAttempts:     src.maxAttempts,
		errorHandler:    src.errorHandler,
		validationMode:  src.validationMode,
	}

	dup.appModule = src.appModule.Copy(dup)
	dup.appModule.SetInterp(dup)
	dup.moduleStack = append(dup.moduleStack, dup.appModule)

	return dup
}

// ============================================================================
// Recovery loop configuration
// ============================================================================

// SetErrorHandler installs the handler Run consults when code fails. Pass
// nil to restore "first error propagates immediately" behavior.
func (i *Interpreter) SetErrorHandler(handler func(error, *Interpreter) error) {
	i.errorHandler = handler
}

// SetMaxAttempts bounds how many times Run will retry after the error
// handler accepts an error (returns nil). Values below 1 are clamped to 1.
func (i *Interpreter) SetMaxAttempts(n int) {
	if n < 1 {
		n = 1
	}
	i.maxAttempts = n
}

// SetValidationMode toggles validation_mode: while on, plain WORD tokens are
// looked up (so an UnknownWordError still surfaces) but not executed at the
// top level; bracket/module words keep executing so module-stack bookkeeping
// stays consistent while validating a multi-module definition.
func (i *Interpreter) SetValidationMode(on bool) {
	i.validationMode = on
}

func (i *Interpreter) ValidationMode() bool {
	return i.validationMode
}

// ============================================================================
// Profiling
// ============================================================================

// StartProfiling enables word-execution counting and timestamp recording,
// resetting any previously collected data.
func (i *Interpreter) StartProfiling() {
	i.profilingEnabled = true
	i.wordCounts = make(map[string]int)
	i.timestamps = make([]ProfileTimestamp, 0)
}

// StopProfiling disables profiling. Already-collected data is left intact
// so PROFILE-DATA can still read it afterward.
func (i *Interpreter) StopProfiling() {
	i.profilingEnabled = false
}

func (i *Interpreter) recordWordExecution(name string) {
	if i.profilingEnabled {
		i.wordCounts[name]++
	}
}

// AddTimestamp records a labeled marker at the current time, if profiling is
// enabled; otherwise it is a no-op.
func (i *Interpreter) AddTimestamp(label string) {
	if !i.profilingEnabled {
		return
	}
	i.timestamps = append(i.timestamps, ProfileTimestamp{Label: label, At: time.Now()})
}

// WordHistogram returns a copy of the per-word execution counts collected
// since the last StartProfiling.
func (i *Interpreter) WordHistogram() map[string]int {
	result := make(map[string]int, len(i.wordCounts))
	for k, v := range i.wordCounts {
		result[k] = v
	}
	return result
}

// ProfileTimestamps returns a copy of the timestamps recorded since the
// last StartProfiling.
func (i *Interpreter) ProfileTimestamps() []ProfileTimestamp {
	result := make([]ProfileTimestamp, len(i.timestamps))
	copy(result, i.timestamps)
	return result
}

// ============================================================================
// Logging
// ============================================================================

// StartLog enables word-text logging, discarding anything buffered from a
// previous START-LOG/END-LOG pair.
func (i *Interpreter) StartLog() {
	i.logEnabled = true
	i.logBuffer.Reset()
}

// EndLog disables logging and returns everything buffered since StartLog.
func (i *Interpreter) EndLog() string {
	i.logEnabled = false
	result := i.logBuffer.String()
	i.logBuffer.Reset()
	return result
}

// ============================================================================
// Token Handling
// ============================================================================

// handleToken dispatches token to appropriate handler
func (i *Interpreter) handleToken(token *Token) error {
	switch token.Type {
	case TOKEN_STRING:
		return i.handleStringToken(token)
	case TOKEN_COMMENT:
		return i.handleCommentToken(token)
	case TOKEN_START_ARRAY:
		return i.handleStartArrayToken(token)
	case TOKEN_END_ARRAY:
		return i.handleEndArrayToken(token)
	case TOKEN_START_MODULE:
		return i.handleStartModuleToken(token)
	case TOKEN_END_MODULE:
		return i.handleEndModuleToken(token)
	case TOKEN_START_DEF:
		return i.handleStartDefinitionToken(token)
	case TOKEN_START_MEMO:
		return i.handleStartMemoToken(token)
	case TOKEN_END_DEF:
		return i.handleEndDefinitionToken(token)
	case TOKEN_DOT_SYMBOL:
		return i.handleDotSymbolToken(token)
	case TOKEN_WORD:
		return i.handleWordToken(token)
	case TOKEN_EOS:
		if i.isCompiling {
			if i.previousToken != nil {
				return NewMissingSemicolonError().WithLocation(i.previousToken.Location)
			}
			return NewMissingSemicolonError()
		}
		return nil
	default:
		return NewUnknownTokenError(fmt.Sprintf("%v", token.Type))
	}
}

// handleStringToken handles string literals. The pushed value is a
// PositionedString so that a later stack pop can latch the quoted text's
// source Location for ops like INTERPRET that need to attribute nested
// errors back to the call site.
func (i *Interpreter) handleStringToken(token *Token) error {
	word := NewPushValueWord("<string>", NewPositionedString(token.String, token.Location))
	return i.handleWord(word, token.Location)
}

// handleDotSymbolToken handles dot symbols
func (i *Interpreter) handleDotSymbolToken(token *Token) error {
	word := NewPushValueWord("<dot-symbol>", token.String)
	return i.handleWord(word, token.Location)
}

// handleCommentToken handles comments (no-op)
func (i *Interpreter) handleCommentToken(token *Token) error {
	return nil
}

// handleStartArrayToken handles [
func (i *Interpreter) handleStartArrayToken(token *Token) error {
	word := NewPushValueWord("<start_array_token>", token)
	return i.handleWord(word, token.Location)
}

// handleEndArrayToken handles ]
func (i *Interpreter) handleEndArrayToken(token *Token) error {
	word := NewEndArrayWord()
	return i.handleWord(word, token.Location)
}

// handleStartModuleToken handles {
func (i *Interpreter) handleStartModuleToken(token *Token) error {
	word := NewStartModuleWord(token.String)

	// Module words are immediate (execute during compilation, and even
	// during validation_mode) and also compiled.
	if i.isCompiling {
		i.curDefinition.words = append(i.curDefinition.words, word)
	}

	return word.Execute(i)
}

// handleEndModuleToken handles }
func (i *Interpreter) handleEndModuleToken(token *Token) error {
	word := NewEndModuleWord()

	// Module words are immediate (execute during compilation, and even
	// during validation_mode) and also compiled.
	if i.isCompiling {
		i.curDefinition.words = append(i.curDefinition.words, word)
	}

	return word.Execute(i)
}

// handleStartDefinitionToken handles :
func (i *Interpreter) handleStartDefinitionToken(token *Token) error {
	if i.isCompiling {
		return NewMissingSemicolonError().WithLocation(i.previousToken.Location)
	}
	i.curDefinition = NewDefinitionWord(token.String, nil)
	i.isCompiling = true
	i.isMemoDefinition = false
	return nil
}

// handleStartMemoToken handles @:
func (i *Interpreter) handleStartMemoToken(token *Token) error {
	if i.isCompiling {
		return NewMissingSemicolonError().WithLocation(i.previousToken.Location)
	}
	i.curDefinition = NewDefinitionWord(token.String, nil)
	i.isCompiling = true
	i.isMemoDefinition = true
	return nil
}

// handleEndDefinitionToken handles ;
func (i *Interpreter) handleEndDefinitionToken(token *Token) error {
	if !i.isCompiling || i.curDefinition == nil {
		return NewExtraSemicolonError().WithLocation(token.Location)
	}

	if i.isMemoDefinition {
		i.CurModule().AddMemoWords(i.curDefinition)
	} else {
		i.CurModule().AddWord(i.curDefinition)
	}

	i.isCompiling = false
	return nil
}

// handleWordToken handles word tokens. In validation_mode, a word is still
// looked up (so an unknown word is still reported) but, outside of an
// active definition, is not executed.
func (i *Interpreter) handleWordToken(token *Token) error {
	word, err := i.FindWord(token.String)
	if err != nil {
		return err
	}

	if i.validationMode && !i.isCompiling {
		word.SetLocation(token.Location)
		return nil
	}

	return i.handleWord(word, token.Location)
}

// handleWord executes or compiles a word
func (i *Interpreter) handleWord(word Word, location *CodeLocation) error {
	if i.isCompiling {
		word.SetLocation(location)
		i.curDefinition.words = append(i.curDefinition.words, word)
		return nil
	}

	if i.logEnabled {
		i.logBuffer.WriteString(word.GetString())
		i.logBuffer.WriteString(" ")
	}
	i.recordWordExecution(word.GetName())

	return word.Execute(i)
}

// ============================================================================
// Special Word Types
// ============================================================================

// StartModuleWord handles module creation and switching
type StartModuleWord struct {
	*BaseWord
}

// NewStartModuleWord creates a new StartModuleWord
func NewStartModuleWord(name string) *StartModuleWord {
	return &StartModuleWord{
		BaseWord: NewBaseWord(name),
	}
}

func (w *StartModuleWord) Execute(interp *Interpreter) error {
	// Empty name refers to app module
	if w.name == "" {
		interp.ModuleStackPush(interp.GetAppModule())
		return nil
	}

	// Check if module exists in current module
	module := interp.CurModule().FindModule(w.name)
	if module == nil {
		// Create new module. Bracket-entered submodules are recorded as a
		// child with no prefix entry at all (spec.md §4.5/§4.6.1) -- any
		// recorded prefix, "" included, would make Module.Copy's
		// prefix-replaying ImportModule call wire it up as an import after a
		// dup, even though the pre-dup interpreter never imported it and
		// could not call its words.
		module = NewModule(w.name)
		interp.CurModule().modules[w.name] = module

		// If we're at app module, also register with interpreter
		if interp.CurModule().name == "" {
			interp.RegisterModule(module)
		}
	}

	interp.ModuleStackPush(module)
	return nil
}

// EndModuleWord pops the current module
type EndModuleWord struct {
	*BaseWord
}

// NewEndModuleWord creates a new EndModuleWord
func NewEndModuleWord() *EndModuleWord {
	return &EndModuleWord{
		BaseWord: NewBaseWord("}"),
	}
}

func (w *EndModuleWord) Execute(interp *Interpreter) error {
	interp.ModuleStackPop()
	return nil
}

// EndArrayWord collects items into an array
type EndArrayWord struct {
	*BaseWord
}

// NewEndArrayWord creates a new EndArrayWord
func NewEndArrayWord() *EndArrayWord {
	return &EndArrayWord{
		BaseWord: NewBaseWord("]"),
	}
}

func (w *EndArrayWord) Execute(interp *Interpreter) error {
	items := make([]interface{}, 0)
	for {
		item := interp.StackPop()

		// Check if it's a START_ARRAY token
		if token, ok := item.(*Token); ok && token.Type == TOKEN_START_ARRAY {
			break
		}

		items = append(items, item)
	}

	// Reverse the items
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	interp.StackPush(items)
	return nil
}
