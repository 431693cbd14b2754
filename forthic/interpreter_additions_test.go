package forthic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreter_DualLocationError(t *testing.T) {
	interp := NewInterpreter()
	mod := NewModule("test")
	mod.AddModuleWord("POP1", func(i *Interpreter) error {
		i.StackPop()
		return nil
	})
	interp.ImportModule(mod, "")

	err := interp.Run(": BAD   POP1 ;\nBAD")
	require.Error(t, err)

	wee, ok := err.(*WordExecutionError)
	require.True(t, ok, "expected *WordExecutionError, got %T", err)
	assert.Equal(t, 2, wee.CallLocation.Line)
	assert.Equal(t, 1, wee.DefinitionLocation.Line)
}

func TestInterpreter_DotFloatFallsThroughDotSymbolGrammar(t *testing.T) {
	interp := NewInterpreter()
	err := interp.Run(".5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, interp.StackPop())
}

func TestInterpreter_DotSymbolStillWorks(t *testing.T) {
	interp := NewInterpreter()
	err := interp.Run(".key")
	require.NoError(t, err)
	assert.Equal(t, "key", interp.StackPop())
}

func TestInterpreter_RecoveryLoopRetriesAndSucceeds(t *testing.T) {
	interp := NewInterpreter()
	attempts := 0
	interp.SetErrorHandler(func(err error, i *Interpreter) error {
		attempts++
		// Simulate the handler patching the missing word in, the same way a
		// caller might install a stub after seeing an UnknownWordError --
		// execution resumes from the failing token, so the word must
		// actually resolve this time, not just leave a value on the stack.
		mod := NewModule("recovered")
		mod.AddModuleWord("UNKNOWN_WORD", func(ii *Interpreter) error {
			ii.StackPush(int64(0))
			return nil
		})
		i.ImportModule(mod, "")
		return nil
	})

	err := interp.Run("UNKNOWN_WORD")
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int64(0), interp.StackPop())
}

func TestInterpreter_RecoveryLoopDoesNotReplayAlreadyExecutedTokens(t *testing.T) {
	interp := NewInterpreter()
	interp.SetErrorHandler(func(err error, i *Interpreter) error {
		mod := NewModule("recovered")
		mod.AddModuleWord("UNKNOWN_WORD", func(ii *Interpreter) error {
			ii.StackPush(int64(3))
			return nil
		})
		i.ImportModule(mod, "")
		return nil
	})

	err := interp.Run("1 2 UNKNOWN_WORD")
	require.NoError(t, err)

	// The tokens before the failure (1, 2) must not be re-executed on retry.
	assert.Equal(t, 3, interp.GetStack().Length())
	assert.Equal(t, int64(3), interp.StackPop())
	assert.Equal(t, int64(2), interp.StackPop())
	assert.Equal(t, int64(1), interp.StackPop())
}

func TestInterpreter_RecoveryLoopExhaustsMaxAttempts(t *testing.T) {
	interp := NewInterpreter()
	interp.SetMaxAttempts(2)
	calls := 0
	interp.SetErrorHandler(func(err error, i *Interpreter) error {
		calls++
		return nil // always "resolves", forcing a retry of the same failing code
	})

	err := interp.Run("UNKNOWN_WORD")
	require.Error(t, err)
	tooMany, ok := err.(*TooManyAttemptsError)
	require.True(t, ok, "expected *TooManyAttemptsError, got %T", err)
	assert.Equal(t, 2, tooMany.Attempts)
	assert.Equal(t, 2, calls)
}

func TestInterpreter_RecoveryLoopPropagatesHandlerError(t *testing.T) {
	interp := NewInterpreter()
	interp.SetErrorHandler(func(err error, i *Interpreter) error {
		return NewForthicError("handler gave up")
	})

	err := interp.Run("UNKNOWN_WORD")
	require.Error(t, err)
	assert.Equal(t, "handler gave up", err.Error())
}

func TestInterpreter_InvalidWordName(t *testing.T) {
	interp := NewInterpreter()
	err := interp.Run(`: [BAD] 1 ;`)
	require.Error(t, err)
	_, ok := err.(*InvalidWordNameError)
	assert.True(t, ok, "expected *InvalidWordNameError, got %T", err)
}

func TestInterpreter_UnterminatedString(t *testing.T) {
	interp := NewInterpreter()
	err := interp.Run(`"never closed`)
	require.Error(t, err)
	_, ok := err.(*UnterminatedStringError)
	assert.True(t, ok, "expected *UnterminatedStringError, got %T", err)
}

func TestInterpreter_ValidationModeSkipsExecutionButStillResolves(t *testing.T) {
	interp := NewInterpreter()
	mod := NewModule("test")
	mod.AddModuleWord("POP1", func(i *Interpreter) error {
		i.StackPop()
		return nil
	})
	interp.ImportModule(mod, "")
	interp.SetValidationMode(true)

	err := interp.Run("1 2 POP1")
	require.NoError(t, err)
	assert.Equal(t, 0, interp.GetStack().Length(), "no word should have executed in validation mode")

	err = interp.Run("UNKNOWN_WORD")
	assert.Error(t, err, "unknown words must still be reported during validation")
}

func TestInterpreter_ValidationModeStillCompilesDefinitions(t *testing.T) {
	interp := NewInterpreter()
	interp.SetValidationMode(true)

	err := interp.Run(`: ANSWER 42 ;`)
	require.NoError(t, err)

	word := interp.CurModule().FindDictionaryWord("ANSWER")
	assert.NotNil(t, word)
}

func TestInterpreter_WordShadowing(t *testing.T) {
	interp := NewInterpreter()
	err := interp.Run(`: 42 100 ; 42`)
	require.NoError(t, err)
	assert.Equal(t, int64(100), interp.StackPop())
}

func TestInterpreter_ResetPreservesDefinitions(t *testing.T) {
	interp := NewInterpreter()
	require.NoError(t, interp.Run(`: ANSWER 42 ; ANSWER`))
	assert.Equal(t, 1, interp.GetStack().Length())

	interp.Reset()
	assert.Equal(t, 0, interp.GetStack().Length())

	require.NoError(t, interp.Run("ANSWER"))
	assert.Equal(t, int64(42), interp.StackPop())
}

func TestInterpreter_DupInterpreterIsolatesDefinitions(t *testing.T) {
	src := NewInterpreter()
	require.NoError(t, src.Run(`: ANSWER 42 ;`))

	dup := DupInterpreter(src)
	require.NoError(t, dup.Run(`: ANSWER 99 ;`))

	require.NoError(t, src.Run("ANSWER"))
	assert.Equal(t, int64(42), src.StackPop())

	require.NoError(t, dup.Run("ANSWER"))
	assert.Equal(t, int64(99), dup.StackPop())
}

func TestModule_DupGivesMemoFreshCache(t *testing.T) {
	interp := NewInterpreter()
	require.NoError(t, interp.Run(`@: COUNTER 42 ;`))
	require.NoError(t, interp.Run("COUNTER")) // populate the memo's cache
	interp.StackPop()

	dup := interp.CurModule().Dup()
	memoWord, ok := dup.FindDictionaryWord("COUNTER").(*ModuleMemoWord)
	require.True(t, ok)
	assert.False(t, memoWord.hasValue, "duplicate module must not inherit the original's cached memo value")
}

func TestInterpreter_ProfilingCountsWordExecutions(t *testing.T) {
	interp := NewInterpreter()
	interp.StartProfiling()
	require.NoError(t, interp.Run(`: DOUBLE 1 1 ;`))
	require.NoError(t, interp.Run("DOUBLE"))
	interp.StopProfiling()

	histogram := interp.WordHistogram()
	assert.Greater(t, histogram["DOUBLE"], 0)
}

func TestInterpreter_LiteralHandlerRegisterAndUnregister(t *testing.T) {
	interp := NewInterpreter()
	id := interp.RegisterLiteralHandler(func(s string) (interface{}, bool) {
		if s == "CUSTOM" {
			return "custom-value", true
		}
		return nil, false
	})

	require.NoError(t, interp.Run("CUSTOM"))
	assert.Equal(t, "custom-value", interp.StackPop())

	assert.True(t, interp.UnregisterLiteralHandler(id))
	assert.Error(t, interp.Run("CUSTOM"))
}

func TestStreamingRun_SkipsAlreadyExecutedTokens(t *testing.T) {
	interp := NewInterpreter()
	interp.StartStream()

	_, _, err := interp.StreamingRun(`1 2`, false)
	require.NoError(t, err)
	assert.Equal(t, 2, interp.GetStack().Length())

	_, _, err = interp.StreamingRun(`1 2 3`, true)
	require.NoError(t, err)
	require.Equal(t, 3, interp.GetStack().Length())
	assert.Equal(t, int64(3), interp.StackPop())
	assert.Equal(t, int64(2), interp.StackPop())
	assert.Equal(t, int64(1), interp.StackPop())
}

func TestStreamingRun_HoldsBackOpenString(t *testing.T) {
	interp := NewInterpreter()
	interp.StartStream()

	_, delta, err := interp.StreamingRun(`"hello`, false)
	require.NoError(t, err)
	assert.Equal(t, "hello", delta)
	assert.Equal(t, 0, interp.GetStack().Length())

	_, _, err = interp.StreamingRun(`"hello world"`, true)
	require.NoError(t, err)
	assert.Equal(t, 1, interp.GetStack().Length())
	assert.Equal(t, "hello world", interp.StackPop())
}
