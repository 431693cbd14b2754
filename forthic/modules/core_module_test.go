package modules

import (
	"testing"

	"github.com/forthix/forthic-go/forthic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCoreInterpreter() *forthic.Interpreter {
	interp := forthic.NewInterpreter()
	interp.ImportModule(NewCoreModule().Module, "")
	interp.ImportModule(NewMathModule().Module, "")
	return interp
}

func TestCore_StackWords(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run("1 2 3 POP"))
	items := interp.GetStack().Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[1])

	interp = setupCoreInterpreter()
	require.NoError(t, interp.Run("42 DUP"))
	items = interp.GetStack().Items()
	require.Len(t, items, 2)
	assert.Equal(t, items[0], items[1])

	interp = setupCoreInterpreter()
	require.NoError(t, interp.Run("1 2 SWAP"))
	items = interp.GetStack().Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0])
	assert.Equal(t, int64(1), items[1])
}

func TestCore_VariablesDeclaredAndSetGet(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`["x" "y"] VARIABLES`))

	app := interp.GetAppModule()
	assert.NotNil(t, app.GetVariable("x"))
	assert.NotNil(t, app.GetVariable("y"))

	require.NoError(t, interp.Run(`24 x !`))
	require.NoError(t, interp.Run(`x @`))
	assert.Equal(t, int64(24), interp.StackPop())

	require.NoError(t, interp.Run(`42 x !@`))
	assert.Equal(t, int64(42), interp.StackPop())
	assert.Equal(t, int64(42), app.GetVariable("x").GetValue())
}

func TestCore_DunderVariableNamesRejected(t *testing.T) {
	interp := setupCoreInterpreter()

	assert.Error(t, interp.Run(`["__bad"] VARIABLES`))
	assert.Error(t, interp.Run(`"v" "__bad" !`))
	assert.Error(t, interp.Run(`"__bad" @`))
	assert.Error(t, interp.Run(`"v" "__bad" !@`))
}

func TestCore_BangAndAtAutoCreateUndeclaredVariables(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run(`"hello" "greeting" !`))
	require.NoError(t, interp.Run(`greeting @`))
	assert.Equal(t, "hello", interp.StackPop())
	assert.NotNil(t, interp.GetAppModule().GetVariable("greeting"))

	require.NoError(t, interp.Run(`"untouched" @`))
	assert.Nil(t, interp.StackPop())

	require.NoError(t, interp.Run(`"world" "other" !@`))
	assert.Equal(t, "world", interp.StackPop())
}

func TestCore_EXPORT(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`["POP" "DUP"] EXPORT`))
}

func TestCore_INTERPRET(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`"5 10 +" INTERPRET`))
	assert.Equal(t, 15.0, interp.StackPop())
}

func TestCore_NoOpsLeaveStackAlone(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run("42 IDENTITY"))
	assert.Equal(t, int64(42), interp.StackPop())

	require.NoError(t, interp.Run("NOP"))
	assert.Equal(t, 0, interp.GetStack().Length())

	require.NoError(t, interp.Run("NULL"))
	assert.Nil(t, interp.StackPop())
}

func TestCore_ArrayCheck(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run(`[1 2 3] ARRAY?`))
	assert.Equal(t, true, interp.StackPop())

	require.NoError(t, interp.Run(`42 ARRAY?`))
	assert.Equal(t, false, interp.StackPop())
}

func TestCore_DEFAULT(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run(`NULL 42 DEFAULT`))
	assert.Equal(t, int64(42), interp.StackPop())

	require.NoError(t, interp.Run(`10 42 DEFAULT`))
	assert.Equal(t, int64(10), interp.StackPop())

	require.NoError(t, interp.Run(`"" 42 DEFAULT`))
	assert.Equal(t, int64(42), interp.StackPop())
}

func TestCore_DefaultStarOnlyRunsFallbackWhenEmpty(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run(`NULL "10 20 +" *DEFAULT`))
	assert.Equal(t, 30.0, interp.StackPop())

	require.NoError(t, interp.Run(`42 "10 20 +" *DEFAULT`))
	assert.Equal(t, int64(42), interp.StackPop())
}

func TestCore_ToOptionsBuildsWordOptions(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`[.key1 "value1" .key2 42] ~>`))

	opts, ok := interp.StackPop().(*forthic.WordOptions)
	require.True(t, ok)
	assert.Equal(t, "value1", opts.Get("key1", nil))
	assert.Equal(t, int64(42), opts.Get("key2", nil))
}

func TestCore_InterpolateSubstitutesVariables(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`5 .count ! "Count: .count" INTERPOLATE`))
	assert.Equal(t, "Count: 5", interp.StackPop())
}

func TestCore_InterpolateHonorsSeparatorOption(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`[1 2 3] .items ! "Items: .items" [.separator " | "] ~> INTERPOLATE`))
	assert.Equal(t, "Items: 1 | 2 | 3", interp.StackPop())
}

func TestCore_InterpolatePreservesEscapedDot(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`"Test \\. escaped" INTERPOLATE`))
	assert.Contains(t, interp.StackPop().(string), ".")
}

func TestCore_InterpolateHonorsNullTextOption(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`NULL .value ! "Value: .value" [.null_text "<empty>"] ~> INTERPOLATE`))
	assert.Equal(t, "Value: <empty>", interp.StackPop())
}

func TestCore_ProfilingWordsRunWithoutError(t *testing.T) {
	interp := setupCoreInterpreter()

	require.NoError(t, interp.Run(`PROFILE-START PROFILE-END`))
	require.NoError(t, interp.Run(`"marker" PROFILE-TIMESTAMP`))
	require.NoError(t, interp.Run(`PROFILE-DATA`))
	assert.NotNil(t, interp.StackPop())
}

func TestCore_LoggingWordsRunWithoutError(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`START-LOG END-LOG`))
}

func TestCore_VariablesAndArithmeticCompose(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`["x" "y"] VARIABLES 10 x ! 20 y ! x @ y @ +`))
	assert.Equal(t, 30.0, interp.StackPop())
}

func TestCore_StackManipulationSequence(t *testing.T) {
	interp := setupCoreInterpreter()
	require.NoError(t, interp.Run(`1 2 3 DUP POP SWAP`))

	items := interp.GetStack().Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(1), items[0])
	assert.Equal(t, int64(3), items[1])
	assert.Equal(t, int64(2), items[2])
}
