package modules

import (
	"math"
	"testing"

	"github.com/forthix/forthic-go/forthic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMathInterpreter() *forthic.Interpreter {
	interp := forthic.NewInterpreter()
	interp.ImportModule(NewMathModule().Module, "")
	return interp
}

func TestMath_BinaryArithmetic(t *testing.T) {
	cases := []struct {
		code     string
		expected float64
	}{
		{"2 4 +", 6.0},
		{"2 4 -", -2.0},
		{"2 4 *", 8.0},
		{"2 4 /", 0.5},
		{"[1 2 3] +", 6.0},
		{"[2 3 4] *", 24.0},
	}

	for _, c := range cases {
		interp := setupMathInterpreter()
		require.NoError(t, interp.Run(c.code))
		assert.Equal(t, c.expected, interp.StackPop(), c.code)
	}
}

func TestMath_Mod(t *testing.T) {
	interp := setupMathInterpreter()
	require.NoError(t, interp.Run("5 3 MOD"))
	assert.Equal(t, 2, interp.StackPop())
}

func TestMath_Round(t *testing.T) {
	interp := setupMathInterpreter()
	require.NoError(t, interp.Run("2.51 ROUND"))
	assert.Equal(t, 3.0, interp.StackPop())
}

func TestMath_DivideByZeroGivesInfinity(t *testing.T) {
	interp := setupMathInterpreter()
	require.NoError(t, interp.Run("10 0 DIVIDE"))
	assert.True(t, math.IsInf(interp.StackPop().(float64), 1))
}

func TestMath_MeanOfNumericArray(t *testing.T) {
	cases := []struct {
		code     string
		expected float64
	}{
		{"[1 2 3 4 5] MEAN", 3.0},
		{"[4] MEAN", 4.0},
		{"[] MEAN", 0.0},
	}
	for _, c := range cases {
		interp := setupMathInterpreter()
		require.NoError(t, interp.Run(c.code))
		assert.Equal(t, c.expected, interp.StackPop(), c.code)
	}
}

func TestMath_MeanOfStringArrayGivesFrequencyMap(t *testing.T) {
	interp := setupMathInterpreter()
	interp.StackPush([]interface{}{"a", "a", "b", "c"})
	require.NoError(t, interp.Run("MEAN"))

	freq, ok := interp.StackPop().(map[string]float64)
	require.True(t, ok)
	assert.Equal(t, 0.5, freq["a"])
	assert.Equal(t, 0.25, freq["b"])
	assert.Equal(t, 0.25, freq["c"])
}

func TestMath_MaxAndMin(t *testing.T) {
	interp := setupMathInterpreter()
	interp.StackPush(4.0)
	interp.StackPush(18.0)
	require.NoError(t, interp.Run("MAX"))
	assert.Equal(t, 18.0, interp.StackPop())

	interp = setupMathInterpreter()
	interp.StackPush(4.0)
	interp.StackPush(18.0)
	require.NoError(t, interp.Run("MIN"))
	assert.Equal(t, 4.0, interp.StackPop())

	interp = setupMathInterpreter()
	interp.StackPush([]interface{}{14.0, 8.0, 55.0, 4.0, 5.0})
	require.NoError(t, interp.Run("MAX"))
	assert.Equal(t, 55.0, interp.StackPop())

	interp = setupMathInterpreter()
	interp.StackPush([]interface{}{14.0, 8.0, 55.0, 4.0, 5.0})
	require.NoError(t, interp.Run("MIN"))
	assert.Equal(t, 4.0, interp.StackPop())
}

func TestMath_UnaryFunctions(t *testing.T) {
	cases := []struct {
		word     string
		input    float64
		expected float64
	}{
		{"ABS", -5.0, 5.0},
		{"SQRT", 16.0, 4.0},
		{"FLOOR", 3.7, 3.0},
		{"CEIL", 3.2, 4.0},
	}

	for _, c := range cases {
		interp := setupMathInterpreter()
		interp.StackPush(c.input)
		require.NoError(t, interp.Run(c.word))
		assert.Equal(t, c.expected, interp.StackPop(), c.word)
	}
}

func TestMath_Clamp(t *testing.T) {
	cases := []struct {
		value, min, max, expected float64
	}{
		{5.0, 0.0, 10.0, 5.0},
		{-5.0, 0.0, 10.0, 0.0},
		{15.0, 0.0, 10.0, 10.0},
	}

	for _, c := range cases {
		interp := setupMathInterpreter()
		interp.StackPush(c.value)
		interp.StackPush(c.min)
		interp.StackPush(c.max)
		require.NoError(t, interp.Run("CLAMP"))
		assert.Equal(t, c.expected, interp.StackPop())
	}
}

func TestMath_Infinity(t *testing.T) {
	interp := setupMathInterpreter()
	require.NoError(t, interp.Run("INFINITY"))
	assert.True(t, math.IsInf(interp.StackPop().(float64), 1))
}

func TestMath_ConversionWords(t *testing.T) {
	interp := setupMathInterpreter()
	interp.StackPush(3.7)
	require.NoError(t, interp.Run(">INT"))
	assert.Equal(t, 3, interp.StackPop())

	interp = setupMathInterpreter()
	interp.StackPush(3)
	require.NoError(t, interp.Run(">FLOAT"))
	assert.Equal(t, 3.0, interp.StackPop())

	interp = setupMathInterpreter()
	interp.StackPush(3.14159)
	interp.StackPush(2.0)
	require.NoError(t, interp.Run(">FIXED"))
	assert.Equal(t, 3.14, interp.StackPop())
}
