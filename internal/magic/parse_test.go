package magic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	_, err := Parse("", "")
	require.ErrorIs(t, err, ErrEmptyQuery)

	_, err = Parse("   ", "\n\t")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestParse_LineWithConnection(t *testing.T) {
	inv, err := Parse("kusto:// StormEvents | take 10", "")
	require.NoError(t, err)
	assert.Equal(t, Invocation{Connection: "kusto://", Query: "StormEvents | take 10"}, inv)
}

func TestParse_QueryOnly(t *testing.T) {
	inv, err := Parse("StormEvents | count", "")
	require.NoError(t, err)
	assert.Empty(t, inv.Connection)
	assert.Empty(t, inv.Assign)
	assert.Equal(t, "StormEvents | count", inv.Query)
}

func TestParse_ConnectionOnly(t *testing.T) {
	inv, err := Parse("kusto://localhost:8866/Samples", "")
	require.NoError(t, err)
	assert.Equal(t, "kusto://localhost:8866/Samples", inv.Connection)
	assert.Empty(t, inv.Query)
}

func TestParse_CellWithAssignment(t *testing.T) {
	inv, err := Parse("", `
        kusto://
        x <<
        writer
        | project last_name
        `)
	require.NoError(t, err)
	assert.Equal(t, "kusto://", inv.Connection)
	assert.Equal(t, "x", inv.Assign)
	assert.Equal(t, "writer\n        | project last_name", inv.Query)
}

func TestParse_AssignmentWithoutConnection(t *testing.T) {
	inv, err := Parse("result_1<< T | take 1", "")
	require.NoError(t, err)
	assert.Equal(t, "result_1", inv.Assign)
	assert.Equal(t, "T | take 1", inv.Query)
}

func TestParse_ShiftOperatorIsNotAssignment(t *testing.T) {
	// "<<" after the first identifier only counts at the very start
	inv, err := Parse("print x = 1 << 2", "")
	require.NoError(t, err)
	assert.Empty(t, inv.Assign)
	assert.Equal(t, "print x = 1 << 2", inv.Query)
}
