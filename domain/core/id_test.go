package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.False(t, a.IsEmpty())
	assert.NotEqual(t, a, b)
}

func TestParseTestID(t *testing.T) {
	id, err := ParseTestID("abc-123")
	require.NoError(t, err)
	assert.Equal(t, TestID("abc-123"), id)

	_, err = ParseTestID("   ")
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsInputError(NewLevelError(5, 2)))
	assert.True(t, IsInputError(NewRowCountError(3, 4)))
	assert.True(t, IsInputError(NewNestingError(2, "A", []string{"X", "Y"})))
	assert.True(t, IsConfigError(ErrInvalidRepetitions))
	assert.True(t, IsNotFoundError(ErrResultNotFound))
	assert.False(t, IsInputError(ErrInvalidRepetitions))
	assert.False(t, IsNotFoundError(ErrInvalidLevel))
}
