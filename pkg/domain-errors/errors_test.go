package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndNewf(t *testing.T) {
	err := New(CodeNotFound, "the user was not found")
	assert.Equal(t, "the user was not found", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))

	err = Newf(CodeValidation, "unknown gender %q", "alien")
	assert.Equal(t, `unknown gender "alien"`, err.Error())
	assert.True(t, HasCode(err, CodeValidation))
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "store unreachable")

	assert.Equal(t, "store unreachable: connection refused", err.Error())
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeThroughChain(t *testing.T) {
	inner := New(CodeTimeout, "query timed out")
	outer := fmt.Errorf("run operation: %w", inner)

	assert.True(t, HasCode(outer, CodeTimeout))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeTimeout))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "gone")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// The outermost code wins.
	inner := New(CodeTimeout, "slow")
	outer := Wrap(inner, CodeInternal, "operation failed")
	assert.Equal(t, CodeInternal, CodeOf(outer))
}

func TestIs(t *testing.T) {
	a := New(CodeConflict, "serialization failure")
	b := New(CodeConflict, "different message")
	require.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(CodeTimeout, "slow")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New(CodeConflict, "")))
	assert.True(t, IsTransient(New(CodeTimeout, "")))
	assert.True(t, IsTransient(New(CodeUnavailable, "")))
	assert.False(t, IsTransient(New(CodeInvariantViolation, "")))
	assert.False(t, IsTransient(errors.New("plain")))
}
