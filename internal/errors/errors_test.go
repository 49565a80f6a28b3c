package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "client not found")

	assert.EqualError(t, wrapped, "client not found: not found")
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
}

func TestWrap_PreservesChain(t *testing.T) {
	inner := Wrap(ErrUnavailable, "warehouse unreachable")
	outer := Wrap(inner, "sync aborted")

	assert.True(t, Is(outer, ErrUnavailable))
	assert.EqualError(t, outer, "sync aborted: warehouse unreachable: unavailable")
}

func TestIs_DistinguishesSentinels(t *testing.T) {
	err := Wrap(ErrConflict, "duplicate client code")

	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrUnavailable))
}
