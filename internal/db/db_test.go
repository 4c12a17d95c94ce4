package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestWrapNotFound(t *testing.T) {
	assert.NoError(t, WrapNotFound(nil))

	err := WrapNotFound(pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	other := errors.New("connection refused")
	wrapped := WrapNotFound(other)
	assert.ErrorIs(t, wrapped, other)
	assert.False(t, IsNotFound(wrapped))
}
