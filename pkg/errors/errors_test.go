package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeAndStatus(t *testing.T) {
	err := Clone(ErrNotFound, "content not found")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "content not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, "upload rejected", Clone(ErrUploadRejected, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapExposesCause(t *testing.T) {
	err := Wrap(sql.ErrConnDone, ErrInternal.Code, ErrInternal.Status, "failed to list content")

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, "failed to list content: "+sql.ErrConnDone.Error(), err.Error())
}

func TestIsMatchesByCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", Clone(ErrValidation, "title is required"))

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(sql.ErrNoRows, ErrNotFound))
	assert.False(t, Is(err, nil))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrTooManyRequests, "slow down")
	assert.Same(t, typed, FromError(fmt.Errorf("wrapped: %w", typed)))

	plain := FromError(sql.ErrTxDone)
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, ErrInternal.Message, plain.Message)
	assert.ErrorIs(t, plain, sql.ErrTxDone)
}
