package promptvault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/promptvault"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := promptvault.Errorf(promptvault.ENOTFOUND, "prompt %q not found", "test")

	assert.Equal(t, promptvault.ENOTFOUND, promptvault.ErrorCode(err))
	assert.Equal(t, "prompt \"test\" not found", promptvault.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, promptvault.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading config: %w", promptvault.Errorf(promptvault.EINVALID, "bad regex"))

	assert.Equal(t, promptvault.EINVALID, promptvault.ErrorCode(err))
	assert.Equal(t, "bad regex", promptvault.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, promptvault.EINTERNAL, promptvault.ErrorCode(err))
	assert.Equal(t, "Internal error", promptvault.ErrorMessage(err))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, promptvault.ErrorMessage(nil))
}

func TestHashContent(t *testing.T) {
	t.Parallel()

	assert.Len(t, promptvault.HashContent("text"), 16)
	assert.Equal(t, promptvault.HashContent("text"), promptvault.HashContent("text"))
	assert.NotEqual(t, promptvault.HashContent("text"), promptvault.HashContent("other"))
}
