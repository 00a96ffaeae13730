package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RepoError
		want string
	}{
		{
			name: "code path message",
			err:  NewNotFound("/a"),
			want: "[ERR_RESOURCE_NOT_FOUND] /a: resource not found",
		},
		{
			name: "kind as message",
			err:  &RepoError{Kind: KindNotADirectory},
			want: "not a directory",
		},
		{
			name: "with cause",
			err:  NewIOError("/tmp/x", "failed to read", fmt.Errorf("denied")),
			want: "[ERR_IO] /tmp/x: failed to read: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRepoError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFound("/a"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidPath))
	assert.True(t, errors.Is(err, &RepoError{Kind: KindNotFound, Code: ErrCodeResourceNotFound}))
	assert.False(t, errors.Is(err, &RepoError{Kind: KindNotFound, Code: ErrCodeSourceNotFound}))
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("/a")))
	assert.True(t, IsInvalidPath(NewInvalidPath("a", "relative")))
	assert.True(t, IsNotADirectory(NewNotADirectory("/a")))
	assert.True(t, IsOutOfRange(NewOutOfRange("/a", 3, 0, 1)))
	assert.True(t, IsReadOnly(NewReadOnly("add")))
	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("plain")))
}

func TestRepoError_WithContext(t *testing.T) {
	err := NewOutOfRange("/a", 7, 0, 2)
	assert.Equal(t, 7, err.Context["version"])

	cause := fmt.Errorf("root")
	wrapped := NewInvalidPath("x", "bad").WithCause(cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestValidationErrorCollection(t *testing.T) {
	errs := &ValidationErrorCollection{}
	assert.NoError(t, errs.AsError())

	errs.AddField("dump.file", "", "dump file must not be empty")
	errs.AddField("log.format", "xml", "unknown log format", "use text or json")

	err := errs.AsError()
	assert.True(t, errors.Is(err, &RepoError{Kind: KindConfig}))
	assert.Contains(t, err.Error(), "validation failed with 2 errors")
	assert.Contains(t, err.Error(), "'log.format'")
}
