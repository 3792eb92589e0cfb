package web

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindError(t *testing.T) {
	cause := errors.New("bind: address already in use")
	err := &BindError{Addr: ":8080", Reason: BindAddrInUse, Err: cause}

	assert.Equal(t, "listen :8080: address in use: bind: address already in use", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Hint(), "-port")

	other := &BindError{Addr: ":1", Reason: BindOther, Err: cause}
	assert.Equal(t, "listen :1: bind: address already in use", other.Error())
	assert.Empty(t, other.Hint())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrBadPath, http.StatusBadRequest},
		{ErrForbiddenPath, http.StatusForbidden},
		{fmt.Errorf("/x/: %w", ErrDirListingDisabled), http.StatusForbidden},
		{fmt.Errorf("stat /x: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
