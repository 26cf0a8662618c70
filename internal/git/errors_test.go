package git

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"staged/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	typed := errors.NotFound("gone")

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"typed passes through", typed, http.StatusNotFound},
		{"git missing", ErrGitNotFound, http.StatusServiceUnavailable},
		{"not a repo", fmt.Errorf("%w: /tmp", ErrNotARepo), http.StatusBadRequest},
		{"invalid path", fmt.Errorf("%w: %q", ErrInvalidPath, "../x"), http.StatusBadRequest},
		{"command failed", &CommandError{Args: []string{"add"}, ExitCode: 128, Stderr: "fatal"}, http.StatusBadRequest},
		{"other", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(tt.err, "stage x")
			assert.Equal(t, tt.code, errors.StatusCode(err))
			if tt.err != typed {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}

	assert.NoError(t, Translate(nil, "stage x"))
}
