package git

import (
	stderrors "errors"
	"fmt"

	"staged/internal/errors"
)

// Translate maps git failures onto typed errors. action completes the
// sentence "git could not ..." in the message of command failures.
func Translate(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, ErrGitNotFound):
		return errors.Unavailable("git is not installed").Wrap(err)
	case stderrors.Is(err, ErrNotARepo):
		return errors.ValidationError("not a git repository", nil).Wrap(err)
	case stderrors.Is(err, ErrInvalidPath):
		return errors.ValidationError(err.Error(), nil).Wrap(err)
	}
	var cmdErr *CommandError
	if stderrors.As(err, &cmdErr) {
		return errors.ValidationError(fmt.Sprintf("git could not %s", action), cmdErr.Stderr).Wrap(err)
	}
	return errors.Internal(fmt.Sprintf("git could not %s", action)).Wrap(err)
}
