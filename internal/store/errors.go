package store

import (
	"errors"

	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
)

// Classify converts a repository error into the API error taxonomy.
// Typed errors pass through untouched.
func Classify(err error, op, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, ErrNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, ErrDuplicate):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}
