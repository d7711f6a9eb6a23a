package service

import (
	"errors"

	"github.com/spec-kit/lead-lens/internal/repository"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// mapRepoError converts repository sentinels into domain errors.
func mapRepoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewAlreadyExists("A user with this email already exists for this role")
	default:
		return apperrors.NewInternalError(err)
	}
}
