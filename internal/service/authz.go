// Package service implements the application's business logic on top of the
// repository layer. Every mutation runs inside a single database transaction.
package service

import (
	"errors"

	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"

	"gorm.io/gorm"
)

// authorize maps a policy decision to the request error taxonomy.
func authorize(action policy.Action, res policy.Resource, id policy.Identity) error {
	switch policy.Check(action, res, id) {
	case policy.Allow:
		return nil
	case policy.DenyUnauthenticated:
		return models.NewUnauthenticatedError("authentication required")
	case policy.DenyNotFound:
		return models.NewNotFoundError(string(res.Kind))
	default:
		return models.NewForbiddenError("you do not have permission to perform this action")
	}
}

// wrapNotFound converts a gorm record-not-found into the API error for the
// named resource, passing other errors through.
func wrapNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource)
	}
	return err
}

// clampPage normalizes pagination input. Page starts at 1; per-page is
// capped at 100 and defaults to 20.
func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = 20
	case perPage > 100:
		perPage = 100
	}
	return page, perPage
}
