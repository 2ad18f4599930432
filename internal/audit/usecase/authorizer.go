package usecase

import (
	"context"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

// resourceAuthorizer routes an audit read check to the owner of the resource type.
type resourceAuthorizer struct {
	byType map[string]ReadAuthorizer
}

// NewResourceAuthorizer creates a ReadAuthorizer that delegates by resource type.
// Resource types without an entry are never readable over the API.
func NewResourceAuthorizer(byType map[string]ReadAuthorizer) ReadAuthorizer {
	return &resourceAuthorizer{byType: byType}
}

func (r *resourceAuthorizer) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	authorizer, ok := r.byType[resourceType]
	if !ok {
		return apperrors.Wrap(apperrors.ErrForbidden, "audit chain is not readable")
	}
	return authorizer.CanReadAudit(ctx, actorID, resourceType, resourceID)
}
