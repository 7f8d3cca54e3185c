// File: internal/usecase/access_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/repository"
)

var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase is the facade other subsystems call. It checks the caller is
// an authenticated, active identity and delegates the decision to the
// entitlement engine. Lack of entitlement is a result, never an error.
type AccessUseCase interface {
	CheckAccess(ctx context.Context, caller *model.Identity, contentID string) (*model.Entitlement, error)
	// OwnedContent returns the caller's denormalized owned set. Listing only;
	// access decisions go through CheckAccess.
	OwnedContent(ctx context.Context, caller *model.Identity) ([]*model.OwnedContent, error)
}

type accessUC struct {
	entitlements EntitlementUseCase
	owned        repository.OwnedContentRepository
	log          *zerolog.Logger
}

func NewAccessUseCase(entitlements EntitlementUseCase, owned repository.OwnedContentRepository, logger *zerolog.Logger) *accessUC {
	l := logger.With().Str("component", "AccessUC").Logger()
	return &accessUC{entitlements: entitlements, owned: owned, log: &l}
}

func (u *accessUC) CheckAccess(ctx context.Context, caller *model.Identity, contentID string) (*model.Entitlement, error) {
	if caller == nil || caller.UserID == "" || !caller.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	if contentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.entitlements.Evaluate(ctx, caller.UserID, contentID)
}

func (u *accessUC) OwnedContent(ctx context.Context, caller *model.Identity) ([]*model.OwnedContent, error) {
	if caller == nil || caller.UserID == "" || !caller.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return u.owned.ListByUser(ctx, nil, caller.UserID)
}
