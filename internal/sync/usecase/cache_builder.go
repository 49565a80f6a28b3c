package usecase

import (
	"context"

	"github.com/pensionworks/pensync/internal/sync/domain"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

// LookupCacheBuilder builds the run-scoped code to id maps from the
// operational store's reference tables.
type LookupCacheBuilder struct {
	lookupRepo LookupRepository
}

// NewLookupCacheBuilder creates a new LookupCacheBuilder.
func NewLookupCacheBuilder(lookupRepo LookupRepository) *LookupCacheBuilder {
	return &LookupCacheBuilder{
		lookupRepo: lookupRepo,
	}
}

// Build reads every reference domain fully and returns the assembled cache.
// The build is fail-fast: if any single domain read fails the whole build
// fails, since a sync run must never proceed with a partially populated cache.
func (b *LookupCacheBuilder) Build(ctx context.Context) (*domain.LookupCache, error) {
	pensionTypes, err := b.lookupRepo.PensionTypes(ctx)
	if err != nil {
		return nil, buildError("pension types", err)
	}

	pensionerTypes, err := b.lookupRepo.PensionerTypes(ctx)
	if err != nil {
		return nil, buildError("pensioner types", err)
	}

	products, err := b.lookupRepo.Products(ctx)
	if err != nil {
		return nil, buildError("products", err)
	}

	branches, err := b.lookupRepo.Branches(ctx)
	if err != nil {
		return nil, buildError("branches", err)
	}

	parStatuses, err := b.lookupRepo.PARStatuses(ctx)
	if err != nil {
		return nil, buildError("par statuses", err)
	}

	accountTypes, err := b.lookupRepo.AccountTypes(ctx)
	if err != nil {
		return nil, buildError("account types", err)
	}

	return &domain.LookupCache{
		PensionTypes:   pensionTypes,
		PensionerTypes: pensionerTypes,
		Products:       products,
		Branches:       branches,
		PARStatuses:    parStatuses,
		AccountTypes:   accountTypes,
	}, nil
}

// buildError ties the failing domain to ErrCacheBuild so callers can treat
// any cache failure uniformly while logs keep the detail.
func buildError(lookupDomain string, err error) error {
	return apperrors.Wrap(domain.ErrCacheBuild, lookupDomain+": "+err.Error())
}
