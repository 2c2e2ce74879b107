package selection

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("selection not found")

type (
	Repository interface {
		GetSelection(ctx context.Context, userID string) (Selection, error)
		UpsertSelection(ctx context.Context, sel Selection) (Selection, error)
		DeleteSelection(ctx context.Context, userID string) error
	}

	// Invalidator drops cached reads for a user; implemented by cache.Service.
	// A context switch must not serve data cached under the previous scope.
	Invalidator interface {
		InvalidateUser(userID string) int
	}

	Service struct {
		repo  Repository
		cache Invalidator
	}
)

func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

func (svc *Service) Get(ctx context.Context, userID string) (Selection, error) {
	return svc.repo.GetSelection(ctx, userID)
}

// Set persists the new context and invalidates every cached read scoped to
// the user.
func (svc *Service) Set(ctx context.Context, userID string, us UpdateSelection) (Selection, error) {
	sel := Selection{
		UserID:         userID,
		Role:           us.Role,
		InstituteID:    null.NewString(us.InstituteID, us.InstituteID != ""),
		ClassID:        null.NewString(us.ClassID, us.ClassID != ""),
		SubjectID:      null.NewString(us.SubjectID, us.SubjectID != ""),
		ChildID:        null.NewString(us.ChildID, us.ChildID != ""),
		OrganizationID: null.NewString(us.OrganizationID, us.OrganizationID != ""),
		UpdatedAt:      time.Now().UTC(),
	}
	sel, err := svc.repo.UpsertSelection(ctx, sel)
	if err != nil {
		return Selection{}, err
	}
	svc.cache.InvalidateUser(userID)
	return sel, nil
}

// Clear drops the persisted context (logout) along with the user's cached reads.
func (svc *Service) Clear(ctx context.Context, userID string) error {
	if err := svc.repo.DeleteSelection(ctx, userID); err != nil && err != ErrNotFound {
		return err
	}
	svc.cache.InvalidateUser(userID)
	return nil
}
