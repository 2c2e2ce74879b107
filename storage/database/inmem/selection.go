package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core/selection"
)

// selectionRepository is the in-memory selection.Repository used in tests.
type selectionRepository struct {
	mu         sync.RWMutex
	selections map[string]selection.Selection
}

var _ selection.Repository = (*selectionRepository)(nil)

func NewSelectionRepository() *selectionRepository {
	return &selectionRepository{selections: make(map[string]selection.Selection)}
}

func (repo *selectionRepository) GetSelection(_ context.Context, userID string) (selection.Selection, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	sel, ok := repo.selections[userID]
	if !ok {
		return selection.Selection{}, selection.ErrNotFound
	}
	return sel, nil
}

func (repo *selectionRepository) UpsertSelection(_ context.Context, sel selection.Selection) (selection.Selection, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.selections[sel.UserID] = sel
	return sel, nil
}

func (repo *selectionRepository) DeleteSelection(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.selections[userID]; !ok {
		return selection.ErrNotFound
	}
	delete(repo.selections, userID)
	return nil
}
