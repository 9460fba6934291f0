package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/droply/droply/internal/domain"
)

// Repository is an in-memory domain.FileRepository with the same
// owner-scoping semantics as the Postgres implementation. It exists for
// tests that exercise services without a database.
type Repository struct {
	mu      sync.Mutex
	entries map[string]domain.FileEntry
	order   []string
}

func NewRepository() *Repository {
	return &Repository{entries: map[string]domain.FileEntry{}}
}

func (r *Repository) CreateEntry(_ context.Context, entry domain.FileEntry) (domain.FileEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	r.entries[entry.ID] = entry
	r.order = append(r.order, entry.ID)

	return entry, nil
}

func (r *Repository) GetEntry(_ context.Context, userID, id string) (domain.FileEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return domain.FileEntry{}, domain.ErrNotFound
	}

	return entry, nil
}

func (r *Repository) ListEntries(_ context.Context, userID string, parentID *string) ([]domain.FileEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []domain.FileEntry{}

	for _, id := range r.order {
		entry, ok := r.entries[id]
		if !ok || entry.UserID != userID {
			continue
		}

		switch {
		case parentID == nil:
			if entry.ParentID == nil {
				result = append(result, entry)
			}
		case entry.ParentID != nil && *entry.ParentID == *parentID:
			result = append(result, entry)
		}
	}

	return result, nil
}

func (r *Repository) SetStarred(ctx context.Context, userID, id string, starred bool) (domain.FileEntry, error) {
	return r.setFlag(userID, id, func(e *domain.FileEntry) { e.IsStarred = starred })
}

func (r *Repository) SetTrashed(ctx context.Context, userID, id string, trashed bool) (domain.FileEntry, error) {
	return r.setFlag(userID, id, func(e *domain.FileEntry) { e.IsTrashed = trashed })
}

func (r *Repository) setFlag(userID, id string, apply func(*domain.FileEntry)) (domain.FileEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return domain.FileEntry{}, domain.ErrNotFound
	}

	apply(&entry)
	entry.UpdatedAt = time.Now()
	r.entries[id] = entry

	return entry, nil
}

func (r *Repository) DeleteEntries(_ context.Context, userID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		entry, ok := r.entries[id]
		if !ok || entry.UserID != userID {
			continue
		}
		delete(r.entries, entry.ID)
	}

	return nil
}
