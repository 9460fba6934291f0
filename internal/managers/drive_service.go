package managers

import (
	"context"
	"fmt"
	"strings"

	"github.com/droply/droply/internal/domain"

	"github.com/google/uuid"
)

type driveService struct {
	repo domain.FileRepository
}

type DriveServiceDependencies struct {
	FileRepository domain.FileRepository
}

func NewDriveService(deps DriveServiceDependencies) domain.DriveService {
	return &driveService{
		repo: deps.FileRepository,
	}
}

func (s *driveService) ListEntries(ctx context.Context, p domain.ListEntriesParams) ([]domain.FileEntry, error) {
	return s.repo.ListEntries(ctx, p.UserID, p.ParentID)
}

func (s *driveService) CreateFolder(ctx context.Context, p domain.CreateFolderParams) (domain.FileEntry, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return domain.FileEntry{}, fmt.Errorf("%w: folder name is required", domain.ErrValidation)
	}

	if p.ParentID != nil {
		if err := s.requireParentFolder(ctx, p.UserID, *p.ParentID); err != nil {
			return domain.FileEntry{}, err
		}
	}

	folder := domain.FileEntry{
		ID:       uuid.NewString(),
		Name:     name,
		Path:     fmt.Sprintf("/folders/%s/%s", p.UserID, uuid.NewString()),
		Size:     0,
		Type:     domain.TypeFolder,
		UserID:   p.UserID,
		ParentID: p.ParentID,
		IsFolder: true,
	}

	return s.repo.CreateEntry(ctx, folder)
}

func (s *driveService) ToggleStar(ctx context.Context, userID, fileID string) (domain.FileEntry, error) {
	entry, err := s.getEntry(ctx, userID, fileID)
	if err != nil {
		return domain.FileEntry{}, err
	}

	// Read-then-write on purpose: concurrent toggles are last-writer-wins.
	return s.repo.SetStarred(ctx, userID, fileID, !entry.IsStarred)
}

func (s *driveService) ToggleTrash(ctx context.Context, userID, fileID string) (domain.FileEntry, error) {
	entry, err := s.getEntry(ctx, userID, fileID)
	if err != nil {
		return domain.FileEntry{}, err
	}

	return s.repo.SetTrashed(ctx, userID, fileID, !entry.IsTrashed)
}

// DeleteEntry hard-deletes an entry already flagged as trashed. Folders take
// their whole subtree with them, collected through parent-scoped lookups.
func (s *driveService) DeleteEntry(ctx context.Context, userID, fileID string) error {
	entry, err := s.getEntry(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if !entry.IsTrashed {
		return fmt.Errorf("%w: only trashed entries can be deleted", domain.ErrValidation)
	}

	ids := []string{entry.ID}

	if entry.IsFolder {
		descendants, err := s.collectDescendants(ctx, userID, entry.ID)
		if err != nil {
			return err
		}
		ids = append(ids, descendants...)
	}

	return s.repo.DeleteEntries(ctx, userID, ids)
}

func (s *driveService) collectDescendants(ctx context.Context, userID, folderID string) ([]string, error) {
	var ids []string

	queue := []string{folderID}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := s.repo.ListEntries(ctx, userID, &parent)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			ids = append(ids, child.ID)
			if child.IsFolder {
				queue = append(queue, child.ID)
			}
		}
	}

	return ids, nil
}

func (s *driveService) getEntry(ctx context.Context, userID, fileID string) (domain.FileEntry, error) {
	// Reject malformed ids here so they never reach the uuid column.
	if uuid.Validate(fileID) != nil {
		return domain.FileEntry{}, domain.ErrNotFound
	}

	return s.repo.GetEntry(ctx, userID, fileID)
}

func (s *driveService) requireParentFolder(ctx context.Context, userID, parentID string) error {
	if uuid.Validate(parentID) != nil {
		return domain.ErrNotFound
	}

	parent, err := s.repo.GetEntry(ctx, userID, parentID)
	if err != nil {
		return err
	}

	if !parent.IsFolder {
		return domain.ErrNotFound
	}

	return nil
}
