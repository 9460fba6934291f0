package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// TypeFolder is stored in FileEntry.Type for folder rows instead of a MIME type.
const TypeFolder = "folder"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("entry not found")
	ErrValidation   = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream media service failed")
)

// FileEntry is a single row of the files table. It represents either a file
// or a folder; folders have Type == TypeFolder, zero size and empty media
// URLs. ParentID is nil for root-level entries.
type FileEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	UserID       string    `json:"userId"`
	ParentID     *string   `json:"parentId"`
	IsFolder     bool      `json:"isFolder"`
	IsStarred    bool      `json:"isStared"`
	IsTrashed    bool      `json:"isTrash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListEntriesParams struct {
	UserID   string
	ParentID *string
}

type CreateFolderParams struct {
	UserID   string
	Name     string
	ParentID *string
}

type UploadFileParams struct {
	UserID      string
	ParentID    string
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SaveUploadedMediaParams describes a file the client already pushed to the
// media service directly; only the returned metadata is persisted.
type SaveUploadedMediaParams struct {
	UserID       string
	Name         string
	FilePath     string
	Size         int64
	FileType     string
	FileURL      string
	ThumbnailURL string
}

// DriveService exposes the owner-scoped file/folder hierarchy operations.
type DriveService interface {
	ListEntries(ctx context.Context, p ListEntriesParams) ([]FileEntry, error)
	CreateFolder(ctx context.Context, p CreateFolderParams) (FileEntry, error)
	ToggleStar(ctx context.Context, userID, fileID string) (FileEntry, error)
	ToggleTrash(ctx context.Context, userID, fileID string) (FileEntry, error)
	DeleteEntry(ctx context.Context, userID, fileID string) error
}

// UploadService pushes file payloads to the media CDN and records the result.
type UploadService interface {
	UploadFile(ctx context.Context, p UploadFileParams) (FileEntry, error)
	SaveUploadedMedia(ctx context.Context, p SaveUploadedMediaParams) (FileEntry, error)
}

// FileRepository is the persistence boundary for FileEntry rows. Every
// method is scoped by owner; a row that exists but belongs to another user
// behaves as absent.
type FileRepository interface {
	CreateEntry(ctx context.Context, entry FileEntry) (FileEntry, error)
	GetEntry(ctx context.Context, userID, id string) (FileEntry, error)
	ListEntries(ctx context.Context, userID string, parentID *string) ([]FileEntry, error)
	SetStarred(ctx context.Context, userID, id string, starred bool) (FileEntry, error)
	SetTrashed(ctx context.Context, userID, id string, trashed bool) (FileEntry, error)
	DeleteEntries(ctx context.Context, userID string, ids []string) error
}
