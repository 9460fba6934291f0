package managers

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/droply/droply/internal/domain"
	"github.com/droply/droply/pkg/imagekit"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type uploadService struct {
	repo         domain.FileRepository
	media        *imagekit.Client
	uploadFolder string
}

type UploadServiceDependencies struct {
	FileRepository domain.FileRepository
	MediaClient    *imagekit.Client

	// UploadFolder is the media service namespace files are stored under,
	// e.g. "/droply".
	UploadFolder string
}

func NewUploadService(deps UploadServiceDependencies) domain.UploadService {
	return &uploadService{
		repo:         deps.FileRepository,
		media:        deps.MediaClient,
		uploadFolder: deps.UploadFolder,
	}
}

// UploadFile validates the payload, pushes it to the media service and
// persists the returned reference. The database insert only happens after a
// successful upstream response, so a failed upload leaves no partial state.
func (s *uploadService) UploadFile(ctx context.Context, p domain.UploadFileParams) (domain.FileEntry, error) {
	if p.Content == nil {
		return domain.FileEntry{}, fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}

	if p.ParentID == "" {
		return domain.FileEntry{}, fmt.Errorf("%w: parent folder is required", domain.ErrValidation)
	}

	if !domain.AllowedUploadType(p.ContentType) {
		return domain.FileEntry{}, fmt.Errorf("%w: only images and PDFs are supported", domain.ErrValidation)
	}

	if uuid.Validate(p.ParentID) != nil {
		return domain.FileEntry{}, domain.ErrNotFound
	}

	parent, err := s.repo.GetEntry(ctx, p.UserID, p.ParentID)
	if err != nil {
		return domain.FileEntry{}, err
	}
	if !parent.IsFolder {
		return domain.FileEntry{}, domain.ErrNotFound
	}

	storageName := uuid.NewString() + strings.ToLower(path.Ext(p.FileName))
	folderPath := fmt.Sprintf("%s/%s/folder/%s", s.uploadFolder, p.UserID, p.ParentID)

	uploaded, err := s.media.Upload(ctx, imagekit.UploadRequest{
		FileName: storageName,
		Folder:   folderPath,
		Content:  p.Content,
	})
	if err != nil {
		log.Error().Err(err).Str("folder", folderPath).Msg("Media upload failed")
		return domain.FileEntry{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	entry := domain.FileEntry{
		ID:           uuid.NewString(),
		Name:         p.FileName,
		Path:         uploaded.FilePath,
		Size:         p.Size,
		Type:         p.ContentType,
		FileURL:      uploaded.URL,
		ThumbnailURL: uploaded.ThumbnailURL,
		UserID:       p.UserID,
		ParentID:     &p.ParentID,
		IsFolder:     false,
	}

	return s.repo.CreateEntry(ctx, entry)
}

// SaveUploadedMedia records a file the client already pushed to the media
// service directly. Missing metadata falls back to safe defaults; the entry
// always lands at root level.
func (s *uploadService) SaveUploadedMedia(ctx context.Context, p domain.SaveUploadedMediaParams) (domain.FileEntry, error) {
	if p.FileURL == "" {
		return domain.FileEntry{}, fmt.Errorf("%w: file url is required", domain.ErrValidation)
	}

	name := p.Name
	if name == "" {
		name = "Untitled"
	}

	filePath := p.FilePath
	if filePath == "" {
		filePath = fmt.Sprintf("%s/%s", s.uploadFolder, p.UserID)
	}

	fileType := p.FileType
	if fileType == "" {
		fileType = "image"
	}

	entry := domain.FileEntry{
		ID:           uuid.NewString(),
		Name:         name,
		Path:         filePath,
		Size:         p.Size,
		Type:         fileType,
		FileURL:      p.FileURL,
		ThumbnailURL: p.ThumbnailURL,
		UserID:       p.UserID,
		ParentID:     nil,
		IsFolder:     false,
	}

	return s.repo.CreateEntry(ctx, entry)
}
