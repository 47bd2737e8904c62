package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/mkingstonsqr/tile-notes/utils"
)

// MaxAttachmentBytes caps a single upload.
const MaxAttachmentBytes = 10 << 20

var ErrAttachmentTooLarge = errors.New("attachment exceeds 10 MiB")

// AttachmentService stores note files under one folder per owner.
type AttachmentService struct {
	store     store.Store
	notes     *NoteSynchronizer
	fs        hackpadfs.FS
	publicURL string
	now       func() time.Time
}

func NewAttachmentService(s store.Store, notes *NoteSynchronizer, fsys hackpadfs.FS, publicURL string) *AttachmentService {
	svc := &AttachmentService{
		store:     s,
		notes:     notes,
		fs:        fsys,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
	notes.OnDeleted(svc.purgeNote)
	return svc
}

// Upload writes r to storage and records it against the note.
func (s *AttachmentService) Upload(ctx context.Context, owner, noteID, fileName, mimeType string, r io.Reader) (*models.Attachment, error) {
	if _, err := s.notes.Get(ctx, owner, noteID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxAttachmentBytes {
		return nil, ErrAttachmentTooLarge
	}

	fileName = path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(fileName))
	if mimeType == "" || mimeType == "application/octet-stream" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			mimeType = guessed
		}
	}

	id := utils.GenerateID()
	storagePath := owner + "/" + id + ext

	if err := hackpadfs.MkdirAll(s.fs, owner, 0o755); err != nil {
		return nil, &PersistenceError{Op: "store attachment", Err: err}
	}
	if err := hackpadfs.WriteFullFile(s.fs, storagePath, data, 0o644); err != nil {
		return nil, &PersistenceError{Op: "store attachment", Err: err}
	}

	a := &models.Attachment{
		ID:          id,
		UserID:      owner,
		NoteID:      noteID,
		FileName:    fileName,
		MimeType:    mimeType,
		SizeBytes:   int64(len(data)),
		StoragePath: storagePath,
		PublicURL:   s.publicURL + "/" + storagePath,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateAttachment(ctx, a); err != nil {
		s.removeFile(storagePath)
		return nil, persistErr("create attachment", err, ErrAttachmentNotFound)
	}

	config.Logger.Infow("attachment stored", "owner", owner, "noteID", noteID, "path", storagePath, "size", a.SizeBytes)
	return a, nil
}

func (s *AttachmentService) List(ctx context.Context, owner, noteID string) ([]models.Attachment, error) {
	if _, err := s.notes.Get(ctx, owner, noteID); err != nil {
		return nil, err
	}
	list, err := s.store.ListAttachments(ctx, owner, noteID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Attachment{}
	}
	return list, nil
}

func (s *AttachmentService) Delete(ctx context.Context, owner, id string) error {
	a, err := s.store.GetAttachment(ctx, owner, id)
	if err != nil {
		return persistErr("delete attachment", err, ErrAttachmentNotFound)
	}
	if err := s.store.DeleteAttachment(ctx, owner, id); err != nil {
		return persistErr("delete attachment", err, ErrAttachmentNotFound)
	}
	s.removeFile(a.StoragePath)
	return nil
}

// Open returns the stored bytes at a public path, for unauthenticated reads.
func (s *AttachmentService) Open(publicPath string) ([]byte, string, error) {
	p := path.Clean(strings.TrimPrefix(publicPath, "/"))
	if p == "." || strings.HasPrefix(p, "..") {
		return nil, "", ErrAttachmentNotFound
	}
	data, err := hackpadfs.ReadFile(s.fs, p)
	if err != nil {
		return nil, "", ErrAttachmentNotFound
	}
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// purgeNote removes the attachments of a deleted note.
func (s *AttachmentService) purgeNote(owner, noteID string) {
	ctx := context.Background()
	list, err := s.store.ListAttachments(ctx, owner, noteID)
	if err != nil {
		config.Logger.Warnw("list attachments of deleted note failed", "error", err, "noteID", noteID)
		return
	}
	for _, a := range list {
		if err := s.store.DeleteAttachment(ctx, owner, a.ID); err != nil {
			config.Logger.Warnw("delete attachment failed", "error", err, "attachmentID", a.ID)
			continue
		}
		s.removeFile(a.StoragePath)
	}
}

func (s *AttachmentService) removeFile(p string) {
	if err := hackpadfs.Remove(s.fs, p); err != nil {
		config.Logger.Warnw("remove attachment file failed", "error", err, "path", p)
	}
}
