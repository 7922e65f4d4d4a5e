package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DocumentService struct {
	Documents *repository.DocumentRepository
	Storage   *StorageService
	log       *zap.Logger
}

func NewDocumentService(documents *repository.DocumentRepository, storage *StorageService, log *zap.Logger) *DocumentService {
	return &DocumentService{
		Documents: documents,
		Storage:   storage,
		log:       log,
	}
}

// Create stores a document with inline text content. A user keeps one
// current document per type, so an existing record of the same type is
// replaced in place.
func (s *DocumentService) Create(userID uint, docType model.DocumentType, title, content string) (*model.Document, error) {
	existing, err := s.Documents.FindByUserAndType(userID, docType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Title = title
		existing.Content = content
		existing.FileURL = ""
		existing.FileType = ""
		existing.Status = model.DocumentProcessed
		existing.ProcessingError = ""
		if err := s.Documents.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	doc := &model.Document{
		UserID:  userID,
		Type:    docType,
		Title:   title,
		Content: content,
		Status:  model.DocumentProcessed,
	}
	if err := s.Documents.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upload stores an uploaded document file. Text payloads get their content
// extracted inline; binary formats are kept with status pending until a
// processing pass handles them.
func (s *DocumentService) Upload(ctx context.Context, userID uint, docType model.DocumentType, title, originalName, contentType string, reader io.Reader, size int64) (*model.Document, error) {
	filename := fmt.Sprintf("documents/%d/%s%s", userID, model.GenerateUUID(), filepath.Ext(originalName))

	var content string
	uploadReader := reader
	if util.IsTextLike(contentType) {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		content = strings.TrimSpace(string(data))
		uploadReader = strings.NewReader(string(data))
	}

	fileURL, err := s.Storage.Upload(ctx, filename, uploadReader, size, contentType)
	if err != nil {
		return nil, err
	}

	status := model.DocumentPending
	if content != "" {
		status = model.DocumentProcessed
	}

	existing, err := s.Documents.FindByUserAndType(userID, docType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.FileURL != "" {
			s.deleteStoredFile(ctx, existing.FileURL)
		}
		existing.Title = title
		existing.Content = content
		existing.FileURL = fileURL
		existing.FileType = contentType
		existing.Status = status
		existing.ProcessingError = ""
		if err := s.Documents.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	doc := &model.Document{
		UserID:   userID,
		Type:     docType,
		Title:    title,
		Content:  content,
		FileURL:  fileURL,
		FileType: contentType,
		Status:   status,
	}
	if err := s.Documents.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) List(userID uint) ([]model.Document, error) {
	return s.Documents.ListByUser(userID)
}

func (s *DocumentService) Get(id string, userID uint) (*model.Document, error) {
	doc, err := s.Documents.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id string, userID uint) error {
	doc, err := s.Get(id, userID)
	if err != nil {
		return err
	}

	if doc.FileURL != "" {
		s.deleteStoredFile(ctx, doc.FileURL)
	}

	return s.Documents.Delete(doc.ID)
}

// deleteStoredFile is best effort; a dangling object is not worth failing
// the request over.
func (s *DocumentService) deleteStoredFile(ctx context.Context, fileURL string) {
	filename := strings.TrimPrefix(fileURL, "/uploads/")
	if err := s.Storage.Delete(ctx, filename); err != nil {
		s.log.Warn("failed to delete stored file", zap.String("file", filename), zap.Error(err))
	}
}
