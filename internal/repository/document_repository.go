package repository

import (
	"interview_prep_backend/internal/model"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	return r.DB.Create(doc).Error
}

func (r *DocumentRepository) Save(doc *model.Document) error {
	return r.DB.Save(doc).Error
}

func (r *DocumentRepository) FindByID(id string) (*model.Document, error) {
	var doc model.Document
	err := r.DB.First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) FindByUserAndType(userID uint, docType model.DocumentType) (*model.Document, error) {
	var doc model.Document
	err := r.DB.Where("user_id = ? AND type = ?", userID, docType).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByUser omits content bodies; list views only need metadata.
func (r *DocumentRepository) ListByUser(userID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.DB.Select("id", "created_at", "updated_at", "user_id", "type", "title", "file_url", "file_type", "status").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) Delete(id string) error {
	return r.DB.Delete(&model.Document{}, "id = ?", id).Error
}
