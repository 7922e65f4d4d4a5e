package repository

import (
	"interview_prep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

func (r *InterviewRepository) Create(session *model.InterviewSession) error {
	return r.DB.Create(session).Error
}

func (r *InterviewRepository) FindByID(id string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Responses").
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *InterviewRepository) ListByUser(userID uint) ([]model.InterviewSession, error) {
	var sessions []model.InterviewSession
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Responses").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *InterviewRepository) Save(session *model.InterviewSession) error {
	return r.DB.Omit("Questions", "Responses").Save(session).Error
}

// SaveResponse upserts on (session_id, question_id): resaving an answer for
// the same question is last-write-wins.
func (r *InterviewRepository) SaveResponse(resp *model.Response) error {
	if resp.ID == "" {
		resp.ID = model.GenerateUUID()
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"transcription", "audio_url", "duration", "updated_at",
		}),
	}).Create(resp).Error
}
