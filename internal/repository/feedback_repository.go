package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const feedbackCacheTTL = 10 * time.Minute

type FeedbackRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewFeedbackRepository(db *gorm.DB, rdb *redis.Client) *FeedbackRepository {
	return &FeedbackRepository{DB: db, RDB: rdb}
}

// Create persists a feedback record with its items and suggestions. The
// unique index on interview_id rejects a concurrent duplicate create, which
// is surfaced as util.ErrFeedbackExists.
func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	err := r.DB.Create(feedback).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrFeedbackExists
	}
	if err == nil {
		r.invalidateCache(feedback.InterviewID)
	}
	return err
}

func (r *FeedbackRepository) FindByInterviewID(interviewID string) (*model.Feedback, error) {
	if cached := r.fromCache(interviewID); cached != nil {
		return cached, nil
	}

	var feedback model.Feedback
	err := r.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("feedback_items.position ASC")
		}).
		Preload("Suggestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("suggestions.position ASC")
		}).
		First(&feedback, "interview_id = ?", interviewID).Error
	if err != nil {
		return nil, err
	}

	r.toCache(&feedback)
	return &feedback, nil
}

// ExistsForInterview is the cheap application-level idempotency check; the
// unique index remains the authoritative one.
func (r *FeedbackRepository) ExistsForInterview(interviewID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Feedback{}).
		Where("interview_id = ?", interviewID).
		Count(&count).Error
	return count > 0, err
}

func (r *FeedbackRepository) FindByID(id string) (*model.Feedback, error) {
	var feedback model.Feedback
	err := r.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("feedback_items.position ASC")
		}).
		Preload("Suggestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("suggestions.position ASC")
		}).
		First(&feedback, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepository) ListByUser(userID uint) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := r.DB.
		Preload("Items").
		Preload("Suggestions").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

func cacheKey(interviewID string) string {
	return fmt.Sprintf("feedback:interview:%s", interviewID)
}

func (r *FeedbackRepository) fromCache(interviewID string) *model.Feedback {
	if r.RDB == nil {
		return nil
	}
	data, err := r.RDB.Get(context.Background(), cacheKey(interviewID)).Bytes()
	if err != nil {
		return nil
	}
	var feedback model.Feedback
	if err := json.Unmarshal(data, &feedback); err != nil {
		return nil
	}
	return &feedback
}

func (r *FeedbackRepository) toCache(feedback *model.Feedback) {
	if r.RDB == nil {
		return
	}
	data, err := json.Marshal(feedback)
	if err != nil {
		return
	}
	r.RDB.Set(context.Background(), cacheKey(feedback.InterviewID), data, feedbackCacheTTL)
}

func (r *FeedbackRepository) invalidateCache(interviewID string) {
	if r.RDB == nil {
		return
	}
	r.RDB.Del(context.Background(), cacheKey(interviewID))
}
