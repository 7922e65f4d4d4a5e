package model

import (
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
)

type QuestionDifficulty string

const (
	DifficultyEasy   QuestionDifficulty = "easy"
	DifficultyMedium QuestionDifficulty = "medium"
	DifficultyHard   QuestionDifficulty = "hard"
)

type QuestionSource string

const (
	SourceCV      QuestionSource = "cv"
	SourceJobSpec QuestionSource = "jobSpec"
	SourceGeneral QuestionSource = "general"
)

// InterviewSession is one practice attempt: an ordered set of questions and
// the responses recorded against them. Status moves from in-progress to
// completed exactly once; EndTime is set on completion only.
// swagger:model InterviewSession
type InterviewSession struct {
	UUIDBase
	UserID    uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Title     string        `gorm:"size:255;not null" json:"title"`
	Status    SessionStatus `gorm:"type:enum('in-progress','completed');default:'in-progress'" json:"status"`
	StartTime time.Time     `json:"startTime"`
	EndTime   *time.Time    `json:"endTime,omitempty"`
	Questions []Question    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"questions"`
	Responses []Response    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"responses"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// Question is immutable once created inside a session. Position preserves
// the order questions were asked in.
// swagger:model Question
type Question struct {
	UUIDBase
	SessionID  string             `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	Position   int                `gorm:"default:0" json:"position"`
	Text       string             `gorm:"type:text;not null" json:"text"`
	Category   string             `gorm:"size:50;default:'general'" json:"category"`
	Difficulty QuestionDifficulty `gorm:"type:enum('easy','medium','hard');default:'medium'" json:"difficulty"`
	Source     QuestionSource     `gorm:"type:enum('cv','jobSpec','general');default:'general'" json:"source"`
}

func (Question) TableName() string {
	return "questions"
}

// Response holds at most one answer per question per session; the composite
// unique index makes a resave for the same question last-write-wins.
// swagger:model Response
type Response struct {
	UUIDBase
	SessionID     string  `gorm:"uniqueIndex:idx_session_question;type:varchar(36);not null" json:"sessionId"`
	QuestionID    string  `gorm:"uniqueIndex:idx_session_question;type:varchar(36);not null" json:"questionId"`
	Transcription string  `gorm:"type:longtext" json:"transcription"`
	AudioURL      string  `gorm:"size:255" json:"audioUrl,omitempty"`
	Duration      float64 `gorm:"default:0" json:"duration,omitempty"` // seconds
}

func (Response) TableName() string {
	return "responses"
}
