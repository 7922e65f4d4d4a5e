package model

type FeedbackCategory string

const (
	CategoryContent    FeedbackCategory = "content"
	CategoryDelivery   FeedbackCategory = "delivery"
	CategoryLanguage   FeedbackCategory = "language"
	CategoryConfidence FeedbackCategory = "confidence"
)

type FeedbackSentiment string

const (
	SentimentPositive FeedbackSentiment = "positive"
	SentimentNegative FeedbackSentiment = "negative"
	SentimentNeutral  FeedbackSentiment = "neutral"
)

// Feedback is the single aggregate result of analyzing a completed session.
// The unique index on InterviewID enforces at-most-one feedback per session
// at the storage layer; records are never updated after creation.
// swagger:model Feedback
type Feedback struct {
	UUIDBase
	InterviewID  string         `gorm:"uniqueIndex;type:varchar(36);not null" json:"interviewId"`
	UserID       uint           `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	OverallScore int            `gorm:"not null" json:"overallScore"` // 0-100
	Summary      string         `gorm:"type:text;not null" json:"summary"`
	Strengths    []string       `gorm:"type:json;serializer:json" json:"strengths"`
	Weaknesses   []string       `gorm:"type:json;serializer:json" json:"weaknesses"`
	Items        []FeedbackItem `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"feedbackItems"`
	Suggestions  []Suggestion   `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"suggestions"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// FeedbackItem is one categorized observation about one question's response.
// swagger:model FeedbackItem
type FeedbackItem struct {
	UUIDBase
	FeedbackID string            `gorm:"index;type:varchar(36)" json:"-"`
	QuestionID string            `gorm:"type:varchar(36);not null" json:"questionId"`
	Category   FeedbackCategory  `gorm:"type:enum('content','delivery','language','confidence');not null" json:"category"`
	Sentiment  FeedbackSentiment `gorm:"type:enum('positive','negative','neutral');not null" json:"sentiment"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	Position   int               `gorm:"default:0" json:"-"`
}

func (FeedbackItem) TableName() string {
	return "feedback_items"
}

// Suggestion is one improvement recommendation tied to a question.
// swagger:model Suggestion
type Suggestion struct {
	UUIDBase
	FeedbackID string           `gorm:"index;type:varchar(36)" json:"-"`
	QuestionID string           `gorm:"type:varchar(36);not null" json:"questionId"`
	Category   FeedbackCategory `gorm:"type:enum('content','delivery','language','confidence');not null" json:"category"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	Position   int              `gorm:"default:0" json:"-"`
}

func (Suggestion) TableName() string {
	return "suggestions"
}
