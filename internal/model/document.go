package model

type DocumentType string

const (
	DocumentCV      DocumentType = "cv"
	DocumentJobSpec DocumentType = "jobSpec"
)

type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentProcessed DocumentStatus = "processed"
	DocumentError     DocumentStatus = "error"
)

// Document is an uploaded CV or job specification. A user keeps at most one
// current document per type; uploading a new one replaces the old.
// swagger:model Document
type Document struct {
	UUIDBase
	UserID          uint           `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Type            DocumentType   `gorm:"type:enum('cv','jobSpec');not null" json:"type"`
	Title           string         `gorm:"size:100;not null" json:"title"`
	Content         string         `gorm:"type:longtext" json:"content,omitempty"`
	FileURL         string         `gorm:"size:255" json:"fileUrl,omitempty"`
	FileType        string         `gorm:"size:100" json:"fileType,omitempty"`
	Status          DocumentStatus `gorm:"type:enum('pending','processed','error');default:'pending'" json:"status"`
	ProcessingError string         `gorm:"type:text" json:"processingError,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
