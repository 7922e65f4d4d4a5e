package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Upload validation
const (
	MimeText        = "text/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var AllowedDocumentMimeTypes = []string{MimeText, MimePDF, "application/json", MimeOctetStream}
