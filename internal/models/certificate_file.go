package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificateFile is the uploaded certificate artifact on disk. The raw bytes
// live under the upload directory; only the path is persisted.
type CertificateFile struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	ContentType      string    `gorm:"type:text" json:"content_type"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (c *CertificateFile) TableName() string {
	return "certificate_files"
}
