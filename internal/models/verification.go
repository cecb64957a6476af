package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationJobStatus string

const (
	JobQueued     VerificationJobStatus = "queued"
	JobProcessing VerificationJobStatus = "processing"
	JobCompleted  VerificationJobStatus = "completed"
	JobFailed     VerificationJobStatus = "failed"
)

// VerificationRecord is one verification run of an uploaded certificate
// against a claimed student name. The decision columns are populated only
// when the job completes; StepsJSON keeps the audit trail verbatim.
type VerificationRecord struct {
	ID                uuid.UUID             `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentName       string                `gorm:"type:text;not null" json:"student_name"`
	StudentID         string                `gorm:"type:text" json:"student_id,omitempty"`
	CertificateFileID uuid.UUID             `gorm:"type:uuid;not null" json:"certificate_file_id"`
	Status            VerificationJobStatus `gorm:"not null;default:'queued'" json:"status"`
	DecisionStatus    *string               `gorm:"type:text" json:"decision_status,omitempty"`
	TrustLevel        *string               `gorm:"type:text" json:"trust_level,omitempty"`
	Method            *string               `gorm:"type:text" json:"verification_method,omitempty"`
	Confidence        *int                  `json:"confidence,omitempty"`
	Reason            *string               `gorm:"type:text" json:"reason,omitempty"`
	StepsJSON         *string               `gorm:"type:text" json:"-"`
	FactsJSON         *string               `gorm:"type:text" json:"-"`
	Platform          *string               `gorm:"type:text" json:"platform,omitempty"`
	PlatformCertID    *string               `gorm:"type:text" json:"platform_certificate_id,omitempty"`
	DuplicateOfID     *string               `gorm:"type:text" json:"duplicate_of_id,omitempty"`
	ErrorMessage      string                `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	CertificateFile CertificateFile `gorm:"foreignKey:CertificateFileID" json:"-"`
}

func (VerificationRecord) TableName() string {
	return "verification_records"
}
