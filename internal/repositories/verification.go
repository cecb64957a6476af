package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blockverify/credential-verifier/internal/models"
)

type VerificationRepository interface {
	Create(record *models.VerificationRecord) error
	FindByID(id uuid.UUID) (*models.VerificationRecord, error)
	UpdateStatus(id uuid.UUID, status models.VerificationJobStatus) error
	UpdateDecision(id uuid.UUID, data *DecisionUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindQueuedJobs(limit int) ([]models.VerificationRecord, error)
	FindCompleted(limit int) ([]models.VerificationRecord, error)
}

type DecisionUpdateData struct {
	DecisionStatus string
	TrustLevel     string
	Method         string
	Confidence     int
	Reason         string
	StepsJSON      string
	FactsJSON      string
	Platform       *string
	PlatformCertID *string
	DuplicateOfID  *string
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(record *models.VerificationRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create verification record: %w", err)
	}
	return nil
}

func (r *verificationRepository) FindByID(id uuid.UUID) (*models.VerificationRecord, error) {
	var record models.VerificationRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("verification record not found")
		}
		return nil, fmt.Errorf("failed to find verification record: %w", err)
	}
	return &record, nil
}

func (r *verificationRepository) UpdateStatus(id uuid.UUID, status models.VerificationJobStatus) error {
	result := r.db.Model(&models.VerificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("verification record not found")
	}

	return nil
}

func (r *verificationRepository) UpdateDecision(id uuid.UUID, data *DecisionUpdateData) error {
	updates := map[string]interface{}{
		"status":          models.JobCompleted,
		"decision_status": data.DecisionStatus,
		"trust_level":     data.TrustLevel,
		"method":          data.Method,
		"confidence":      data.Confidence,
		"reason":          data.Reason,
		"steps_json":      data.StepsJSON,
		"facts_json":      data.FactsJSON,
		"updated_at":      time.Now(),
	}

	if data.Platform != nil {
		updates["platform"] = *data.Platform
	}
	if data.PlatformCertID != nil {
		updates["platform_cert_id"] = *data.PlatformCertID
	}
	if data.DuplicateOfID != nil {
		updates["duplicate_of_id"] = *data.DuplicateOfID
	}

	result := r.db.Model(&models.VerificationRecord{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update decision: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("verification record not found")
	}

	return nil
}

func (r *verificationRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.VerificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("verification record not found")
	}

	return nil
}

func (r *verificationRepository) FindQueuedJobs(limit int) ([]models.VerificationRecord, error) {
	var records []models.VerificationRecord
	err := r.db.
		Where("status = ?", models.JobQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find queued jobs: %w", err)
	}

	return records, nil
}

func (r *verificationRepository) FindCompleted(limit int) ([]models.VerificationRecord, error) {
	var records []models.VerificationRecord
	err := r.db.
		Where("status = ?", models.JobCompleted).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find completed records: %w", err)
	}

	return records, nil
}
