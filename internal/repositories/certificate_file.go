package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blockverify/credential-verifier/internal/models"
)

type CertificateFileRepository interface {
	Create(file *models.CertificateFile) error
	FindByID(id uuid.UUID) (*models.CertificateFile, error)
}

type certificateFileRepository struct {
	db *gorm.DB
}

func NewCertificateFileRepository(db *gorm.DB) CertificateFileRepository {
	return &certificateFileRepository{db: db}
}

// Create implements CertificateFileRepository.
func (r *certificateFileRepository) Create(file *models.CertificateFile) error {
	if err := r.db.Create(&file).Error; err != nil {
		return fmt.Errorf("failed to create certificate file: %w", err)
	}

	return nil
}

// FindByID implements CertificateFileRepository.
func (r *certificateFileRepository) FindByID(id uuid.UUID) (*models.CertificateFile, error) {
	var file models.CertificateFile
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("certificate file not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find certificate file: %w", err)
	}

	return &file, nil
}
