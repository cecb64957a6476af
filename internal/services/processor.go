package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"blockverify/credential-verifier/internal/models"
	"blockverify/credential-verifier/internal/repositories"
)

// ProcessorService runs a persisted verification job through the pipeline
// and applies the downstream store policy to the outcome:
// HIGH/HIGHEST trust stores the certificate auto-verified, MEDIUM stores it
// pending university approval, LOW/NONE or REJECTED stores nothing.
type ProcessorService interface {
	ProcessRecord(ctx context.Context, recordID uuid.UUID) error
	Finalize(ctx context.Context, record *models.VerificationRecord, result *VerificationResult) (*DuplicateMatch, error)
}

type processorService struct {
	verificationRepo repositories.VerificationRepository
	fileRepo         repositories.CertificateFileRepository
	storage          StorageService
	verifier         VerifierService
	duplicates       DuplicateDetectorService
	credStore        CredentialStore
}

func NewProcessorService(
	verificationRepo repositories.VerificationRepository,
	fileRepo repositories.CertificateFileRepository,
	storage StorageService,
	verifier VerifierService,
	duplicates DuplicateDetectorService,
	credStore CredentialStore,
) ProcessorService {
	return &processorService{
		verificationRepo: verificationRepo,
		fileRepo:         fileRepo,
		storage:          storage,
		verifier:         verifier,
		duplicates:       duplicates,
		credStore:        credStore,
	}
}

// ProcessRecord implements ProcessorService.
func (p *processorService) ProcessRecord(ctx context.Context, recordID uuid.UUID) error {
	if err := p.verificationRepo.UpdateStatus(recordID, models.JobProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🎓 Starting AI-powered certificate verification for job %s\n", recordID)

	record, err := p.verificationRepo.FindByID(recordID)
	if err != nil {
		p.verificationRepo.UpdateError(recordID, err.Error())
		return fmt.Errorf("failed to load verification record: %w", err)
	}

	file, err := p.fileRepo.FindByID(record.CertificateFileID)
	if err != nil {
		p.verificationRepo.UpdateError(recordID, fmt.Sprintf("certificate file not found: %v", err))
		return fmt.Errorf("failed to load certificate file: %w", err)
	}

	fileBytes, err := p.storage.ReadFile(file.FilePath)
	if err != nil {
		p.verificationRepo.UpdateError(recordID, err.Error())
		return fmt.Errorf("failed to read certificate file: %w", err)
	}

	result, err := p.verifier.Verify(ctx, fileBytes, file.ContentType, record.StudentName)
	if err != nil {
		// Conversion or vision failure: the run could not be evaluated.
		p.verificationRepo.UpdateError(recordID, err.Error())
		return fmt.Errorf("verification run failed: %w", err)
	}

	if _, err := p.Finalize(ctx, record, result); err != nil {
		return err
	}

	log.Printf("✅ Verification job %s completed: %s\n", recordID, result.Decision.Status)
	return nil
}

// Finalize implements ProcessorService. Flags near-duplicate submissions,
// applies the store policy, and persists the decision. The duplicate signal
// is advisory and never alters the decision.
func (p *processorService) Finalize(ctx context.Context, record *models.VerificationRecord, result *VerificationResult) (*DuplicateMatch, error) {
	decision := result.Decision

	var duplicate *DuplicateMatch
	if p.duplicates != nil && result.FactSheet != nil {
		match, err := p.duplicates.FindDuplicate(ctx, result.FactSheet)
		if err != nil {
			log.Printf("⚠️ Duplicate check failed: %v\n", err)
		} else {
			duplicate = match
		}
	}

	p.applyStorePolicy(record, result)

	if p.duplicates != nil && result.FactSheet != nil && !decision.Rejected {
		if err := p.duplicates.IndexFacts(ctx, record.ID.String(), record.StudentID, result.FactSheet); err != nil {
			log.Printf("⚠️ Failed to index fact sheet: %v\n", err)
		}
	}

	update := &repositories.DecisionUpdateData{
		DecisionStatus: decision.Status,
		TrustLevel:     decision.TrustLevel,
		Method:         decision.VerificationMethod,
		Confidence:     decision.Confidence,
		Reason:         decision.Reason,
		StepsJSON:      marshalSteps(result.Steps),
		FactsJSON:      marshalFacts(result.FactSheet),
	}
	if result.Platform != nil {
		update.Platform = &result.Platform.Platform
		if result.Platform.CertificateID != "" {
			update.PlatformCertID = &result.Platform.CertificateID
		}
	}
	if duplicate != nil {
		update.DuplicateOfID = &duplicate.RecordID
	}

	if err := p.verificationRepo.UpdateDecision(record.ID, update); err != nil {
		return duplicate, fmt.Errorf("failed to save decision: %w", err)
	}

	return duplicate, nil
}

func (p *processorService) applyStorePolicy(record *models.VerificationRecord, result *VerificationResult) {
	decision := result.Decision

	certName := ""
	metadata := map[string]string{}
	if result.FactSheet != nil {
		certName = result.FactSheet.CourseName
		metadata["issuer"] = result.FactSheet.Issuer
		metadata["issueDate"] = result.FactSheet.IssueDate
		metadata["certificateType"] = result.FactSheet.CertificateType
	}

	ownerID := record.StudentID
	if ownerID == "" {
		ownerID = record.StudentName
	}

	switch decision.TrustLevel {
	case TrustHighest, TrustHigh:
		if err := p.credStore.StoreCertificate(ownerID, record.ID.String(), certName, metadata, true); err != nil {
			log.Printf("⚠️ Failed to store auto-verified certificate: %v\n", err)
		}
	case TrustMedium:
		if err := p.credStore.StoreCertificate(ownerID, record.ID.String(), certName, metadata, false); err != nil {
			log.Printf("⚠️ Failed to store pending certificate: %v\n", err)
		}
	default:
		// LOW, NONE or rejected: nothing is stored. The uploader sees a
		// hard stop.
	}
}

func marshalSteps(steps []VerificationStep) string {
	data, err := json.Marshal(steps)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func marshalFacts(fact *CertificateFact) string {
	if fact == nil {
		return ""
	}
	data, err := json.Marshal(fact)
	if err != nil {
		return ""
	}
	return string(data)
}
