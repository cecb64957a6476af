package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blockverify/credential-verifier/internal/models"
	"blockverify/credential-verifier/internal/repositories"
	"blockverify/credential-verifier/internal/services"
)

// VerificationHandler serves the asynchronous flow: submit a certificate for
// background verification, poll for the outcome later.
type VerificationHandler struct {
	fileRepo         repositories.CertificateFileRepository
	verificationRepo repositories.VerificationRepository
	storageService   services.StorageService
	worker           services.Worker
	maxFileSize      int64
}

func NewVerificationHandler(
	fileRepo repositories.CertificateFileRepository,
	verificationRepo repositories.VerificationRepository,
	storageService services.StorageService,
	worker services.Worker,
	maxFileSize int64,
) *VerificationHandler {
	return &VerificationHandler{
		fileRepo:         fileRepo,
		verificationRepo: verificationRepo,
		storageService:   storageService,
		worker:           worker,
		maxFileSize:      maxFileSize,
	}
}

// HandleSubmit handles POST /verifications.
func (h *VerificationHandler) HandleSubmit(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("certificate")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No certificate file provided",
		})
	}

	studentName := c.FormValue("studentName")
	if studentName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student name is required",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Certificate file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, contentType, err := h.storageService.SaveFile(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	file := models.CertificateFile{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: fileHeader.Filename,
		ContentType:      contentType,
		FilePath:         filePath,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := h.fileRepo.Create(&file); err != nil {
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save certificate file record",
		})
	}

	record := models.VerificationRecord{
		ID:                uuid.New(),
		StudentName:       studentName,
		StudentID:         c.FormValue("studentId"),
		CertificateFileID: file.ID,
		Status:            models.JobQueued,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := h.verificationRepo.Create(&record); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create verification job",
		})
	}

	h.worker.EnqueueJob(record.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.SubmitVerificationResponse{
		ID:     record.ID.String(),
		Status: string(models.JobQueued),
	})
}

// HandleGetResult handles GET /verifications/:id.
func (h *VerificationHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	recordID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid verification ID format",
		})
	}

	record, err := h.verificationRepo.FindByID(recordID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Verification not found",
		})
	}

	response := models.VerificationResultResponse{
		ID:     record.ID.String(),
		Status: string(record.Status),
	}

	if record.Status == models.JobCompleted && record.DecisionStatus != nil {
		response.Result = &models.VerificationResultData{
			DecisionStatus: *record.DecisionStatus,
			TrustLevel:     deref(record.TrustLevel),
			Method:         deref(record.Method),
			Reason:         deref(record.Reason),
			Platform:       record.Platform,
			PlatformCertID: record.PlatformCertID,
			DuplicateOfID:  record.DuplicateOfID,
		}
		if record.Confidence != nil {
			response.Result.Confidence = *record.Confidence
		}
	}

	if record.Status == models.JobFailed && record.ErrorMessage != "" {
		response.ErrorMessage = &record.ErrorMessage
	}

	return c.JSON(response)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
