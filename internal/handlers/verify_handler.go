package handlers

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blockverify/credential-verifier/internal/models"
	"blockverify/credential-verifier/internal/repositories"
	"blockverify/credential-verifier/internal/services"
)

// VerifyHandler serves the synchronous verification endpoint: the whole
// pipeline runs within the request and the full audit bundle is returned.
type VerifyHandler struct {
	fileRepo         repositories.CertificateFileRepository
	verificationRepo repositories.VerificationRepository
	storageService   services.StorageService
	verifier         services.VerifierService
	processor        services.ProcessorService
	maxFileSize      int64
}

func NewVerifyHandler(
	fileRepo repositories.CertificateFileRepository,
	verificationRepo repositories.VerificationRepository,
	storageService services.StorageService,
	verifier services.VerifierService,
	processor services.ProcessorService,
	maxFileSize int64,
) *VerifyHandler {
	return &VerifyHandler{
		fileRepo:         fileRepo,
		verificationRepo: verificationRepo,
		storageService:   storageService,
		verifier:         verifier,
		processor:        processor,
		maxFileSize:      maxFileSize,
	}
}

// HandleVerify handles POST /verify-certificate.
func (h *VerifyHandler) HandleVerify(c *fiber.Ctx) error {
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
	studentID := c.FormValue("studentId")

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Certificate file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	fileBytes, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	// Persist the upload so the run is auditable even when it fails.
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
		StudentID:         studentID,
		CertificateFileID: file.ID,
		Status:            models.JobProcessing,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := h.verificationRepo.Create(&record); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create verification record",
		})
	}

	results := fiber.Map{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"id":          record.ID.String(),
		"studentName": studentName,
		"studentId":   studentID,
		"method":      "AI_VISION",
		"fileInfo": fiber.Map{
			"name": fileHeader.Filename,
			"size": fileHeader.Size,
			"type": contentType,
		},
	}

	result, err := h.verifier.Verify(c.Context(), fileBytes, contentType, studentName)
	if err != nil {
		h.verificationRepo.UpdateError(record.ID, err.Error())

		results["steps"] = result.Steps
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   hardFailureLabel(err),
			"message": err.Error(),
			"results": results,
		})
	}

	duplicate, err := h.processor.Finalize(c.Context(), &record, result)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist verification outcome",
		})
	}

	results["steps"] = result.Steps
	results["aiExtraction"] = result.FactSheet
	results["nameMatch"] = result.NameMatch
	if result.URLLiveness != nil {
		results["verificationUrl"] = result.FactSheet.VerificationURL
		results["urlVerification"] = result.URLLiveness
	}
	if result.Platform != nil {
		results["platform"] = result.Platform
	}
	if duplicate != nil {
		results["duplicateSubmission"] = duplicate
	}
	results["finalDecision"] = result.Decision

	return c.JSON(results)
}

// hardFailureLabel distinguishes "we could not evaluate this certificate"
// failure classes for the caller.
func hardFailureLabel(err error) string {
	var convErr *services.ConversionError
	if errors.As(err, &convErr) {
		return "PDF conversion failed"
	}
	var visionErr *services.VisionServiceError
	if errors.As(err, &visionErr) {
		return "AI analysis failed"
	}
	return "Verification failed"
}
