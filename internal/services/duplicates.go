package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Above this cosine score a prior submission is flagged as a near-duplicate.
const duplicateScoreThreshold = 0.97

// DuplicateMatch points at an earlier verification record whose fact sheet is
// nearly identical to the current one.
type DuplicateMatch struct {
	RecordID string  `json:"recordId"`
	OwnerID  string  `json:"ownerId,omitempty"`
	Score    float32 `json:"score"`
}

// DuplicateDetectorService flags resubmissions of the same certificate by
// embedding the extracted fact sheet and searching prior submissions.
// Advisory only: its output never changes the trust decision, and every
// failure degrades to "no duplicate found".
type DuplicateDetectorService interface {
	FindDuplicate(ctx context.Context, fact *CertificateFact) (*DuplicateMatch, error)
	IndexFacts(ctx context.Context, recordID, ownerID string, fact *CertificateFact) error
}

type duplicateDetectorService struct {
	gemini GeminiService
	qdrant QdrantService
}

func NewDuplicateDetectorService(gemini GeminiService, qdrant QdrantService) DuplicateDetectorService {
	return &duplicateDetectorService{
		gemini: gemini,
		qdrant: qdrant,
	}
}

// FindDuplicate implements DuplicateDetectorService.
func (d *duplicateDetectorService) FindDuplicate(ctx context.Context, fact *CertificateFact) (*DuplicateMatch, error) {
	embedding, err := d.gemini.GenerateEmbedding(ctx, factText(fact))
	if err != nil {
		return nil, fmt.Errorf("failed to embed fact sheet: %w", err)
	}

	results, err := d.qdrant.SearchSimilar(ctx, embedding, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to search prior submissions: %w", err)
	}

	if len(results) == 0 || results[0].Score < duplicateScoreThreshold {
		return nil, nil
	}

	log.Printf("⚠️ Near-duplicate submission detected: record %s (score %.3f)\n",
		results[0].RecordID, results[0].Score)

	return &DuplicateMatch{
		RecordID: results[0].RecordID,
		OwnerID:  results[0].OwnerID,
		Score:    results[0].Score,
	}, nil
}

// IndexFacts implements DuplicateDetectorService.
func (d *duplicateDetectorService) IndexFacts(ctx context.Context, recordID, ownerID string, fact *CertificateFact) error {
	text := factText(fact)

	embedding, err := d.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed fact sheet: %w", err)
	}

	if err := d.qdrant.UpsertFact(ctx, recordID, ownerID, text, embedding); err != nil {
		return fmt.Errorf("failed to index fact sheet: %w", err)
	}

	return nil
}

func factText(fact *CertificateFact) string {
	fields := []string{
		fact.RecipientName,
		fact.CourseName,
		fact.Issuer,
		fact.IssueDate,
		fact.CertificateType,
		fact.VerificationURL,
	}
	return strings.TrimSpace(strings.Join(fields, "\n"))
}
