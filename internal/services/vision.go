package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// CertificateFact is the structured fact sheet the vision model reads off a
// certificate image. Missing fields decode to their zero values; none of the
// fields are normalized beyond that.
type CertificateFact struct {
	RecipientName   string `json:"recipientName"`
	CourseName      string `json:"courseName"`
	Issuer          string `json:"issuer"`
	IssueDate       string `json:"issueDate"`
	VerificationURL string `json:"verificationUrl"`
	HasQRCode       bool   `json:"hasQRCode"`
	CertificateType string `json:"certificateType"`
	AdditionalInfo  string `json:"additionalInfo"`
}

// HasVerificationURL reports whether the model found a usable verification
// URL, filtering the sentinel values the model emits when it finds none.
func (f CertificateFact) HasVerificationURL() bool {
	return f.VerificationURL != "" && f.VerificationURL != "Not found" && f.VerificationURL != "None"
}

// VisionExtractorService turns a certificate image into a CertificateFact via
// the vision model. A failed call or an unparsable reply surfaces as a
// VisionServiceError; there are no retries.
type VisionExtractorService interface {
	ExtractFacts(ctx context.Context, imageBytes []byte, mimeType, expectedStudentName string) (*CertificateFact, error)
}

type visionExtractorService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewVisionExtractorService(gemini GeminiService) VisionExtractorService {
	return &visionExtractorService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// ExtractFacts implements VisionExtractorService.
func (v *visionExtractorService) ExtractFacts(ctx context.Context, imageBytes []byte, mimeType, expectedStudentName string) (*CertificateFact, error) {
	prompt := v.promptBuilder.BuildExtractionPrompt(expectedStudentName)

	text, err := v.gemini.GenerateVision(ctx, prompt, imageBytes, mimeType)
	if err != nil {
		return nil, &VisionServiceError{Err: err}
	}

	log.Printf("📝 AI response received: %d characters\n", len(text))

	fact, err := parseFactSheet(text)
	if err != nil {
		return nil, &VisionServiceError{Err: err}
	}

	log.Println("✅ AI extraction complete")
	return fact, nil
}

// parseFactSheet runs the two-phase pipeline over the untrusted model reply:
// locate the first balanced JSON object, then decode it strictly into the
// typed fact sheet.
func parseFactSheet(text string) (*CertificateFact, error) {
	jsonSpan, ok := firstJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("could not parse JSON from AI response")
	}

	var fact CertificateFact
	if err := json.Unmarshal([]byte(jsonSpan), &fact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fact sheet: %w", err)
	}

	return &fact, nil
}

// firstJSONObject scans for the first top-level {...} span by brace matching,
// ignoring braces inside string literals.
func firstJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}
