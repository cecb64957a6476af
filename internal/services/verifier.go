package services

import (
	"context"
	"log"
	"strings"
)

const (
	StepProcessing = "processing"
	StepSuccess    = "success"
	StepFailed     = "failed"
	StepNotFound   = "not_found"
	StepWarning    = "warning"

	stepNamePDFConversion = "PDF Conversion"
	stepNameVision        = "AI Vision Analysis"
	stepNameNameMatch     = "Name Verification"
	stepNameURL           = "URL Verification"
)

type VerificationStep struct {
	Index  int    `json:"step"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// VerificationResult is the full audit bundle of one run. URLLiveness is nil
// when no verification URL was found; Decision is nil when the run aborted
// before the decision stage.
type VerificationResult struct {
	Steps       []VerificationStep `json:"steps"`
	FactSheet   *CertificateFact   `json:"aiExtraction,omitempty"`
	NameMatch   *NameMatchResult   `json:"nameMatch,omitempty"`
	URLLiveness *LivenessResult    `json:"urlVerification,omitempty"`
	Platform    *PlatformInfo      `json:"platform,omitempty"`
	Decision    *FinalDecision     `json:"finalDecision,omitempty"`
}

// VerifierService drives the verification pipeline end to end: optional
// PDF rasterization, vision extraction, name matching, conditional URL
// liveness, and the trust decision. Steps are appended in order as an audit
// trail. Each external call runs exactly once; conversion and vision
// failures abort the run, everything else is absorbed into the decision.
type VerifierService interface {
	Verify(ctx context.Context, fileBytes []byte, mimeType, expectedStudentName string) (*VerificationResult, error)
}

type verifierService struct {
	converter PDFConverterService
	vision    VisionExtractorService
	matcher   NameMatcherService
	liveness  LivenessCheckerService
	platform  PlatformDetectorService
	engine    DecisionEngine
}

func NewVerifierService(
	converter PDFConverterService,
	vision VisionExtractorService,
	matcher NameMatcherService,
	liveness LivenessCheckerService,
	platform PlatformDetectorService,
	engine DecisionEngine,
) VerifierService {
	return &verifierService{
		converter: converter,
		vision:    vision,
		matcher:   matcher,
		liveness:  liveness,
		platform:  platform,
		engine:    engine,
	}
}

// Verify implements VerifierService.
func (v *verifierService) Verify(ctx context.Context, fileBytes []byte, mimeType, expectedStudentName string) (*VerificationResult, error) {
	result := &VerificationResult{}

	imageBytes := fileBytes
	imageMime := mimeType

	// Step 0 (PDFs only): rasterize the first page.
	if isPDF(mimeType) {
		log.Println("🔄 PDF detected, converting to image...")
		result.appendStep(stepNamePDFConversion)

		converted, err := v.converter.ConvertFirstPage(ctx, fileBytes)
		if err != nil {
			result.setLastStep(StepFailed)
			return result, err
		}
		result.setLastStep(StepSuccess)
		imageBytes = converted
		imageMime = "image/png"
	}

	// Step 1: vision extraction. A failure here is terminal.
	result.appendStep(stepNameVision)
	fact, err := v.vision.ExtractFacts(ctx, imageBytes, imageMime, expectedStudentName)
	if err != nil {
		result.setLastStep(StepFailed)
		return result, err
	}
	result.setLastStep(StepSuccess)
	result.FactSheet = fact

	// Step 2: name matching.
	result.appendStep(stepNameNameMatch)
	nameMatch := v.matcher.CompareNames(expectedStudentName, fact.RecipientName)
	result.NameMatch = &nameMatch
	if nameMatch.Match {
		result.setLastStep(StepSuccess)
	} else {
		result.setLastStep(StepFailed)
	}

	log.Printf("🔍 Name comparison: %q vs %q = %d%% (%s)\n",
		expectedStudentName, fact.RecipientName, nameMatch.Confidence, nameMatch.Method)

	// Step 3: URL liveness, only when the model found a usable URL.
	if fact.HasVerificationURL() {
		log.Println("🔗 Verification URL found:", fact.VerificationURL)
		result.appendStep(stepNameURL)

		liveness := v.liveness.CheckURL(ctx, fact.VerificationURL, expectedStudentName)
		result.URLLiveness = &liveness

		switch {
		case liveness.Reachable:
			result.setLastStep(StepSuccess)
		case liveness.Note != "":
			// Inconclusive, not a failure: the URL may be auth-walled.
			result.setLastStep(StepWarning)
		default:
			result.setLastStep(StepFailed)
		}

		if info, ok := v.platform.Detect(fact.VerificationURL); ok {
			result.Platform = &info
		}
	} else {
		log.Println("🔗 No verification URL found")
		result.appendStep(stepNameURL)
		result.setLastStep(StepNotFound)
	}

	// Final decision over the accumulated signals.
	decision := v.engine.Decide(nameMatch, fact.HasVerificationURL(), result.URLLiveness, fact.HasQRCode)
	result.Decision = &decision

	log.Printf("✅ Verification complete: %s (trust %s, confidence %d%%)\n",
		decision.Status, decision.TrustLevel, decision.Confidence)

	return result, nil
}

func (r *VerificationResult) appendStep(name string) {
	r.Steps = append(r.Steps, VerificationStep{
		Index:  len(r.Steps) + 1,
		Name:   name,
		Status: StepProcessing,
	})
}

func (r *VerificationResult) setLastStep(status string) {
	r.Steps[len(r.Steps)-1].Status = status
}

func isPDF(mimeType string) bool {
	return strings.EqualFold(mimeType, "application/pdf")
}
