package services

const (
	StatusApproved = "APPROVED"
	StatusPending  = "PENDING"
	StatusRejected = "REJECTED"

	TrustHighest = "HIGHEST"
	TrustHigh    = "HIGH"
	TrustMedium  = "MEDIUM"
	TrustLow     = "LOW"
	TrustNone    = "NONE"

	MethodURLVerifiedWithName = "AI_URL_VERIFIED_WITH_NAME"
	MethodURLVerified         = "AI_URL_VERIFIED"
	MethodURLExists           = "AI_URL_EXISTS"
	MethodQRCode              = "AI_QR_CODE"
	MethodURL                 = "AI_URL"
	MethodNameMatch           = "AI_NAME_MATCH"
	MethodPartialMatch        = "AI_PARTIAL_MATCH"
	MethodNameMismatch        = "NAME_MISMATCH"

	reasonApproved = "Certificate verified successfully"
	reasonPending  = "Requires manual review"
	reasonRejected = "Name mismatch - certificate may not belong to this student"
)

type FinalDecision struct {
	Status               string `json:"status"`
	TrustLevel           string `json:"trustLevel"`
	VerificationMethod   string `json:"verificationMethod"`
	Confidence           int    `json:"confidence"`
	AutoApproved         bool   `json:"autoApproved"`
	RequiresManualReview bool   `json:"requiresManualReview"`
	Rejected             bool   `json:"rejected"`
	Reason               string `json:"reason"`
}

// DecisionEngine combines the name match, URL liveness and QR signals into
// the final verdict. Pure function of its inputs, no I/O.
type DecisionEngine interface {
	Decide(nameMatch NameMatchResult, hasVerificationURL bool, urlLiveness *LivenessResult, hasQRCode bool) FinalDecision
}

type decisionEngine struct{}

func NewDecisionEngine() DecisionEngine {
	return &decisionEngine{}
}

// Decide implements DecisionEngine. Ordered cascade, first satisfied branch
// wins; each branch is terminal.
func (d *decisionEngine) Decide(nameMatch NameMatchResult, hasVerificationURL bool, urlLiveness *LivenessResult, hasQRCode bool) FinalDecision {
	if !nameMatch.Match {
		return newDecision(StatusRejected, TrustNone, MethodNameMismatch, nameMatch.Confidence)
	}

	urlReachable := urlLiveness != nil && urlLiveness.Reachable
	nameOnPage := urlLiveness != nil && urlLiveness.NameFound

	switch {
	case nameMatch.Confidence >= 95 && urlReachable && nameOnPage:
		return newDecision(StatusApproved, TrustHighest, MethodURLVerifiedWithName, nameMatch.Confidence)
	case nameMatch.Confidence >= 95 && urlReachable:
		return newDecision(StatusApproved, TrustHigh, MethodURLVerified, nameMatch.Confidence)
	case nameMatch.Confidence >= 95 && hasVerificationURL:
		// URL present but unreachable or inconclusive
		return newDecision(StatusApproved, TrustHigh, MethodURLExists, nameMatch.Confidence)
	case nameMatch.Confidence >= 95 && hasQRCode:
		return newDecision(StatusApproved, TrustHigh, MethodQRCode, nameMatch.Confidence)
	case nameMatch.Confidence >= 90 && hasVerificationURL:
		return newDecision(StatusApproved, TrustMedium, MethodURL, nameMatch.Confidence)
	case nameMatch.Confidence >= 85:
		return newDecision(StatusPending, TrustMedium, MethodNameMatch, nameMatch.Confidence)
	case nameMatch.Confidence >= 70:
		return newDecision(StatusPending, TrustLow, MethodPartialMatch, nameMatch.Confidence)
	default:
		// Unreachable when the name matcher holds its own contract
		// (match implies confidence >= 70). Guarded anyway: an
		// out-of-contract input lands in manual review, never in
		// auto-approval.
		return newDecision(StatusPending, TrustLow, MethodPartialMatch, nameMatch.Confidence)
	}
}

func newDecision(status, trustLevel, method string, confidence int) FinalDecision {
	reason := reasonPending
	switch status {
	case StatusApproved:
		reason = reasonApproved
	case StatusRejected:
		reason = reasonRejected
	}

	return FinalDecision{
		Status:               status,
		TrustLevel:           trustLevel,
		VerificationMethod:   method,
		Confidence:           confidence,
		AutoApproved:         status == StatusApproved,
		RequiresManualReview: status == StatusPending,
		Rejected:             status == StatusRejected,
		Reason:               reason,
	}
}
