package models

type SubmitVerificationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type VerificationResultResponse struct {
	ID           string                  `json:"id"`
	Status       string                  `json:"status"`
	Result       *VerificationResultData `json:"result,omitempty"`
	ErrorMessage *string                 `json:"error_message,omitempty"`
}

type VerificationResultData struct {
	DecisionStatus string  `json:"status"`
	TrustLevel     string  `json:"trust_level"`
	Method         string  `json:"verification_method"`
	Confidence     int     `json:"confidence"`
	Reason         string  `json:"reason"`
	Platform       *string `json:"platform,omitempty"`
	PlatformCertID *string `json:"platform_certificate_id,omitempty"`
	DuplicateOfID  *string `json:"duplicate_of_id,omitempty"`
}

type SendOTPRequest struct {
	Email       string `json:"email"`
	StudentName string `json:"studentName"`
	Purpose     string `json:"purpose"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}
