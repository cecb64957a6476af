package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt creates the fact-extraction prompt for a certificate
// image. The expected student name is passed as a verification hint only;
// the model must still report the name it actually reads.
func (pb *PromptBuilder) BuildExtractionPrompt(expectedStudentName string) string {
	return fmt.Sprintf(`You are a certificate verification expert. Analyze this certificate image and extract the following information in JSON format:

{
  "recipientName": "Full name of the person who received the certificate",
  "courseName": "Name of the course or certification",
  "issuer": "Organization that issued the certificate (e.g., IBM, Coursera, etc.)",
  "issueDate": "Date when certificate was issued",
  "verificationUrl": "Any URL shown on the certificate for verification (look carefully at bottom or corners)",
  "hasQRCode": true/false,
  "certificateType": "Type of certificate (e.g., Course Completion, Professional Certificate, etc.)",
  "additionalInfo": "Any other relevant information"
}

IMPORTANT:
1. Look very carefully for ANY URLs on the certificate - they might be at the bottom, in small text, or near "Verify at:" text
2. The recipient name might be in different formats (e.g., "M Navaneeth" or "Navaneeth M")
3. Extract the EXACT name as shown on the certificate
4. If you see a QR code, set hasQRCode to true

Expected student name for verification: "%s"

Please analyze and return ONLY the JSON object, no other text.`, expectedStudentName)
}
