package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGemini struct {
	visionReply string
	visionErr   error
	embedding   []float32
	embedErr    error
}

func (s *stubGemini) GenerateVision(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return s.visionReply, s.visionErr
}

func (s *stubGemini) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return s.embedding, s.embedErr
}

func TestExtractFacts(t *testing.T) {
	t.Run("parses JSON wrapped in markdown and prose", func(t *testing.T) {
		gemini := &stubGemini{visionReply: "Sure! Here is the result:\n```json\n" +
			`{"recipientName": "Navaneeth M", "courseName": "Go Basics", "issuer": "Coursera",
			  "issueDate": "2024-05-01", "verificationUrl": "https://coursera.org/verify/ABC123",
			  "hasQRCode": true, "certificateType": "Course Completion", "additionalInfo": "Grade: A"}` +
			"\n```\nLet me know if you need anything else."}

		extractor := NewVisionExtractorService(gemini)
		fact, err := extractor.ExtractFacts(context.Background(), []byte{1}, "image/png", "Navaneeth M")
		require.NoError(t, err)

		assert.Equal(t, "Navaneeth M", fact.RecipientName)
		assert.Equal(t, "Go Basics", fact.CourseName)
		assert.Equal(t, "Coursera", fact.Issuer)
		assert.True(t, fact.HasQRCode)
		assert.True(t, fact.HasVerificationURL())
	})

	t.Run("missing fields default to zero values", func(t *testing.T) {
		gemini := &stubGemini{visionReply: `{"recipientName": "Jane Doe"}`}

		extractor := NewVisionExtractorService(gemini)
		fact, err := extractor.ExtractFacts(context.Background(), []byte{1}, "image/png", "Jane Doe")
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", fact.RecipientName)
		assert.Empty(t, fact.CourseName)
		assert.Empty(t, fact.VerificationURL)
		assert.False(t, fact.HasQRCode)
		assert.False(t, fact.HasVerificationURL())
	})

	t.Run("reply without JSON is a vision service error", func(t *testing.T) {
		gemini := &stubGemini{visionReply: "I could not read the certificate."}

		extractor := NewVisionExtractorService(gemini)
		_, err := extractor.ExtractFacts(context.Background(), []byte{1}, "image/png", "Jane Doe")

		var visionErr *VisionServiceError
		require.ErrorAs(t, err, &visionErr)
	})

	t.Run("upstream failure is a vision service error", func(t *testing.T) {
		gemini := &stubGemini{visionErr: errors.New("model unavailable")}

		extractor := NewVisionExtractorService(gemini)
		_, err := extractor.ExtractFacts(context.Background(), []byte{1}, "image/png", "Jane Doe")

		var visionErr *VisionServiceError
		require.ErrorAs(t, err, &visionErr)
	})
}

func TestHasVerificationURL(t *testing.T) {
	assert.False(t, CertificateFact{VerificationURL: ""}.HasVerificationURL())
	assert.False(t, CertificateFact{VerificationURL: "Not found"}.HasVerificationURL())
	assert.False(t, CertificateFact{VerificationURL: "None"}.HasVerificationURL())
	assert.True(t, CertificateFact{VerificationURL: "https://example.com/verify/1"}.HasVerificationURL())
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "object inside prose",
			text: `prefix {"a": {"b": 2}} suffix {"c": 3}`,
			want: `{"a": {"b": 2}}`,
			ok:   true,
		},
		{
			name: "braces inside strings are ignored",
			text: `{"a": "value with } brace", "b": 1}`,
			want: `{"a": "value with } brace", "b": 1}`,
			ok:   true,
		},
		{
			name: "escaped quotes inside strings",
			text: `{"a": "quote \" and } brace"}`,
			want: `{"a": "quote \" and } brace"}`,
			ok:   true,
		},
		{
			name: "no object",
			text: "nothing here",
			ok:   false,
		},
		{
			name: "unbalanced object",
			text: `{"a": 1`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
