package services

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const inaccessibleNote = "URL exists but could not be accessed (may require authentication)"

type LivenessResult struct {
	Reachable  bool   `json:"valid"`
	HTTPStatus int    `json:"status,omitempty"`
	NameFound  bool   `json:"nameFound"`
	Note       string `json:"note,omitempty"`
}

// LivenessCheckerService fetches a claimed verification URL and reports
// reachability plus whether the expected name shows up in the page body.
// Every failure mode is encoded in the result; it never returns an error
// to the caller.
type LivenessCheckerService interface {
	CheckURL(ctx context.Context, url, expectedName string) LivenessResult
}

type livenessCheckerService struct {
	client    *http.Client
	userAgent string
}

func NewLivenessCheckerService(timeout time.Duration, userAgent string) LivenessCheckerService {
	return &livenessCheckerService{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// CheckURL implements LivenessCheckerService.
func (l *livenessCheckerService) CheckURL(ctx context.Context, url, expectedName string) LivenessResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("⚠️ Could not verify URL: %v\n", err)
		return LivenessResult{Reachable: false, Note: inaccessibleNote}
	}

	// Some verification portals block non-browser clients.
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Could not verify URL: %v\n", err)
		return LivenessResult{Reachable: false, Note: inaccessibleNote}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ URL verification failed with status: %d\n", resp.StatusCode)
		return LivenessResult{Reachable: false, HTTPStatus: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("⚠️ Could not read verification page: %v\n", err)
		return LivenessResult{Reachable: false, Note: inaccessibleNote}
	}

	pageContent := strings.ToLower(string(body))

	// Any token of the expected name counts as a signal, not proof. Pages
	// often render only part of the name.
	nameFound := false
	for _, part := range strings.Fields(strings.ToLower(expectedName)) {
		if strings.Contains(pageContent, part) {
			nameFound = true
			break
		}
	}

	log.Printf("✅ URL verified successfully, name found on page: %v\n", nameFound)

	return LivenessResult{
		Reachable:  true,
		HTTPStatus: http.StatusOK,
		NameFound:  nameFound,
	}
}
