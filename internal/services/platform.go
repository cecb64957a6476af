package services

import (
	"regexp"
	"strings"
)

const (
	PlatformHackerRank   = "hackerrank"
	PlatformCoursera     = "coursera"
	PlatformCredly       = "credly"
	PlatformUdemy        = "udemy"
	PlatformLinkedIn     = "linkedin"
	PlatformGoogle       = "google"
	PlatformFreeCodeCamp = "freecodecamp"
	PlatformKaggle       = "kaggle"
	PlatformGitHub       = "github"
	PlatformIEEE         = "ieee"
)

// PlatformInfo is advisory metadata about the issuing platform, derived from
// the verification URL. It never changes the trust decision.
type PlatformInfo struct {
	Platform      string `json:"platform"`
	CertificateID string `json:"certificateId,omitempty"`
	ValidFormat   bool   `json:"validFormat"`
}

// PlatformDetectorService recognizes well-known certificate platforms from
// verification URLs and extracts the platform's certificate identifier.
type PlatformDetectorService interface {
	Detect(url string) (PlatformInfo, bool)
}

type platformDetectorService struct{}

func NewPlatformDetectorService() PlatformDetectorService {
	return &platformDetectorService{}
}

var (
	hackerRankIDRe   = regexp.MustCompile(`certificates/([a-zA-Z0-9]+)`)
	courseraIDRe     = regexp.MustCompile(`verify/([a-zA-Z0-9]+)`)
	credlyIDRe       = regexp.MustCompile(`badges/([a-zA-Z0-9-]+)`)
	freeCodeCampIDRe = regexp.MustCompile(`certification/([^/]+)/([^/]+)`)

	hackerRankFmtRe   = regexp.MustCompile(`^https://(www\.)?hackerrank\.com/certificates/[a-zA-Z0-9]+$`)
	courseraFmtRe     = regexp.MustCompile(`^https://(www\.)?coursera\.org/account/accomplishments/(verify|certificate)/[a-zA-Z0-9]+$`)
	credlyFmtRe       = regexp.MustCompile(`^https://(www\.)?credly\.com/badges/[a-zA-Z0-9-]+$`)
	freeCodeCampFmtRe = regexp.MustCompile(`^https://(www\.)?freecodecamp\.org/certification/[^/]+/[^/]+$`)
)

// Detect implements PlatformDetectorService. The second return value is false
// when the URL belongs to no recognized platform.
func (p *platformDetectorService) Detect(url string) (PlatformInfo, bool) {
	platform := detectPlatform(url)
	if platform == "" {
		return PlatformInfo{}, false
	}

	info := PlatformInfo{
		Platform:      platform,
		CertificateID: extractCertificateID(url, platform),
		ValidFormat:   validFormat(url, platform),
	}
	return info, true
}

func detectPlatform(url string) string {
	urlLower := strings.ToLower(url)

	switch {
	case strings.Contains(urlLower, "hackerrank.com"):
		return PlatformHackerRank
	case strings.Contains(urlLower, "coursera.org"):
		return PlatformCoursera
	case strings.Contains(urlLower, "credly.com"):
		return PlatformCredly
	case strings.Contains(urlLower, "udemy.com"):
		return PlatformUdemy
	case strings.Contains(urlLower, "linkedin.com/learning"):
		return PlatformLinkedIn
	case strings.Contains(urlLower, "google.com"), strings.Contains(urlLower, "grow.google"):
		return PlatformGoogle
	case strings.Contains(urlLower, "freecodecamp.org"):
		return PlatformFreeCodeCamp
	case strings.Contains(urlLower, "kaggle.com"):
		return PlatformKaggle
	case strings.Contains(urlLower, "github.com"):
		return PlatformGitHub
	case strings.Contains(urlLower, "ieee.org"):
		return PlatformIEEE
	default:
		return ""
	}
}

func extractCertificateID(url, platform string) string {
	switch platform {
	case PlatformHackerRank:
		if m := hackerRankIDRe.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	case PlatformCoursera:
		if m := courseraIDRe.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	case PlatformCredly:
		if m := credlyIDRe.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	case PlatformFreeCodeCamp:
		if m := freeCodeCampIDRe.FindStringSubmatch(url); m != nil {
			return m[1] + "/" + m[2]
		}
	}
	return ""
}

// validFormat checks the canonical URL shape for platforms with a known
// format; other recognized platforms pass by default.
func validFormat(url, platform string) bool {
	switch platform {
	case PlatformHackerRank:
		return hackerRankFmtRe.MatchString(url)
	case PlatformCoursera:
		return courseraFmtRe.MatchString(url)
	case PlatformCredly:
		return credlyFmtRe.MatchString(url)
	case PlatformFreeCodeCamp:
		return freeCodeCampFmtRe.MatchString(url)
	default:
		return true
	}
}
