package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	CertStatusPendingApproval = "pending_approval"
	CertStatusVerified        = "verified"
	CertStatusRejected        = "rejected"

	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

var (
	ErrCertNotFound     = errors.New("certificate not found")
	ErrRequestNotFound  = errors.New("access request not found")
	ErrAlreadyResponded = errors.New("access request already responded to")
	ErrNotOwner         = errors.New("document does not belong to this owner")
)

// StoredCertificate is a certificate record as held by the credential
// ledger. Metadata carries the extracted fact sheet fields the ledger wants
// to display.
type StoredCertificate struct {
	CertID       string
	OwnerID      string
	Name         string
	Metadata     map[string]string
	AutoVerified bool
	Status       string
	StoredAt     time.Time
}

// AccessRequest is a verifier's pending consent request against a student's
// documents. Approval shares exactly the documents the student selected.
type AccessRequest struct {
	RequestID   string
	VerifierID  string
	OwnerID     string
	Message     string
	Status      string
	SharedDocs  []string
	RespondedAt time.Time
}

// CredentialStore is the consent-gated document sharing boundary. The
// production system backs this with an on-chain ledger; this in-memory
// implementation carries the same contract for dev and test.
type CredentialStore interface {
	StoreCertificate(ownerID, certID, name string, metadata map[string]string, autoVerified bool) error
	GetCertificate(certID string) (*StoredCertificate, error)
	SetStatus(certID, status string) error
	OwnerCertificates(ownerID string) []*StoredCertificate

	RequestAccess(verifierID, ownerID, message string) (string, error)
	RespondToAccessRequest(requestID string, approve bool, selectedDocIDs []string) error
	SharedDocuments(ownerID, verifierID string) []*StoredCertificate
	OwnerRequests(ownerID string) []*AccessRequest
}

type memoryCredentialStore struct {
	mu       sync.RWMutex
	certs    map[string]*StoredCertificate
	requests map[string]*AccessRequest
	// shares maps owner -> verifier -> shared cert IDs
	shares map[string]map[string][]string
	now    func() time.Time
}

func NewMemoryCredentialStore() CredentialStore {
	return &memoryCredentialStore{
		certs:    make(map[string]*StoredCertificate),
		requests: make(map[string]*AccessRequest),
		shares:   make(map[string]map[string][]string),
		now:      time.Now,
	}
}

// StoreCertificate implements CredentialStore. Auto-verified certificates are
// stored as verified; everything else waits for university approval.
func (s *memoryCredentialStore) StoreCertificate(ownerID, certID, name string, metadata map[string]string, autoVerified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.certs[certID]; exists {
		return fmt.Errorf("certificate %s already stored", certID)
	}

	status := CertStatusPendingApproval
	if autoVerified {
		status = CertStatusVerified
	}

	s.certs[certID] = &StoredCertificate{
		CertID:       certID,
		OwnerID:      ownerID,
		Name:         name,
		Metadata:     metadata,
		AutoVerified: autoVerified,
		Status:       status,
		StoredAt:     s.now(),
	}
	return nil
}

func (s *memoryCredentialStore) GetCertificate(certID string) (*StoredCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.certs[certID]
	if !ok {
		return nil, ErrCertNotFound
	}
	return cert, nil
}

func (s *memoryCredentialStore) SetStatus(certID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cert, ok := s.certs[certID]
	if !ok {
		return ErrCertNotFound
	}
	cert.Status = status
	return nil
}

func (s *memoryCredentialStore) OwnerCertificates(ownerID string) []*StoredCertificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var certs []*StoredCertificate
	for _, cert := range s.certs {
		if cert.OwnerID == ownerID {
			certs = append(certs, cert)
		}
	}
	return certs
}

// RequestAccess implements CredentialStore. The request stays pending until
// the owner responds; nothing is shared before that.
func (s *memoryCredentialStore) RequestAccess(verifierID, ownerID, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requestID := uuid.New().String()
	s.requests[requestID] = &AccessRequest{
		RequestID:  requestID,
		VerifierID: verifierID,
		OwnerID:    ownerID,
		Message:    message,
		Status:     RequestStatusPending,
	}
	return requestID, nil
}

// RespondToAccessRequest implements CredentialStore. Approving shares only
// the selected documents, each of which must belong to the request's owner.
// A request can be responded to at most once.
func (s *memoryCredentialStore) RespondToAccessRequest(requestID string, approve bool, selectedDocIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != RequestStatusPending {
		return ErrAlreadyResponded
	}

	if !approve {
		req.Status = RequestStatusRejected
		req.RespondedAt = s.now()
		return nil
	}

	for _, docID := range selectedDocIDs {
		cert, ok := s.certs[docID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrCertNotFound, docID)
		}
		if cert.OwnerID != req.OwnerID {
			return fmt.Errorf("%w: %s", ErrNotOwner, docID)
		}
	}

	req.Status = RequestStatusApproved
	req.SharedDocs = append([]string(nil), selectedDocIDs...)
	req.RespondedAt = s.now()

	byVerifier, ok := s.shares[req.OwnerID]
	if !ok {
		byVerifier = make(map[string][]string)
		s.shares[req.OwnerID] = byVerifier
	}
	byVerifier[req.VerifierID] = appendUnique(byVerifier[req.VerifierID], selectedDocIDs)
	return nil
}

func (s *memoryCredentialStore) SharedDocuments(ownerID, verifierID string) []*StoredCertificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*StoredCertificate
	for _, certID := range s.shares[ownerID][verifierID] {
		if cert, ok := s.certs[certID]; ok {
			docs = append(docs, cert)
		}
	}
	return docs
}

func (s *memoryCredentialStore) OwnerRequests(ownerID string) []*AccessRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reqs []*AccessRequest
	for _, req := range s.requests {
		if req.OwnerID == ownerID {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

func appendUnique(existing []string, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range extra {
		if !seen[id] {
			existing = append(existing, id)
			seen[id] = true
		}
	}
	return existing
}
