package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockverify/credential-verifier/internal/models"
	"blockverify/credential-verifier/internal/repositories"
)

type fakeVerificationRepo struct {
	records   map[uuid.UUID]*models.VerificationRecord
	statuses  []models.VerificationJobStatus
	decisions map[uuid.UUID]*repositories.DecisionUpdateData
	errorMsgs map[uuid.UUID]string
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{
		records:   make(map[uuid.UUID]*models.VerificationRecord),
		decisions: make(map[uuid.UUID]*repositories.DecisionUpdateData),
		errorMsgs: make(map[uuid.UUID]string),
	}
}

func (f *fakeVerificationRepo) Create(record *models.VerificationRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeVerificationRepo) FindByID(id uuid.UUID) (*models.VerificationRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, assert.AnError
	}
	return record, nil
}

func (f *fakeVerificationRepo) UpdateStatus(_ uuid.UUID, status models.VerificationJobStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeVerificationRepo) UpdateDecision(id uuid.UUID, data *repositories.DecisionUpdateData) error {
	f.decisions[id] = data
	return nil
}

func (f *fakeVerificationRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	f.errorMsgs[id] = errorMsg
	return nil
}

func (f *fakeVerificationRepo) FindQueuedJobs(int) ([]models.VerificationRecord, error) {
	return nil, nil
}

func (f *fakeVerificationRepo) FindCompleted(int) ([]models.VerificationRecord, error) {
	return nil, nil
}

type fakeFileRepo struct {
	file *models.CertificateFile
}

func (f *fakeFileRepo) Create(file *models.CertificateFile) error { return nil }

func (f *fakeFileRepo) FindByID(uuid.UUID) (*models.CertificateFile, error) {
	if f.file == nil {
		return nil, assert.AnError
	}
	return f.file, nil
}

type fakeStorage struct {
	contents []byte
	err      error
}

func (f *fakeStorage) SaveFile(*multipart.FileHeader) (string, string, string, error) {
	return "", "", "", nil
}
func (f *fakeStorage) ReadFile(string) ([]byte, error) { return f.contents, f.err }
func (f *fakeStorage) DeleteFile(string) error         { return nil }
func (f *fakeStorage) EnsureUploadDir() error          { return nil }

type fakeDuplicates struct {
	match   *DuplicateMatch
	findErr error
	indexed []string
}

func (f *fakeDuplicates) FindDuplicate(_ context.Context, _ *CertificateFact) (*DuplicateMatch, error) {
	return f.match, f.findErr
}

func (f *fakeDuplicates) IndexFacts(_ context.Context, recordID, _ string, _ *CertificateFact) error {
	f.indexed = append(f.indexed, recordID)
	return nil
}

type fixedVerifier struct {
	result *VerificationResult
	err    error
}

func (f *fixedVerifier) Verify(_ context.Context, _ []byte, _, _ string) (*VerificationResult, error) {
	return f.result, f.err
}

func decidedResult(trustLevel string) *VerificationResult {
	status := StatusApproved
	switch trustLevel {
	case TrustMedium, TrustLow:
		status = StatusPending
	case TrustNone:
		status = StatusRejected
	}

	return &VerificationResult{
		Steps: []VerificationStep{{Index: 1, Name: "AI Vision Analysis", Status: StepSuccess}},
		FactSheet: &CertificateFact{
			RecipientName: "Navaneeth M",
			CourseName:    "Go Basics",
			Issuer:        "Coursera",
		},
		Decision: &FinalDecision{
			Status:             status,
			TrustLevel:         trustLevel,
			VerificationMethod: MethodNameMatch,
			Confidence:         90,
			Rejected:           status == StatusRejected,
		},
	}
}

func seedRecord(repo *fakeVerificationRepo) *models.VerificationRecord {
	record := &models.VerificationRecord{
		ID:          uuid.New(),
		StudentName: "Navaneeth M",
		StudentID:   "student-1",
		Status:      models.JobQueued,
	}
	repo.records[record.ID] = record
	return record
}

func TestFinalizeStorePolicy(t *testing.T) {
	cases := []struct {
		trustLevel     string
		wantStored     bool
		wantStatus     string
		wantAutoVerify bool
	}{
		{TrustHighest, true, CertStatusVerified, true},
		{TrustHigh, true, CertStatusVerified, true},
		{TrustMedium, true, CertStatusPendingApproval, false},
		{TrustLow, false, "", false},
		{TrustNone, false, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.trustLevel, func(t *testing.T) {
			repo := newFakeVerificationRepo()
			record := seedRecord(repo)
			store := NewMemoryCredentialStore()

			proc := NewProcessorService(repo, &fakeFileRepo{}, &fakeStorage{}, nil, &fakeDuplicates{}, store)
			_, err := proc.Finalize(context.Background(), record, decidedResult(tc.trustLevel))
			require.NoError(t, err)

			cert, err := store.GetCertificate(record.ID.String())
			if !tc.wantStored {
				assert.ErrorIs(t, err, ErrCertNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, cert.Status)
			assert.Equal(t, tc.wantAutoVerify, cert.AutoVerified)
			assert.Equal(t, "student-1", cert.OwnerID)
			assert.Equal(t, "Go Basics", cert.Name)
		})
	}
}

func TestFinalizePersistsDecision(t *testing.T) {
	repo := newFakeVerificationRepo()
	record := seedRecord(repo)
	result := decidedResult(TrustHighest)
	result.Platform = &PlatformInfo{Platform: PlatformCoursera, CertificateID: "ABC123", ValidFormat: true}

	proc := NewProcessorService(repo, &fakeFileRepo{}, &fakeStorage{}, nil, &fakeDuplicates{}, NewMemoryCredentialStore())
	_, err := proc.Finalize(context.Background(), record, result)
	require.NoError(t, err)

	update := repo.decisions[record.ID]
	require.NotNil(t, update)
	assert.Equal(t, StatusApproved, update.DecisionStatus)
	assert.Equal(t, TrustHighest, update.TrustLevel)
	assert.NotEmpty(t, update.StepsJSON)
	assert.NotEmpty(t, update.FactsJSON)
	require.NotNil(t, update.Platform)
	assert.Equal(t, PlatformCoursera, *update.Platform)
	require.NotNil(t, update.PlatformCertID)
	assert.Equal(t, "ABC123", *update.PlatformCertID)
}

func TestFinalizeDuplicateSignal(t *testing.T) {
	repo := newFakeVerificationRepo()
	record := seedRecord(repo)
	dup := &fakeDuplicates{match: &DuplicateMatch{RecordID: "earlier-record", Score: 0.99}}

	proc := NewProcessorService(repo, &fakeFileRepo{}, &fakeStorage{}, nil, dup, NewMemoryCredentialStore())
	match, err := proc.Finalize(context.Background(), record, decidedResult(TrustHighest))
	require.NoError(t, err)

	require.NotNil(t, match)
	assert.Equal(t, "earlier-record", match.RecordID)

	update := repo.decisions[record.ID]
	require.NotNil(t, update)
	require.NotNil(t, update.DuplicateOfID)
	assert.Equal(t, "earlier-record", *update.DuplicateOfID)

	// A duplicate flag never changes the decision itself.
	assert.Equal(t, StatusApproved, update.DecisionStatus)
}

func TestFinalizeDuplicateCheckFailureIsAdvisory(t *testing.T) {
	repo := newFakeVerificationRepo()
	record := seedRecord(repo)
	dup := &fakeDuplicates{findErr: assert.AnError}

	proc := NewProcessorService(repo, &fakeFileRepo{}, &fakeStorage{}, nil, dup, NewMemoryCredentialStore())
	match, err := proc.Finalize(context.Background(), record, decidedResult(TrustHighest))
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.NotNil(t, repo.decisions[record.ID])
}

func TestFinalizeIndexingSkipsRejected(t *testing.T) {
	repo := newFakeVerificationRepo()
	dup := &fakeDuplicates{}
	proc := NewProcessorService(repo, &fakeFileRepo{}, &fakeStorage{}, nil, dup, NewMemoryCredentialStore())

	approved := seedRecord(repo)
	_, err := proc.Finalize(context.Background(), approved, decidedResult(TrustHighest))
	require.NoError(t, err)
	assert.Equal(t, []string{approved.ID.String()}, dup.indexed)

	rejected := seedRecord(repo)
	_, err = proc.Finalize(context.Background(), rejected, decidedResult(TrustNone))
	require.NoError(t, err)
	assert.Len(t, dup.indexed, 1, "rejected submissions must not enter the index")
}

func TestProcessRecord(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		record := seedRecord(repo)
		fileID := uuid.New()
		record.CertificateFileID = fileID
		fileRepo := &fakeFileRepo{file: &models.CertificateFile{
			ID:          fileID,
			ContentType: "image/png",
			FilePath:    "/tmp/cert.png",
		}}

		proc := NewProcessorService(repo, fileRepo, &fakeStorage{contents: []byte("png")},
			&fixedVerifier{result: decidedResult(TrustHighest)}, &fakeDuplicates{}, NewMemoryCredentialStore())

		require.NoError(t, proc.ProcessRecord(context.Background(), record.ID))
		assert.Equal(t, []models.VerificationJobStatus{models.JobProcessing}, repo.statuses)
		assert.NotNil(t, repo.decisions[record.ID])
	})

	t.Run("verifier failure marks the job failed", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		record := seedRecord(repo)
		fileID := uuid.New()
		record.CertificateFileID = fileID
		fileRepo := &fakeFileRepo{file: &models.CertificateFile{ID: fileID, ContentType: "image/png"}}

		proc := NewProcessorService(repo, fileRepo, &fakeStorage{contents: []byte("png")},
			&fixedVerifier{err: &VisionServiceError{Err: assert.AnError}}, &fakeDuplicates{}, NewMemoryCredentialStore())

		err := proc.ProcessRecord(context.Background(), record.ID)
		require.Error(t, err)
		assert.NotEmpty(t, repo.errorMsgs[record.ID])
		assert.Nil(t, repo.decisions[record.ID])
	})
}
