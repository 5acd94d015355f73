package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/sse"
	"github.com/parolegy/parolegy-backend/internal/types"
)

// memoryBucket keeps uploaded objects in a map so pipeline tests can assert
// on stored PDFs without GCS.
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}}
}

func (mb *memoryBucket) key(category BucketCategory, key string) string {
	return string(category) + "/" + key
}

func (mb *memoryBucket) UploadFile(ctx context.Context, tx *gorm.DB, category BucketCategory, key string, file io.Reader) error {
	if mb.failPut {
		return fmt.Errorf("bucket unavailable")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.objects[mb.key(category, key)] = data
	return nil
}

func (mb *memoryBucket) DownloadFile(ctx context.Context, tx *gorm.DB, category BucketCategory, key string) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	data, ok := mb.objects[mb.key(category, key)]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (mb *memoryBucket) DeleteFile(ctx context.Context, tx *gorm.DB, category BucketCategory, key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	delete(mb.objects, mb.key(category, key))
	return nil
}

func (mb *memoryBucket) GetPublicURL(category BucketCategory, key string) string {
	return "memory://" + mb.key(category, key)
}

type stubGenerator struct {
	raw      string
	text     string
	err      error
	lastUser string
}

func (sg *stubGenerator) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	sg.lastUser = user
	if sg.err != nil {
		return "", sg.err
	}
	return sg.raw, nil
}

func (sg *stubGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	sg.lastUser = user
	if sg.err != nil {
		return "", sg.err
	}
	return sg.text, nil
}

type generationFixture struct {
	db      *gorm.DB
	svc     CampaignGenerationService
	bucket  *memoryBucket
	gen     *stubGenerator
	runRepo repos.CampaignGenerationRunRepo

	userID uuid.UUID
	caseID uuid.UUID
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	t.Setenv("SMTP_HOST", "")
	t.Setenv("DOCUMENT_POLICY_PATH", "")

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.Case{},
		&types.Assessment{},
		&types.Document{},
		&types.Campaign{},
		&types.CampaignGenerationRun{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := testLogger(t)
	hub := sse.NewSSEHub(log)
	policy, err := NewDocumentPolicy(log)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	bucket := newMemoryBucket()
	gen := &stubGenerator{raw: `{"case_summary":{"client_name":"John Smith","tdcj_number":"0123456"}}`}
	runRepo := repos.NewCampaignGenerationRunRepo(db, log)

	svc := NewCampaignGenerationService(
		db, log, hub,
		repos.NewCaseRepo(db, log),
		repos.NewAssessmentRepo(db, log),
		repos.NewDocumentRepo(db, log),
		repos.NewCampaignRepo(db, log),
		runRepo,
		repos.NewUserRepo(db, log),
		bucket,
		gen,
		NewEmailService(log),
		policy,
	)

	fx := &generationFixture{
		db:      db,
		svc:     svc,
		bucket:  bucket,
		gen:     gen,
		runRepo: runRepo,
		userID:  uuid.New(),
		caseID:  uuid.New(),
	}
	fx.seed(t)
	return fx
}

func (fx *generationFixture) seed(t *testing.T) {
	t.Helper()
	now := time.Now()
	user := &types.User{
		ID:        fx.userID,
		Email:     "owner@example.com",
		Password:  "x",
		FirstName: "Casey",
		LastName:  "Owner",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fx.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	c := &types.Case{
		ID:         fx.caseID,
		UserID:     fx.userID,
		ClientName: "John Smith",
		TDCJNumber: "0123456",
		Status:     CaseStatusAssessmentComplete,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := fx.db.Create(c).Error; err != nil {
		t.Fatalf("seed case: %v", err)
	}
	completedAt := now
	assessment := &types.Assessment{
		ID:          uuid.New(),
		CaseID:      fx.caseID,
		Responses:   datatypes.JSON([]byte(`{"offense":"theft","remorse":"deep"}`)),
		Completed:   true,
		CompletedAt: &completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := fx.db.Create(assessment).Error; err != nil {
		t.Fatalf("seed assessment: %v", err)
	}
	fx.seedDocuments(t, "SUPPORT_LETTER", 3)
	fx.seedDocuments(t, "PHOTO", 10)
}

func (fx *generationFixture) seedDocuments(t *testing.T, docType string, n int) {
	t.Helper()
	now := time.Now()
	for i := 0; i < n; i++ {
		doc := &types.Document{
			ID:          uuid.New(),
			CaseID:      fx.caseID,
			Type:        docType,
			FileName:    fmt.Sprintf("%s_%d.pdf", strings.ToLower(docType), i),
			ContentType: "application/pdf",
			SizeBytes:   128,
			BucketKey:   fmt.Sprintf("%s/%d", fx.caseID, i),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := fx.db.Create(doc).Error; err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}
}

func (fx *generationFixture) loadCampaign(t *testing.T, id uuid.UUID) *types.Campaign {
	t.Helper()
	var campaign types.Campaign
	if err := fx.db.Where("id = ?", id).First(&campaign).Error; err != nil {
		t.Fatalf("load campaign: %v", err)
	}
	return &campaign
}

func (fx *generationFixture) loadRun(t *testing.T, id uuid.UUID) *types.CampaignGenerationRun {
	t.Helper()
	var run types.CampaignGenerationRun
	if err := fx.db.Where("id = ?", id).First(&run).Error; err != nil {
		t.Fatalf("load run: %v", err)
	}
	return &run
}

func (fx *generationFixture) loadCase(t *testing.T) *types.Case {
	t.Helper()
	var c types.Case
	if err := fx.db.Where("id = ?", fx.caseID).First(&c).Error; err != nil {
		t.Fatalf("load case: %v", err)
	}
	return &c
}

// processRun is exercised directly because the claim query relies on
// SKIP LOCKED, which sqlite does not support. The run is marked running
// first, as ClaimNextRunnable would have done.
func (fx *generationFixture) runPipeline(t *testing.T, run *types.CampaignGenerationRun) {
	t.Helper()
	if err := fx.runRepo.UpdateFields(context.Background(), nil, run.ID, map[string]interface{}{
		"status":    "running",
		"attempts":  run.Attempts + 1,
		"locked_at": time.Now(),
	}); err != nil {
		t.Fatalf("mark run running: %v", err)
	}
	impl, ok := fx.svc.(*campaignGenerationService)
	if !ok {
		t.Fatalf("unexpected service implementation")
	}
	impl.processRun(context.Background(), run)
}

func TestEnqueueForCase(t *testing.T) {
	fx := newGenerationFixture(t)

	campaign, run, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("EnqueueForCase: %v", err)
	}
	if campaign.Version != 1 {
		t.Fatalf("version=%d, want 1", campaign.Version)
	}
	if campaign.Status != CampaignStatusGenerating {
		t.Fatalf("campaign status=%q", campaign.Status)
	}
	if run.Status != "queued" || run.Stage != "prompt" {
		t.Fatalf("run status=%q stage=%q", run.Status, run.Stage)
	}
	if got := fx.loadCase(t).Status; got != CaseStatusGenerating {
		t.Fatalf("case status=%q, want %q", got, CaseStatusGenerating)
	}

	second, _, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("second version=%d, want 2", second.Version)
	}
}

func TestEnqueueForCaseRejectsOtherUser(t *testing.T) {
	fx := newGenerationFixture(t)
	if _, _, err := fx.svc.EnqueueForCase(context.Background(), uuid.New(), fx.caseID); err == nil {
		t.Fatalf("expected error for non-owner")
	}
}

func TestEnqueueForCaseRequiresCompletedAssessment(t *testing.T) {
	fx := newGenerationFixture(t)
	if err := fx.db.Model(&types.Assessment{}).
		Where("case_id = ?", fx.caseID).
		Update("completed", false).Error; err != nil {
		t.Fatalf("update assessment: %v", err)
	}
	_, _, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err == nil || !strings.Contains(err.Error(), "assessment") {
		t.Fatalf("err=%v, want assessment error", err)
	}
}

func TestEnqueueForCaseEnforcesDocumentMinimums(t *testing.T) {
	fx := newGenerationFixture(t)
	if err := fx.db.Where("case_id = ? AND type = ?", fx.caseID, "PHOTO").
		Delete(&types.Document{}).Error; err != nil {
		t.Fatalf("delete photos: %v", err)
	}
	_, _, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err == nil || !strings.Contains(err.Error(), "PHOTO") {
		t.Fatalf("err=%v, want PHOTO eligibility error", err)
	}
}

func TestProcessRunSuccess(t *testing.T) {
	fx := newGenerationFixture(t)
	campaign, run, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("EnqueueForCase: %v", err)
	}

	fx.runPipeline(t, run)

	got := fx.loadRun(t, run.ID)
	if got.Status != "succeeded" || got.Stage != "done" || got.Progress != 100 {
		t.Fatalf("run status=%q stage=%q progress=%d error=%q", got.Status, got.Stage, got.Progress, got.Error)
	}
	if got.HeartbeatAt == nil {
		t.Fatalf("running stages did not refresh heartbeat_at")
	}

	stored := fx.loadCampaign(t, campaign.ID)
	if stored.Status != CampaignStatusReady {
		t.Fatalf("campaign status=%q error=%q", stored.Status, stored.Error)
	}
	if stored.PDFBucketKey == "" {
		t.Fatalf("campaign has no PDF key")
	}
	if len(stored.Blueprint) == 0 {
		t.Fatalf("campaign blueprint not persisted")
	}
	if !bytes.Contains(stored.Blueprint, []byte(`"client_name":"John Smith"`)) {
		t.Fatalf("blueprint lost generated client name: %s", stored.Blueprint)
	}

	pdf, dErr := fx.bucket.DownloadFile(context.Background(), nil, BucketCategoryCampaign, stored.PDFBucketKey)
	if dErr != nil {
		t.Fatalf("stored PDF: %v", dErr)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("stored object is not a PDF")
	}
	if got := fx.loadCase(t).Status; got != CaseStatusCampaignReady {
		t.Fatalf("case status=%q, want %q", got, CaseStatusCampaignReady)
	}
}

func TestProcessRunGenerationFailure(t *testing.T) {
	fx := newGenerationFixture(t)
	fx.gen.err = fmt.Errorf("%w: upstream 502", ErrGenerationUnavailable)

	campaign, run, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("EnqueueForCase: %v", err)
	}
	fx.runPipeline(t, run)

	got := fx.loadRun(t, run.ID)
	if got.Status != "failed" || got.Stage != "generate" {
		t.Fatalf("run status=%q stage=%q", got.Status, got.Stage)
	}
	if !strings.Contains(got.Error, "upstream 502") {
		t.Fatalf("run error=%q", got.Error)
	}
	if got.LastErrorAt == nil {
		t.Fatalf("last_error_at not set")
	}

	stored := fx.loadCampaign(t, campaign.ID)
	if stored.Status != CampaignStatusFailed {
		t.Fatalf("campaign status=%q", stored.Status)
	}
	if got := fx.loadCase(t).Status; got != CaseStatusAssessmentComplete {
		t.Fatalf("case status=%q, want %q", got, CaseStatusAssessmentComplete)
	}
}

func TestProcessRunMalformedGenerationStillSucceeds(t *testing.T) {
	fx := newGenerationFixture(t)
	fx.gen.raw = "Here is the campaign you asked for!"

	campaign, run, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("EnqueueForCase: %v", err)
	}
	fx.runPipeline(t, run)

	got := fx.loadRun(t, run.ID)
	if got.Status != "succeeded" {
		t.Fatalf("run status=%q error=%q; prose output must normalize, not fail", got.Status, got.Error)
	}
	stored := fx.loadCampaign(t, campaign.ID)
	if stored.Status != CampaignStatusReady {
		t.Fatalf("campaign status=%q", stored.Status)
	}
	// Defaults carry the render when the generator returns garbage.
	if !bytes.Contains(stored.Blueprint, []byte(`"tagline":"Parole Campaign"`)) {
		t.Fatalf("blueprint missing defaults: %s", stored.Blueprint)
	}
}

func TestProcessRunStoreFailure(t *testing.T) {
	fx := newGenerationFixture(t)
	fx.bucket.failPut = true

	campaign, run, err := fx.svc.EnqueueForCase(context.Background(), fx.userID, fx.caseID)
	if err != nil {
		t.Fatalf("EnqueueForCase: %v", err)
	}
	fx.runPipeline(t, run)

	got := fx.loadRun(t, run.ID)
	if got.Status != "failed" || got.Stage != "store" {
		t.Fatalf("run status=%q stage=%q", got.Status, got.Stage)
	}
	if fx.loadCampaign(t, campaign.ID).Status != CampaignStatusFailed {
		t.Fatalf("campaign not marked failed")
	}
}
