package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/types"
)

func testDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Case{},
		&types.Assessment{},
		&types.Document{},
		&types.Campaign{},
		&types.CampaignGenerationRun{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return db, log
}

func seedUser(t *testing.T, db *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCase(t *testing.T, db *gorm.DB, userID uuid.UUID) *types.Case {
	t.Helper()
	c := &types.Case{
		ID:         uuid.New(),
		UserID:     userID,
		ClientName: "John Smith",
		Status:     "intake",
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed case: %v", err)
	}
	return c
}

func TestCaseRepoOwnership(t *testing.T) {
	db, log := testDB(t)
	repo := NewCaseRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	c := seedCase(t, db, owner.ID)

	t.Run("owner_sees_case", func(t *testing.T) {
		got, err := repo.GetOwned(ctx, nil, c.ID, owner.ID)
		if err != nil {
			t.Fatalf("GetOwned: %v", err)
		}
		if got == nil || got.ID != c.ID {
			t.Fatalf("got=%v, want case %s", got, c.ID)
		}
	})

	t.Run("stranger_sees_nothing", func(t *testing.T) {
		got, err := repo.GetOwned(ctx, nil, c.ID, stranger.ID)
		if err != nil {
			t.Fatalf("GetOwned: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil for non-owner, got %v", got)
		}
	})

	t.Run("soft_delete_hides_case", func(t *testing.T) {
		if err := repo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{c.ID}); err != nil {
			t.Fatalf("SoftDeleteByIDs: %v", err)
		}
		got, err := repo.GetOwned(ctx, nil, c.ID, owner.ID)
		if err != nil {
			t.Fatalf("GetOwned: %v", err)
		}
		if got != nil {
			t.Fatalf("soft-deleted case still visible")
		}
	})
}

func TestCaseRepoUpdateFields(t *testing.T) {
	db, log := testDB(t)
	repo := NewCaseRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	c := seedCase(t, db, owner.ID)

	if err := repo.UpdateFields(ctx, nil, c.ID, map[string]interface{}{
		"status":      "assessment_complete",
		"tdcj_number": "0123456",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetOwned(ctx, nil, c.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if got.Status != "assessment_complete" || got.TDCJNumber != "0123456" {
		t.Fatalf("updates not applied: %+v", got)
	}
}

func TestAssessmentRepoUpsertFlow(t *testing.T) {
	db, log := testDB(t)
	repo := NewAssessmentRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	c := seedCase(t, db, owner.ID)

	if got, err := repo.GetByCaseID(ctx, nil, c.ID); err != nil || got != nil {
		t.Fatalf("GetByCaseID before create: got=%v err=%v", got, err)
	}

	a := &types.Assessment{
		ID:        uuid.New(),
		CaseID:    c.ID,
		Responses: datatypes.JSON([]byte(`{"offense":"theft"}`)),
	}
	if _, err := repo.Create(ctx, nil, []*types.Assessment{a}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now()
	if err := repo.UpdateFields(ctx, nil, a.ID, map[string]interface{}{
		"completed":    true,
		"completed_at": now,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByCaseID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("GetByCaseID: %v", err)
	}
	if got == nil || !got.Completed || got.CompletedAt == nil {
		t.Fatalf("assessment not completed: %+v", got)
	}
}

func TestDocumentRepoCounts(t *testing.T) {
	db, log := testDB(t)
	repo := NewDocumentRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	c := seedCase(t, db, owner.ID)

	var docs []*types.Document
	for i := 0; i < 3; i++ {
		docs = append(docs, &types.Document{
			ID:       uuid.New(),
			CaseID:   c.ID,
			Type:     "SUPPORT_LETTER",
			FileName: "letter.pdf",
		})
	}
	docs = append(docs, &types.Document{
		ID:       uuid.New(),
		CaseID:   c.ID,
		Type:     "PHOTO",
		FileName: "photo.jpg",
	})
	if _, err := repo.Create(ctx, nil, docs); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.CountByCaseIDAndType(ctx, nil, c.ID, "SUPPORT_LETTER")
	if err != nil {
		t.Fatalf("CountByCaseIDAndType: %v", err)
	}
	if n != 3 {
		t.Fatalf("count=%d, want 3", n)
	}

	if err := repo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{docs[0].ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	n, err = repo.CountByCaseIDAndType(ctx, nil, c.ID, "SUPPORT_LETTER")
	if err != nil {
		t.Fatalf("CountByCaseIDAndType: %v", err)
	}
	if n != 2 {
		t.Fatalf("count after delete=%d, want 2", n)
	}
}

func TestCampaignRepoVersioning(t *testing.T) {
	db, log := testDB(t)
	repo := NewCampaignRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	c := seedCase(t, db, owner.ID)

	v, err := repo.MaxVersionByCaseID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("MaxVersionByCaseID: %v", err)
	}
	if v != 0 {
		t.Fatalf("max version for empty case=%d, want 0", v)
	}

	for i := 1; i <= 3; i++ {
		campaign := &types.Campaign{
			ID:      uuid.New(),
			CaseID:  c.ID,
			Version: i,
			Status:  "ready",
		}
		if _, err := repo.Create(ctx, nil, []*types.Campaign{campaign}); err != nil {
			t.Fatalf("Create v%d: %v", i, err)
		}
	}

	v, err = repo.MaxVersionByCaseID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("MaxVersionByCaseID: %v", err)
	}
	if v != 3 {
		t.Fatalf("max version=%d, want 3", v)
	}

	latest, err := repo.GetLatestByCaseID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("GetLatestByCaseID: %v", err)
	}
	if latest == nil || latest.Version != 3 {
		t.Fatalf("latest=%+v, want version 3", latest)
	}

	all, err := repo.GetByCaseID(ctx, nil, c.ID)
	if err != nil {
		t.Fatalf("GetByCaseID: %v", err)
	}
	if len(all) != 3 || all[0].Version != 3 {
		t.Fatalf("campaigns not ordered by version DESC: %+v", all)
	}
}

func TestUserTokenRepoRevocation(t *testing.T) {
	db, log := testDB(t)
	repo := NewUserTokenRepo(db, log)
	ctx := context.Background()

	owner := seedUser(t, db)
	token := &types.UserToken{
		ID:        uuid.New(),
		UserID:    owner.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if _, err := repo.Create(ctx, nil, []*types.UserToken{token}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByTokens(ctx, nil, []string{token.Token})
	if err != nil || len(found) != 1 {
		t.Fatalf("GetByTokens: found=%v err=%v", found, err)
	}
	if found[0].RevokedAt != nil {
		t.Fatalf("fresh token already revoked")
	}

	if err := repo.RevokeByTokens(ctx, nil, []string{token.Token}); err != nil {
		t.Fatalf("RevokeByTokens: %v", err)
	}
	found, err = repo.GetByTokens(ctx, nil, []string{token.Token})
	if err != nil || len(found) != 1 {
		t.Fatalf("GetByTokens after revoke: found=%v err=%v", found, err)
	}
	if found[0].RevokedAt == nil {
		t.Fatalf("token not revoked")
	}
}
