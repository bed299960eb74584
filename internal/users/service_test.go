package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/security"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{Pepper: "unit-test-pepper", BcryptCost: 4}
}

func TestNormalizeUsername(t *testing.T) {
	name, err := normalizeUsername("  alice  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "alice" {
		t.Fatalf("expected trimmed name, got %q", name)
	}

	_, err = normalizeUsername("   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestApplyUpdateToUser(t *testing.T) {
	cfg := testAuthConfig()
	user := &models.User{ID: 3, Name: "alice", Email: "old@example.com", Password: "old-digest"}

	newName := " alice2 "
	newEmail := " alice2@example.com "
	newPassword := "s3cret"
	err := applyUpdateToUser(user, UpdateInput{Name: &newName, Email: &newEmail, Password: &newPassword}, cfg)
	if err != nil {
		t.Fatalf("applyUpdateToUser: %v", err)
	}

	if user.Name != "alice2" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Email != "alice2@example.com" {
		t.Fatalf("expected trimmed email, got %q", user.Email)
	}
	if user.Password == "old-digest" || user.Password == newPassword {
		t.Fatal("password must be replaced with a fresh digest")
	}
	if err := security.VerifyPassword(newPassword, user.Password, cfg); err != nil {
		t.Fatalf("new digest does not verify: %v", err)
	}
}

func TestApplyUpdateToUser_PartialLeavesRest(t *testing.T) {
	user := &models.User{ID: 3, Name: "alice", Email: "a@example.com", Password: "digest"}

	email := "b@example.com"
	if err := applyUpdateToUser(user, UpdateInput{Email: &email}, testAuthConfig()); err != nil {
		t.Fatalf("applyUpdateToUser: %v", err)
	}
	if user.Name != "alice" || user.Password != "digest" {
		t.Fatal("fields not present in the update must be untouched")
	}
	if user.Email != "b@example.com" {
		t.Fatalf("expected updated email, got %q", user.Email)
	}
}

func setupUserService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	// a single pooled connection keeps every statement on the same
	// in-memory database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.Exec(`CREATE TABLE users (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL DEFAULT '',
  password TEXT NOT NULL
)`).Error)
	require.NoError(t, gdb.Exec(`CREATE TABLE permissions (
  user_id INTEGER PRIMARY KEY,
  admin BOOLEAN NOT NULL,
  view_pending BOOLEAN NOT NULL,
  view_received BOOLEAN NOT NULL,
  edit_pending BOOLEAN NOT NULL,
  create_orders BOOLEAN NOT NULL,
  edit_received BOOLEAN NOT NULL,
  remove_orders BOOLEAN NOT NULL,
  edit_products BOOLEAN NOT NULL,
  view_products BOOLEAN NOT NULL,
  view_suppliers BOOLEAN NOT NULL
)`).Error)
	require.NoError(t, gdb.Exec(`CREATE TABLE preferences (
  user_id INTEGER PRIMARY KEY
)`).Error)

	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	svc, err := NewService(NewRepository(gdb), permission.NewRepository(gdb), db.FromGorm(gdb), testAuthConfig())
	require.NoError(t, err)
	return svc, gdb
}

func TestBootstrapCreatesFirstAccount(t *testing.T) {
	svc, gdb := setupUserService(t)
	ctx := context.Background()

	created, err := svc.Bootstrap(ctx, CredentialsInput{Name: " alice ", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, BootstrapUserID, created.ID)
	require.Equal(t, "alice", created.Name)

	var stored models.User
	require.NoError(t, gdb.First(&stored, "id = ?", BootstrapUserID).Error)
	require.NotEqual(t, "hunter22", stored.Password, "the plaintext secret must never be stored")
	require.NoError(t, security.VerifyPassword("hunter22", stored.Password, testAuthConfig()))

	var perm models.Permission
	require.NoError(t, gdb.First(&perm, "user_id = ?", BootstrapUserID).Error)
	require.True(t, perm.Admin)
	require.True(t, perm.ViewPending)
	require.True(t, perm.ViewReceived)
	require.True(t, perm.EditPending)
	require.True(t, perm.CreateOrders)
	require.True(t, perm.EditReceived)
	require.True(t, perm.RemoveOrders)
	require.True(t, perm.EditProducts)
	require.True(t, perm.ViewProducts)
	require.True(t, perm.ViewSuppliers)

	var prefCount int64
	require.NoError(t, gdb.Model(&models.Preference{}).Where("user_id = ?", BootstrapUserID).Count(&prefCount).Error)
	require.EqualValues(t, 1, prefCount, "bootstrap must create the preference row with the account")
}

func TestBootstrapRejectedOnceUserExists(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Bootstrap(ctx, CredentialsInput{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Bootstrap(ctx, CredentialsInput{Name: "mallory", Password: "hunter22"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestSignupAllocatesFreshID(t *testing.T) {
	svc, gdb := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Bootstrap(ctx, CredentialsInput{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)

	bob, err := svc.Signup(ctx, SignupInput{Name: "bob", Password: "hunter23"})
	require.NoError(t, err)
	require.Equal(t, int32(1), bob.ID, "signup must allocate from 1, never reuse the reserved id")

	var perm models.Permission
	require.NoError(t, gdb.First(&perm, "user_id = ?", bob.ID).Error)
	require.False(t, perm.Admin)
	require.False(t, perm.ViewProducts)

	var prefCount int64
	require.NoError(t, gdb.Model(&models.Preference{}).Where("user_id = ?", bob.ID).Count(&prefCount).Error)
	require.EqualValues(t, 1, prefCount)

	_, err = svc.Signup(ctx, SignupInput{Name: "bob", Password: "hunter24"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestDeleteCascadesAccountRows(t *testing.T) {
	svc, gdb := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Bootstrap(ctx, CredentialsInput{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)
	bob, err := svc.Signup(ctx, SignupInput{Name: "bob", Password: "hunter23"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, bob.ID))

	var users, perms, prefs int64
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", bob.ID).Count(&users).Error)
	require.NoError(t, gdb.Model(&models.Permission{}).Where("user_id = ?", bob.ID).Count(&perms).Error)
	require.NoError(t, gdb.Model(&models.Preference{}).Where("user_id = ?", bob.ID).Count(&prefs).Error)
	require.Zero(t, users+perms+prefs, "delete must remove all three account rows")

	var aliceRows int64
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", BootstrapUserID).Count(&aliceRows).Error)
	require.EqualValues(t, 1, aliceRows, "other accounts must be untouched")

	err = svc.Delete(ctx, bob.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestBootstrapPermissionsAllSet(t *testing.T) {
	perm := allCapabilities(BootstrapUserID)
	if perm.UserID != 0 {
		t.Fatalf("bootstrap permission must belong to user 0, got %d", perm.UserID)
	}
	flags := []bool{
		perm.Admin, perm.ViewPending, perm.ViewReceived, perm.EditPending,
		perm.CreateOrders, perm.EditReceived, perm.RemoveOrders,
		perm.EditProducts, perm.ViewProducts, perm.ViewSuppliers,
	}
	for i, f := range flags {
		if !f {
			t.Fatalf("bootstrap flag %d must be true", i)
		}
	}
}

func TestSignupPermissionsAllClear(t *testing.T) {
	perm := noCapabilities(7)
	flags := []bool{
		perm.Admin, perm.ViewPending, perm.ViewReceived, perm.EditPending,
		perm.CreateOrders, perm.EditReceived, perm.RemoveOrders,
		perm.EditProducts, perm.ViewProducts, perm.ViewSuppliers,
	}
	for i, f := range flags {
		if f {
			t.Fatalf("signup flag %d must be false", i)
		}
	}
}
