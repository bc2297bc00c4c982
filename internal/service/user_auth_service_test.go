package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rafflehouse-next/internal/config"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUserAuthTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "test-secret-key"
	cfg.UserJWT.ExpireHours = 24
	return NewUserAuthService(cfg, repository.NewUserRepository(db)), db
}

func TestLoginSuccess(t *testing.T) {
	svc, db := setupUserAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := models.User{Email: "player@example.com", PasswordHash: string(hash), ReferralKey: "ref-1"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	// 邮箱大小写与首尾空白不敏感
	got, token, expiresAt, err := svc.Login("  Player@Example.com ", "Secret123!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatalf("expected last login recorded")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupUserAuthTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := models.User{Email: "player@example.com", PasswordHash: string(hash), ReferralKey: "ref-1"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, _, _, err := svc.Login("player@example.com", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected auth failed for wrong password, got: %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "Secret123!"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected auth failed for unknown user, got: %v", err)
	}
	if _, _, _, err := svc.Login("not-an-email", "Secret123!"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected auth failed for malformed email, got: %v", err)
	}
}

func TestParseUserJWTRejectsTampering(t *testing.T) {
	svc, _ := setupUserAuthTest(t)

	user := &models.User{ID: 1, Email: "player@example.com"}
	token, _, err := svc.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	if _, err := svc.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}

	other := NewUserAuthService(func() *config.Config {
		cfg := &config.Config{}
		cfg.UserJWT.SecretKey = "other-secret"
		return cfg
	}(), nil)
	if _, err := other.ParseUserJWT(token); err == nil {
		t.Fatalf("expected token signed with different secret to be rejected")
	}
}
