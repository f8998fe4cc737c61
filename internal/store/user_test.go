// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create("  Test-Create@Store-Test.local ", "testpass123", "Test User", models.RoleMember)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want normalized %q", user.Email, email)
	}
	if user.Role != models.RoleMember {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleMember)
	}
	if user.TOTPEnabled {
		t.Error("expected totp_enabled=false for new user")
	}
	if user.PasswordHash == "" || user.PasswordHash == "testpass123" {
		t.Error("password must be stored hashed")
	}
}

func TestUserStoreFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-find@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if u, err := s.FindByEmail(email); err != nil || u != nil {
		t.Fatalf("FindByEmail (missing) = %v, %v; want nil, nil", u, err)
	}
	if u, err := s.FindByID(uuid.New()); err != nil || u != nil {
		t.Fatalf("FindByID (missing) = %v, %v; want nil, nil", u, err)
	}

	created, _ := s.Create(email, "pass", "Finder", models.RoleAdmin)

	byEmail, err := s.FindByEmail("TEST-FIND@store-test.local")
	if err != nil || byEmail == nil {
		t.Fatalf("FindByEmail = %v, %v", byEmail, err)
	}
	if byEmail.ID != created.ID {
		t.Error("FindByEmail returned another user")
	}

	byID, err := s.FindByID(created.ID)
	if err != nil || byID == nil {
		t.Fatalf("FindByID = %v, %v", byID, err)
	}
	if !byID.IsAdmin() {
		t.Error("expected admin role to round-trip")
	}
}

func TestUserStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-checkpw@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, _ := s.Create(email, "correct-password", "PW Check", models.RoleMember)

	if !s.CheckPassword(user, "correct-password") {
		t.Error("expected correct password to match")
	}
	if s.CheckPassword(user, "wrong-password") {
		t.Error("expected wrong password to fail")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-totp@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, _ := s.Create(email, "pass", "TOTP User", models.RoleMember)

	if err := s.SetTOTPSecret(user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	u, _ := s.FindByID(user.ID)
	if u.TOTPSecret == nil || *u.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Fatal("expected stored secret")
	}
	if u.Requires2FA() {
		t.Error("secret alone must not require 2FA")
	}

	if err := s.EnableTOTP(user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}
	u, _ = s.FindByID(user.ID)
	if !u.Requires2FA() {
		t.Error("expected 2FA to be required after enabling")
	}

	if err := s.ResetTOTP(user.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	u, _ = s.FindByID(user.ID)
	if u.TOTPSecret != nil || u.TOTPEnabled {
		t.Error("expected TOTP cleared after reset")
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-dup@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if _, err := s.Create(email, "pass", "First", models.RoleMember); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create("Test-Dup@store-test.local", "pass", "Second", models.RoleMember)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-delete@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, _ := s.Create(email, "pass", "Delete Me", models.RoleMember)
	before, _ := s.Count()

	if err := s.Delete(user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if u, _ := s.FindByID(user.ID); u != nil {
		t.Error("expected user to be gone")
	}
	if after, _ := s.Count(); after != before-1 {
		t.Errorf("Count = %d, want %d", after, before-1)
	}
}
