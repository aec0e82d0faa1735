package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepositoryCreate(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	user := &User{
		Username:       "jack",
		Email:          "jack@example.com",
		PasswordHash:   "hash",
		OrganisationID: "org-default",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == "" {
		t.Error("Create did not assign an ID")
	}
	if user.Version != 1 {
		t.Errorf("Version = %d, want 1", user.Version)
	}

	got, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "jack" || got.Email != "jack@example.com" {
		t.Errorf("got %q/%q, want jack/jack@example.com", got.Username, got.Email)
	}
}

func TestUserRepositoryUniqueConstraints(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	seedTestUser(t, db, "jack")

	tests := []struct {
		name string
		user User
	}{
		{"duplicate username", User{Username: "jack", Email: "other@example.com"}},
		{"duplicate email", User{Username: "other", Email: "jack@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			u.PasswordHash = "hash"
			u.OrganisationID = "org-default"
			if err := repo.Create(context.Background(), &u); !errors.Is(err, ErrAccountExists) {
				t.Errorf("Create error = %v, want ErrAccountExists", err)
			}
		})
	}
}

func TestUserRepositoryGetByUsernameOrEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	seeded := seedTestUser(t, db, "jack")

	for _, identifier := range []string{"jack", "jack@example.com"} {
		got, err := repo.GetByUsernameOrEmail(context.Background(), identifier)
		if err != nil {
			t.Fatalf("GetByUsernameOrEmail(%q): %v", identifier, err)
		}
		if got.ID != seeded.ID {
			t.Errorf("GetByUsernameOrEmail(%q).ID = %q, want %q", identifier, got.ID, seeded.ID)
		}
	}

	if _, err := repo.GetByUsernameOrEmail(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: err = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryBumpVersion(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	user := seedTestUser(t, db, "jack")

	version, err := repo.BumpVersion(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("BumpVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	got, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("stored version = %d, want 2", got.Version)
	}

	if _, err := repo.BumpVersion(context.Background(), "usr-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("BumpVersion on missing user: err = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryListByOrganisation(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	seedTestUser(t, db, "jack")
	seedTestUser(t, db, "emma")

	users, err := repo.ListByOrganisation(context.Background(), "org-default")
	if err != nil {
		t.Fatalf("ListByOrganisation: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}

	empty, err := repo.ListByOrganisation(context.Background(), "org-missing")
	if err != nil {
		t.Fatalf("ListByOrganisation: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("got %v, want empty non-nil slice", empty)
	}
}

func TestUserRepositoryCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}

	seedTestUser(t, db, "jack")
	count, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}
