package org

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/database"
	_ "github.com/rallypoint-io/rallypoint-core/migrations"
)

// testDB opens a temporary SQLite database with the full schema applied
// through the real migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "org-test.db"),
		WALMode:     true,
		BusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	return db.DB
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedOrg creates an organisation for tests to hang entities off.
func seedOrg(t *testing.T, db *sql.DB, name string) *Organisation {
	t.Helper()

	o := &Organisation{Name: name}
	if err := NewOrganisationRepository(db).Create(context.Background(), o); err != nil {
		t.Fatalf("seeding organisation %s: %v", name, err)
	}
	return o
}

// seedUser creates a user in the given organisation. The password hash
// is a placeholder; these tests never verify credentials.
func seedUser(t *testing.T, db *sql.DB, orgID, username string) *auth.User {
	t.Helper()

	u := &auth.User{
		Username:       username,
		Email:          username + "@example.com",
		PasswordHash:   "hash",
		OrganisationID: orgID,
	}
	if err := auth.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return u
}

// seedGroup creates a group owned by the given user.
func seedGroup(t *testing.T, db *sql.DB, orgID, createdBy, name string) *Group {
	t.Helper()

	g := &Group{Name: name, OrganisationID: orgID, CreatedBy: createdBy}
	if err := NewGroupRepository(db).Create(context.Background(), g); err != nil {
		t.Fatalf("seeding group %s: %v", name, err)
	}
	return g
}
