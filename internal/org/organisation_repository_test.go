package org

import (
	"context"
	"errors"
	"testing"
)

func TestOrganisationRepositoryCreate(t *testing.T) {
	db := testDB(t)
	repo := NewOrganisationRepository(db)

	o := &Organisation{Name: "Acme Search & Rescue"}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID == "" {
		t.Error("Create did not assign an ID")
	}

	got, err := repo.GetByID(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Acme Search & Rescue" {
		t.Errorf("Name = %q, want Acme Search & Rescue", got.Name)
	}

	byName, err := repo.GetByName(context.Background(), "Acme Search & Rescue")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != o.ID {
		t.Errorf("GetByName.ID = %q, want %q", byName.ID, o.ID)
	}
}

func TestOrganisationRepositoryDuplicateName(t *testing.T) {
	db := testDB(t)
	repo := NewOrganisationRepository(db)

	if err := repo.Create(context.Background(), &Organisation{Name: "Acme"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(context.Background(), &Organisation{Name: "Acme"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Create error = %v, want ErrConflict", err)
	}
}

func TestOrganisationRepositoryValidation(t *testing.T) {
	db := testDB(t)
	repo := NewOrganisationRepository(db)

	if err := repo.Create(context.Background(), &Organisation{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Create without name: err = %v, want ErrInvalidInput", err)
	}
	if _, err := repo.GetByID(context.Background(), "org-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID on missing org: err = %v, want ErrNotFound", err)
	}
}
