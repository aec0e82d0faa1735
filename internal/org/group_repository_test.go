package org

import (
	"context"
	"errors"
	"testing"
)

func TestGroupRepositoryCreateAddsCreatorAsMember(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)

	o := seedOrg(t, db, "Acme")
	jack := seedUser(t, db, o.ID, "jack")
	g := seedGroup(t, db, o.ID, jack.ID, "Night Shift")

	member, err := repo.IsMember(context.Background(), g.ID, jack.ID)
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if !member {
		t.Error("creator is not a member of the new group")
	}
}

func TestGroupRepositoryMembership(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)

	o := seedOrg(t, db, "Acme")
	jack := seedUser(t, db, o.ID, "jack")
	emma := seedUser(t, db, o.ID, "emma")
	g := seedGroup(t, db, o.ID, jack.ID, "Night Shift")

	if err := repo.AddMember(context.Background(), g.ID, emma.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// Adding twice is a no-op.
	if err := repo.AddMember(context.Background(), g.ID, emma.ID); err != nil {
		t.Fatalf("repeated AddMember: %v", err)
	}

	members, err := repo.Members(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}

	isMember, err := repo.IsMember(context.Background(), g.ID, emma.ID)
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if !isMember {
		t.Error("emma not reported as member")
	}

	outsider := seedUser(t, db, o.ID, "intruder")
	isMember, err = repo.IsMember(context.Background(), g.ID, outsider.ID)
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if isMember {
		t.Error("non-member reported as member")
	}
}

func TestGroupRepositoryListByUser(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)

	o := seedOrg(t, db, "Acme")
	jack := seedUser(t, db, o.ID, "jack")
	emma := seedUser(t, db, o.ID, "emma")

	seedGroup(t, db, o.ID, jack.ID, "Night Shift")
	day := seedGroup(t, db, o.ID, emma.ID, "Day Shift")
	if err := repo.AddMember(context.Background(), day.ID, jack.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	jacks, err := repo.ListByUser(context.Background(), jack.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(jacks) != 2 {
		t.Errorf("jack is in %d groups, want 2", len(jacks))
	}

	emmas, err := repo.ListByUser(context.Background(), emma.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(emmas) != 1 || emmas[0].ID != day.ID {
		t.Errorf("emma's groups = %v, want just %s", emmas, day.ID)
	}
}

func TestGroupRepositoryListByOrganisation(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)

	acme := seedOrg(t, db, "Acme")
	other := seedOrg(t, db, "Other")
	jack := seedUser(t, db, acme.ID, "jack")

	seedGroup(t, db, acme.ID, jack.ID, "Night Shift")
	seedGroup(t, db, acme.ID, jack.ID, "Day Shift")

	groups, err := repo.ListByOrganisation(context.Background(), acme.ID)
	if err != nil {
		t.Fatalf("ListByOrganisation: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("got %d groups, want 2", len(groups))
	}

	none, err := repo.ListByOrganisation(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("ListByOrganisation: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("other org has %d groups, want 0", len(none))
	}
}

func TestGroupRepositoryGetByIDMissing(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)

	if _, err := repo.GetByID(context.Background(), "grp-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID: err = %v, want ErrNotFound", err)
	}
}
