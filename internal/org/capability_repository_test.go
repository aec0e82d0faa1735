package org

import (
	"context"
	"testing"
)

func TestCapabilityRepositoryEffectiveUnion(t *testing.T) {
	db := testDB(t)
	repo := NewCapabilityRepository(db)
	groups := NewGroupRepository(db)

	o := seedOrg(t, db, "Acme")
	jack := seedUser(t, db, o.ID, "jack")
	g := seedGroup(t, db, o.ID, jack.ID, "Night Shift")

	firstAid := &Capability{Label: "first-aid", OrganisationID: o.ID}
	dispatch := &Capability{Label: "dispatch", OrganisationID: o.ID}
	radios := &Capability{Label: "radios", OrganisationID: o.ID}
	for _, c := range []*Capability{firstAid, dispatch, radios} {
		if err := repo.Create(context.Background(), c); err != nil {
			t.Fatalf("Create %s: %v", c.Label, err)
		}
	}

	// Direct grant plus a group grant; radios stays ungranted.
	if err := repo.GrantToUser(context.Background(), firstAid.ID, jack.ID); err != nil {
		t.Fatalf("GrantToUser: %v", err)
	}
	if err := repo.GrantToGroup(context.Background(), dispatch.ID, g.ID); err != nil {
		t.Fatalf("GrantToGroup: %v", err)
	}

	effective, err := repo.ListEffectiveForUser(context.Background(), jack.ID)
	if err != nil {
		t.Fatalf("ListEffectiveForUser: %v", err)
	}
	labels := map[string]bool{}
	for _, c := range effective {
		labels[c.Label] = true
	}
	if len(effective) != 2 || !labels["first-aid"] || !labels["dispatch"] {
		t.Errorf("effective = %v, want first-aid and dispatch", effective)
	}

	// A user outside the group only sees direct grants.
	emma := seedUser(t, db, o.ID, "emma")
	if err := repo.GrantToUser(context.Background(), dispatch.ID, emma.ID); err != nil {
		t.Fatalf("GrantToUser: %v", err)
	}
	effective, err = repo.ListEffectiveForUser(context.Background(), emma.ID)
	if err != nil {
		t.Fatalf("ListEffectiveForUser: %v", err)
	}
	if len(effective) != 1 || effective[0].Label != "dispatch" {
		t.Errorf("emma's effective = %v, want [dispatch]", effective)
	}

	// Joining the group extends the effective set without duplicates.
	if err := groups.AddMember(context.Background(), g.ID, emma.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	effective, err = repo.ListEffectiveForUser(context.Background(), emma.ID)
	if err != nil {
		t.Fatalf("ListEffectiveForUser: %v", err)
	}
	if len(effective) != 1 || effective[0].Label != "dispatch" {
		t.Errorf("emma's effective after join = %v, want [dispatch] once", effective)
	}
}

func TestCapabilityRepositoryGrantIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewCapabilityRepository(db)

	o := seedOrg(t, db, "Acme")
	jack := seedUser(t, db, o.ID, "jack")

	c := &Capability{Label: "first-aid", OrganisationID: o.ID}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for n := 0; n < 2; n++ {
		if err := repo.GrantToUser(context.Background(), c.ID, jack.ID); err != nil {
			t.Fatalf("GrantToUser: %v", err)
		}
	}

	effective, err := repo.ListEffectiveForUser(context.Background(), jack.ID)
	if err != nil {
		t.Fatalf("ListEffectiveForUser: %v", err)
	}
	if len(effective) != 1 {
		t.Errorf("effective = %v, want exactly one grant", effective)
	}
}

func TestCapabilityRepositoryListByOrganisation(t *testing.T) {
	db := testDB(t)
	repo := NewCapabilityRepository(db)

	o := seedOrg(t, db, "Acme")
	for _, label := range []string{"first-aid", "dispatch"} {
		if err := repo.Create(context.Background(), &Capability{Label: label, OrganisationID: o.ID}); err != nil {
			t.Fatalf("Create %s: %v", label, err)
		}
	}

	caps, err := repo.ListByOrganisation(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("ListByOrganisation: %v", err)
	}
	if len(caps) != 2 {
		t.Errorf("got %d capabilities, want 2", len(caps))
	}
	// Sorted by label.
	if caps[0].Label != "dispatch" || caps[1].Label != "first-aid" {
		t.Errorf("order = %s, %s; want dispatch, first-aid", caps[0].Label, caps[1].Label)
	}
}
