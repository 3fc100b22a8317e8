package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
)

func merch(name, holder string) domainagg.CreateAssetInput {
	return domainagg.CreateAssetInput{Name: name, Category: inventory.CategoryMerchandising, AssignedEmail: holder}
}

func TestSoftDeleteMemberBlockedByRecoverableAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "leaver@x.com")
	kept, err := f.engine.Create(ctx, laptop("SN-20", m.Email))
	if err != nil {
		t.Fatalf("Create laptop: %v", err)
	}
	swag, err := f.engine.Create(ctx, merch("Hoodie", m.Email))
	if err != nil {
		t.Fatalf("Create merch: %v", err)
	}

	_, err = f.members.SoftDeleteMember(ctx, m.ID)
	requireCode(t, err, domainagg.CodeInvalidTransition)

	if _, err := f.engine.Update(ctx, kept.Asset.ID, domainagg.AssetPatch{AssignedEmail: strPtr("")}); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	res, err := f.members.SoftDeleteMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("SoftDeleteMember: %v", err)
	}
	if len(res.Detached) != 1 || res.Detached[0] != swag.Asset.ID {
		t.Fatalf("detached: %+v", res.Detached)
	}

	detached, err := f.engine.FindByID(ctx, swag.Asset.ID)
	if err != nil {
		t.Fatalf("FindByID detached: %v", err)
	}
	if detached.Location != inventory.Deleted() || detached.Asset.LastAssigned != "leaver@x.com" {
		t.Fatalf("detached asset: loc=%s asset=%+v", detached.Location, detached.Asset)
	}

	_, err = f.members.GetMember(ctx, m.ID)
	requireCode(t, err, domainagg.CodeNotFound)
	_, err = f.members.SoftDeleteMember(ctx, m.ID)
	requireCode(t, err, domainagg.CodeNotFound)
	f.requireSingleLocation(t)
}

func TestBulkCreateMembersValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "taken@x.com")

	cases := map[string][]domainagg.CreateMemberInput{
		"empty":         {},
		"bad email":     {{FirstName: "a", LastName: "b", Email: "not-an-email"}},
		"missing name":  {{LastName: "b", Email: "n@x.com"}},
		"batch dup":     {{FirstName: "a", LastName: "b", Email: "d@x.com"}, {FirstName: "c", LastName: "d", Email: "D@x.com"}},
		"already taken": {{FirstName: "a", LastName: "b", Email: "TAKEN@x.com"}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.members.BulkCreateMembers(ctx, in)
			requireCode(t, err, domainagg.CodeValidation)
		})
	}
}

func TestBulkCreateMembersResolvesTeams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "platform"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	out, err := f.members.BulkCreateMembers(ctx, []domainagg.CreateMemberInput{
		{FirstName: "grace", LastName: "hopper", Email: "grace@x.com", Team: "PLATFORM"},
		{FirstName: "alan", LastName: "turing", Email: "alan@x.com", Team: "research lab"},
		{FirstName: "edsger", LastName: "dijkstra", Email: "edsger@x.com"},
	})
	if err != nil {
		t.Fatalf("BulkCreateMembers: %v", err)
	}
	if out[0].TeamID == nil || *out[0].TeamID != existing.ID {
		t.Fatalf("grace team: want=%s got=%v", existing.ID, out[0].TeamID)
	}
	if out[1].Team == nil || out[1].Team.Name != "Research Lab" {
		t.Fatalf("alan team: %+v", out[1].Team)
	}
	if out[2].TeamID != nil {
		t.Fatalf("edsger team: want=nil got=%v", out[2].TeamID)
	}

	got, err := f.members.GetMember(ctx, out[1].ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.Team == nil || got.Team.Name != "Research Lab" || got.FirstName != "Alan" {
		t.Fatalf("stored member: %+v", got)
	}

	list, err := f.members.ListMembers(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListMembers: len=%d err=%v", len(list), err)
	}
}

func TestTeamLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	team, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "  design  ", Color: "#fff"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.Name != "Design" {
		t.Fatalf("name: want=Design got=%s", team.Name)
	}
	_, err = f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "DESIGN"})
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: " "})
	requireCode(t, err, domainagg.CodeValidation)

	if _, err := f.members.CreateMember(ctx, domainagg.CreateMemberInput{
		FirstName: "a", LastName: "b", Email: "designer@x.com", Team: "design",
	}); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	err = f.teams.DeleteTeam(ctx, team.ID)
	requireCode(t, err, domainagg.CodeInvalidTransition)

	empty, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "ops"})
	if err != nil {
		t.Fatalf("CreateTeam ops: %v", err)
	}
	if err := f.teams.DeleteTeam(ctx, empty.ID); err != nil {
		t.Fatalf("DeleteTeam: %v", err)
	}
	err = f.teams.DeleteTeam(ctx, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)

	teams, err := f.teams.ListTeams(ctx)
	if err != nil || len(teams) != 1 || teams[0].Name != "Design" {
		t.Fatalf("ListTeams: %+v err=%v", teams, err)
	}
}

func TestContractsAreAggregateOwned(t *testing.T) {
	f := newFixture(t)
	for _, agg := range []domainagg.Aggregate{f.engine, f.members, f.teams} {
		c := agg.Contract()
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s: want aggregate owned tx", c.Name)
		}
	}
}

func TestUnassignTeamUnblocksDeleteTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.members.CreateMember(ctx, domainagg.CreateMemberInput{
		FirstName: "a", LastName: "b", Email: "member@x.com", Team: "design",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	design := *m.TeamID
	requireCode(t, f.teams.DeleteTeam(ctx, design), domainagg.CodeInvalidTransition)

	out, err := f.members.UnassignTeam(ctx, m.ID)
	if err != nil {
		t.Fatalf("UnassignTeam: %v", err)
	}
	if out.TeamID != nil || f.reload(t, m.ID).TeamID != nil {
		t.Fatalf("team after unassign: %v", out.TeamID)
	}
	if _, err := f.members.UnassignTeam(ctx, m.ID); err != nil {
		t.Fatalf("UnassignTeam again: %v", err)
	}
	if err := f.teams.DeleteTeam(ctx, design); err != nil {
		t.Fatalf("DeleteTeam after unassign: %v", err)
	}

	_, err = f.members.UnassignTeam(ctx, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestAssignTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.member(t, "a@x.com")
	b := f.member(t, "b@x.com")
	ops, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "ops"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	got, err := f.members.AssignTeam(ctx, a.ID, ops.ID)
	if err != nil {
		t.Fatalf("AssignTeam: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != ops.ID || got.Team == nil || got.Team.Name != "Ops" {
		t.Fatalf("assigned member: %+v", got)
	}

	moved, err := f.members.AssignTeamMany(ctx, ops.ID, []uuid.UUID{b.ID, b.ID, a.ID})
	if err != nil {
		t.Fatalf("AssignTeamMany: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("AssignTeamMany: want=2 got=%d", len(moved))
	}
	if id := f.reload(t, b.ID).TeamID; id == nil || *id != ops.ID {
		t.Fatalf("b team: %v", id)
	}

	_, err = f.members.AssignTeam(ctx, a.ID, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
	_, err = f.members.AssignTeam(ctx, uuid.New(), ops.ID)
	requireCode(t, err, domainagg.CodeNotFound)
	_, err = f.members.AssignTeamMany(ctx, ops.ID, nil)
	requireCode(t, err, domainagg.CodeValidation)

	// A failed member in the batch leaves the others untouched.
	other, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "sales"})
	if err != nil {
		t.Fatalf("CreateTeam sales: %v", err)
	}
	_, err = f.members.AssignTeamMany(ctx, other.ID, []uuid.UUID{a.ID, uuid.New()})
	requireCode(t, err, domainagg.CodeNotFound)
	if id := f.reload(t, a.ID).TeamID; id == nil || *id != ops.ID {
		t.Fatalf("a team after failed batch: %v", id)
	}
}

func TestUpdateMemberEmailRebindsHeldAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "ada@x.com")
	kept, err := f.engine.Create(ctx, laptop("SN-30", m.Email))
	if err != nil {
		t.Fatalf("Create laptop: %v", err)
	}
	if _, err := f.engine.Create(ctx, merch("Mug", m.Email)); err != nil {
		t.Fatalf("Create merch: %v", err)
	}
	pending, err := f.engine.Create(ctx, merch("Cap", "ada.new@x.com"))
	if err != nil {
		t.Fatalf("Create pending: %v", err)
	}
	if loc := f.locate(t, pending.Asset.ID); loc != inventory.Pool() {
		t.Fatalf("pending location: %s", loc)
	}

	got, err := f.members.UpdateMember(ctx, m.ID, domainagg.MemberPatch{
		Email:     strPtr(" Ada.New@X.com "),
		FirstName: strPtr("augusta"),
		City:      strPtr("London"),
	})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if got.Email != "ada.new@x.com" || got.FirstName != "Augusta" || got.City != "London" {
		t.Fatalf("updated member: %+v", got)
	}

	stored := f.reload(t, m.ID)
	if len(stored.Assets) != 3 {
		t.Fatalf("embedded assets: want=3 got=%d", len(stored.Assets))
	}
	for _, a := range stored.Assets {
		if a.HolderEmail() != "ada.new@x.com" || a.AssignedMember != "Augusta Lovelace" {
			t.Fatalf("embedded asset %s: email=%s member=%s", a.Name, a.AssignedEmail, a.AssignedMember)
		}
	}
	if loc := f.locate(t, pending.Asset.ID); loc != inventory.AssignedTo(m.ID) {
		t.Fatalf("pending after email change: %s", loc)
	}

	same, err := f.engine.Reassign(ctx, kept.Asset.ID, domainagg.AssetPatch{AssignedEmail: strPtr("ada.new@x.com")})
	if err != nil {
		t.Fatalf("Reassign to same holder: %v", err)
	}
	if same.Location != inventory.AssignedTo(m.ID) {
		t.Fatalf("same holder location: %s", same.Location)
	}
	freed, err := f.engine.Update(ctx, kept.Asset.ID, domainagg.AssetPatch{AssignedEmail: strPtr("")})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if freed.Location != inventory.Pool() || freed.Asset.LastAssigned != "ada.new@x.com" {
		t.Fatalf("unassigned asset: loc=%s last=%s", freed.Location, freed.Asset.LastAssigned)
	}
	f.requireSingleLocation(t)
}

func TestUpdateMemberKeepsEmbeddedListAndTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "keep@x.com")
	if _, err := f.engine.Create(ctx, laptop("SN-31", m.Email)); err != nil {
		t.Fatalf("Create laptop: %v", err)
	}

	got, err := f.members.UpdateMember(ctx, m.ID, domainagg.MemberPatch{Team: strPtr("research")})
	if err != nil {
		t.Fatalf("UpdateMember team: %v", err)
	}
	if got.Team == nil || got.Team.Name != "Research" {
		t.Fatalf("team after update: %+v", got.Team)
	}
	stored := f.reload(t, m.ID)
	if len(stored.Assets) != 1 || stored.TeamID == nil || stored.Email != "keep@x.com" {
		t.Fatalf("stored member: %+v", stored)
	}

	if _, err := f.members.UpdateMember(ctx, m.ID, domainagg.MemberPatch{Team: strPtr("")}); err != nil {
		t.Fatalf("UpdateMember clear team: %v", err)
	}
	if f.reload(t, m.ID).TeamID != nil {
		t.Fatalf("team not cleared")
	}
}

func TestUpdateMemberValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(t, "one@x.com")
	f.member(t, "two@x.com")

	cases := map[string]domainagg.MemberPatch{
		"bad email":   {Email: strPtr("nope")},
		"taken email": {Email: strPtr("TWO@x.com")},
		"empty name":  {LastName: strPtr("  ")},
	}
	for name, patch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.members.UpdateMember(ctx, m.ID, patch)
			requireCode(t, err, domainagg.CodeValidation)
		})
	}
	if got := f.reload(t, m.ID); got.Email != "one@x.com" || got.LastName != "Lovelace" {
		t.Fatalf("member changed by rejected patch: %+v", got)
	}
	_, err := f.members.UpdateMember(ctx, uuid.New(), domainagg.MemberPatch{City: strPtr("x")})
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestUpdateTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	design, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "design"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if _, err := f.teams.CreateTeam(ctx, domainagg.CreateTeamInput{Name: "ops"}); err != nil {
		t.Fatalf("CreateTeam ops: %v", err)
	}

	got, err := f.teams.UpdateTeam(ctx, design.ID, domainagg.TeamPatch{Name: strPtr("product design"), Color: strPtr(" #123 ")})
	if err != nil {
		t.Fatalf("UpdateTeam: %v", err)
	}
	if got.Name != "Product Design" || got.Color != "#123" {
		t.Fatalf("updated team: %+v", got)
	}
	if _, err := f.teams.UpdateTeam(ctx, design.ID, domainagg.TeamPatch{Name: strPtr("PRODUCT design")}); err != nil {
		t.Fatalf("UpdateTeam same name: %v", err)
	}

	_, err = f.teams.UpdateTeam(ctx, design.ID, domainagg.TeamPatch{Name: strPtr("OPS")})
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.teams.UpdateTeam(ctx, design.ID, domainagg.TeamPatch{Name: strPtr(" ")})
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.teams.UpdateTeam(ctx, uuid.New(), domainagg.TeamPatch{Color: strPtr("#000")})
	requireCode(t, err, domainagg.CodeNotFound)

	stored, err := f.teams.GetTeam(ctx, design.ID)
	if err != nil || stored.Name != "Product Design" {
		t.Fatalf("GetTeam: %+v err=%v", stored, err)
	}
	_, err = f.teams.GetTeam(ctx, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
}
