package practice

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-practice-api/internal/adapters/storage/memory"
	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/cascade"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/patch"
	"vet-practice-api/internal/domain/permissions"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/apperr"
	"vet-practice-api/internal/ports/auth"
	"vet-practice-api/internal/ports/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterEmail = "root@clinic.test"

type fixture struct {
	ctx   context.Context
	st    *memory.Store
	svc   *Service
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	vetsSvc := vets.NewService(st.Vets(), vets.Options{
		MasterAdminEmails: []string{masterEmail},
		AutoApprove:       true,
	})
	f := &fixture{
		ctx:   context.Background(),
		st:    st,
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(st, vetsSvc, activity.NewRecorder(st.Activity(), nil, nil), nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) vet(t *testing.T, subject string) vets.Vet {
	t.Helper()
	v, err := f.svc.Vets().Resolve(f.ctx, auth.Claims{UserID: subject, Email: subject + "@clinic.test"})
	require.NoError(t, err)
	return v
}

func (f *fixture) org(t *testing.T, owner vets.Vet) (orgs.Organization, orgs.Membership) {
	t.Helper()
	org, m, err := f.svc.CreateOrganization(f.ctx, owner, "Clínica "+owner.AuthSubject)
	require.NoError(t, err)
	return org, m
}

// join invita y acepta; el nuevo miembro arranca sin flags.
func (f *fixture) join(t *testing.T, owner vets.Vet, orgID, subject string, role orgs.Role) (vets.Vet, orgs.Membership) {
	t.Helper()
	v := f.vet(t, subject)
	inv, err := f.svc.InviteMember(f.ctx, owner, orgID, v.Email, role)
	require.NoError(t, err)
	m, err := f.svc.AcceptInvitation(f.ctx, v, inv.ID)
	require.NoError(t, err)
	return v, m
}

func (f *fixture) client(t *testing.T, actor vets.Vet, orgID string) clients.Client {
	t.Helper()
	c, err := f.svc.CreateClient(f.ctx, actor, orgID, clients.Input{FirstName: "Ana", LastName: "Pérez"})
	require.NoError(t, err)
	return c
}

func (f *fixture) animal(t *testing.T, actor vets.Vet, orgID, clientID string, chip *string) animals.Animal {
	t.Helper()
	a, err := f.svc.CreateAnimal(f.ctx, actor, orgID, animals.Input{
		ClientID:        clientID,
		Name:            "Luna",
		Species:         "dog",
		MicrochipNumber: chip,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) treatment(t *testing.T, actor vets.Vet, orgID, animalID string) treatments.Record {
	t.Helper()
	amount := decimal.RequireFromString("100.00")
	rec, err := f.svc.CreateTreatment(f.ctx, actor, orgID, treatments.Input{
		AnimalID:       animalID,
		VisitDate:      f.clock,
		ChiefComplaint: "scratching ear",
		Diagnosis:      "otitis",
		Notes:          "first visit",
		Amount:         &amount,
	})
	require.NoError(t, err)
	return rec
}

func codeOf(err error) string { return apperr.CodeOf(err) }

func strPtr(s string) *string { return &s }

func TestCreateOrganization_CreatorIsOwnerWithAllCapabilities(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")

	org, m, err := f.svc.CreateOrganization(f.ctx, owner, "  Clínica del Sur ")
	require.NoError(t, err)
	assert.Equal(t, "Clínica del Sur", org.Name)
	assert.NotEmpty(t, org.Slug)
	assert.Equal(t, orgs.RoleOwner, m.Role)
	assert.Equal(t, orgs.AllCapabilities, m.Capabilities)

	mine, err := f.svc.ListMyOrganizations(f.ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, org.ID, mine[0].ID)

	_, _, err = f.svc.CreateOrganization(f.ctx, owner, "   ")
	assert.Equal(t, ErrOrgNameRequired.Code, codeOf(err))
}

func TestUnapprovedVetIsRefused(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)

	pending := owner
	pending.Status = vets.StatusPendingApproval

	_, _, err := f.svc.CreateOrganization(f.ctx, pending, "Otra")
	assert.Equal(t, ErrVetNotApproved.Code, codeOf(err))

	_, err = f.svc.CreateClient(f.ctx, pending, org.ID, clients.Input{FirstName: "A", LastName: "B"})
	assert.Equal(t, ErrVetNotApproved.Code, codeOf(err))

	_, err = f.svc.ListClients(f.ctx, pending, org.ID, clients.ListFilter{})
	assert.Equal(t, ErrVetNotApproved.Code, codeOf(err))
}

func TestUnknownOrganization(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")

	_, err := f.svc.CreateClient(f.ctx, owner, "missing-org", clients.Input{FirstName: "A", LastName: "B"})
	assert.Equal(t, ErrOrgNotFound.Code, codeOf(err))
}

func TestNonMemberIsRefused(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	stranger := f.vet(t, "stranger")
	org, _ := f.org(t, owner)

	_, err := f.svc.ListClients(f.ctx, stranger, org.ID, clients.ListFilter{})
	assert.Equal(t, permissions.ErrNotOrgMember.Code, codeOf(err))
}

func TestMicrochipUniquenessIsScopedToOrganization(t *testing.T) {
	f := newFixture(t)
	alice := f.vet(t, "alice")
	bob := f.vet(t, "bob")
	org1, _ := f.org(t, alice)
	org2, _ := f.org(t, bob)

	c1 := f.client(t, alice, org1.ID)
	c2 := f.client(t, bob, org2.ID)

	f.animal(t, alice, org1.ID, c1.ID, strPtr("MC-1"))
	f.animal(t, bob, org2.ID, c2.ID, strPtr("MC-1"))

	_, err := f.svc.CreateAnimal(f.ctx, alice, org1.ID, animals.Input{
		ClientID:        c1.ID,
		Name:            "Sol",
		Species:         "cat",
		MicrochipNumber: strPtr(" mc-1 "),
	})
	require.Error(t, err)
	assert.Equal(t, animals.ErrMicrochipExists.Code, codeOf(err))
}

func TestUpdateAnimal_MicrochipRecheckedExcludingSelf(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)

	a := f.animal(t, owner, org.ID, c.ID, strPtr("MC-1"))
	b := f.animal(t, owner, org.ID, c.ID, strPtr("MC-2"))

	// Reescribir el propio chip no es conflicto.
	_, err := f.svc.UpdateAnimal(f.ctx, owner, org.ID, a.ID, animals.Patch{
		MicrochipNumber: patch.Set("MC-1"),
		Notes:           patch.Set("checked"),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateAnimal(f.ctx, owner, org.ID, b.ID, animals.Patch{MicrochipNumber: patch.Set("MC-1")})
	assert.Equal(t, animals.ErrMicrochipExists.Code, codeOf(err))
}

func TestCreateAnimal_RequiresLiveClient(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)

	_, err := f.svc.DeleteClient(f.ctx, owner, org.ID, c.ID, "client moved away")
	require.NoError(t, err)

	_, err = f.svc.CreateAnimal(f.ctx, owner, org.ID, animals.Input{ClientID: c.ID, Name: "Rex", Species: "dog"})
	assert.Equal(t, clients.ErrClientDeleted.Code, codeOf(err))

	_, err = f.svc.CreateAnimal(f.ctx, owner, org.ID, animals.Input{ClientID: "nope", Name: "Rex", Species: "dog"})
	assert.Equal(t, clients.ErrClientNotFound.Code, codeOf(err))
}

func TestMarkDeceased(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)
	a := f.animal(t, owner, org.ID, c.ID, nil)

	died := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	got, err := f.svc.MarkDeceased(f.ctx, owner, org.ID, a.ID, died, "old age")
	require.NoError(t, err)
	assert.False(t, got.IsAlive)
	require.NotNil(t, got.CauseOfDeath)
	assert.Equal(t, "old age", *got.CauseOfDeath)

	_, err = f.svc.MarkDeceased(f.ctx, owner, org.ID, a.ID, died, "")
	assert.Equal(t, animals.ErrAlreadyDeceased.Code, codeOf(err))
}

func TestOwnerProtection(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, ownerM := f.org(t, owner)
	admin, adminM := f.join(t, owner, org.ID, "admin", orgs.RoleAdmin)
	_, memberM := f.join(t, owner, org.ID, "member", orgs.RoleMember)

	_, err := f.svc.UpdateMemberRole(f.ctx, admin, org.ID, ownerM.ID, orgs.RoleAdmin)
	assert.Equal(t, permissions.ErrCannotChangeOwner.Code, codeOf(err))

	_, err = f.svc.UpdateMemberRole(f.ctx, owner, org.ID, memberM.ID, orgs.RoleOwner)
	assert.Equal(t, permissions.ErrCannotAssignOwner.Code, codeOf(err))

	_, err = f.svc.RemoveMember(f.ctx, admin, org.ID, ownerM.ID)
	assert.Equal(t, permissions.ErrCannotRemoveOwner.Code, codeOf(err))

	err = f.svc.LeaveOrganization(f.ctx, owner, org.ID)
	assert.Equal(t, permissions.ErrOwnerCannotLeave.Code, codeOf(err))

	// Solo el OWNER edita flags, y nunca los propios.
	_, err = f.svc.UpdateMemberPermissions(f.ctx, admin, org.ID, memberM.ID, orgs.CapabilityPatch{CanDeleteClients: boolPtr(true)})
	assert.Equal(t, permissions.ErrInsufficientRole.Code, codeOf(err))
	_, err = f.svc.UpdateMemberPermissions(f.ctx, owner, org.ID, ownerM.ID, orgs.CapabilityPatch{CanDeleteClients: boolPtr(false)})
	assert.Equal(t, permissions.ErrCannotEditOwnerPerm.Code, codeOf(err))

	promoted, err := f.svc.UpdateMemberRole(f.ctx, admin, org.ID, memberM.ID, orgs.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, orgs.RoleAdmin, promoted.Role)

	removed, err := f.svc.RemoveMember(f.ctx, owner, org.ID, adminM.ID)
	require.NoError(t, err)
	assert.Equal(t, orgs.MembershipRemoved, removed.Status)

	_, err = f.svc.ListMembers(f.ctx, admin, org.ID)
	assert.Equal(t, permissions.ErrMembershipInactive.Code, codeOf(err))
}

func boolPtr(b bool) *bool { return &b }

func TestPermissionPrecedence(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	member, memberM := f.join(t, owner, org.ID, "member", orgs.RoleMember)

	_, err := f.svc.UpdateMemberPermissions(f.ctx, owner, org.ID, memberM.ID, orgs.CapabilityPatch{
		CanDeleteClients: boolPtr(true),
		CanDeleteAnimals: boolPtr(false),
	})
	require.NoError(t, err)

	c := f.client(t, member, org.ID)
	a := f.animal(t, member, org.ID, c.ID, nil)

	_, err = f.svc.DeleteAnimal(f.ctx, member, org.ID, a.ID, "wrong patient entered")
	assert.Equal(t, permissions.ErrDeleteDenied.Code, codeOf(err))

	_, err = f.svc.ListActivity(f.ctx, member, org.ID, activity.ListFilter{})
	assert.Equal(t, permissions.ErrActivityLogDenied.Code, codeOf(err))

	res, err := f.svc.DeleteClient(f.ctx, member, org.ID, c.ID, "duplicate client record")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts.Animals)

	// Master admin sin membresía.
	root := f.vet(t, "root")
	require.True(t, root.IsMasterAdmin)
	_, err = f.svc.RestoreClient(f.ctx, root, org.ID, c.ID)
	require.NoError(t, err)
	_, err = f.svc.ListActivity(f.ctx, root, org.ID, activity.ListFilter{})
	require.NoError(t, err)
}

func TestTreatmentAmendChain(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)
	a := f.animal(t, owner, org.ID, c.ID, nil)
	v1 := f.treatment(t, owner, org.ID, a.ID)
	assert.Equal(t, treatments.PaymentPending, v1.PaymentStatus)

	v2, err := f.svc.AmendTreatment(f.ctx, owner, org.ID, v1.ID, treatments.Changes{
		Diagnosis: patch.Set("otitis externa"),
	})
	require.NoError(t, err)
	v3, err := f.svc.AmendTreatment(f.ctx, owner, org.ID, v2.ID, treatments.Changes{
		Prescriptions:   patch.Set("ear drops"),
		Notes:           patch.Null[string](),
		ExpectedVersion: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)

	chain, err := f.svc.TreatmentHistory(f.ctx, owner, org.ID, v1.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.NoError(t, treatments.CheckChain(chain))
	for i, r := range chain {
		assert.Equal(t, i+1, r.Version)
		assert.Equal(t, i == 2, r.IsLatestVersion)
	}

	last := chain[2]
	assert.Equal(t, v1.ChiefComplaint, last.ChiefComplaint)
	assert.True(t, v1.VisitDate.Equal(last.VisitDate))
	require.NotNil(t, last.Amount)
	assert.True(t, v1.Amount.Equal(*last.Amount))
	assert.Equal(t, "otitis externa", last.Diagnosis)
	assert.Equal(t, "ear drops", last.Prescriptions)
	assert.Empty(t, last.Notes)

	// El historial se resuelve igual desde cualquier versión.
	fromTail, err := f.svc.TreatmentHistory(f.ctx, owner, org.ID, v3.ID)
	require.NoError(t, err)
	assert.Len(t, fromTail, 3)

	_, err = f.svc.AmendTreatment(f.ctx, owner, org.ID, v1.ID, treatments.Changes{Notes: patch.Set("late")})
	assert.Equal(t, treatments.ErrNotLatest.Code, codeOf(err))

	_, err = f.svc.AmendTreatment(f.ctx, owner, org.ID, v3.ID, treatments.Changes{
		Notes:           patch.Set("stale"),
		ExpectedVersion: intPtr(2),
	})
	assert.Equal(t, treatments.ErrVersionConflict.Code, codeOf(err))

	_, err = f.svc.AmendTreatment(f.ctx, owner, org.ID, v3.ID, treatments.Changes{})
	assert.Equal(t, treatments.ErrNoChanges.Code, codeOf(err))

	latest, err := f.svc.ListTreatments(f.ctx, owner, org.ID, treatments.ListFilter{AnimalID: a.ID, OnlyLatest: true})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, v3.ID, latest[0].ID)
}

func intPtr(n int) *int { return &n }

// staleStore simula perder la carrera del flip de latest contra otro amend.
type staleStore struct{ store.Store }

func (s staleStore) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.RunInTx(ctx, func(tx store.Tx) error { return fn(staleTx{tx}) })
}

type staleTx struct{ store.Tx }

func (t staleTx) Treatments() treatments.Repository { return staleTreatments{t.Tx.Treatments()} }

type staleTreatments struct{ treatments.Repository }

func (staleTreatments) MarkSuperseded(context.Context, string, string, time.Time) error {
	return treatments.ErrStaleLatest
}

func TestAmend_LostLatestFlipIsVersionConflict(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)
	a := f.animal(t, owner, org.ID, c.ID, nil)
	v1 := f.treatment(t, owner, org.ID, a.ID)

	f.svc.store = staleStore{f.st}
	_, err := f.svc.AmendTreatment(f.ctx, owner, org.ID, v1.ID, treatments.Changes{Notes: patch.Set("second visit")})
	f.svc.store = f.st

	require.Error(t, err)
	assert.Equal(t, treatments.ErrVersionConflict.Code, codeOf(err))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, 1, e.Details["currentVersion"])

	chain, err := f.svc.TreatmentHistory(f.ctx, owner, org.ID, v1.ID)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.True(t, chain[0].IsLatestVersion)
	assert.Equal(t, "first visit", chain[0].Notes)

	all, err := f.svc.ListTreatments(f.ctx, owner, org.ID, treatments.ListFilter{AnimalID: a.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAmend_RefusedOnDeletedAnimal(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)
	a := f.animal(t, owner, org.ID, c.ID, nil)
	rec := f.treatment(t, owner, org.ID, a.ID)

	_, err := f.svc.DeleteAnimal(f.ctx, owner, org.ID, a.ID, "registered by mistake")
	require.NoError(t, err)

	_, err = f.svc.AmendTreatment(f.ctx, owner, org.ID, rec.ID, treatments.Changes{Notes: patch.Set("x")})
	assert.Equal(t, treatments.ErrTreatmentDeleted.Code, codeOf(err))

	_, err = f.svc.CreateTreatment(f.ctx, owner, org.ID, treatments.Input{AnimalID: a.ID, VisitDate: f.clock})
	assert.Equal(t, animals.ErrAnimalDeleted.Code, codeOf(err))
}

func TestDeleteClient_CountsAndAsymmetricRestore(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)
	for range 2 {
		a := f.animal(t, owner, org.ID, c.ID, nil)
		f.treatment(t, owner, org.ID, a.ID)
	}

	res, err := f.svc.DeleteClient(f.ctx, owner, org.ID, c.ID, "client requested removal")
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.ID)
	assert.Equal(t, cascade.Counts{Animals: 2, Treatments: 2}, res.Counts)

	_, err = f.svc.DeleteClient(f.ctx, owner, org.ID, c.ID, "client requested removal")
	assert.Equal(t, cascade.ErrAlreadyDeleted.Code, codeOf(err))

	_, err = f.svc.RestoreClient(f.ctx, owner, org.ID, c.ID)
	require.NoError(t, err)

	all, err := f.svc.ListAnimals(f.ctx, owner, org.ID, animals.ListFilter{ClientID: c.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, a := range all {
		assert.True(t, a.IsDeleted, "animals stay deleted after restoring only the client")
	}

	live, err := f.svc.ListAnimals(f.ctx, owner, org.ID, animals.ListFilter{ClientID: c.ID})
	require.NoError(t, err)
	assert.Empty(t, live)

	_, err = f.svc.RestoreClient(f.ctx, owner, org.ID, c.ID)
	assert.Equal(t, cascade.ErrNotDeleted.Code, codeOf(err))

	logs, err := f.svc.ListActivity(f.ctx, owner, org.ID, activity.ListFilter{EntityID: c.ID})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []string{"CLIENT_RESTORED", "CLIENT_DELETED", "CLIENT_CREATED"}, actions)
}

func TestDeleteRequiresReason(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)

	_, err := f.svc.DeleteClient(f.ctx, owner, org.ID, c.ID, "  ")
	assert.Equal(t, cascade.ErrReasonRequired.Code, codeOf(err))
}

type failingLogs struct{ activity.Repository }

func (failingLogs) AppendAudit(context.Context, activity.AuditLog) error {
	return errors.New("audit store down")
}

func (failingLogs) AppendActivity(context.Context, activity.ActivityLog) error {
	return errors.New("audit store down")
}

func TestAuditFailureDoesNotRollBackMutation(t *testing.T) {
	f := newFixture(t)
	f.svc.recorder = activity.NewRecorder(failingLogs{f.st.Activity()}, nil, nil)

	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	c := f.client(t, owner, org.ID)

	_, err := f.svc.DeleteClient(f.ctx, owner, org.ID, c.ID, "client requested removal")
	require.NoError(t, err)

	got, err := f.svc.GetClient(f.ctx, owner, org.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestInvitationFlow(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	carla := f.vet(t, "carla")
	other := f.vet(t, "other")

	inv, err := f.svc.InviteMember(f.ctx, owner, org.ID, " CARLA@clinic.test ", orgs.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, "carla@clinic.test", inv.Email)
	assert.Equal(t, f.clock.Add(orgs.InvitationTTL), inv.ExpiresAt)

	_, err = f.svc.InviteMember(f.ctx, owner, org.ID, carla.Email, orgs.RoleAdmin)
	assert.Equal(t, ErrInvitationPending.Code, codeOf(err))

	_, err = f.svc.InviteMember(f.ctx, owner, org.ID, "x@clinic.test", orgs.RoleOwner)
	assert.Equal(t, permissions.ErrCannotAssignOwner.Code, codeOf(err))

	mine, err := f.svc.ListMyInvitations(f.ctx, carla)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = f.svc.AcceptInvitation(f.ctx, other, inv.ID)
	assert.Equal(t, ErrInvitationMismatch.Code, codeOf(err))

	m, err := f.svc.AcceptInvitation(f.ctx, carla, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, orgs.RoleMember, m.Role)
	assert.Equal(t, orgs.MembershipActive, m.Status)
	assert.Equal(t, orgs.NewCapabilities(), m.Capabilities)

	_, err = f.svc.AcceptInvitation(f.ctx, carla, inv.ID)
	assert.Equal(t, ErrInvitationNotPending.Code, codeOf(err))

	_, err = f.svc.InviteMember(f.ctx, owner, org.ID, carla.Email, orgs.RoleMember)
	assert.Equal(t, ErrAlreadyMember.Code, codeOf(err))

	// Se va y vuelve: la membresía se reactiva sin flags.
	require.NoError(t, f.svc.LeaveOrganization(f.ctx, carla, org.ID))
	again, err := f.svc.InviteMember(f.ctx, owner, org.ID, carla.Email, orgs.RoleAdmin)
	require.NoError(t, err)
	back, err := f.svc.AcceptInvitation(f.ctx, carla, again.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, orgs.RoleAdmin, back.Role)
}

func TestInvitationExpires(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	dana := f.vet(t, "dana")

	inv, err := f.svc.InviteMember(f.ctx, owner, org.ID, dana.Email, orgs.RoleMember)
	require.NoError(t, err)

	f.clock = f.clock.Add(orgs.InvitationTTL + time.Minute)
	_, err = f.svc.AcceptInvitation(f.ctx, dana, inv.ID)
	assert.Equal(t, ErrInvitationExpired.Code, codeOf(err))

	// Vencida ya no bloquea una invitación nueva.
	_, err = f.svc.InviteMember(f.ctx, owner, org.ID, dana.Email, orgs.RoleMember)
	require.NoError(t, err)
}

func TestRevokeInvitation(t *testing.T) {
	f := newFixture(t)
	owner := f.vet(t, "owner")
	org, _ := f.org(t, owner)
	eve := f.vet(t, "eve")

	inv, err := f.svc.InviteMember(f.ctx, owner, org.ID, eve.Email, orgs.RoleMember)
	require.NoError(t, err)
	revoked, err := f.svc.RevokeInvitation(f.ctx, owner, org.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, orgs.InvitationRevoked, revoked.Status)

	_, err = f.svc.AcceptInvitation(f.ctx, eve, inv.ID)
	assert.Equal(t, ErrInvitationNotPending.Code, codeOf(err))
}

func TestVetStatusAdministration(t *testing.T) {
	f := newFixture(t)
	root := f.vet(t, "root")
	owner := f.vet(t, "owner")

	_, err := f.svc.UpdateVetStatus(f.ctx, owner, root.ID, vets.StatusSuspended)
	assert.Equal(t, vets.ErrNotMasterAdmin.Code, codeOf(err))

	v, err := f.svc.UpdateVetStatus(f.ctx, root, owner.ID, vets.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, vets.StatusSuspended, v.Status)

	_, err = f.svc.UpdateVetStatus(f.ctx, root, owner.ID, vets.StatusRejected)
	assert.Equal(t, vets.ErrInvalidTransition.Code, codeOf(err))

	audit, err := f.svc.ListAudit(f.ctx, root, activity.ListFilter{EntityID: owner.ID})
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "VET_STATUS_UPDATED", audit[0].Action)
	assert.Nil(t, audit[0].OrganizationID)

	_, err = f.svc.ListAudit(f.ctx, owner, activity.ListFilter{})
	assert.Equal(t, vets.ErrNotMasterAdmin.Code, codeOf(err))
}
