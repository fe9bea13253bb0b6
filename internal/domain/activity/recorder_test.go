package activity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"vet-practice-api/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRepo struct {
	mu           sync.Mutex
	audit        []AuditLog
	activity     []ActivityLog
	failAudit    bool
	failActivity bool
	ctxErr       error
}

func (r *fakeRepo) AppendAudit(ctx context.Context, e AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctxErr = ctx.Err()
	if r.failAudit {
		return errors.New("connection reset")
	}
	r.audit = append(r.audit, e)
	return nil
}

func (r *fakeRepo) AppendActivity(ctx context.Context, e ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failActivity {
		return errors.New("connection reset")
	}
	r.activity = append(r.activity, e)
	return nil
}

func (r *fakeRepo) ListActivity(context.Context, string, ListFilter) ([]ActivityLog, error) {
	return r.activity, nil
}

func (r *fakeRepo) ListAudit(context.Context, ListFilter) ([]AuditLog, error) {
	return r.audit, nil
}

type fakePublisher struct {
	got []AuditLog
	err error
}

func (p *fakePublisher) PublishAudit(_ context.Context, e AuditLog) error {
	p.got = append(p.got, e)
	return p.err
}

func newRecorder(repo Repository, pub Publisher) (*Recorder, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewRecorder(repo, pub, logger.FromZap(zap.New(core)))
	r.now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	return r, logs
}

func TestRecord_WritesBothLogsAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	r, logs := newRecorder(repo, pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.Record(ctx, Entry{
		VetID:          "vet-1",
		OrganizationID: "org-1",
		Action:         "CLIENT_DELETED",
		EntityType:     "client",
		EntityID:       "c-1",
		Description:    "Deleted client Ana Pérez",
		Metadata:       map[string]any{"cascadedAnimals": 2},
	})

	require.Len(t, repo.audit, 1)
	require.Len(t, repo.activity, 1)
	require.Len(t, pub.got, 1)
	assert.NoError(t, repo.ctxErr, "trace must be written even if the request was cancelled")
	assert.Equal(t, 0, logs.Len())

	a := repo.audit[0]
	assert.Len(t, a.ID, 26)
	require.NotNil(t, a.OrganizationID)
	assert.Equal(t, "org-1", *a.OrganizationID)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(a.Metadata, &meta))
	assert.EqualValues(t, 2, meta["cascadedAnimals"])

	assert.Equal(t, "Deleted client Ana Pérez", repo.activity[0].Description)
	assert.Equal(t, a.CreatedAt, repo.activity[0].CreatedAt)
}

func TestRecord_PlatformEntryHasNoActivity(t *testing.T) {
	repo := &fakeRepo{}
	r, _ := newRecorder(repo, nil)

	r.Record(context.Background(), Entry{VetID: "root", Action: "VET_STATUS_UPDATED", EntityType: "vet", EntityID: "v-2"})

	require.Len(t, repo.audit, 1)
	assert.Nil(t, repo.audit[0].OrganizationID)
	assert.JSONEq(t, `{}`, string(repo.audit[0].Metadata))
	assert.Empty(t, repo.activity)
}

func TestRecord_FailuresAreLoggedNotReturned(t *testing.T) {
	repo := &fakeRepo{failAudit: true, failActivity: true}
	pub := &fakePublisher{err: errors.New("channel closed")}
	r, logs := newRecorder(repo, pub)

	assert.NotPanics(t, func() {
		r.Record(context.Background(), Entry{VetID: "v", OrganizationID: "o", Action: "ANIMAL_CREATED", EntityType: "animal", EntityID: "a"})
	})

	require.Equal(t, 3, logs.Len())
	msgs := []string{logs.All()[0].Message, logs.All()[1].Message, logs.All()[2].Message}
	assert.Equal(t, []string{"audit log write failed", "activity log write failed", "audit publish failed"}, msgs)
	assert.Equal(t, "ANIMAL_CREATED", logs.All()[0].ContextMap()["action"])
}
