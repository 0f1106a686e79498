package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (ProfileService, *memory.Store, *[]*events.Event) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := memory.New(log)
	clk := clock.NewFixed(testNow)

	var seen []*events.Event
	emitter := events.NewInMemoryEmitter(log)
	emitter.Subscribe(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		seen = append(seen, e)
		return nil
	}))

	prov := NewLearnerProvisioner(mem.Repositories().Learners, clk, log)
	return NewProfileService(mem, prov, emitter, clk, log), mem, &seen
}

func strPtr(s string) *string { return &s }

func TestProfileService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mem, seen := newProfileService(t)
	learnerID := uuid.New()

	profile, err := svc.GetProfile(ctx, learnerID)
	require.NoError(t, err, "reading a profile provisions the learner")
	assert.Equal(t, learnerID, profile.ID)
	assert.Empty(t, profile.Timezone)

	updated, err := svc.UpdateProfile(ctx, learnerID, ProfileUpdate{Timezone: strPtr("America/New_York")})
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", updated.Timezone)

	updated, err = svc.UpdateProfile(ctx, learnerID, ProfileUpdate{DisplayName: strPtr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.DisplayName)
	assert.Equal(t, "America/New_York", updated.Timezone, "omitted fields are kept")

	stored, err := mem.Repositories().Learners.GetByID(ctx, learnerID)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", stored.Timezone)
	assert.Equal(t, "Ada", stored.DisplayName)

	require.Len(t, *seen, 2)
	assert.Equal(t, events.TypeProfileUpdated, (*seen)[0].Type)
	assert.Equal(t, learnerID, (*seen)[0].LearnerID)
}

func TestProfileServiceRejectsUnknownTimezone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mem, seen := newProfileService(t)
	learnerID := uuid.New()

	_, err := svc.UpdateProfile(ctx, learnerID, ProfileUpdate{Timezone: strPtr("America/New_York")})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, learnerID, ProfileUpdate{Timezone: strPtr("Mars/Olympus")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := mem.Repositories().Learners.GetByID(ctx, learnerID)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", stored.Timezone)
	assert.Len(t, *seen, 1, "rejected updates are not announced")
}
