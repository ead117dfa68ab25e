package medicines

import (
	"context"
	"errors"
	"testing"
	"time"

	"care-monitor/internal/adapters/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	now := time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)
	return NewService(NewStoreRepository(memory.NewStore(0))).
		WithClock(func() time.Time { return now })
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay(" 8:05 ")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay("08:05"), tod)
	assert.Equal(t, 8*60+5, tod.Minutes())

	_, err = ParseTimeOfDay("25:00")
	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Equal(t, -1, TimeOfDay("x").Minutes())
}

func TestService_Create_SortsTimes(t *testing.T) {
	svc := newTestService()

	m, err := svc.Create(context.Background(), CreateInput{
		Name:           " Metformina ",
		ScheduledTimes: []string{"20:00", "08:00", "14:00"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Metformina", m.Name)
	assert.Equal(t, []TimeOfDay{"08:00", "14:00", "20:00"}, m.ScheduledTimes)
	assert.Equal(t, "es-ES", m.VoiceLocale)

	got, err := svc.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ScheduledTimes, got.ScheduledTimes)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "", ScheduledTimes: []string{"08:00"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{Name: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{Name: "A", ScheduledTimes: []string{"08:00", "8:00"}})
	assert.ErrorIs(t, err, ErrDuplicateTime)

	_, err = svc.Create(ctx, CreateInput{Name: "A", ScheduledTimes: []string{"noon"}})
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestService_Delete_RunsHooks(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: "Losartán", ScheduledTimes: []string{"09:00"}})
	require.NoError(t, err)

	var purged []string
	svc.OnDelete(func(ctx context.Context, id string) error {
		purged = append(purged, id)
		return nil
	})
	svc.OnDelete(func(ctx context.Context, id string) error {
		return errors.New("hook failed")
	})

	err = svc.Delete(ctx, m.ID)
	assert.EqualError(t, err, "hook failed")
	assert.Equal(t, []string{m.ID}, purged)

	_, err = svc.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrNotFound)
}
