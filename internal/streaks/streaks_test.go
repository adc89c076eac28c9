package streaks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func managerAt(store Store, day string) *Manager {
	m := NewManager(store)
	t, _ := time.Parse(dayFormat, day)
	m.now = func() time.Time { return t }
	return m
}

func TestCheckIn_FirstCheckInStartsStreak(t *testing.T) {
	m := managerAt(NewMemoryStore(), "2026-09-01")

	rec, err := m.CheckIn(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Streak)
	require.Equal(t, "2026-09-01", rec.LastCheckIn)
	require.Len(t, rec.History, 1)
}

func TestCheckIn_ConsecutiveDaysExtendStreak(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := managerAt(store, "2026-08-31").CheckIn(ctx, "42")
	require.NoError(t, err)

	rec, err := managerAt(store, "2026-09-01").CheckIn(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 2, rec.Streak)
}

func TestCheckIn_GapResetsStreak(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := managerAt(store, "2026-08-25").CheckIn(ctx, "42")
	require.NoError(t, err)

	rec, err := managerAt(store, "2026-09-01").CheckIn(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Streak, "a gap must reset the streak")
}

func TestCheckIn_SecondCheckInSameDayRejected(t *testing.T) {
	m := managerAt(NewMemoryStore(), "2026-09-01")
	ctx := context.Background()

	_, err := m.CheckIn(ctx, "42")
	require.NoError(t, err)

	_, err = m.CheckIn(ctx, "42")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestStatus_ReflectsAvailability(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	m := managerAt(store, "2026-09-01")

	status, err := m.Status(ctx, "42")
	require.NoError(t, err)
	require.True(t, status.CanCheckInToday)

	_, err = m.CheckIn(ctx, "42")
	require.NoError(t, err)

	status, err = m.Status(ctx, "42")
	require.NoError(t, err)
	require.False(t, status.CanCheckInToday)
	require.Equal(t, 1, status.Streak)
}

func TestRecomputeStreak(t *testing.T) {
	tests := []struct {
		name    string
		history []string
		want    int
	}{
		{"empty", nil, 0},
		{"single day", []string{"2026-09-01"}, 1},
		{"consecutive run", []string{"2026-08-30", "2026-08-31", "2026-09-01"}, 3},
		{"broken run", []string{"2026-08-25", "2026-08-31", "2026-09-01"}, 2},
		{"unsorted input", []string{"2026-09-01", "2026-08-30", "2026-08-31"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RecomputeStreak(tt.history))
		})
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	rec, err := store.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, Record{}, rec, "missing record reads as zero value")

	want := Record{LastCheckIn: "2026-09-01", Streak: 3, History: []string{"2026-08-30", "2026-08-31", "2026-09-01"}}
	require.NoError(t, store.Put(ctx, "42", want))

	got, err := store.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRedisStore_StreaksAcrossDays(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	_, err := managerAt(store, "2026-08-31").CheckIn(ctx, "7")
	require.NoError(t, err)

	rec, err := managerAt(store, "2026-09-01").CheckIn(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, 2, rec.Streak)
}
