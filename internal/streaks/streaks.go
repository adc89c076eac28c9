// Package streaks tracks daily check-ins per identity. It runs beside
// the scoring engine, never feeds into it, and persists through an
// injected store so the logic stays testable.
package streaks

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

// Manager applies the streak rules over a Store.
type Manager struct {
	store Store

	// now is swapped in tests to pin the calendar day.
	now func() time.Time
}

// NewManager creates a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Status reports the current streak state for an identity.
type Status struct {
	Record
	CanCheckInToday bool `json:"can_check_in_today"`
}

// Status returns the identity's record plus whether a check-in is still
// available today.
func (m *Manager) Status(ctx context.Context, identityKey string) (Status, error) {
	rec, err := m.store.Get(ctx, identityKey)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Record:          rec,
		CanCheckInToday: rec.LastCheckIn != m.today(),
	}, nil
}

// ErrAlreadyCheckedIn is returned when the identity already checked in
// on the current calendar day.
var ErrAlreadyCheckedIn = fmt.Errorf("already checked in today")

// CheckIn records today's check-in. The streak increments only when
// the previous check-in was yesterday; any gap resets it to one.
func (m *Manager) CheckIn(ctx context.Context, identityKey string) (Record, error) {
	rec, err := m.store.Get(ctx, identityKey)
	if err != nil {
		return Record{}, err
	}

	today := m.today()
	if rec.LastCheckIn == today {
		return rec, ErrAlreadyCheckedIn
	}

	streak := 1
	if rec.LastCheckIn == m.yesterday() {
		streak = rec.Streak + 1
	}

	updated := Record{
		LastCheckIn: today,
		Streak:      streak,
		History:     append(rec.History, today),
	}
	if err := m.store.Put(ctx, identityKey, updated); err != nil {
		return Record{}, err
	}
	return updated, nil
}

// RecomputeStreak derives the streak length from a check-in history,
// counting consecutive days back from the most recent entry. Used to
// repair records whose streak counter drifted from the history.
func RecomputeStreak(history []string) int {
	if len(history) == 0 {
		return 0
	}
	sorted := append([]string(nil), history...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	streak := 1
	for i := 0; i < len(sorted)-1; i++ {
		current, err := time.Parse(dayFormat, sorted[i])
		if err != nil {
			break
		}
		next, err := time.Parse(dayFormat, sorted[i+1])
		if err != nil {
			break
		}
		if int(current.Sub(next).Hours()/24) == 1 {
			streak++
		} else {
			break
		}
	}
	return streak
}

func (m *Manager) today() string {
	return m.now().UTC().Format(dayFormat)
}

func (m *Manager) yesterday() string {
	return m.now().UTC().AddDate(0, 0, -1).Format(dayFormat)
}
