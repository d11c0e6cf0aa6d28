package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wordbox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentReminder struct {
	userID int64
	count  int
}

type fakeNotifier struct {
	sent    []sentReminder
	failFor int64
}

func (f *fakeNotifier) SendReminders(userID int64, count int) error {
	if userID == f.failFor {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, sentReminder{userID, count})
	return nil
}

type fakeUsers struct {
	byHour map[int][]models.User
	hours  []int
}

func (f *fakeUsers) GetUsersForNotification(_ context.Context, hour int) ([]models.User, error) {
	f.hours = append(f.hours, hour)
	return f.byHour[hour], nil
}

type fakeDue struct {
	count int
	err   error
}

func (f *fakeDue) DueCount(context.Context) (int, error) { return f.count, f.err }

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 10, hour, 0, 5, 0, time.Local) }
}

func newTestScheduler(n Notifier, u UserSource, d DueCounter, hour int) *Scheduler {
	s := New(n, u, d, Config{StartHour: 8, EndHour: 22})
	s.now = at(hour)
	return s
}

func TestRemindersSentAtUserHour(t *testing.T) {
	notifier := &fakeNotifier{failFor: 3}
	users := &fakeUsers{byHour: map[int][]models.User{
		9: {{ID: 1}, {ID: 2}, {ID: 3}},
	}}
	s := newTestScheduler(notifier, users, &fakeDue{count: 4}, 9)

	sent := s.CheckAndSendReminders(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, []sentReminder{{1, 4}, {2, 4}}, notifier.sent)
	assert.Equal(t, []int{9}, users.hours)
}

func TestNoRemindersOutsideWindow(t *testing.T) {
	notifier := &fakeNotifier{}
	users := &fakeUsers{byHour: map[int][]models.User{23: {{ID: 1}}, 7: {{ID: 1}}}}

	for _, hour := range []int{7, 23} {
		s := newTestScheduler(notifier, users, &fakeDue{count: 1}, hour)
		assert.Zero(t, s.CheckAndSendReminders(context.Background()))
	}
	assert.Empty(t, notifier.sent)
	assert.Empty(t, users.hours)
}

func TestNoRemindersWhenNothingDue(t *testing.T) {
	notifier := &fakeNotifier{}
	users := &fakeUsers{byHour: map[int][]models.User{10: {{ID: 1}}}}

	s := newTestScheduler(notifier, users, &fakeDue{count: 0}, 10)
	assert.Zero(t, s.CheckAndSendReminders(context.Background()))

	s = newTestScheduler(notifier, users, &fakeDue{err: errors.New("db down")}, 10)
	assert.Zero(t, s.CheckAndSendReminders(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestInvalidWindowFallsBackToDefaults(t *testing.T) {
	s := New(&fakeNotifier{}, &fakeUsers{}, &fakeDue{}, Config{StartHour: 20, EndHour: 5})
	assert.Equal(t, Config{StartHour: DefaultNotificationStartHour, EndHour: DefaultNotificationEndHour}, s.cfg)

	s = New(&fakeNotifier{}, &fakeUsers{}, &fakeDue{}, Config{StartHour: -1, EndHour: 30})
	assert.Equal(t, DefaultNotificationStartHour, s.cfg.StartHour)
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(&fakeNotifier{}, &fakeUsers{}, &fakeDue{}, 12)
	require.NoError(t, s.Start())
	assert.Len(t, s.scheduler.Jobs(), 1)
	s.Stop()
}

func TestNextHour(t *testing.T) {
	got := nextHour(time.Date(2025, 3, 10, 9, 41, 3, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), got)
}

func TestNextHourHalfHourZone(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	got := nextHour(time.Date(2025, 3, 10, 23, 10, 0, 0, tehran))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, tehran), got)
}
