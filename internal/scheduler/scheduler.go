package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/wordbox/pkg/models"
	"github.com/go-co-op/gocron"
)

// Default notification window
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier sends reminders to users
type Notifier interface {
	SendReminders(userID int64, count int) error
}

// UserSource lists users who want a reminder at a given hour
type UserSource interface {
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// DueCounter reports how many words are waiting for review
type DueCounter interface {
	DueCount(ctx context.Context) (int, error)
}

// Config holds the notification window, inclusive on both ends
type Config struct {
	StartHour int
	EndHour   int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     UserSource
	due       DueCounter
	cfg       Config
	now       func() time.Time
}

// New creates a new scheduler instance
func New(notifier Notifier, users UserSource, due DueCounter, cfg Config) *Scheduler {
	if !validHour(cfg.StartHour) || !validHour(cfg.EndHour) || cfg.StartHour > cfg.EndHour {
		log.Printf("Invalid notification window %d-%d, using defaults", cfg.StartHour, cfg.EndHour)
		cfg = Config{StartHour: DefaultNotificationStartHour, EndHour: DefaultNotificationEndHour}
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		users:     users,
		due:       due,
		cfg:       cfg,
		now:       time.Now,
	}
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Run at the top of every hour so users get reminded at their chosen hour
	_, err := s.scheduler.Every(1).Hour().StartAt(nextHour(s.now())).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.CheckAndSendReminders(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

func nextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// CheckAndSendReminders notifies users whose reminder hour is now, as long as
// words are due. It returns the number of reminders sent.
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) int {
	currentHour := s.now().Hour()

	if currentHour < s.cfg.StartHour || currentHour > s.cfg.EndHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, s.cfg.StartHour, s.cfg.EndHour)
		return 0
	}

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return 0
	}
	if len(users) == 0 {
		return 0
	}

	count, err := s.due.DueCount(ctx)
	if err != nil {
		log.Printf("Error counting due words: %v", err)
		return 0
	}
	if count == 0 {
		return 0
	}

	sent := 0
	for _, user := range users {
		if err := s.notifier.SendReminders(user.ID, count); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent
}
