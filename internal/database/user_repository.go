package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordbox/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound is returned when a Telegram user has never started the bot
var ErrUserNotFound = errors.New("user not found")

const userColumns = "telegram_id, username, first_name, notification_enabled, notification_hour"

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates a user or refreshes the profile fields of an existing one.
// Notification settings of existing users are left untouched.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.NotificationEnabled,
		user.NotificationHour,
	)
	if err != nil {
		return fmt.Errorf("failed to create/update user: %w", err)
	}
	return nil
}

// GetByID returns a user by Telegram ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE telegram_id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetUsersForNotification returns users who have notifications enabled at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE notification_enabled AND notification_hour = ?
		ORDER BY telegram_id
	`), hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}

// SetNotification updates the reminder settings of a user
func (r *UserRepository) SetNotification(ctx context.Context, id int64, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("notification hour %d out of range [0, 23]", hour)
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET notification_enabled = ?, notification_hour = ?
		WHERE telegram_id = ?
	`), enabled, hour, id)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
