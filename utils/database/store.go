package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"meatball-bot/model"
)

// ErrNotConfigured is returned when a guild has not set the requested
// meatball role or announcement channel yet. It is an expected state, not
// a failure.
var ErrNotConfigured = errors.New("guild not configured")

const schema = `
CREATE TABLE IF NOT EXISTS guild_configs (
    guild_id   TEXT PRIMARY KEY,
    role_id    TEXT,
    channel_id TEXT
);
CREATE TABLE IF NOT EXISTS meatball_days (
    guild_id TEXT NOT NULL,
    user_id  TEXT NOT NULL,
    month    INTEGER NOT NULL,
    day      INTEGER NOT NULL,
    PRIMARY KEY (guild_id, user_id)
);
CREATE TABLE IF NOT EXISTS role_assignments (
    guild_id   TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    granted_at DATETIME NOT NULL,
    PRIMARY KEY (guild_id, user_id)
);`

// Store wraps the meatball ledger database.
type Store struct {
	db *sqlx.DB
}

// Open connects to the ledger database and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to meatball database: %w", err)
	}
	// Keep the pool small so background reconciliation cannot starve
	// interactive command handling.
	db.SetMaxOpenConns(5)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create meatball tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GuildRole returns the configured meatball role for a guild, or
// ErrNotConfigured if the guild has not set one.
func (s *Store) GuildRole(guildID string) (string, error) {
	var roleID sql.NullString
	err := s.db.Get(&roleID, `SELECT role_id FROM guild_configs WHERE guild_id = ?`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no meatball role for guild %s: %w", guildID, ErrNotConfigured)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meatball role for guild %s: %w", guildID, err)
	}
	if !roleID.Valid || roleID.String == "" {
		return "", fmt.Errorf("no meatball role for guild %s: %w", guildID, ErrNotConfigured)
	}
	return roleID.String, nil
}

// GuildChannel returns the configured announcement channel for a guild, or
// ErrNotConfigured if the guild has not set one.
func (s *Store) GuildChannel(guildID string) (string, error) {
	var channelID sql.NullString
	err := s.db.Get(&channelID, `SELECT channel_id FROM guild_configs WHERE guild_id = ?`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no announcement channel for guild %s: %w", guildID, ErrNotConfigured)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get announcement channel for guild %s: %w", guildID, err)
	}
	if !channelID.Valid || channelID.String == "" {
		return "", fmt.Errorf("no announcement channel for guild %s: %w", guildID, ErrNotConfigured)
	}
	return channelID.String, nil
}

// SetGuildRole sets the meatball role for a guild, preserving any
// configured channel.
func (s *Store) SetGuildRole(guildID, roleID string) error {
	_, err := s.db.Exec(`INSERT INTO guild_configs (guild_id, role_id) VALUES (?, ?)
        ON CONFLICT(guild_id) DO UPDATE SET role_id = excluded.role_id`, guildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to set meatball role for guild %s: %w", guildID, err)
	}
	return nil
}

// SetGuildChannel sets the announcement channel for a guild, preserving
// any configured role.
func (s *Store) SetGuildChannel(guildID, channelID string) error {
	_, err := s.db.Exec(`INSERT INTO guild_configs (guild_id, channel_id) VALUES (?, ?)
        ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("failed to set announcement channel for guild %s: %w", guildID, err)
	}
	return nil
}

// SaveMeatballDay inserts or updates a user's meatball day.
func (s *Store) SaveMeatballDay(day model.MeatballDay) error {
	_, err := s.db.NamedExec(`INSERT INTO meatball_days (guild_id, user_id, month, day)
        VALUES (:guild_id, :user_id, :month, :day)
        ON CONFLICT(guild_id, user_id) DO UPDATE SET month = excluded.month, day = excluded.day`, day)
	if err != nil {
		return fmt.Errorf("failed to save meatball day for user %s in guild %s: %w", day.UserID, day.GuildID, err)
	}
	return nil
}

// MeatballDay returns a user's saved meatball day, or nil if none is
// registered.
func (s *Store) MeatballDay(guildID, userID string) (*model.MeatballDay, error) {
	var day model.MeatballDay
	err := s.db.Get(&day, `SELECT guild_id, user_id, month, day FROM meatball_days
        WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meatball day for user %s in guild %s: %w", userID, guildID, err)
	}
	return &day, nil
}

// MeatballDays returns all saved meatball days for a guild.
func (s *Store) MeatballDays(guildID string) ([]model.MeatballDay, error) {
	var days []model.MeatballDay
	err := s.db.Select(&days, `SELECT guild_id, user_id, month, day FROM meatball_days
        WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meatball days for guild %s: %w", guildID, err)
	}
	return days, nil
}

// DeleteMeatballDay removes a user's saved meatball day.
func (s *Store) DeleteMeatballDay(guildID, userID string) error {
	_, err := s.db.Exec(`DELETE FROM meatball_days WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meatball day for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// DueActivations lists the (guild, user) pairs whose meatball day matches
// the given calendar date and who do not already hold an assignment.
func (s *Store) DueActivations(month time.Month, day int) ([]model.GrantKey, error) {
	var keys []model.GrantKey
	err := s.db.Select(&keys, `SELECT d.guild_id, d.user_id FROM meatball_days d
        LEFT JOIN role_assignments a ON a.guild_id = d.guild_id AND a.user_id = d.user_id
        WHERE d.month = ? AND d.day = ? AND a.user_id IS NULL`, int(month), day)
	if err != nil {
		return nil, fmt.Errorf("failed to list due activations: %w", err)
	}
	return filterMalformed(keys, "meatball_days"), nil
}

// ExpiredGrants lists the (guild, user) pairs whose assignment was granted
// at or before the given cutoff.
func (s *Store) ExpiredGrants(before time.Time) ([]model.GrantKey, error) {
	var keys []model.GrantKey
	err := s.db.Select(&keys, `SELECT guild_id, user_id FROM role_assignments
        WHERE granted_at <= ?`, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list expired assignments: %w", err)
	}
	return filterMalformed(keys, "role_assignments"), nil
}

// InsertGrant records a new role assignment. It fails if the pair already
// holds one.
func (s *Store) InsertGrant(guildID, userID string, grantedAt time.Time) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO role_assignments (guild_id, user_id, granted_at) VALUES (?, ?, ?)`,
		guildID, userID, grantedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert role assignment for user %s in guild %s: %w", userID, guildID, err)
	}

	return tx.Commit()
}

// DeleteGrant removes a role assignment.
func (s *Store) DeleteGrant(guildID, userID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM role_assignments WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete role assignment for user %s in guild %s: %w", userID, guildID, err)
	}

	return tx.Commit()
}

// validSnowflake reports whether id looks like a Discord snowflake.
func validSnowflake(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// filterMalformed drops rows whose identifiers cannot be used as Discord
// handles. Such rows indicate a bug in whatever wrote them; they are
// logged and skipped rather than handed to callers.
func filterMalformed(keys []model.GrantKey, table string) []model.GrantKey {
	valid := make([]model.GrantKey, 0, len(keys))
	for _, key := range keys {
		if !validSnowflake(key.GuildID) || !validSnowflake(key.UserID) {
			log.Printf("Skipping malformed %s row (guild=%q user=%q)", table, key.GuildID, key.UserID)
			continue
		}
		valid = append(valid, key)
	}
	return valid
}
