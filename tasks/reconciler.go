package tasks

import (
	"errors"
	"fmt"
	"log"
	"time"

	"meatball-bot/model"
	"meatball-bot/utils/database"
)

// Store is the slice of the ledger the reconciler needs.
type Store interface {
	GuildRole(guildID string) (string, error)
	GuildChannel(guildID string) (string, error)
	DueActivations(month time.Month, day int) ([]model.GrantKey, error)
	ExpiredGrants(before time.Time) ([]model.GrantKey, error)
	InsertGrant(guildID, userID string, grantedAt time.Time) error
	DeleteGrant(guildID, userID string) error
}

// Directory grants and revokes the meatball role. Both operations must be
// idempotent: granting an already-held role and revoking an absent one
// succeed, which is what makes retried passes safe.
type Directory interface {
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
	// DisplayName is best-effort and used for logging only.
	DisplayName(guildID, userID string) string
}

// Notifier posts announcements to a channel. Sends are not idempotent; a
// crash between a successful send and the ledger write means the next pass
// sends the message again.
type Notifier interface {
	SendMessage(channelID, content string) error
}

// Reconciler keeps the role assignment ledger in step with Discord. Each
// pass removes expired assignments first and then adds the ones due today,
// so a date that wraps from expired straight back to due within a single
// pass never double-counts.
//
// Remote calls happen before the matching ledger write. A failure before
// the write leaves nothing persisted and the row is retried on the next
// pass; a failure after a successful remote call repeats an idempotent
// grant or revoke, which is harmless, and may repeat the announcement,
// which is an accepted at-least-once gap.
type Reconciler struct {
	store     Store
	directory Directory
	notifier  Notifier
	retention time.Duration
	now       func() time.Time
}

// NewReconciler wires a reconciler. Assignments expire after retention,
// measured from the moment they were granted.
func NewReconciler(store Store, directory Directory, notifier Notifier, retention time.Duration) *Reconciler {
	return &Reconciler{
		store:     store,
		directory: directory,
		notifier:  notifier,
		retention: retention,
		now:       time.Now,
	}
}

// Run executes one expire-then-activate pass. Per-row failures are logged
// and retried on the next pass; Run never aborts on them.
func (r *Reconciler) Run() {
	r.expireAssignments()
	r.activateAssignments()
}

func (r *Reconciler) expireAssignments() {
	cutoff := r.now().Add(-r.retention)
	expired, err := r.store.ExpiredGrants(cutoff)
	if err != nil {
		log.Printf("Error listing expired assignments: %v", err)
		return
	}

	for _, key := range expired {
		if err := r.expireOne(key); err != nil {
			if errors.Is(err, database.ErrNotConfigured) {
				log.Printf("Leaving assignment for user %s in guild %s in place: %v", key.UserID, key.GuildID, err)
				continue
			}
			log.Printf("Error expiring assignment for user %s in guild %s: %v", key.UserID, key.GuildID, err)
		}
	}
}

func (r *Reconciler) expireOne(key model.GrantKey) error {
	roleID, err := r.store.GuildRole(key.GuildID)
	if err != nil {
		return fmt.Errorf("failed to resolve meatball role: %w", err)
	}

	if err := r.directory.RevokeRole(key.GuildID, key.UserID, roleID); err != nil {
		return fmt.Errorf("failed to revoke role %s: %w", roleID, err)
	}

	if err := r.store.DeleteGrant(key.GuildID, key.UserID); err != nil {
		return fmt.Errorf("failed to drop assignment record: %w", err)
	}

	log.Printf("Removed meatball role from %s in guild %s",
		r.directory.DisplayName(key.GuildID, key.UserID), key.GuildID)
	return nil
}

func (r *Reconciler) activateAssignments() {
	now := r.now().UTC()
	due, err := r.store.DueActivations(now.Month(), now.Day())
	if err != nil {
		log.Printf("Error listing due activations: %v", err)
		return
	}

	for _, key := range due {
		if err := r.activateOne(key, now); err != nil {
			if errors.Is(err, database.ErrNotConfigured) {
				log.Printf("Skipping activation for user %s in guild %s: %v", key.UserID, key.GuildID, err)
				continue
			}
			log.Printf("Error activating assignment for user %s in guild %s: %v", key.UserID, key.GuildID, err)
		}
	}
}

func (r *Reconciler) activateOne(key model.GrantKey, now time.Time) error {
	roleID, err := r.store.GuildRole(key.GuildID)
	if err != nil {
		return fmt.Errorf("failed to resolve meatball role: %w", err)
	}
	channelID, err := r.store.GuildChannel(key.GuildID)
	if err != nil {
		return fmt.Errorf("failed to resolve announcement channel: %w", err)
	}

	if err := r.directory.GrantRole(key.GuildID, key.UserID, roleID); err != nil {
		return fmt.Errorf("failed to grant role %s: %w", roleID, err)
	}

	content := fmt.Sprintf("It's <@%s>'s meatball day! 🥳🎉", key.UserID)
	if err := r.notifier.SendMessage(channelID, content); err != nil {
		return fmt.Errorf("failed to announce in channel %s: %w", channelID, err)
	}

	// The row is written only after both remote calls succeed: it is a
	// confirmation, not a lock.
	if err := r.store.InsertGrant(key.GuildID, key.UserID, now); err != nil {
		return fmt.Errorf("failed to record assignment: %w", err)
	}

	log.Printf("Added meatball role to %s in guild %s",
		r.directory.DisplayName(key.GuildID, key.UserID), key.GuildID)
	return nil
}
