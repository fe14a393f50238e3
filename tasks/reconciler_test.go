package tasks

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatball-bot/model"
	"meatball-bot/utils/database"
)

type monthDay struct {
	month time.Month
	day   int
}

type fakeStore struct {
	roles    map[string]string
	channels map[string]string
	days     map[model.GrantKey]monthDay
	grants   map[model.GrantKey]time.Time
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:    map[string]string{},
		channels: map[string]string{},
		days:     map[model.GrantKey]monthDay{},
		grants:   map[model.GrantKey]time.Time{},
	}
}

func (f *fakeStore) GuildRole(guildID string) (string, error) {
	role, ok := f.roles[guildID]
	if !ok {
		return "", fmt.Errorf("no meatball role for guild %s: %w", guildID, database.ErrNotConfigured)
	}
	return role, nil
}

func (f *fakeStore) GuildChannel(guildID string) (string, error) {
	channel, ok := f.channels[guildID]
	if !ok {
		return "", fmt.Errorf("no announcement channel for guild %s: %w", guildID, database.ErrNotConfigured)
	}
	return channel, nil
}

func (f *fakeStore) DueActivations(month time.Month, day int) ([]model.GrantKey, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []model.GrantKey
	for key, d := range f.days {
		if d.month != month || d.day != day {
			continue
		}
		if _, held := f.grants[key]; held {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeStore) ExpiredGrants(before time.Time) ([]model.GrantKey, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []model.GrantKey
	for key, grantedAt := range f.grants {
		if !grantedAt.After(before) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeStore) InsertGrant(guildID, userID string, grantedAt time.Time) error {
	key := model.GrantKey{GuildID: guildID, UserID: userID}
	if _, ok := f.grants[key]; ok {
		return errors.New("assignment already exists")
	}
	f.grants[key] = grantedAt
	return nil
}

func (f *fakeStore) DeleteGrant(guildID, userID string) error {
	delete(f.grants, model.GrantKey{GuildID: guildID, UserID: userID})
	return nil
}

type fakeDirectory struct {
	grantErr     error
	revokeErrFor map[string]error
	grantCalls   []model.GrantKey
	revokeCalls  []model.GrantKey
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{revokeErrFor: map[string]error{}}
}

func (f *fakeDirectory) GrantRole(guildID, userID, roleID string) error {
	f.grantCalls = append(f.grantCalls, model.GrantKey{GuildID: guildID, UserID: userID})
	return f.grantErr
}

func (f *fakeDirectory) RevokeRole(guildID, userID, roleID string) error {
	f.revokeCalls = append(f.revokeCalls, model.GrantKey{GuildID: guildID, UserID: userID})
	return f.revokeErrFor[guildID]
}

func (f *fakeDirectory) DisplayName(guildID, userID string) string {
	return userID
}

type fakeNotifier struct {
	err      error
	attempts int
	messages []string
}

func (f *fakeNotifier) SendMessage(channelID, content string) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, channelID+": "+content)
	return nil
}

func newTestReconciler(store *fakeStore, dir *fakeDirectory, notif *fakeNotifier, now time.Time) *Reconciler {
	r := NewReconciler(store, dir, notif, 24*time.Hour)
	r.now = func() time.Time { return now }
	return r
}

func configuredStore() *fakeStore {
	store := newFakeStore()
	store.roles["guild1"] = "role1"
	store.channels["guild1"] = "chan1"
	return store
}

var june15 = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestActivationGrantsRoleAndAnnounces(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	dir := newFakeDirectory()
	notif := &fakeNotifier{}

	newTestReconciler(store, dir, notif, june15).Run()

	require.Len(t, dir.grantCalls, 1)
	assert.Equal(t, model.GrantKey{GuildID: "guild1", UserID: "user1"}, dir.grantCalls[0])
	require.Len(t, notif.messages, 1)
	assert.Equal(t, "chan1: It's <@user1>'s meatball day! 🥳🎉", notif.messages[0])

	grantedAt, ok := store.grants[model.GrantKey{GuildID: "guild1", UserID: "user1"}]
	require.True(t, ok)
	assert.Equal(t, june15, grantedAt)
}

func TestActivationIsIdempotentAcrossRuns(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	dir := newFakeDirectory()
	notif := &fakeNotifier{}
	r := newTestReconciler(store, dir, notif, june15)

	r.Run()
	r.Run()

	assert.Len(t, dir.grantCalls, 1)
	assert.Len(t, notif.messages, 1)
	assert.Len(t, store.grants, 1)
}

func TestActivationSkipsUnconfiguredGuild(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		channel string
	}{
		{"no role", "", "chan1"},
		{"no channel", "role1", ""},
		{"neither", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.role != "" {
				store.roles["guild1"] = tt.role
			}
			if tt.channel != "" {
				store.channels["guild1"] = tt.channel
			}
			store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
			dir := newFakeDirectory()
			notif := &fakeNotifier{}

			newTestReconciler(store, dir, notif, june15).Run()

			assert.Empty(t, dir.grantCalls, "no grant should be attempted")
			assert.Zero(t, notif.attempts)
			assert.Empty(t, store.grants)
		})
	}
}

func TestActivationRetriesOnceConfigured(t *testing.T) {
	store := newFakeStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	dir := newFakeDirectory()
	notif := &fakeNotifier{}
	r := newTestReconciler(store, dir, notif, june15)

	r.Run()
	require.Empty(t, store.grants)

	store.roles["guild1"] = "role1"
	store.channels["guild1"] = "chan1"
	r.Run()

	assert.Len(t, dir.grantCalls, 1)
	assert.Len(t, notif.messages, 1)
	assert.Len(t, store.grants, 1)
}

func TestActivationRetriesAfterNotifyFailure(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	dir := newFakeDirectory()
	notif := &fakeNotifier{err: errors.New("channel unavailable")}
	r := newTestReconciler(store, dir, notif, june15)

	r.Run()
	require.Empty(t, store.grants, "nothing persisted while the announcement fails")
	require.Len(t, dir.grantCalls, 1)

	notif.err = nil
	r.Run()

	// Repeating the grant is the accepted cost of remote-before-persist.
	assert.Len(t, dir.grantCalls, 2)
	assert.Len(t, notif.messages, 1)
	assert.Len(t, store.grants, 1)
}

func TestExpiryRemovesRoleAndRecord(t *testing.T) {
	store := configuredStore()
	key := model.GrantKey{GuildID: "guild1", UserID: "user1"}
	store.grants[key] = june15.Add(-25 * time.Hour)
	dir := newFakeDirectory()
	notif := &fakeNotifier{}
	r := newTestReconciler(store, dir, notif, june15)

	r.Run()
	require.Len(t, dir.revokeCalls, 1)
	assert.Equal(t, key, dir.revokeCalls[0])
	assert.Empty(t, store.grants)

	r.Run()
	assert.Len(t, dir.revokeCalls, 1, "second pass must be a no-op")
}

func TestRecentGrantIsNotExpired(t *testing.T) {
	store := configuredStore()
	store.grants[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = june15.Add(-time.Hour)
	dir := newFakeDirectory()

	newTestReconciler(store, dir, &fakeNotifier{}, june15).Run()

	assert.Empty(t, dir.revokeCalls)
	assert.Len(t, store.grants, 1)
}

func TestExpiryFailureIsolation(t *testing.T) {
	store := configuredStore()
	store.roles["guild2"] = "role2"
	store.channels["guild2"] = "chan2"
	broken := model.GrantKey{GuildID: "guild1", UserID: "user1"}
	healthy := model.GrantKey{GuildID: "guild2", UserID: "user2"}
	store.grants[broken] = june15.Add(-48 * time.Hour)
	store.grants[healthy] = june15.Add(-48 * time.Hour)

	dir := newFakeDirectory()
	dir.revokeErrFor["guild1"] = errors.New("directory down")
	r := newTestReconciler(store, dir, &fakeNotifier{}, june15)

	r.Run()
	_, stillHeld := store.grants[broken]
	assert.True(t, stillHeld, "failed row must be left for retry")
	_, gone := store.grants[healthy]
	assert.False(t, gone, "other rows must still be processed")

	delete(dir.revokeErrFor, "guild1")
	r.Run()
	assert.Empty(t, store.grants)
}

func TestExpiryLeavesRowWhenRoleUnconfigured(t *testing.T) {
	store := newFakeStore()
	key := model.GrantKey{GuildID: "guild1", UserID: "user1"}
	store.grants[key] = june15.Add(-48 * time.Hour)
	dir := newFakeDirectory()

	newTestReconciler(store, dir, &fakeNotifier{}, june15).Run()

	assert.Empty(t, dir.revokeCalls)
	_, stillHeld := store.grants[key]
	assert.True(t, stillHeld)
}

func TestExpireRunsBeforeActivate(t *testing.T) {
	// A grant old enough to expire on the user's own meatball day: the pass
	// must revoke the stale assignment first and then re-grant, ending with
	// exactly one fresh row.
	store := configuredStore()
	key := model.GrantKey{GuildID: "guild1", UserID: "user1"}
	store.days[key] = monthDay{time.June, 15}
	store.grants[key] = june15.Add(-25 * time.Hour)
	dir := newFakeDirectory()
	notif := &fakeNotifier{}

	newTestReconciler(store, dir, notif, june15).Run()

	require.Len(t, dir.revokeCalls, 1)
	require.Len(t, dir.grantCalls, 1)
	grantedAt, ok := store.grants[key]
	require.True(t, ok)
	assert.Equal(t, june15, grantedAt)
}

func TestLeapDayIsSkippedInOffYears(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	} {
		store := configuredStore()
		store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.February, 29}
		dir := newFakeDirectory()

		newTestReconciler(store, dir, &fakeNotifier{}, now).Run()

		assert.Empty(t, dir.grantCalls, "no activation on %s", now.Format("Jan 2"))
		assert.Empty(t, store.grants)
	}
}

func TestLeapDayActivatesInLeapYears(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.February, 29}
	dir := newFakeDirectory()

	now := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)
	newTestReconciler(store, dir, &fakeNotifier{}, now).Run()

	assert.Len(t, dir.grantCalls, 1)
	assert.Len(t, store.grants, 1)
}

func TestRecoveryAfterDirectoryOutage(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	dir := newFakeDirectory()
	dir.grantErr = errors.New("directory down")
	notif := &fakeNotifier{}
	r := newTestReconciler(store, dir, notif, june15)

	for i := 0; i < 3; i++ {
		r.Run()
	}
	require.Empty(t, store.grants)
	attemptsDuringOutage := len(dir.grantCalls)

	dir.grantErr = nil
	r.Run()

	assert.Equal(t, attemptsDuringOutage+1, len(dir.grantCalls), "exactly one call after recovery")
	assert.Len(t, notif.messages, 1)
	assert.Len(t, store.grants, 1)
}

func TestLedgerReadFailureIsNonFatal(t *testing.T) {
	store := configuredStore()
	store.days[model.GrantKey{GuildID: "guild1", UserID: "user1"}] = monthDay{time.June, 15}
	store.listErr = errors.New("database locked")
	dir := newFakeDirectory()
	notif := &fakeNotifier{}
	r := newTestReconciler(store, dir, notif, june15)

	r.Run()
	assert.Empty(t, dir.grantCalls)
	assert.Zero(t, notif.attempts)

	store.listErr = nil
	r.Run()
	assert.Len(t, store.grants, 1)
}
