package model

// MeatballDay is a user's saved (month, day) pair. It recurs annually and
// carries no year component.
type MeatballDay struct {
	GuildID string `db:"guild_id"`
	UserID  string `db:"user_id"`
	Month   int    `db:"month"`
	Day     int    `db:"day"`
}

// GrantKey identifies one (guild, user) pair in the role assignment
// ledger.
type GrantKey struct {
	GuildID string `db:"guild_id"`
	UserID  string `db:"user_id"`
}
