// Package db wraps the pgx connection pool and the repository queries
// for spec §6.3's relational schema: users, channels, memberships,
// invites, and registration verifications.
package db

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/extrachat/server/internal/model"
)

// DB wraps a pgx connection pool for the linkshell schema.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and verifies the connection is live.
// Foreign-key enforcement is always-on in Postgres, satisfying spec
// §4.4's cascading-delete requirement without per-connection setup.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool. RunMigrations does not use it;
// it opens its own database/sql connection from the DSN.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

func hexID(id [16]byte) string {
	return hex.EncodeToString(id[:])
}

func parseHexID(s string) ([16]byte, error) {
	var id [16]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 16 {
		return id, fmt.Errorf("invalid channel id %q", s)
	}
	copy(id[:], b)
	return id, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// --- users ---

// GetUserByLodestoneID returns nil, nil if no such user exists.
func (d *DB) GetUserByLodestoneID(ctx context.Context, lodestoneID uint64) (*model.User, error) {
	var u model.User
	err := d.pool.QueryRow(ctx,
		`SELECT lodestone_id, name, world, key_short, key_hash, last_updated FROM users WHERE lodestone_id = $1`,
		int64(lodestoneID),
	).Scan(&u.LodestoneID, &u.Name, &u.World, &u.KeyShort, &u.KeyHash, &u.LastUpdated)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user %d: %w", lodestoneID, err)
	}
	return &u, nil
}

// GetUserByKey resolves a split API key to its owning user.
func (d *DB) GetUserByKey(ctx context.Context, keyShort, keyHash string) (*model.User, error) {
	var u model.User
	err := d.pool.QueryRow(ctx,
		`SELECT lodestone_id, name, world, key_short, key_hash, last_updated FROM users WHERE key_short = $1 AND key_hash = $2`,
		keyShort, keyHash,
	).Scan(&u.LodestoneID, &u.Name, &u.World, &u.KeyShort, &u.KeyHash, &u.LastUpdated)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by key: %w", err)
	}
	return &u, nil
}

// GetUserByNameWorld backs the offline fallback lookup of spec §4.5.
func (d *DB) GetUserByNameWorld(ctx context.Context, name, world string) (*model.User, error) {
	var u model.User
	err := d.pool.QueryRow(ctx,
		`SELECT lodestone_id, name, world, key_short, key_hash, last_updated FROM users WHERE name = $1 AND world = $2`,
		name, world,
	).Scan(&u.LodestoneID, &u.Name, &u.World, &u.KeyShort, &u.KeyHash, &u.LastUpdated)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user %q@%q: %w", name, world, err)
	}
	return &u, nil
}

// UpsertUser creates or replaces a user's identity and key material,
// backing Register's success branch.
func (d *DB) UpsertUser(ctx context.Context, u model.User) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (lodestone_id, name, world, key_short, key_hash, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (lodestone_id) DO UPDATE SET
		   name = EXCLUDED.name, world = EXCLUDED.world,
		   key_short = EXCLUDED.key_short, key_hash = EXCLUDED.key_hash,
		   last_updated = EXCLUDED.last_updated`,
		int64(u.LodestoneID), u.Name, u.World, u.KeyShort, u.KeyHash, u.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upserting user %d: %w", u.LodestoneID, err)
	}
	return nil
}

// UpdateUserProfile refreshes the cached name/world, backing the
// Background Refresher.
func (d *DB) UpdateUserProfile(ctx context.Context, lodestoneID uint64, name, world string, lastUpdated int64) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE users SET name = $1, world = $2, last_updated = $3 WHERE lodestone_id = $4`,
		name, world, lastUpdated, int64(lodestoneID),
	)
	if err != nil {
		return fmt.Errorf("updating profile for %d: %w", lodestoneID, err)
	}
	return nil
}

// DeleteUser removes a user row. Callers must have already verified
// the user belongs to no channel (spec §4.3 DeleteAccount).
func (d *DB) DeleteUser(ctx context.Context, lodestoneID uint64) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM users WHERE lodestone_id = $1`, int64(lodestoneID))
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", lodestoneID, err)
	}
	return nil
}

// UserChannelCount reports how many channels a user belongs to
// (membership rows only, not invites), used to gate account deletion.
func (d *DB) UserChannelCount(ctx context.Context, lodestoneID uint64) (int, error) {
	var n int
	err := d.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_channels WHERE lodestone_id = $1`, int64(lodestoneID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting channels for %d: %w", lodestoneID, err)
	}
	return n, nil
}

// --- verifications ---

// GetVerification returns nil, nil if no challenge is pending.
func (d *DB) GetVerification(ctx context.Context, lodestoneID uint64) (*model.Verification, error) {
	var v model.Verification
	err := d.pool.QueryRow(ctx,
		`SELECT lodestone_id, challenge, created_at FROM verifications WHERE lodestone_id = $1`,
		int64(lodestoneID),
	).Scan(&v.LodestoneID, &v.Challenge, &v.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying verification for %d: %w", lodestoneID, err)
	}
	return &v, nil
}

// UpsertVerification stores or rotates the pending challenge.
func (d *DB) UpsertVerification(ctx context.Context, lodestoneID uint64, challenge string, createdAt int64) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO verifications (lodestone_id, challenge, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (lodestone_id) DO UPDATE SET challenge = EXCLUDED.challenge, created_at = EXCLUDED.created_at`,
		int64(lodestoneID), challenge, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting verification for %d: %w", lodestoneID, err)
	}
	return nil
}

// DeleteVerification removes a completed or abandoned challenge.
func (d *DB) DeleteVerification(ctx context.Context, lodestoneID uint64) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM verifications WHERE lodestone_id = $1`, int64(lodestoneID))
	if err != nil {
		return fmt.Errorf("deleting verification for %d: %w", lodestoneID, err)
	}
	return nil
}

// --- channels ---

// ChannelRow is the bare persisted channel row, before member
// assembly (spec §4.6 Channel::get).
type ChannelRow struct {
	ID   [16]byte
	Name []byte
}

// CreateChannel inserts a new channel row with its opaque name.
func (d *DB) CreateChannel(ctx context.Context, id [16]byte, name []byte) error {
	_, err := d.pool.Exec(ctx, `INSERT INTO channels (id, name) VALUES ($1, $2)`, hexID(id), name)
	if err != nil {
		return fmt.Errorf("creating channel: %w", err)
	}
	return nil
}

// GetChannel returns nil, nil if the channel does not exist.
func (d *DB) GetChannel(ctx context.Context, id [16]byte) (*ChannelRow, error) {
	var row ChannelRow
	var idStr string
	err := d.pool.QueryRow(ctx, `SELECT id, name FROM channels WHERE id = $1`, hexID(id)).
		Scan(&idStr, &row.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying channel: %w", err)
	}
	parsed, err := parseHexID(idStr)
	if err != nil {
		return nil, err
	}
	row.ID = parsed
	return &row, nil
}

// DeleteChannel deletes a channel row; memberships and invites cascade
// via their ON DELETE CASCADE foreign keys.
func (d *DB) DeleteChannel(ctx context.Context, id [16]byte) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, hexID(id))
	if err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}
	return nil
}

// UpdateChannelName backs Update's Name variant.
func (d *DB) UpdateChannelName(ctx context.Context, id [16]byte, name []byte) error {
	_, err := d.pool.Exec(ctx, `UPDATE channels SET name = $1 WHERE id = $2`, name, hexID(id))
	if err != nil {
		return fmt.Errorf("updating channel name: %w", err)
	}
	return nil
}

// GetRawMembers returns the membership rows for a channel, for
// Channel::get's member union (spec §4.6).
func (d *DB) GetRawMembers(ctx context.Context, channelID [16]byte) ([]model.RawMember, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT users.lodestone_id, users.name, users.world, user_channels.rank
		 FROM user_channels JOIN users ON users.lodestone_id = user_channels.lodestone_id
		 WHERE user_channels.channel_id = $1`, hexID(channelID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying channel members: %w", err)
	}
	defer rows.Close()

	var out []model.RawMember
	for rows.Next() {
		var m model.RawMember
		var rank uint8
		if err := rows.Scan(&m.LodestoneID, &m.Name, &m.World, &rank); err != nil {
			return nil, fmt.Errorf("scanning channel member: %w", err)
		}
		m.Rank = model.ParseRank(rank)
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetRawInvitedMembers returns a channel's pending invitees as
// RawMembers with Rank = RankInvited (0), matching Channel::get's
// union with members.
func (d *DB) GetRawInvitedMembers(ctx context.Context, channelID [16]byte) ([]model.RawMember, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT users.lodestone_id, users.name, users.world
		 FROM channel_invites JOIN users ON users.lodestone_id = channel_invites.invited
		 WHERE channel_invites.channel_id = $1`, hexID(channelID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying channel invitees: %w", err)
	}
	defer rows.Close()

	var out []model.RawMember
	for rows.Next() {
		var m model.RawMember
		if err := rows.Scan(&m.LodestoneID, &m.Name, &m.World); err != nil {
			return nil, fmt.Errorf("scanning channel invitee: %w", err)
		}
		m.Rank = model.RankInvited
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMembership inserts a (channel, user) membership row.
func (d *DB) AddMembership(ctx context.Context, channelID [16]byte, lodestoneID uint64, rank model.Rank) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO user_channels (channel_id, lodestone_id, rank) VALUES ($1, $2, $3)`,
		hexID(channelID), int64(lodestoneID), uint8(rank),
	)
	if err != nil {
		return fmt.Errorf("adding membership: %w", err)
	}
	return nil
}

// UpdateMembershipRank changes a member's rank in place, backing
// Promote's swap (spec §4.3).
func (d *DB) UpdateMembershipRank(ctx context.Context, channelID [16]byte, lodestoneID uint64, rank model.Rank) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE user_channels SET rank = $1 WHERE channel_id = $2 AND lodestone_id = $3`,
		uint8(rank), hexID(channelID), int64(lodestoneID),
	)
	if err != nil {
		return fmt.Errorf("updating membership rank: %w", err)
	}
	return nil
}

// RemoveMembership deletes a (channel, user) membership row.
func (d *DB) RemoveMembership(ctx context.Context, channelID [16]byte, lodestoneID uint64) error {
	_, err := d.pool.Exec(ctx,
		`DELETE FROM user_channels WHERE channel_id = $1 AND lodestone_id = $2`,
		hexID(channelID), int64(lodestoneID),
	)
	if err != nil {
		return fmt.Errorf("removing membership: %w", err)
	}
	return nil
}

// GetMembershipRank returns ok=false if the user is not a member of
// the channel (invites don't count).
func (d *DB) GetMembershipRank(ctx context.Context, channelID [16]byte, lodestoneID uint64) (model.Rank, bool, error) {
	var rank uint8
	err := d.pool.QueryRow(ctx,
		`SELECT rank FROM user_channels WHERE channel_id = $1 AND lodestone_id = $2`,
		hexID(channelID), int64(lodestoneID),
	).Scan(&rank)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("querying membership rank: %w", err)
	}
	return model.ParseRank(rank), true, nil
}

// MembershipCount reports how many members (not invitees) a channel
// has, used by Leave's solo-admin and last-member checks.
func (d *DB) MembershipCount(ctx context.Context, channelID [16]byte) (int, error) {
	var n int
	err := d.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_channels WHERE channel_id = $1`, hexID(channelID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return n, nil
}

// ListSimpleChannelsForUser backs List{Channels} (spec §4.3).
func (d *DB) ListSimpleChannelsForUser(ctx context.Context, lodestoneID uint64) ([]model.SimpleChannel, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT channels.id, channels.name, user_channels.rank
		 FROM user_channels JOIN channels ON channels.id = user_channels.channel_id
		 WHERE user_channels.lodestone_id = $1`, int64(lodestoneID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying channels for user: %w", err)
	}
	defer rows.Close()

	var out []model.SimpleChannel
	for rows.Next() {
		var idStr string
		var sc model.SimpleChannel
		var rank uint8
		if err := rows.Scan(&idStr, &sc.Name, &rank); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		id, err := parseHexID(idStr)
		if err != nil {
			return nil, err
		}
		sc.ID = id
		sc.Rank = model.ParseRank(rank)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListInviteChannelsForUser backs List{Invites}, which reports the
// invited channels with Rank = Member per spec §4.3's List contract.
func (d *DB) ListInviteChannelsForUser(ctx context.Context, lodestoneID uint64) ([]model.SimpleChannel, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT channels.id, channels.name
		 FROM channel_invites JOIN channels ON channels.id = channel_invites.channel_id
		 WHERE channel_invites.invited = $1`, int64(lodestoneID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying invites for user: %w", err)
	}
	defer rows.Close()

	var out []model.SimpleChannel
	for rows.Next() {
		var idStr string
		var sc model.SimpleChannel
		if err := rows.Scan(&idStr, &sc.Name); err != nil {
			return nil, fmt.Errorf("scanning invite: %w", err)
		}
		id, err := parseHexID(idStr)
		if err != nil {
			return nil, err
		}
		sc.ID = id
		sc.Rank = model.RankMember
		out = append(out, sc)
	}
	return out, rows.Err()
}

// IsMemberOrInvitee reports whether the user is a member or invitee of
// the channel, backing the membership-enumeration guard in
// List{Members} (spec §4.3).
func (d *DB) IsMemberOrInvitee(ctx context.Context, channelID [16]byte, lodestoneID uint64) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM user_channels WHERE channel_id = $1 AND lodestone_id = $2
		   UNION
		   SELECT 1 FROM channel_invites WHERE channel_id = $1 AND invited = $2
		 )`, hexID(channelID), int64(lodestoneID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking membership/invite: %w", err)
	}
	return exists, nil
}

// --- invites ---

// AddInvite inserts a pending invite row.
func (d *DB) AddInvite(ctx context.Context, channelID [16]byte, invited, inviter uint64) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO channel_invites (channel_id, invited, inviter) VALUES ($1, $2, $3)`,
		hexID(channelID), int64(invited), int64(inviter),
	)
	if err != nil {
		return fmt.Errorf("adding invite: %w", err)
	}
	return nil
}

// GetInvite returns ok=false if no invite exists for (channel, invited).
func (d *DB) GetInvite(ctx context.Context, channelID [16]byte, invited uint64) (inviter uint64, ok bool, err error) {
	var i int64
	qerr := d.pool.QueryRow(ctx,
		`SELECT inviter FROM channel_invites WHERE channel_id = $1 AND invited = $2`,
		hexID(channelID), int64(invited),
	).Scan(&i)
	if qerr != nil {
		if isNoRows(qerr) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("querying invite: %w", qerr)
	}
	return uint64(i), true, nil
}

// DeleteInvite removes an invite row and reports whether one existed,
// backing Join's "DELETE ... RETURNING" semantics from spec §4.3.
func (d *DB) DeleteInvite(ctx context.Context, channelID [16]byte, invited uint64) (bool, error) {
	tag, err := d.pool.Exec(ctx,
		`DELETE FROM channel_invites WHERE channel_id = $1 AND invited = $2`,
		hexID(channelID), int64(invited),
	)
	if err != nil {
		return false, fmt.Errorf("deleting invite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
