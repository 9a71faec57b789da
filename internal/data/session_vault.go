// Package data holds the Postgres-backed persistence layer. It is the
// vault fallback for deployments that run without Redis.
package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/proxymarket/admin-api/internal/data/pgxutil"
	apperrors "github.com/proxymarket/admin-api/internal/errors"
	"github.com/proxymarket/admin-api/internal/ports"
)

// SessionVault implements ports.Vault on the session_entries table.
// Expired rows count as absent on read; a periodic purge removes them for
// good (see PurgeExpired).
type SessionVault struct {
	db    *sql.DB
	clock func() time.Time
}

var _ ports.Vault = (*SessionVault)(nil)

// SessionVaultOptions groups parameters for NewSessionVault.
type SessionVaultOptions struct {
	DB *sql.DB
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewSessionVault constructs a SessionVault.
func NewSessionVault(opts SessionVaultOptions) (*SessionVault, error) {
	if opts.DB == nil {
		return nil, errors.New("data: database connection is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SessionVault{db: opts.DB, clock: clock}, nil
}

func (v *SessionVault) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	var value string
	err := v.db.QueryRowContext(ctx, `
		SELECT value FROM session_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, v.clock(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.MapDBError(err)
	}
	return value, true, nil
}

func (v *SessionVault) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return apperrors.Validation("vault key cannot be empty")
	}
	var expiresAt *time.Time
	if ttl > 0 {
		t := v.clock().Add(ttl)
		expiresAt = &t
	}
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO session_entries (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at`,
		key, value, expiresAt, v.clock(),
	)
	return apperrors.MapDBError(err)
}

// Delete removes the given keys in one transaction, so a session's token
// and profile rows go together.
func (v *SessionVault) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := pgxutil.WithSQLTx(ctx, v.db, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			for _, k := range keys {
				if k == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx, `DELETE FROM session_entries WHERE key = $1`, k); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return apperrors.MapDBError(err)
}

// PurgeExpired deletes rows whose expiry has lapsed and returns how many
// went away. The sweep runner calls this periodically.
func (v *SessionVault) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := v.db.ExecContext(ctx,
		`DELETE FROM session_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		v.clock(),
	)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return n, nil
}
