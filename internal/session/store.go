// Package session persists password-gated, expiring user configurations
// backed by SQLite. Callers only ever see a config snapshot; the stored
// hash and salt never leave the store.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
	_ "modernc.org/sqlite"

	"tubio/internal/config"
	"tubio/internal/logging"
)

var (
	// ErrNotFound covers both unknown ids and wrong passwords; the two
	// cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("session not found")
	// ErrExpired signals a read past expiry. The record stays on disk
	// until the next sweep.
	ErrExpired = errors.New("session expired")
)

var idPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// ValidID reports whether s has the shape of a session id.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

const (
	hashBytes  = 32
	saltBytes  = 16
	lockStripe = 32
)

// Session is the caller-visible snapshot of one record.
type Session struct {
	ID           string
	Config       string
	CreatedAt    time.Time
	LastAccessed time.Time
	ExpiresAt    time.Time
}

// ListEntry is the admin view of one record; it carries no config
// content, only its size.
type ListEntry struct {
	ID           string
	CreatedAt    time.Time
	LastAccessed time.Time
	ExpiresAt    time.Time
	ConfigSize   int
}

// Store manages session persistence.
type Store struct {
	db         *sql.DB
	path       string
	expiry     time.Duration
	iterations int
	logger     *slog.Logger
	locks      [lockStripe]sync.Mutex
}

// Open initializes or connects to the session database.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.SessionDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{
		db:         db,
		path:       dbPath,
		expiry:     time.Duration(cfg.Sessions.ExpiryDays) * 24 * time.Hour,
		iterations: cfg.Sessions.PBKDF2Iterations,
		logger:     logging.NewComponentLogger(logger, "sessions"),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create stores a new session and returns its id.
func (s *Store) Create(ctx context.Context, configPayload, password string) (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := hex.EncodeToString(idBytes)

	saltRaw := make([]byte, saltBytes)
	if _, err := rand.Read(saltRaw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(saltRaw)

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	expires := now.Add(s.expiry).Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, config, password_hash, salt, created_at, last_accessed, expires_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, configPayload, s.hashPassword(password, salt), salt, timestamp, timestamp, expires)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// Read fetches a session. A successful read re-stamps last-accessed and
// slides the expiry forward; this is the only renewal mechanism. An
// empty password skips verification (anonymous protocol reads); a wrong
// password is indistinguishable from an unknown id.
func (s *Store) Read(ctx context.Context, id, password string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(ctx, id, password)
}

func (s *Store) readLocked(ctx context.Context, id, password string) (*Session, error) {
	var (
		configPayload, hash, salt          string
		createdRaw, accessedRaw, expiryRaw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT config, password_hash, salt, created_at, last_accessed, expires_at
         FROM sessions WHERE id = ?`, id).
		Scan(&configPayload, &hash, &salt, &createdRaw, &accessedRaw, &expiryRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	created, err := parseTimestamp(createdRaw)
	if err != nil {
		return nil, err
	}
	expires, err := parseTimestamp(expiryRaw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if now.After(expires) {
		s.logger.Info("expired session accessed", logging.String("session_id", id))
		return nil, ErrExpired
	}
	if password != "" && !s.verifyPassword(password, hash, salt) {
		return nil, ErrNotFound
	}

	newExpiry := now.Add(s.expiry)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_accessed = ?, expires_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), newExpiry.Format(time.RFC3339Nano), id); err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}

	return &Session{
		ID:           id,
		Config:       configPayload,
		CreatedAt:    created,
		LastAccessed: now,
		ExpiresAt:    newExpiry,
	}, nil
}

// Update verifies then replaces the stored config.
func (s *Store) Update(ctx context.Context, id, password, newConfig string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.readLocked(ctx, id, password); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET config = ?, last_accessed = ? WHERE id = ?`,
		newConfig, now, id); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session. A non-empty password is verified first;
// expired sessions can always be deleted.
func (s *Store) Delete(ctx context.Context, id, password string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if password != "" {
		if _, err := s.readLocked(ctx, id, password); err != nil && !errors.Is(err, ErrExpired) {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Sweep removes every expired record and returns how many were deleted.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if affected > 0 {
		s.logger.Info("swept expired sessions", logging.Int64("count", affected))
	}
	return int(affected), nil
}

// RunSweeper sweeps on a fixed interval until the context is canceled.
// Individual sweep failures are logged and do not stop the loop.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("session sweep failed", logging.Error(err))
			}
		}
	}
}

// List returns the admin view of all sessions.
func (s *Store) List(ctx context.Context) ([]ListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, last_accessed, expires_at, length(config)
         FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var entries []ListEntry
	for rows.Next() {
		var (
			entry                              ListEntry
			createdRaw, accessedRaw, expiryRaw string
		)
		if err := rows.Scan(&entry.ID, &createdRaw, &accessedRaw, &expiryRaw, &entry.ConfigSize); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if entry.CreatedAt, err = parseTimestamp(createdRaw); err != nil {
			return nil, err
		}
		if entry.LastAccessed, err = parseTimestamp(accessedRaw); err != nil {
			return nil, err
		}
		if entry.ExpiresAt, err = parseTimestamp(expiryRaw); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// hashPassword derives the stored hash. The hex-encoded salt string
// feeds the derivation directly, so the stored salt text is the salt.
func (s *Store) hashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), s.iterations, hashBytes, sha256.New)
	return hex.EncodeToString(key)
}

func (s *Store) verifyPassword(password, storedHash, salt string) bool {
	derived := s.hashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}

func (s *Store) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripe]
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return ts, nil
}
