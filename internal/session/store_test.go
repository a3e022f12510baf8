package session_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"tubio/internal/config"
	"tubio/internal/session"
	"tubio/internal/testsupport"
)

func openStore(t *testing.T) (*session.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithIterations(1000))
	store, err := session.Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, cfg
}

// setExpiry rewrites a record's expiry directly, bypassing the store.
func setExpiry(t *testing.T, cfg *config.Config, id string, expires time.Time) {
	t.Helper()
	db, err := sql.Open("sqlite", cfg.SessionDBPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		expires.UTC().Format(time.RFC3339Nano), id); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
}

func countRows(t *testing.T, cfg *config.Config) int {
	t.Helper()
	db, err := sql.Open("sqlite", cfg.SessionDBPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sessions`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestCreateAndRead(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, `{"catalogs":[]}`, "hunter2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !session.ValidID(id) {
		t.Fatalf("invalid session id %q", id)
	}

	got, err := store.Read(ctx, id, "hunter2")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Config != `{"catalogs":[]}` {
		t.Fatalf("unexpected config: %q", got.Config)
	}
	if !got.ExpiresAt.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Fatalf("expiry window too short: %v", got.ExpiresAt)
	}
}

func TestReadRenewsSlidingExpiry(t *testing.T) {
	store, cfg := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Shrink the remaining lifetime, then confirm a read restores it.
	setExpiry(t, cfg, id, time.Now().Add(time.Hour))

	got, err := store.Read(ctx, id, "pw")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !got.ExpiresAt.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Fatalf("read must slide expiry forward: %v", got.ExpiresAt)
	}
}

func TestExpiredReadSignalsAndKeepsRecord(t *testing.T) {
	store, cfg := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	setExpiry(t, cfg, id, time.Now().Add(-time.Minute))

	if _, err := store.Read(ctx, id, "pw"); !errors.Is(err, session.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if countRows(t, cfg) != 1 {
		t.Fatal("expired record must stay until the sweep")
	}

	deleted, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 1 || countRows(t, cfg) != 0 {
		t.Fatalf("sweep should remove the record, deleted=%d", deleted)
	}
}

func TestWrongPasswordLooksLikeUnknownID(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "{}", "correct")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, errWrong := store.Read(ctx, id, "incorrect")
	_, errUnknown := store.Read(ctx, "0123456789abcdef0123456789abcdef", "anything")

	if !errors.Is(errWrong, session.ErrNotFound) || !errors.Is(errUnknown, session.ErrNotFound) {
		t.Fatalf("both cases must be ErrNotFound: %v / %v", errWrong, errUnknown)
	}
}

func TestAnonymousReadSkipsVerification(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, `{"search":false}`, "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.Read(ctx, id, "")
	if err != nil {
		t.Fatalf("anonymous Read: %v", err)
	}
	if got.Config != `{"search":false}` {
		t.Fatalf("unexpected config: %q", got.Config)
	}
}

func TestUpdateReplacesConfig(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Update(ctx, id, "wrong", `{"dearrow":true}`); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("wrong password must not update: %v", err)
	}
	if err := store.Update(ctx, id, "pw", `{"dearrow":true}`); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Read(ctx, id, "pw")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Config != `{"dearrow":true}` {
		t.Fatalf("unexpected config: %q", got.Config)
	}
}

func TestDelete(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, id, "wrong"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("wrong password must not delete: %v", err)
	}
	if err := store.Delete(ctx, id, "pw"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(ctx, id, "pw"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("deleted session must be gone: %v", err)
	}
}

func TestSweepLeavesLiveSessions(t *testing.T) {
	store, cfg := openStore(t)
	ctx := context.Background()

	live, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	dead, err := store.Create(ctx, "{}", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	setExpiry(t, cfg, dead, time.Now().Add(-time.Hour))

	deleted, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one deletion, got %d", deleted)
	}
	if _, err := store.Read(ctx, live, "pw"); err != nil {
		t.Fatalf("live session must survive the sweep: %v", err)
	}
}

func TestListReportsSizesNotSecrets(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, `{"catalogs":[]}`, "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].ConfigSize != len(`{"catalogs":[]}`) {
		t.Fatalf("unexpected config size: %d", entries[0].ConfigSize)
	}
}

func TestValidID(t *testing.T) {
	if !session.ValidID("0123456789abcdef0123456789abcdef") {
		t.Fatal("expected valid id")
	}
	for _, bad := range []string{"", "short", "0123456789ABCDEF0123456789ABCDEF", "0123456789abcdef0123456789abcdeg"} {
		if session.ValidID(bad) {
			t.Fatalf("expected invalid id: %q", bad)
		}
	}
}
