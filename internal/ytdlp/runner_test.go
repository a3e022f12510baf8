package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tubio/internal/ytdlp"
)

type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	cookies []string
	output  []byte
	err     error
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{}, args...))
	for i, arg := range args {
		if arg == "--cookies" && i+1 < len(args) {
			if data, err := os.ReadFile(args[i+1]); err == nil {
				f.cookies = append(f.cookies, args[i+1]+"="+string(data))
			} else {
				f.cookies = append(f.cookies, args[i+1]+"=<missing>")
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func newRunner(t *testing.T, exec *fakeExecutor) *ytdlp.Runner {
	t.Helper()
	runner, err := ytdlp.New("yt-dlp", "", 30, nil,
		ytdlp.WithExecutor(exec), ytdlp.WithTempDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return runner
}

func TestInvokeAppendsBaselineFlags(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{"id":"abc","title":"hi"}`)}
	runner := newRunner(t, exec)

	record, err := runner.Invoke(context.Background(), "", []string{"-I", "1:100:1", "--yes-playlist", "https://example.com"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if record.Title != "hi" {
		t.Fatalf("unexpected record: %+v", record)
	}

	args := exec.calls[0]
	joined := strings.Join(args, " ")
	if !strings.HasPrefix(joined, "-I 1:100:1 --yes-playlist https://example.com ") {
		t.Fatalf("per-call args must come first: %q", joined)
	}
	for _, flag := range []string{"--flat-playlist", "--no-cache-dir", "--ignore-no-formats-error", "-J", "--ies all", "--extractor-args generic:impersonate", "--compat-options no-youtube-channel-redirect"} {
		if !strings.Contains(joined, flag) {
			t.Fatalf("missing baseline flag %q in %q", flag, joined)
		}
	}
	if strings.Contains(joined, "--cookies") {
		t.Fatal("no cookie file expected without auth")
	}
}

func TestInvokeWritesAndRemovesCookieFile(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{}`)}
	runner := newRunner(t, exec)

	if _, err := runner.Invoke(context.Background(), "cookie-data", []string{"https://example.com"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(exec.cookies) != 1 {
		t.Fatalf("expected one cookie file, got %d", len(exec.cookies))
	}
	pair := strings.SplitN(exec.cookies[0], "=", 2)
	if pair[1] != "cookie-data" {
		t.Fatalf("cookie file content: %q", pair[1])
	}
	if _, err := os.Stat(pair[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cookie file should be removed, stat err: %v", err)
	}
}

func TestInvokeRemovesCookieFileOnFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("boom")}
	runner := newRunner(t, exec)

	if _, err := runner.Invoke(context.Background(), "cookie-data", nil); err == nil {
		t.Fatal("expected error")
	}
	pair := strings.SplitN(exec.cookies[0], "=", 2)
	if _, err := os.Stat(pair[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cookie file should be removed after failure, stat err: %v", err)
	}
}

func TestInvokeRejectsMalformedOutput(t *testing.T) {
	exec := &fakeExecutor{output: []byte("not json")}
	runner := newRunner(t, exec)
	if _, err := runner.Invoke(context.Background(), "", nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConcurrentInvocationsGetDistinctCookieFiles(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{}`)}
	runner := newRunner(t, exec)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runner.Invoke(context.Background(), "data", nil); err != nil {
				t.Errorf("Invoke: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, pair := range exec.cookies {
		path := strings.SplitN(pair, "=", 2)[0]
		if _, dup := seen[path]; dup {
			t.Fatalf("duplicate cookie file name %q", path)
		}
		seen[path] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct files, got %d", n, len(seen))
	}
}

func TestTempNamerWrapsWithoutCollision(t *testing.T) {
	namer := ytdlp.NewTempNamer(t.TempDir())
	first := namer.Next()
	second := namer.Next()
	if first == second {
		t.Fatal("consecutive names must differ")
	}
	if filepath.Base(first) == filepath.Base(second) {
		t.Fatal("sequence suffix must advance")
	}
}

func TestInvokeKeepsFullStderrInError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-tool")
	body := "#!/bin/sh\necho 'ERROR: first detail' >&2\necho 'ERROR: second detail' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	runner, err := ytdlp.New(script, "", 5, nil, ytdlp.WithTempDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = runner.Invoke(context.Background(), "", []string{"https://example.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "first detail") || !strings.Contains(err.Error(), "second detail") {
		t.Fatalf("error must carry the full stderr, got %q", err.Error())
	}
}

func TestIndexRange(t *testing.T) {
	if got := ytdlp.IndexRange(0, false); got != "1:100:1" {
		t.Fatalf("forward first page: %q", got)
	}
	if got := ytdlp.IndexRange(100, false); got != "101:200:1" {
		t.Fatalf("forward second page: %q", got)
	}
	if got := ytdlp.IndexRange(0, true); got != "-1:-100:-1" {
		t.Fatalf("reversed first page: %q", got)
	}
	if got := ytdlp.IndexRange(100, true); got != "-101:-200:-1" {
		t.Fatalf("reversed second page: %q", got)
	}
}
