package commands_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/session"
	"tasker/internal/testutil"
)

func runLogin(t *testing.T, cfg *config.Config, userID, email, input string, interactive bool) (stdout, stderr string, code int) {
	t.Helper()

	cmd := &commands.LoginCmd{}
	cmd.SetIdentity(userID, email)
	cmd.SetInput(strings.NewReader(input), interactive)

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, nil, nil, nil, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// TestLoginCommand_Flags verifies login stores the session from flags
func TestLoginCommand_Flags(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	stdout, stderr, code := runLogin(t, cfg, "alice", "alice@example.com", "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	sess, err := session.NewStore(cfg.SessionPath()).Get()
	if err != nil {
		t.Fatalf("expected stored session: %v", err)
	}
	if sess.UserID != "alice" || sess.Email != "alice@example.com" {
		t.Errorf("unexpected session %+v", sess)
	}
	if d := time.Until(sess.ExpiresAt); d < session.Lifetime-time.Minute || d > session.Lifetime {
		t.Errorf("expected expiry about seven days out, got %s", d)
	}
}

// TestLoginCommand_MissingFields verifies the blocking alert for empty input
func TestLoginCommand_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		email  string
	}{
		{"no email", "alice", ""},
		{"no user", "", "alice@example.com"},
		{"whitespace", "  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir()}

			stdout, stderr, code := runLogin(t, cfg, tt.userID, tt.email, "", false)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if stderr != "error: user id and email required\n" {
				t.Errorf("unexpected stderr %q", stderr)
			}
			if _, err := os.Stat(cfg.SessionPath()); !os.IsNotExist(err) {
				t.Error("session file must not be written")
			}
		})
	}
}

// TestLoginCommand_Prompts verifies missing fields are read from a terminal
func TestLoginCommand_Prompts(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	stdout, stderr, code := runLogin(t, cfg, "", "", "bob\nbob@example.com\n", true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if stderr != "User ID: Email: " {
		t.Errorf("unexpected prompts %q", stderr)
	}

	sess, err := session.NewStore(cfg.SessionPath()).Get()
	if err != nil || sess.UserID != "bob" || sess.Email != "bob@example.com" {
		t.Errorf("unexpected session %+v (%v)", sess, err)
	}
}

// TestLoginCommand_PromptsOnlyMissing verifies flags are not asked again
func TestLoginCommand_PromptsOnlyMissing(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	_, stderr, code := runLogin(t, cfg, "carol", "", "carol@example.com", true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stderr != "Email: " {
		t.Errorf("unexpected prompts %q", stderr)
	}
}

// TestLoginCommand_AlreadyLoggedIn verifies a live session is left alone
func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if _, err := session.NewStore(cfg.SessionPath()).Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runLogin(t, cfg, "mallory", "m@example.com", "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected 'already logged in\\n', got %q", stdout)
	}
	sess, _ := session.NewStore(cfg.SessionPath()).Get()
	if sess.UserID != "alice" {
		t.Errorf("session must be unchanged, got %+v", sess)
	}
}

// TestLoginCommand_AlreadyLoggedInShowsTasks verifies the redirect to the task list
func TestLoginCommand_AlreadyLoggedInShowsTasks(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if _, err := session.NewStore(cfg.SessionPath()).Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	svc := testutil.NewFakeService()
	svc.AddTask("a1", "Buy milk")

	cmd := &commands.LoginCmd{}
	cmd.SetInput(strings.NewReader(""), false)

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errBuf.String())
	}
	expected := "already logged in\nWelcome, alice!\n------------\n   1  [ ] Buy milk\n"
	if outBuf.String() != expected {
		t.Errorf("expected %q, got %q", expected, outBuf.String())
	}
}

// TestLoginCommand_ExpiredSession verifies login proceeds past an expired session
func TestLoginCommand_ExpiredSession(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	past := time.Now().Add(-8 * 24 * time.Hour)
	old := session.NewStore(cfg.SessionPath(), session.WithClock(func() time.Time { return past }))
	if _, err := old.Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runLogin(t, cfg, "bob", "bob@example.com", "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	sess, err := session.NewStore(cfg.SessionPath()).Get()
	if err != nil || sess.UserID != "bob" {
		t.Errorf("expected new session for bob, got %+v (%v)", sess, err)
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout without a session
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir()}

	code := cmd.Run(context.Background(), cfg, nil, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", outBuf.String())
	}
}

// TestLogoutCommand_RemovesSession verifies logout deletes session.json
func TestLogoutCommand_RemovesSession(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	cfg := &config.Config{Dir: t.TempDir()}
	store := session.NewStore(cfg.SessionPath())
	if _, err := store.Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}
	if store.Exists() {
		t.Error("session file should be removed")
	}
	if store.IsAuthenticated() {
		t.Error("expected no session after logout")
	}
}

// TestLogoutCommand_Quiet verifies logout prints nothing with --quiet
func TestLogoutCommand_Quiet(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	cfg := &config.Config{Dir: t.TempDir(), Quiet: true}
	if _, err := session.NewStore(cfg.SessionPath()).Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no output, got %q", outBuf.String())
	}
}
