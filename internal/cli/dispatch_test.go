package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService
// and counts how often it was asked.
func testFactory(svc *testutil.FakeService, calls *int) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		if calls != nil {
			*calls++
		}
		return svc, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func loggedInDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := session.NewStore(filepath.Join(dir, config.SessionFile)).Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(t, dispatcher, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(t, dispatcher, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasker 0.1.0\n" {
		t.Errorf("expected 'tasker 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "add", "--due")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -due\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	calls := 0
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), &calls))

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tasker login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if calls != 0 {
		t.Error("backend must not be built without a session")
	}
}

func TestDispatcher_NoArgsDefaultsToList(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tasker login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_SessionExpired(t *testing.T) {
	dir := t.TempDir()
	past := time.Now().Add(-8 * 24 * time.Hour)
	store := session.NewStore(filepath.Join(dir, config.SessionFile), session.WithClock(func() time.Time { return past }))
	if _, err := store.Set("alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: tasker login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_LoginThenList(t *testing.T) {
	dir := t.TempDir()
	svc := testutil.NewFakeService()
	svc.AddTask("a1", "Buy milk")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, nil))

	stdout, stderr, code := run(t, dispatcher, "login", "--config", dir, "--user", "alice", "--email", "alice@example.com")
	if code != exitcode.Success {
		t.Fatalf("login: expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("login: expected 'ok\\n', got %q", stdout)
	}

	stdout, stderr, code = run(t, dispatcher, "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list: expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "Welcome, alice!\n------------\n   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_AddFlags(t *testing.T) {
	dir := loggedInDir(t)
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, nil))

	stdout, stderr, code := run(t, dispatcher, "create", "--config", dir, "-d", "two litres", "--due", "2026-11-02", "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	got := svc.LastCreate
	if got.Title != "Buy milk" || got.Description != "two litres" || got.DueDate != "2026-11-02" {
		t.Errorf("unexpected create request %+v", got)
	}
}

func TestDispatcher_PendingFlag(t *testing.T) {
	dir := loggedInDir(t)
	svc := testutil.NewFakeService()
	svc.AddTask("a1", "Buy milk")
	svc.PutTask(service.Task{TaskID: "a2", Title: "Done already", Status: service.StatusCompleted})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, nil))

	stdout, _, code := run(t, dispatcher, "ls", "--config", dir, "--quiet", "--pending")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_BadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("auth:\n  mode: kerberos\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := run(t, dispatcher, "version", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid config.yaml: unknown auth.mode") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	dir := loggedInDir(t)
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("idtoken: no credentials")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: backend setup: idtoken: no credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_LoginWhenLoggedInShowsTasks(t *testing.T) {
	dir := loggedInDir(t)
	svc := testutil.NewFakeService()
	svc.AddTask("a1", "Buy milk")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, nil))

	stdout, stderr, code := run(t, dispatcher, "login", "--config", dir)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "already logged in\nWelcome, alice!\n------------\n   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_LoginWithoutSessionSkipsBackend(t *testing.T) {
	calls := 0
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService(), &calls))

	_, _, code := run(t, dispatcher, "login", "--config", t.TempDir(), "--user", "bob", "--email", "bob@example.com")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if calls != 0 {
		t.Error("backend must not be built before a session exists")
	}
}
