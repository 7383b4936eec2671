package commands_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/credential"
	"tasker/internal/exitcode"
	"tasker/internal/navigation"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/testutil"
)

// harness runs commands against a FakeService. Each run gets a fresh Env
// sharing the config directory, as separate CLI invocations would.
type harness struct {
	svc   *testutil.FakeService
	store *credential.MemoryStore
	nav   *navigation.Recorder
	cfg   *config.Config
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	h := &harness{
		svc:   testutil.NewFakeService(),
		store: credential.NewMemoryStore(),
		nav:   &navigation.Recorder{},
		cfg:   cfg,
	}
	if loggedIn {
		if err := h.store.Save(h.svc.Token, "alice"); err != nil {
			t.Fatalf("save credential: %v", err)
		}
	}
	return h
}

// run parses args with the command's flags (flags first) and runs it.
func (h *harness) run(t *testing.T, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	env := &commands.Env{
		Config:  h.cfg,
		Logger:  zerolog.Nop(),
		Store:   h.store,
		Guard:   session.NewGuard(h.store, h.nav, zerolog.Nop()),
		Nav:     h.nav,
		Service: h.svc,
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectSuccess(t *testing.T, stdout, stderr string, code int, want string) {
	t.Helper()
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func expectFailure(t *testing.T, stderr string, code, wantCode int, wantErr string) {
	t.Helper()
	if code != wantCode {
		t.Errorf("expected exit code %d, got %d", wantCode, code)
	}
	if stderr != wantErr {
		t.Errorf("expected %q, got %q", wantErr, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	h := newHarness(t, false)
	stdout, stderr, code := h.run(t, &commands.VersionCmd{})
	expectSuccess(t, stdout, stderr, code, "tasker 0.1.0\n")
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	h := newHarness(t, false)
	stdout, stderr, code := h.run(t, commands.NewHelpCmd(commands.DefaultRegistry))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_Empty(t *testing.T) {
	h := newHarness(t, true)
	stdout, stderr, code := h.run(t, &commands.ListCmd{})
	expectSuccess(t, stdout, stderr, code, "no tasks found\n-- page 1, all --\n")
}

func TestListCommand_NewestFirst(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("Buy milk", false)
	h.svc.AddTask("Buy eggs", true)

	stdout, stderr, code := h.run(t, &commands.ListCmd{})
	expectSuccess(t, stdout, stderr, code, "   2  [x] Buy eggs\n   1  [ ] Buy milk\n-- page 1, all --\n")
}

func TestListCommand_Flags(t *testing.T) {
	h := newHarness(t, true)
	h.cfg.PerPage = 1
	h.svc.AddTask("a", true)
	h.svc.AddTask("b", false)
	h.svc.AddTask("c", true)

	stdout, stderr, code := h.run(t, &commands.ListCmd{}, "--page", "2", "--filter", "done")
	expectSuccess(t, stdout, stderr, code, "   1  [x] a\n-- page 2, done --\n")

	// The position sticks for the next invocation.
	stdout, stderr, code = h.run(t, &commands.ListCmd{})
	expectSuccess(t, stdout, stderr, code, "   1  [x] a\n-- page 2, done --\n")
}

func TestListCommand_InvalidFlags(t *testing.T) {
	h := newHarness(t, true)

	_, stderr, code := h.run(t, &commands.ListCmd{}, "--page", "-1")
	expectFailure(t, stderr, code, exitcode.UserError, "error: invalid page number: -1\n")

	_, stderr, code = h.run(t, &commands.ListCmd{}, "--filter", "maybe")
	expectFailure(t, stderr, code, exitcode.UserError, "error: invalid filter: maybe (want all, done or open)\n")

	_, stderr, code = h.run(t, &commands.ListCmd{}, "extra")
	expectFailure(t, stderr, code, exitcode.UserError, "error: unexpected argument: extra\n")

	if h.svc.CallCount() != 0 {
		t.Errorf("expected no service calls, got %d", h.svc.CallCount())
	}
}

func TestPagingCommands(t *testing.T) {
	h := newHarness(t, true)
	h.cfg.PerPage = 2
	for i := 1; i <= 5; i++ {
		h.svc.AddTask(fmt.Sprintf("t%d", i), false)
	}

	steps := []struct {
		cmd  commands.Command
		want string
	}{
		{&commands.PrevCmd{}, "   5  [ ] t5\n   4  [ ] t4\n-- page 1, all --\n"},
		{&commands.NextCmd{}, "   3  [ ] t3\n   2  [ ] t2\n-- page 2, all --\n"},
		{&commands.NextCmd{}, "   1  [ ] t1\n-- page 3, all --\n"},
		{&commands.NextCmd{}, "no tasks found\n-- page 4, all --\n"},
		{&commands.PrevCmd{}, "   1  [ ] t1\n-- page 3, all --\n"},
		{&commands.ListCmd{}, "   1  [ ] t1\n-- page 3, all --\n"},
	}
	for i, step := range steps {
		stdout, stderr, code := h.run(t, step.cmd)
		if code != exitcode.Success || stderr != "" {
			t.Fatalf("step %d: code %d, stderr %q", i, code, stderr)
		}
		if stdout != step.want {
			t.Errorf("step %d: expected %q, got %q", i, step.want, stdout)
		}
	}
}

func TestPagingCommands_FailureKeepsPosition(t *testing.T) {
	h := newHarness(t, true)
	h.svc.ListTasksErr = service.Errorf(service.KindNetwork, "network error")

	_, stderr, code := h.run(t, &commands.NextCmd{})
	expectFailure(t, stderr, code, exitcode.BackendError, "error: network error\n")

	h.svc.ListTasksErr = nil
	stdout, stderr, code := h.run(t, &commands.ListCmd{})
	expectSuccess(t, stdout, stderr, code, "no tasks found\n-- page 1, all --\n")
}

func TestFilterCommand(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("a", true)
	h.svc.AddTask("b", false)

	stdout, stderr, code := h.run(t, &commands.FilterCmd{}, "open")
	expectSuccess(t, stdout, stderr, code, "   2  [ ] b\n-- page 1, open --\n")

	stdout, stderr, code = h.run(t, &commands.FilterCmd{}, "true")
	expectSuccess(t, stdout, stderr, code, "   1  [x] a\n-- page 1, done --\n")

	_, stderr, code = h.run(t, &commands.FilterCmd{})
	expectFailure(t, stderr, code, exitcode.UserError, "error: filter required (all, done or open)\n")
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	h := newHarness(t, true)

	stdout, stderr, code := h.run(t, &commands.AddCmd{}, "--description", "2%", "Buy", "milk")
	expectSuccess(t, stdout, stderr, code, "created 1\n   1  [ ] Buy milk\n          2%\n-- page 1, all --\n")

	tasks := h.svc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Description != "2%" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	h := newHarness(t, true)
	h.cfg.Quiet = true

	stdout, stderr, code := h.run(t, &commands.AddCmd{}, "Buy milk")
	expectSuccess(t, stdout, stderr, code, "")
}

func TestAddCommand_EmptyTitle(t *testing.T) {
	h := newHarness(t, true)

	for _, args := range [][]string{nil, {"  "}} {
		stdout, stderr, code := h.run(t, &commands.AddCmd{}, args...)
		expectFailure(t, stderr, code, exitcode.UserError, "error: title is required\n")
		if stdout != "" {
			t.Errorf("expected no stdout, got %q", stdout)
		}
	}
	if h.svc.CallCount() != 0 {
		t.Errorf("expected no service calls, got %d", h.svc.CallCount())
	}
}

func TestAddCommand_ResyncFailure(t *testing.T) {
	h := newHarness(t, true)
	h.svc.ListTasksErr = service.Errorf(service.KindNetwork, "network error")

	stdout, stderr, code := h.run(t, &commands.AddCmd{}, "Buy milk")
	expectFailure(t, stderr, code, exitcode.BackendError, "error: change saved, but reloading tasks failed: network error\n")
	if stdout != "created 1\n" {
		t.Errorf("expected %q, got %q", "created 1\n", stdout)
	}
	if len(h.svc.Tasks()) != 1 {
		t.Errorf("expected the task to be created")
	}
}

// Tests for edit command
func TestEditCommand_KeepsDescription(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.svc.CreateTask(context.Background(), "old", "keep me"); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run(t, &commands.EditCmd{}, "1", "new", "title")
	expectSuccess(t, stdout, stderr, code, "updated 1\n   1  [ ] new title\n          keep me\n-- page 1, all --\n")
}

func TestEditCommand_ReplacesDescription(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.svc.CreateTask(context.Background(), "old", "drop me"); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run(t, &commands.EditCmd{}, "--description", "", "#1", "new")
	expectSuccess(t, stdout, stderr, code, "updated 1\n   1  [ ] new\n-- page 1, all --\n")
	if got := h.svc.Tasks()[0].Description; got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}

func TestEditCommand_Errors(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("a", false)

	_, stderr, code := h.run(t, &commands.EditCmd{}, "x", "title")
	expectFailure(t, stderr, code, exitcode.UserError, "error: invalid task id: x\n")

	_, stderr, code = h.run(t, &commands.EditCmd{}, "--description", "d", "1")
	expectFailure(t, stderr, code, exitcode.UserError, "error: title is required\n")

	calls := h.svc.CallCount()
	_, stderr, code = h.run(t, &commands.EditCmd{}, "1", "   ")
	expectFailure(t, stderr, code, exitcode.UserError, "error: title is required\n")
	if got := h.svc.CallCount(); got != calls {
		t.Errorf("blank title made %d service calls, want none", got-calls)
	}

	_, stderr, code = h.run(t, &commands.EditCmd{}, "9", "title")
	expectFailure(t, stderr, code, exitcode.UserError, "error: not found\n")
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("a", true)

	stdout, stderr, code := h.run(t, &commands.ShowCmd{}, "1")
	expectSuccess(t, stdout, stderr, code, "   1  [x] a\n")
}

// Tests for done and undone commands
func TestDoneCommands(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("a", false)

	stdout, stderr, code := h.run(t, commands.NewDoneCmd(true), "1")
	expectSuccess(t, stdout, stderr, code, "done 1\n   1  [x] a\n-- page 1, all --\n")

	stdout, stderr, code = h.run(t, commands.NewDoneCmd(false), "1")
	expectSuccess(t, stdout, stderr, code, "open 1\n   1  [ ] a\n-- page 1, all --\n")

	_, stderr, code = h.run(t, commands.NewDoneCmd(true))
	expectFailure(t, stderr, code, exitcode.UserError, "error: task id required\n")
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask("a", false)

	stdout, stderr, code := h.run(t, &commands.RmCmd{}, "1")
	expectSuccess(t, stdout, stderr, code, "deleted 1\nno tasks found\n-- page 1, all --\n")

	stdout, stderr, code = h.run(t, &commands.RmCmd{}, "1")
	expectFailure(t, stderr, code, exitcode.UserError, "error: not found\n")
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
}

func TestServerRejectsSession(t *testing.T) {
	h := newHarness(t, true)
	h.svc.ListTasksErr = service.Errorf(service.KindUnauthorized, "Token has expired")

	_, stderr, code := h.run(t, &commands.ListCmd{})
	expectFailure(t, stderr, code, exitcode.AuthError, "error: Token has expired\n")

	if _, ok, _ := h.store.Load(); ok {
		t.Error("expected credential to be cleared")
	}
	if h.nav.Count(navigation.Login) != 1 {
		t.Errorf("expected one navigation to login, got %v", h.nav.Routes)
	}
}

// Tests for register, login, logout and whoami
func TestRegisterLoginLogout(t *testing.T) {
	h := newHarness(t, false)

	stdout, stderr, code := h.run(t, &commands.RegisterCmd{}, "--password", "secret123", "alice")
	expectSuccess(t, stdout, stderr, code, "registered alice\n")

	stdout, stderr, code = h.run(t, &commands.LoginCmd{}, "-p", "secret123", "alice")
	expectSuccess(t, stdout, stderr, code, "logged in as alice\n")

	cred, ok, err := h.store.Load()
	if err != nil || !ok || cred.Username != "alice" || cred.Token != h.svc.Token {
		t.Fatalf("unexpected credential: %+v %v %v", cred, ok, err)
	}

	stdout, stderr, code = h.run(t, &commands.WhoamiCmd{})
	expectSuccess(t, stdout, stderr, code, "alice\n")

	stdout, stderr, code = h.run(t, &commands.LogoutCmd{})
	expectSuccess(t, stdout, stderr, code, "ok\n")

	stdout, stderr, code = h.run(t, &commands.LogoutCmd{})
	expectSuccess(t, stdout, stderr, code, "not logged in\n")

	want := []navigation.Route{navigation.Login, navigation.Tasks, navigation.Login, navigation.Login}
	if fmt.Sprint(h.nav.Routes) != fmt.Sprint(want) {
		t.Errorf("expected routes %v, got %v", want, h.nav.Routes)
	}
}

func TestLoginCommand_PasswordFromEnv(t *testing.T) {
	h := newHarness(t, false)
	if err := h.svc.Register(context.Background(), "alice", "secret123"); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.PasswordEnv, "secret123")

	stdout, stderr, code := h.run(t, &commands.LoginCmd{}, "alice")
	expectSuccess(t, stdout, stderr, code, "logged in as alice\n")
}

func TestLoginCommand_Failures(t *testing.T) {
	h := newHarness(t, false)
	t.Setenv(config.PasswordEnv, "")
	if err := h.svc.Register(context.Background(), "alice", "secret123"); err != nil {
		t.Fatal(err)
	}
	calls := h.svc.CallCount()

	_, stderr, code := h.run(t, &commands.LoginCmd{}, "alice")
	expectFailure(t, stderr, code, exitcode.UserError, "error: username and password required\n")
	if h.svc.CallCount() != calls {
		t.Error("expected no service call for empty password")
	}

	_, stderr, code = h.run(t, &commands.LoginCmd{}, "--password", "wrong", "alice")
	expectFailure(t, stderr, code, exitcode.UserError, "error: bad username or password\n")

	if _, ok, _ := h.store.Load(); ok {
		t.Error("expected no credential after failed login")
	}
}

func TestWhoamiCommand_Expiry(t *testing.T) {
	h := newHarness(t, false)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testutil.UnsignedToken(map[string]any{"sub": "1", "exp": exp.Unix()})
	if err := h.store.Save(token, "alice"); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run(t, &commands.WhoamiCmd{})
	want := fmt.Sprintf("alice\nsession expires %s\n", exp.Local().Format(time.RFC3339))
	expectSuccess(t, stdout, stderr, code, want)
}

func TestWhoamiCommand_NoSession(t *testing.T) {
	h := newHarness(t, false)

	_, stderr, code := h.run(t, &commands.WhoamiCmd{})
	expectFailure(t, stderr, code, exitcode.AuthError, "error: not logged in\n")
	if n := h.nav.Count(navigation.Login); n != 1 {
		t.Errorf("expected one navigation to login, got %d", n)
	}
}

// Tests for config command
func TestConfigCommand(t *testing.T) {
	h := newHarness(t, true)

	stdout, stderr, code := h.run(t, &commands.ConfigCmd{})
	if code != exitcode.Success || stderr != "" {
		t.Fatalf("code %d, stderr %q", code, stderr)
	}

	var got map[string]any
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	want := map[string]any{
		"dir":      h.cfg.Dir,
		"api_url":  config.DefaultAPIURL,
		"per_page": config.DefaultPerPage,
		"timeout":  "5s",
		"user":     "alice",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
