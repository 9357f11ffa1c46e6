package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/Inflinity/badhabbits/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestLoadSettingsPrecedence(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.toml")
	body := "[app]\nstandalone = true\n\n[timer]\npoll-ms = 250\n\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BADHABBIT_POLL_MS", "300")

	var got model.Config
	root := newRootCmd()
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd)
		got = cfg
		return err
	}
	root.SetArgs([]string{"--config", cfgPath, "--log-level", "debug"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.PollInterval != 300*time.Millisecond {
		t.Fatalf("env should beat file: poll = %s", got.PollInterval)
	}
	if got.LogLevel != "debug" {
		t.Fatalf("flag should beat file: level = %q", got.LogLevel)
	}
	if !got.Standalone {
		t.Fatalf("file value should apply when nothing overrides it")
	}
	if got.DBPath != filepath.Join(dir, "data", "badhabbit", "badhabbit.db") {
		t.Fatalf("unexpected default db path %q", got.DBPath)
	}
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	isolate(t)
	if _, err := run(t, "status", "--poll-ms", "10"); err == nil {
		t.Fatalf("expected poll-ms error")
	}
	if _, err := run(t, "status", "--log-level", "chatty"); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestHeadlessSession(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "test.db")
	base := []string{"--db", db, "--seed", "3"}
	cmd := func(args ...string) []string { return append(append([]string{}, base...), args...) }

	if out := mustRun(t, cmd("start", "nowhere")...); !strings.HasPrefix(out, "nothing changed: unknown mood") {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("tick")...); out != "nothing changed: no task running\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("start", "couch")...); !strings.HasPrefix(out, "Started: ") {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("tick")...); !strings.Contains(out, " left: ") {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("done")...); out != "Done! +1 point (points: 1)\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("send", "123456", "5")...); out != "nothing changed: you have 1 points\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("redeem", "pizza")...); !strings.HasPrefix(out, "Enjoy: ") {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, cmd("feed")...); out != "nothing changed: Sneakers costs 5, you have 0\n" {
		t.Fatalf("unexpected output %q", out)
	}

	status := mustRun(t, cmd("status")...)
	for _, want := range []string{"Points:    0", "Completed: 1", "Task:      none", "pizza x1"} {
		if !strings.Contains(status, want) {
			t.Fatalf("status missing %q:\n%s", want, status)
		}
	}

	history := mustRun(t, cmd("history", "--plain")...)
	for _, want := range []string{"Completed: 1", "Completion rate: 100%", "Top rewards"} {
		if !strings.Contains(history, want) {
			t.Fatalf("history missing %q:\n%s", want, history)
		}
	}

	if _, err := run(t, cmd("reset")...); err == nil {
		t.Fatalf("reset without --yes should fail")
	}
	if out := mustRun(t, cmd("reset", "--yes")...); !strings.HasPrefix(out, "Progress reset. New ID: ") {
		t.Fatalf("unexpected output %q", out)
	}
	status = mustRun(t, cmd("status")...)
	if !strings.Contains(status, "Completed: 0") {
		t.Fatalf("expected cleared progress:\n%s", status)
	}
}

func TestSendWithNonNumericAmountIsANotice(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--db", filepath.Join(dir, "test.db"), "send", "123456", "abc")
	if err != nil {
		t.Fatalf("expected exit 0, got %v", err)
	}
	if out != "nothing changed: amount must be a number\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfessOnFreshRecord(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "test.db")
	if out := mustRun(t, "--db", db, "confess", "sugar"); !strings.HasPrefix(out, "Confessed ") || !strings.HasSuffix(out, "(points: 0)\n") {
		t.Fatalf("unexpected output %q", out)
	}
	history := mustRun(t, "--db", db, "history", "--plain", "--kind", "confessed")
	if !strings.Contains(history, "sugar") {
		t.Fatalf("expected confession in history:\n%s", history)
	}
}

func TestHistoryRejectsUnknownKind(t *testing.T) {
	dir := isolate(t)
	if _, err := run(t, "--db", filepath.Join(dir, "test.db"), "history", "--plain", "--kind", "snacking"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestConfigTemplateMentionsSections(t *testing.T) {
	tpl := defaultConfigTemplate()
	for _, want := range []string{"[app]", "[timer]", "[log]", "poll-ms"} {
		if !strings.Contains(tpl, want) {
			t.Fatalf("template missing %q", want)
		}
	}
}
