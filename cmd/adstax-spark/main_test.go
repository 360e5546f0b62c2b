package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/velocidi/adstax-spark-job-manager/internal/testsupport"
)

type cliTestEnv struct {
	cluster     *testsupport.FakeCluster
	configPath  string
	historyPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cluster := testsupport.NewFakeCluster(t)
	historyPath := filepath.Join(base, "history.db")

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[cluster]
adstax_url = %q
dispatcher_url = %q
request_timeout = 5

[log]
chunk_size = 64
poll_interval_ms = 2
tail_interval_ms = 2
queue_poll_interval_ms = 2
tail_lines = 10
capture_dir = %q

[history]
enabled = true
path = %q

[logging]
format = "console"
level = "error"
`, cluster.URL(), cluster.URL(), filepath.Join(base, "capture"), historyPath)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{cluster: cluster, configPath: configPath, historyPath: historyPath}
}

func runCLI(t *testing.T, ctx context.Context, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestSubmitPrintsSubmissionID(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, stderr, err := runCLI(t, context.Background(), env,
		"submit", "http://repo/app.jar", "--class", "com.example.Main", "arg1")
	if err != nil {
		t.Fatalf("submit: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "driver-fake-0001") {
		t.Errorf("expected submission id in output, got %q", stdout)
	}
}

func TestSubmitRejectsMalformedConf(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, context.Background(), env,
		"submit", "http://repo/app.jar", "--conf", "not-a-pair")
	if err == nil || !strings.Contains(err.Error(), "key=value") {
		t.Fatalf("expected key=value error, got %v", err)
	}
}

func TestKillReportsAcceptance(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cluster.SetDriverState("driver-1", "RUNNING")

	stdout, stderr, err := runCLI(t, context.Background(), env, "kill", "driver-1")
	if err != nil {
		t.Fatalf("kill: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "driver-1") {
		t.Errorf("expected submission id in output, got %q", stdout)
	}
}

func TestStatusRendersState(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cluster.SetDriverState("driver-1", "FINISHED")

	stdout, stderr, err := runCLI(t, context.Background(), env, "status", "driver-1")
	if err != nil {
		t.Fatalf("status: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "FINISHED") {
		t.Errorf("expected driver state in output, got %q", stdout)
	}
}

func TestLogSnapshotPrintsSandboxContents(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("hello from the driver\n"))

	stdout, stderr, err := runCLI(t, context.Background(), env, "log", "driver-1")
	if err != nil {
		t.Fatalf("log: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "hello from the driver") {
		t.Errorf("expected sandbox contents, got %q", stdout)
	}
}

func TestLogUnknownSubmissionFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, context.Background(), env, "log", "driver-missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLogFollowStopsOnCancel(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("line one\n"))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	stdout, _, err := runCLI(t, ctx, env, "log", "driver-1", "--follow")
	if err == nil {
		t.Fatal("expected cancellation error from follow mode")
	}
	if !strings.Contains(stdout, "line one") {
		t.Errorf("expected streamed output before cancellation, got %q", stdout)
	}
}

func TestHistoryListsRecordedActions(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cluster.SetDriverState("driver-1", "RUNNING")

	if _, stderr, err := runCLI(t, context.Background(), env, "status", "driver-1"); err != nil {
		t.Fatalf("status: %v (stderr: %s)", err, stderr)
	}

	stdout, stderr, err := runCLI(t, context.Background(), env, "history")
	if err != nil {
		t.Fatalf("history: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "driver-1") || !strings.Contains(stdout, "status") {
		t.Errorf("expected recorded status action, got %q", stdout)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "sample.toml")

	stdout, _, err := runCLI(t, context.Background(), env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Errorf("expected target path in output, got %q", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	if _, _, err := runCLI(t, context.Background(), env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}

func TestConfigShowRendersResolvedValues(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, stderr, err := runCLI(t, context.Background(), env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, env.configPath) {
		t.Errorf("expected config path in output, got %q", stdout)
	}
	if !strings.Contains(stdout, env.cluster.URL()) {
		t.Errorf("expected cluster URL in output, got %q", stdout)
	}
}
