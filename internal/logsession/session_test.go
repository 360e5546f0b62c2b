package logsession

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/velocidi/adstax-spark-job-manager/internal/dispatcher"
	"github.com/velocidi/adstax-spark-job-manager/internal/mesos"
	"github.com/velocidi/adstax-spark-job-manager/internal/testsupport"
)

type sessionEnv struct {
	cluster *testsupport.FakeCluster
	session *Session
	stdout  *syncBuffer
	stderr  *syncBuffer
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()
	cluster := testsupport.NewFakeCluster(t)

	dispatcherClient, err := dispatcher.New(dispatcher.Config{BaseURL: cluster.URL()})
	if err != nil {
		t.Fatalf("dispatcher.New: %v", err)
	}
	mesosClient, err := mesos.New(mesos.Config{AdStaxURL: cluster.URL()})
	if err != nil {
		t.Fatalf("mesos.New: %v", err)
	}

	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	session := New(Params{
		Dispatcher:    dispatcherClient,
		Locator:       mesos.NewLocator(mesosClient, nil),
		Reader:        mesosClient,
		CaptureDir:    t.TempDir(),
		ChunkSize:     100_000,
		PollInterval:  2 * time.Millisecond,
		TailInterval:  2 * time.Millisecond,
		QueueInterval: 2 * time.Millisecond,
		TailLines:     10,
		Stdout:        stdout,
		Stderr:        stderr,
	})
	return &sessionEnv{cluster: cluster, session: session, stdout: stdout, stderr: stderr}
}

func TestRunUnknownSubmissionStopsAfterStatusCall(t *testing.T) {
	env := newSessionEnv(t)

	err := env.session.Run(context.Background(), "driver-x", Options{})
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	for _, path := range env.cluster.Requests() {
		if path != "/v1/submissions/status/driver-x" {
			t.Fatalf("unexpected call after NOT_FOUND: %s", path)
		}
	}
}

func TestRunQueuedWithoutFollowStopsBeforeResolution(t *testing.T) {
	env := newSessionEnv(t)
	env.cluster.SetDriverState("driver-q", "QUEUED")

	err := env.session.Run(context.Background(), "driver-q", Options{})
	if !errors.Is(err, ErrSubmissionStillQueued) {
		t.Fatalf("expected ErrSubmissionStillQueued, got %v", err)
	}
	for _, path := range env.cluster.Requests() {
		if path == "/v2/info" {
			t.Fatal("orchestration endpoint must not be called for a queued snapshot")
		}
	}
}

func TestRunSnapshotPrintsStderrThenStdout(t *testing.T) {
	env := newSessionEnv(t)
	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("job output\n"))
	env.cluster.AppendFile(dir+"/stderr", []byte("job diagnostics\n"))

	err := env.session.Run(context.Background(), "driver-1", Options{ShowStderr: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := env.stdout.String(); got != "job output\n" {
		t.Fatalf("stdout = %q", got)
	}
	if got := env.stderr.String(); got != "job diagnostics\n" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestRunSnapshotWithoutStderrSkipsIt(t *testing.T) {
	env := newSessionEnv(t)
	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("only stdout\n"))
	env.cluster.AppendFile(dir+"/stderr", []byte("ignored\n"))

	if err := env.session.Run(context.Background(), "driver-1", Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := env.stderr.String(); got != "" {
		t.Fatalf("stderr should stay empty, got %q", got)
	}
	if got := env.stdout.String(); got != "only stdout\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestRunFollowStreamsUntilCancelled(t *testing.T) {
	env := newSessionEnv(t)
	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("first\n"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.session.Run(ctx, "driver-1", Options{Follow: true, ShowStderr: true})
	}()

	waitForOutput(t, env.stdout, "first\n")
	env.cluster.AppendFile(dir+"/stdout", []byte("second\n"))
	env.cluster.AppendFile(dir+"/stderr", []byte("warning\n"))
	waitForOutput(t, env.stdout, "second\n")
	waitForOutput(t, env.stderr, "warning\n")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("follow session did not stop after cancellation")
	}
}

func TestRunFollowWaitsOutQueuedState(t *testing.T) {
	env := newSessionEnv(t)
	env.cluster.SetDriverState("driver-1", "QUEUED")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.session.Run(ctx, "driver-1", Options{Follow: true})
	}()

	// The session must keep polling status while queued.
	time.Sleep(20 * time.Millisecond)
	statusCalls := 0
	for _, path := range env.cluster.Requests() {
		if strings.HasPrefix(path, "/v1/submissions/status/") {
			statusCalls++
		}
	}
	if statusCalls < 2 {
		t.Fatalf("expected repeated status polls while queued, saw %d", statusCalls)
	}

	dir := env.cluster.RunSubmission("driver-1")
	env.cluster.AppendFile(dir+"/stdout", []byte("started\n"))
	waitForOutput(t, env.stdout, "started\n")

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
}
