package mesos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/velocidi/adstax-spark-job-manager/internal/logging"
)

// Resolution errors. Each aborts the lookup; none is retried.
var (
	ErrSubmissionNotInCluster = errors.New("submission not found in cluster state")
	ErrAgentNotFound          = errors.New("agent not found in cluster state")
	ErrAmbiguousAgent         = errors.New("multiple agents match in cluster state")
	ErrExecutorNotFound       = errors.New("executor not found on agent")
)

// Location is the physical place a submission's logs live: the agent serving
// the sandbox and the executor's working directory on it. Immutable once
// resolved.
type Location struct {
	Agent     string
	Directory string
}

// Locator resolves a submission id to a Location by chaining the
// orchestration layer, the master state document, and the agent state
// document.
type Locator struct {
	client *Client
	logger *slog.Logger
}

// NewLocator creates a Locator. A nil logger disables diagnostics.
func NewLocator(client *Client, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Locator{client: client, logger: logger.With(slog.String("component", "locator"))}
}

// Locate walks the lookup chain for a submission id. Each step is a single
// synchronous call consuming the previous step's result; the first failure is
// terminal.
func (l *Locator) Locate(ctx context.Context, submissionID string) (Location, error) {
	leader, err := l.client.LeaderURL(ctx)
	if err != nil {
		return Location{}, err
	}
	l.logger.Debug("resolved resource manager leader", slog.String("leader", leader))

	state, err := l.client.MasterState(ctx, leader)
	if err != nil {
		return Location{}, err
	}

	task, n := state.FindTask(submissionID)
	switch {
	case n == 0:
		return Location{}, fmt.Errorf("%w: submission %q", ErrSubmissionNotInCluster, submissionID)
	case n > 1:
		return Location{}, fmt.Errorf("submission %q matches %d tasks in cluster state", submissionID, n)
	}

	slave, n := state.FindSlave(task.SlaveID)
	switch {
	case n == 0:
		return Location{}, fmt.Errorf("%w: agent %q", ErrAgentNotFound, task.SlaveID)
	case n > 1:
		return Location{}, fmt.Errorf("%w: agent id %q has %d entries", ErrAmbiguousAgent, task.SlaveID, n)
	}
	agent := slave.Address()
	l.logger.Debug("resolved agent", slog.String("agent", agent), slog.String("task_state", task.State))

	agentState, err := l.client.AgentState(ctx, agent)
	if err != nil {
		return Location{}, err
	}

	exec, n := agentState.FindExecutor(submissionID)
	switch {
	case n == 0:
		return Location{}, fmt.Errorf("%w: submission %q on agent %s", ErrExecutorNotFound, submissionID, agent)
	case n > 1:
		return Location{}, fmt.Errorf("submission %q matches %d executors on agent %s", submissionID, n, agent)
	}

	l.logger.Debug("resolved executor directory", slog.String("directory", exec.Directory))
	return Location{Agent: agent, Directory: exec.Directory}, nil
}
