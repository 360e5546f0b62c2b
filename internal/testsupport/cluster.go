package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const agentID = "agent-1"

// FakeCluster is an in-process stand-in for the whole cluster stack: the
// Spark dispatcher, the orchestration layer, the Mesos master, and one agent,
// all served from a single httptest server. The /v2/info endpoint advertises
// the server itself as the leader, and the registered agent's pid carries the
// server's own host:port, so every hop of a lookup lands back here.
type FakeCluster struct {
	server *httptest.Server

	mu         sync.Mutex
	states     map[string]string
	tasks      map[string]string // submission id -> sandbox directory
	files      map[string][]byte
	requests   []string
	extraAgent bool
}

// NewFakeCluster starts the fake and registers cleanup with t.
func NewFakeCluster(t *testing.T) *FakeCluster {
	t.Helper()
	f := &FakeCluster{
		states: make(map[string]string),
		tasks:  make(map[string]string),
		files:  make(map[string][]byte),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL serving every cluster role.
func (f *FakeCluster) URL() string { return f.server.URL }

// HostPort returns the host:port the fake agent answers on.
func (f *FakeCluster) HostPort() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

// SetDriverState sets the dispatcher state reported for a submission.
func (f *FakeCluster) SetDriverState(id, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = state
}

// RunSubmission registers a RUNNING submission with a sandbox directory and
// empty stdout/stderr files, and returns the directory.
func (f *FakeCluster) RunSubmission(id string) string {
	dir := "/var/lib/mesos/slaves/" + agentID + "/executors/" + id + "/runs/latest"
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = "RUNNING"
	f.tasks[id] = dir
	f.files[dir+"/stdout"] = nil
	f.files[dir+"/stderr"] = nil
	return dir
}

// RunTaskWithoutExecutor registers a RUNNING task whose executor never shows
// up in the agent state, so lookups hit the executor-not-found path.
func (f *FakeCluster) RunTaskWithoutExecutor(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = "RUNNING"
	f.tasks[id] = ""
}

// AppendFile appends bytes to a sandbox file.
func (f *FakeCluster) AppendFile(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = append(f.files[path], data...)
}

// DuplicateAgent registers a second agent carrying the same id, so lookups
// hit the ambiguous-agent path.
func (f *FakeCluster) DuplicateAgent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extraAgent = true
}

// Requests returns the paths of every request handled so far.
func (f *FakeCluster) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeCluster) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path)
	f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/submissions/status/"):
		f.handleStatus(w, r)
	case r.URL.Path == "/v1/submissions/create":
		f.writeJSON(w, map[string]any{
			"action":       "CreateSubmissionResponse",
			"submissionId": "driver-fake-0001",
			"success":      true,
		})
	case strings.HasPrefix(r.URL.Path, "/v1/submissions/kill/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/submissions/kill/")
		f.writeJSON(w, map[string]any{
			"action":       "KillSubmissionResponse",
			"submissionId": id,
			"success":      true,
		})
	case r.URL.Path == "/v2/info":
		f.writeJSON(w, map[string]any{
			"marathon_config": map[string]any{"mesos_leader_ui_url": f.server.URL},
		})
	case r.URL.Path == "/state.json":
		f.handleState(w)
	case r.URL.Path == "/files/read":
		f.handleFilesRead(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeCluster) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/submissions/status/")
	f.mu.Lock()
	state, ok := f.states[id]
	f.mu.Unlock()
	if !ok {
		state = "NOT_FOUND"
	}
	f.writeJSON(w, map[string]any{
		"action":       "SubmissionStatusResponse",
		"submissionId": id,
		"success":      ok,
		"driverState":  state,
	})
}

// handleState serves a document that satisfies both the master and the agent
// shape: tasks plus the agent list for the former, executors for the latter.
func (f *FakeCluster) handleState(w http.ResponseWriter) {
	f.mu.Lock()
	tasks := make([]map[string]any, 0, len(f.tasks))
	executors := make([]map[string]any, 0, len(f.tasks))
	for id, dir := range f.tasks {
		tasks = append(tasks, map[string]any{
			"id": id, "name": "Driver for " + id, "slave_id": agentID, "state": "TASK_RUNNING",
		})
		if dir != "" {
			executors = append(executors, map[string]any{"id": id, "directory": dir})
		}
	}
	pid := "slave(1)@" + f.HostPort()
	slaves := []map[string]any{
		{"id": agentID, "hostname": strings.Split(f.HostPort(), ":")[0], "pid": pid},
	}
	if f.extraAgent {
		slaves = append(slaves, map[string]any{"id": agentID, "hostname": "other-host", "pid": pid})
	}
	f.mu.Unlock()

	f.writeJSON(w, map[string]any{
		"frameworks": []map[string]any{
			{
				"id":                  "fw-1",
				"name":                "Spark Cluster",
				"tasks":               tasks,
				"completed_tasks":     []any{},
				"executors":           executors,
				"completed_executors": []any{},
			},
		},
		"completed_frameworks": []any{},
		"slaves":               slaves,
	})
}

func (f *FakeCluster) handleFilesRead(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	offset, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)
	if err != nil {
		http.Error(w, "bad offset", http.StatusBadRequest)
		return
	}
	length, err := strconv.ParseInt(r.URL.Query().Get("length"), 10, 64)
	if err != nil {
		http.Error(w, "bad length", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	data, ok := f.files[path]
	f.mu.Unlock()
	if !ok {
		http.Error(w, fmt.Sprintf("no such file: %s", path), http.StatusNotFound)
		return
	}

	size := int64(len(data))
	if offset < 0 {
		// Length query: empty payload, offset reports the current size.
		f.writeJSON(w, map[string]any{"data": "", "offset": size})
		return
	}
	if offset > size {
		offset = size
	}
	end := size
	if length >= 0 && offset+length < size {
		end = offset + length
	}
	f.writeJSON(w, map[string]any{"data": string(data[offset:end]), "offset": offset})
}

func (f *FakeCluster) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
