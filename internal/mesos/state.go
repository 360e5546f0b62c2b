package mesos

import (
	"strings"
)

const defaultAgentPort = "5051"

// State is the shape shared by the master and agent state documents. The
// master document carries tasks and the agent list; an agent document carries
// executors. Both keep finished work in parallel "completed" collections.
type State struct {
	Frameworks          []Framework `json:"frameworks"`
	CompletedFrameworks []Framework `json:"completed_frameworks"`
	Slaves              []Slave     `json:"slaves"`
}

// Framework is one scheduler registered with the resource manager.
type Framework struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Tasks              []Task     `json:"tasks"`
	CompletedTasks     []Task     `json:"completed_tasks"`
	Executors          []Executor `json:"executors"`
	CompletedExecutors []Executor `json:"completed_executors"`
}

// Task is one scheduled unit of work; a Spark driver's task id equals its
// submission id.
type Task struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SlaveID string `json:"slave_id"`
	State   string `json:"state"`
}

// Slave is one cluster agent as listed by the master.
type Slave struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	PID      string `json:"pid"`
}

// Executor is one running or finished process instance on an agent.
type Executor struct {
	ID        string `json:"id"`
	Directory string `json:"directory"`
}

// Address returns the host:port of the agent's HTTP endpoint. The port is
// parsed from the libprocess pid ("slave(1)@host:5051") when present.
func (s Slave) Address() string {
	if at := strings.LastIndexByte(s.PID, '@'); at >= 0 {
		hostPort := s.PID[at+1:]
		if colon := strings.LastIndexByte(hostPort, ':'); colon >= 0 {
			return s.Hostname + hostPort[colon:]
		}
	}
	return s.Hostname + ":" + defaultAgentPort
}

// findUnique scans the union of the given collections and returns the single
// element satisfying match together with the total number of matches. Callers
// decide what zero or more than one match means; the helper never picks.
func findUnique[T any](match func(T) bool, collections ...[]T) (T, int) {
	var found T
	count := 0
	for _, collection := range collections {
		for _, item := range collection {
			if match(item) {
				if count == 0 {
					found = item
				}
				count++
			}
		}
	}
	return found, count
}

// FindTask locates the unique task with the given id across active and
// completed frameworks.
func (s *State) FindTask(id string) (Task, int) {
	var found Task
	count := 0
	for _, frameworks := range [][]Framework{s.Frameworks, s.CompletedFrameworks} {
		for _, fw := range frameworks {
			task, n := findUnique(func(t Task) bool { return t.ID == id }, fw.Tasks, fw.CompletedTasks)
			if n > 0 && count == 0 {
				found = task
			}
			count += n
		}
	}
	return found, count
}

// FindSlave locates the unique agent with the given id in the master's agent list.
func (s *State) FindSlave(id string) (Slave, int) {
	return findUnique(func(sl Slave) bool { return sl.ID == id }, s.Slaves)
}

// FindExecutor locates the unique executor with the given id across active and
// completed frameworks of an agent state document.
func (s *State) FindExecutor(id string) (Executor, int) {
	var found Executor
	count := 0
	for _, frameworks := range [][]Framework{s.Frameworks, s.CompletedFrameworks} {
		for _, fw := range frameworks {
			exec, n := findUnique(func(e Executor) bool { return e.ID == id }, fw.Executors, fw.CompletedExecutors)
			if n > 0 && count == 0 {
				found = exec
			}
			count += n
		}
	}
	return found, count
}
