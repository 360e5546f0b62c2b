package mesos

import "testing"

func TestFindTaskScansCompletedCollections(t *testing.T) {
	state := State{
		Frameworks: []Framework{
			{ID: "fw-1", Tasks: []Task{{ID: "driver-live", SlaveID: "a"}}},
		},
		CompletedFrameworks: []Framework{
			{ID: "fw-0", CompletedTasks: []Task{{ID: "driver-done", SlaveID: "b"}}},
		},
	}

	task, n := state.FindTask("driver-done")
	if n != 1 {
		t.Fatalf("expected one match, got %d", n)
	}
	if task.SlaveID != "b" {
		t.Fatalf("wrong task found: %+v", task)
	}

	if _, n := state.FindTask("driver-gone"); n != 0 {
		t.Fatalf("expected zero matches, got %d", n)
	}
}

func TestFindTaskCountsEveryMatch(t *testing.T) {
	state := State{
		Frameworks: []Framework{
			{Tasks: []Task{{ID: "driver-1", SlaveID: "a"}}},
			{CompletedTasks: []Task{{ID: "driver-1", SlaveID: "c"}}},
		},
	}
	task, n := state.FindTask("driver-1")
	if n != 2 {
		t.Fatalf("expected both matches counted, got %d", n)
	}
	if task.SlaveID != "a" {
		t.Fatalf("first match should be reported, got %+v", task)
	}
}

func TestFindSlaveReportsDuplicates(t *testing.T) {
	state := State{Slaves: []Slave{{ID: "a", Hostname: "h1"}, {ID: "a", Hostname: "h2"}}}
	if _, n := state.FindSlave("a"); n != 2 {
		t.Fatalf("expected duplicate count 2, got %d", n)
	}
}

func TestSlaveAddress(t *testing.T) {
	tests := []struct {
		name  string
		slave Slave
		want  string
	}{
		{"port from pid", Slave{Hostname: "node-1.internal", PID: "slave(1)@10.0.0.5:5151"}, "node-1.internal:5151"},
		{"default port", Slave{Hostname: "node-2.internal", PID: ""}, "node-2.internal:5051"},
		{"pid without port", Slave{Hostname: "node-3.internal", PID: "slave(1)@broken"}, "node-3.internal:5051"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.slave.Address(); got != tt.want {
				t.Fatalf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}
