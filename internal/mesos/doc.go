// Package mesos resolves submissions to their physical location in the
// cluster and reads files out of agent sandboxes.
//
// The lookup chain is orchestration layer (/v2/info) to master state
// (/state.json) to agent state, each step a single synchronous request whose
// typed result feeds the next. Remote reads go through the agent's
// /files/read endpoint in bounded chunks whose response offset is
// authoritative for cursor advancement.
package mesos
