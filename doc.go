// Package tasklet implements the per-operator execution core of a
// cooperative dataflow engine: a single-threaded, non-blocking state machine
// that drives a user-supplied Processor through its lifecycle while
// respecting downstream backpressure and aligning distributed snapshots.
//
// Construction
//   - New(processor, edges, outbox, snapCtx, opts ...Option): builds a
//     Tasklet. opts configure the vertex name, processing guarantee, and
//     diagnostic logger via functional options (WithVertexName,
//     WithExactlyOnce, WithAtLeastOnce, WithLogger).
//
// Defaults
// Unless overridden, a newly constructed Tasklet uses:
//   - VertexName: "tasklet"
//   - Guarantee: GuaranteeNone
//   - Logger: a no-op logger
//
// Control flow
// A worker repeatedly calls Tasklet.Call. Each call executes at most one
// state transition, never blocks, and returns a ternary ProgressState
// (NoProgress, MadeProgress, Done). Items flow from InboundEdges through an
// Inbox to the Processor, and from the Processor through an Outbox to
// OutboundEdges plus an optional snapshot sink.
//
// Snapshots
// Under GuaranteeExactlyOnce, barriers are aligned across every active
// inbound edge before the local Processor's state is saved and a single
// barrier is forwarded downstream. Under GuaranteeAtLeastOnce or
// GuaranteeNone, a single observed barrier is forwarded immediately.
package tasklet
