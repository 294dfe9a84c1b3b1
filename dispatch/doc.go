// Package dispatch implements the message-passing core shared by graph
// elements and processes: uniform invocation of heterogeneous callables
// (Access), ranked condition matching (Condition), event execution with
// pre/post hooks (Event), and the Handler registry that ties them
// together.
//
// Everything that participates in a conversation implements Abstract and
// exchanges a positional Message plus a keyed Context. A Handler holds an
// ordered list of (Condition, Event) pairs; on each dispatch it evaluates
// every active condition against the incoming message, picks the
// highest-ranked match, and runs the paired event. Ties resolve to the
// earliest registration, which keeps dispatch deterministic.
package dispatch
