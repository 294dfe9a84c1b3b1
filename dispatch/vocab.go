package dispatch

// Direction tokens. A message whose head is one of these tells the
// receiving element which way the walk is moving.
const (
	Next     = "next"
	Previous = "previous"

	// Query is the message every process sends to the current element
	// when it needs to know where to go. Parsing walks replace it with
	// the active direction token.
	Query = "query"
)

// Process-level control tokens.
const (
	New  = "new"
	OK   = "ok"
	Stop = "stop"

	Error    = "error"
	Break    = "break"
	Continue = "continue"

	Proceed = "proceed"
)

// Context commands understood by the process family. Command messages
// carry these as keys of a map head (or as a bare string head where no
// payload is needed).
const (
	PushContext   = "push_context"
	PopContext    = "pop_context"
	ForgetContext = "forget_context"

	AddContext    = "add_context"
	UpdateContext = "update_context"
	DeleteContext = "delete_context"

	SetState   = "set_state"
	ClearState = "clear_state"
)

// Well-known context keys.
const (
	// KeySender names the object whose dispatch is currently running.
	// A handler fills it in only when the caller has not.
	KeySender = "sender"

	// KeyRank, KeyCondition and KeyEvent describe the winning pair of
	// the current dispatch and are visible to the running event.
	KeyRank      = "rank"
	KeyCondition = "condition"
	KeyEvent     = "event"

	// KeyAnswer switches the top-level reply shape; see Handler.Answer.
	KeyAnswer = "answer"

	// KeyResult carries an event's result to its post hook.
	KeyResult = "result"

	// KeyState is the per-element scratch value injected by stateful
	// processes for the duration of a single query.
	KeyState = "state"

	// Parsing context keys.
	KeyText         = "text"
	KeyParsedLength = "parsed_length"
	KeyLastParsed   = "last_parsed"
)

var (
	forwardTokens  = map[string]struct{}{Next: {}}
	backwardTokens = map[string]struct{}{Previous: {}, Error: {}, Break: {}, Continue: {}}
)

// IsForwardToken reports whether v is a token that moves a walk forward.
func IsForwardToken(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = forwardTokens[s]
	return ok
}

// IsBackwardToken reports whether v is a token that rewinds a walk:
// an explicit "previous" or any of the interrupt tokens.
func IsBackwardToken(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = backwardTokens[s]
	return ok
}
