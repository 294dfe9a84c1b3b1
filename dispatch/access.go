package dispatch

// The callable shapes understood by Access. Anything an element, event
// or condition ultimately runs is one of these, an Abstract, or a plain
// value. The set is closed on purpose: callers pick the arguments they
// need by picking a shape, and classification is a type switch rather
// than signature inspection.
type (
	// Func receives both halves of the conversation.
	Func func(*Message, *Context) any

	// MessageFunc receives only the positional part.
	MessageFunc func(*Message) any

	// ContextFunc receives only the keyed part.
	ContextFunc func(*Context) any

	// NullaryFunc receives nothing.
	NullaryFunc func() any

	// RankFunc answers with an explicit (rank, value) pair. Conditions
	// built from one use the pair as the match verdict directly.
	RankFunc func(*Message, *Context) (int, any)
)

// Abstract is anything that can take part in a conversation: graph
// elements, processes, and any user object wired into a graph.
type Abstract interface {
	Answer(m *Message, c *Context) any
}

// Mode classifies how an Access payload is invoked.
type Mode string

const (
	// ModeAbstract payloads dispatch through Answer.
	ModeAbstract Mode = "abstract"
	// ModeFunction payloads are one of the callable shapes above.
	ModeFunction Mode = "function"
	// ModeValue payloads are returned as-is.
	ModeValue Mode = "value"
)

// Access wraps an arbitrary payload behind a uniform Call. It also
// serves as a comparable stand-in for bare functions, which cannot be
// used as map keys or compared; processes wrap callables once and track
// the wrapper from then on.
type Access struct {
	value any
	mode  Mode
	call  func(*Message, *Context) any
}

// AccessOf returns value itself when it is already an *Access, otherwise
// a fresh wrapper.
func AccessOf(value any) *Access {
	if a, ok := value.(*Access); ok {
		return a
	}
	return NewAccess(value)
}

// NewAccess classifies value and wires the matching call strategy.
func NewAccess(value any) *Access {
	a := &Access{value: value}
	switch v := value.(type) {
	case Abstract:
		a.mode = ModeAbstract
		a.call = v.Answer
	case Func:
		a.mode = ModeFunction
		a.call = v
	case func(*Message, *Context) any:
		a.mode = ModeFunction
		a.call = v
	case MessageFunc:
		a.mode = ModeFunction
		a.call = func(m *Message, _ *Context) any { return v(m) }
	case func(*Message) any:
		a.mode = ModeFunction
		a.call = func(m *Message, _ *Context) any { return v(m) }
	case ContextFunc:
		a.mode = ModeFunction
		a.call = func(_ *Message, c *Context) any { return v(c) }
	case func(*Context) any:
		a.mode = ModeFunction
		a.call = func(_ *Message, c *Context) any { return v(c) }
	case NullaryFunc:
		a.mode = ModeFunction
		a.call = func(*Message, *Context) any { return v() }
	case func() any:
		a.mode = ModeFunction
		a.call = func(*Message, *Context) any { return v() }
	case RankFunc:
		a.mode = ModeFunction
		a.call = func(m *Message, c *Context) any {
			_, out := v(m, c)
			return out
		}
	case func(*Message, *Context) (int, any):
		a.mode = ModeFunction
		a.call = func(m *Message, c *Context) any {
			_, out := RankFunc(v)(m, c)
			return out
		}
	default:
		a.mode = ModeValue
		a.call = func(*Message, *Context) any { return value }
	}
	return a
}

// Call invokes the payload with the conversation.
func (a *Access) Call(m *Message, c *Context) any { return a.call(m, c) }

// Answer makes a wrapped callable usable anywhere an Abstract is
// expected, for example as the current element of a process frame.
func (a *Access) Answer(m *Message, c *Context) any { return a.Call(m, c) }

// Value returns the wrapped payload.
func (a *Access) Value() any { return a.value }

// Mode returns the invocation classification.
func (a *Access) Mode() Mode { return a.mode }

// IsCallable reports whether Call does more than echo the payload.
func (a *Access) IsCallable() bool { return a.mode != ModeValue }

// IsCallable reports whether v can be pushed as the current element of a
// walk: an Abstract, an already wrapped Access, or a callable shape.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	if a, ok := v.(*Access); ok {
		return a.IsCallable()
	}
	return NewAccess(v).IsCallable()
}
