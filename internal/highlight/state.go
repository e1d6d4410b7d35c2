package highlight

import "strings"

// State is the tokenizer state carried from one line to the next.
// A nil State is the initial state.
type State interface {
	// Equal reports whether two states would tokenize the following line
	// identically.
	Equal(other State) bool
}

// StatesEqual compares two states, treating nil as the initial state.
func StatesEqual(a, b State) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return b.Equal(nil)
	default:
		return a.Equal(b)
	}
}

// StackState is an immutable stack of open multi-line constructs.
// The nil *StackState is the empty stack.
type StackState struct {
	parent *StackState
	name   string
	depth  int
}

// NewStackState builds a stack from frames ordered bottom first.
func NewStackState(frames ...string) *StackState {
	var s *StackState
	for _, f := range frames {
		s = s.Push(f)
	}
	return s
}

// Push returns a new stack with name on top.
func (s *StackState) Push(name string) *StackState {
	return &StackState{parent: s, name: name, depth: s.Depth() + 1}
}

// Pop returns the stack without its top frame.
func (s *StackState) Pop() *StackState {
	if s == nil {
		return nil
	}
	return s.parent
}

// Top returns the innermost frame.
func (s *StackState) Top() (string, bool) {
	if s == nil {
		return "", false
	}
	return s.name, true
}

// Depth returns the number of frames.
func (s *StackState) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Frames returns the frames ordered bottom first.
func (s *StackState) Frames() []string {
	frames := make([]string, s.Depth())
	for i, cur := len(frames)-1, s; cur != nil; i, cur = i-1, cur.parent {
		frames[i] = cur.name
	}
	return frames
}

// Equal implements State.
func (s *StackState) Equal(other State) bool {
	var o *StackState
	if other != nil {
		var ok bool
		if o, ok = other.(*StackState); !ok {
			return false
		}
	}
	if s.Depth() != o.Depth() {
		return false
	}
	for a, b := s, o; a != nil; a, b = a.parent, b.parent {
		if a == b {
			return true
		}
		if a.name != b.name {
			return false
		}
	}
	return true
}

// String returns the frames joined by "/".
func (s *StackState) String() string {
	if s == nil {
		return "<root>"
	}
	return strings.Join(s.Frames(), "/")
}

// AsState converts s to a State, mapping the empty stack to nil.
func (s *StackState) AsState() State {
	if s == nil {
		return nil
	}
	return s
}

// asStack recovers a stack from a prior state. Foreign states are treated
// as the empty stack.
func asStack(prior State) *StackState {
	s, _ := prior.(*StackState)
	return s
}
