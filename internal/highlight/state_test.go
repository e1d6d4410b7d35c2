package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackState(t *testing.T) {
	var empty *StackState
	assert.Equal(t, 0, empty.Depth())
	_, ok := empty.Top()
	assert.False(t, ok)
	assert.Nil(t, empty.Pop())
	assert.Nil(t, empty.AsState())
	assert.Equal(t, "<root>", empty.String())

	s := NewStackState("a", "b")
	top, ok := s.Top()
	assert.True(t, ok)
	assert.Equal(t, "b", top)
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, []string{"a", "b"}, s.Frames())
	assert.Equal(t, "a/b", s.String())
	assert.Equal(t, []string{"a"}, s.Pop().Frames())
}

func TestStackStateEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b State
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs empty stack", nil, NewStackState(), true},
		{"nil vs frame", nil, NewStackState("a"), false},
		{"same frames", NewStackState("a", "b"), NewStackState("a", "b"), true},
		{"different depth", NewStackState("a", "b"), NewStackState("a"), false},
		{"different frame", NewStackState("a", "b"), NewStackState("a", "c"), false},
		{"foreign state", NewStackState("a"), foreignState{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatesEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, StatesEqual(tt.b, tt.a))
		})
	}
}

func TestStackStateSharesParents(t *testing.T) {
	base := NewStackState("a")
	x, y := base.Push("b"), base.Push("b")
	assert.True(t, x.Equal(y))
	assert.True(t, x.Pop() == y.Pop())
}

type foreignState struct{}

func (foreignState) Equal(other State) bool {
	_, ok := other.(foreignState)
	return ok
}
