package scoped

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetWalksAncestors(t *testing.T) {
	c := New("v")
	b := c.Child()
	a := b.Child()
	n := a.Child()

	assert.Equal(t, "v", n.Get())
}

func TestSetShadowsAncestors(t *testing.T) {
	root := New("v")
	n := root.Child()
	sibling := root.Child()

	n.Set("w")

	assert.Equal(t, "w", n.Get())
	assert.Equal(t, "v", sibling.Get())
	assert.Equal(t, "v", root.Get())
}

func TestAncestorMutationVisibleThroughChild(t *testing.T) {
	root := New(1)
	child := root.Child()
	overridden := root.Child()
	overridden.Set(3)

	root.Set(2)

	assert.Equal(t, 2, child.Get())
	assert.Equal(t, 3, overridden.Get())
}

func TestZeroValueWithoutAnyAssignment(t *testing.T) {
	root := &Value[int]{}
	assert.Equal(t, 0, root.Child().Get())
}

func TestGrandchildInheritsNearestOverride(t *testing.T) {
	root := New("root")
	mid := root.Child()
	leaf := mid.Child()

	mid.Set("mid")

	assert.Equal(t, "mid", leaf.Get())
	root.Set("changed")
	assert.Equal(t, "mid", leaf.Get())
}
