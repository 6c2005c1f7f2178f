package deepcopy

import (
	"testing"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	orig := []string{"a", "b"}
	c := Slice(orig)
	c[0] = "x"
	assert.Equal(t, []string{"a", "b"}, orig)
	assert.Nil(t, Slice[string](nil))
}

func TestMap(t *testing.T) {
	orig := map[string]int{"a": 1}
	c := Map(orig)
	c["a"] = 2
	assert.Equal(t, 1, orig["a"])
	assert.Nil(t, Map[string, int](nil))
}

func TestOrderedMap(t *testing.T) {
	om := orderedmap.NewOrderedMap[string, string]()
	om.Set("b", "2")
	om.Set("a", "1")

	c := OrderedMap(om)
	c.Set("b", "changed")

	v, ok := om.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	var keys []string
	for pair := c.Front(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a"}, keys)
}
