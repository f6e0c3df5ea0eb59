package linked

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListPushBackFrontRemove(t *testing.T) {
	l := NewList[int]()
	require.Equal(t, 0, l.Len())

	l.PushBack(1)
	n2 := l.PushBack(2)
	l.PushBack(3)
	require.Equal(t, 3, l.Len())
	require.Equal(t, 1, l.Front().Value)

	l.Remove(n2)
	require.Equal(t, 2, l.Len())

	var got []int
	for node := l.Front(); node != nil; node = node.Next {
		got = append(got, node.Value)
	}
	require.Equal(t, []int{1, 3}, got)
}

func TestHashmapPutGetPreservesInsertionOrder(t *testing.T) {
	h := NewHashmap[string, int]()
	h.Put("b", 2)
	h.Put("a", 1)
	h.Put("b", 20)
	require.Equal(t, 2, h.Len())

	v, ok := h.Get("b")
	require.True(t, ok)
	require.Equal(t, 20, v)

	_, ok = h.Get("missing")
	require.False(t, ok)

	var values []int
	it := h.NewIterator()
	for it.Next() {
		values = append(values, it.Value())
	}
	require.Equal(t, []int{20, 1}, values, "iteration follows first-insertion order even after an in-place update")
}
