package mask

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(kind string, n int) *Table {
	components := make([]ComponentType, n)
	for i := range components {
		components[i] = ComponentType{Kind: kind, Name: "c", Bit: i, Size: 4}
	}
	return NewTable(kind, components...)
}

func TestMaskLenSpansBytes(t *testing.T) {
	assert.Equal(t, 1, testTable("a", 1).MaskLen())
	assert.Equal(t, 1, testTable("b", 8).MaskLen())
	assert.Equal(t, 2, testTable("c", 9).MaskLen())
	assert.Equal(t, 4, testTable("d", 25).MaskLen())
}

func TestBitPositions(t *testing.T) {
	tbl := testTable("npc", 20)
	s := NewSet(tbl)
	s.Add(tbl.Component(0))
	s.Add(tbl.Component(8))
	s.Add(tbl.Component(19))

	assert.Equal(t, []byte{0x01, 0x01, 0x08}, s.Bytes())
	assert.Equal(t, 3, s.Count())
}

func TestMaskIndependentOfDeclarationOrder(t *testing.T) {
	tbl := testTable("user", 17)
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		var picked []ComponentType
		for _, c := range tbl.Components() {
			if rng.Intn(2) == 0 {
				picked = append(picked, c)
			}
		}

		forward := NewSet(tbl)
		for _, c := range picked {
			forward.Add(c)
		}

		shuffled := append([]ComponentType(nil), picked...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		backward := NewSet(tbl)
		for _, c := range shuffled {
			backward.Add(c)
		}

		require.Equal(t, forward.Bytes(), backward.Bytes(), "round %d", round)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	tbl := testTable("item", 6)
	s := NewSet(tbl)
	assert.True(t, s.Add(tbl.Component(3)))
	before := s.Bytes()
	assert.False(t, s.Add(tbl.Component(3)))
	assert.Equal(t, before, s.Bytes())
}

func TestForeignComponentPanics(t *testing.T) {
	items := testTable("item", 6)
	npcs := testTable("npc", 6)
	s := NewSet(items)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		fe, ok := r.(*ForeignComponentError)
		require.True(t, ok, "unexpected panic value %T", r)
		assert.Equal(t, "item", fe.Table)
	}()
	s.Add(npcs.Component(2))
}

func TestContainsForeignIsFalse(t *testing.T) {
	items := testTable("item", 6)
	npcs := testTable("npc", 6)
	s := NewSet(items)
	s.Add(items.Component(2))
	assert.True(t, s.Contains(items.Component(2)))
	assert.False(t, s.Contains(npcs.Component(2)))
}

func TestEachAscending(t *testing.T) {
	tbl := testTable("x", 12)
	s := NewSet(tbl)
	for _, bit := range []int{11, 2, 7, 0} {
		s.Add(tbl.Component(bit))
	}
	var bits []int
	s.Each(func(c ComponentType) { bits = append(bits, c.Bit) })
	assert.Equal(t, []int{0, 2, 7, 11}, bits)
}

func TestNewTableValidates(t *testing.T) {
	assert.Panics(t, func() {
		NewTable("k", ComponentType{Kind: "k", Bit: 1, Size: 1})
	})
	assert.Panics(t, func() {
		NewTable("k", ComponentType{Kind: "other", Bit: 0, Size: 1})
	})
	assert.Panics(t, func() {
		NewTable("k", ComponentType{Kind: "k", Bit: 0, Size: -5})
	})
}

func TestFromBytesDropsUnknownBits(t *testing.T) {
	tbl := testTable("x", 10)
	s := FromBytes(tbl, []byte{0xFF, 0xFF})
	assert.Equal(t, []byte{0xFF, 0x03}, s.Bytes())
	assert.Equal(t, 10, s.Count())
}
