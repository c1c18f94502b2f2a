package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
	wiresync "github.com/annel0/mmo-wire/internal/sync"
)

func TestItem_SnapshotIsDetached(t *testing.T) {
	it := NewItem(100, 57, 10)
	it.AddSoulCrystal(5, false)
	it.Augment(&item.Augmentation{Option1: 1, Option2: 2})

	s := it.Snapshot()
	it.AddSoulCrystal(6, false)
	it.SetCount(99)
	it.SetAttackElement(0, 150)

	assert.Equal(t, []int32{5}, s.SoulCrystals, "снимок не должен видеть поздних изменений")
	assert.Equal(t, int64(10), s.Count)
	assert.Equal(t, item.ElementNone, s.Elementals.AttackType)
	assert.Equal(t, []byte{0b0001_0001}, item.Plan(&s).Mask())
}

func TestItem_DefaultHasNoOptionalRecords(t *testing.T) {
	s := NewItem(1, 57, 1).Snapshot()
	assert.Equal(t, item.HeaderSize, item.Size(&s), "у нового предмета нет подзаписей")
}

func TestInventory_AddModifyRemove(t *testing.T) {
	acc := wiresync.NewChangeAccumulator(nil)
	inv := NewInventory(1, acc)

	sword := NewItem(7, 2369, 1)
	require.NoError(t, inv.Add(sword))
	require.Error(t, inv.Add(sword), "повторное добавление запрещено")
	require.NoError(t, inv.Update(7, func(it *Item) { it.SetEnchantLevel(3) }))
	require.NoError(t, inv.Add(NewItem(9, 57, 100)))

	changes := acc.Drain()
	require.Len(t, changes, 2)
	assert.Equal(t, packets.ChangeModify, changes[0].Kind)
	assert.Equal(t, uint8(3), changes[0].Item.EnchantLevel)
	assert.Equal(t, packets.ChangeAdd, changes[1].Kind)

	_, err := inv.Remove(7)
	require.NoError(t, err)
	_, err = inv.Remove(7)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, inv.Update(7, func(*Item) {}), ErrItemNotFound)

	changes = acc.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, packets.ChangeRemove, changes[0].Kind)
	assert.Equal(t, 1, inv.Len())
}

func TestInventory_Lists(t *testing.T) {
	inv := NewInventory(1, nil)
	quest := NewItem(2, 1000, 1)
	quest.SetQuestItem(true)
	require.NoError(t, inv.Add(NewItem(1, 57, 5)))
	require.NoError(t, inv.Add(quest))
	require.NoError(t, inv.Add(NewItem(3, 58, 5)))

	list := inv.ItemList(true)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int32(1), list.Items[0].ObjectID)
	assert.Equal(t, int32(3), list.Items[1].ObjectID)

	ql := inv.QuestItemList()
	require.Len(t, ql.Items, 1)
	assert.Equal(t, int32(2), ql.Items[0].ObjectID)
}

func TestInventory_ConcurrentUpdates(t *testing.T) {
	acc := wiresync.NewChangeAccumulator(nil)
	inv := NewInventory(1, acc)
	for id := int32(0); id < 16; id++ {
		require.NoError(t, inv.Add(NewItem(id, 57, 0)))
	}
	acc.Drain()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := int32(i % 16)
				_ = inv.Update(id, func(it *Item) { it.SetCount(it.Count() + 1) })
			}
		}()
	}
	wg.Wait()

	var total int64
	for _, ch := range acc.Drain() {
		total += ch.Item.Count
	}
	assert.Equal(t, int64(800), total, "последний снимок каждого предмета содержит все изменения")
}

func TestNpc_DespawnMakesPacketStale(t *testing.T) {
	n := NewNpc(0x10000001, 20120, "Wolf")
	n.SetHP(100, 100)
	n.Spawn(10, 20, 30, 0)

	p := n.InfoPacket(true)
	data, err := packets.Encode(p)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	n.Despawn()
	data, err = packets.Encode(p)
	assert.NoError(t, err)
	assert.Empty(t, data, "исчезнувший NPC не описывается")
}

func TestNpc_ViewIsCopied(t *testing.T) {
	n := NewNpc(1, 2, "Guard")
	n.AddAbnormal(10)
	v := n.View()
	n.AddAbnormal(11)
	n.SetTitle("Captain")

	assert.Equal(t, []int32{10}, v.Abnormals)
	assert.Empty(t, v.Title)
	assert.Equal(t, EntityTypeNPC, n.Type())
}

func TestPlayer_InfoPacket(t *testing.T) {
	p := NewPlayer(0x10000002, "Алиса", nil)
	p.Update(func(v *packets.UserView) {
		v.Level = 40
		v.Team = 1
	})

	data, err := packets.Encode(p.InfoPacket())
	require.NoError(t, err)
	assert.Empty(t, data, "игрок ещё не в мире")

	p.EnterWorld()
	data, err = packets.Encode(p.InfoPacket())
	require.NoError(t, err)
	assert.Equal(t, uint8(packets.OpcodeUserInfo), data[0])

	p.Logout()
	assert.False(t, p.IsSpawned())
}
