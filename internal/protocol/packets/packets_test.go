package packets

import (
	"errors"
	"strings"
	"testing"

	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spawnFlag bool

func (s *spawnFlag) IsSpawned() bool { return bool(*s) }

func potion(id int32) item.Snapshot {
	return item.Snapshot{ObjectID: id, DisplayID: 1060, Count: 5, Type2: 5, Time: -9999, Available: true}
}

func TestInventoryUpdateLayout(t *testing.T) {
	aug := potion(9)
	aug.Augmentation = &item.Augmentation{Option1: 100, Option2: 200}
	p := NewInventoryUpdate([]InventoryChange{
		{Kind: ChangeModify, Item: potion(7)},
		{Kind: ChangeAdd, Item: aug},
	})

	data, err := Encode(p)
	require.NoError(t, err)

	r := wire.NewReader(data)
	assert.Equal(t, uint8(OpcodeInventoryUpdate), r.ReadUint8())
	assert.Equal(t, uint16(2), r.ReadUint16())

	assert.Equal(t, uint16(ChangeModify), r.ReadUint16())
	first := item.Read(r)
	assert.Equal(t, int32(7), first.ObjectID)

	assert.Equal(t, uint16(ChangeAdd), r.ReadUint16())
	second := item.Read(r)
	assert.Equal(t, aug, second)

	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestItemListHeaders(t *testing.T) {
	list, err := Encode(&ItemList{ShowWindow: true, Items: []item.Snapshot{potion(1)}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x01, 0x00, 0x01, 0x00}, list[:5])
	assert.Len(t, list, 5+item.HeaderSize)

	quest, err := Encode(&ExQuestItemList{Items: []item.Snapshot{potion(2), potion(3)}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xC6, 0x00, 0x02, 0x00}, quest[:5])
	assert.Len(t, quest, 5+2*item.HeaderSize)
}

func TestParseChangeKind(t *testing.T) {
	k, err := ParseChangeKind("Remove")
	require.NoError(t, err)
	assert.Equal(t, ChangeRemove, k)
	assert.Equal(t, "REMOVE", k.String())

	_, err = ParseChangeKind("destroy")
	assert.Error(t, err)
}

func wolf() NpcView {
	return NpcView{
		ObjectID:       0x10000042,
		TemplateID:     20120,
		Attackable:     true,
		X:              -84000,
		Y:              243000,
		Z:              -3700,
		AttackSpeed:    253,
		CastSpeed:      333,
		MoveMultiplier: 1,
		AtkMultiplier:  1,
		Running:        true,
		CurrentHP:      80,
		MaxHP:          100,
		Name:           "Wolf",
	}
}

// decodeNpc - эталонный разбор NpcInfo; проверяет префиксы длин обоих блоков.
func decodeNpc(t *testing.T, data []byte) (NpcView, *mask.Set) {
	t.Helper()
	r := wire.NewReader(data)
	require.Equal(t, uint8(OpcodeNpcInfo), r.ReadUint8())

	var v NpcView
	v.ObjectID = r.ReadInt32()
	r.ReadBool()
	require.Equal(t, uint16(25), r.ReadUint16())
	set := mask.FromBytes(NpcTable, r.ReadBytes(4))

	for bi := 0; bi < npcLayout.Blocks(); bi++ {
		b := npcLayout.Block(bi)
		var length int
		if b.Width == codec.LengthUint8 {
			length = int(r.ReadUint8())
		} else {
			length = int(r.ReadUint16())
		}
		start := r.Offset()
		for _, c := range b.Components {
			if !set.Contains(c) {
				continue
			}
			switch c {
			case npcAttackable:
				v.Attackable = r.ReadBool()
			case npcRelativeHeight:
				v.RelativeHeight = r.ReadInt32()
			case npcTemplateID:
				v.TemplateID = r.ReadInt32()
			case npcPosition:
				v.X, v.Y, v.Z = r.ReadInt32(), r.ReadInt32(), r.ReadInt32()
			case npcHeading:
				v.Heading = r.ReadInt32()
			case npcSpeed:
				v.AttackSpeed, v.CastSpeed = r.ReadInt32(), r.ReadInt32()
			case npcMultipliers:
				v.MoveMultiplier, v.AtkMultiplier = r.ReadFloat32(), r.ReadFloat32()
			case npcEquipment:
				v.RightHand, v.Chest, v.LeftHand = r.ReadInt32(), r.ReadInt32(), r.ReadInt32()
			case npcStopMode:
				v.Stopped = r.ReadBool()
			case npcRunning:
				v.Running = r.ReadBool()
			case npcTeam:
				v.Team = r.ReadUint8()
			case npcEnchant:
				v.WeaponEnchant = r.ReadInt32()
			case npcTransformation:
				v.Transformation = r.ReadInt32()
			case npcCurrentHP:
				v.CurrentHP = r.ReadInt32()
			case npcCurrentMP:
				v.CurrentMP = r.ReadInt32()
			case npcMaxHP:
				v.MaxHP = r.ReadInt32()
			case npcMaxMP:
				v.MaxMP = r.ReadInt32()
			case npcSummoned:
				v.Summoned = r.ReadBool()
			case npcTitle:
				v.Title = r.ReadString()
			case npcNameStringID:
				v.NameStringID = r.ReadInt32()
			case npcPvPFlag:
				v.PvPFlag = r.ReadUint8()
			case npcReputation:
				v.Reputation = r.ReadInt32()
			case npcClan:
				v.ClanID, v.ClanCrestID = r.ReadInt32(), r.ReadInt32()
				v.AllyID, v.AllyCrestID = r.ReadInt32(), r.ReadInt32()
			case npcName:
				v.Name = r.ReadString()
			case npcAbnormals:
				n := int(r.ReadUint16())
				for i := 0; i < n; i++ {
					v.Abnormals = append(v.Abnormals, r.ReadInt32())
				}
			}
		}
		require.Equal(t, length, r.Offset()-start, "length prefix of block %s", b.Name)
	}
	require.NoError(t, r.Err())
	require.Zero(t, r.Remaining())
	return v, set
}

func TestNpcInfoRoundTrip(t *testing.T) {
	v := wolf()
	v.RelativeHeight = 12
	v.Heading = 16384
	v.RightHand = 2369
	v.Team = 2
	v.WeaponEnchant = 16
	v.MaxMP = 40
	v.CurrentMP = 39
	v.Summoned = true
	v.Title = "Вожак"
	v.NameStringID = 1000001
	v.PvPFlag = 1
	v.Reputation = -300
	v.ClanID = 77
	v.ClanCrestID = 78
	v.Abnormals = []int32{1204, 1040}

	data, err := Encode(NewNpcInfo(nil, v, true))
	require.NoError(t, err)

	got, set := decodeNpc(t, data)
	assert.Equal(t, v, got)
	assert.False(t, set.Contains(npcTransformation))
}

func TestNpcInfoHeaderBlock(t *testing.T) {
	data, err := Encode(NewNpcInfo(nil, wolf(), false))
	require.NoError(t, err)

	// opcode + objectId + spawn + count, затем 4 байта маски
	m := data[8:12]
	assert.Equal(t, uint8(0b0110_1101), m[0])
	assert.Equal(t, uint8(1), data[12], "header block holds only the attackable flag")
	assert.Equal(t, uint8(1), data[13])
}

func TestNpcInfoDerivedPresence(t *testing.T) {
	p := NewNpcInfo(nil, wolf(), false)
	pl := p.Plan()
	assert.False(t, pl.Contains(npcTeam), "team 0 is not sent")
	assert.False(t, pl.Contains(npcTitle), "empty title is not sent")
	assert.False(t, pl.Contains(npcClan))
	assert.False(t, pl.Contains(npcCurrentMP))
	assert.True(t, pl.Contains(npcCurrentHP))
	assert.True(t, pl.Contains(npcMaxHP))
	assert.True(t, pl.Contains(npcName))
	assert.Equal(t, 4, NpcTable.MaskLen())
}

type catalog map[string]map[int32][2]string

func (c catalog) NpcName(lang string, id int32) (string, bool) {
	e, ok := c[lang][id]
	return e[0], ok && e[0] != ""
}

func (c catalog) NpcTitle(lang string, id int32) (string, bool) {
	e, ok := c[lang][id]
	return e[1], ok && e[1] != ""
}

func TestNpcInfoLocalizationAmendsLength(t *testing.T) {
	loc := catalog{"ru": {20120: {"Серый волк", "Страж леса"}}}

	p := NewNpcInfo(nil, wolf(), false)
	before := p.Plan().BlockLength(1)
	p.Localize(loc, "ru")

	want := before +
		wire.StringSize("Серый волк") - wire.StringSize("Wolf") +
		wire.StringSize("Страж леса")
	assert.Equal(t, want, p.Plan().BlockLength(1))

	data, err := Encode(p)
	require.NoError(t, err)
	got, set := decodeNpc(t, data)
	assert.Equal(t, "Серый волк", got.Name)
	assert.Equal(t, "Страж леса", got.Title)
	assert.True(t, set.Contains(npcTitle))
}

func TestNpcInfoLocalizationMissingLanguage(t *testing.T) {
	loc := catalog{"ru": {20120: {"Серый волк", ""}}}
	p := NewNpcInfo(nil, wolf(), false)
	before := p.Plan().BlockLength(1)

	p.Localize(loc, "de")
	p.Localize(nil, "ru")
	assert.Equal(t, before, p.Plan().BlockLength(1))
	assert.Equal(t, "Wolf", p.View().Name)
}

func TestStaleNpcProducesNoBytes(t *testing.T) {
	spawned := spawnFlag(true)
	p := NewNpcInfo(&spawned, wolf(), false)

	spawned = false
	data, err := Encode(p)
	assert.NoError(t, err)
	assert.Empty(t, data)
}

func TestUserInfo(t *testing.T) {
	v := UserView{
		ObjectID:  0x10000001,
		Name:      "Алиса",
		Race:      1,
		ClassID:   25,
		Level:     40,
		STR:       40,
		MaxHP:     900,
		CurrentHP: 850,
		X:         1,
		RunSpeed:  120,
	}
	p := NewUserInfo(nil, v)
	assert.Equal(t, 3, UserTable.MaskLen())
	assert.False(t, p.Plan().Contains(userTeam))
	assert.False(t, p.Plan().Contains(userTitle))
	assert.False(t, p.Plan().Contains(userEnchant))

	data, err := Encode(p)
	require.NoError(t, err)

	r := wire.NewReader(data)
	assert.Equal(t, uint8(OpcodeUserInfo), r.ReadUint8())
	assert.Equal(t, v.ObjectID, r.ReadInt32())
	assert.Equal(t, uint16(17), r.ReadUint16())
	set := mask.FromBytes(UserTable, r.ReadBytes(3))
	assert.Equal(t, 13, set.Count())
	length := int(r.ReadUint16())
	assert.Equal(t, length, r.Remaining())

	r.ReadInt32() // relation
	assert.Equal(t, "Алиса", r.ReadString())
	require.NoError(t, r.Err())

	v.Team = 1
	v.Title = "Hero"
	withTeam := NewUserInfo(nil, v)
	assert.True(t, withTeam.Plan().Contains(userTeam))
	assert.Equal(t, p.Plan().BlockLength(0)+1+wire.StringSize("Hero"), withTeam.Plan().BlockLength(0))
}

// brokenPacket объявляет 4 байта, а пишет 2.
type brokenPacket struct{ plan *codec.Plan }

var brokenComponent = mask.ComponentType{Kind: "Broken", Name: "Value", Bit: 0, Size: 4}
var brokenTable = mask.NewTable("Broken", brokenComponent)

func (b *brokenPacket) Name() string { return "Broken" }
func (b *brokenPacket) Write(w *wire.Writer) bool {
	w.WriteUint8(0x99)
	codec.Emit(b.plan, w, b)
	return true
}
func (b *brokenPacket) WriteComponent(c mask.ComponentType, w *wire.Writer) { w.WriteUint16(1) }

type panickyPacket struct{}

func (panickyPacket) Name() string { return "Panicky" }
func (panickyPacket) Write(w *wire.Writer) bool {
	w.WriteUint8(0x01)
	var counters map[string]int
	counters["written"]++
	return true
}

func TestEncodeDropsLayoutFaults(t *testing.T) {
	pl := codec.NewPlan(codec.SingleBlock(brokenTable, "body", codec.LengthUint8))
	pl.Add(brokenComponent)

	data, err := Encode(&brokenPacket{plan: pl})
	assert.Nil(t, data)
	require.ErrorIs(t, err, ErrDropped)

	var drop *DropError
	require.True(t, errors.As(err, &drop))
	assert.Equal(t, "Broken", drop.Packet)
	_, isLayout := drop.Cause.(*codec.LayoutError)
	assert.True(t, isLayout)
}

func TestEncodeDropsRuntimePanics(t *testing.T) {
	data, err := Encode(panickyPacket{})
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrDropped)
}

func requireDropped(t *testing.T, p ServerPacket) *codec.LayoutError {
	t.Helper()
	var (
		data []byte
		err  error
	)
	require.NotPanics(t, func() { data, err = Encode(p) })
	assert.Nil(t, data)
	require.ErrorIs(t, err, ErrDropped)

	var drop *DropError
	require.True(t, errors.As(err, &drop))
	le, ok := drop.Cause.(*codec.LayoutError)
	require.True(t, ok, "cause %T", drop.Cause)
	return le
}

func TestOverlongTitleIsDroppedOnEncode(t *testing.T) {
	v := wolf()
	v.Title = strings.Repeat("x", 40000)

	var p *NpcInfo
	require.NotPanics(t, func() { p = NewNpcInfo(nil, v, false) })
	require.Error(t, p.Plan().Err())

	le := requireDropped(t, p)
	assert.Equal(t, "body", le.Block)
}

func TestOverlongTranslationIsDroppedOnEncode(t *testing.T) {
	loc := catalog{"ru": {20120: {strings.Repeat("в", 40000), ""}}}
	p := NewNpcInfo(nil, wolf(), false)
	require.NoError(t, p.Plan().Err())

	require.NotPanics(t, func() { p.Localize(loc, "ru") })
	le := requireDropped(t, p)
	assert.Contains(t, le.Reason, "overflows 2-byte prefix")
}

func TestOverlongUserNameIsDroppedOnEncode(t *testing.T) {
	var p *UserInfo
	require.NotPanics(t, func() {
		p = NewUserInfo(nil, UserView{ObjectID: 1, Name: strings.Repeat("a", 40000)})
	})
	requireDropped(t, p)
}

func TestInventoryUpdateWithUnencodableItemIsDropped(t *testing.T) {
	bad := potion(7)
	bad.SoulCrystals = make([]int32, item.MaxCrystals+1)
	requireDropped(t, NewInventoryUpdate([]InventoryChange{{Kind: ChangeAdd, Item: bad}}))
}

func TestForeignComponentPanics(t *testing.T) {
	p := NewNpcInfo(nil, wolf(), false)
	assert.Panics(t, func() { p.Plan().Add(userTeam) })
}
