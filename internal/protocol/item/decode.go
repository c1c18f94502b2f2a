package item

import (
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// Read - эталонный разбор записи предмета (тесты, packet-cli).
// Байт 0xFF в поле слота восстанавливается как квестовый предмет, если предмет не надет.
func Read(r *wire.Reader) Snapshot {
	set := mask.FromBytes(Table, r.ReadBytes(Table.MaskLen()))

	var s Snapshot
	s.ObjectID = r.ReadInt32()
	s.DisplayID = r.ReadInt32()
	loc := r.ReadUint8()
	s.Count = r.ReadInt64()
	s.Type2 = r.ReadUint8()
	s.CustomType1 = r.ReadUint8()
	s.Equipped = r.ReadUint16() != 0
	s.BodyPart = r.ReadInt64()
	s.EnchantLevel = r.ReadUint8()
	s.Mana = r.ReadInt32()
	r.ReadUint8()
	s.Time = r.ReadInt32()
	s.Available = r.ReadBool()
	r.ReadUint16()

	if loc == 0xFF {
		s.QuestItem = !s.Equipped
	} else {
		s.Location = loc
	}

	if set.Contains(ComponentAugmentation) {
		s.Augmentation = &Augmentation{Option1: r.ReadInt32(), Option2: r.ReadInt32()}
	}
	if set.Contains(ComponentElementals) {
		e := &Elementals{AttackType: r.ReadInt16(), AttackPower: r.ReadInt16()}
		for i := range e.Defence {
			e.Defence[i] = r.ReadInt16()
		}
		s.Elementals = e
	}
	if set.Contains(ComponentEnchantOptions) {
		for i := range s.EnchantOptions {
			s.EnchantOptions[i] = r.ReadInt32()
		}
	}
	if set.Contains(ComponentVisualID) {
		s.VisualID = r.ReadInt32()
	}
	if set.Contains(ComponentSoulCrystals) {
		s.SoulCrystals = readCrystals(r)
		s.SpecialCrystals = readCrystals(r)
	}
	s.Blessed = set.Contains(ComponentBlessed) && r.ReadUint8() != 0
	return s
}

func readCrystals(r *wire.Reader) []int32 {
	n := int(r.ReadUint8())
	if n == 0 {
		return nil
	}
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = r.ReadInt32()
	}
	return ids
}
