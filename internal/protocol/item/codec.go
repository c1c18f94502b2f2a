package item

import (
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

const kind = "item"

// Подзаписи предмета в порядке вывода.
var (
	ComponentAugmentation   = mask.ComponentType{Kind: kind, Name: "Augmentation", Bit: 0, Size: 8}
	ComponentElementals     = mask.ComponentType{Kind: kind, Name: "Elementals", Bit: 1, Size: 16}
	ComponentEnchantOptions = mask.ComponentType{Kind: kind, Name: "EnchantOptions", Bit: 2, Size: 4 * EnchantOptionSlots}
	ComponentVisualID       = mask.ComponentType{Kind: kind, Name: "VisualID", Bit: 3, Size: 4}
	ComponentSoulCrystals   = mask.ComponentType{Kind: kind, Name: "SoulCrystals", Bit: 4, Size: mask.Variable}
	ComponentBlessed        = mask.ComponentType{Kind: kind, Name: "Blessed", Bit: 5, Size: 1}

	Table = mask.NewTable(kind,
		ComponentAugmentation,
		ComponentElementals,
		ComponentEnchantOptions,
		ComponentVisualID,
		ComponentSoulCrystals,
		ComponentBlessed,
	)

	// Подзаписи идут сразу за заголовком, без префикса длины.
	layout = codec.SingleBlock(Table, "options", codec.LengthNone)
)

// MaxCrystals - предел опций кристаллов души в одном списке (счётчик u8).
const MaxCrystals = 0xFF

// HeaderSize - размер фиксированной части записи, включая байт маски.
const HeaderSize = 1 + 4 + 4 + 1 + 8 + 1 + 1 + 2 + 8 + 1 + 4 + 1 + 4 + 1 + 2

// Plan вычисляет маску предмета по содержимому снимка. Чистая функция:
// одинаковые подзаписи дают одинаковую маску и одинаковые длины.
// Непредставимый снимок даёт план с Err() != nil.
func Plan(s *Snapshot) *codec.Plan {
	p := codec.NewPlan(layout)
	p.AddIf(s.Augmentation != nil, ComponentAugmentation)
	p.AddIf(hasElementals(s.Elementals), ComponentElementals)
	p.AddIf(hasEnchantOptions(s), ComponentEnchantOptions)
	p.AddIf(s.VisualID > 0, ComponentVisualID)
	if len(s.SoulCrystals) > 0 || len(s.SpecialCrystals) > 0 {
		p.AddSized(ComponentSoulCrystals, 2+4*len(s.SoulCrystals)+4*len(s.SpecialCrystals))
		if len(s.SoulCrystals) > MaxCrystals || len(s.SpecialCrystals) > MaxCrystals {
			p.Reject("options", "more than %d soul crystal options", MaxCrystals)
		}
	}
	p.AddIf(s.Blessed, ComponentBlessed)
	return p
}

func hasElementals(e *Elementals) bool {
	if e == nil {
		return false
	}
	if e.AttackType >= 0 {
		return true
	}
	for _, d := range e.Defence {
		if d > 0 {
			return true
		}
	}
	return false
}

func hasEnchantOptions(s *Snapshot) bool {
	for _, id := range s.EnchantOptions {
		if id > 0 {
			return true
		}
	}
	return false
}

// Size возвращает полный размер записи предмета в байтах.
func Size(s *Snapshot) int {
	return HeaderSize + Plan(s).BlockLength(0)
}

// Write пишет запись предмета: заголовок с маской и подзаписи по возрастанию бита.
func Write(w *wire.Writer, s *Snapshot) {
	WritePlanned(w, s, Plan(s))
}

// WritePlanned пишет запись по заранее вычисленному плану (пакеты, которым
// размер записи нужен до записи, считают план один раз).
func WritePlanned(w *wire.Writer, s *Snapshot, p *codec.Plan) {
	if err := p.Err(); err != nil {
		panic(err)
	}
	p.WriteMask(w)
	w.WriteInt32(s.ObjectID)
	w.WriteInt32(s.DisplayID)
	w.WriteUint8(s.locationByte())
	w.WriteInt64(s.Count)
	w.WriteUint8(s.Type2)
	w.WriteUint8(s.CustomType1)
	if s.Equipped {
		w.WriteUint16(1)
	} else {
		w.WriteUint16(0)
	}
	w.WriteInt64(s.BodyPart)
	w.WriteUint8(s.EnchantLevel)
	w.WriteInt32(s.Mana)
	w.WriteUint8(0)
	w.WriteInt32(s.Time)
	w.WriteBool(s.Available)
	w.WriteUint16(0)

	codec.EmitBlocks(p, w, options{s})
}

// options пишет подзаписи снимка.
type options struct{ s *Snapshot }

func (o options) WriteComponent(c mask.ComponentType, w *wire.Writer) {
	s := o.s
	switch c {
	case ComponentAugmentation:
		w.WriteInt32(s.Augmentation.Option1)
		w.WriteInt32(s.Augmentation.Option2)
	case ComponentElementals:
		w.WriteInt16(s.Elementals.AttackType)
		w.WriteInt16(s.Elementals.AttackPower)
		for _, d := range s.Elementals.Defence {
			w.WriteInt16(d)
		}
	case ComponentEnchantOptions:
		for _, id := range s.EnchantOptions {
			w.WriteInt32(id)
		}
	case ComponentVisualID:
		w.WriteInt32(s.VisualID)
	case ComponentSoulCrystals:
		writeCrystals(w, s.SoulCrystals)
		writeCrystals(w, s.SpecialCrystals)
	case ComponentBlessed:
		w.WriteUint8(1)
	}
}

func writeCrystals(w *wire.Writer, ids []int32) {
	w.WriteUint8(uint8(len(ids)))
	for _, id := range ids {
		w.WriteInt32(id)
	}
}
