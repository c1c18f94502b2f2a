package world

import (
	"sync"

	"github.com/annel0/mmo-wire/internal/protocol/item"
)

// Item - живой предмет. Все поля защищены мьютексом; для отправки
// берётся Snapshot.
type Item struct {
	mu    sync.RWMutex
	state item.Snapshot
}

// NewItem создаёт предмет с бессрочным временем жизни.
func NewItem(objectID, displayID int32, count int64) *Item {
	return &Item{state: item.Snapshot{
		ObjectID:  objectID,
		DisplayID: displayID,
		Count:     count,
		Mana:      -1,
		Time:      -9999,
		Available: true,
		Elementals: &item.Elementals{
			AttackType: item.ElementNone,
		},
	}}
}

func (it *Item) ObjectID() int32  { return it.state.ObjectID }
func (it *Item) Type() EntityType { return EntityTypeItem }
func (it *Item) IsSpawned() bool  { return true }

// Snapshot возвращает неизменяемую копию состояния.
func (it *Item) Snapshot() item.Snapshot {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.state.Clone()
}

func (it *Item) update(fn func(s *item.Snapshot)) {
	it.mu.Lock()
	fn(&it.state)
	it.mu.Unlock()
}

func (it *Item) Count() int64 {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.state.Count
}

func (it *Item) SetCount(n int64) { it.update(func(s *item.Snapshot) { s.Count = n }) }

func (it *Item) SetLocation(slot uint8) { it.update(func(s *item.Snapshot) { s.Location = slot }) }

func (it *Item) SetQuestItem(q bool) { it.update(func(s *item.Snapshot) { s.QuestItem = q }) }

// Equip надевает предмет в слоты bodyPart.
func (it *Item) Equip(bodyPart int64) {
	it.update(func(s *item.Snapshot) {
		s.Equipped = true
		s.BodyPart = bodyPart
	})
}

func (it *Item) Unequip() { it.update(func(s *item.Snapshot) { s.Equipped = false }) }

func (it *Item) SetEnchantLevel(lvl uint8) { it.update(func(s *item.Snapshot) { s.EnchantLevel = lvl }) }

// Augment задаёт пару опций аугментации; nil снимает аугментацию.
func (it *Item) Augment(a *item.Augmentation) {
	it.update(func(s *item.Snapshot) {
		if a == nil {
			s.Augmentation = nil
			return
		}
		cp := *a
		s.Augmentation = &cp
	})
}

// SetAttackElement задаёт атакующий элемент (ElementNone - убрать).
func (it *Item) SetAttackElement(elem, power int16) {
	it.update(func(s *item.Snapshot) {
		s.Elementals.AttackType = elem
		s.Elementals.AttackPower = power
	})
}

// SetDefenceElement задаёт защиту от элемента idx (0..5).
func (it *Item) SetDefenceElement(idx int, value int16) {
	it.update(func(s *item.Snapshot) { s.Elementals.Defence[idx] = value })
}

func (it *Item) SetEnchantOption(slot int, id int32) {
	it.update(func(s *item.Snapshot) { s.EnchantOptions[slot] = id })
}

func (it *Item) SetVisualID(id int32) { it.update(func(s *item.Snapshot) { s.VisualID = id }) }

// AddSoulCrystal вставляет опцию кристалла души (special - особый кристалл).
func (it *Item) AddSoulCrystal(id int32, special bool) {
	it.update(func(s *item.Snapshot) {
		if special {
			s.SpecialCrystals = append(s.SpecialCrystals, id)
		} else {
			s.SoulCrystals = append(s.SoulCrystals, id)
		}
	})
}

func (it *Item) SetBlessed(b bool) { it.update(func(s *item.Snapshot) { s.Blessed = b }) }
