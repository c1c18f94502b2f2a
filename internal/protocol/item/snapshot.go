// Package item кодирует записи предметов, которые встраиваются в пакеты
// инвентаря: фиксированный заголовок и необязательные подзаписи, выбранные
// собственной маской предмета.
package item

// EnchantOptionSlots - число слотов бонусов заточки. Подзапись не несёт
// счётчика: клиент всегда читает ровно столько идентификаторов.
const EnchantOptionSlots = 3

// ElementNone - атакующий элемент отсутствует.
const ElementNone int16 = -2

// Augmentation - пара опций аугментации.
type Augmentation struct {
	Option1 int32 `json:"option1" yaml:"option1"`
	Option2 int32 `json:"option2" yaml:"option2"`
}

// Elementals - атакующий элемент и шесть значений защиты
// (огонь, вода, ветер, земля, святость, тьма). AttackType = ElementNone,
// если предмет только защищает.
type Elementals struct {
	AttackType  int16    `json:"attack_type" yaml:"attack_type"`
	AttackPower int16    `json:"attack_power" yaml:"attack_power"`
	Defence     [6]int16 `json:"defence" yaml:"defence"`
}

// Snapshot - неизменяемая проекция живого предмета на момент отправки.
// Создаётся заново для каждого исходящего пакета и после создания не меняется;
// срезы принадлежат снимку (см. Clone).
type Snapshot struct {
	ObjectID     int32 `json:"object_id" yaml:"object_id"`
	DisplayID    int32 `json:"display_id" yaml:"display_id"`
	Location     uint8 `json:"location" yaml:"location"`
	QuestItem    bool  `json:"quest_item" yaml:"quest_item"`
	Count        int64 `json:"count" yaml:"count"`
	Type2        uint8 `json:"type2" yaml:"type2"`
	CustomType1  uint8 `json:"custom_type1" yaml:"custom_type1"`
	Equipped     bool  `json:"equipped" yaml:"equipped"`
	BodyPart     int64 `json:"body_part" yaml:"body_part"`
	EnchantLevel uint8 `json:"enchant_level" yaml:"enchant_level"`
	Mana         int32 `json:"mana" yaml:"mana"`
	Time         int32 `json:"time" yaml:"time"` // оставшееся время жизни, -9999 - бессрочно
	Available    bool  `json:"available" yaml:"available"`

	Augmentation    *Augmentation             `json:"augmentation,omitempty" yaml:"augmentation,omitempty"`
	Elementals      *Elementals               `json:"elementals,omitempty" yaml:"elementals,omitempty"`
	EnchantOptions  [EnchantOptionSlots]int32 `json:"enchant_options" yaml:"enchant_options"`
	VisualID        int32                     `json:"visual_id" yaml:"visual_id"`
	SoulCrystals    []int32                   `json:"soul_crystals,omitempty" yaml:"soul_crystals,omitempty"`
	SpecialCrystals []int32                   `json:"special_crystals,omitempty" yaml:"special_crystals,omitempty"`
	Blessed         bool                      `json:"blessed" yaml:"blessed"`
}

// Clone возвращает глубокую копию: снимок не должен делить память с живым предметом.
func (s Snapshot) Clone() Snapshot {
	cp := s
	if s.Augmentation != nil {
		aug := *s.Augmentation
		cp.Augmentation = &aug
	}
	if s.Elementals != nil {
		el := *s.Elementals
		cp.Elementals = &el
	}
	cp.SoulCrystals = cloneInts(s.SoulCrystals)
	cp.SpecialCrystals = cloneInts(s.SpecialCrystals)
	return cp
}

func cloneInts(v []int32) []int32 {
	if len(v) == 0 {
		return nil
	}
	cp := make([]int32, len(v))
	copy(cp, v)
	return cp
}

// locationByte - квестовые и надетые предметы клиент отмечает 0xFF вместо слота.
func (s *Snapshot) locationByte() uint8 {
	if s.QuestItem || s.Equipped {
		return 0xFF
	}
	return s.Location
}
