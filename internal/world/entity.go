// Package world содержит живые сущности, которые описывают исходящие пакеты:
// предметы, NPC и персонажей игроков. Сущности изменяются из многих горутин,
// пакеты строятся только из их снимков.
package world

// EntityType определяет тип сущности
type EntityType uint16

const (
	EntityTypeUnknown EntityType = 0   // Неизвестный тип
	EntityTypePlayer  EntityType = 1   // Игрок
	EntityTypeItem    EntityType = 100 // Предмет
	EntityTypeNPC     EntityType = 300 // Неигровой персонаж
)

func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeItem:
		return "item"
	case EntityTypeNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// Entity - общая часть сущностей мира.
type Entity interface {
	ObjectID() int32
	Type() EntityType
	IsSpawned() bool
}
