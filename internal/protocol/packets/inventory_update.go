package packets

import (
	"fmt"
	"strings"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// ChangeKind - вид изменения предмета в пакете обновления инвентаря.
type ChangeKind uint16

const (
	ChangeAdd    ChangeKind = 1
	ChangeModify ChangeKind = 2
	ChangeRemove ChangeKind = 3
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "ADD"
	case ChangeModify:
		return "MODIFY"
	case ChangeRemove:
		return "REMOVE"
	default:
		return fmt.Sprintf("ChangeKind(%d)", uint16(k))
	}
}

// ParseChangeKind разбирает имя вида изменения (add/modify/remove, без учёта регистра).
func ParseChangeKind(name string) (ChangeKind, error) {
	switch strings.ToLower(name) {
	case "add":
		return ChangeAdd, nil
	case "modify":
		return ChangeModify, nil
	case "remove":
		return ChangeRemove, nil
	}
	return 0, fmt.Errorf("неизвестный вид изменения %q", name)
}

// InventoryChange - одна запись пакета: вид изменения и снимок предмета.
type InventoryChange struct {
	Kind ChangeKind
	Item item.Snapshot
}

// InventoryUpdate - пакет пакетных изменений инвентаря:
// [0x21][u16 count]{[u16 kind][item record]}*.
type InventoryUpdate struct {
	Changes []InventoryChange
}

// NewInventoryUpdate создаёт пакет из уже снятых изменений.
func NewInventoryUpdate(changes []InventoryChange) *InventoryUpdate {
	return &InventoryUpdate{Changes: changes}
}

func (p *InventoryUpdate) Name() string { return "InventoryUpdate" }

func (p *InventoryUpdate) Write(w *wire.Writer) bool {
	writeOpcode(w, OpcodeInventoryUpdate)
	writeCount(w, p.Name(), len(p.Changes))
	for i := range p.Changes {
		c := &p.Changes[i]
		w.WriteUint16(uint16(c.Kind))
		item.Write(w, &c.Item)
	}
	return true
}
