package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// ChangeRecorder принимает снимки изменённых предметов
// (реализуется sync.ChangeAccumulator).
type ChangeRecorder interface {
	RecordAdd(s item.Snapshot)
	RecordModify(s item.Snapshot)
	RecordRemove(s item.Snapshot)
}

// ErrItemNotFound - предмета нет в инвентаре.
var ErrItemNotFound = errors.New("world: item not found")

// Inventory - предметы одного владельца в порядке получения.
// Каждое изменение сообщается recorder'у снимком предмета после изменения.
type Inventory struct {
	mu       sync.RWMutex
	owner    int32
	items    map[int32]*Item
	order    []int32
	recorder ChangeRecorder
}

// NewInventory создаёт пустой инвентарь. recorder может быть nil.
func NewInventory(owner int32, recorder ChangeRecorder) *Inventory {
	return &Inventory{
		owner:    owner,
		items:    make(map[int32]*Item),
		recorder: recorder,
	}
}

// Add кладёт предмет в инвентарь.
func (inv *Inventory) Add(it *Item) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	id := it.ObjectID()
	if _, ok := inv.items[id]; ok {
		return fmt.Errorf("world: item %d already in inventory of %d", id, inv.owner)
	}
	inv.items[id] = it
	inv.order = append(inv.order, id)
	if inv.recorder != nil {
		inv.recorder.RecordAdd(it.Snapshot())
	}
	return nil
}

// Update изменяет предмет и сообщает об изменении. Изменения одного
// инвентаря упорядочены: снимок в recorder соответствует порядку вызовов.
func (inv *Inventory) Update(objectID int32, fn func(it *Item)) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	it, ok := inv.items[objectID]
	if !ok {
		return fmt.Errorf("update %d: %w", objectID, ErrItemNotFound)
	}
	fn(it)
	if inv.recorder != nil {
		inv.recorder.RecordModify(it.Snapshot())
	}
	return nil
}

// Remove убирает предмет из инвентаря.
func (inv *Inventory) Remove(objectID int32) (*Item, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	it, ok := inv.items[objectID]
	if !ok {
		return nil, fmt.Errorf("remove %d: %w", objectID, ErrItemNotFound)
	}
	delete(inv.items, objectID)
	for i, id := range inv.order {
		if id == objectID {
			inv.order = append(inv.order[:i], inv.order[i+1:]...)
			break
		}
	}
	if inv.recorder != nil {
		inv.recorder.RecordRemove(it.Snapshot())
	}
	return it, nil
}

// Get возвращает предмет по идентификатору.
func (inv *Inventory) Get(objectID int32) (*Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	it, ok := inv.items[objectID]
	return it, ok
}

func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items)
}

// Snapshots снимает все предметы в порядке получения.
func (inv *Inventory) Snapshots() []item.Snapshot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]item.Snapshot, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, inv.items[id].Snapshot())
	}
	return out
}

// ItemList строит полный список обычных предметов.
func (inv *Inventory) ItemList(showWindow bool) *packets.ItemList {
	var regular []item.Snapshot
	for _, s := range inv.Snapshots() {
		if !s.QuestItem {
			regular = append(regular, s)
		}
	}
	return &packets.ItemList{ShowWindow: showWindow, Items: regular}
}

// QuestItemList строит список квестовых предметов.
func (inv *Inventory) QuestItemList() *packets.ExQuestItemList {
	var quest []item.Snapshot
	for _, s := range inv.Snapshots() {
		if s.QuestItem {
			quest = append(quest, s)
		}
	}
	return &packets.ExQuestItemList{Items: quest}
}
