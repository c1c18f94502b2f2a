package sync

import (
	"sync"

	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// PendingChange - ожидающее отправки изменение одного предмета.
type PendingChange struct {
	ObjectID int32
	Kind     packets.ChangeKind
	Item     item.Snapshot
}

// PendingObserver получает текущее число ожидающих изменений (для метрик).
type PendingObserver interface {
	SetPending(n int)
}

// ChangeAccumulator склеивает изменения предметов до отправки одним пакетом.
//
// На каждый ObjectID хранится одна запись: новое изменение заменяет
// предыдущее (last-write-wins), но запись остаётся на месте первого
// появления. Один мьютекс защищает и запись, и Drain, поэтому изменение не
// теряется и не уходит дважды.
type ChangeAccumulator struct {
	mu      sync.Mutex
	index   map[int32]int
	entries []PendingChange
	obs     PendingObserver
}

// NewChangeAccumulator создаёт пустой накопитель. obs может быть nil.
func NewChangeAccumulator(obs PendingObserver) *ChangeAccumulator {
	return &ChangeAccumulator{
		index: make(map[int32]int),
		obs:   obs,
	}
}

// RecordAdd отмечает появление предмета.
func (a *ChangeAccumulator) RecordAdd(s item.Snapshot) { a.record(packets.ChangeAdd, s) }

// RecordModify отмечает изменение предмета.
func (a *ChangeAccumulator) RecordModify(s item.Snapshot) { a.record(packets.ChangeModify, s) }

// RecordRemove отмечает удаление предмета.
func (a *ChangeAccumulator) RecordRemove(s item.Snapshot) { a.record(packets.ChangeRemove, s) }

// Record записывает изменение произвольного вида.
func (a *ChangeAccumulator) Record(kind packets.ChangeKind, s item.Snapshot) { a.record(kind, s) }

func (a *ChangeAccumulator) record(kind packets.ChangeKind, s item.Snapshot) {
	ch := PendingChange{ObjectID: s.ObjectID, Kind: kind, Item: s}

	a.mu.Lock()
	defer a.mu.Unlock()
	if i, ok := a.index[s.ObjectID]; ok {
		a.entries[i] = ch
		return
	}
	a.index[s.ObjectID] = len(a.entries)
	a.entries = append(a.entries, ch)
	if a.obs != nil {
		a.obs.SetPending(len(a.entries))
	}
}

// Drain забирает все записи в порядке первого появления и очищает накопитель.
// Возвращённый срез принадлежит вызывающему.
func (a *ChangeAccumulator) Drain() []PendingChange {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return nil
	}
	out := a.entries
	a.entries = nil
	a.index = make(map[int32]int, len(out))
	if a.obs != nil {
		a.obs.SetPending(0)
	}
	return out
}

// FlushToMessage забирает записи и собирает из них пакет InventoryUpdate.
// Пустой накопитель даёт пакет без записей. Предмет, запись которого
// непредставима на проводе, пропускается с ошибкой в логе; остальные
// изменения пакета уходят.
func (a *ChangeAccumulator) FlushToMessage() *packets.InventoryUpdate {
	drained := a.Drain()
	changes := make([]packets.InventoryChange, 0, len(drained))
	for _, ch := range drained {
		if err := item.Plan(&ch.Item).Err(); err != nil {
			logging.GetSyncLogger().Error("изменение %s предмета %d отброшено: %v", ch.Kind, ch.ObjectID, err)
			continue
		}
		changes = append(changes, packets.InventoryChange{Kind: ch.Kind, Item: ch.Item})
	}
	return packets.NewInventoryUpdate(changes)
}

// Len возвращает число ожидающих записей.
func (a *ChangeAccumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
