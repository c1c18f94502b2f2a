package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/annel0/mmo-wire/internal/eventbus"
	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// ItemEvent - полезная нагрузка события ItemChanged.
type ItemEvent struct {
	Kind string        `json:"kind"` // add, modify, remove
	Item item.Snapshot `json:"item"`
}

// PublishItemChange публикует изменение предмета в шину; так игровые узлы
// сообщают об изменениях инвентаря.
func PublishItemChange(ctx context.Context, bus eventbus.EventBus, source string, kind packets.ChangeKind, s item.Snapshot) error {
	payload, err := json.Marshal(ItemEvent{Kind: kind.String(), Item: s})
	if err != nil {
		return fmt.Errorf("marshal item event: %w", err)
	}
	return bus.Publish(ctx, eventbus.NewEnvelope(source, eventbus.EventItemChanged, payload))
}

// Producer подписывается на ItemChanged и записывает изменения в накопитель.
type Producer struct {
	acc *ChangeAccumulator
	sub eventbus.Subscription
}

// NewProducer подписывает накопитель на события изменения предметов.
func NewProducer(bus eventbus.EventBus, acc *ChangeAccumulator) (*Producer, error) {
	p := &Producer{acc: acc}
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.EventItemChanged}}, p.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", eventbus.EventItemChanged, err)
	}
	p.sub = sub
	return p, nil
}

func (p *Producer) handle(ctx context.Context, ev *eventbus.Envelope) {
	var e ItemEvent
	if err := json.Unmarshal(ev.Payload, &e); err != nil {
		logging.GetSyncLogger().Warn("событие %s от %s не разобрано: %v", ev.ID, ev.Source, err)
		return
	}
	kind, err := packets.ParseChangeKind(e.Kind)
	if err != nil {
		logging.GetSyncLogger().Warn("событие %s: %v", ev.ID, err)
		return
	}
	p.acc.Record(kind, e.Item)
}

func (p *Producer) Stop() { p.sub.Unsubscribe() }
