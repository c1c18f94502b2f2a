package sync

import (
	"fmt"
	"time"

	"github.com/annel0/mmo-wire/internal/eventbus"
	"github.com/annel0/mmo-wire/internal/logging"
)

// Manager связывает накопитель, цикл сброса и подписку на события.
type Manager struct {
	acc      *ChangeAccumulator
	flusher  *Flusher
	producer *Producer
}

// Config - параметры Manager. Bus может быть nil: тогда изменения
// записываются только напрямую через Accumulator.
type Config struct {
	Bus        eventbus.EventBus
	Sink       PacketSink
	FlushEvery time.Duration
	Observer   PendingObserver
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sync: packet sink is required")
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 200 * time.Millisecond
	}

	acc := NewChangeAccumulator(cfg.Observer)
	m := &Manager{acc: acc}

	if cfg.Bus != nil {
		producer, err := NewProducer(cfg.Bus, acc)
		if err != nil {
			return nil, err
		}
		m.producer = producer
	}
	m.flusher = NewFlusher(acc, cfg.Sink, cfg.FlushEvery)

	logging.GetSyncLogger().Info("накопитель изменений запущен: сброс каждые %v, шина=%t", cfg.FlushEvery, cfg.Bus != nil)
	return m, nil
}

// Accumulator возвращает накопитель для прямой записи изменений.
func (m *Manager) Accumulator() *ChangeAccumulator { return m.acc }

// Flush сбрасывает накопитель немедленно.
func (m *Manager) Flush() int { return m.flusher.Flush() }

// Stop отписывается от шины и отправляет оставшиеся изменения.
func (m *Manager) Stop() {
	if m.producer != nil {
		m.producer.Stop()
	}
	m.flusher.Stop()
	logging.GetSyncLogger().Info("накопитель изменений остановлен")
}
