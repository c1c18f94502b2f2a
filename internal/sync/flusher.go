package sync

import (
	"sync"
	"time"

	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// PacketSink принимает готовые к кодированию пакеты (исходящая сессия).
type PacketSink interface {
	Send(p packets.ServerPacket) error
}

// Flusher периодически сбрасывает накопитель в один пакет InventoryUpdate.
type Flusher struct {
	acc   *ChangeAccumulator
	sink  PacketSink
	every time.Duration

	sendMu   sync.Mutex // пакеты уходят в порядке Drain
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewFlusher создаёт и запускает цикл сброса с интервалом every.
func NewFlusher(acc *ChangeAccumulator, sink PacketSink, every time.Duration) *Flusher {
	f := &Flusher{
		acc:   acc,
		sink:  sink,
		every: every,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go f.loop()
	return f
}

func (f *Flusher) loop() {
	defer close(f.done)
	ticker := time.NewTicker(f.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.Flush()
		case <-f.quit:
			return
		}
	}
}

// Flush сбрасывает накопитель немедленно и возвращает число отправленных записей.
func (f *Flusher) Flush() int {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	msg := f.acc.FlushToMessage()
	n := len(msg.Changes)
	if n == 0 {
		return 0
	}
	if err := f.sink.Send(msg); err != nil {
		logging.GetSyncLogger().Warn("InventoryUpdate на %d записей не отправлен: %v", n, err)
		return 0
	}
	logging.GetSyncLogger().Trace("InventoryUpdate: %d записей", n)
	return n
}

// Stop останавливает цикл и отправляет оставшиеся изменения.
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() {
		close(f.quit)
		<-f.done
		f.Flush()
	})
}
