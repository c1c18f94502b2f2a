package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/annel0/mmo-wire/internal/eventbus"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id int32, count int64) item.Snapshot {
	return item.Snapshot{ObjectID: id, DisplayID: 57, Count: count, Time: -9999, Available: true}
}

func TestAddModifyRemoveCoalescesToRemove(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	acc.RecordAdd(snap(7, 1))
	acc.RecordModify(snap(7, 2))
	acc.RecordRemove(snap(7, 2))

	got := acc.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, packets.ChangeRemove, got[0].Kind)
	assert.Equal(t, int32(7), got[0].ObjectID)
	assert.Zero(t, acc.Len())
	assert.Nil(t, acc.Drain())
}

func TestFlushKeepsFirstSeenOrder(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	acc.RecordAdd(snap(7, 1))
	acc.RecordModify(snap(7, 5))
	acc.RecordAdd(snap(9, 1))

	msg := acc.FlushToMessage()
	require.Len(t, msg.Changes, 2)
	assert.Equal(t, packets.ChangeModify, msg.Changes[0].Kind)
	assert.Equal(t, int32(7), msg.Changes[0].Item.ObjectID)
	assert.Equal(t, int64(5), msg.Changes[0].Item.Count)
	assert.Equal(t, packets.ChangeAdd, msg.Changes[1].Kind)
	assert.Equal(t, int32(9), msg.Changes[1].Item.ObjectID)
	assert.Zero(t, acc.Len())
}

func TestFlushSkipsUnencodableItem(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	acc.RecordAdd(snap(7, 1))
	bad := snap(8, 1)
	bad.SoulCrystals = make([]int32, item.MaxCrystals+1)
	acc.RecordModify(bad)
	acc.RecordAdd(snap(9, 1))

	msg := acc.FlushToMessage()
	require.Len(t, msg.Changes, 2)
	assert.Equal(t, int32(7), msg.Changes[0].Item.ObjectID)
	assert.Equal(t, int32(9), msg.Changes[1].Item.ObjectID)

	data, err := packets.Encode(msg)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Zero(t, acc.Len())
}

func TestSupersededEntryKeepsPosition(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	acc.RecordAdd(snap(1, 1))
	acc.RecordAdd(snap(2, 1))
	acc.RecordAdd(snap(3, 1))
	acc.RecordRemove(snap(1, 1))

	var ids []int32
	for _, ch := range acc.Drain() {
		ids = append(ids, ch.ObjectID)
	}
	assert.Equal(t, []int32{1, 2, 3}, ids)
}

type pendingGauge struct {
	mu   sync.Mutex
	last int
}

func (g *pendingGauge) SetPending(n int) {
	g.mu.Lock()
	g.last = n
	g.mu.Unlock()
}

func TestObserverTracksPending(t *testing.T) {
	g := &pendingGauge{}
	acc := NewChangeAccumulator(g)
	acc.RecordAdd(snap(1, 1))
	acc.RecordAdd(snap(2, 1))
	assert.Equal(t, 2, g.last)
	acc.Drain()
	assert.Equal(t, 0, g.last)
}

// Ни одно изменение не теряется и не уходит дважды при параллельной записи и сбросе.
func TestConcurrentRecordAndDrain(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	const workers, perWorker = 8, 500

	var (
		mu   sync.Mutex
		seen = make(map[int32]int)
	)
	collect := func(changes []PendingChange) {
		mu.Lock()
		for _, ch := range changes {
			seen[ch.ObjectID]++
		}
		mu.Unlock()
	}

	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case <-stop:
				return
			default:
				collect(acc.Drain())
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				acc.RecordAdd(snap(int32(w*perWorker+i), 1))
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	<-drained
	collect(acc.Drain())

	require.Len(t, seen, workers*perWorker)
	for id, n := range seen {
		require.Equal(t, 1, n, "object %d", id)
	}
}

type captureSink struct {
	mu      sync.Mutex
	packets []*packets.InventoryUpdate
	err     error
}

func (s *captureSink) Send(p packets.ServerPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.packets = append(s.packets, p.(*packets.InventoryUpdate))
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.packets)
}

func TestFlusherSendsOnTickAndOnStop(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	sink := &captureSink{}
	f := NewFlusher(acc, sink, 10*time.Millisecond)

	acc.RecordAdd(snap(1, 1))
	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	f.Stop()
	acc.RecordAdd(snap(2, 1))
	f.Stop()
	assert.Equal(t, 1, sink.count(), "stop is idempotent and the loop no longer runs")
	assert.Equal(t, 1, acc.Len())
}

func TestFlusherSkipsEmptyAndSurvivesSinkErrors(t *testing.T) {
	acc := NewChangeAccumulator(nil)
	sink := &captureSink{err: errors.New("closed")}
	f := NewFlusher(acc, sink, time.Hour)
	defer f.Stop()

	assert.Zero(t, f.Flush())
	acc.RecordAdd(snap(1, 1))
	assert.Zero(t, f.Flush())
	assert.Zero(t, acc.Len())
}

func TestProducerRecordsBusEvents(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()

	acc := NewChangeAccumulator(nil)
	p, err := NewProducer(bus, acc)
	require.NoError(t, err)
	defer p.Stop()

	ctx := context.Background()
	require.NoError(t, PublishItemChange(ctx, bus, "node-1", packets.ChangeAdd, snap(7, 1)))
	require.NoError(t, PublishItemChange(ctx, bus, "node-1", packets.ChangeModify, snap(7, 3)))
	require.NoError(t, bus.Publish(ctx, eventbus.NewEnvelope("node-1", eventbus.EventItemChanged, []byte("not json"))))
	require.NoError(t, PublishItemChange(ctx, bus, "node-1", packets.ChangeAdd, snap(9, 1)))

	assert.Eventually(t, func() bool { return acc.Len() == 2 }, time.Second, 5*time.Millisecond)
	got := acc.Drain()
	assert.Equal(t, packets.ChangeModify, got[0].Kind)
	assert.Equal(t, int64(3), got[0].Item.Count)
	assert.Equal(t, packets.ChangeAdd, got[1].Kind)
}

func TestManagerStopFlushesRemainder(t *testing.T) {
	sink := &captureSink{}
	m, err := NewManager(Config{Sink: sink, FlushEvery: time.Hour})
	require.NoError(t, err)

	for i := int32(0); i < 3; i++ {
		m.Accumulator().RecordAdd(snap(i, 1))
	}
	m.Stop()

	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.packets[0].Changes, 3)

	_, err = NewManager(Config{})
	assert.Error(t, err)
}

func ExampleChangeAccumulator() {
	acc := NewChangeAccumulator(nil)
	acc.RecordAdd(item.Snapshot{ObjectID: 7})
	acc.RecordModify(item.Snapshot{ObjectID: 7})
	acc.RecordAdd(item.Snapshot{ObjectID: 9})

	for _, ch := range acc.FlushToMessage().Changes {
		fmt.Println(ch.Item.ObjectID, ch.Kind)
	}
	// Output:
	// 7 MODIFY
	// 9 ADD
}
