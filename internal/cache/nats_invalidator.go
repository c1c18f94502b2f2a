package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/annel0/mmo-wire/internal/logging"
)

// NATSInvalidator рассылает уведомления об обновлении каталогов через NATS Pub/Sub.
// Собственные уведомления узла и повторная доставка того же уведомления в
// пределах окна дедупликации игнорируются; новые публикации того же языка
// обрабатываются всегда.
type NATSInvalidator struct {
	conn    *nats.Conn
	subject string
	nodeID  string
	window  time.Duration
	logger  *logging.Logger

	mu           sync.Mutex
	subscription *nats.Subscription
	handler      InvalidationHandler
	recent       map[string]time.Time // ключ уведомления -> время приёма

	publishedCount int64
	receivedCount  int64
	errorsCount    int64
}

// InvalidationMessage - тело уведомления.
type InvalidationMessage struct {
	ID        string    `json:"id"`
	Lang      string    `json:"lang"`
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
}

// NewNATSInvalidator подключается к NATS. window - окно дедупликации (0 - 1с).
func NewNATSInvalidator(url, subject string, window time.Duration) (*NATSInvalidator, error) {
	conn, err := nats.Connect(url,
		nats.Name("mmo-wire-locale"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newInvalidator(conn, subject, window), nil
}

func newInvalidator(conn *nats.Conn, subject string, window time.Duration) *NATSInvalidator {
	if window <= 0 {
		window = time.Second
	}
	return &NATSInvalidator{
		conn:    conn,
		subject: subject,
		nodeID:  uuid.NewString(),
		window:  window,
		logger:  logging.GetEventBusLogger(),
		recent:  make(map[string]time.Time),
	}
}

// PublishInvalidation сообщает остальным узлам, что каталог lang обновлён.
func (n *NATSInvalidator) PublishInvalidation(ctx context.Context, lang string) error {
	data, err := json.Marshal(&InvalidationMessage{ID: uuid.NewString(), Lang: lang, Timestamp: time.Now(), NodeID: n.nodeID})
	if err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to flush invalidation: %w", err)
	}
	atomic.AddInt64(&n.publishedCount, 1)
	n.logger.Debug("Published catalog invalidation: %s", lang)
	return nil
}

// SubscribeInvalidations подписывается на уведомления; подписка снимается при отмене ctx.
func (n *NATSInvalidator) SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscription != nil {
		return fmt.Errorf("already subscribed to invalidations")
	}
	n.handler = handler

	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) { n.handle(msg.Data) })
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}
	n.subscription = sub

	go func() {
		<-ctx.Done()
		n.unsubscribe()
	}()
	n.logger.Info("Subscribed to catalog invalidations on subject: %s", n.subject)
	return nil
}

func (n *NATSInvalidator) handle(data []byte) {
	atomic.AddInt64(&n.receivedCount, 1)

	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		n.logger.Error("Failed to unmarshal invalidation message: %v", err)
		return
	}
	if msg.NodeID == n.nodeID {
		return
	}
	if !n.admit(msg.key(), time.Now()) {
		n.logger.Debug("Ignoring duplicate invalidation for %s", msg.Lang)
		return
	}

	n.mu.Lock()
	handler := n.handler
	n.mu.Unlock()
	if handler == nil {
		return
	}
	if err := handler(msg.Lang); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		n.logger.Error("Invalidation handler failed for %s: %v", msg.Lang, err)
	}
}

// key идентифицирует уведомление; у сообщений без ID - узел и время публикации.
func (m *InvalidationMessage) key() string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("%s/%s/%d", m.NodeID, m.Lang, m.Timestamp.UnixNano())
}

// admit отмечает уведомление и сообщает, нужно ли его обрабатывать.
func (n *NATSInvalidator) admit(key string, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if last, ok := n.recent[key]; ok && now.Sub(last) < n.window {
		return false
	}
	n.recent[key] = now
	for k, ts := range n.recent {
		if now.Sub(ts) > n.window {
			delete(n.recent, k)
		}
	}
	return true
}

func (n *NATSInvalidator) unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscription == nil {
		return
	}
	if err := n.subscription.Unsubscribe(); err != nil {
		n.logger.Error("Failed to unsubscribe from invalidations: %v", err)
	}
	n.subscription = nil
}

// Stats возвращает счётчики публикаций, приёма и ошибок.
func (n *NATSInvalidator) Stats() (published, received, errors int64) {
	return atomic.LoadInt64(&n.publishedCount), atomic.LoadInt64(&n.receivedCount), atomic.LoadInt64(&n.errorsCount)
}

// Close отписывается и закрывает соединение.
func (n *NATSInvalidator) Close() error {
	n.unsubscribe()
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
