package network

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// Transport передаёт готовые байты клиенту. Реализуется сессией
// (TCP, KCP и т.п.), этот слой её не знает.
type Transport interface {
	SendPacket(data []byte) error
}

// TransportFunc адаптирует функцию к Transport.
type TransportFunc func(data []byte) error

func (f TransportFunc) SendPacket(data []byte) error { return f(data) }

// Outbound кодирует пакеты одной сессии и отдаёт их транспорту.
// Ошибка раскладки или устаревший субъект отбрасывают только этот пакет.
type Outbound struct {
	session   string
	transport Transport
	metrics   *EncoderMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
}

const tracerName = "github.com/annel0/mmo-wire/internal/network"

// NewOutbound создаёт отправителя для сессии. metrics может быть nil.
func NewOutbound(session string, transport Transport, metrics *EncoderMetrics) *Outbound {
	return &Outbound{
		session:   session,
		transport: transport,
		metrics:   metrics,
		logger:    logging.GetNetworkLogger(),
		tracer:    otel.Tracer(tracerName),
	}
}

// Send кодирует пакет и передаёт его транспорту. Ошибка возвращается только
// при сбое транспорта; отброшенные пакеты учитываются в метриках и логе.
func (o *Outbound) Send(p packets.ServerPacket) error {
	_, span := o.tracer.Start(context.Background(), "encode "+p.Name(),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("wire.session", o.session),
			attribute.String("wire.packet", p.Name()),
		))
	defer span.End()

	data, err := packets.Encode(p)
	switch {
	case errors.Is(err, packets.ErrDropped):
		span.RecordError(err)
		o.drop(span, p.Name(), DropFault)
		return nil
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		return err
	case len(data) == 0:
		o.drop(span, p.Name(), DropStale)
		return nil
	}
	span.SetAttributes(attribute.Int("wire.bytes", len(data)))

	o.logger.LogPacket(o.session, p.Name(), data)
	if err := o.transport.SendPacket(data); err != nil {
		o.drop(span, p.Name(), DropTransport)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send %s to %s: %w", p.Name(), o.session, err)
	}
	if o.metrics != nil {
		o.metrics.observeEncoded(p.Name(), len(data))
	}
	return nil
}

func (o *Outbound) drop(span trace.Span, packet, reason string) {
	span.SetAttributes(attribute.String("wire.drop", reason))
	if o.metrics != nil {
		o.metrics.observeDropped(packet, reason)
	}
}
