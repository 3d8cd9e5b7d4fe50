package transport

import (
	"go.uber.org/zap"
)

// EventKind identifies what happened on a channel.
type EventKind string

const (
	EventConnected    EventKind = "connected"
	EventDisconnected EventKind = "disconnected"
	EventSent         EventKind = "sent"
	EventReceived     EventKind = "received"
	EventFailed       EventKind = "failed"
)

// Event is a structured record of channel activity. ID is zero for
// notifications and connection events.
type Event struct {
	Kind   EventKind
	Addr   string
	Method string
	ID     int32
	Bytes  int64
	Err    error
}

// Observer receives channel events. The channel itself never prints; callers
// that want output inject an Observer.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// NopObserver discards all events.
type NopObserver struct{}

// Observe implements Observer.
func (NopObserver) Observe(Event) {}

// ZapObserver writes events to a zap logger at debug level, and failures at
// warn level.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates an observer backed by logger. A nil logger is
// replaced with a no-op logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapObserver{logger: logger.Named("transport")}
}

// Observe implements Observer.
func (o *ZapObserver) Observe(ev Event) {
	fields := make([]zap.Field, 0, 5)
	if ev.Addr != "" {
		fields = append(fields, zap.String("addr", ev.Addr))
	}
	if ev.Method != "" {
		fields = append(fields, zap.String("method", ev.Method))
	}
	if ev.ID != 0 {
		fields = append(fields, zap.Int32("id", ev.ID))
	}
	if ev.Bytes != 0 {
		fields = append(fields, zap.Int64("bytes", ev.Bytes))
	}

	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
		o.logger.Warn(string(ev.Kind), fields...)
		return
	}
	o.logger.Debug(string(ev.Kind), fields...)
}
