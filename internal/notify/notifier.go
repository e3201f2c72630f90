// Package notify carries outbound policy events to the off-chain relayer.
// Events are dispatched to every registered sink (Redis, WebSocket stream);
// delivery is best-effort and at-most-once per triggering event; a sink
// failure is logged, never retried, and never fails the swap that caused it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/signer"
)

// Sink is one delivery channel for outbound events.
type Sink interface {
	Publish(ctx context.Context, event string, payload []byte) error
	Name() string
}

// envelope wraps event payloads so consumers can demux a single channel.
// When the gate has a signing key the Data bytes are signed and the
// relayer can verify Signature against Signer before acting.
type envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Signer    string          `json:"signer,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

type Dispatcher struct {
	sinks       []Sink
	eventSigner *signer.Signer // nil = publish unsigned
	logger      *slog.Logger
}

func NewDispatcher(logger *slog.Logger, eventSigner *signer.Signer, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:       sinks,
		eventSigner: eventSigner,
		logger:      logger.With(slog.String("component", "notifier")),
	}
}

func (d *Dispatcher) RelayRequested(ctx context.Context, ev model.RelayRequested) {
	d.publish(ctx, model.EventRelayRequested, ev)
}

func (d *Dispatcher) SwapCompleted(ctx context.Context, ev model.SwapCompleted) {
	d.publish(ctx, model.EventSwapCompleted, ev)
}

func (d *Dispatcher) publish(ctx context.Context, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		d.logger.ErrorContext(ctx, "event marshal failed",
			slog.String("event", event), slog.String("error", err.Error()))
		return
	}
	env := envelope{Event: event, Data: data}
	if d.eventSigner != nil {
		sig, err := d.eventSigner.Sign(data)
		if err != nil {
			// publish unsigned rather than drop the event
			d.logger.ErrorContext(ctx, "event signing failed",
				slog.String("event", event), slog.String("error", err.Error()))
		} else {
			env.Signer = d.eventSigner.Address().Hex()
			env.Signature = sig
		}
	}
	payload, err := json.Marshal(env)
	if err != nil {
		d.logger.ErrorContext(ctx, "envelope marshal failed",
			slog.String("event", event), slog.String("error", err.Error()))
		return
	}

	for _, s := range d.sinks {
		if err := s.Publish(ctx, event, payload); err != nil {
			d.logger.ErrorContext(ctx, "sink publish failed",
				slog.String("sink", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()))
		} else {
			d.logger.DebugContext(ctx, "event published",
				slog.String("sink", s.Name()),
				slog.String("event", event))
		}
	}
}
