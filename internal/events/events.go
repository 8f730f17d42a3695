// Package events publishes change notifications to external sinks.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/faciam-dev/crudkit/internal/logger"
)

// SettingUpdated is emitted after a setting is stored. Data is a
// SettingChange.
const SettingUpdated = "settings.updated"

// Event represents a notification payload.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
	ID   string    `json:"id"`
}

// SettingChange is the payload of SettingUpdated.
type SettingChange struct {
	Key  string `json:"key"`
	User string `json:"user,omitempty"`
}

// New stamps an event with an ID and the current time.
func New(name string, data any) Event {
	return Event{Name: name, Time: time.Now().UTC(), Data: data, ID: uuid.NewString()}
}

// Encode is the wire form every sink delivers.
func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: encode %s: %w", e.Name, err)
	}
	return b, nil
}

// DecodeSettingChange reads a published event. ok is false when the event is
// not a SettingUpdated.
func DecodeSettingChange(payload []byte) (change SettingChange, ok bool, err error) {
	var e struct {
		Name string          `json:"name"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &e); err != nil {
		return SettingChange{}, false, fmt.Errorf("events: decode: %w", err)
	}
	if e.Name != SettingUpdated {
		return SettingChange{}, false, nil
	}
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, &change); err != nil {
			return SettingChange{}, false, fmt.Errorf("events: decode %s: %w", e.Name, err)
		}
	}
	return change, true, nil
}

// Sink publishes events.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// Dispatcher broadcasts events to multiple sinks with retries.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	wg           sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Nil sinks are skipped.
func NewDispatcher(retry RetryConfig, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second}
	if retry.MaxAttempts > 0 {
		d.maxAttempts = retry.MaxAttempts
	}
	if retry.InitialDelay > 0 {
		d.initialDelay = retry.InitialDelay
	}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// Dispatch sends the event to all sinks asynchronously. A nil dispatcher
// drops the event.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	if d == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, s := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			d.retrySend(ctx, s, e)
		}(s)
	}
}

// Wait blocks until every dispatched event was delivered or given up on.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

func (d *Dispatcher) retrySend(ctx context.Context, s Sink, e Event) {
	delay := d.initialDelay
	var err error
	for i := 1; i <= d.maxAttempts; i++ {
		if err = s.Emit(ctx, e); err == nil {
			return
		}
		if i < d.maxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	logger.L.Warn("event dropped", "event", e.Name, "id", e.ID, "attempts", d.maxAttempts, "err", err)
}
