package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// EventTypeActionApplied is emitted once per dispatched cart action.
const EventTypeActionApplied = "cart.action_applied"

// There is one process-wide cart, so every event shares this aggregate and
// lands on the same partition.
var cartAggregate = pkgkafka.Aggregate{Type: "cart", ID: "cart"}

const (
	sourceService  = "storefront"
	publishTimeout = 5 * time.Second
	queueSize      = 1024
)

// ActionAppliedData is the payload of a cart.action_applied event. Action is
// the same envelope accepted by the cart actions endpoint. Events are
// published in the order the store applied them, so a consumer can replay
// the stream to rebuild the cart.
type ActionAppliedData struct {
	Action    json.RawMessage `json:"action"`
	Lines     int             `json:"lines"`
	ItemCount int             `json:"item_count"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NoopPublisher drops every event. It stands in when no brokers are set.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// Producer publishes cart domain events. Events handed over by Listener are
// queued and published one at a time by a background worker, so they reach
// the publisher in the order the store applied them.
type Producer struct {
	publisher Publisher
	topic     string
	logger    *slog.Logger

	mu      sync.RWMutex
	queue   chan queuedAction
	done    chan struct{}
	started bool
	closed  bool
}

type queuedAction struct {
	ctx    context.Context
	action cart.Action
	state  domain.CartState
}

// NewProducer creates a cart event producer writing to topic. Call Start
// before dispatching to a store the producer listens on.
func NewProducer(publisher Publisher, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		queue:     make(chan queuedAction, queueSize),
		done:      make(chan struct{}),
	}
}

// Start launches the worker that drains the event queue.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	go func() {
		defer close(p.done)
		for item := range p.queue {
			p.publish(item)
		}
	}()
}

// Close stops accepting events and waits until the queued ones have been
// published or ctx expires.
func (p *Producer) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain cart events: %w", ctx.Err())
	}
}

// PublishActionApplied publishes a cart.action_applied event for action and
// the state it produced.
func (p *Producer) PublishActionApplied(ctx context.Context, action cart.Action, state domain.CartState) error {
	envelope, err := cart.EncodeAction(action)
	if err != nil {
		return fmt.Errorf("encode %s: %w", action.Type(), err)
	}

	data := ActionAppliedData{
		Action:    envelope,
		Lines:     len(state.Items),
		ItemCount: state.ItemCount(),
	}

	event, err := pkgkafka.NewEvent(EventTypeActionApplied, cartAggregate, sourceService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", EventTypeActionApplied, err)
	}
	event.WithMetadata("action_type", action.Type())
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, p.topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", EventTypeActionApplied, err)
	}
	return nil
}

// Listener returns a cart.Listener that queues every applied action for
// publishing. It only blocks while the queue is full. Failures are logged
// and never reach the cart.
func (p *Producer) Listener() cart.Listener {
	return func(ctx context.Context, action cart.Action, state domain.CartState) {
		p.mu.RLock()
		defer p.mu.RUnlock()

		if p.closed {
			p.logger.WarnContext(ctx, "cart event dropped, producer closed",
				slog.String("action", action.Type()),
			)
			return
		}
		p.queue <- queuedAction{ctx: context.WithoutCancel(ctx), action: action, state: state}
	}
}

// publish sends one queued action. The publish outlives a canceled request
// context but is bounded by its own timeout.
func (p *Producer) publish(item queuedAction) {
	ctx, cancel := context.WithTimeout(item.ctx, publishTimeout)
	defer cancel()

	if err := p.PublishActionApplied(ctx, item.action, item.state); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart event",
			slog.String("action", item.action.Type()),
			slog.String("error", err.Error()),
		)
	}
}
