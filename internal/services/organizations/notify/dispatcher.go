// Package notify delivers organization workflow events as email out of band.
package notify

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
	"github.com/louisbranch/orgspace/internal/services/organizations/notify/render"
)

const defaultQueueSize = 64

// Mailer sends one rendered email.
type Mailer interface {
	Send(ctx context.Context, email render.Email) error
}

// LogMailer writes emails to the process log instead of sending them. It is
// the default mailer for local development.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(_ context.Context, email render.Email) error {
	log.Printf("mail to=%s subject=%q", email.To, email.Subject)
	return nil
}

// Dispatcher implements domain.Notifier with a buffered queue and one
// background worker. Notify never blocks the caller: when the queue is full
// the event is dropped and logged. Mail delivery is best effort and never
// feeds back into workflow state.
type Dispatcher struct {
	mailer   Mailer
	renderer *render.Renderer
	locale   string
	tracer   trace.Tracer

	queue     chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

var _ domain.Notifier = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher delivering through the given mailer. A
// nil mailer falls back to LogMailer; queueSize falls back to a default
// when not positive.
func NewDispatcher(mailer Mailer, renderer *render.Renderer, locale string, queueSize int) *Dispatcher {
	if mailer == nil {
		mailer = LogMailer{}
	}
	if renderer == nil {
		renderer = render.NewRenderer("")
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	dispatcher := &Dispatcher{
		mailer:   mailer,
		renderer: renderer,
		locale:   locale,
		tracer:   otel.Tracer("orgspace/notify"),
		queue:    make(chan domain.Event, queueSize),
		done:     make(chan struct{}),
	}
	go dispatcher.run()
	return dispatcher
}

// Notify implements domain.Notifier.
func (d *Dispatcher) Notify(_ context.Context, event domain.Event) {
	select {
	case d.queue <- event:
	default:
		log.Printf("notify queue full, dropping event %s for org %s", event.Name, event.OrganizationID)
	}
}

// Close stops accepting events and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event domain.Event) {
	ctx, span := d.tracer.Start(context.Background(), "notify.deliver",
		trace.WithAttributes(
			attribute.String("event.name", event.Name),
			attribute.String("organization.id", event.OrganizationID),
		))
	defer span.End()

	email, ok := d.renderer.Render(event, d.locale)
	if !ok {
		return
	}
	if err := d.mailer.Send(ctx, email); err != nil {
		log.Printf("send %s mail to %s: %v", event.Name, email.To, err)
	}
}
