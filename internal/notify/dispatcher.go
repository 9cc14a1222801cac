package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	enqueueTimeout = 2 * time.Second
	sendTimeout    = 30 * time.Second
	popRetryDelay  = time.Second
)

type Options struct {
	Workers    int
	AdminEmail string // copied on every notification when set
	AppURL     string
	Channels   []Channel
	// DrainTimeout bounds delivery of still-buffered notifications
	// after Run's context is cancelled.
	DrainTimeout time.Duration
}

type Dispatcher struct {
	queue  Queue
	mailer Mailer
	opts   Options
	log    zerolog.Logger
	now    func() time.Time

	stop context.CancelFunc
	done chan struct{}
}

func NewDispatcher(q Queue, m Mailer, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 10 * time.Second
	}
	return &Dispatcher{
		queue:  q,
		mailer: m,
		opts:   opts,
		log:    log.With().Str("component", "notify").Logger(),
		now:    time.Now,
	}
}

// Notify enqueues n and returns. It never fails the caller: a full or
// unreachable queue is logged and the notification dropped.
func (d *Dispatcher) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = d.now()
	}
	n.Recipients = Recipients(append(append([]string(nil), n.Recipients...), d.opts.AdminEmail)...)

	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()
	if err := d.queue.Push(ctx, n); err != nil {
		d.log.Warn().Err(err).
			Str("event", string(n.Event)).
			Str("ticket", n.Ticket.Code).
			Msg("notification dropped")
		return
	}
	d.log.Debug().Str("event", string(n.Event)).Str("ticket", n.Ticket.Code).Msg("notification queued")
}

// Run starts the workers and blocks until ctx is cancelled and every
// worker has returned. Notifications still buffered in an in-memory
// queue are then delivered within Options.DrainTimeout.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.worker(ctx, id)
		}(i)
	}
	wg.Wait()

	dr, ok := d.queue.(interface{ Drain() []Notification })
	if !ok {
		return
	}
	pending := dr.Drain()
	if len(pending) == 0 {
		return
	}
	d.log.Info().Int("pending", len(pending)).Msg("draining notifications")
	dctx, cancel := context.WithTimeout(context.Background(), d.opts.DrainTimeout)
	defer cancel()
	for _, n := range pending {
		if dctx.Err() != nil {
			d.log.Warn().Msg("drain timeout; remaining notifications dropped")
			return
		}
		d.Deliver(dctx, n)
	}
}

// Start runs the dispatcher in the background until Stop.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.stop = cancel
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		d.Run(ctx)
	}()
}

// Stop cancels the workers and waits at most timeout for in-flight and
// buffered deliveries. It reports whether they finished in time; when
// they did not, the remaining sends are abandoned to process exit.
func (d *Dispatcher) Stop(timeout time.Duration) bool {
	if d.stop == nil {
		return true
	}
	d.stop()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-d.done:
		return true
	case <-t.C:
		d.log.Warn().Dur("timeout", timeout).Msg("notification workers still busy; giving up")
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	l := d.log.With().Int("worker", id).Logger()
	for {
		n, err := d.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.Error().Err(err).Msg("queue pop failed")
			select {
			case <-time.After(popRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}
		d.Deliver(context.WithoutCancel(ctx), n)
	}
}

// Deliver renders n and sends it to every recipient, then to every
// channel. Each attempt is independent; errors are logged only.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification) {
	l := d.log.With().Str("event", string(n.Event)).Str("ticket", n.Ticket.Code).Logger()

	msg, err := Render(n, d.opts.AppURL)
	if err != nil {
		l.Error().Err(err).Msg("render failed")
		return
	}

	for _, to := range n.Recipients {
		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := d.mailer.Send(sctx, to, msg)
		cancel()
		if err != nil {
			l.Error().Err(err).Str("to", to).Msg("email send failed")
			continue
		}
		l.Debug().Str("to", to).Msg("email sent")
	}

	for _, ch := range d.opts.Channels {
		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := ch.Publish(sctx, n, msg)
		cancel()
		if err != nil {
			l.Error().Err(err).Str("channel", ch.Name()).Msg("channel publish failed")
		}
	}
}

// Recipients merges addresses, dropping blanks and case-insensitive
// duplicates while keeping first-seen order.
func Recipients(addrs ...string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		k := strings.ToLower(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
