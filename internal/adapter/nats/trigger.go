// Package nats lets operators request an immediate hotspot generation cycle
// over NATS request/reply.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Runner executes one generation cycle.
type Runner interface {
	RunOnce(ctx context.Context) (domain.Generation, error)
}

// Reply is the JSON body sent back to the requester.
type Reply struct {
	Status       string `json:"status"`
	GenerationID string `json:"generation_id,omitempty"`
	Hotspots     int    `json:"hotspots"`
	Error        string `json:"error,omitempty"`
}

const (
	StatusOK     = "ok"
	StatusBusy   = "busy"
	StatusFailed = "failed"
)

const defaultTimeout = 5 * time.Minute

// Trigger subscribes to a subject and runs a cycle for each request.
type Trigger struct {
	nc      *natsgo.Conn
	subject string
	runner  Runner
	busy    error
	timeout time.Duration
	logger  *slog.Logger
	sub     *natsgo.Subscription
}

// NewTrigger creates a trigger on subject. busy is the error the runner
// returns when a cycle is already running; it is answered as StatusBusy.
func NewTrigger(nc *natsgo.Conn, subject string, runner Runner, busy error, logger *slog.Logger) *Trigger {
	return &Trigger{
		nc:      nc,
		subject: subject,
		runner:  runner,
		busy:    busy,
		timeout: defaultTimeout,
		logger:  logger,
	}
}

// Connect dials the NATS server at url.
func Connect(url string, logger *slog.Logger) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name("hotspot-engine"),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// Start subscribes. Requests are handled one at a time on the subscription's
// goroutine.
func (t *Trigger) Start() error {
	sub, err := t.nc.Subscribe(t.subject, t.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", t.subject, err)
	}
	t.sub = sub
	t.logger.Info("nats trigger listening", "subject", t.subject)
	return nil
}

// Stop drains the subscription so an in-flight request is answered.
func (t *Trigger) Stop() error {
	if t.sub == nil {
		return nil
	}
	return t.sub.Drain()
}

func (t *Trigger) handle(msg *natsgo.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	reply := t.run(ctx)
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		t.logger.Error("encode trigger reply failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		t.logger.Warn("respond to trigger failed", "error", err)
	}
}

func (t *Trigger) run(ctx context.Context) Reply {
	t.logger.Info("on-demand hotspot generation requested", "subject", t.subject)
	gen, err := t.runner.RunOnce(ctx)
	switch {
	case err == nil:
		return Reply{Status: StatusOK, GenerationID: gen.ID, Hotspots: len(gen.Hotspots)}
	case t.busy != nil && errors.Is(err, t.busy):
		return Reply{Status: StatusBusy, Error: err.Error()}
	default:
		return Reply{Status: StatusFailed, Error: err.Error()}
	}
}
