// Package queue is the persistent gateway message queue. Messages are
// numbered by a monotonically increasing nonce and processed in nonce order;
// messages whose processing fails move to a failed queue from where they can
// be retried by hand.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/metrics"
	"github.com/rony4d/lp-gateway/store"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNoProcessor     = errors.New("queue has no processor")
	ErrMessageInFlight = errors.New("message is being processed")
)

// Processor executes one queued message. Inbound messages are processed
// inside the queue's unit of work, where an error rolls back every effect of
// the attempt. Outbound messages are processed outside of it and must not
// touch the store.
type Processor interface {
	Process(msg inter.GatewayMessage) error
}

// Config of the background service loop.
type Config struct {
	ServiceInterval time.Duration
	// BatchSize bounds the messages processed per service round.
	BatchSize int
}

// DefaultConfig returns the default queue config.
func DefaultConfig() Config {
	return Config{
		ServiceInterval: time.Second,
		BatchSize:       64,
	}
}

// MessageSubmitted is emitted when a message is queued.
type MessageSubmitted struct {
	Nonce   uint64
	Message inter.GatewayMessage
}

// MessageExecuted is emitted after each processing attempt. Err is empty on
// success.
type MessageExecuted struct {
	Nonce   uint64
	Message inter.GatewayMessage
	Err     string
}

// Queue is the gateway message queue.
type Queue struct {
	cfg       Config
	store     *store.Store
	processor Processor

	inflightMu sync.Mutex
	inflight   map[uint64]struct{}

	submittedFeed event.Feed
	executedFeed  event.Feed

	Log *logrus.Entry
}

// New creates a queue over s. A processor must be set before messages are
// processed.
func New(cfg Config, s *store.Store) *Queue {
	return &Queue{
		cfg:      cfg,
		store:    s,
		inflight: make(map[uint64]struct{}),
		Log:      logger.New("queue"),
	}
}

// SetProcessor sets the processor of queued messages.
func (q *Queue) SetProcessor(p Processor) {
	q.processor = p
}

// Enqueue stores msg under the next nonce. It must run inside a store unit of
// work.
func (q *Queue) Enqueue(msg inter.GatewayMessage) (uint64, error) {
	if msg.Kind != inter.Inbound && msg.Kind != inter.Outbound {
		return 0, fmt.Errorf("cannot queue %s message", msg.Kind)
	}
	nonce := q.store.NextNonce()
	q.store.SetQueued(nonce, msg)
	q.store.OnCommit(func() {
		q.submittedFeed.Send(MessageSubmitted{Nonce: nonce, Message: msg})
	})
	return nonce, nil
}

// Submit queues msg as a unit of work of its own.
func (q *Queue) Submit(msg inter.GatewayMessage) (nonce uint64, err error) {
	err = q.store.Atomic(func() (err error) {
		nonce, err = q.Enqueue(msg)
		return err
	})
	return nonce, err
}

// ProcessMessage processes the pending message with the given nonce. A
// processing error moves it to the failed queue and is returned.
//
// Inbound messages are processed and removed in one unit of work. Outbound
// messages leave the node, so they are sent without holding the store and
// removed afterwards; a nonce is processed by one caller at a time.
func (q *Queue) ProcessMessage(nonce uint64) error {
	if q.processor == nil {
		return ErrNoProcessor
	}
	if !q.claim(nonce) {
		return fmt.Errorf("%w: nonce %d", ErrMessageInFlight, nonce)
	}
	defer q.unclaim(nonce)

	var (
		msg   inter.GatewayMessage
		found bool
	)
	q.store.View(func() {
		msg, found = q.store.GetQueued(nonce)
	})
	if !found {
		return fmt.Errorf("%w: nonce %d", ErrMessageNotFound, nonce)
	}

	start := time.Now()
	err := q.process(msg, func() { q.store.DeleteQueued(nonce) })
	q.executed(nonce, msg, err, time.Since(start))
	if err == nil {
		return nil
	}

	if moveErr := q.store.Atomic(func() error {
		q.store.DeleteQueued(nonce)
		q.store.SetFailed(nonce, store.FailedMessage{Message: msg, Error: err.Error()})
		return nil
	}); moveErr != nil {
		q.Log.WithError(moveErr).WithField("nonce", nonce).Error("Failed to move message to failed queue")
	}
	return err
}

// ProcessFailedMessage retries a failed message. It leaves the failed queue
// only on success.
func (q *Queue) ProcessFailedMessage(nonce uint64) error {
	if q.processor == nil {
		return ErrNoProcessor
	}
	if !q.claim(nonce) {
		return fmt.Errorf("%w: nonce %d", ErrMessageInFlight, nonce)
	}
	defer q.unclaim(nonce)

	var (
		failed store.FailedMessage
		found  bool
	)
	q.store.View(func() {
		failed, found = q.store.GetFailed(nonce)
	})
	if !found {
		return fmt.Errorf("%w: nonce %d", ErrMessageNotFound, nonce)
	}

	start := time.Now()
	err := q.process(failed.Message, func() { q.store.DeleteFailed(nonce) })
	q.executed(nonce, failed.Message, err, time.Since(start))
	return err
}

// process runs the processor on msg and applies remove once it succeeded.
func (q *Queue) process(msg inter.GatewayMessage, remove func()) error {
	if msg.Kind == inter.Outbound {
		if err := q.processor.Process(msg); err != nil {
			return err
		}
		return q.store.Atomic(func() error {
			remove()
			return nil
		})
	}
	return q.store.Atomic(func() error {
		if err := q.processor.Process(msg); err != nil {
			return err
		}
		remove()
		return nil
	})
}

func (q *Queue) claim(nonce uint64) bool {
	q.inflightMu.Lock()
	defer q.inflightMu.Unlock()
	if _, ok := q.inflight[nonce]; ok {
		return false
	}
	q.inflight[nonce] = struct{}{}
	return true
}

func (q *Queue) unclaim(nonce uint64) {
	q.inflightMu.Lock()
	defer q.inflightMu.Unlock()
	delete(q.inflight, nonce)
}

func (q *Queue) executed(nonce uint64, msg inter.GatewayMessage, err error, took time.Duration) {
	metrics.RecordQueueProcessed(msg.Kind.String(), err == nil, took)

	ev := MessageExecuted{Nonce: nonce, Message: msg}
	log := q.Log.WithFields(logrus.Fields{
		"nonce":  nonce,
		"kind":   msg.Kind.String(),
		"router": msg.Router.String(),
		"took":   took,
	})
	if err != nil {
		ev.Err = err.Error()
		log.WithError(err).Warn("Message execution failed")
	} else {
		log.Debug("Message executed")
	}
	q.executedFeed.Send(ev)
}

// Service processes up to max pending messages in nonce order and returns
// how many were attempted.
func (q *Queue) Service(max int) int {
	if max <= 0 {
		return 0
	}
	var nonces []uint64
	q.store.View(func() {
		q.store.ForEachQueued(func(nonce uint64, _ inter.GatewayMessage) bool {
			nonces = append(nonces, nonce)
			return len(nonces) < max
		})
	})

	for _, nonce := range nonces {
		_ = q.ProcessMessage(nonce)
	}
	return len(nonces)
}

// Run services the queue every ServiceInterval until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.cfg.ServiceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := q.Service(q.cfg.BatchSize); n > 0 {
				q.Log.WithField("messages", n).Debug("Queue serviced")
			}
		}
	}
}

// Pending returns up to max pending messages keyed by nonce.
func (q *Queue) Pending(max int) map[uint64]inter.GatewayMessage {
	res := make(map[uint64]inter.GatewayMessage)
	if max <= 0 {
		return res
	}
	q.store.View(func() {
		q.store.ForEachQueued(func(nonce uint64, msg inter.GatewayMessage) bool {
			res[nonce] = msg
			return len(res) < max
		})
	})
	return res
}

// Failed returns up to max failed messages.
func (q *Queue) Failed(max int) map[uint64]store.FailedMessage {
	res := make(map[uint64]store.FailedMessage)
	if max <= 0 {
		return res
	}
	q.store.View(func() {
		q.store.ForEachFailed(func(nonce uint64, msg store.FailedMessage) bool {
			res[nonce] = msg
			return len(res) < max
		})
	})
	return res
}

// SubscribeMessageSubmitted registers ch for MessageSubmitted events.
func (q *Queue) SubscribeMessageSubmitted(ch chan<- MessageSubmitted) event.Subscription {
	return q.submittedFeed.Subscribe(ch)
}

// SubscribeMessageExecuted registers ch for MessageExecuted events.
func (q *Queue) SubscribeMessageExecuted(ch chan<- MessageExecuted) event.Subscription {
	return q.executedFeed.Subscribe(ch)
}
