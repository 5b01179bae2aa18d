package state

import (
	"log/slog"
	"slices"
)

// DefaultOutboxLimit bounds each outbound queue.
const DefaultOutboxLimit = 10000

// Outbox buffers local edits between flushes. Each queue holds at most
// limit elements; when full the oldest entries are dropped. Everything
// queued is a private copy.
type Outbox struct {
	additions []Element
	erasures  []Element
	limit     int
	dropped   int
	log       *slog.Logger
}

// NewOutbox returns an empty outbox. A limit of zero or less means
// unbounded.
func NewOutbox(limit int, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{limit: limit, log: logger.With("component", "outbox")}
}

// QueueAddition queues a finished local stroke.
func (o *Outbox) QueueAddition(e Element) {
	o.additions = o.trim("additions", append(o.additions, e.Clone()))
}

// QueueErasure queues the pre-erasure copy of an erased stroke. When the
// stroke has not been sent yet the two cancel out and nothing is queued.
func (o *Outbox) QueueErasure(e Element) {
	if e.ID != "" {
		i := slices.IndexFunc(o.additions, func(a Element) bool { return a.ID == e.ID })
		if i >= 0 {
			o.additions = slices.Delete(o.additions, i, i+1)
			return
		}
	}
	o.erasures = o.trim("erasures", append(o.erasures, e.Clone()))
}

// TakeAdditions empties the additions queue and returns its contents.
func (o *Outbox) TakeAdditions() []Element {
	out := o.additions
	o.additions = nil
	return out
}

// TakeErasures empties the erasures queue and returns its contents.
func (o *Outbox) TakeErasures() []Element {
	out := o.erasures
	o.erasures = nil
	return out
}

// Requeue puts back batches that could not be sent, ahead of anything
// queued since they were taken.
func (o *Outbox) Requeue(additions, erasures []Element) {
	if len(additions) > 0 {
		o.additions = o.trim("additions", append(slices.Clone(additions), o.additions...))
	}
	if len(erasures) > 0 {
		o.erasures = o.trim("erasures", append(slices.Clone(erasures), o.erasures...))
	}
}

// Len returns the sizes of the additions and erasures queues.
func (o *Outbox) Len() (additions, erasures int) {
	return len(o.additions), len(o.erasures)
}

// Empty reports whether nothing is waiting to be sent.
func (o *Outbox) Empty() bool {
	return len(o.additions) == 0 && len(o.erasures) == 0
}

// Dropped returns how many elements have been discarded to respect the
// limit since the outbox was created.
func (o *Outbox) Dropped() int { return o.dropped }

func (o *Outbox) trim(queue string, q []Element) []Element {
	if o.limit <= 0 || len(q) <= o.limit {
		return q
	}
	n := len(q) - o.limit
	o.dropped += n
	o.log.Warn("outbound queue full, dropping oldest", "queue", queue, "dropped", n, "limit", o.limit)
	return slices.Delete(q, 0, n)
}
