package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// PaymentStats counts what happened to checkouts and notifications since start.
type PaymentStats struct {
	Checkouts     Counter
	Notifications Counter
	Unrecognized  Counter
	Duplicates    Counter
	Incomplete    Counter
	Confirmed     Counter
	Rejected      Counter
	Failed        Counter
	ackNanos      Counter
	acks          Counter
}

// ObserveAck records the wall time of one verification round trip.
func (s *PaymentStats) ObserveAck(d time.Duration) {
	s.ackNanos.Add(uint64(d.Nanoseconds()))
	s.acks.Inc()
}

// Snapshot is the JSON shape served on /metrics.
type Snapshot struct {
	Checkouts     uint64  `json:"checkouts"`
	Notifications uint64  `json:"notifications"`
	Unrecognized  uint64  `json:"unrecognized"`
	Duplicates    uint64  `json:"duplicates"`
	Incomplete    uint64  `json:"incomplete"`
	Confirmed     uint64  `json:"confirmed"`
	Rejected      uint64  `json:"rejected"`
	Failed        uint64  `json:"failed"`
	AvgAckMillis  float64 `json:"avg_ack_ms"`
}

func (s *PaymentStats) Snapshot() Snapshot {
	snap := Snapshot{
		Checkouts:     s.Checkouts.Load(),
		Notifications: s.Notifications.Load(),
		Unrecognized:  s.Unrecognized.Load(),
		Duplicates:    s.Duplicates.Load(),
		Incomplete:    s.Incomplete.Load(),
		Confirmed:     s.Confirmed.Load(),
		Rejected:      s.Rejected.Load(),
		Failed:        s.Failed.Load(),
	}
	if n := s.acks.Load(); n > 0 {
		snap.AvgAckMillis = float64(s.ackNanos.Load()) / float64(n) / float64(time.Millisecond)
	}
	return snap
}
