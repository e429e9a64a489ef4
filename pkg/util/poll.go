package util

import (
	"time"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

const (
	DefaultPollAttempts = 10
	DefaultPollInterval = time.Second
)

type PollResult int

const (
	Ready PollResult = iota
	TimedOut
)

func (r PollResult) String() string {
	switch r {
	case Ready:
		return "Ready"
	case TimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Poller is a bounded-retry wait loop. It never calls check more than
// Attempts times.
type Poller struct {
	Attempts int
	Interval time.Duration
	Clock    clock.Clock
}

func DefaultPoller() *Poller {
	return NewPoller(DefaultPollAttempts, DefaultPollInterval, clock.RealClock{})
}

func NewPoller(attempts int, interval time.Duration, clk clock.Clock) *Poller {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Poller{Attempts: attempts, Interval: interval, Clock: clk}
}

// Until polls check until it reports true or the attempt budget runs out.
//
// If attempt is not nil it runs before every check and is followed by one
// Interval of settle time. A failing attempt is logged and still consumes
// the try. Without an attempt the poller sleeps Interval between failed
// checks.
func (p *Poller) Until(check func() bool, attempt func() error) PollResult {
	for try := 1; try <= p.Attempts; try++ {
		if attempt != nil {
			if err := attempt(); err != nil {
				klog.V(2).Infof("poll attempt %d/%d failed: %v", try, p.Attempts, err)
			}
			p.Clock.Sleep(p.Interval)
		}
		if check() {
			klog.V(4).Infof("poll ready after %d/%d tries", try, p.Attempts)
			return Ready
		}
		if attempt == nil && try < p.Attempts {
			p.Clock.Sleep(p.Interval)
		}
	}
	return TimedOut
}
