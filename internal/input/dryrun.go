package input

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Event records one call made against a DryRun driver.
type Event struct {
	Kind   string // scroll or click
	Amount int
	X, Y   int
}

// DryRun logs events instead of performing them.
type DryRun struct {
	logger *logrus.Logger

	mu     sync.Mutex
	events []Event
}

const dryRunWidth, dryRunHeight = 1920, 1080

// NewDryRun returns a driver that only logs.
func NewDryRun(logger *logrus.Logger) *DryRun {
	return &DryRun{logger: logger}
}

// Scroll implements Driver.
func (d *DryRun) Scroll(amount int) error {
	d.record(Event{Kind: "scroll", Amount: amount})
	d.logger.WithField("amount", amount).Info("dry-run: scroll")
	return nil
}

// Click implements Driver.
func (d *DryRun) Click(x, y int) error {
	d.record(Event{Kind: "click", X: x, Y: y})
	d.logger.WithFields(logrus.Fields{"x": x, "y": y}).Info("dry-run: click")
	return nil
}

// ScreenSize implements Driver with a nominal 1920x1080 screen.
func (d *DryRun) ScreenSize() (int, int) { return dryRunWidth, dryRunHeight }

// Events returns a copy of the recorded events.
func (d *DryRun) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

func (d *DryRun) record(e Event) {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
}
