// Package input issues synthetic mouse events against the focused window.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voicescroll/internal/config"

	"github.com/sirupsen/logrus"
)

// ErrFailSafe is returned when the cursor sits in the top-left corner. Moving
// the mouse there aborts automation.
var ErrFailSafe = errors.New("input failsafe triggered: cursor at screen corner (0,0)")

// Driver issues input events. Positive scroll amounts scroll up, negative down.
type Driver interface {
	Scroll(amount int) error
	Click(x, y int) error
	ScreenSize() (int, int)
}

// New returns the driver named by cfg.Input.Backend; dryRun forces the
// logging driver.
func New(cfg *config.Config, logger *logrus.Logger, dryRun bool) (Driver, error) {
	pause := time.Duration(cfg.Input.PauseSec * float64(time.Second))
	backend := strings.ToLower(strings.TrimSpace(cfg.Input.Backend))
	if dryRun {
		backend = "dryrun"
	}
	switch backend {
	case "", "robotgo":
		r, err := NewRobot(pause, cfg.Input.FailSafe)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "dryrun":
		return NewDryRun(logger), nil
	default:
		return nil, fmt.Errorf("unknown input.backend %q (want robotgo or dryrun)", cfg.Input.Backend)
	}
}
