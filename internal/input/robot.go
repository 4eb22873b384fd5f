package input

import "time"

// mouse is the desktop pointer robotgo controls.
type mouse interface {
	Scroll(amount int)
	MoveClick(x, y int)
	Location() (int, int)
	ScreenSize() (int, int)
}

// Robot drives the real mouse, refusing events while the cursor sits at the
// failsafe corner.
type Robot struct {
	pause    time.Duration
	failSafe bool
	m        mouse
}

// NewRobot returns a desktop driver that sleeps pause after every event.
func NewRobot(pause time.Duration, failSafe bool) (*Robot, error) {
	m, err := newDesktopMouse()
	if err != nil {
		return nil, err
	}
	return &Robot{pause: pause, failSafe: failSafe, m: m}, nil
}

// Scroll implements Driver.
func (r *Robot) Scroll(amount int) error {
	if err := r.check(); err != nil {
		return err
	}
	r.m.Scroll(amount)
	r.sleep()
	return nil
}

// Click implements Driver.
func (r *Robot) Click(x, y int) error {
	if err := r.check(); err != nil {
		return err
	}
	r.m.MoveClick(x, y)
	r.sleep()
	return nil
}

// ScreenSize implements Driver.
func (r *Robot) ScreenSize() (int, int) {
	return r.m.ScreenSize()
}

func (r *Robot) check() error {
	if !r.failSafe {
		return nil
	}
	if x, y := r.m.Location(); x == 0 && y == 0 {
		return ErrFailSafe
	}
	return nil
}

func (r *Robot) sleep() {
	if r.pause > 0 {
		time.Sleep(r.pause)
	}
}
