//go:build !headless

package input

import "github.com/go-vgo/robotgo"

type robotgoMouse struct{}

func newDesktopMouse() (mouse, error) { return robotgoMouse{}, nil }

func (robotgoMouse) Scroll(amount int) { robotgo.Scroll(0, amount) }

func (robotgoMouse) MoveClick(x, y int) {
	robotgo.Move(x, y)
	robotgo.Click("left")
}

func (robotgoMouse) Location() (int, int) { return robotgo.Location() }

func (robotgoMouse) ScreenSize() (int, int) { return robotgo.GetScreenSize() }
