//go:build headless

package input

import "errors"

func newDesktopMouse() (mouse, error) {
	return nil, errors.New("robotgo input not built (built with -tags headless); use --dry-run or input.backend = \"dryrun\"")
}
