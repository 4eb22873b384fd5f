package input

import (
	"errors"
	"testing"

	"voicescroll/internal/config"
	"voicescroll/internal/logging"
)

func TestDryRunRecordsEvents(t *testing.T) {
	d := NewDryRun(logging.NewTestLogger())
	if err := d.Scroll(-500); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if err := d.Click(10, 20); err != nil {
		t.Fatalf("click: %v", err)
	}
	got := d.Events()
	want := []Event{{Kind: "scroll", Amount: -500}, {Kind: "click", X: 10, Y: 20}}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v want %+v", i, got[i], want[i])
		}
	}
	if w, h := d.ScreenSize(); w != 1920 || h != 1080 {
		t.Fatalf("screen = %dx%d", w, h)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg, _ := config.Default()
	logger := logging.NewTestLogger()

	d, err := New(cfg, logger, true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := d.(*DryRun); !ok {
		t.Fatalf("--dry-run should select DryRun, got %T", d)
	}

	cfg.Input.Backend = "dryrun"
	if d, _ := New(cfg, logger, false); d == nil {
		t.Fatalf("dryrun backend missing")
	}

	cfg.Input.Backend = "xdotool"
	if _, err := New(cfg, logger, false); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

type fakeMouse struct {
	x, y    int
	scrolls []int
	clicks  [][2]int
}

func (m *fakeMouse) Scroll(amount int) { m.scrolls = append(m.scrolls, amount) }
func (m *fakeMouse) MoveClick(x, y int) { m.clicks = append(m.clicks, [2]int{x, y}) }
func (m *fakeMouse) Location() (int, int) { return m.x, m.y }
func (m *fakeMouse) ScreenSize() (int, int) { return 800, 600 }

func TestRobotFailSafe(t *testing.T) {
	m := &fakeMouse{}
	r := &Robot{failSafe: true, m: m}
	if err := r.Scroll(-1); !errors.Is(err, ErrFailSafe) {
		t.Fatalf("scroll err = %v, want ErrFailSafe", err)
	}
	if err := r.Click(5, 5); !errors.Is(err, ErrFailSafe) {
		t.Fatalf("click err = %v, want ErrFailSafe", err)
	}
	if len(m.scrolls) != 0 || len(m.clicks) != 0 {
		t.Fatalf("events reached the mouse: %+v", m)
	}
}

func TestRobotForwardsEventsAwayFromCorner(t *testing.T) {
	m := &fakeMouse{x: 100, y: 100}
	r := &Robot{failSafe: true, m: m}
	if err := r.Scroll(-500); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if err := r.Click(40, 50); err != nil {
		t.Fatalf("click: %v", err)
	}
	if len(m.scrolls) != 1 || m.scrolls[0] != -500 {
		t.Fatalf("scrolls = %v", m.scrolls)
	}
	if len(m.clicks) != 1 || m.clicks[0] != [2]int{40, 50} {
		t.Fatalf("clicks = %v", m.clicks)
	}
	if w, h := r.ScreenSize(); w != 800 || h != 600 {
		t.Fatalf("screen = %dx%d", w, h)
	}

	m.x, m.y = 0, 0
	r.failSafe = false
	if err := r.Scroll(1); err != nil {
		t.Fatalf("failsafe disabled: %v", err)
	}
}
