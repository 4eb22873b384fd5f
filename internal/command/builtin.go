package command

import (
	"context"
	"fmt"
	"time"

	"voicescroll/internal/config"
	"voicescroll/internal/hook"
	"voicescroll/internal/input"

	"github.com/sirupsen/logrus"
)

// Action names.
const (
	ScrollDown = "scroll_down"
	ScrollUp   = "scroll_up"
	Like       = "like"
	Stop       = "stop"
	Shell      = "shell"
)

// Actions carries what the built-in actions operate on.
type Actions struct {
	Driver       input.Driver
	Session      *Session
	ScrollAmount int
	LikeX, LikeY int // both zero: centre of the screen
}

// Builtins returns the fixed command table in declaration order.
func (a Actions) Builtins() []Entry {
	down := func(context.Context, string) error { return a.Driver.Scroll(-a.ScrollAmount) }
	up := func(context.Context, string) error { return a.Driver.Scroll(a.ScrollAmount) }
	stop := func(context.Context, string) error {
		a.Session.Stop()
		return nil
	}
	return []Entry{
		{Phrase: "scroll", Name: ScrollDown, Action: down},
		{Phrase: "down", Name: ScrollDown, Action: down},
		{Phrase: "scroll down", Name: ScrollDown, Action: down},
		{Phrase: "up", Name: ScrollUp, Action: up},
		{Phrase: "scroll up", Name: ScrollUp, Action: up},
		{Phrase: "like", Name: Like, Action: a.like},
		{Phrase: "stop", Name: Stop, Action: stop},
		{Phrase: "quit", Name: Stop, Action: stop},
		{Phrase: "exit", Name: Stop, Action: stop},
	}
}

// like double-clicks the like target. The driver sleeps its inter-event
// pause after each click.
func (a Actions) like(_ context.Context, _ string) error {
	x, y := a.LikeX, a.LikeY
	if x == 0 && y == 0 {
		w, h := a.Driver.ScreenSize()
		x, y = w/2, h/2
	}
	if err := a.Driver.Click(x, y); err != nil {
		return err
	}
	return a.Driver.Click(x, y)
}

// Configured turns [[commands]] entries into shell entries.
func Configured(cmds []config.CommandConfig, logger *logrus.Logger) ([]Entry, error) {
	out := make([]Entry, 0, len(cmds))
	for _, c := range cmds {
		r, err := hook.NewRunner(c, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Phrase: c.Phrase,
			Name:   Shell,
			Action: func(ctx context.Context, text string) error {
				return r.Run(ctx, hook.Job{Text: text, Timestamp: time.Now()})
			},
		})
	}
	return out, nil
}

// Build assembles the table from the built-ins followed by cfg.Commands.
func Build(cfg *config.Config, drv input.Driver, session *Session, logger *logrus.Logger) (*Table, error) {
	acts := Actions{
		Driver:       drv,
		Session:      session,
		ScrollAmount: cfg.Input.ScrollAmount,
		LikeX:        cfg.Input.LikeX,
		LikeY:        cfg.Input.LikeY,
	}
	custom, err := Configured(cfg.Commands, logger)
	if err != nil {
		return nil, err
	}
	var opts []TableOption
	if cfg.Match.Phonetic {
		opts = append(opts, WithPhonetic(cfg.Match.PhoneticThreshold))
	}
	t, err := NewTable(append(acts.Builtins(), custom...), opts...)
	if err != nil {
		return nil, fmt.Errorf("build command table: %w", err)
	}
	return t, nil
}
