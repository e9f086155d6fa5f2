package helpers

import (
	"time"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/internal/markup"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/schedule"
)

const originalTextKey = "original-text"

// Loading toggles the busy state of buttons. Each button owns one fallback
// restore task, so showing twice only extends the fallback.
type Loading struct {
	engine   *markup.Engine
	clock    schedule.Clock
	fallback time.Duration
	label    string
	tasks    map[*html.Node]*schedule.Task
}

// NewLoading returns a toggler restoring buttons after fallback at the latest.
func NewLoading(engine *markup.Engine, clock schedule.Clock, fallback time.Duration, label string) *Loading {
	return &Loading{
		engine:   engine,
		clock:    clock,
		fallback: fallback,
		label:    label,
		tasks:    make(map[*html.Node]*schedule.Task),
	}
}

// Show swaps the button content for a spinner and disables it.
func (l *Loading) Show(button *dom.Element) error {
	if button == nil {
		return nil
	}
	if _, busy := button.Data(originalTextKey); !busy {
		original, err := button.InnerHTML()
		if err != nil {
			return err
		}
		spinner, err := l.engine.Render(markup.TemplateSpinner, map[string]any{"label": l.label})
		if err != nil {
			return err
		}
		button.SetData(originalTextKey, original)
		button.SetInnerHTML(spinner)
		button.SetDisabled(true)
	}
	if l.fallback > 0 {
		l.task(button).Schedule(l.fallback, func() { l.restore(button) })
	}
	return nil
}

// Hide restores a button put in the busy state by Show.
func (l *Loading) Hide(button *dom.Element) {
	if button == nil {
		return
	}
	if task, ok := l.tasks[button.Node()]; ok {
		task.Cancel()
	}
	l.restore(button)
}

// Busy reports whether the button is in the busy state.
func (l *Loading) Busy(button *dom.Element) bool {
	_, ok := button.Data(originalTextKey)
	return ok
}

func (l *Loading) restore(button *dom.Element) {
	original, ok := button.Data(originalTextKey)
	if !ok {
		return
	}
	button.SetInnerHTML(original)
	button.SetDisabled(false)
	button.RemoveData(originalTextKey)
}

func (l *Loading) task(button *dom.Element) *schedule.Task {
	task, ok := l.tasks[button.Node()]
	if !ok {
		task = schedule.NewTask(l.clock)
		l.tasks[button.Node()] = task
	}
	return task
}
