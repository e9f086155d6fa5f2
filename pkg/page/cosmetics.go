package page

import (
	"strconv"
	"time"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/schedule"
)

const (
	hoverLift = "translateY(-3px)"
	hoverRest = "translateY(0)"
)

func (p *Page) initTooltips() {
	for _, el := range p.find(TooltipSelector) {
		if err := p.kit.Tooltip(el); err != nil {
			p.ReportError(err)
		}
	}
}

func (p *Page) initCardAnimations() {
	stagger := p.cfg.Timing.CardStagger.Std()
	for i, card := range p.find(CardSelector) {
		card.SetStyle("animation-delay", seconds(time.Duration(i)*stagger))
		card.AddClass(p.cfg.Markers.FadeIn)
	}

	for _, card := range p.find(ActivityCardSelector) {
		if _, ok := p.hovered[card.Node()]; ok {
			continue
		}
		p.hovered[card.Node()] = struct{}{}
		card.On("mouseenter", func(ev *dom.Event) { ev.Current.SetStyle("transform", hoverLift) })
		card.On("mouseleave", func(ev *dom.Event) { ev.Current.SetStyle("transform", hoverRest) })
	}
}

func (p *Page) initNavigation() {
	links := p.find(NavLinkSelector)

	toggler := p.find(NavTogglerSelector)
	collapse := p.find(NavCollapseSelector)
	if len(toggler) > 0 && len(collapse) > 0 {
		panel := collapse[0]
		for _, link := range links {
			link.On("click", func(*dom.Event) {
				if p.viewport.Width >= p.cfg.Navigation.CollapseBelow {
					return
				}
				if err := p.kit.CollapseHide(panel); err != nil {
					p.ReportError(err)
				}
			})
		}
	}

	if p.currentPath == "" {
		return
	}
	for _, link := range links {
		if href, ok := link.Attr("href"); ok && href == p.currentPath {
			link.AddClass(p.cfg.Markers.Active)
		}
	}
}

func (p *Page) initMobile() {
	if !p.viewport.Touch {
		return
	}
	if body := p.doc.Body(); body != nil {
		body.AddClass(p.cfg.Markers.TouchDevice)
	}
	for _, button := range p.find(ButtonSelector) {
		release := schedule.NewTask(p.clock)
		p.touch[button.Node()] = release
		button.On("touchstart", func(ev *dom.Event) {
			release.Cancel()
			ev.Current.AddClass(p.cfg.Markers.Active)
		})
		button.On("touchend", func(ev *dom.Event) {
			el := ev.Current
			release.Schedule(p.cfg.Timing.TouchRelease.Std(), func() {
				el.RemoveClass(p.cfg.Markers.Active)
			})
		})
	}
}

func (p *Page) hideAlerts() {
	for _, alert := range p.find(AlertSelector) {
		if err := p.kit.CloseAlert(alert); err != nil {
			p.ReportError(err)
		}
	}
}

// Click fires a click event at el.
func (p *Page) Click(el *dom.Element) *dom.Event {
	return p.Dispatch(el, "click")
}

// Touch fires touchstart followed by touchend at el.
func (p *Page) Touch(el *dom.Element) {
	p.loop.Do(func() {
		el.Dispatch("touchstart")
		el.Dispatch("touchend")
	})
}

// Hover fires mouseenter, or mouseleave when enter is false, at el.
func (p *Page) Hover(el *dom.Element, enter bool) {
	eventType := "mouseleave"
	if enter {
		eventType = "mouseenter"
	}
	p.Dispatch(el, eventType)
}

// Resize records the new viewport width. Card animations are recomputed once
// the resizes settle.
func (p *Page) Resize(width int) {
	p.loop.Do(func() {
		p.viewport.Width = width
		p.resize.Schedule(p.cfg.Timing.ResizeDebounce.Std(), p.initCardAnimations)
	})
}

// CancelTimers drops every pending page timer.
func (p *Page) CancelTimers() {
	p.loop.Do(func() {
		p.alerts.Cancel()
		p.resize.Cancel()
		for _, task := range p.touch {
			task.Cancel()
		}
	})
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
