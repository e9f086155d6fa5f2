package page

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/schedule"
	"github.com/goliatone/go-formguard/pkg/testsupport"
	"github.com/goliatone/go-formguard/pkg/toolkit"
)

type recordingSubmitter struct {
	forms  []string
	values []url.Values
	err    error
}

func (s *recordingSubmitter) Submit(_ context.Context, form *dom.Element, values url.Values) error {
	s.forms = append(s.forms, form.ID())
	s.values = append(s.values, values)
	return s.err
}

const activityPage = `<html><body>
<nav class="navbar">
  <button class="navbar-toggler btn" id="toggler">menu</button>
  <div class="navbar-collapse collapse show" id="menu">
    <ul class="navbar-nav">
      <li><a class="nav-link" id="home" href="/">Início</a></li>
      <li><a class="nav-link" id="list" href="/atividades">Atividades</a></li>
    </ul>
  </div>
</nav>
<div class="alert alert-success" id="saved">Atividade salva</div>
<div class="alert alert-warning" id="sticky" data-auto-hide="false">Atenção</div>
<span id="help" data-bs-toggle="tooltip" title="Ajuda">?</span>
<div class="card activity-card" id="c1"></div>
<div class="card" id="c2"></div>
<div class="card" id="c3"></div>
<form id="activity" data-validate>
  <input id="title" name="title" required>
  <textarea id="description" name="description" data-word-limit="5"></textarea>
  <button type="submit" class="btn" id="send">Salvar</button>
</form>
</body></html>`

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fixture struct {
	page  *Page
	doc   *dom.Document
	clock *schedule.ManualClock
	kit   *testsupport.RecordingToolkit
	sub   *recordingSubmitter
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()
	doc := testsupport.ParseDocument(t, activityPage)
	f := &fixture{
		doc:   doc,
		clock: schedule.NewManualClock(),
		kit:   &testsupport.RecordingToolkit{},
		sub:   &recordingSubmitter{},
		logs:  &bytes.Buffer{},
	}
	base := []Option{
		WithClock(f.clock),
		WithToolkit(f.kit),
		WithSubmitter(f.sub),
		WithLogger(newTestLogger(f.logs)),
	}
	var err error
	f.page, err = New(doc, config.Default(), append(base, options...)...)
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	if err := f.page.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return f
}

func (f *fixture) el(t *testing.T, id string) *dom.Element {
	t.Helper()
	return testsupport.MustByID(t, f.doc, id)
}

func TestPageGatesSubmission(t *testing.T) {
	f := newFixture(t)
	form := f.el(t, "activity")
	title := f.el(t, "title")
	description := f.el(t, "description")
	display := f.el(t, "description-counter")

	if display.Text() != "0/5 palavras" {
		t.Fatalf("counter should render at init, got %q", display.Text())
	}

	f.page.Input(title, "Oficina")
	f.page.Input(description, "um dois três quatro cinco seis")
	if display.Text() != "6/5 palavras" || !description.HasClass("is-invalid") || !display.HasClass("text-danger") {
		t.Fatalf("over-limit state not reflected: %q", display.Text())
	}

	submitted, err := f.page.Submit(context.Background(), form)
	if err != nil || submitted {
		t.Fatalf("over-limit form must be blocked (submitted=%v err=%v)", submitted, err)
	}
	if !form.HasClass("was-validated") {
		t.Fatalf("blocked submit should reveal validity styling")
	}
	if len(f.sub.forms) != 0 {
		t.Fatalf("submitter must not see a blocked form")
	}

	f.page.Input(description, "um dois três")
	if description.HasClass("is-invalid") || display.HasClass("text-danger") {
		t.Fatalf("markers should clear once back within the limit")
	}
	submitted, err = f.page.Submit(context.Background(), form)
	if err != nil || !submitted {
		t.Fatalf("valid form should submit (submitted=%v err=%v)", submitted, err)
	}

	want := url.Values{"title": {"Oficina"}, "description": {"um dois três"}}
	if diff := cmp.Diff(want, f.sub.values[0]); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestPageRequiredFieldBlocksSubmit(t *testing.T) {
	f := newFixture(t)
	form := f.el(t, "activity")

	submitted, err := f.page.Submit(context.Background(), form)
	if err != nil || submitted {
		t.Fatalf("blank required field must block submit")
	}
	if !f.el(t, "title").HasClass("is-invalid") {
		t.Fatalf("blank required field should be marked")
	}
	report := f.page.Check(form)
	if report.Valid || len(report.Issues) != 1 {
		t.Fatalf("unexpected report %s", report)
	}
}

func TestPageSubmitterError(t *testing.T) {
	f := newFixture(t)
	f.sub.err = errors.New("backend down")
	f.page.Input(f.el(t, "title"), "Oficina")

	submitted, err := f.page.Submit(context.Background(), f.el(t, "activity"))
	if !submitted || err == nil || !strings.Contains(err.Error(), "backend down") {
		t.Fatalf("submitter error should be returned (submitted=%v err=%v)", submitted, err)
	}
}

func TestPageTooltips(t *testing.T) {
	f := newFixture(t)
	help := f.el(t, "help")
	if help.HasAttr("title") {
		t.Fatalf("title should move to the tooltip widget")
	}
	if got, _ := help.Attr("data-bs-original-title"); got != "Ajuda" {
		t.Fatalf("unexpected original title %q", got)
	}
}

func TestPageCardAnimations(t *testing.T) {
	f := newFixture(t)

	for id, delay := range map[string]string{"c1": "0s", "c2": "0.1s", "c3": "0.2s"} {
		card := f.el(t, id)
		if got := card.Style("animation-delay"); got != delay {
			t.Fatalf("#%s animation-delay = %q, want %q", id, got, delay)
		}
		if !card.HasClass("fade-in") {
			t.Fatalf("#%s should fade in", id)
		}
	}

	card := f.el(t, "c1")
	f.page.Hover(card, true)
	if got := card.Style("transform"); got != "translateY(-3px)" {
		t.Fatalf("hover should lift the card, got %q", got)
	}
	f.page.Hover(card, false)
	if got := card.Style("transform"); got != "translateY(0)" {
		t.Fatalf("leaving should reset the card, got %q", got)
	}
}

func TestPageResizeIsDebounced(t *testing.T) {
	f := newFixture(t)

	late := f.doc.CreateElement("div")
	late.SetAttr("id", "c4")
	late.AddClass("card")
	f.doc.Body().AppendChild(late)

	f.page.Resize(800)
	f.clock.Advance(200 * time.Millisecond)
	f.page.Resize(700)
	f.clock.Advance(200 * time.Millisecond)
	if late.HasClass("fade-in") {
		t.Fatalf("animations should wait for resizes to settle")
	}

	f.clock.Advance(50 * time.Millisecond)
	if !late.HasClass("fade-in") || late.Style("animation-delay") != "0.3s" {
		t.Fatalf("settled resize should re-run animations, got %q", late.Style("animation-delay"))
	}
	if n := f.el(t, "c1").ListenerCount("mouseenter"); n != 1 {
		t.Fatalf("hover listeners must not be duplicated, got %d", n)
	}
}

func TestPageNavigation(t *testing.T) {
	f := newFixture(t, WithViewport(Viewport{Width: 600}), WithCurrentPath("/atividades"))

	if !f.el(t, "list").HasClass("active") || f.el(t, "home").HasClass("active") {
		t.Fatalf("only the current link should be active")
	}

	f.page.Click(f.el(t, "home"))
	if diff := cmp.Diff([]string{"tooltip:help", "collapse:menu"}, f.kit.Calls); diff != "" {
		t.Fatalf("toolkit calls mismatch (-want +got):\n%s", diff)
	}
	if f.el(t, "menu").HasClass("show") {
		t.Fatalf("menu should be collapsed")
	}

	f.page.Resize(1200)
	f.page.Click(f.el(t, "home"))
	if len(f.kit.Calls) != 2 {
		t.Fatalf("wide viewports must not collapse the menu: %v", f.kit.Calls)
	}
}

func TestPageAlertsAutoHide(t *testing.T) {
	f := newFixture(t)
	saved := f.el(t, "saved")
	sticky := f.el(t, "sticky")

	f.clock.Advance(4 * time.Second)
	if !saved.Attached() {
		t.Fatalf("alert closed too early")
	}
	f.clock.Advance(time.Second)
	if saved.Attached() {
		t.Fatalf("alert should be closed after five seconds")
	}
	if !sticky.Attached() {
		t.Fatalf("alerts opting out must stay")
	}
	if diff := cmp.Diff([]string{"tooltip:help", "alert:saved"}, f.kit.Calls); diff != "" {
		t.Fatalf("toolkit calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPageTouchFeedback(t *testing.T) {
	f := newFixture(t, WithViewport(Viewport{Width: 400, Touch: true}))
	if !f.doc.Body().HasClass("touch-device") {
		t.Fatalf("body should be flagged as touch device")
	}

	send := f.el(t, "send")
	f.page.Touch(send)
	if !send.HasClass("active") {
		t.Fatalf("touched button should be active")
	}
	f.clock.Advance(149 * time.Millisecond)
	if !send.HasClass("active") {
		t.Fatalf("active state released too early")
	}
	f.clock.Advance(time.Millisecond)
	if send.HasClass("active") {
		t.Fatalf("active state should be released after touchend")
	}
}

func TestPageWithoutTouchLeavesButtonsAlone(t *testing.T) {
	f := newFixture(t)
	if f.doc.Body().HasClass("touch-device") {
		t.Fatalf("non-touch viewport should not be flagged")
	}
	if n := f.el(t, "send").ListenerCount("touchstart"); n != 0 {
		t.Fatalf("expected no touch listeners, got %d", n)
	}
}

func TestPageLogsListenerPanics(t *testing.T) {
	f := newFixture(t)
	f.doc.Body().On("click", func(*dom.Event) { panic("boom") })

	f.page.Click(f.el(t, "home"))
	out := f.logs.String()
	if !strings.Contains(out, "page error") || !strings.Contains(out, "boom") {
		t.Fatalf("panic should be logged, got %q", out)
	}
}

func TestPageInitOnce(t *testing.T) {
	f := newFixture(t)
	if err := f.page.Init(context.Background()); !errors.Is(err, ErrInitialized) {
		t.Fatalf("expected ErrInitialized, got %v", err)
	}
	if n := f.el(t, "description").ListenerCount("input"); n != 1 {
		t.Fatalf("expected a single input listener, got %d", n)
	}
	if got := len(f.page.Forms()); got != 1 {
		t.Fatalf("expected one gated form, got %d", got)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	doc := testsupport.ParseDocument(t, activityPage)
	cfg := config.Default()
	cfg.Forms = []config.FormRule{{Selector: "form["}}
	if _, err := New(doc, cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(nil, config.Default()); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestPageHelpersShareTheLoop(t *testing.T) {
	f := newFixture(t)
	toast, err := f.page.Helpers().ShowToast("Atividade criada", "success")
	if err != nil {
		t.Fatalf("toast: %v", err)
	}
	f.clock.Advance(5 * time.Second)
	if toast.Attached() {
		t.Fatalf("toast should auto-hide with the page clock")
	}
	if f.page.Helpers().ValidateForm(f.el(t, "activity")) {
		t.Fatalf("helpers should use the page gate")
	}
}

func TestPageHelpersSerialiseWithRealTimers(t *testing.T) {
	doc := testsupport.ParseDocument(t, activityPage)
	cfg := config.Default()
	cfg.Timing.ToastAutoHide = config.Duration(time.Millisecond)
	cfg.Timing.AlertAutoHide = config.Duration(time.Millisecond)
	cfg.Timing.LoadingFallback = config.Duration(time.Millisecond)
	p, err := New(doc, cfg)
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer p.CancelTimers()

	h := p.Helpers()
	form := testsupport.MustByID(t, doc, "activity")
	button := testsupport.MustByID(t, doc, "send")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := h.ShowToast("Atividade salva", "success"); err != nil {
					t.Errorf("toast: %v", err)
					return
				}
				if err := h.ShowLoading(button); err != nil {
					t.Errorf("loading: %v", err)
					return
				}
				h.ValidateForm(form)
				h.HideLoading(button)
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var toasts, alerts int
		p.Do(func() {
			found, _ := doc.Find(".toast")
			toasts = len(found)
			found, _ = doc.Find("#saved")
			alerts = len(found)
		})
		if toasts == 0 && alerts == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timers did not settle: %d toasts, %d alerts left", toasts, alerts)
		}
		time.Sleep(time.Millisecond)
	}
}

const overlappingRulesPage = `<html><body>
<form id="f" data-validate>
  <textarea id="c" name="c" data-word-limit="2"></textarea>
</form>
</body></html>`

func TestPageOverlappingRulesAgree(t *testing.T) {
	doc := testsupport.ParseDocument(t, overlappingRulesPage)
	limit := 10
	cfg := config.Default()
	cfg.WordLimits = []config.WordLimitRule{
		{Selector: config.DefaultWordLimitSelector},
		{Selector: "#c", Limit: &limit},
	}
	p, err := New(doc, cfg, WithClock(schedule.NewManualClock()))
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	field := testsupport.MustByID(t, doc, "c")
	p.Input(field, "um dois tres")

	display := testsupport.MustByID(t, doc, "c-counter")
	if display.Text() != "3/10 palavras" || field.HasClass("is-invalid") {
		t.Fatalf("counter should use the later rule, got %q", display.Text())
	}
	if !p.Validate(testsupport.MustByID(t, doc, "f")) {
		t.Fatalf("gate should judge the field against the counter's limit")
	}

	p.Input(field, "um dois tres quatro cinco seis sete oito nove dez onze")
	if display.Text() != "11/10 palavras" {
		t.Fatalf("unexpected counter %q", display.Text())
	}
	if p.Validate(testsupport.MustByID(t, doc, "f")) {
		t.Fatalf("gate and counter should both report the overflow")
	}
}

type failingHideToolkit struct {
	testsupport.RecordingToolkit
}

func (k *failingHideToolkit) HideToast(*dom.Element) error {
	return errors.New("toast widget missing")
}

var _ toolkit.Toolkit = (*failingHideToolkit)(nil)

func TestPageReportsToastHideErrors(t *testing.T) {
	doc := testsupport.ParseDocument(t, activityPage)
	clock := schedule.NewManualClock()
	logs := &bytes.Buffer{}
	p, err := New(doc, config.Default(),
		WithClock(clock),
		WithToolkit(&failingHideToolkit{}),
		WithLogger(newTestLogger(logs)),
	)
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	if _, err := p.Helpers().ShowToast("Atividade salva", "info"); err != nil {
		t.Fatalf("toast: %v", err)
	}
	clock.Advance(5 * time.Second)
	if !strings.Contains(logs.String(), "page error") || !strings.Contains(logs.String(), "toast widget missing") {
		t.Fatalf("hide failure should reach the page error handler, logs:\n%s", logs.String())
	}
}
