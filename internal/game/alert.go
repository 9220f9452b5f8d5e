package game

import (
	"sync"
	"time"

	"github.com/yola1107/cards56/library/work"
	"github.com/yola1107/cards56/library/zlog"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Alert is one user-facing notice. Sticky alerts stay up until replaced
// or hidden; the rest auto-dismiss.
type Alert struct {
	Title    string
	Message  string
	Severity Severity
	Sticky   bool
}

// Notifier is the fire-and-forget sink the UI layer plugs in. The
// controller stays fully usable headless with a nil sink.
type Notifier interface {
	Show(a Alert)
	Hide()
}

const transientAlertDuration = 5 * time.Second

// Alerts tracks the single currently visible notice and drives
// auto-dismissal of transient ones.
type Alerts struct {
	sink  Notifier
	sched work.Scheduler

	mu      sync.Mutex
	current *Alert
	dismiss int64
}

func NewAlerts(sink Notifier, sched work.Scheduler) *Alerts {
	return &Alerts{sink: sink, sched: sched, dismiss: -1}
}

// Show replaces the visible notice. Non-sticky alerts are dismissed
// automatically after transientAlertDuration.
func (a *Alerts) Show(alert Alert) {
	a.mu.Lock()
	if a.dismiss >= 0 {
		a.sched.Cancel(a.dismiss)
		a.dismiss = -1
	}
	a.current = &alert
	if !alert.Sticky {
		a.dismiss = a.sched.Once(transientAlertDuration, a.Hide)
	}
	sink := a.sink
	a.mu.Unlock()

	if sink != nil {
		sink.Show(alert)
	}
}

func (a *Alerts) ShowError(message string) {
	a.Show(Alert{Message: message, Severity: SeverityError})
}

func (a *Alerts) ShowWarning(title, message string) {
	a.Show(Alert{Title: title, Message: message, Severity: SeverityWarning})
}

// ShowSticky shows a persistent notice that survives until Hide or the
// next Show.
func (a *Alerts) ShowSticky(title, message string, severity Severity) {
	a.Show(Alert{Title: title, Message: message, Severity: severity, Sticky: true})
}

// Hide clears the visible notice, if any.
func (a *Alerts) Hide() {
	a.mu.Lock()
	if a.current == nil {
		a.mu.Unlock()
		return
	}
	if a.dismiss >= 0 {
		a.sched.Cancel(a.dismiss)
		a.dismiss = -1
	}
	a.current = nil
	sink := a.sink
	a.mu.Unlock()

	zlog.Debugf("alert cleared")
	if sink != nil {
		sink.Hide()
	}
}

// Current returns the visible notice, if any.
func (a *Alerts) Current() (Alert, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Alert{}, false
	}
	return *a.current, true
}
