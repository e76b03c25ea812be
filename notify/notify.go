// Package notify monitors org.freedesktop.Notifications.Notify over the
// session D-Bus and republishes each call as a Toast on a bounded channel,
// grounded on the godbus/dbus/v5 AddMatchSignal/Signal idiom used by
// helixml-helix's desktop package (session.go, clipboard.go).
package notify

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyBus    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyIface  = "org.freedesktop.Notifications"
	notifyMethod = "Notify"
)

// Toast is one notification surfaced to the overlay runtime, per spec.md §3.
type Toast struct {
	AppName string
	Summary string
	Body    string
	Icon    string
	Seen    time.Time
}

// Monitor watches the session bus for outgoing Notify calls and republishes
// them as Toasts. It uses dbus's Eavesdrop-style method-call matching
// (MatchMember on the method itself) rather than signal matching, since
// Notify is a method call, not a signal.
type Monitor struct {
	conn   *dbus.Conn
	toasts chan Toast
	nowFn  func() time.Time
}

// Dial connects to the session bus and registers the method-call match
// rule. toastQueueLen bounds the Toast channel (spec.md §5: capacity 10,
// non-blocking sends that drop on full).
func Dial(toastQueueLen int) (*Monitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("notify: connecting to session bus: %w", err)
	}
	rule := fmt.Sprintf("type='method_call',interface='%s',member='%s',eavesdrop='true'", notifyIface, notifyMethod)
	if call := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule); call.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: registering match rule: %w", call.Err)
	}

	m := &Monitor{
		conn:   conn,
		toasts: make(chan Toast, toastQueueLen),
		nowFn:  time.Now,
	}
	signalChan := make(chan *dbus.Signal, toastQueueLen)
	conn.Signal(signalChan)
	go m.pump(signalChan)
	return m, nil
}

// Toasts returns the channel new notifications are published on.
func (m *Monitor) Toasts() <-chan Toast { return m.toasts }

// Close stops the monitor and releases the bus connection.
func (m *Monitor) Close() error { return m.conn.Close() }

func (m *Monitor) pump(signalChan <-chan *dbus.Signal) {
	for sig := range signalChan {
		toast, ok := toastFromSignal(sig, m.nowFn())
		if !ok {
			continue
		}
		select {
		case m.toasts <- toast:
		default:
			// queue full: drop, per spec.md §5's non-blocking-send semantics.
		}
	}
}

// toastFromSignal decodes the Notify method-call body:
// (app_name string, replaces_id uint32, app_icon string, summary string,
// body string, actions []string, hints map[string]dbus.Variant, expire int32).
func toastFromSignal(sig *dbus.Signal, now time.Time) (Toast, bool) {
	if len(sig.Body) < 5 {
		return Toast{}, false
	}
	appName, ok1 := sig.Body[0].(string)
	icon, ok2 := sig.Body[2].(string)
	summary, ok3 := sig.Body[3].(string)
	body, ok4 := sig.Body[4].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Toast{}, false
	}
	return Toast{AppName: appName, Summary: summary, Body: body, Icon: icon, Seen: now}, true
}
