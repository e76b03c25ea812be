package notify

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestToastFromSignalDecodesNotifyBody(t *testing.T) {
	sig := &dbus.Signal{
		Name: notifyIface + "." + notifyMethod,
		Body: []interface{}{
			"Discord", uint32(0), "discord-icon", "New message", "hello there",
			[]string{}, map[string]dbus.Variant{}, int32(5000),
		},
	}
	now := time.Unix(1700000000, 0)
	toast, ok := toastFromSignal(sig, now)
	if !ok {
		t.Fatalf("expected a decoded toast")
	}
	if toast.AppName != "Discord" || toast.Summary != "New message" || toast.Body != "hello there" {
		t.Fatalf("unexpected toast: %+v", toast)
	}
	if !toast.Seen.Equal(now) {
		t.Fatalf("expected Seen to be stamped with now")
	}
}

func TestToastFromSignalRejectsShortBody(t *testing.T) {
	sig := &dbus.Signal{Name: notifyIface + "." + notifyMethod, Body: []interface{}{"x"}}
	if _, ok := toastFromSignal(sig, time.Now()); ok {
		t.Fatalf("expected a short body to be rejected")
	}
}
