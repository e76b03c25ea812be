package wayvr

import (
	"encoding/binary"
	"os"
	"testing"
)

func TestDecodeCommitParsesKindAndDimensions(t *testing.T) {
	body := make([]byte, 13+4)
	body[0] = byte(BufferSHM)
	binary.LittleEndian.PutUint32(body[1:5], 640)
	binary.LittleEndian.PutUint32(body[5:9], 480)
	binary.LittleEndian.PutUint32(body[9:13], 2560)
	copy(body[13:], []byte{1, 2, 3, 4})

	kind, raw, w, h, stride := decodeCommit(body)
	if kind != BufferSHM || w != 640 || h != 480 || stride != 2560 {
		t.Fatalf("unexpected decode: kind=%v w=%d h=%d stride=%d", kind, w, h, stride)
	}
	if len(raw) != 4 {
		t.Fatalf("expected 4 trailing raw bytes, got %d", len(raw))
	}
}

func TestDecodeCommitRejectsShortBody(t *testing.T) {
	kind, raw, _, _, _ := decodeCommit([]byte{1, 2, 3})
	if kind != BufferUnknown || raw != nil {
		t.Fatalf("expected an unknown/empty result for a short body, got kind=%v raw=%v", kind, raw)
	}
}

func TestEnvironForFindsOwnProcessVariable(t *testing.T) {
	// /proc/<pid>/environ reflects the environment block captured at
	// exec time, not later os.Setenv calls, so this looks up a variable
	// the test runner itself is guaranteed to have inherited at exec.
	want, ok := os.LookupEnv("PATH")
	if !ok {
		t.Skip("PATH is not set in this environment")
	}
	val, ok := EnvironFor(os.Getpid(), "PATH")
	if !ok || val != want {
		t.Fatalf("expected to read PATH=%q from /proc/self/environ, got %q ok=%v", want, val, ok)
	}
}

func TestEnvironForMissingKeyReturnsFalse(t *testing.T) {
	_, ok := EnvironFor(os.Getpid(), "WAYVR_DEFINITELY_UNSET_VAR")
	if ok {
		t.Fatalf("expected ok=false for a variable that isn't set")
	}
}
