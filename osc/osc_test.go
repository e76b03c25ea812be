package osc

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"
)

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSendFloatEncodesAddressAndArgument(t *testing.T) {
	listener := listen(t)
	s, err := Dial(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.SendFloat("/avatar/parameters/VelocityX", 1.5); err != nil {
		t.Fatal(err)
	}

	listener.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 256)
	n, err := listener.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf = buf[:n]

	wantAddr := "/avatar/parameters/VelocityX\x00\x00\x00\x00"
	if string(buf[:len(wantAddr)]) != wantAddr {
		t.Fatalf("address mismatch: got %q", buf[:len(wantAddr)])
	}
	offset := len(wantAddr)
	wantTag := ",f\x00\x00"
	if string(buf[offset:offset+4]) != wantTag {
		t.Fatalf("type tag mismatch: got %q", buf[offset:offset+4])
	}
	offset += 4
	bits := binary.BigEndian.Uint32(buf[offset : offset+4])
	got := math.Float32frombits(bits)
	if got != 1.5 {
		t.Fatalf("expected float arg 1.5, got %v", got)
	}
}
