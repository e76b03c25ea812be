// Package osc sends avatar-parameter updates over a bespoke OSC 1.0 packet
// encoder on a plain net.UDPConn. No OSC encoding library is present in the
// retrieval pack, so this wire writer is hand-rolled and justified in
// DESIGN.md: it covers only the address + float32/int32/bool argument types
// the avatar-parameter messages need, not the full OSC spec.
package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// Sender writes OSC messages to a fixed UDP peer.
type Sender struct {
	conn *net.UDPConn
}

// Dial opens a UDP socket targeting addr (host:port). No response is ever
// read: OSC over UDP is fire-and-forget.
func Dial(addr string) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("osc: resolving %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("osc: dialing %s: %w", addr, err)
	}
	return &Sender{conn: conn}, nil
}

// Close releases the underlying socket.
func (s *Sender) Close() error { return s.conn.Close() }

// SendFloat writes an OSC message with a single float32 argument, e.g. an
// avatar parameter like "/avatar/parameters/VelocityX".
func (s *Sender) SendFloat(address string, value float32) error {
	return s.send(address, ",f", func(buf *bytes.Buffer) {
		binary.Write(buf, binary.BigEndian, value)
	})
}

// SendBool writes an OSC message with a single boolean argument, encoded
// per OSC 1.0 as the type tags 'T'/'F' with no argument bytes.
func (s *Sender) SendBool(address string, value bool) error {
	tag := ",F"
	if value {
		tag = ",T"
	}
	return s.send(address, tag, func(*bytes.Buffer) {})
}

// SendInt writes an OSC message with a single int32 argument.
func (s *Sender) SendInt(address string, value int32) error {
	return s.send(address, ",i", func(buf *bytes.Buffer) {
		binary.Write(buf, binary.BigEndian, value)
	})
}

func (s *Sender) send(address, typeTag string, writeArgs func(*bytes.Buffer)) error {
	var buf bytes.Buffer
	writePaddedString(&buf, address)
	writePaddedString(&buf, typeTag)
	writeArgs(&buf)
	_, err := s.conn.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("osc: writing message %s: %w", address, err)
	}
	return nil
}

// writePaddedString writes s null-terminated and zero-padded to a multiple
// of 4 bytes, per the OSC 1.0 string encoding rule.
func writePaddedString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}
