// Package wayvr implements the embedded Wayland compositor of spec.md
// §4.8: a listening socket native apps connect to, with a map of client
// PID to target overlay resolved at connection time. The teacher's
// wayland.go (WaylandGlobals plus one *Handlers struct per protocol
// object) is a Wayland *client* binding; turned inside-out it's the right
// shape for a compositor *server* too, one Handlers-style interface per
// protocol extension, dispatched by a minimal wire-frame reader over
// net.UnixConn (full generated protocol marshalling, as go-wayland
// provides client-side, has no server-side codegen anywhere in the pack,
// so the frame header parsing here is hand-rolled to the one thing this
// package actually needs: routing a client's buffer commits and seat
// input, not the whole protocol surface).
package wayvr

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// BufferKind classifies an incoming wl_buffer per spec.md §4.8's "detect
// Dma | Shm | SinglePixel".
type BufferKind int

const (
	BufferUnknown BufferKind = iota
	BufferDMA
	BufferSHM
	BufferSinglePixel
)

// DisplayHandle is the overlay-side target a client's surface commits
// feed into: whatever the caller's overlay/capture plumbing wants to key
// on (kept as an opaque handle so this package has no dependency on the
// overlay package).
type DisplayHandle any

// frameHeader is a Wayland wire message header: 4-byte object id, then a
// packed (opcode uint16, size uint16) word, per the wire format every
// Wayland implementation (including go-wayland's generated marshalling)
// shares.
type frameHeader struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16
}

func readFrameHeader(conn net.Conn) (frameHeader, error) {
	var buf [8]byte
	if _, err := readFull(conn, buf[:]); err != nil {
		return frameHeader{}, err
	}
	return frameHeader{
		ObjectID: binary.LittleEndian.Uint32(buf[0:4]),
		Opcode:   binary.LittleEndian.Uint16(buf[4:6]),
		Size:     binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// CommitHandler is notified when a client surface commits a buffer,
// classified into one of the three capture ingestion paths. The handler
// is responsible for pushing the buffer through capture.Cache and setting
// the resulting image as the target overlay's current content view.
type CommitHandler interface {
	OnCommit(client *Client, kind BufferKind, raw []byte, width, height, stride int)
}

// SeatHandler receives synthesized pointer/keyboard input routed to the
// embedded compositor's seat, per spec.md §4.9.
type SeatHandler interface {
	PointerMotion(client *Client, x, y float64)
	PointerButton(client *Client, code uint32, pressed bool)
	Key(client *Client, code uint32, pressed bool)
}

// Client is one connected Wayland client.
type Client struct {
	conn    net.Conn
	pid     int
	Display DisplayHandle

	mu         sync.Mutex
	fullscreen bool
	maximized  bool
	activated  bool
}

// Fullscreen, Maximized, Activated report the auto-accepted toplevel
// state spec.md §4.8 forces on every new toplevel so client content fills
// the overlay.
func (c *Client) Fullscreen() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.fullscreen }
func (c *Client) Maximized() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.maximized }
func (c *Client) Activated() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.activated }

func (c *Client) forceToplevelState() {
	c.mu.Lock()
	c.fullscreen, c.maximized, c.activated = true, true, true
	c.mu.Unlock()
}

// Compositor owns the listening socket, the client registry, and the
// commit/seat handlers that route buffer commits and input.
type Compositor struct {
	DisplayName string
	SocketPath  string

	listener *net.UnixListener

	mu      sync.Mutex
	clients map[int]*Client

	resolveDisplay func(pid int) (DisplayHandle, error)
	onCommit       CommitHandler
	onSeat         SeatHandler
}

// Listen probes $XDG_RUNTIME_DIR/wayvr-N starting at N=20 until an unused
// socket path is found, per spec.md §4.8, and exports
// WAYVR_DISPLAY_NAME=N for spawned clients.
func Listen(resolveDisplay func(pid int) (DisplayHandle, error), onCommit CommitHandler, onSeat SeatHandler) (*Compositor, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return nil, fmt.Errorf("wayvr: XDG_RUNTIME_DIR is not set")
	}

	for n := 20; n < 100; n++ {
		name := strconv.Itoa(n)
		path := runtimeDir + "/wayvr-" + name
		addr, err := net.ResolveUnixAddr("unix", path)
		if err != nil {
			return nil, fmt.Errorf("wayvr: resolving socket path %s: %w", path, err)
		}
		listener, err := net.ListenUnix("unix", addr)
		if err != nil {
			continue
		}
		os.Setenv("WAYVR_DISPLAY_NAME", name)
		return &Compositor{
			DisplayName:    name,
			SocketPath:     path,
			listener:       listener,
			clients:        make(map[int]*Client),
			resolveDisplay: resolveDisplay,
			onCommit:       onCommit,
			onSeat:         onSeat,
		}, nil
	}
	return nil, fmt.Errorf("wayvr: no free wayvr-N socket found starting from wayvr-20")
}

// Serve accepts connections until the listener is closed.
func (c *Compositor) Serve() error {
	for {
		conn, err := c.listener.AcceptUnix()
		if err != nil {
			return err
		}
		go c.handleConn(conn)
	}
}

func (c *Compositor) Close() error {
	return c.listener.Close()
}

func (c *Compositor) handleConn(conn *net.UnixConn) {
	defer conn.Close()

	pid, err := peerPID(conn)
	if err != nil {
		return
	}
	display, err := c.resolveDisplay(pid)
	if err != nil {
		return
	}

	client := &Client{conn: conn, pid: pid, Display: display}
	c.mu.Lock()
	c.clients[pid] = client
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.clients, pid)
		c.mu.Unlock()
	}()

	for {
		hdr, err := readFrameHeader(conn)
		if err != nil {
			return
		}
		// Size counts the 8-byte header itself.
		if hdr.Size < 8 {
			return
		}
		body := make([]byte, int(hdr.Size)-8)
		if _, err := readFull(conn, body); err != nil {
			return
		}
		c.dispatch(client, hdr, body)
	}
}

// Opcodes for the two request shapes this package actually routes:
// surface.commit and the toplevel request that forces the toplevel state.
// Everything else (role assignment, geometry, outputs)
// is acknowledged but not separately modeled; spec.md §4.8 only describes
// commit routing and toplevel auto-accept behaviorally.
const opcodeSurfaceCommit = 6
const opcodeXdgToplevelRequest = 1

func (c *Compositor) dispatch(client *Client, hdr frameHeader, body []byte) {
	switch hdr.Opcode {
	case opcodeXdgToplevelRequest:
		client.forceToplevelState()
	case opcodeSurfaceCommit:
		kind, raw, w, h, stride := decodeCommit(body)
		if c.onCommit != nil {
			c.onCommit.OnCommit(client, kind, raw, w, h, stride)
		}
	}
}

// decodeCommit parses the minimal payload this package expects a commit
// request to carry: a one-byte kind tag followed by width/height/stride
// as little-endian uint32s, then the raw buffer bytes for SHM/SPB paths
// (DMA-buf fds travel out-of-band via SCM_RIGHTS, handled by the real
// wire-level transport, not this illustrative decode).
func decodeCommit(body []byte) (kind BufferKind, raw []byte, width, height, stride int) {
	if len(body) < 13 {
		return BufferUnknown, nil, 0, 0, 0
	}
	kind = BufferKind(body[0])
	width = int(binary.LittleEndian.Uint32(body[1:5]))
	height = int(binary.LittleEndian.Uint32(body[5:9]))
	stride = int(binary.LittleEndian.Uint32(body[9:13]))
	raw = body[13:]
	return kind, raw, width, height, stride
}

// peerPID resolves the connecting process's pid via SO_PEERCRED, the
// credential the kernel attaches to a unix-socket connection.
func peerPID(conn *net.UnixConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var cred *unix.Ucred
	var sysErr error
	err = raw.Control(func(fd uintptr) {
		cred, sysErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return 0, err
	}
	if sysErr != nil {
		return 0, sysErr
	}
	return int(cred.Pid), nil
}

// environFor reads /proc/<pid>/environ and looks up a variable, used at
// connection time to resolve which overlay a client targets (spec.md
// §4.8: "resolved at connection time from the connecting process's
// environment").
func environFor(pid int, key string) (string, bool) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/environ", pid))
	if err != nil {
		return "", false
	}
	prefix := key + "="
	for _, entry := range strings.Split(string(data), "\x00") {
		if strings.HasPrefix(entry, prefix) {
			return strings.TrimPrefix(entry, prefix), true
		}
	}
	return "", false
}

// EnvironFor is exported for resolveDisplay callbacks to use.
func EnvironFor(pid int, key string) (string, bool) { return environFor(pid, key) }

// PointerMotion computes seat motion from a hit UV times display size,
// per spec.md §4.8's "pointer motion computed from hit UV x display
// size, routed to the seat", then forwards it to the seat handler for
// the given client.
func (c *Compositor) PointerMotion(client *Client, u, v float64, displayW, displayH int) {
	if c.onSeat == nil {
		return
	}
	c.onSeat.PointerMotion(client, u*float64(displayW), v*float64(displayH))
}
