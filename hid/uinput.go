package hid

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux /dev/uinput ioctl numbers and event type/code constants, encoded
// the same way as the DRM ioctls: _IOW('U', nr, size) etc. Grounded on the
// helixml-helix drm package's unix.Syscall(unix.SYS_IOCTL, ...) idiom.
const (
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiSetRelBit = 0x40045566
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502

	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	synReport = 0

	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08
	relHWheel = 0x06
)

type uinputUserDev struct {
	Name       [80]byte
	IDBustype  uint16
	IDVendor   uint16
	IDProduct  uint16
	IDVersion  uint16
	EffectsMax uint32
	AbsMax     [64]int32
	AbsMin     [64]int32
	AbsFuzz    [64]int32
	AbsFlat    [64]int32
}

type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// UinputProvider synthesizes host input via /dev/uinput, for compositors
// that don't implement the wlr virtual-input protocols.
type UinputProvider struct {
	f *os.File
}

// NewUinputProvider opens /dev/uinput and registers a combined
// relative-pointer + keyboard virtual device.
func NewUinputProvider() (*UinputProvider, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("hid: opening /dev/uinput: %w", err)
	}
	p := &UinputProvider{f: f}
	if err := p.setup(); err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

func (p *UinputProvider) setup() error {
	if err := p.ioctl(uiSetEvBit, evKey); err != nil {
		return err
	}
	if err := p.ioctl(uiSetEvBit, evRel); err != nil {
		return err
	}
	for code := 0; code < 256; code++ {
		if err := p.ioctl(uiSetKeyBit, uintptr(code)); err != nil {
			return err
		}
	}
	for _, code := range []uintptr{relX, relY, relWheel, relHWheel} {
		if err := p.ioctl(uiSetRelBit, code); err != nil {
			return err
		}
	}

	dev := uinputUserDev{IDBustype: 0x03, IDVendor: 0x1234, IDProduct: 0x5678, IDVersion: 1}
	copy(dev.Name[:], "wlxd virtual input")
	if _, err := p.f.Write((*[unsafe.Sizeof(dev)]byte)(unsafe.Pointer(&dev))[:]); err != nil {
		return fmt.Errorf("hid: writing uinput device descriptor: %w", err)
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.f.Fd(), uiDevCreate, 0)
	if errno != 0 {
		return fmt.Errorf("hid: UI_DEV_CREATE: %w", errno)
	}
	return nil
}

func (p *UinputProvider) ioctl(req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.f.Fd(), req, arg)
	if errno != 0 {
		return fmt.Errorf("hid: ioctl %#x(%#x): %w", req, arg, errno)
	}
	return nil
}

func (p *UinputProvider) write(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	if _, err := p.f.Write((*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]); err != nil {
		return fmt.Errorf("hid: writing input event: %w", err)
	}
	return nil
}

func (p *UinputProvider) syn() error { return p.write(evSyn, synReport, 0) }

// MotionAbsolute is a no-op on this fallback: the registered device only
// advertises EV_REL axes (no EV_ABS), so absolute positioning isn't
// available without the wlr-virtual-pointer protocol's MotionAbsolute.
// Callers needing absolute cursor placement on a uinput-only host should
// compute a relative delta themselves and call a relative-motion path
// instead (not exposed here since Provider only needs what spec.md uses).
func (p *UinputProvider) MotionAbsolute(x, y float64, surfaceW, surfaceH int) error {
	return nil
}

func (p *UinputProvider) Button(btn Button, pressed bool) error {
	value := int32(0)
	if pressed {
		value = 1
	}
	if err := p.write(evKey, uint16(btn), value); err != nil {
		return err
	}
	return p.syn()
}

func (p *UinputProvider) Scroll(dx, dy float64) error {
	if dy != 0 {
		if err := p.write(evRel, relWheel, int32(-dy)); err != nil {
			return err
		}
	}
	if dx != 0 {
		if err := p.write(evRel, relHWheel, int32(dx)); err != nil {
			return err
		}
	}
	return p.syn()
}

func (p *UinputProvider) Key(key Key, pressed bool) error {
	value := int32(0)
	if pressed {
		value = 1
	}
	if err := p.write(evKey, uint16(key), value); err != nil {
		return err
	}
	return p.syn()
}

// Frame is a no-op: every write above already ends with a SYN_REPORT, so
// there is no coalesced motion left to flush at frame boundaries.
func (p *UinputProvider) Frame() error { return nil }

func (p *UinputProvider) Close() error {
	unix.Syscall(unix.SYS_IOCTL, p.f.Fd(), uiDevDestroy, 0)
	return p.f.Close()
}
