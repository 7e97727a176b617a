//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evKey     = 0x01
	eviocgrab = 0x40044590 // _IOW('E', 0x90, int)

	pollTimeoutMs = 100
)

// inputEventSize is sizeof(struct input_event): a timeval followed by
// type, code and value
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

// Device describes an evdev node
type Device struct {
	Path string
	Name string
}

// EvdevSource reads key transitions from a /dev/input/event* node
type EvdevSource struct {
	device Device
	keymap Keymap
	grab   bool

	mu      sync.Mutex
	fd      int
	open    bool
	grabbed bool

	// read side, touched only by the goroutine calling Next
	buf     []byte
	decoded []Transition
}

// NewEvdevSource creates a source for device using keymap. When grab is set
// the device is taken exclusively while open, so the same keys are not also
// delivered to the console or a desktop session.
func NewEvdevSource(device Device, keymap Keymap, grab bool) *EvdevSource {
	return &EvdevSource{
		device: device,
		keymap: keymap,
		grab:   grab,
		fd:     -1,
		buf:    make([]byte, inputEventSize*64),
	}
}

func (s *EvdevSource) Name() string   { return s.device.Name }
func (s *EvdevSource) Keymap() Keymap { return s.keymap }
func (s *EvdevSource) Path() string   { return s.device.Path }

// Open opens the node and acquires the exclusive grab
func (s *EvdevSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}

	fd, err := unix.Open(s.device.Path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.device.Path, err)
	}

	if s.grab {
		if err := unix.IoctlSetInt(fd, eviocgrab, 1); err != nil {
			unix.Close(fd)
			return fmt.Errorf("grab %s: %w", s.device.Path, err)
		}
		s.grabbed = true
	}

	s.fd = fd
	s.open = true
	return nil
}

// Close releases the grab and closes the node
func (s *EvdevSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false

	if s.grabbed {
		if err := unix.IoctlSetInt(s.fd, eviocgrab, 0); err != nil {
			log.Printf("Releasing grab on %s: %v", s.device.Path, err)
		}
		s.grabbed = false
	}

	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

// Next blocks until the next key transition. Non-key events (sync,
// scan codes, LEDs) are skipped.
func (s *EvdevSource) Next(ctx context.Context) (Transition, error) {
	for {
		if tr, ok := s.pending(); ok {
			return tr, nil
		}

		if err := ctx.Err(); err != nil {
			return Transition{}, err
		}

		s.mu.Lock()
		fd, open := s.fd, s.open
		s.mu.Unlock()
		if !open {
			return Transition{}, ErrSourceClosed
		}

		// Poll with a timeout so cancellation is noticed
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return Transition{}, &DeviceReadError{Device: s.device.Name, Err: err}
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return Transition{}, &DeviceReadError{Device: s.device.Name, Err: fmt.Errorf("device hung up")}
		}

		rn, err := unix.Read(fd, s.buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return Transition{}, &DeviceReadError{Device: s.device.Name, Err: err}
		}
		if rn == 0 {
			return Transition{}, &DeviceReadError{Device: s.device.Name, Err: fmt.Errorf("end of stream")}
		}

		s.queue(s.buf[:rn])
	}
}

// pending pops a transition decoded by an earlier read
func (s *EvdevSource) pending() (Transition, bool) {
	if len(s.decoded) == 0 {
		return Transition{}, false
	}
	tr := s.decoded[0]
	s.decoded = s.decoded[1:]
	return tr, true
}

func (s *EvdevSource) queue(data []byte) {
	for off := 0; off+inputEventSize <= len(data); off += inputEventSize {
		if tr, ok := decodeInputEvent(data[off : off+inputEventSize]); ok {
			s.decoded = append(s.decoded, tr)
		}
	}
}

// decodeInputEvent parses one struct input_event, keeping only EV_KEY
func decodeInputEvent(raw []byte) (Transition, bool) {
	tvSize := len(raw) - 8
	half := tvSize / 2

	var sec, usec int64
	if half == 8 {
		sec = int64(binary.NativeEndian.Uint64(raw[0:8]))
		usec = int64(binary.NativeEndian.Uint64(raw[8:16]))
	} else {
		sec = int64(int32(binary.NativeEndian.Uint32(raw[0:4])))
		usec = int64(int32(binary.NativeEndian.Uint32(raw[4:8])))
	}

	typ := binary.NativeEndian.Uint16(raw[tvSize : tvSize+2])
	code := binary.NativeEndian.Uint16(raw[tvSize+2 : tvSize+4])
	value := int32(binary.NativeEndian.Uint32(raw[tvSize+4 : tvSize+8]))

	if typ != evKey {
		return Transition{}, false
	}

	var kind Kind
	switch value {
	case 0:
		kind = KindRelease
	case 1:
		kind = KindPress
	case 2:
		kind = KindRepeat
	default:
		return Transition{}, false
	}

	return Transition{
		Code: code,
		Kind: kind,
		Time: time.Unix(sec, usec*int64(time.Microsecond)),
	}, true
}

// ListDevices returns every readable evdev node with its reported name
func ListDevices() ([]Device, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		name, err := os.ReadFile(filepath.Join("/sys/class/input", filepath.Base(p), "device", "name"))
		if err != nil {
			continue
		}
		devices = append(devices, Device{Path: p, Name: strings.TrimSpace(string(name))})
	}
	return devices, nil
}

// Discover opens the foot switch if present, otherwise the wired keyboard.
// Only one physical device is returned so two sources never race.
func Discover(pedalSuffix, keyboardSuffix string, grab bool) ([]Source, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, err
	}
	return pickDevices(devices, pedalSuffix, keyboardSuffix, grab)
}

func pickDevices(devices []Device, pedalSuffix, keyboardSuffix string, grab bool) ([]Source, error) {
	for _, d := range devices {
		if pedalSuffix != "" && strings.HasSuffix(d.Name, pedalSuffix) {
			log.Printf("Found %s at %s", pedalSuffix, d.Path)
			return []Source{NewEvdevSource(d, PedalKeymap(), grab)}, nil
		}
	}
	for _, d := range devices {
		if keyboardSuffix != "" && strings.HasSuffix(d.Name, keyboardSuffix) {
			log.Printf("Found %s at %s", keyboardSuffix, d.Path)
			return []Source{NewEvdevSource(d, KeyboardKeymap(), grab)}, nil
		}
	}

	log.Printf("Did not find %s or %s", pedalSuffix, keyboardSuffix)
	for _, d := range devices {
		log.Printf("  available: %s (%s)", d.Name, d.Path)
	}
	return nil, ErrDeviceUnavailable
}
