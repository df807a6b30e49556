package serialport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
)

const (
	// readTimeout bounds a single read so ReadLine never stalls the loop.
	readTimeout = 10 * time.Millisecond

	// maxLineLength caps a buffered line. Gateway telegrams are well under
	// 100 bytes; anything longer is line noise.
	maxLineLength = 512

	readChunk = 128
)

var (
	// ErrLineTooLong is returned when no delimiter arrives within
	// maxLineLength bytes. The buffered bytes are discarded.
	ErrLineTooLong = errors.New("serialport: line too long")

	// ErrEmbeddedNewline is returned by WriteLine for a line containing "\n".
	ErrEmbeddedNewline = errors.New("serialport: line contains newline")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("serialport: closed")
)

// Port is the part of serial.Port the transport needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Transport reads and writes newline-delimited telegrams.
//
// Thread Safety:
//   - Not safe for concurrent use; owned by the gateway loop.
type Transport struct {
	port   Port
	name   string
	buf    []byte
	closed bool
}

// Open opens the configured serial device at 8N1.
//
// Parameters:
//   - cfg: Gateway section (port and baud rate)
//
// Returns:
//   - *Transport: Open transport
//   - error: If the device cannot be opened or configured
func Open(cfg config.GatewayConfig) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8, //nolint:mnd // 8N1
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.Port, err)
	}

	t, err := New(p, cfg.Port)
	if err != nil {
		p.Close() //nolint:errcheck,gosec // already failing
		return nil, err
	}
	return t, nil
}

// New wraps an already open port.
func New(p Port, name string) (*Transport, error) {
	if err := p.SetReadTimeout(readTimeout); err != nil {
		return nil, fmt.Errorf("setting read timeout on %s: %w", name, err)
	}
	return &Transport{port: p, name: name}, nil
}

// Name returns the device name.
func (t *Transport) Name() string {
	return t.name
}

// ReadLine returns the next complete line without its delimiter.
//
// Returns:
//   - string: The line, with a trailing "\r" removed
//   - bool: false when no complete line is available yet
//   - error: Read failure, ErrLineTooLong or ErrClosed
func (t *Transport) ReadLine() (string, bool, error) {
	if t.closed {
		return "", false, ErrClosed
	}
	if line, ok := t.takeLine(); ok {
		return line, true, nil
	}

	chunk := make([]byte, readChunk)
	n, err := t.port.Read(chunk)
	if n > 0 {
		t.buf = append(t.buf, chunk[:n]...)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("reading %s: %w", t.name, err)
	}

	if line, ok := t.takeLine(); ok {
		return line, true, nil
	}
	if len(t.buf) > maxLineLength {
		t.buf = t.buf[:0]
		return "", false, fmt.Errorf("%w: %s", ErrLineTooLong, t.name)
	}
	return "", false, nil
}

// takeLine removes and returns the first buffered line.
func (t *Transport) takeLine() (string, bool) {
	i := bytes.IndexByte(t.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(t.buf[:i], []byte{'\r'}))
	t.buf = append(t.buf[:0], t.buf[i+1:]...)
	return line, true
}

// WriteLine writes line followed by "\n".
//
// Returns:
//   - error: ErrEmbeddedNewline, ErrClosed or the write failure
func (t *Transport) WriteLine(line string) error {
	if t.closed {
		return ErrClosed
	}
	if strings.ContainsRune(line, '\n') {
		return ErrEmbeddedNewline
	}

	data := []byte(line + "\n")
	for len(data) > 0 {
		n, err := t.port.Write(data)
		if err != nil {
			return fmt.Errorf("writing %s: %w", t.name, err)
		}
		if n == 0 {
			return fmt.Errorf("writing %s: %w", t.name, io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// Close closes the port. Further calls return ErrClosed.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", t.name, err)
	}
	return nil
}
