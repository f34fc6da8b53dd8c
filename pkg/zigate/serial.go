package zigate

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// SerialPort wraps a serial connection to the ZigBee coordinator dongle.
type SerialPort struct {
	port serial.Port
	mu   sync.Mutex
}

// OpenSerial opens the serial port at 115200 baud, 8N1 — the fixed
// rate the coordinator's UART runs at.
func OpenSerial(portPath string) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	log.Info().Str("port", portPath).Msg("Serial port opened")

	return &SerialPort{port: port}, nil
}

// Write sends raw bytes to the serial port. Guarded by a mutex so a
// full frame written by the coordinator's request path can't interleave
// with another caller's write.
func (s *SerialPort) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(data)
}

// Read reads raw bytes from the serial port.
func (s *SerialPort) Read(buf []byte) (int, error) {
	return s.port.Read(buf)
}

// Close closes the serial port.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// ReadByte reads a single byte from the serial port, blocking until one
// arrives. The receiver loop assembles frames byte by byte between the
// 0x01/0x03 markers.
func (s *SerialPort) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	_, err := io.ReadFull(s.port, buf)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}
