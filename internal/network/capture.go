package network

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// Формат файла захвата - zstd-поток:
// [4 "WCAP"][u16 версия][строка сессии], далее кадры [i64 unix nano][u32 len][байты пакета].
var captureMagic = []byte("WCAP")

const captureVersion = 1

// ErrBadCapture - поток не является захватом пакетов.
var ErrBadCapture = errors.New("not a packet capture")

// CapturedPacket - один кадр захвата.
type CapturedPacket struct {
	At   time.Time
	Data []byte
}

// Capture - Transport, который пишет каждый исходящий пакет в сжатый
// файл захвата и затем передаёт его дальше (next может быть nil).
type Capture struct {
	mu     sync.Mutex
	enc    *zstd.Encoder
	file   io.Closer
	next   Transport
	frames int
	now    func() time.Time
}

// NewCapture начинает захват в out.
func NewCapture(out io.Writer, session string, next Transport) (*Capture, error) {
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	w := wire.NewWriter()
	w.WriteBytes(captureMagic)
	w.WriteUint16(captureVersion)
	w.WriteString(session)
	if _, err := enc.Write(w.Bytes()); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &Capture{enc: enc, next: next, now: time.Now}, nil
}

// CreateCapture создаёт файл захвата по пути path.
func CreateCapture(path, session string, next Transport) (*Capture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCapture(f, session, next)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.file = f
	return c, nil
}

// SendPacket записывает кадр и передаёт пакет следующему транспорту.
func (c *Capture) SendPacket(data []byte) error {
	w := wire.NewWriterWithCap(12 + len(data))
	w.WriteInt64(c.now().UnixNano())
	w.WriteUint32(uint32(len(data)))
	w.WriteBytes(data)

	c.mu.Lock()
	_, err := c.enc.Write(w.Bytes())
	if err == nil {
		c.frames++
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("capture frame: %w", err)
	}

	if c.next != nil {
		return c.next.SendPacket(data)
	}
	return nil
}

// Frames возвращает число записанных кадров.
func (c *Capture) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Close дописывает zstd-поток и закрывает файл, если он открыт через CreateCapture.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.enc.Close()
	if c.file != nil {
		if cerr := c.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadCapture разбирает захват целиком.
func ReadCapture(r io.Reader) (string, []CapturedPacket, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return "", nil, fmt.Errorf("decompress capture: %w", err)
	}

	rd := wire.NewReader(data)
	if string(rd.ReadBytes(len(captureMagic))) != string(captureMagic) || rd.ReadUint16() != captureVersion {
		return "", nil, ErrBadCapture
	}
	session := rd.ReadString()

	var frames []CapturedPacket
	for rd.Err() == nil && rd.Remaining() > 0 {
		at := rd.ReadInt64()
		n := rd.ReadUint32()
		payload := rd.ReadBytes(int(n))
		if rd.Err() != nil {
			break
		}
		frames = append(frames, CapturedPacket{At: time.Unix(0, at), Data: append([]byte(nil), payload...)})
	}
	if err := rd.Err(); err != nil {
		return session, frames, fmt.Errorf("truncated capture after %d frames: %w", len(frames), err)
	}
	return session, frames, nil
}

// ReadCaptureFile - ReadCapture для файла.
func ReadCaptureFile(path string) (string, []CapturedPacket, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	return ReadCapture(f)
}
