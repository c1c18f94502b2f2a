package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer возвращается, когда данных меньше, чем требует поле.
var ErrShortBuffer = errors.New("wire: short buffer")

// Reader - эталонный декодер исходящих пакетов. Используется в тестах и
// отладочных утилитах для проверки раскладки; входящие пакеты клиента
// этим слоем не разбираются.
//
// Ошибка «липкая»: после первой неудачи все чтения возвращают нули,
// проверять Err достаточно один раз в конце.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) Err() error     { return r.err }
func (r *Reader) Offset() int    { return r.off }
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d at offset %d, have %d", ErrShortBuffer, n, r.off, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) ReadInt16() int16 { return int16(r.ReadUint16()) }
func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }
func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }
func (r *Reader) ReadBool() bool   { return r.ReadUint8() != 0 }

func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUint32()) }

// ReadBytes возвращает следующие n байт (без копирования).
func (r *Reader) ReadBytes(n int) []byte { return r.take(n) }

// ReadString читает строку в формате Writer.WriteString.
func (r *Reader) ReadString() string {
	n := int(r.ReadUint16())
	raw := r.take(n * 2)
	if term := r.ReadUint16(); r.err == nil && term != 0 {
		r.err = fmt.Errorf("wire: string terminator is 0x%04x at offset %d", term, r.off-2)
	}
	if r.err != nil {
		return ""
	}
	s, err := DecodeText(raw)
	if err != nil {
		r.err = err
		return ""
	}
	return s
}
