// Package wire содержит приёмник байтов для исходящих пакетов и эталонный
// декодер для проверки раскладки. Все целые пишутся в little-endian -
// порядок байтов клиента.
package wire

import (
	"encoding/binary"
	"math"
)

// Writer накапливает байты пакета во внутреннем буфере.
// Не потокобезопасен: один Writer - один пакет.
type Writer struct {
	buf []byte
}

// NewWriter создаёт writer с начальной ёмкостью 256 байт.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// NewWriterWithCap создаёт writer с указанной ёмкостью.
func NewWriterWithCap(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n)}
}

// Bytes возвращает записанные байты. Срез действителен до следующей записи.
func (w *Writer) Bytes() []byte { return w.buf }

// Len возвращает число записанных байт.
func (w *Writer) Len() int { return len(w.buf) }

// WriteUint8 пишет один байт.
func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteBool пишет 0x01/0x00.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) WriteUint16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *Writer) WriteUint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) WriteUint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 пишет число в формате IEEE 754 binary32.
func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

// WriteBytes пишет сырые байты.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteString пишет строку: uint16 число символов UTF-16, сами символы
// по 2 байта и завершающий нулевой символ.
func (w *Writer) WriteString(s string) {
	units := EncodeText(s)
	if len(units)/2 > 0xFFFF {
		panic("wire: string too long for 16-bit length prefix")
	}
	w.WriteUint16(uint16(len(units) / 2))
	w.buf = append(w.buf, units...)
	w.WriteUint16(0)
}

// StringSize возвращает число байт, которое займёт s после WriteString.
func StringSize(s string) int {
	return 2 + TextSize(s) + 2
}
