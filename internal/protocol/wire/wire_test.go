package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLittleEndian(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0x21)
	w.WriteUint16(0x0102)
	w.WriteInt32(-2)
	w.WriteUint64(0x0807060504030201)

	assert.Equal(t, []byte{
		0x21,
		0x02, 0x01,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}, w.Bytes())
}

func TestStringLayout(t *testing.T) {
	w := NewWriter()
	w.WriteString("Ab")

	// count=2, 'A', 'b', terminator
	assert.Equal(t, []byte{0x02, 0x00, 'A', 0x00, 'b', 0x00, 0x00, 0x00}, w.Bytes())
	assert.Equal(t, StringSize("Ab"), w.Len())
}

func TestStringSizeCountsUTF16Units(t *testing.T) {
	assert.Equal(t, 4, StringSize(""))
	assert.Equal(t, 2+3*2+2, StringSize("Гор"))
	// символ вне BMP занимает суррогатную пару
	assert.Equal(t, 2+4+2, StringSize("😀"))
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteString("Эльф")
	w.WriteInt16(-7)
	w.WriteBool(true)
	w.WriteInt64(1 << 40)

	r := NewReader(w.Bytes())
	assert.Equal(t, "Эльф", r.ReadString())
	assert.Equal(t, int16(-7), r.ReadInt16())
	assert.True(t, r.ReadBool())
	assert.Equal(t, int64(1<<40), r.ReadInt64())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestReaderShortBufferIsSticky(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	assert.Equal(t, uint32(0), r.ReadUint32())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
	assert.Equal(t, uint8(0), r.ReadUint8())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderRejectsMissingTerminator(t *testing.T) {
	r := NewReader([]byte{0x01, 0x00, 'x', 0x00, 0x05, 0x00})
	assert.Equal(t, "", r.ReadString())
	assert.Error(t, r.Err())
}
