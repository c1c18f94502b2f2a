package network

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

func TestCaptureRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	var forwarded int
	c, err := NewCapture(&buf, "player-1", TransportFunc(func([]byte) error {
		forwarded++
		return nil
	}))
	require.NoError(t, err)
	base := time.Unix(1700000000, 0)
	c.now = func() time.Time { return base }

	out := NewOutbound("player-1", c, nil)
	up := packets.NewInventoryUpdate([]packets.InventoryChange{
		{Kind: packets.ChangeAdd, Item: item.Snapshot{ObjectID: 9, Count: 1}},
	})
	require.NoError(t, out.Send(up))
	require.NoError(t, c.SendPacket([]byte{0x01, 0x02}))
	assert.Equal(t, 2, c.Frames())
	require.NoError(t, c.Close())

	want, err := packets.Encode(up)
	require.NoError(t, err)

	session, frames, err := ReadCapture(&buf)
	require.NoError(t, err)
	assert.Equal(t, "player-1", session)
	require.Len(t, frames, 2)
	assert.Equal(t, want, frames[0].Data)
	assert.Equal(t, []byte{0x01, 0x02}, frames[1].Data)
	assert.True(t, frames[0].At.Equal(base))
	assert.Equal(t, 2, forwarded)
}

func TestCaptureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.wcap")
	c, err := CreateCapture(path, "s", nil)
	require.NoError(t, err)
	require.NoError(t, c.SendPacket([]byte{0x21, 0x00, 0x00}))
	require.NoError(t, c.Close())

	session, frames, err := ReadCaptureFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s", session)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x21, 0x00, 0x00}, frames[0].Data)
}

func TestCaptureForwardsTransportError(t *testing.T) {
	boom := errors.New("closed")
	c, err := NewCapture(&bytes.Buffer{}, "s", TransportFunc(func([]byte) error { return boom }))
	require.NoError(t, err)
	assert.ErrorIs(t, c.SendPacket([]byte{1}), boom)
	// кадр уже записан: захват показывает, что пыталась отправить сессия
	assert.Equal(t, 1, c.Frames())
}

func TestReadCaptureRejectsForeignStream(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewCapture(&buf, "s", nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// поток без заголовка
	_, _, err = ReadCapture(bytes.NewReader(nil))
	assert.Error(t, err)

	raw := buf.Bytes()
	_, _, err = ReadCapture(bytes.NewReader(raw[:len(raw)/2]))
	assert.Error(t, err)
}
