// Package packets содержит исходящие пакеты сервера. Каждый вид пакета сам
// знает свою таблицу компонентов, свой план и запись полезной нагрузки;
// общий порядок записи задаёт codec.
package packets

import (
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// Opcode - однобайтовый код пакета.
type Opcode uint8

// Коды пакетов сервер → клиент.
const (
	OpcodeNpcInfo         Opcode = 0x0C
	OpcodeItemList        Opcode = 0x11
	OpcodeInventoryUpdate Opcode = 0x21
	OpcodeUserInfo        Opcode = 0x32

	// OpcodeExtended - за ним следует 2-байтовый подкод.
	OpcodeExtended Opcode = 0xFE
)

// Подкоды расширенных пакетов.
const (
	ExOpcodeQuestItemList uint16 = 0x00C6
)

// ServerPacket - исходящий пакет.
//
// Write пишет пакет целиком, начиная с кода. false означает, что субъект
// пакета уже исчез из мира: пакет устарел и отправлять нечего.
type ServerPacket interface {
	Name() string
	Write(w *wire.Writer) bool
}

// MaskedPacket - пакет с условными полями: таблица компонентов вида,
// план, вычисленный при создании, и запись каждого компонента.
type MaskedPacket interface {
	ServerPacket
	codec.ComponentWriter
	Table() *mask.Table
	Plan() *codec.Plan
}

// Presence сообщает, находится ли субъект пакета в мире.
type Presence interface {
	IsSpawned() bool
}

func writeOpcode(w *wire.Writer, op Opcode) {
	w.WriteUint8(uint8(op))
}

func writeExOpcode(w *wire.Writer, sub uint16) {
	w.WriteUint8(uint8(OpcodeExtended))
	w.WriteUint16(sub)
}

// writeCount пишет 16-битный счётчик записей; больше 0xFFFF записей в один
// пакет не помещается.
func writeCount(w *wire.Writer, kind string, n int) {
	if n > 0xFFFF {
		panic(&codec.LayoutError{Kind: kind, Reason: "record count exceeds 16-bit counter"})
	}
	w.WriteUint16(uint16(n))
}
