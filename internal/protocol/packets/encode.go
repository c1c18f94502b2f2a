package packets

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/mmo-wire/internal/logging"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// ErrDropped - пакет не закодирован из-за ошибки раскладки и отброшен.
// Сессия при этом продолжает работу.
var ErrDropped = errors.New("packets: packet dropped")

// DropError описывает отброшенный пакет. ID совпадает с идентификатором в логе.
type DropError struct {
	Packet string
	ID     uuid.UUID
	Cause  interface{}
}

func (e *DropError) Error() string {
	return fmt.Sprintf("packets: %s dropped [%s]: %v", e.Packet, e.ID, e.Cause)
}

// Is позволяет сравнивать с ErrDropped через errors.Is.
func (e *DropError) Is(target error) bool { return target == ErrDropped }

// Encode - единственная внешняя точка кодирования пакета.
//
// Возвращает байты пакета; nil без ошибки, если пакет устарел. Любая panic при
// записи (ошибка раскладки, чужой компонент) перехватывается, пишется в лог с
// именем пакета и превращается в *DropError.
func Encode(p ServerPacket) (data []byte, err error) {
	w := wire.NewWriter()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		drop := &DropError{Packet: p.Name(), ID: uuid.New(), Cause: r}
		log := logging.GetProtocolLogger()
		log.Error("пакет %s отброшен [%s]: %v", drop.Packet, drop.ID, r)
		log.Debug("записано до ошибки (%d байт):\n%s", w.Len(), logging.HexDump(w.Bytes()))
		data, err = nil, drop
	}()

	if !p.Write(w) {
		logging.GetProtocolLogger().Trace("пакет %s устарел, отправка пропущена", p.Name())
		return nil, nil
	}
	return w.Bytes(), nil
}
