package codec

import (
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// ComponentWriter пишет полезную нагрузку одного присутствующего компонента.
// Реализуется каждым видом пакета.
type ComponentWriter interface {
	WriteComponent(c mask.ComponentType, w *wire.Writer)
}

// ComponentWriterFunc адаптирует функцию к ComponentWriter.
type ComponentWriterFunc func(c mask.ComponentType, w *wire.Writer)

func (f ComponentWriterFunc) WriteComponent(c mask.ComponentType, w *wire.Writer) { f(c, w) }

// Emit пишет маску и затем все блоки плана. План с ошибкой объявления
// не пишется: Emit паникует с этой ошибкой.
func Emit(p *Plan, w *wire.Writer, cw ComponentWriter) {
	p.mustBeValid()
	p.WriteMask(w)
	EmitBlocks(p, w, cw)
}

// EmitBlocks пишет блоки по порядку: префикс длины, затем присутствующие
// компоненты блока по возрастанию бита. Каждый компонент обязан записать ровно
// объявленное число байт, иначе - panic(*LayoutError).
func EmitBlocks(p *Plan, w *wire.Writer, cw ComponentWriter) {
	for i := range p.layout.blocks {
		EmitBlock(p, i, w, cw)
	}
}

// EmitBlock пишет один блок; нужен пакетам, у которых между блоками идут фиксированные поля.
func EmitBlock(p *Plan, i int, w *wire.Writer, cw ComponentWriter) {
	p.mustBeValid()
	b := p.layout.blocks[i]
	kind := p.layout.table.Kind()
	length := p.lengths[i]

	switch b.Width {
	case LengthUint8:
		w.WriteUint8(uint8(length))
	case LengthUint16:
		w.WriteUint16(uint16(length))
	}

	start := w.Len()
	for _, c := range b.Components {
		if !p.mask.Contains(c) {
			continue
		}
		before := w.Len()
		cw.WriteComponent(c, w)
		if got := w.Len() - before; got != p.sizes[c.Bit] {
			layoutFault(kind, b.Name, "component %s wrote %d bytes, declared %d", c, got, p.sizes[c.Bit])
		}
	}
	if got := w.Len() - start; got != length {
		layoutFault(kind, b.Name, "block wrote %d bytes, length prefix %d", got, length)
	}
}

func (p *Plan) mustBeValid() {
	if p.err != nil {
		panic(p.err)
	}
}
