// Package codec реализует общую дисциплину условных полей: пакет объявляет
// присутствующие компоненты (и сразу учитывает их размер в длине блока),
// а затем Emit пишет маску, префиксы длины и полезную нагрузку компонентов
// строго по возрастанию бита.
//
// Работа идёт в две фазы: Plan (маска + длины блоков) строится целиком до
// записи первого байта, Emit(plan, writer) от плана только читает.
package codec

import (
	"fmt"
	"sort"

	"github.com/annel0/mmo-wire/internal/protocol/mask"
)

// LengthWidth - ширина префикса длины блока в байтах.
type LengthWidth int

const (
	LengthNone   LengthWidth = 0 // блок без префикса (например, хвост записи предмета)
	LengthUint8  LengthWidth = 1
	LengthUint16 LengthWidth = 2
)

func (lw LengthWidth) max() int {
	switch lw {
	case LengthUint8:
		return 0xFF
	case LengthUint16:
		return 0xFFFF
	default:
		return int(^uint(0) >> 1)
	}
}

// Block - подмножество компонентов, записываемое одним отрезком с общим префиксом длины.
type Block struct {
	Name       string
	Width      LengthWidth
	Components []mask.ComponentType
}

// Layout - раскладка вида пакета: таблица компонентов и её разбиение на блоки.
// Создаётся один раз на вид пакета (обычно в var-блоке пакета) и дальше только читается.
type Layout struct {
	table   *mask.Table
	blocks  []Block
	blockOf []int // бит -> индекс блока
}

// NewLayout проверяет, что каждый компонент таблицы входит ровно в один блок,
// и упорядочивает компоненты блоков по возрастанию бита. Нарушение - panic.
func NewLayout(t *mask.Table, blocks ...Block) *Layout {
	if len(blocks) == 0 {
		panic(fmt.Sprintf("codec: layout %q has no blocks", t.Kind()))
	}
	l := &Layout{table: t, blocks: make([]Block, len(blocks)), blockOf: make([]int, t.Len())}
	for i := range l.blockOf {
		l.blockOf[i] = -1
	}
	for bi, b := range blocks {
		switch b.Width {
		case LengthNone, LengthUint8, LengthUint16:
		default:
			panic(fmt.Sprintf("codec: block %q has unsupported length width %d", b.Name, b.Width))
		}
		comps := append([]mask.ComponentType(nil), b.Components...)
		sort.Slice(comps, func(i, j int) bool { return comps[i].Bit < comps[j].Bit })
		for _, c := range comps {
			if !t.Owns(c) {
				panic(&mask.ForeignComponentError{Table: t.Kind(), Component: c})
			}
			if l.blockOf[c.Bit] != -1 {
				panic(fmt.Sprintf("codec: component %s assigned to two blocks", c))
			}
			l.blockOf[c.Bit] = bi
		}
		b.Components = comps
		l.blocks[bi] = b
	}
	for bit, bi := range l.blockOf {
		if bi == -1 {
			panic(fmt.Sprintf("codec: component %s belongs to no block", t.Component(bit)))
		}
	}
	return l
}

// SingleBlock - раскладка, в которой все компоненты таблицы идут одним блоком.
func SingleBlock(t *mask.Table, name string, width LengthWidth) *Layout {
	return NewLayout(t, Block{Name: name, Width: width, Components: t.Components()})
}

func (l *Layout) Table() *mask.Table { return l.table }
func (l *Layout) Blocks() int        { return len(l.blocks) }
func (l *Layout) Block(i int) Block  { return l.blocks[i] }

// BlockOf возвращает индекс блока компонента.
func (l *Layout) BlockOf(c mask.ComponentType) int {
	if !l.table.Owns(c) {
		panic(&mask.ForeignComponentError{Table: l.table.Kind(), Component: c})
	}
	return l.blockOf[c.Bit]
}

// LayoutError - нарушение учёта длин или раскладки. Такие ошибки ломают
// разбор у клиента, поэтому передаются через panic и ловятся только на
// внешней точке кодирования пакета.
type LayoutError struct {
	Kind   string
	Block  string
	Reason string
}

func (e *LayoutError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("codec: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("codec: %s/%s: %s", e.Kind, e.Block, e.Reason)
}

func newLayoutError(kind, block, format string, args ...interface{}) *LayoutError {
	return &LayoutError{Kind: kind, Block: block, Reason: fmt.Sprintf(format, args...)}
}

func layoutFault(kind, block, format string, args ...interface{}) {
	panic(newLayoutError(kind, block, format, args...))
}
