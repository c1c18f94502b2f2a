package codec

import (
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// Plan - результат фазы объявления: маска и точные длины блоков.
// Длина учитывается в момент объявления компонента, а не при записи.
//
// Ошибки, зависящие от данных (переполнение префикса, отказ через Reject),
// не паникуют при объявлении: план запоминает первую из них, и Emit
// паникует с ней уже внутри packets.Encode. Ошибки вызывающего кода
// (чужой компонент, неверный размер) паникуют сразу.
type Plan struct {
	layout  *Layout
	mask    *mask.Set
	sizes   []int // бит -> объявленный размер компонента
	lengths []int // блок -> сумма размеров присутствующих компонентов
	err     *LayoutError
}

// NewPlan создаёт пустой план для раскладки.
func NewPlan(l *Layout) *Plan {
	return &Plan{
		layout:  l,
		mask:    mask.NewSet(l.table),
		sizes:   make([]int, l.table.Len()),
		lengths: make([]int, len(l.blocks)),
	}
}

func (p *Plan) Layout() *Layout { return p.layout }

// Add объявляет компонент фиксированного размера. Повторное объявление ничего не меняет.
func (p *Plan) Add(c mask.ComponentType) {
	if c.IsVariable() {
		layoutFault(p.layout.table.Kind(), "", "component %s is variable-sized, use AddSized", c)
	}
	p.declare(c, c.Size)
}

// AddSized объявляет компонент переменного размера с уже вычисленной длиной.
// Повторное объявление (с любым размером) ничего не меняет; для правки длины есть Amend.
func (p *Plan) AddSized(c mask.ComponentType, size int) {
	if !c.IsVariable() && size != c.Size {
		layoutFault(p.layout.table.Kind(), "", "component %s has fixed size %d, declared %d", c, c.Size, size)
	}
	if size < 0 {
		layoutFault(p.layout.table.Kind(), "", "component %s declared with negative size %d", c, size)
	}
	p.declare(c, size)
}

// AddIf объявляет компонент фиксированного размера, если cond истинно.
func (p *Plan) AddIf(cond bool, c mask.ComponentType) {
	if cond {
		p.Add(c)
	}
}

func (p *Plan) declare(c mask.ComponentType, size int) {
	bi := p.layout.BlockOf(c) // паникует на чужом компоненте
	if !p.mask.Add(c) {
		return
	}
	p.sizes[c.Bit] = size
	p.lengths[bi] += size
	p.checkOverflow(bi)
}

func (p *Plan) checkOverflow(bi int) {
	b := p.layout.blocks[bi]
	if p.lengths[bi] > b.Width.max() {
		p.Reject(b.Name, "length %d overflows %d-byte prefix", p.lengths[bi], b.Width)
	}
}

// Reject помечает план ошибочным. Сохраняется только первая ошибка; запись
// такого плана паникует с ней.
func (p *Plan) Reject(block, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = newLayoutError(p.layout.table.Kind(), block, format, args...)
}

// Err возвращает первую ошибку объявления или nil.
func (p *Plan) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// Amend корректирует объявленный размер уже присутствующего компонента на delta
// байт (например, после подстановки локализованного имени другой длины).
// Меняет и размер компонента, и длину его блока. Это единственный законный
// способ изменить длину после объявления.
func (p *Plan) Amend(c mask.ComponentType, delta int) {
	if !p.mask.Contains(c) {
		layoutFault(p.layout.table.Kind(), "", "amend of undeclared component %s", c)
	}
	if !c.IsVariable() && delta != 0 {
		layoutFault(p.layout.table.Kind(), "", "amend of fixed-size component %s by %d", c, delta)
	}
	bi := p.layout.blockOf[c.Bit]
	b := p.layout.blocks[bi]
	size := p.sizes[c.Bit] + delta
	if size < 0 {
		layoutFault(p.layout.table.Kind(), b.Name, "component %s amended to negative size %d", c, size)
	}
	p.sizes[c.Bit] = size
	p.lengths[bi] += delta
	p.checkOverflow(bi)
}

// Contains сообщает, объявлен ли компонент.
func (p *Plan) Contains(c mask.ComponentType) bool { return p.mask.Contains(c) }

// ComponentSize возвращает объявленный размер компонента (0, если не объявлен).
func (p *Plan) ComponentSize(c mask.ComponentType) int {
	if !p.mask.Contains(c) {
		return 0
	}
	return p.sizes[c.Bit]
}

// BlockLength возвращает длину блока i - значение его префикса.
func (p *Plan) BlockLength(i int) int { return p.lengths[i] }

// Mask возвращает байты маски.
func (p *Plan) Mask() []byte { return p.mask.Bytes() }

// Set возвращает маску присутствия.
func (p *Plan) Set() *mask.Set { return p.mask }

// EncodedSize - сколько байт запишет Emit: маска плюс все блоки с префиксами.
func (p *Plan) EncodedSize() int {
	n := p.layout.table.MaskLen()
	for i, b := range p.layout.blocks {
		n += int(b.Width) + p.lengths[i]
	}
	return n
}

// WriteMask пишет байты маски.
func (p *Plan) WriteMask(w *wire.Writer) {
	w.WriteBytes(p.mask.Bytes())
}
