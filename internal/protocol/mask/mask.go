package mask

// Set - маска присутствия компонентов одного экземпляра пакета.
// Компонент k - бит (k % 8) байта (k / 8).
type Set struct {
	table *Table
	bits  []byte
}

// NewSet создаёт пустую маску для таблицы.
func NewSet(t *Table) *Set {
	return &Set{table: t, bits: make([]byte, t.MaskLen())}
}

// Table возвращает таблицу, которой принадлежит маска.
func (s *Set) Table() *Table { return s.table }

// Add отмечает компонент присутствующим. Возвращает true, если он не был отмечен раньше.
// Повторный вызов ничего не меняет. Компонент чужой таблицы - panic(*ForeignComponentError).
func (s *Set) Add(c ComponentType) bool {
	if !s.table.Owns(c) {
		panic(&ForeignComponentError{Table: s.table.kind, Component: c})
	}
	idx, bit := c.Bit/8, byte(1)<<(c.Bit%8)
	if s.bits[idx]&bit != 0 {
		return false
	}
	s.bits[idx] |= bit
	return true
}

// Contains сообщает, присутствует ли компонент.
func (s *Set) Contains(c ComponentType) bool {
	if !s.table.Owns(c) {
		return false
	}
	return s.bits[c.Bit/8]&(1<<(c.Bit%8)) != 0
}

// Bytes возвращает копию байтов маски фиксированной длины Table.MaskLen().
// Результат зависит только от набора объявленных компонентов, не от порядка объявления.
func (s *Set) Bytes() []byte {
	cp := make([]byte, len(s.bits))
	copy(cp, s.bits)
	return cp
}

// Count возвращает число присутствующих компонентов.
func (s *Set) Count() int {
	n := 0
	for _, b := range s.bits {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

// Each вызывает fn для присутствующих компонентов по возрастанию бита.
func (s *Set) Each(fn func(ComponentType)) {
	for _, c := range s.table.components {
		if s.bits[c.Bit/8]&(1<<(c.Bit%8)) != 0 {
			fn(c)
		}
	}
}

// FromBytes восстанавливает маску из байтов (для эталонного декодера).
// Лишние биты за пределами таблицы игнорируются.
func FromBytes(t *Table, b []byte) *Set {
	s := NewSet(t)
	copy(s.bits, b)
	if rem := t.Len() % 8; rem != 0 && len(s.bits) > 0 {
		s.bits[len(s.bits)-1] &= byte(1)<<rem - 1
	}
	return s
}
