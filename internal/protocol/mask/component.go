// Package mask описывает необязательные компоненты пакетов и битовые маски их присутствия.
package mask

import "fmt"

// Variable - размер компонента, который известен только после вычисления данных (строки, списки).
const Variable = -1

// ComponentType - статическое описание одного необязательного поля пакета.
// Kind - имя таблицы (вида пакета), которой принадлежит компонент.
type ComponentType struct {
	Kind string
	Name string
	Bit  int
	Size int
}

// IsVariable сообщает, вычисляется ли размер компонента для каждого экземпляра.
func (c ComponentType) IsVariable() bool { return c.Size == Variable }

func (c ComponentType) String() string {
	return fmt.Sprintf("%s.%s(bit %d)", c.Kind, c.Name, c.Bit)
}

// Table - закрытый перечень компонентов одного вида пакета, упорядоченный по возрастанию бита.
// Порядок таблицы - единственный допустимый порядок вывода компонентов.
type Table struct {
	kind       string
	components []ComponentType
}

// NewTable создаёт таблицу. Биты должны идти подряд с нуля, Kind каждого
// компонента совпадать с kind таблицы; иначе - паника (ошибка раскладки на этапе инициализации).
func NewTable(kind string, components ...ComponentType) *Table {
	for i, c := range components {
		if c.Kind != kind {
			panic(fmt.Sprintf("mask: component %s declared in table %q", c, kind))
		}
		if c.Bit != i {
			panic(fmt.Sprintf("mask: component %s out of order, expected bit %d", c, i))
		}
		if c.Size < 0 && c.Size != Variable {
			panic(fmt.Sprintf("mask: component %s has invalid size %d", c, c.Size))
		}
	}
	cp := make([]ComponentType, len(components))
	copy(cp, components)
	return &Table{kind: kind, components: cp}
}

// Kind возвращает имя вида пакета.
func (t *Table) Kind() string { return t.kind }

// Len возвращает число компонентов.
func (t *Table) Len() int { return len(t.components) }

// MaskLen возвращает длину маски в байтах: ceil(Len/8).
func (t *Table) MaskLen() int { return (len(t.components) + 7) / 8 }

// Component возвращает компонент по номеру бита.
func (t *Table) Component(bit int) ComponentType { return t.components[bit] }

// Components возвращает копию перечня в порядке возрастания бита.
func (t *Table) Components() []ComponentType {
	cp := make([]ComponentType, len(t.components))
	copy(cp, t.components)
	return cp
}

// Owns сообщает, принадлежит ли компонент этой таблице.
func (t *Table) Owns(c ComponentType) bool {
	return c.Bit >= 0 && c.Bit < len(t.components) && t.components[c.Bit] == c
}

// ForeignComponentError - попытка объявить компонент чужого вида пакета.
// Это ошибка программиста, поэтому передаётся через panic.
type ForeignComponentError struct {
	Table     string
	Component ComponentType
}

func (e *ForeignComponentError) Error() string {
	return fmt.Sprintf("mask: component %s is not defined for %q", e.Component, e.Table)
}
