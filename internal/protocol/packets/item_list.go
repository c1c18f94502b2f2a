package packets

import (
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

// ItemList - полный список инвентаря:
// [0x11][u16 showWindow][u16 count][item record]*.
type ItemList struct {
	ShowWindow bool
	Items      []item.Snapshot
}

func (p *ItemList) Name() string { return "ItemList" }

func (p *ItemList) Write(w *wire.Writer) bool {
	writeOpcode(w, OpcodeItemList)
	if p.ShowWindow {
		w.WriteUint16(1)
	} else {
		w.WriteUint16(0)
	}
	writeCount(w, p.Name(), len(p.Items))
	for i := range p.Items {
		item.Write(w, &p.Items[i])
	}
	return true
}

// ExQuestItemList - список квестовых предметов, расширенный пакет:
// [0xFE][u16 0x00C6][u16 count][item record]*.
type ExQuestItemList struct {
	Items []item.Snapshot
}

func (p *ExQuestItemList) Name() string { return "ExQuestItemList" }

func (p *ExQuestItemList) Write(w *wire.Writer) bool {
	writeExOpcode(w, ExOpcodeQuestItemList)
	writeCount(w, p.Name(), len(p.Items))
	for i := range p.Items {
		item.Write(w, &p.Items[i])
	}
	return true
}
