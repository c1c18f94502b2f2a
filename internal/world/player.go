package world

import (
	"sync"
	"sync/atomic"

	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// Player - персонаж игрока со своим инвентарём.
type Player struct {
	mu     sync.RWMutex
	view   packets.UserView
	online atomic.Bool

	Inventory *Inventory
}

// NewPlayer создаёт персонажа; изменения инвентаря уходят в recorder.
func NewPlayer(objectID int32, name string, recorder ChangeRecorder) *Player {
	p := &Player{view: packets.UserView{
		ObjectID:       objectID,
		Name:           name,
		Level:          1,
		MoveMultiplier: 1,
		AtkMultiplier:  1,
		Elementals:     elementalsNone(),
	}}
	p.Inventory = NewInventory(objectID, recorder)
	return p
}

func (p *Player) ObjectID() int32  { return p.view.ObjectID }
func (p *Player) Type() EntityType { return EntityTypePlayer }
func (p *Player) IsSpawned() bool  { return p.online.Load() }

// EnterWorld отмечает персонажа в игре.
func (p *Player) EnterWorld() { p.online.Store(true) }

// Logout убирает персонажа из мира.
func (p *Player) Logout() { p.online.Store(false) }

// Update изменяет состояние персонажа под мьютексом.
func (p *Player) Update(fn func(v *packets.UserView)) {
	p.mu.Lock()
	fn(&p.view)
	p.mu.Unlock()
}

// View возвращает копию состояния.
func (p *Player) View() packets.UserView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// InfoPacket строит UserInfo из текущего состояния.
func (p *Player) InfoPacket() *packets.UserInfo {
	return packets.NewUserInfo(p, p.View())
}

func elementalsNone() item.Elementals {
	return item.Elementals{AttackType: item.ElementNone}
}
