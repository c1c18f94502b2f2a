package world

import (
	"sync"
	"sync/atomic"

	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

// Npc - живой NPC. Пакет NpcInfo держит ссылку на Npc как на Presence:
// если NPC исчез до отправки, пакет не пишется.
type Npc struct {
	mu      sync.RWMutex
	view    packets.NpcView
	spawned atomic.Bool
}

// NewNpc создаёт NPC, ещё не появившийся в мире.
func NewNpc(objectID, templateID int32, name string) *Npc {
	return &Npc{view: packets.NpcView{
		ObjectID:       objectID,
		TemplateID:     templateID,
		Name:           name,
		AttackSpeed:    253,
		CastSpeed:      333,
		MoveMultiplier: 1,
		AtkMultiplier:  1,
	}}
}

func (n *Npc) ObjectID() int32  { return n.view.ObjectID }
func (n *Npc) Type() EntityType { return EntityTypeNPC }
func (n *Npc) IsSpawned() bool  { return n.spawned.Load() }

// Spawn помещает NPC в мир в точке x, y, z.
func (n *Npc) Spawn(x, y, z, heading int32) {
	n.update(func(v *packets.NpcView) {
		v.X, v.Y, v.Z, v.Heading = x, y, z, heading
	})
	n.spawned.Store(true)
}

// Despawn убирает NPC из мира; ещё не отправленные NpcInfo станут пустыми.
func (n *Npc) Despawn() { n.spawned.Store(false) }

func (n *Npc) update(fn func(v *packets.NpcView)) {
	n.mu.Lock()
	fn(&n.view)
	n.mu.Unlock()
}

func (n *Npc) MoveTo(x, y, z int32) {
	n.update(func(v *packets.NpcView) { v.X, v.Y, v.Z = x, y, z })
}

func (n *Npc) SetTitle(title string) { n.update(func(v *packets.NpcView) { v.Title = title }) }

func (n *Npc) SetTeam(team uint8) { n.update(func(v *packets.NpcView) { v.Team = team }) }

func (n *Npc) SetAttackable(a bool) { n.update(func(v *packets.NpcView) { v.Attackable = a }) }

func (n *Npc) SetRunning(r bool) { n.update(func(v *packets.NpcView) { v.Running = r }) }

// SetHP задаёт текущее и максимальное HP.
func (n *Npc) SetHP(cur, maxHP int32) {
	n.update(func(v *packets.NpcView) { v.CurrentHP, v.MaxHP = cur, maxHP })
}

func (n *Npc) SetMP(cur, maxMP int32) {
	n.update(func(v *packets.NpcView) { v.CurrentMP, v.MaxMP = cur, maxMP })
}

// Equip задаёт видимое снаряжение NPC.
func (n *Npc) Equip(rightHand, chest, leftHand int32) {
	n.update(func(v *packets.NpcView) { v.RightHand, v.Chest, v.LeftHand = rightHand, chest, leftHand })
}

func (n *Npc) SetClan(clanID, crestID int32) {
	n.update(func(v *packets.NpcView) { v.ClanID, v.ClanCrestID = clanID, crestID })
}

// AddAbnormal добавляет видимый эффект.
func (n *Npc) AddAbnormal(id int32) {
	n.update(func(v *packets.NpcView) { v.Abnormals = append(v.Abnormals, id) })
}

// View возвращает копию состояния.
func (n *Npc) View() packets.NpcView {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v := n.view
	v.Abnormals = append([]int32(nil), n.view.Abnormals...)
	return v
}

// InfoPacket строит NpcInfo из текущего состояния.
func (n *Npc) InfoPacket(spawnAnimation bool) *packets.NpcInfo {
	return packets.NewNpcInfo(n, n.View(), spawnAnimation)
}
