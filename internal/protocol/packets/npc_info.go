package packets

import (
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

const npcKind = "NpcInfo"

// Компоненты NpcInfo.
var (
	npcAttackable     = mask.ComponentType{Kind: npcKind, Name: "Attackable", Bit: 0, Size: 1}
	npcRelativeHeight = mask.ComponentType{Kind: npcKind, Name: "RelativeHeight", Bit: 1, Size: 4}
	npcTemplateID     = mask.ComponentType{Kind: npcKind, Name: "TemplateID", Bit: 2, Size: 4}
	npcPosition       = mask.ComponentType{Kind: npcKind, Name: "Position", Bit: 3, Size: 12}
	npcHeading        = mask.ComponentType{Kind: npcKind, Name: "Heading", Bit: 4, Size: 4}
	npcSpeed          = mask.ComponentType{Kind: npcKind, Name: "AtkCastSpeed", Bit: 5, Size: 8}
	npcMultipliers    = mask.ComponentType{Kind: npcKind, Name: "SpeedMultiplier", Bit: 6, Size: 8}
	npcEquipment      = mask.ComponentType{Kind: npcKind, Name: "Equipment", Bit: 7, Size: 12}
	npcStopMode       = mask.ComponentType{Kind: npcKind, Name: "StopMode", Bit: 8, Size: 1}
	npcRunning        = mask.ComponentType{Kind: npcKind, Name: "Running", Bit: 9, Size: 1}
	npcTeam           = mask.ComponentType{Kind: npcKind, Name: "Team", Bit: 10, Size: 1}
	npcEnchant        = mask.ComponentType{Kind: npcKind, Name: "Enchant", Bit: 11, Size: 4}
	npcTransformation = mask.ComponentType{Kind: npcKind, Name: "Transformation", Bit: 12, Size: 4}
	npcCurrentHP      = mask.ComponentType{Kind: npcKind, Name: "CurrentHP", Bit: 13, Size: 4}
	npcCurrentMP      = mask.ComponentType{Kind: npcKind, Name: "CurrentMP", Bit: 14, Size: 4}
	npcMaxHP          = mask.ComponentType{Kind: npcKind, Name: "MaxHP", Bit: 15, Size: 4}
	npcMaxMP          = mask.ComponentType{Kind: npcKind, Name: "MaxMP", Bit: 16, Size: 4}
	npcSummoned       = mask.ComponentType{Kind: npcKind, Name: "Summoned", Bit: 17, Size: 1}
	npcTitle          = mask.ComponentType{Kind: npcKind, Name: "Title", Bit: 18, Size: mask.Variable}
	npcNameStringID   = mask.ComponentType{Kind: npcKind, Name: "NameStringID", Bit: 19, Size: 4}
	npcPvPFlag        = mask.ComponentType{Kind: npcKind, Name: "PvPFlag", Bit: 20, Size: 1}
	npcReputation     = mask.ComponentType{Kind: npcKind, Name: "Reputation", Bit: 21, Size: 4}
	npcClan           = mask.ComponentType{Kind: npcKind, Name: "Clan", Bit: 22, Size: 16}
	npcName           = mask.ComponentType{Kind: npcKind, Name: "Name", Bit: 23, Size: mask.Variable}
	npcAbnormals      = mask.ComponentType{Kind: npcKind, Name: "Abnormals", Bit: 24, Size: mask.Variable}

	// NpcTable - закрытый перечень компонентов NpcInfo (25 компонентов, 4 байта маски).
	NpcTable = mask.NewTable(npcKind,
		npcAttackable, npcRelativeHeight, npcTemplateID, npcPosition, npcHeading,
		npcSpeed, npcMultipliers, npcEquipment, npcStopMode, npcRunning,
		npcTeam, npcEnchant, npcTransformation, npcCurrentHP, npcCurrentMP,
		npcMaxHP, npcMaxMP, npcSummoned, npcTitle, npcNameStringID,
		npcPvPFlag, npcReputation, npcClan, npcName, npcAbnormals,
	)

	npcLayout = codec.NewLayout(NpcTable,
		codec.Block{
			Name:       "header",
			Width:      codec.LengthUint8,
			Components: []mask.ComponentType{npcAttackable, npcRelativeHeight},
		},
		codec.Block{
			Name:  "body",
			Width: codec.LengthUint16,
			Components: []mask.ComponentType{
				npcTemplateID, npcPosition, npcHeading, npcSpeed, npcMultipliers,
				npcEquipment, npcStopMode, npcRunning, npcTeam, npcEnchant,
				npcTransformation, npcCurrentHP, npcCurrentMP, npcMaxHP, npcMaxMP,
				npcSummoned, npcTitle, npcNameStringID, npcPvPFlag, npcReputation,
				npcClan, npcName, npcAbnormals,
			},
		},
	)
)

// NpcView - снимок NPC для одного пакета.
type NpcView struct {
	ObjectID       int32   `yaml:"object_id"`
	TemplateID     int32   `yaml:"template_id"`
	Attackable     bool    `yaml:"attackable"`
	RelativeHeight int32   `yaml:"relative_height"`
	X              int32   `yaml:"x"`
	Y              int32   `yaml:"y"`
	Z              int32   `yaml:"z"`
	Heading        int32   `yaml:"heading"`
	AttackSpeed    int32   `yaml:"attack_speed"`
	CastSpeed      int32   `yaml:"cast_speed"`
	MoveMultiplier float32 `yaml:"move_multiplier"`
	AtkMultiplier  float32 `yaml:"atk_multiplier"`
	RightHand      int32   `yaml:"right_hand"`
	Chest          int32   `yaml:"chest"`
	LeftHand       int32   `yaml:"left_hand"`
	Stopped        bool    `yaml:"stopped"`
	Running        bool    `yaml:"running"`
	Team           uint8   `yaml:"team"`
	WeaponEnchant  int32   `yaml:"weapon_enchant"`
	Transformation int32   `yaml:"transformation"`
	CurrentHP      int32   `yaml:"current_hp"`
	CurrentMP      int32   `yaml:"current_mp"`
	MaxHP          int32   `yaml:"max_hp"`
	MaxMP          int32   `yaml:"max_mp"`
	Summoned       bool    `yaml:"summoned"`
	Title          string  `yaml:"title"`
	NameStringID   int32   `yaml:"name_string_id"`
	PvPFlag        uint8   `yaml:"pvp_flag"`
	Reputation     int32   `yaml:"reputation"`
	ClanID         int32   `yaml:"clan_id"`
	ClanCrestID    int32   `yaml:"clan_crest_id"`
	AllyID         int32   `yaml:"ally_id"`
	AllyCrestID    int32   `yaml:"ally_crest_id"`
	Name           string  `yaml:"name"`
	Abnormals      []int32 `yaml:"abnormals"`
}

// Localizer подставляет переводы имён и титулов NPC.
type Localizer interface {
	NpcName(lang string, templateID int32) (string, bool)
	NpcTitle(lang string, templateID int32) (string, bool)
}

// NpcInfo - описание NPC в зоне видимости:
// [0x0C][i32 objectId][u8 spawnAnimation][u16 25][mask 4]
// [u8 len][header][u16 len][body].
type NpcInfo struct {
	subject   Presence
	view      NpcView
	spawnAnim bool
	plan      *codec.Plan
}

// NewNpcInfo снимает план с view сразу: присутствие компонентов решается
// по производным фактам один раз, до записи. subject может быть nil, тогда
// пакет никогда не считается устаревшим.
func NewNpcInfo(subject Presence, view NpcView, spawnAnimation bool) *NpcInfo {
	if len(view.Abnormals) > 0 {
		view.Abnormals = append([]int32(nil), view.Abnormals...)
	}
	p := &NpcInfo{subject: subject, view: view, spawnAnim: spawnAnimation}
	p.plan = p.declare()
	return p
}

func (p *NpcInfo) declare() *codec.Plan {
	v := &p.view
	pl := codec.NewPlan(npcLayout)

	pl.Add(npcAttackable)
	pl.AddIf(v.RelativeHeight != 0, npcRelativeHeight)

	pl.Add(npcTemplateID)
	pl.Add(npcPosition)
	pl.AddIf(v.Heading != 0, npcHeading)
	pl.Add(npcSpeed)
	pl.Add(npcMultipliers)
	pl.AddIf(v.RightHand != 0 || v.Chest != 0 || v.LeftHand != 0, npcEquipment)
	pl.Add(npcStopMode)
	pl.Add(npcRunning)
	pl.AddIf(v.Team != 0, npcTeam)
	pl.AddIf(v.WeaponEnchant > 0, npcEnchant)
	pl.AddIf(v.Transformation != 0, npcTransformation)
	if v.MaxHP > 0 {
		pl.Add(npcCurrentHP)
		pl.Add(npcMaxHP)
	}
	if v.MaxMP > 0 {
		pl.Add(npcCurrentMP)
		pl.Add(npcMaxMP)
	}
	pl.AddIf(v.Summoned, npcSummoned)
	if v.Title != "" {
		pl.AddSized(npcTitle, wire.StringSize(v.Title))
	}
	pl.AddIf(v.NameStringID != 0, npcNameStringID)
	pl.AddIf(v.PvPFlag != 0, npcPvPFlag)
	pl.AddIf(v.Reputation != 0, npcReputation)
	pl.AddIf(v.ClanID > 0, npcClan)
	if v.Name != "" {
		pl.AddSized(npcName, wire.StringSize(v.Name))
	}
	if len(v.Abnormals) > 0 {
		pl.AddSized(npcAbnormals, 2+4*len(v.Abnormals))
	}
	return pl
}

// Localize подставляет переводы имени и титула для языка lang. Длина блока
// исправляется через Plan.Amend на разницу между исходной и новой строкой;
// вызывать до Encode.
func (p *NpcInfo) Localize(loc Localizer, lang string) {
	if loc == nil {
		return
	}
	if name, ok := loc.NpcName(lang, p.view.TemplateID); ok {
		p.substitute(npcName, &p.view.Name, name)
	}
	if title, ok := loc.NpcTitle(lang, p.view.TemplateID); ok {
		p.substitute(npcTitle, &p.view.Title, title)
	}
}

func (p *NpcInfo) substitute(c mask.ComponentType, field *string, text string) {
	if text == "" || text == *field {
		return
	}
	if p.plan.Contains(c) {
		p.plan.Amend(c, wire.StringSize(text)-wire.StringSize(*field))
	} else {
		p.plan.AddSized(c, wire.StringSize(text))
	}
	*field = text
}

func (p *NpcInfo) Name() string       { return npcKind }
func (p *NpcInfo) Table() *mask.Table { return NpcTable }
func (p *NpcInfo) Plan() *codec.Plan  { return p.plan }
func (p *NpcInfo) View() NpcView      { return p.view }

func (p *NpcInfo) Write(w *wire.Writer) bool {
	if p.subject != nil && !p.subject.IsSpawned() {
		return false
	}
	writeOpcode(w, OpcodeNpcInfo)
	w.WriteInt32(p.view.ObjectID)
	w.WriteBool(p.spawnAnim)
	w.WriteUint16(uint16(NpcTable.Len()))
	codec.Emit(p.plan, w, p)
	return true
}

func (p *NpcInfo) WriteComponent(c mask.ComponentType, w *wire.Writer) {
	v := &p.view
	switch c {
	case npcAttackable:
		w.WriteBool(v.Attackable)
	case npcRelativeHeight:
		w.WriteInt32(v.RelativeHeight)
	case npcTemplateID:
		w.WriteInt32(v.TemplateID)
	case npcPosition:
		w.WriteInt32(v.X)
		w.WriteInt32(v.Y)
		w.WriteInt32(v.Z)
	case npcHeading:
		w.WriteInt32(v.Heading)
	case npcSpeed:
		w.WriteInt32(v.AttackSpeed)
		w.WriteInt32(v.CastSpeed)
	case npcMultipliers:
		w.WriteFloat32(v.MoveMultiplier)
		w.WriteFloat32(v.AtkMultiplier)
	case npcEquipment:
		w.WriteInt32(v.RightHand)
		w.WriteInt32(v.Chest)
		w.WriteInt32(v.LeftHand)
	case npcStopMode:
		w.WriteBool(v.Stopped)
	case npcRunning:
		w.WriteBool(v.Running)
	case npcTeam:
		w.WriteUint8(v.Team)
	case npcEnchant:
		w.WriteInt32(v.WeaponEnchant)
	case npcTransformation:
		w.WriteInt32(v.Transformation)
	case npcCurrentHP:
		w.WriteInt32(v.CurrentHP)
	case npcCurrentMP:
		w.WriteInt32(v.CurrentMP)
	case npcMaxHP:
		w.WriteInt32(v.MaxHP)
	case npcMaxMP:
		w.WriteInt32(v.MaxMP)
	case npcSummoned:
		w.WriteBool(v.Summoned)
	case npcTitle:
		w.WriteString(v.Title)
	case npcNameStringID:
		w.WriteInt32(v.NameStringID)
	case npcPvPFlag:
		w.WriteUint8(v.PvPFlag)
	case npcReputation:
		w.WriteInt32(v.Reputation)
	case npcClan:
		w.WriteInt32(v.ClanID)
		w.WriteInt32(v.ClanCrestID)
		w.WriteInt32(v.AllyID)
		w.WriteInt32(v.AllyCrestID)
	case npcName:
		w.WriteString(v.Name)
	case npcAbnormals:
		writeCount(w, npcKind, len(v.Abnormals))
		for _, id := range v.Abnormals {
			w.WriteInt32(id)
		}
	}
}
