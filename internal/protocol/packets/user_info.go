package packets

import (
	"github.com/annel0/mmo-wire/internal/protocol/codec"
	"github.com/annel0/mmo-wire/internal/protocol/item"
	"github.com/annel0/mmo-wire/internal/protocol/mask"
	"github.com/annel0/mmo-wire/internal/protocol/wire"
)

const userKind = "UserInfo"

var (
	userRelation   = mask.ComponentType{Kind: userKind, Name: "Relation", Bit: 0, Size: 4}
	userBasicInfo  = mask.ComponentType{Kind: userKind, Name: "BasicInfo", Bit: 1, Size: mask.Variable}
	userBaseStats  = mask.ComponentType{Kind: userKind, Name: "BaseStats", Bit: 2, Size: 12}
	userMaxPoints  = mask.ComponentType{Kind: userKind, Name: "MaxHpMpCp", Bit: 3, Size: 12}
	userCurPoints  = mask.ComponentType{Kind: userKind, Name: "CurrentHpMpCp", Bit: 4, Size: 12}
	userEnchant    = mask.ComponentType{Kind: userKind, Name: "Enchant", Bit: 5, Size: 2}
	userAppearance = mask.ComponentType{Kind: userKind, Name: "Appearance", Bit: 6, Size: 12}
	userStatus     = mask.ComponentType{Kind: userKind, Name: "Status", Bit: 7, Size: 3}
	userStats      = mask.ComponentType{Kind: userKind, Name: "Stats", Bit: 8, Size: 24}
	userElementals = mask.ComponentType{Kind: userKind, Name: "Elementals", Bit: 9, Size: 16}
	userPosition   = mask.ComponentType{Kind: userKind, Name: "Position", Bit: 10, Size: 16}
	userSpeed      = mask.ComponentType{Kind: userKind, Name: "Speed", Bit: 11, Size: 16}
	userCollision  = mask.ComponentType{Kind: userKind, Name: "Collision", Bit: 12, Size: 8}
	userSocial     = mask.ComponentType{Kind: userKind, Name: "Social", Bit: 13, Size: 5}
	userTitle      = mask.ComponentType{Kind: userKind, Name: "Title", Bit: 14, Size: mask.Variable}
	userClan       = mask.ComponentType{Kind: userKind, Name: "Clan", Bit: 15, Size: 16}
	userTeam       = mask.ComponentType{Kind: userKind, Name: "Team", Bit: 16, Size: 1}

	// UserTable - компоненты UserInfo (17 компонентов, 3 байта маски).
	UserTable = mask.NewTable(userKind,
		userRelation, userBasicInfo, userBaseStats, userMaxPoints, userCurPoints,
		userEnchant, userAppearance, userStatus, userStats, userElementals,
		userPosition, userSpeed, userCollision, userSocial, userTitle,
		userClan, userTeam,
	)

	userLayout = codec.SingleBlock(UserTable, "body", codec.LengthUint16)
)

// UserView - снимок собственного персонажа игрока.
type UserView struct {
	ObjectID  int32  `yaml:"object_id"`
	Relation  int32  `yaml:"relation"`
	Name      string `yaml:"name"`
	GM        bool   `yaml:"gm"`
	Race      uint8  `yaml:"race"`
	Female    bool   `yaml:"female"`
	BaseClass int32  `yaml:"base_class"`
	ClassID   int32  `yaml:"class_id"`
	Level     uint8  `yaml:"level"`

	STR uint16 `yaml:"str"`
	DEX uint16 `yaml:"dex"`
	CON uint16 `yaml:"con"`
	INT uint16 `yaml:"int"`
	WIT uint16 `yaml:"wit"`
	MEN uint16 `yaml:"men"`

	MaxHP     int32 `yaml:"max_hp"`
	MaxMP     int32 `yaml:"max_mp"`
	MaxCP     int32 `yaml:"max_cp"`
	CurrentHP int32 `yaml:"current_hp"`
	CurrentMP int32 `yaml:"current_mp"`
	CurrentCP int32 `yaml:"current_cp"`

	WeaponEnchant uint8 `yaml:"weapon_enchant"`
	ArmorEnchant  uint8 `yaml:"armor_enchant"`
	HairStyle     int32 `yaml:"hair_style"`
	HairColor     int32 `yaml:"hair_color"`
	Face          int32 `yaml:"face"`
	PrivateStore  uint8 `yaml:"private_store"`
	MountType     uint8 `yaml:"mount_type"`
	Hero          bool  `yaml:"hero"`

	PAtk       int32           `yaml:"p_atk"`
	PDef       int32           `yaml:"p_def"`
	MAtk       int32           `yaml:"m_atk"`
	MDef       int32           `yaml:"m_def"`
	Accuracy   int32           `yaml:"accuracy"`
	Evasion    int32           `yaml:"evasion"`
	Elementals item.Elementals `yaml:"elementals"`

	X               int32   `yaml:"x"`
	Y               int32   `yaml:"y"`
	Z               int32   `yaml:"z"`
	VehicleID       int32   `yaml:"vehicle_id"`
	RunSpeed        int16   `yaml:"run_speed"`
	WalkSpeed       int16   `yaml:"walk_speed"`
	SwimRunSpeed    int16   `yaml:"swim_run_speed"`
	SwimWalkSpeed   int16   `yaml:"swim_walk_speed"`
	MoveMultiplier  float32 `yaml:"move_multiplier"`
	AtkMultiplier   float32 `yaml:"atk_multiplier"`
	CollisionRadius float32 `yaml:"collision_radius"`
	CollisionHeight float32 `yaml:"collision_height"`

	PvPFlag     uint8  `yaml:"pvp_flag"`
	Reputation  int32  `yaml:"reputation"`
	Title       string `yaml:"title"`
	ClanID      int32  `yaml:"clan_id"`
	ClanCrestID int32  `yaml:"clan_crest_id"`
	AllyID      int32  `yaml:"ally_id"`
	AllyCrestID int32  `yaml:"ally_crest_id"`
	Team        uint8  `yaml:"team"`
}

// UserInfo - полное описание персонажа для его владельца:
// [0x32][i32 objectId][u16 17][mask 3][u16 len][body].
type UserInfo struct {
	subject Presence
	view    UserView
	plan    *codec.Plan
}

// NewUserInfo снимает план с view. subject может быть nil.
func NewUserInfo(subject Presence, view UserView) *UserInfo {
	p := &UserInfo{subject: subject, view: view}
	v := &p.view
	pl := codec.NewPlan(userLayout)
	pl.Add(userRelation)
	pl.AddSized(userBasicInfo, wire.StringSize(v.Name)+12)
	pl.Add(userBaseStats)
	pl.Add(userMaxPoints)
	pl.Add(userCurPoints)
	pl.AddIf(v.WeaponEnchant > 0 || v.ArmorEnchant > 0, userEnchant)
	pl.Add(userAppearance)
	pl.Add(userStatus)
	pl.Add(userStats)
	pl.Add(userElementals)
	pl.Add(userPosition)
	pl.Add(userSpeed)
	pl.Add(userCollision)
	pl.Add(userSocial)
	if v.Title != "" {
		pl.AddSized(userTitle, wire.StringSize(v.Title))
	}
	pl.AddIf(v.ClanID > 0, userClan)
	pl.AddIf(v.Team != 0, userTeam)
	p.plan = pl
	return p
}

func (p *UserInfo) Name() string       { return userKind }
func (p *UserInfo) Table() *mask.Table { return UserTable }
func (p *UserInfo) Plan() *codec.Plan  { return p.plan }

func (p *UserInfo) Write(w *wire.Writer) bool {
	if p.subject != nil && !p.subject.IsSpawned() {
		return false
	}
	writeOpcode(w, OpcodeUserInfo)
	w.WriteInt32(p.view.ObjectID)
	w.WriteUint16(uint16(UserTable.Len()))
	codec.Emit(p.plan, w, p)
	return true
}

func (p *UserInfo) WriteComponent(c mask.ComponentType, w *wire.Writer) {
	v := &p.view
	switch c {
	case userRelation:
		w.WriteInt32(v.Relation)
	case userBasicInfo:
		w.WriteString(v.Name)
		w.WriteBool(v.GM)
		w.WriteUint8(v.Race)
		w.WriteBool(v.Female)
		w.WriteInt32(v.BaseClass)
		w.WriteInt32(v.ClassID)
		w.WriteUint8(v.Level)
	case userBaseStats:
		for _, s := range [...]uint16{v.STR, v.DEX, v.CON, v.INT, v.WIT, v.MEN} {
			w.WriteUint16(s)
		}
	case userMaxPoints:
		w.WriteInt32(v.MaxHP)
		w.WriteInt32(v.MaxMP)
		w.WriteInt32(v.MaxCP)
	case userCurPoints:
		w.WriteInt32(v.CurrentHP)
		w.WriteInt32(v.CurrentMP)
		w.WriteInt32(v.CurrentCP)
	case userEnchant:
		w.WriteUint8(v.WeaponEnchant)
		w.WriteUint8(v.ArmorEnchant)
	case userAppearance:
		w.WriteInt32(v.HairStyle)
		w.WriteInt32(v.HairColor)
		w.WriteInt32(v.Face)
	case userStatus:
		w.WriteUint8(v.PrivateStore)
		w.WriteUint8(v.MountType)
		w.WriteBool(v.Hero)
	case userStats:
		for _, s := range [...]int32{v.PAtk, v.PDef, v.MAtk, v.MDef, v.Accuracy, v.Evasion} {
			w.WriteInt32(s)
		}
	case userElementals:
		w.WriteInt16(v.Elementals.AttackType)
		w.WriteInt16(v.Elementals.AttackPower)
		for _, d := range v.Elementals.Defence {
			w.WriteInt16(d)
		}
	case userPosition:
		w.WriteInt32(v.X)
		w.WriteInt32(v.Y)
		w.WriteInt32(v.Z)
		w.WriteInt32(v.VehicleID)
	case userSpeed:
		w.WriteInt16(v.RunSpeed)
		w.WriteInt16(v.WalkSpeed)
		w.WriteInt16(v.SwimRunSpeed)
		w.WriteInt16(v.SwimWalkSpeed)
		w.WriteFloat32(v.MoveMultiplier)
		w.WriteFloat32(v.AtkMultiplier)
	case userCollision:
		w.WriteFloat32(v.CollisionRadius)
		w.WriteFloat32(v.CollisionHeight)
	case userSocial:
		w.WriteUint8(v.PvPFlag)
		w.WriteInt32(v.Reputation)
	case userTitle:
		w.WriteString(v.Title)
	case userClan:
		w.WriteInt32(v.ClanID)
		w.WriteInt32(v.ClanCrestID)
		w.WriteInt32(v.AllyID)
		w.WriteInt32(v.AllyCrestID)
	case userTeam:
		w.WriteUint8(v.Team)
	}
}
