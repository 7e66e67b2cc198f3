package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&Aircraft{},
	&AircraftState{},
	&FiredEvent{},
	&HitEvent{},
	&KillEvent{},
	&ExplosionEvent{},
	&GeneralEvent{},
	&LoopPerformance{},
}

// DatabaseModelsSQLite is migrated into the in-memory sqlite database. It
// has no performance table since sqlite sessions are short-lived dumps.
var DatabaseModelsSQLite = []interface{}{
	&Session{},
	&Aircraft{},
	&AircraftState{},
	&FiredEvent{},
	&HitEvent{},
	&KillEvent{},
	&ExplosionEvent{},
	&GeneralEvent{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// LoopPerformance is a per-second sample of simulation loop load.
type LoopPerformance struct {
	Time        time.Time `json:"time" gorm:"type:timestamptz;index:idx_time"`
	SessionID   uint      `json:"sessionId" gorm:"index:idx_loopperformance_session_id"`
	Session     Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	TickRate    float32   `json:"tickRate"`
	TickMs      float32   `json:"tickMs"`
	Enemies     uint16    `json:"enemies"`
	Projectiles uint16    `json:"projectiles"`
	Explosions  uint16    `json:"explosions"`
	Debris      uint16    `json:"debris"`
	Dropped     uint32    `json:"dropped"`
}

func (*LoopPerformance) TableName() string {
	return "loop_performances"
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Session is one recorded run of the simulation.
type Session struct {
	gorm.Model
	SessionUID string       `json:"sessionUid" gorm:"size:36;uniqueIndex"`
	Name       string       `json:"name" gorm:"size:200"`
	StartTime  time.Time    `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	EndTime    sql.NullTime `json:"endTime" gorm:"type:timestamptz"`
	Seed       int64        `json:"seed"`
	TickRate   float32      `json:"tickRate"`
	Version    string       `json:"version" gorm:"size:64"`
	Build      string       `json:"build" gorm:"size:64"`
	Tag        string       `json:"tag" gorm:"size:127"`

	OriginLatitude  float64    `json:"originLatitude"`
	OriginLongitude float64    `json:"originLongitude"`
	Location        geom.Point `json:"location"`

	Weather Weather `json:"weather" gorm:"embedded;embeddedPrefix:weather_"`
	Summary Summary `json:"summary" gorm:"embedded;embeddedPrefix:summary_"`

	Aircraft        []Aircraft
	GeneralEvents   []GeneralEvent
	HitEvents       []HitEvent
	KillEvents      []KillEvent
	FiredEvents     []FiredEvent
	ExplosionEvents []ExplosionEvent
}

func (*Session) TableName() string {
	return "sessions"
}

// Weather is the environment a session was flown in.
type Weather struct {
	WindSpeed     float32 `json:"windSpeed"`
	WindDirection float32 `json:"windDirection"`
	Turbulence    float32 `json:"turbulence"`
	Visibility    float32 `json:"visibility"`
}

// Summary is the end-of-session tally, written when the session ends.
type Summary struct {
	Ticks    uint64  `json:"ticks"`
	Duration float32 `json:"duration"`
	Score    int32   `json:"score"`
	Kills    int32   `json:"kills"`
	Crashes  int32   `json:"crashes"`
	MaxLevel int16   `json:"maxLevel"`
}

// Aircraft is the player or an enemy that joined the session.
// Uses composite primary key (SessionID, ObjectID) - ObjectID is the simulation entity ID
type Aircraft struct {
	SessionID uint      `json:"sessionId" gorm:"primaryKey;autoIncrement:false"`
	ObjectID  uint64    `json:"objectId" gorm:"primaryKey;autoIncrement:false"`
	Session   Session   `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	JoinTime  time.Time `json:"joinTime" gorm:"type:timestamptz;NOT NULL;index:idx_aircraft_join_time"`
	JoinTick  uint64    `json:"joinTick"`
	LeaveTick uint64    `json:"leaveTick"`
	Role      string    `json:"role" gorm:"size:16"`
	Name      string    `json:"name" gorm:"size:64"`
	Level     int16     `json:"level"`
}

func (*Aircraft) TableName() string {
	return "aircraft"
}

// AircraftState is a sampled snapshot of one aircraft.
// References Aircraft by (SessionID, AircraftObjectID) composite FK
type AircraftState struct {
	ID               uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID        uint      `json:"sessionId" gorm:"index:idx_aircraftstate_session_id"`
	Session          Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick             uint64    `json:"tick" gorm:"index:idx_aircraftstate_tick"`
	AircraftObjectID uint64    `json:"aircraftObjectId" gorm:"index:idx_aircraftstate_aircraft_object_id"`
	Aircraft         Aircraft  `gorm:"foreignkey:SessionID,AircraftObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Position geom.Point `json:"position"` // EPSG:3857 with altitude in Z
	Local    Local      `json:"local" gorm:"embedded;embeddedPrefix:local_"`
	Altitude float32    `json:"altitude"` // metres above ground
	Bearing  uint16     `json:"bearing"`  // compass degrees
	Pitch    float32    `json:"pitch"`    // degrees
	Roll     float32    `json:"roll"`     // degrees
	Speed    float32    `json:"speed"`    // m/s
	Throttle float32    `json:"throttle"` // 0..1
	Health   float32    `json:"health"`
	Mode     string     `json:"mode" gorm:"size:16"`
	IsAlive  bool       `json:"isAlive"`
}

func (*AircraftState) TableName() string {
	return "aircraft_states"
}

// Local is a position in simulation metres.
type Local struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type FiredEvent struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID       uint      `json:"sessionId" gorm:"index:idx_firedevent_session_id"`
	Session         Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	ShooterObjectID uint64    `json:"shooterObjectId" gorm:"index:idx_firedevent_shooter_object_id"`
	ProjectileID    uint64    `json:"projectileId"`
	Tick            uint64    `json:"tick" gorm:"index:idx_firedevent_tick;"`
	Weapon          string    `json:"weapon" gorm:"size:16"`
	AmmoLeft        int16     `json:"ammoLeft"`

	StartPosition     geom.Point `json:"startPos"`
	StartElevationASL float32    `json:"startElev"`
	Direction         string     `json:"direction" gorm:"size:64"` // unit vector "x,y,z"
}

func (*FiredEvent) TableName() string {
	return "fired_events"
}

type HitEvent struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_hitevent_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick      uint64    `json:"tick" gorm:"index:idx_hitevent_tick;"`

	VictimObjectID  uint64 `json:"victimObjectId" gorm:"index:idx_hitevent_victim_object_id"`
	ShooterObjectID uint64 `json:"shooterObjectId" gorm:"index:idx_hitevent_shooter_object_id"`
	ProjectileID    uint64 `json:"projectileId"`

	Weapon   string     `json:"weapon" gorm:"size:16"`
	Damage   float32    `json:"damage"`
	Distance float32    `json:"distance"`
	Position geom.Point `json:"position"`
}

func (h *HitEvent) TableName() string {
	return "hit_events"
}

type KillEvent struct {
	ID   uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time time.Time `json:"time" gorm:"type:timestamptz;"`

	SessionID uint    `json:"sessionId" gorm:"index:idx_killevent_session_id"`
	Session   Session `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick      uint64  `json:"tick" gorm:"index:idx_killevent_tick;"`

	VictimObjectID uint64 `json:"victimObjectId" gorm:"index:idx_killevent_victim_object_id"`
	KillerObjectID uint64 `json:"killerObjectId" gorm:"index:idx_killevent_killer_object_id"`

	Weapon   string  `json:"weapon" gorm:"size:16"`
	Distance float32 `json:"distance"`
	Score    int32   `json:"score"`
}

func (k *KillEvent) TableName() string {
	return "kill_events"
}

type ExplosionEvent struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID   uint      `json:"sessionId" gorm:"index:idx_explosionevent_session_id"`
	Session     Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick        uint64    `json:"tick" gorm:"index:idx_explosionevent_tick;"`
	ExplosionID uint64    `json:"explosionId"`

	Position     geom.Point `json:"position"`
	ElevationASL float32    `json:"elevation"`
	Size         float32    `json:"size"`
	BlastRadius  float32    `json:"blastRadius"`
	Damage       float32    `json:"damage"`
	Cause        string     `json:"cause" gorm:"size:16"`
}

func (e *ExplosionEvent) TableName() string {
	return "explosion_events"
}

type GeneralEvent struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time      `json:"time" gorm:"type:timestamptz;"`
	SessionID uint           `json:"sessionId" gorm:"index:idx_generalevent_session_id"`
	Session   Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Tick      uint64         `json:"tick" gorm:"index:idx_generalevent_tick;"`
	Name      string         `json:"name" gorm:"size:64"` // crash, reset, difficulty, blast
	Message   string         `json:"message"`
	ExtraData datatypes.JSON `json:"extraData" gorm:"type:jsonb;default:'{}'"`
}

func (g *GeneralEvent) TableName() string {
	return "general_events"
}
