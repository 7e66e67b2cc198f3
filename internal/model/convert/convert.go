// Package convert provides functions to convert core recorder types to GORM models
package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"gorm.io/datatypes"

	"github.com/OCAP2/dogfight/internal/geo"
	"github.com/OCAP2/dogfight/internal/model"
	"github.com/OCAP2/dogfight/pkg/core"
)

// Converter turns core types into rows for one session. Positions are
// projected through Ref.
type Converter struct {
	SessionID uint
	Ref       geo.GeoRef
}

func local(p core.Position3D) model.Local {
	return model.Local{X: p.X, Y: p.Y, Z: p.Z}
}

// extraToJSON converts event extra data to datatypes.JSON for DB storage.
func extraToJSON(extra map[string]any) datatypes.JSON {
	if len(extra) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	ref := geo.GeoRef{Origin: s.Origin}
	return model.Session{
		SessionUID:      s.ID,
		Name:            s.Name,
		StartTime:       s.StartTime,
		Seed:            s.Seed,
		TickRate:        float32(s.TickRate),
		Version:         s.Version,
		Build:           s.Build,
		Tag:             s.Tag,
		OriginLatitude:  s.Origin.Latitude,
		OriginLongitude: s.Origin.Longitude,
		Location:        ref.Point(core.Position3D{}),
		Weather: model.Weather{
			WindSpeed:     float32(s.Environment.WindSpeed),
			WindDirection: float32(s.Environment.WindDirection),
			Turbulence:    float32(s.Environment.Turbulence),
			Visibility:    float32(s.Environment.Visibility),
		},
	}
}

// SummaryToModel converts the end-of-session tally.
func SummaryToModel(s core.Summary) (model.Summary, sql.NullTime) {
	return model.Summary{
		Ticks:    s.Ticks,
		Duration: float32(s.Duration),
		Score:    int32(s.Score),
		Kills:    int32(s.Kills),
		Crashes:  int32(s.Crashes),
		MaxLevel: int16(s.MaxLevel),
	}, sql.NullTime{Time: s.EndTime, Valid: !s.EndTime.IsZero()}
}

// Aircraft converts a core.Aircraft. core.Aircraft.ID maps to ObjectID.
func (c Converter) Aircraft(a core.Aircraft) model.Aircraft {
	return model.Aircraft{
		SessionID: c.SessionID,
		ObjectID:  a.ID,
		JoinTime:  a.JoinTime,
		JoinTick:  a.JoinTick,
		Role:      a.Role,
		Name:      a.Name,
		Level:     int16(a.Level),
	}
}

// AircraftState converts a sampled state. Angles are stored in degrees.
func (c Converter) AircraftState(s core.AircraftState) model.AircraftState {
	return model.AircraftState{
		Time:             s.Time,
		SessionID:        c.SessionID,
		Tick:             s.Tick,
		AircraftObjectID: s.AircraftID,
		Position:         c.Ref.Point(s.Position),
		Local:            local(s.Position),
		Altitude:         float32(s.Position.Y),
		Bearing:          uint16(math.Round(s.Heading)) % 360,
		Pitch:            float32(s.Pitch),
		Roll:             float32(s.Roll),
		Speed:            float32(s.Speed),
		Throttle:         float32(s.Throttle),
		Health:           float32(s.Health),
		Mode:             s.Mode,
		IsAlive:          s.IsAlive,
	}
}

// FiredEvent converts a weapon release.
func (c Converter) FiredEvent(e core.FiredEvent) model.FiredEvent {
	return model.FiredEvent{
		Time:              e.Time,
		SessionID:         c.SessionID,
		ShooterObjectID:   e.ShooterID,
		ProjectileID:      e.ProjectileID,
		Tick:              e.Tick,
		Weapon:            e.Weapon,
		AmmoLeft:          int16(e.AmmoLeft),
		StartPosition:     c.Ref.Point(e.StartPos),
		StartElevationASL: float32(e.StartPos.Y),
		Direction:         fmt.Sprintf("%.4f,%.4f,%.4f", e.Direction.X, e.Direction.Y, e.Direction.Z),
	}
}

// HitEvent converts a projectile strike.
func (c Converter) HitEvent(e core.HitEvent) model.HitEvent {
	return model.HitEvent{
		Time:            e.Time,
		SessionID:       c.SessionID,
		Tick:            e.Tick,
		VictimObjectID:  e.VictimID,
		ShooterObjectID: e.ShooterID,
		ProjectileID:    e.ProjectileID,
		Weapon:          e.Weapon,
		Damage:          float32(e.Damage),
		Distance:        float32(e.Distance),
		Position:        c.Ref.Point(e.Position),
	}
}

// KillEvent converts a kill.
func (c Converter) KillEvent(e core.KillEvent) model.KillEvent {
	return model.KillEvent{
		Time:           e.Time,
		SessionID:      c.SessionID,
		Tick:           e.Tick,
		VictimObjectID: e.VictimID,
		KillerObjectID: e.KillerID,
		Weapon:         e.Weapon,
		Distance:       float32(e.Distance),
		Score:          int32(e.Score),
	}
}

// ExplosionEvent converts an explosion.
func (c Converter) ExplosionEvent(e core.ExplosionEvent) model.ExplosionEvent {
	return model.ExplosionEvent{
		Time:         e.Time,
		SessionID:    c.SessionID,
		Tick:         e.Tick,
		ExplosionID:  e.ExplosionID,
		Position:     c.Ref.Point(e.Position),
		ElevationASL: float32(e.Position.Y),
		Size:         float32(e.Size),
		BlastRadius:  float32(e.BlastRadius),
		Damage:       float32(e.Damage),
		Cause:        e.Cause,
	}
}

// GeneralEvent converts a crash, reset, blast or difficulty event.
func (c Converter) GeneralEvent(e core.GeneralEvent) model.GeneralEvent {
	return model.GeneralEvent{
		Time:      e.Time,
		SessionID: c.SessionID,
		Tick:      e.Tick,
		Name:      e.Name,
		Message:   e.Message,
		ExtraData: extraToJSON(e.ExtraData),
	}
}

// LoopPerformance converts a loop load sample.
func (c Converter) LoopPerformance(p core.LoopPerformance) model.LoopPerformance {
	return model.LoopPerformance{
		Time:        p.Time,
		SessionID:   c.SessionID,
		TickRate:    float32(p.TickRate),
		TickMs:      float32(p.TickMs),
		Enemies:     uint16(p.Enemies),
		Projectiles: uint16(p.Projectiles),
		Explosions:  uint16(p.Explosions),
		Debris:      uint16(p.Debris),
		Dropped:     uint32(p.Dropped),
	}
}
