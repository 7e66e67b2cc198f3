// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OCAP2/dogfight/pkg/core"
)

// Recording is the root JSON structure of an exported session
type Recording struct {
	SessionID string         `json:"sessionId"`
	Name      string         `json:"name"`
	Tag       string         `json:"tag"`
	Version   string         `json:"version"`
	StartTime string         `json:"startTime"`
	Seed      int64          `json:"seed"`
	TickRate  float64        `json:"tickRate"`
	Origin    core.GeoOrigin `json:"origin"`
	Weather   core.Weather   `json:"weather"`
	EndTick   uint64         `json:"endTick"`
	Summary   core.Summary   `json:"summary"`
	Entities  []EntityJSON   `json:"entities"`
	Events    [][]any        `json:"events"`
}

// EntityJSON is one aircraft and its sampled track
type EntityJSON struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Level     int     `json:"level"`
	StartTick uint64  `json:"startTick"`
	EndTick   uint64  `json:"endTick,omitempty"`
	Positions [][]any `json:"positions"`
	// FramesFired rows are [tick, weapon, [x, y, z], [dx, dy, dz]]
	FramesFired [][]any `json:"framesFired"`
}

func fileStem(s *core.Session) string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(s.Name)
	return fmt.Sprintf("%s_%s", name, s.StartTime.UTC().Format("20060102_150405"))
}

// exportJSON writes the session to a JSON file, gzipped when configured.
func (b *Backend) exportJSON() error {
	rec := b.buildExport()

	filename := fileStem(b.session) + ".json"
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := writeJSON(gz, rec); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	} else if err := writeJSON(f, rec); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(w io.Writer, rec Recording) error {
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	return nil
}

func vec(p core.Position3D) []float64 {
	return []float64{p.X, p.Y, p.Z}
}

func (b *Backend) buildExport() Recording {
	s := b.session
	rec := Recording{
		SessionID: s.ID,
		Name:      s.Name,
		Tag:       s.Tag,
		Version:   s.Version,
		StartTime: s.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Seed:      s.Seed,
		TickRate:  s.TickRate,
		Origin:    s.Origin,
		Weather:   s.Environment,
		Summary:   b.summary,
		Entities:  make([]EntityJSON, 0, len(b.aircraft)),
		Events:    make([][]any, 0),
	}

	ids := make([]uint64, 0, len(b.aircraft))
	for id := range b.aircraft {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	endTick := b.summary.Ticks
	for _, id := range ids {
		record := b.aircraft[id]
		entity := EntityJSON{
			ID:          id,
			Name:        record.Aircraft.Name,
			Role:        record.Aircraft.Role,
			Level:       record.Aircraft.Level,
			StartTick:   record.Aircraft.JoinTick,
			EndTick:     record.LeaveTick,
			Positions:   make([][]any, 0, len(record.States)),
			FramesFired: make([][]any, 0, len(record.FiredEvents)),
		}

		// Format: [tick, [x, y, z], heading, pitch, roll, speed, health, alive]
		for _, st := range record.States {
			entity.Positions = append(entity.Positions, []any{
				st.Tick,
				vec(st.Position),
				st.Heading,
				st.Pitch,
				st.Roll,
				st.Speed,
				st.Health,
				boolToInt(st.IsAlive),
			})
			if st.Tick > endTick {
				endTick = st.Tick
			}
		}

		for _, fired := range record.FiredEvents {
			entity.FramesFired = append(entity.FramesFired, []any{
				fired.Tick,
				fired.Weapon,
				vec(fired.StartPos),
				vec(fired.Direction),
			})
		}

		rec.Entities = append(rec.Entities, entity)
	}
	rec.EndTick = endTick

	// Format: [tick, "hit", victimId, [shooterId, weapon], damage, distance]
	for _, e := range b.hitEvents {
		rec.Events = append(rec.Events, []any{e.Tick, "hit", e.VictimID, []any{e.ShooterID, e.Weapon}, e.Damage, e.Distance})
	}
	// Format: [tick, "killed", victimId, [killerId, weapon], distance, score]
	for _, e := range b.killEvents {
		rec.Events = append(rec.Events, []any{e.Tick, "killed", e.VictimID, []any{e.KillerID, e.Weapon}, e.Distance, e.Score})
	}
	// Format: [tick, "explosion", [x, y, z], size, cause]
	for _, e := range b.explosionEvents {
		rec.Events = append(rec.Events, []any{e.Tick, "explosion", vec(e.Position), e.Size, e.Cause})
	}
	// Format: [tick, name, message]
	for _, e := range b.generalEvents {
		rec.Events = append(rec.Events, []any{e.Tick, e.Name, e.Message})
	}

	sort.SliceStable(rec.Events, func(i, j int) bool {
		return rec.Events[i][0].(uint64) < rec.Events[j][0].(uint64)
	})

	return rec
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
