package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"LoopPerformance", &LoopPerformance{}, "loop_performances"},
		{"Session", &Session{}, "sessions"},
		{"Aircraft", &Aircraft{}, "aircraft"},
		{"AircraftState", &AircraftState{}, "aircraft_states"},
		{"FiredEvent", &FiredEvent{}, "fired_events"},
		{"HitEvent", &HitEvent{}, "hit_events"},
		{"KillEvent", &KillEvent{}, "kill_events"},
		{"ExplosionEvent", &ExplosionEvent{}, "explosion_events"},
		{"GeneralEvent", &GeneralEvent{}, "general_events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 9)
	assert.Len(t, DatabaseModelsSQLite, 8)
	assert.NotContains(t, DatabaseModelsSQLite, &LoopPerformance{})
}
