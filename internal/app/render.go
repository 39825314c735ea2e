package app

import (
	"strconv"

	"github.com/meltforce/mapty/internal/models"
)

// PopupConfig describes the popup bound to a workout marker.
type PopupConfig struct {
	MaxWidth     int    `json:"max_width"`
	MinWidth     int    `json:"min_width"`
	AutoClose    bool   `json:"auto_close"`
	CloseOnClick bool   `json:"close_on_click"`
	ClassName    string `json:"class_name"`
	Content      string `json:"content"`
}

// Detail is one value row of a list entry.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// ListEntry is the view model of one workout in the list.
type ListEntry struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Label   string   `json:"label"`
	Details []Detail `json:"details"`
}

// Icon returns the emoji shown for a workout kind.
func Icon(kind models.Kind) string {
	if kind == models.KindCycling {
		return "🚴‍♀️"
	}
	return "🏃‍♂️"
}

// Popup builds the marker popup for w.
func Popup(w *models.Workout) PopupConfig {
	return PopupConfig{
		MaxWidth:     250,
		MinWidth:     100,
		AutoClose:    false,
		CloseOnClick: false,
		ClassName:    string(w.Kind) + "-popup",
		Content:      Icon(w.Kind) + " " + w.Label,
	}
}

// Entry builds the list entry for w from its stored fields. Derived metrics
// are rounded to one decimal here and nowhere else.
func Entry(w *models.Workout) ListEntry {
	e := ListEntry{
		ID:    w.ID,
		Kind:  string(w.Kind),
		Label: w.Label,
		Details: []Detail{
			{Icon: Icon(w.Kind), Value: formatNumber(w.Distance), Unit: "km"},
			{Icon: "⏱", Value: formatNumber(w.Duration), Unit: "min"},
		},
	}
	switch w.Kind {
	case models.KindRunning:
		e.Details = append(e.Details,
			Detail{Icon: "⚡️", Value: formatFixed1(w.Pace), Unit: "min/km"},
			Detail{Icon: "🦶🏼", Value: formatNumber(w.Cadence), Unit: "spm"},
		)
	case models.KindCycling:
		e.Details = append(e.Details,
			Detail{Icon: "⚡️", Value: formatFixed1(w.Speed), Unit: "km/h"},
			Detail{Icon: "⛰", Value: formatNumber(w.ElevationGain), Unit: "m"},
		)
	}
	return e
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
