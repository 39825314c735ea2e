package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/mapty/internal/models"
)

// KindSummary totals the workouts of one kind.
type KindSummary struct {
	Kind     models.Kind `json:"kind"`
	Count    int         `json:"count"`
	Distance float64     `json:"distance_km"`
	Duration float64     `json:"duration_min"`
	// Pace is min/km over all running workouts, Speed km/h over all
	// cycling workouts.
	Pace  float64 `json:"pace,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// summarize groups workouts by kind in a fixed running, cycling order.
// Kinds without workouts are left out.
func summarize(workouts []models.Workout) []KindSummary {
	byKind := map[models.Kind]*KindSummary{}
	for _, w := range workouts {
		s, ok := byKind[w.Kind]
		if !ok {
			s = &KindSummary{Kind: w.Kind}
			byKind[w.Kind] = s
		}
		s.Count++
		s.Distance += w.Distance
		s.Duration += w.Duration
	}

	out := []KindSummary{}
	for _, kind := range []models.Kind{models.KindRunning, models.KindCycling} {
		s, ok := byKind[kind]
		if !ok {
			continue
		}
		switch kind {
		case models.KindRunning:
			s.Pace = models.Pace(s.Distance, s.Duration)
		case models.KindCycling:
			s.Speed = models.Speed(s.Distance, s.Duration)
		}
		out = append(out, *s)
	}
	return out
}

func (h *handlers) allWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, workouts)
}

func (h *handlers) summary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, summarize(workouts))
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
