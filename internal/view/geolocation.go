package view

import (
	"context"
	"errors"
	"time"

	"github.com/meltforce/mapty/internal/mapsession"
	"github.com/meltforce/mapty/internal/models"
)

// ErrPositionDenied is reported by a StaticGeolocator without a position.
var ErrPositionDenied = errors.New("position not configured")

// StaticGeolocator reports a configured position after an optional delay.
type StaticGeolocator struct {
	Position *models.Coordinates
	Delay    time.Duration
}

var _ mapsession.Geolocator = (*StaticGeolocator)(nil)

func (g *StaticGeolocator) RequestPosition(ctx context.Context, onSuccess func(models.Coordinates), onFailure func(error)) {
	answer := func() {
		if g.Position == nil {
			onFailure(ErrPositionDenied)
			return
		}
		onSuccess(*g.Position)
	}
	if g.Delay <= 0 {
		answer()
		return
	}
	go func() {
		select {
		case <-time.After(g.Delay):
			answer()
		case <-ctx.Done():
		}
	}()
}
