package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
)

// Entry is one workout line of an import file.
type Entry struct {
	Line   int
	Raw    string
	At     models.Coordinates
	Values app.FormValues
}

// columnHeaderRe matches the optional header: kind;lat;lng;distance;duration;extra
var columnHeaderRe = regexp.MustCompile(`(?i)^kind;lat;lng;distance;duration;extra$`)

// Parse reads a semicolon-separated workout log. Each line is
//
//	kind;lat;lng;distance;duration;extra
//
// where extra is the cadence for running and the elevation gain for cycling.
// Blank lines and lines starting with # are skipped. Numeric fields are kept
// as strings so the controller validates them exactly like form input.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || columnHeaderRe.MatchString(line) {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: want 6 fields, got %d", n, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		kind, err := models.ParseKind(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", n, err)
		}
		lng, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", n, err)
		}

		v := app.FormValues{Kind: string(kind), Distance: fields[3], Duration: fields[4]}
		if kind == models.KindCycling {
			v.Elevation = fields[5]
		} else {
			v.Cadence = fields[5]
		}
		entries = append(entries, Entry{
			Line:   n,
			Raw:    line,
			At:     models.Coordinates{Lat: lat, Lng: lng},
			Values: v,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return entries, nil
}
