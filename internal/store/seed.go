package store

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"raiox/internal/core"
)

// The sample dataset predates the patientNumber field and still carries it
// under the legacy name "priority"; it is renamed at load. A handful of
// very old entries may also lack a city.
//
//go:embed seed.json
var seedJSON []byte

type seedRecord struct {
	ID         string `json:"id"`
	Sequence   int    `json:"sequence"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Exam       string `json:"exam"`
	Priority   int    `json:"priority"`
	Location   string `json:"location"`
	Technician string `json:"technician"`
	City       string `json:"city"`
}

// seedRecords returns the built-in sample dataset used when no snapshot
// exists yet. Records without a city get one of the two clinic cities by
// position parity, so a cold start is reproducible.
func seedRecords() []core.Record {
	var seeds []seedRecord
	if err := json.Unmarshal(seedJSON, &seeds); err != nil {
		// The seed is embedded at build time; this only trips on a bad edit.
		panic(fmt.Sprintf("store: embedded seed data is invalid: %v", err))
	}

	cities := []string{core.CitySantaVitoria, core.CityChui}
	out := make([]core.Record, len(seeds))
	for i, sr := range seeds {
		city := sr.City
		if city == "" {
			city = cities[i%2]
		}
		out[i] = core.Record{
			ID:            sr.ID,
			Sequence:      sr.Sequence,
			Date:          sr.Date,
			Name:          sr.Name,
			Exam:          sr.Exam,
			PatientNumber: sr.Priority,
			Location:      sr.Location,
			Technician:    sr.Technician,
			City:          city,
		}
	}
	return out
}
