// Package report derives display-ready summaries from a record snapshot.
//
// Every function here is a pure transformation: nothing mutates the store,
// nothing is cached, and each call recomputes from the slice it is given.
// Group-bys preserve first-seen insertion order unless a rule sorts.
package report

import (
	"sort"
	"strings"
	"time"

	"raiox/internal/core"
)

// bodyParts maps exam-text keywords to anatomical display labels. Order
// matters: it is the tie-break order of the sorted output. Matching is
// substring containment, so one exam string can hit several entries.
var bodyParts = []struct {
	Keyword string
	Label   string
}{
	{"TORAX", "Tórax"},
	{"CRANIO", "Crânio"},
	{"ABDOME", "Abdômen"},
	{"JOELHO", "Joelho"},
	{"COLUNA", "Coluna"},
	{"OMBRO", "Ombro"},
	{"MAO", "Mão"},
	{"PE", "Pé"},
	{"PERNA", "Perna"},
	{"BRACO", "Braço"},
	{"FEMUR", "Fêmur"},
	{"FACE", "Face"},
	{"COTOVELO", "Cotovelo"},
	{"PUNHO", "Punho"},
	{"TORNOZELO", "Tornozelo"},
}

// OtherBodyPart is the bucket for exams matching no anatomical keyword.
const OtherBodyPart = "Outros"

// TrendMonths is the width of the monthly trend window.
const TrendMonths = 6

type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// pairs returns the tallies in first-seen order.
func (t *tally) pairs() []core.LabelCount {
	out := make([]core.LabelCount, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, core.LabelCount{Label: key, Count: t.counts[key]})
	}
	return out
}

// sortDesc orders by count descending; the stable sort keeps first-seen
// order among ties since no secondary key is given.
func sortDesc(pairs []core.LabelCount) []core.LabelCount {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})
	return pairs
}

// ByLocation tallies records per distinct health-plan category.
func ByLocation(records []core.Record) []core.LabelCount {
	t := newTally()
	for _, r := range records {
		t.add(r.Location)
	}
	return t.pairs()
}

// ByCity tallies records per distinct city.
func ByCity(records []core.Record) []core.LabelCount {
	t := newTally()
	for _, r := range records {
		t.add(r.City)
	}
	return t.pairs()
}

// ExamTypeKey derives the coarse exam classification: the first
// whitespace-delimited token preceding any comma.
func ExamTypeKey(exam string) string {
	head := strings.SplitN(exam, ",", 2)[0]
	return strings.SplitN(head, " ", 2)[0]
}

// ExamTypes tallies records per exam-type key, sorted descending by count
// and truncated to n entries. n <= 0 returns all keys.
func ExamTypes(records []core.Record, n int) []core.LabelCount {
	t := newTally()
	for _, r := range records {
		t.add(ExamTypeKey(r.Exam))
	}
	pairs := sortDesc(t.pairs())
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// ByTechnician tallies records per technician, sorted descending by count.
func ByTechnician(records []core.Record) []core.LabelCount {
	t := newTally()
	for _, r := range records {
		t.add(r.Technician)
	}
	return sortDesc(t.pairs())
}

// BodyParts tallies anatomical regions mentioned in the exam text. A record
// naming several body parts increments each of them (fan-out, not an
// exclusive classification); a record matching none counts once as Outros.
// Sorted descending by count.
func BodyParts(records []core.Record) []core.LabelCount {
	t := newTally()
	for _, r := range records {
		exam := strings.ToUpper(r.Exam)
		matched := false
		for _, bp := range bodyParts {
			if strings.Contains(exam, bp.Keyword) {
				t.add(bp.Label)
				matched = true
			}
		}
		if !matched {
			t.add(OtherBodyPart)
		}
	}
	return sortDesc(t.pairs())
}

// CityExams cross-tabulates cities against the top exam-type keys. Columns
// are the globally most common keys (at most maxTypes), rows follow city
// first-seen order, and counts align with the column order.
func CityExams(records []core.Record, maxTypes int) core.CityExamBreakdown {
	types := ExamTypes(records, maxTypes)
	columns := make([]string, len(types))
	index := make(map[string]int, len(types))
	for i, t := range types {
		columns[i] = t.Label
		index[t.Label] = i
	}

	var cities []string
	counts := make(map[string][]int)
	for _, r := range records {
		row, ok := counts[r.City]
		if !ok {
			cities = append(cities, r.City)
			row = make([]int, len(columns))
			counts[r.City] = row
		}
		if i, ok := index[ExamTypeKey(r.Exam)]; ok {
			row[i]++
		}
	}

	out := core.CityExamBreakdown{ExamTypes: columns}
	for _, city := range cities {
		out.Rows = append(out.Rows, core.CityExamRow{City: city, Counts: counts[city]})
	}
	return out
}

// MonthlyTrend buckets records into the six calendar months ending at now,
// oldest first. Total counts every record in the bucket; Emergency, SUS and
// Private are exclusive sub-counters decided by location containment, in
// that priority order. Records dated outside the window, or with a date
// that does not parse as DD/MM/YYYY, are dropped silently.
func MonthlyTrend(now time.Time, records []core.Record) []core.MonthBucket {
	buckets := make([]core.MonthBucket, 0, TrendMonths)
	index := make(map[string]int, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		key := core.MonthKeyOf(now.AddDate(0, -i, 0))
		index[key] = len(buckets)
		buckets = append(buckets, core.MonthBucket{Month: key})
	}

	for _, r := range records {
		key, ok := core.MonthKey(r.Date)
		if !ok {
			continue
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		buckets[i].Total++
		switch {
		case strings.Contains(r.Location, core.LocationEmergency):
			buckets[i].Emergency++
		case strings.Contains(r.Location, core.LocationSUS):
			buckets[i].SUS++
		case strings.Contains(r.Location, core.LocationPrivate):
			buckets[i].Private++
		}
	}
	return buckets
}

// Stats computes the dashboard header counters. The location counters use
// substring containment, matching the chart rules; the city counters are
// exact matches on the two known cities.
func Stats(records []core.Record) core.Stats {
	var s core.Stats
	s.Total = len(records)
	for _, r := range records {
		if strings.Contains(r.Location, core.LocationEmergency) {
			s.Emergency++
		}
		if strings.Contains(r.Location, core.LocationSUS) {
			s.SUS++
		}
		if strings.Contains(r.Location, core.LocationInpatient) {
			s.Inpatient++
		}
		switch r.City {
		case core.CitySantaVitoria:
			s.SantaVitoria++
		case core.CityChui:
			s.Chui++
		}
	}
	return s
}

// Tab filter values understood by Filter beyond "all" and exact plans.
const (
	TabAll          = "all"
	TabSantaVitoria = "svp"
	TabChui         = "chui"
)

// Filter narrows a snapshot by free-text search and tab selection before
// aggregation. The query matches case-insensitively against name, exam,
// location, technician and city; the tab is either a city shortcut or an
// exact health-plan value.
func Filter(records []core.Record, query, tab string) []core.Record {
	out := make([]core.Record, 0, len(records))
	q := strings.ToLower(strings.TrimSpace(query))
	for _, r := range records {
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		switch tab {
		case "", TabAll:
		case TabSantaVitoria:
			if r.City != core.CitySantaVitoria {
				continue
			}
		case TabChui:
			if r.City != core.CityChui {
				continue
			}
		default:
			if r.Location != tab {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r core.Record, q string) bool {
	for _, field := range []string{r.Name, r.Exam, r.Location, r.Technician, r.City} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
