package core

// LabelCount is one chart slice or bar: a display label and its tally.
type LabelCount struct {
	Label string
	Count int
}

// Stats is the dashboard header summary.
type Stats struct {
	Total        int
	Emergency    int
	SUS          int
	Inpatient    int
	SantaVitoria int
	Chui         int
}

// MonthBucket is one point of the 6-month trend line. Total counts every
// record in the month; the three sub-counters are mutually exclusive.
type MonthBucket struct {
	Month     string // M/YYYY
	Total     int
	Emergency int
	SUS       int
	Private   int
}

// CityExamRow is one city's counts over the shared exam-type columns.
type CityExamRow struct {
	City   string
	Counts []int
}

// CityExamBreakdown is the city × exam-type cross-tabulation: one column
// per exam-type key, one row per city, counts aligned with ExamTypes.
type CityExamBreakdown struct {
	ExamTypes []string
	Rows      []CityExamRow
}
