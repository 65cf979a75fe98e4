package core

import (
	"testing"
	"time"
)

func TestNewRecordInputValidate(t *testing.T) {
	good := NewRecordInput{
		Name:          "MARIA SILVA",
		Exam:          "TORAX PA",
		PatientNumber: 1,
		Location:      LocationSUS,
		Technician:    "ZETI",
		City:          CityChui,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []NewRecordInput{
		{Name: "M", Exam: "TORAX", PatientNumber: 1, Location: "SUS", Technician: "ZETI", City: CityChui},
		{Name: "MARIA", Exam: "", PatientNumber: 1, Location: "SUS", Technician: "ZETI", City: CityChui},
		{Name: "MARIA", Exam: "TORAX", PatientNumber: 0, Location: "SUS", Technician: "ZETI", City: CityChui},
		{Name: "MARIA", Exam: "TORAX", PatientNumber: 1, Location: "", Technician: "ZETI", City: CityChui},
		{Name: "MARIA", Exam: "TORAX", PatientNumber: 1, Location: "SUS", Technician: "", City: CityChui},
		{Name: "MARIA", Exam: "TORAX", PatientNumber: 1, Location: "SUS", Technician: "ZETI", City: ""},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFormatAndParseDate(t *testing.T) {
	d := time.Date(2025, time.January, 5, 13, 30, 0, 0, time.UTC)
	got := FormatDate(d)
	if got != "05/01/2025" {
		t.Fatalf("FormatDate = %q", got)
	}
	back, err := ParseDate(got)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if back.Day() != 5 || back.Month() != time.January || back.Year() != 2025 {
		t.Fatalf("round trip mismatch: %v", back)
	}
	if _, err := ParseDate("2025-01-05"); err == nil {
		t.Fatalf("expected error for ISO date")
	}
}

func TestMonthKey(t *testing.T) {
	cases := []struct {
		date string
		key  string
		ok   bool
	}{
		{"27/01/2025", "1/2025", true},
		{"01/12/2024", "12/2024", true},
		{"27-01-2025", "", false},
		{"27/13/2025", "", false},
		{"garbage", "", false},
	}
	for _, tc := range cases {
		key, ok := MonthKey(tc.date)
		if ok != tc.ok || key != tc.key {
			t.Fatalf("MonthKey(%q) = %q,%v want %q,%v", tc.date, key, ok, tc.key, tc.ok)
		}
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil); got != "1" {
		t.Fatalf("empty store NextID = %q", got)
	}
	records := []Record{{ID: "2"}, {ID: "10"}, {ID: "x"}, {ID: "7"}}
	if got := NextID(records); got != "11" {
		t.Fatalf("NextID = %q, want 11", got)
	}
}

func TestNextSequence(t *testing.T) {
	records := []Record{
		{ID: "1", Date: "27/01/2025"},
		{ID: "2", Date: "27/01/2025"},
		{ID: "3", Date: "28/01/2025"},
	}
	if got := NextSequence(records, "27/01/2025"); got != 3 {
		t.Fatalf("NextSequence = %d, want 3", got)
	}
	if got := NextSequence(records, "29/01/2025"); got != 1 {
		t.Fatalf("NextSequence new date = %d, want 1", got)
	}
}

func TestRecordPatchApply(t *testing.T) {
	orig := Record{
		ID: "5", Sequence: 2, Date: "27/01/2025",
		Name: "MARIA", Exam: "TORAX", PatientNumber: 3,
		Location: LocationSUS, Technician: "ZETI", City: CityChui,
	}
	loc := LocationDischarged
	city := CitySantaVitoria
	got := RecordPatch{Location: &loc, City: &city}.Apply(orig)
	if got.Location != LocationDischarged || got.City != CitySantaVitoria {
		t.Fatalf("patched fields not applied: %+v", got)
	}
	if got.ID != orig.ID || got.Sequence != orig.Sequence || got.Date != orig.Date ||
		got.Name != orig.Name || got.Exam != orig.Exam || got.PatientNumber != orig.PatientNumber ||
		got.Technician != orig.Technician {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
}
