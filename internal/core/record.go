package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Health-plan / admission categories offered by the UI. The field itself is
// free text: simple entry forms accept anything, only the select controls
// constrain it to this set.
const (
	LocationEmergency  = "PRONTO SOCORRO"
	LocationSUS        = "SUS"
	LocationInpatient  = "INTERNADO"
	LocationPrivate    = "PARTICULAR"
	LocationDischarged = "ALTA"
)

const (
	CitySantaVitoria = "SANTA VITÓRIA DO PALMAR"
	CityChui         = "CHUÍ"
)

// DateLayout is the record date format used everywhere, including the
// persisted snapshot.
const DateLayout = "02/01/2006"

// Record is one patient-exam entry. The same person may appear in several
// records, one per exam.
type Record struct {
	ID            string `json:"id"`
	Sequence      int    `json:"sequence"`
	Date          string `json:"date"`
	Name          string `json:"name"`
	Exam          string `json:"exam"`
	PatientNumber int    `json:"patientNumber"`
	Location      string `json:"location"`
	Technician    string `json:"technician"`
	City          string `json:"city"`
}

// RecordPatch is a partial update: nil fields are left untouched.
type RecordPatch struct {
	Name          *string
	Exam          *string
	PatientNumber *int
	Location      *string
	Technician    *string
	City          *string
}

// Apply merges the patch over r, returning the merged record.
func (p RecordPatch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Exam != nil {
		r.Exam = *p.Exam
	}
	if p.PatientNumber != nil {
		r.PatientNumber = *p.PatientNumber
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Technician != nil {
		r.Technician = *p.Technician
	}
	if p.City != nil {
		r.City = *p.City
	}
	return r
}

// NewRecordInput carries the caller-supplied fields for a registration.
// ID, sequence and date are computed by the store at creation time.
type NewRecordInput struct {
	Name          string
	Exam          string
	PatientNumber int
	Location      string
	Technician    string
	City          string
}

var (
	ErrEmptyName        = errors.New("empty patient name")
	ErrEmptyExam        = errors.New("empty exam description")
	ErrInvalidPatientNo = errors.New("patient number must be at least 1")
	ErrEmptyLocation    = errors.New("empty health plan")
	ErrEmptyTechnician  = errors.New("empty technician name")
	ErrEmptyCity        = errors.New("empty city")
)

// Validate checks the form-level constraints. The record store itself does
// not validate; this belongs to the entry surfaces.
func (in NewRecordInput) Validate() error {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return ErrEmptyName
	}
	if len(strings.TrimSpace(in.Exam)) < 2 {
		return ErrEmptyExam
	}
	if in.PatientNumber < 1 {
		return ErrInvalidPatientNo
	}
	if strings.TrimSpace(in.Location) == "" {
		return ErrEmptyLocation
	}
	if len(strings.TrimSpace(in.Technician)) < 2 {
		return ErrEmptyTechnician
	}
	if strings.TrimSpace(in.City) == "" {
		return ErrEmptyCity
	}
	return nil
}

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DD/MM/YYYY record date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse record date %q: %w", s, err)
	}
	return t, nil
}

// MonthKey derives the M/YYYY bucket key (month not zero-padded) from a
// DD/MM/YYYY date string. ok is false when the date does not parse; such
// records are silently excluded from monthly views.
func MonthKey(date string) (string, bool) {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return "", false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%d/%d", month, year), true
}

// MonthKeyOf renders the bucket key for a point in time.
func MonthKeyOf(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// NextID computes the id for a new record: max numeric id among the
// existing records plus one, "1" when the store is empty. Non-numeric ids
// are ignored.
func NextID(records []Record) string {
	max := 0
	for _, r := range records {
		if n, err := strconv.Atoi(r.ID); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// NextSequence computes the order-of-arrival rank within a creation date:
// one more than the count of records already carrying that date.
func NextSequence(records []Record, date string) int {
	n := 0
	for _, r := range records {
		if r.Date == date {
			n++
		}
	}
	return n + 1
}
