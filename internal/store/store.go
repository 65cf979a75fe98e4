// Package store owns the canonical ordered list of patient-exam records.
//
// The list lives in memory for the lifetime of the process and is mirrored
// to a key-value snapshot after every mutation. The store is the only
// writer; readers get copies. Persistence is best-effort: a missing or
// failing blob store never fails an operation, the store just keeps the
// list in memory and retries the full write on the next occasion.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"raiox/internal/core"
	"raiox/internal/kv"
)

type Store struct {
	mu      sync.Mutex
	blob    kv.Store
	key     string
	now     func() time.Time
	records []core.Record
	dirty   bool
}

type Option func(*Store)

// WithNow overrides the clock used for creation dates.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKey overrides the snapshot key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New builds a store over the given blob backend. blob may be nil, in which
// case the store runs memory-only until AttachBlob is called.
func New(blob kv.Store, opts ...Option) *Store {
	s := &Store{
		blob: blob,
		key:  kv.SnapshotKey,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load initializes the canonical list: the persisted snapshot verbatim when
// one exists, the built-in sample dataset otherwise. Stored records are not
// validated; whatever was saved is trusted as-is. Load never fails — an
// unreadable backend or an undecodable snapshot degrades to the seed.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blob != nil {
		blob, ok, err := s.blob.Get(ctx, s.key)
		if err != nil {
			slog.WarnContext(ctx, "Snapshot read failed, starting from seed data",
				"key", s.key, "error", err)
		} else if ok {
			var records []core.Record
			if err := json.Unmarshal(blob, &records); err != nil {
				slog.WarnContext(ctx, "Snapshot is not decodable, starting from seed data",
					"key", s.key, "error", err)
			} else {
				s.records = records
				slog.InfoContext(ctx, "Loaded record snapshot",
					"key", s.key, "records", len(records))
				return
			}
		}
	}

	s.records = seedRecords()
	s.dirty = true
	slog.InfoContext(ctx, "Seeded record store", "records", len(s.records))
}

// AttachBlob wires a blob store after construction and flushes the current
// list, picking up any writes that were deferred while persistence was
// unavailable.
func (s *Store) AttachBlob(ctx context.Context, blob kv.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	if s.dirty {
		s.persistLocked(ctx)
	}
}

// Snapshot returns a copy of the canonical list.
func (s *Store) Snapshot() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Add appends rec and persists. The caller is trusted to have computed
// id/sequence/date (see Create); no uniqueness check happens here.
func (s *Store) Add(ctx context.Context, rec core.Record) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.persistLocked(ctx)
	return s.copyLocked()
}

// Update merges patch over the record with the given id. An unknown id is
// a silent no-op, not an error.
func (s *Store) Update(ctx context.Context, id string, patch core.RecordPatch) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records[i] = patch.Apply(r)
			s.persistLocked(ctx)
			break
		}
	}
	return s.copyLocked()
}

// Remove deletes the record with the given id; at most one matches since
// ids are unique. Unknown ids are a silent no-op.
func (s *Store) Remove(ctx context.Context, id string) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.persistLocked(ctx)
			break
		}
	}
	return s.copyLocked()
}

// Create registers a new patient-exam record: id is max numeric id plus
// one, sequence ranks the record within today's arrivals, and the free-text
// fields are uppercased the way the registration form does. The id and
// sequence computations are safe against concurrent Create calls because
// they run under the store lock.
func (s *Store) Create(ctx context.Context, in core.NewRecordInput) core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := core.FormatDate(s.now())
	rec := core.Record{
		ID:            core.NextID(s.records),
		Sequence:      core.NextSequence(s.records, date),
		Date:          date,
		Name:          strings.ToUpper(in.Name),
		Exam:          strings.ToUpper(in.Exam),
		PatientNumber: in.PatientNumber,
		Location:      in.Location,
		Technician:    strings.ToUpper(in.Technician),
		City:          in.City,
	}
	s.records = append(s.records, rec)
	s.persistLocked(ctx)
	return rec
}

// ExamInput carries the fields of an additional exam for a known patient.
type ExamInput struct {
	Exam          string
	PatientNumber int
	Location      string
	Technician    string
}

// AddExam registers a further exam for the patient of an existing record:
// name and city are copied from that record, everything else is fresh.
// ok is false when no record carries patientID.
func (s *Store) AddExam(ctx context.Context, patientID string, in ExamInput) (core.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var base *core.Record
	for i := range s.records {
		if s.records[i].ID == patientID {
			base = &s.records[i]
			break
		}
	}
	if base == nil {
		return core.Record{}, false
	}

	date := core.FormatDate(s.now())
	rec := core.Record{
		ID:            core.NextID(s.records),
		Sequence:      core.NextSequence(s.records, date),
		Date:          date,
		Name:          base.Name,
		Exam:          strings.ToUpper(in.Exam),
		PatientNumber: in.PatientNumber,
		Location:      in.Location,
		Technician:    strings.ToUpper(in.Technician),
		City:          base.City,
	}
	s.records = append(s.records, rec)
	s.persistLocked(ctx)
	return rec, true
}

func (s *Store) copyLocked() []core.Record {
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// persistLocked serializes the whole list and writes it under the snapshot
// key. Failures are absorbed: the operation already succeeded in memory and
// the caller is not told that durability was skipped.
func (s *Store) persistLocked(ctx context.Context) {
	if s.blob == nil {
		s.dirty = true
		return
	}
	blob, err := json.Marshal(s.records)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot marshal failed", "error", err)
		s.dirty = true
		return
	}
	if err := s.blob.Set(ctx, s.key, blob); err != nil {
		slog.WarnContext(ctx, "Snapshot write failed, keeping records in memory",
			"key", s.key, "error", err)
		s.dirty = true
		return
	}
	s.dirty = false
}
