package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"raiox/internal/core"
	"raiox/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New(nil)
	return NewServer(":0", st, nil), st
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: code=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec := get(t, s, "/readyz"); rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Fatalf("readyz: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestCreateRecord(t *testing.T) {
	s, st := newTestServer(t)

	rec := postForm(t, s, "/records", url.Values{
		"name":          {"joao da silva"},
		"exam":          {"torax pa"},
		"patientNumber": {"12"},
		"location":      {core.LocationSUS},
		"technician":    {"maria"},
		"city":          {core.CityChui},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: code=%d body=%q", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "record:created") {
		t.Fatalf("missing HX-Trigger, got %q", trigger)
	}

	records := st.Snapshot()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Name != "JOAO DA SILVA" || records[0].Exam != "TORAX PA" {
		t.Fatalf("record not uppercased: %+v", records[0])
	}
}

func TestCreateRecordValidation(t *testing.T) {
	s, st := newTestServer(t)

	rec := postForm(t, s, "/records", url.Values{
		"name":          {"x"},
		"exam":          {"torax pa"},
		"patientNumber": {"12"},
		"location":      {core.LocationSUS},
		"technician":    {"maria"},
		"city":          {core.CityChui},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(st.Snapshot()) != 0 {
		t.Fatalf("invalid record must not be stored")
	}
}

func TestCreateRecordMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/records"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestAddExam(t *testing.T) {
	s, st := newTestServer(t)
	base := st.Create(context.Background(), core.NewRecordInput{
		Name: "ana souza", Exam: "torax pa", PatientNumber: 3,
		Location: core.LocationEmergency, Technician: "jose", City: core.CitySantaVitoria,
	})

	rec := postForm(t, s, "/records/exams", url.Values{
		"id":            {base.ID},
		"exam":          {"perna direita"},
		"patientNumber": {"4"},
		"location":      {core.LocationSUS},
		"technician":    {"jose"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add exam: code=%d body=%q", rec.Code, rec.Body.String())
	}

	records := st.Snapshot()
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	added := records[1]
	if added.Name != base.Name || added.City != base.City {
		t.Fatalf("exam must inherit name and city: %+v", added)
	}
	if added.ID == base.ID {
		t.Fatalf("exam must get a fresh id")
	}
}

func TestAddExamUnknownPatient(t *testing.T) {
	s, _ := newTestServer(t)
	rec := postForm(t, s, "/records/exams", url.Values{
		"id":            {"999"},
		"exam":          {"torax pa"},
		"patientNumber": {"4"},
		"location":      {core.LocationSUS},
		"technician":    {"jose"},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateRecordPatchesOnlySubmittedFields(t *testing.T) {
	s, st := newTestServer(t)
	base := st.Create(context.Background(), core.NewRecordInput{
		Name: "ana souza", Exam: "torax pa", PatientNumber: 3,
		Location: core.LocationEmergency, Technician: "jose", City: core.CitySantaVitoria,
	})

	rec := postForm(t, s, "/records/update", url.Values{
		"id":       {base.ID},
		"location": {core.LocationDischarged},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code=%d body=%q", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "record:updated") {
		t.Fatalf("missing HX-Trigger, got %q", trigger)
	}

	got := st.Snapshot()[0]
	if got.Location != core.LocationDischarged {
		t.Fatalf("location not updated: %+v", got)
	}
	if got.City != base.City || got.Technician != base.Technician {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestDeleteRecord(t *testing.T) {
	s, st := newTestServer(t)
	base := st.Create(context.Background(), core.NewRecordInput{
		Name: "ana souza", Exam: "torax pa", PatientNumber: 3,
		Location: core.LocationEmergency, Technician: "jose", City: core.CitySantaVitoria,
	})

	rec := postForm(t, s, "/records/delete", url.Values{"id": {base.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: code=%d body=%q", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "record:deleted") {
		t.Fatalf("missing HX-Trigger, got %q", trigger)
	}
	if len(st.Snapshot()) != 0 {
		t.Fatalf("record not removed")
	}
}

func TestRecordTableFilters(t *testing.T) {
	s, st := newTestServer(t)
	st.Create(context.Background(), core.NewRecordInput{
		Name: "ana souza", Exam: "torax pa", PatientNumber: 3,
		Location: core.LocationEmergency, Technician: "jose", City: core.CitySantaVitoria,
	})
	st.Create(context.Background(), core.NewRecordInput{
		Name: "bruno lima", Exam: "perna direita", PatientNumber: 4,
		Location: core.LocationSUS, Technician: "maria", City: core.CityChui,
	})

	rec := get(t, s, "/ui/records?q=ana")
	if rec.Code != http.StatusOK {
		t.Fatalf("records partial: code=%d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ANA SOUZA") || strings.Contains(body, "BRUNO LIMA") {
		t.Fatalf("query filter not applied: %s", body)
	}

	rec = get(t, s, "/ui/records?tab=chui")
	body = rec.Body.String()
	if !strings.Contains(body, "BRUNO LIMA") || strings.Contains(body, "ANA SOUZA") {
		t.Fatalf("tab filter not applied: %s", body)
	}
}

func TestDashboardPartials(t *testing.T) {
	s, st := newTestServer(t)
	st.Create(context.Background(), core.NewRecordInput{
		Name: "ana souza", Exam: "torax pa", PatientNumber: 3,
		Location: core.LocationEmergency, Technician: "jose", City: core.CitySantaVitoria,
	})

	for _, path := range []string{
		"/ui/stats", "/ui/plans", "/ui/exam-types", "/ui/technicians",
		"/ui/body-parts", "/ui/cities", "/ui/trend",
	} {
		rec := get(t, s, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: code=%d body=%q", path, rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
			t.Fatalf("%s: content type %q", path, ct)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/ui/stats")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatalf("request 61 should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatalf("other clients are independent")
	}
}

func TestBarWidth(t *testing.T) {
	cases := []struct {
		count, max, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{5, 10, 50},
		{1, 1000, 2},
		{7, 0, 0},
	}
	for _, tc := range cases {
		if got := barWidth(tc.count, tc.max); got != tc.want {
			t.Fatalf("barWidth(%d, %d) = %d, want %d", tc.count, tc.max, got, tc.want)
		}
	}
}
