package http

import (
	"net/http"
	"time"

	"raiox/internal/core"
	"raiox/internal/log"
	"raiox/internal/report"
)

const (
	examTypeColumns = 10
	cityExamColumns = 5
)

// chartRow is one bar of a label/count chart partial.
type chartRow struct {
	Label string
	Count int
	Width int
}

func chartRows(pairs []core.LabelCount) []chartRow {
	max := 0
	for _, p := range pairs {
		if p.Count > max {
			max = p.Count
		}
	}
	rows := make([]chartRow, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, chartRow{Label: p.Label, Count: p.Count, Width: barWidth(p.Count, max)})
	}
	return rows
}

// filtered returns the current records narrowed by the request's q/tab.
func (s *Server) filtered(r *http.Request) []core.Record {
	query, tab := parseFilter(r)
	return report.Filter(s.records.Snapshot(), query, tab)
}

// renderChart executes a label/count chart template with shared row shaping.
func (s *Server) renderChart(w http.ResponseWriter, r *http.Request, name string, pairs []core.LabelCount) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Rows []chartRow
	}{Rows: chartRows(pairs)}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Sem dados</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", name)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro carregando painel</div>`))
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	stats := report.Stats(s.filtered(r))

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Sem dados</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "stats.html", stats); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "stats.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro carregando resumo</div>`))
	}
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "plans.html", report.ByLocation(s.filtered(r)))
}

func (s *Server) handleExamTypes(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "exam_types.html", report.ExamTypes(s.filtered(r), examTypeColumns))
}

func (s *Server) handleTechnicians(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "technicians.html", report.ByTechnician(s.filtered(r)))
}

func (s *Server) handleBodyParts(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "body_parts.html", report.BodyParts(s.filtered(r)))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	records := s.filtered(r)
	data := struct {
		Cities    []chartRow
		Breakdown core.CityExamBreakdown
	}{
		Cities:    chartRows(report.ByCity(records)),
		Breakdown: report.CityExams(records, cityExamColumns),
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Sem dados</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "cities.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "cities.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro carregando cidades</div>`))
	}
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buckets := report.MonthlyTrend(time.Now(), s.filtered(r))

	max := 0
	for _, b := range buckets {
		if b.Total > max {
			max = b.Total
		}
	}
	type trendRow struct {
		core.MonthBucket
		Width int
	}
	data := struct {
		Rows []trendRow
	}{}
	for _, b := range buckets {
		data.Rows = append(data.Rows, trendRow{MonthBucket: b, Width: barWidth(b.Total, max)})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Sem dados</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "trend.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "trend.html")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro carregando tendência</div>`))
	}
}
