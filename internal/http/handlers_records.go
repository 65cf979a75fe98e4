package http

import (
	"html/template"
	"net/http"
	"strings"

	"raiox/internal/core"
	"raiox/internal/log"
	"raiox/internal/report"
	"raiox/internal/store"
)

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := log.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.ErrorContext(r.Context(), "Parse form error",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	in := core.NewRecordInput{
		Name:          sanitizeInput(r.Form.Get("name")),
		Exam:          sanitizeInput(r.Form.Get("exam")),
		PatientNumber: parsePositiveInt(r.Form.Get("patientNumber")),
		Location:      sanitizeInput(r.Form.Get("location")),
		Technician:    sanitizeInput(r.Form.Get("technician")),
		City:          sanitizeInput(r.Form.Get("city")),
	}
	if err := in.Validate(); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados inválidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	rec := s.records.Create(r.Context(), in)
	logger.InfoContext(r.Context(), "Record created",
		log.FieldOperation, log.OpCreate,
		log.FieldRecordID, rec.ID,
		log.FieldExam, rec.Exam,
		log.FieldLocation, rec.Location)

	w.Header().Set("HX-Trigger", `{"record:created": {"id": "`+rec.ID+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Paciente registrado (#` + template.HTMLEscapeString(rec.ID) + `): ` +
		template.HTMLEscapeString(rec.Name) +
		` — ` + template.HTMLEscapeString(rec.Exam) + `</div>`))
}

func (s *Server) handleAddExam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := log.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.ErrorContext(r.Context(), "Parse form error",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	patientID := strings.TrimSpace(r.Form.Get("id"))
	in := store.ExamInput{
		Exam:          sanitizeInput(r.Form.Get("exam")),
		PatientNumber: parsePositiveInt(r.Form.Get("patientNumber")),
		Location:      sanitizeInput(r.Form.Get("location")),
		Technician:    sanitizeInput(r.Form.Get("technician")),
	}
	if patientID == "" || len(in.Exam) < 2 || in.PatientNumber < 1 || in.Location == "" || len(in.Technician) < 2 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados do exame inválidos</div>`))
		return
	}

	rec, ok := s.records.AddExam(r.Context(), patientID, in)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Paciente não encontrado</div>`))
		return
	}
	logger.InfoContext(r.Context(), "Exam added",
		log.FieldOperation, log.OpAddExam,
		log.FieldRecordID, rec.ID,
		log.FieldPatient, patientID,
		log.FieldExam, rec.Exam)

	w.Header().Set("HX-Trigger", `{"record:created": {"id": "`+rec.ID+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Exame adicionado (#` + template.HTMLEscapeString(rec.ID) + `): ` +
		template.HTMLEscapeString(rec.Exam) + `</div>`))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := log.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Identificador ausente</div>`))
		return
	}

	// Only fields present in the form are patched.
	var patch core.RecordPatch
	if r.Form.Has("location") {
		v := sanitizeInput(r.Form.Get("location"))
		patch.Location = &v
	}
	if r.Form.Has("city") {
		v := sanitizeInput(r.Form.Get("city"))
		patch.City = &v
	}
	if r.Form.Has("technician") {
		v := strings.ToUpper(sanitizeInput(r.Form.Get("technician")))
		patch.Technician = &v
	}

	s.records.Update(r.Context(), id, patch)
	logger.InfoContext(r.Context(), "Record updated",
		log.FieldOperation, log.OpUpdate, log.FieldRecordID, id)

	w.Header().Set("HX-Trigger", `{"record:updated": {"id": "`+id+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Registro atualizado (#` + template.HTMLEscapeString(id) + `)</div>`))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := log.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Identificador ausente</div>`))
		return
	}

	s.records.Remove(r.Context(), id)
	logger.InfoContext(r.Context(), "Record removed",
		log.FieldOperation, log.OpRemove, log.FieldRecordID, id)

	w.Header().Set("HX-Trigger", `{"record:deleted": {"id": "`+id+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Registro removido (#` + template.HTMLEscapeString(id) + `)</div>`))
}

// handleRecordTable renders the searchable record table partial.
func (s *Server) handleRecordTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	query, tab := parseFilter(r)

	records := report.Filter(s.records.Snapshot(), query, tab)

	data := struct {
		Query   string
		Tab     string
		Total   int
		Records []core.Record
	}{Query: query, Tab: tab, Total: len(records), Records: records}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="records" class="records"><div class="placeholder">Registros: ` + template.HTMLEscapeString(query) + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "records_table.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "records_table.html")
		_, _ = w.Write([]byte(`<section id="records" class="records"><div class="placeholder">Erro carregando registros</div></section>`))
	}
}
