package api

import (
	"bytes"
	"io"
	"net/http"

	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/service"

	"github.com/gorilla/mux"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) submitReport(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.svc.SubmitReport(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports, err := s.svc.ListReports(r.Context(), models.ReportFilter{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Office: q.Get("office"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.svc.UpdateReport(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) commissionable(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Commissionable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) listEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.svc.ListEdits(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if edits == nil {
		edits = []models.EditEvent{}
	}
	s.writeJSON(w, http.StatusOK, edits)
}

func (s *Server) verifyReport(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.svc.VerifyReport(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// attachReceipt expects a multipart form with a "file" part and an optional
// "editor" field.
func (s *Server) attachReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, &parsererror.ValidationError{Field: "file", Reason: err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, &parsererror.ValidationError{Field: "file", Reason: err.Error()})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	report, err := s.svc.AttachReceipt(r.Context(), mux.Vars(r)["id"], header.Filename, contentType, file, r.FormValue("editor"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// importMatrix accepts the raw export (CSV with header or tab paste) as the
// request body.
func (s *Server) importMatrix(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	result, _, err := s.svc.ImportMatrix(r.Context(), body, "upload")
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	s.writeJSON(w, status, result)
}

func (s *Server) reconcileMatrix(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	result, err := s.svc.ReconcileMatrix(r.Context(), body, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) saveNameMapping(w http.ResponseWriter, r *http.Request) {
	var req service.NameMappingRequest
	if !s.decode(w, r, &req) {
		return
	}
	mapping, err := s.svc.SaveNameMapping(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapping)
}

func (s *Server) listNameMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.svc.ListNameMappings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if mappings == nil {
		mappings = []models.NameMapping{}
	}
	s.writeJSON(w, http.StatusOK, mappings)
}

func (s *Server) rollup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.Rollup(r.Context(), models.ReportFilter{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Office: q.Get("office"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (io.Reader, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		s.writeError(w, &parsererror.ValidationError{Field: "body", Reason: err.Error()})
		return nil, false
	}
	return bytes.NewReader(data), true
}
