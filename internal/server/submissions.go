package server

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/entity"
	"github.com/joseph-ayodele/certificate-verifier/internal/services/submissions"
)

const (
	multipartMemory   = 8 << 20
	maxStatusBodySize = 64 << 10
)

type extractedData struct {
	StudentID      *string `json:"studentID"`
	UniversityName *string `json:"universityName"`
}

type submitResponse struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	SubmissionID  int64         `json:"submissionId"`
	ExtractedData extractedData `json:"extractedData"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Success: false, Message: "Certificate file is too large"})
			return
		}
		// Anything else falls through to field validation.
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req := submissions.SubmitRequest{
		FullName: r.FormValue("full_name"),
		Phone:    r.FormValue("phone"),
		CivilID:  r.FormValue("civil_id"),
	}
	var file multipart.File
	if f, header, err := r.FormFile("certificate"); err == nil {
		file = f
		defer file.Close()
		req.File = file
		req.FileName = header.Filename
	}

	res, err := s.submissions.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "Error processing submission")
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		Message:      "Certificate submitted successfully",
		SubmissionID: res.SubmissionID,
		ExtractedData: extractedData{
			StudentID:      res.StudentID,
			UniversityName: res.UniversityName,
		},
	})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	subs, err := s.submissions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "Error fetching submissions")
		return
	}
	out := make([]entity.SubmissionSummary, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Summary())
	}
	writeData(w, out)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := submissionID(r)
	if !ok {
		s.writeError(w, r, common.NewNotFoundError("Submission not found"), "Error fetching submission")
		return
	}
	sub, err := s.submissions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "Error fetching submission")
		return
	}
	writeData(w, sub)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := submissionID(r)
	if !ok {
		s.writeError(w, r, common.NewNotFoundError("Submission not found"), "Error updating submission status")
		return
	}

	upd, err := decodeStatusUpdate(r)
	if err != nil {
		s.writeError(w, r, err, "Error updating submission status")
		return
	}
	if err := s.submissions.UpdateStatus(r.Context(), id, upd); err != nil {
		s.writeError(w, r, err, "Error updating submission status")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Submission status updated successfully"})
}

// decodeStatusUpdate accepts a JSON body or a urlencoded/multipart form.
func decodeStatusUpdate(r *http.Request) (submissions.StatusUpdate, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return submissions.StatusUpdate{}, common.NewValidationError("Invalid request body")
		}
		upd := submissions.StatusUpdate{Status: r.PostFormValue("status")}
		if vals, ok := r.PostForm["notes"]; ok && len(vals) > 0 {
			notes := vals[0]
			upd.Notes = &notes
		}
		return upd, nil
	default:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxStatusBodySize))
		if err != nil {
			return submissions.StatusUpdate{}, common.NewValidationError("Invalid request body")
		}
		return submissions.DecodeStatusUpdate(raw)
	}
}

func (s *Server) statusByPhone(w http.ResponseWriter, r *http.Request) {
	subs, err := s.submissions.ListByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		s.writeError(w, r, err, "Error fetching submissions")
		return
	}
	out := make([]entity.SubmissionStatusView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.StatusView())
	}
	writeData(w, out)
}

func submissionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
