package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joseph-ayodele/certificate-verifier/internal/export"
)

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, s.exporter.CSV, export.CSVType, "csv", "Error exporting CSV")
}

func (s *Server) exportExcel(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, s.exporter.XLSX, export.XLSXType, "xlsx", "Error exporting Excel")
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, render func(context.Context) ([]byte, error), contentType, ext, failure string) {
	body, err := render(r.Context())
	if err != nil {
		s.writeError(w, r, err, failure)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=submissions_%d.%s", s.now().UnixMilli(), ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
