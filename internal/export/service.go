// Package export renders stored submissions as CSV or XLSX downloads.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/entity"
)

const (
	SheetName = "Submissions"
	CSVType   = "text/csv"
	XLSXType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "2006-01-02 15:04:05"
)

var (
	headers = []string{
		"ID",
		"Full Name",
		"Phone",
		"Civil ID",
		"Student ID",
		"University",
		"Status",
		"Notes",
		"Created At",
		"Updated At",
	}
	columnWidths = []float64{5, 25, 15, 15, 15, 30, 12, 30, 20, 20}
)

// Lister lists every submission, newest first.
type Lister interface {
	List(ctx context.Context) ([]*entity.Submission, error)
}

// Service is a tiny façade over the submission store that produces export bytes.
type Service struct {
	repo   Lister
	logger *slog.Logger
}

func NewService(repo Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CSV returns every submission as CSV with a header row.
func (s *Service) CSV(ctx context.Context) ([]byte, error) {
	start := time.Now()
	subs, err := s.load(ctx, "Error exporting CSV")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "Error exporting CSV", err)
	}
	for _, sub := range subs {
		if err := w.Write(row(sub)); err != nil {
			return nil, common.NewAppError(common.CodeInternal, "Error exporting CSV", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "Error exporting CSV", err)
	}

	s.logger.Info("export.csv.ok", "rows", len(subs), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// XLSX returns every submission as a single-sheet workbook.
func (s *Service) XLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	subs, err := s.load(ctx, "Error exporting Excel")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "Error exporting Excel", err)
	}

	write := func(col, rowNum int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, rowNum)
		_ = f.SetCellValue(SheetName, cell, v)
	}
	for i, h := range headers {
		write(i+1, 1, h)
	}
	for i, sub := range subs {
		r := i + 2
		write(1, r, sub.ID)
		for j, v := range row(sub)[1:] {
			write(j+2, r, v)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError(common.CodeInternal, "Error exporting Excel", fmt.Errorf("xlsx write: %w", err))
	}

	s.logger.Info("export.xlsx.ok", "rows", len(subs), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func (s *Service) load(ctx context.Context, failure string) ([]*entity.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, failure, err)
	}
	if len(subs) == 0 {
		return nil, common.NewNotFoundError("No data to export")
	}
	return subs, nil
}

func row(s *entity.Submission) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.FullName,
		s.Phone,
		s.CivilID,
		deref(s.ExtractedStudentID),
		deref(s.ExtractedUniversity),
		string(s.Status),
		deref(s.Notes),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
