package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

type exportService struct {
	enrollments EnrollmentService
	repo        repositories.Repository
	logger      *slog.Logger
}

func NewExportService(enrollments EnrollmentService, repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{enrollments: enrollments, repo: repo, logger: logger}
}

// ExportCourseRoster writes an xlsx workbook with one row per enrollment.
// Authorization is the same check as viewing the roster.
func (s *exportService) ExportCourseRoster(ctx context.Context, callerAccountID, courseID uint, w io.Writer) error {
	roster, err := s.enrollments.GetCourseRoster(ctx, callerAccountID, courseID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	const sheet = "Roster"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"#", "Student", "Email", "Status", "Grade", "Enrolled At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	for i, entry := range roster.Roster {
		row := i + 2
		values := []interface{}{
			i + 1,
			entry.StudentName,
			entry.Email,
			string(entry.Status),
			nil,
			entry.EnrolledAt.Format("2006-01-02 15:04"),
		}
		if entry.Grade != nil {
			values[4] = *entry.Grade
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write roster row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "B", "C", 30)
	_ = f.SetColWidth(sheet, "F", "F", 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("roster exported", "course_id", courseID, "rows", len(roster.Roster))
	return nil
}
