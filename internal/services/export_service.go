package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/surveycraft/survey-service/internal/repositories"
)

type exportService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	progress ProgressService
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, progress ProgressService) ExportService {
	return &exportService{
		repo:     repo,
		logger:   logger,
		progress: progress,
	}
}

var participantExportHeaders = []string{
	"Respondent ID", "Username", "Email", "Status", "Progress (%)",
	"Answered Questions", "Started At", "Completed At", "Last Answered At",
}

// ExportParticipantsToExcel renders the survey's participant list as an
// XLSX workbook. Authorization runs through the same creator/admin check
// as the participant listing itself.
func (s *exportService) ExportParticipantsToExcel(ctx context.Context, surveyID uint, requesterID string) ([]byte, error) {
	participants, err := s.progress.GetSurveyParticipants(ctx, surveyID, nil, requesterID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Participants"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range participantExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, participant := range participants {
		row := s.participantToRow(participant)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported participants to Excel",
		"survey_id", surveyID,
		"participants", len(participants))

	return buf.Bytes(), nil
}

// ExportParticipantsToCSV renders the same participant rows as CSV.
func (s *exportService) ExportParticipantsToCSV(ctx context.Context, surveyID uint, requesterID string) ([]byte, error) {
	participants, err := s.progress.GetSurveyParticipants(ctx, surveyID, nil, requesterID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(participantExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, participant := range participants {
		if err := writer.Write(s.participantToRow(participant)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Info("Exported participants to CSV",
		"survey_id", surveyID,
		"participants", len(participants))

	return buf.Bytes(), nil
}

func (s *exportService) participantToRow(participant *ParticipantResponse) []string {
	progress := participant.Progress
	return []string{
		participant.Respondent.ID,
		participant.Respondent.Username,
		participant.Respondent.Email,
		string(progress.Status),
		strconv.Itoa(progress.Progress),
		strconv.Itoa(len(progress.AnsweredQuestions)),
		formatExportTime(progress.StartedAt),
		formatExportTime(progress.CompletedAt),
		formatExportTime(progress.LastAnsweredAt),
	}
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
