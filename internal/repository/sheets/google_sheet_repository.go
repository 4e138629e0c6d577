package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

const snapshotRange = "Snapshots!A:Q"

// RowWriter is the spreadsheet primitive the exporter needs.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository appends rows using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// SnapshotExporter writes farm snapshots as spreadsheet rows.
type SnapshotExporter struct {
	writer RowWriter
}

func NewSnapshotExporter(writer RowWriter) *SnapshotExporter {
	return &SnapshotExporter{writer: writer}
}

// ExportSnapshot appends one row per snapshot, columns in FarmSnapshot order.
func (e *SnapshotExporter) ExportSnapshot(ctx context.Context, s models.FarmSnapshot) error {
	return e.writer.WriteRow(ctx, snapshotRange, SnapshotRow(s))
}

// SnapshotRow flattens a snapshot into spreadsheet cells.
func SnapshotRow(s models.FarmSnapshot) []interface{} {
	return []interface{}{
		s.Date.Format("2006-01-02"),
		s.BreederBatches,
		s.BreederBirds,
		s.EggsReceived,
		s.IncubatorCapacity,
		s.IncubatorOccupied,
		s.IncubatorAvailable,
		s.EggsSet,
		s.EggsCandled,
		s.FertileEggs,
		s.ChicksHatched,
		s.ChicksAvailable,
		s.ChickMortality,
		s.ChicksSold,
		s.SalesRevenue,
		s.FertilityRate,
		s.HatchRate,
	}
}
