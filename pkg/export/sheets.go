package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/klokku/pocketbudget/internal/config"
	"github.com/klokku/pocketbudget/pkg/ledger"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrSheetsNotConfigured = errors.New("google sheets export is not configured")

type SheetsAppender interface {
	// Append adds one row per expense and returns the number of rows written.
	Append(ctx context.Context, expenses []ledger.Expense) (int, error)
}

type SheetsExporter struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter from configuration, authenticating with the service account
// in cfg.CredentialsFile. Extra options are applied after the credentials.
func NewSheetsExporter(ctx context.Context, cfg config.Sheets, opts ...option.ClientOption) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrSheetsNotConfigured
	}
	if cfg.CredentialsFile != "" {
		credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		opts = append([]option.ClientOption{option.WithTokenSource(creds.TokenSource)}, opts...)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

func (s *SheetsExporter) Append(ctx context.Context, expenses []ledger.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []any{
			e.Date.String(),
			e.Description,
			e.Amount.InexactFloat64(),
			string(e.Category),
			e.ID,
		})
	}

	rng := fmt.Sprintf("%s!A:E", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append rows to sheet %s: %w", s.sheetName, err)
	}

	written := len(rows)
	if resp.Updates != nil {
		written = int(resp.Updates.UpdatedRows)
	}
	log.Infof("Exported %d expenses to spreadsheet %s", written, s.spreadsheetID)
	return written, nil
}
