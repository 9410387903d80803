package export

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowAppender appends denormalized rows to an external tabular store.
type RowAppender interface {
	Append(ctx context.Context, rows [][]interface{}) error
}

// SheetAppender appends rows to a fixed Google Sheets range. Appends are
// purely additive; the sheet is an audit trail, not a source of truth.
type SheetAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetAppender builds a Sheets client scoped to a single spreadsheet range.
func NewSheetAppender(ctx context.Context, credentialsFile, spreadsheetID, writeRange string) (*SheetAppender, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id required")
	}
	if writeRange == "" {
		return nil, fmt.Errorf("write range required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	return &SheetAppender{svc: svc, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

// Append adds the rows after the last populated row of the configured range.
func (a *SheetAppender) Append(ctx context.Context, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	values := &sheets.ValueRange{Values: rows}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append sheet rows: %w", err)
	}
	return nil
}
