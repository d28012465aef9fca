package sheets

import (
	"context"
	"fmt"

	"ledgerbot/internal/domain"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ClientConfig configures access to Google Sheets and Drive
type ClientConfig struct {
	CredentialsFile string
	RatePerSecond   float64
	Burst           int
}

// Client implements ValuesAPI and FilesAPI on the Google APIs.
// Every call waits on a shared token bucket because the APIs enforce per-minute quotas.
type Client struct {
	sheets  *sheetsapi.Service
	drive   *drive.Service
	limiter *rate.Limiter
}

// NewClient creates the Sheets and Drive services.
// Without a credentials file Application Default Credentials are used.
func NewClient(ctx context.Context, cfg ClientConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheetsapi.SpreadsheetsScope, drive.DriveScope))

	sheetsSvc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		sheets:  sheetsSvc,
		drive:   driveSvc,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

func (c *Client) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrRemoteStore, op, err)
	}
	return nil
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRemoteStore, op, err)
}

// Get reads a range with unformatted values
func (c *Client) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	if err := c.wait(ctx, "get values"); err != nil {
		return nil, err
	}

	resp, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("get values "+rng, err)
	}
	return resp.Values, nil
}

// BatchUpdate writes several ranges in one request
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, opt InputOption, data []CellRange) error {
	if err := c.wait(ctx, "update values"); err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateValuesRequest{ValueInputOption: string(opt)}
	for _, d := range data {
		req.Data = append(req.Data, &sheetsapi.ValueRange{Range: d.Range, Values: d.Values})
	}

	if _, err := c.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return remoteErr("update values", err)
	}
	return nil
}

// Append inserts rows after the last row of a table
func (c *Client) Append(ctx context.Context, spreadsheetID, rng string, opt InputOption, rows [][]interface{}) error {
	if err := c.wait(ctx, "append values"); err != nil {
		return err
	}

	_, err := c.sheets.Spreadsheets.Values.Append(spreadsheetID, rng, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(string(opt)).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return remoteErr("append values "+rng, err)
	}
	return nil
}

// AddSheet creates a new tab
func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	if err := c.wait(ctx, "add sheet"); err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return remoteErr("add sheet "+title, err)
	}
	return nil
}

// Copy clones a Drive file and returns the new file id
func (c *Client) Copy(ctx context.Context, fileID, name string) (string, error) {
	if err := c.wait(ctx, "copy file"); err != nil {
		return "", err
	}

	f, err := c.drive.Files.Copy(fileID, &drive.File{Name: name}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", remoteErr("copy file", err)
	}
	return f.Id, nil
}

// ShareReader grants read access without sending a notification email
func (c *Client) ShareReader(ctx context.Context, fileID, email string) error {
	if err := c.wait(ctx, "share file"); err != nil {
		return err
	}

	perm := &drive.Permission{Role: "reader", Type: "user", EmailAddress: email}
	_, err := c.drive.Permissions.Create(fileID, perm).
		SendNotificationEmail(false).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return remoteErr("share file", err)
	}
	return nil
}
