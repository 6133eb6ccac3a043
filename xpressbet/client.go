// Package xpressbet submits wager requests to the XpressBet gateway as a
// generated CSV file upload. One outbound call per batch, no retries; the
// generated file never outlives the request.
package xpressbet

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Wager is one bet request line.
type Wager struct {
	TrackCode  string  `json:"trackCode" validate:"required"`
	Date       string  `json:"date" validate:"required"`
	RaceNumber int     `json:"raceNumber" validate:"min=1,max=15"`
	BetType    string  `json:"betType" validate:"required"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	Horses     []int   `json:"horses" validate:"required,min=1,dive,min=1,max=16"`
}

// Receipt is the gateway's confirmation.
type Receipt struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// Client talks to the gateway.
type Client struct {
	gatewayURL string
	account    string
	pin        string
	httpc      *http.Client
	log        *zap.Logger
}

var wagerValidate = validator.New()

// NewClient builds a gateway client. A nil logger falls back to the global
// zap logger.
func NewClient(gatewayURL, account, pin string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.L()
	}
	return &Client{
		gatewayURL: gatewayURL,
		account:    account,
		pin:        pin,
		httpc:      &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Validate checks every wager line before anything is written or sent.
func Validate(wagers []Wager) error {
	if len(wagers) == 0 {
		return fmt.Errorf("no wagers in request")
	}
	for i, w := range wagers {
		if err := wagerValidate.Struct(w); err != nil {
			return fmt.Errorf("wager %d: %w", i, err)
		}
	}
	return nil
}

// WriteCSV writes the wager batch to a temp file in the gateway's upload
// format and returns its path. The caller owns removal.
func (c *Client) WriteCSV(wagers []Wager) (string, error) {
	f, err := os.CreateTemp("", "xpressbet-*.csv")
	if err != nil {
		return "", fmt.Errorf("create wager file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"account", "track", "date", "race", "bet_type", "amount", "horses"}); err != nil {
		f.Close()
		return "", fmt.Errorf("write wager header: %w", err)
	}
	for _, wg := range wagers {
		horses := make([]string, len(wg.Horses))
		for i, h := range wg.Horses {
			horses[i] = strconv.Itoa(h)
		}
		record := []string{
			c.account,
			wg.TrackCode,
			wg.Date,
			strconv.Itoa(wg.RaceNumber),
			wg.BetType,
			fmt.Sprintf("%.2f", wg.Amount),
			strings.Join(horses, "-"),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return "", fmt.Errorf("write wager record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("flush wager file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close wager file: %w", err)
	}
	return f.Name(), nil
}

// Submit validates the batch, generates the CSV, uploads it and returns the
// gateway receipt. The temp file is removed whatever happens.
func (c *Client) Submit(ctx context.Context, wagers []Wager) (*Receipt, error) {
	if err := Validate(wagers); err != nil {
		return nil, err
	}

	path, err := c.WriteCSV(wagers)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			c.log.Warn("remove wager file failed", zap.String("path", path), zap.Error(err))
		}
	}()

	body, contentType, err := c.multipartBody(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, body)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit wagers: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	receipt := &Receipt{}
	if err := json.Unmarshal(raw, receipt); err != nil {
		// Some gateway deployments answer with a bare reference string.
		receipt.Status = "accepted"
		receipt.Reference = strings.TrimSpace(string(raw))
	}

	c.log.Info("wagers submitted",
		zap.Int("count", len(wagers)),
		zap.String("reference", receipt.Reference))
	return receipt, nil
}

func (c *Client) multipartBody(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open wager file: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("account", c.account); err != nil {
		return nil, "", fmt.Errorf("write account field: %w", err)
	}
	if err := mw.WriteField("pin", c.pin); err != nil {
		return nil, "", fmt.Errorf("write pin field: %w", err)
	}

	part, err := mw.CreateFormFile("file", "wagers.csv")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy wager file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}

	return strings.NewReader(buf.String()), mw.FormDataContentType(), nil
}
