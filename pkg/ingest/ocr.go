package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
)

// OCRClient sends documents to the OCR service. Every call is a single
// attempt; a down service trips the breaker so later calls fail fast.
type OCRClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

// NewOCRClient creates a client for the service at baseURL
func NewOCRClient(baseURL string, timeout time.Duration, cfg BreakerConfig, m *metrics.Collector) *OCRClient {
	return &OCRClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker("ocr", cfg),
		metrics: m,
	}
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Recognize uploads one PDF or image as multipart field "image" and returns
// the extracted text
func (c *OCRClient) Recognize(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	body, formType, err := encodeUpload(filename, contentType, r)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := execute(c.breaker, func() (string, error) {
		return c.post(ctx, body, formType)
	})
	c.metrics.RecordIngest("ocr", time.Since(start), err)
	if err != nil {
		logging.WarnContext(ctx, "ocr failed", "file", filename, "error", err)
		return "", err
	}
	logging.InfoContext(ctx, "ocr completed", "file", filename, "chars", len(text))
	return text, nil
}

func encodeUpload(filename, contentType string, r io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create upload part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish upload: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *OCRClient) post(ctx context.Context, body *bytes.Buffer, formType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", fmt.Errorf("failed to build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", formType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &ServiceError{Service: "ocr", StatusCode: resp.StatusCode, Message: msg}
	}
	return out.Text, nil
}
