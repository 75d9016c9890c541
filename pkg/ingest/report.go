package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
)

// DefaultReportName is used when the service does not name its attachment
const DefaultReportName = "Relatorio_Personalizado.pptx"

// maxReportSize caps how much of a generated presentation is buffered
const maxReportSize = 64 << 20

// ReportFields are merged by the report service into its slide template
type ReportFields struct {
	NomePessoa         string `json:"nome_pessoa"`
	CPF                string `json:"cpf"`
	Endereco           string `json:"endereco"`
	BensMoveis         string `json:"bens_moveis"`
	BensImoveis        string `json:"bens_imoveis"`
	VinculoEmpresarial string `json:"vinculo_empresarial"`
}

// Report is a generated presentation file
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportClient asks the report service to render a presentation
type ReportClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

// NewReportClient creates a client for the service at baseURL
func NewReportClient(baseURL string, timeout time.Duration, cfg BreakerConfig, m *metrics.Collector) *ReportClient {
	return &ReportClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker("report", cfg),
		metrics: m,
	}
}

// Generate posts the fields and returns the presentation
func (c *ReportClient) Generate(ctx context.Context, fields ReportFields) (*Report, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report fields: %w", err)
	}

	start := time.Now()
	report, err := execute(c.breaker, func() (*Report, error) {
		return c.post(ctx, payload)
	})
	c.metrics.RecordIngest("report", time.Since(start), err)
	if err != nil {
		logging.WarnContext(ctx, "report generation failed", "error", err)
		return nil, err
	}
	logging.InfoContext(ctx, "report generated", "file", report.Filename, "bytes", len(report.Data))
	return report, nil
}

func (c *ReportClient) post(ctx context.Context, payload []byte) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-report-pptx", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReportSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &ServiceError{Service: "report", StatusCode: resp.StatusCode, Message: msg}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return &Report{Filename: attachmentName(resp.Header.Get("Content-Disposition")), ContentType: contentType, Data: data}, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return DefaultReportName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return DefaultReportName
	}
	return params["filename"]
}
