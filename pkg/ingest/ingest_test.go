package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/casegraph/pkg/metrics"
	"github.com/ritzau/casegraph/pkg/model"
)

func testBreaker() BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 2
	cfg.FailureThreshold = 1
	cfg.Timeout = time.Hour
	return cfg
}

func TestRecognizeSendsImageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocr", r.URL.Path)
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "scan.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "pixels", string(data))
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Maria Souza"})
	}))
	defer srv.Close()

	m := metrics.NewCollector("test")
	c := NewOCRClient(srv.URL+"/", time.Second, testBreaker(), m)

	text, err := c.Recognize(context.Background(), "scan.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", text)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestCalls.WithLabelValues("ocr", "success")))
}

func TestRecognizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Formato de arquivo não suportado"})
	}))
	defer srv.Close()

	c := NewOCRClient(srv.URL, time.Second, testBreaker(), nil)

	for range 3 {
		_, err := c.Recognize(context.Background(), "notes.txt", "text/plain", strings.NewReader("x"))
		var se *ServiceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Equal(t, "Formato de arquivo não suportado", se.Message)
	}
}

func TestBreakerOpensWhenServiceIsDown(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Erro interno ao processar o arquivo."})
	}))
	defer srv.Close()

	c := NewOCRClient(srv.URL, time.Second, testBreaker(), nil)
	ctx := context.Background()

	for range 2 {
		_, err := c.Recognize(ctx, "a.pdf", "application/pdf", strings.NewReader("%PDF"))
		var se *ServiceError
		require.ErrorAs(t, err, &se)
	}

	_, err := c.Recognize(ctx, "a.pdf", "application/pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}

func TestRecognizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOCRClient(url, time.Second, testBreaker(), nil)
	_, err := c.Recognize(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestGenerateReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-report-pptx", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "João Silva", got["nome_pessoa"])
		assert.Equal(t, "123.456.789-00", got["cpf"])
		assert.Contains(t, got, "vinculo_empresarial")

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	defer srv.Close()

	c := NewReportClient(srv.URL, time.Second, testBreaker(), nil)
	report, err := c.Generate(context.Background(), ReportFields{NomePessoa: "João Silva", CPF: "123.456.789-00"})
	require.NoError(t, err)

	assert.Equal(t, DefaultReportName, report.Filename)
	assert.Equal(t, []byte("PK\x03\x04"), report.Data)
}

func TestGenerateReportErrorIsPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Erro ao gerar o relatório PPTX.", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewReportClient(srv.URL, time.Second, testBreaker(), nil)
	_, err := c.Generate(context.Background(), ReportFields{})

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "report", se.Service)
	assert.Equal(t, "Erro ao gerar o relatório PPTX.", se.Message)
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, DefaultReportName, attachmentName(""))
	assert.Equal(t, "caso.pptx", attachmentName(`attachment; filename="caso.pptx"`))
	assert.Equal(t, DefaultReportName, attachmentName("attachment"))
}

func TestDocuments(t *testing.T) {
	docs := NewDocuments()
	first := docs.Add("recibo.pdf", "texto 1")
	second := docs.Add("foto.png", "texto 2")

	list := docs.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, docs.Select(first.ID))
	sel, ok := docs.Selected()
	require.True(t, ok)
	assert.Equal(t, "texto 1", sel.Content)

	require.NoError(t, docs.Delete(first.ID))
	_, ok = docs.Selected()
	assert.False(t, ok, "deleting the selected document clears the selection")

	assert.ErrorIs(t, docs.Delete(first.ID), model.ErrNotFound)
	assert.ErrorIs(t, docs.Select("missing"), model.ErrNotFound)
	assert.Len(t, docs.List(), 1)
}
