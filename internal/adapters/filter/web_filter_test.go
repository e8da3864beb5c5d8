package filter

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/adapters/cache"
	"github.com/mikey/phish-detector/internal/adapters/localmodel"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/dataset"
	"github.com/mikey/phish-detector/internal/ml"
	"github.com/mikey/phish-detector/internal/textproc"
	"github.com/mikey/phish-detector/internal/whitelist"
)

// newTestFilter builds a web filter around a model trained on the bundled
// samples, the same pipeline the server runs in production.
func newTestFilter(t *testing.T) *WebFilter {
	t.Helper()

	logger := zap.NewNop()
	processor := textproc.NewProcessor(logger)

	samples := dataset.SampleDataset()
	docs := make([][]string, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		docs[i] = processor.Tokenize(s.Text)
		labels[i] = s.Label
	}
	pipeline := ml.NewPipeline(ml.DefaultVectorizerConfig(), 0.1)
	require.NoError(t, pipeline.Fit(docs, labels))

	memCache := cache.NewMemoryCache(logger, time.Hour)
	t.Cleanup(memCache.Stop)

	service := core.NewDetectorService(
		localmodel.New(pipeline, processor, logger),
		memCache,
		logger,
		true,
		time.Hour,
		0.5,
		whitelist.NewChecker(nil, logger),
	)

	f, err := NewWebFilter(service, processor, logger, "127.0.0.1:0", 1<<20)
	require.NoError(t, err)
	return f
}

func postForm(t *testing.T, handler http.Handler, text string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebFilterIndexPage(t *testing.T) {
	f := newTestFilter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Phishing Email Detector")
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, examplePhishing)
}

func TestWebFilterUnknownPath(t *testing.T) {
	f := newTestFilter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebFilterClassifyPhishing(t *testing.T) {
	f := newTestFilter(t)

	rec := postForm(t, f.Handler(), "URGENT: Your account has been compromised! Click here to verify your password immediately.")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "appears to be a phishing attempt")
	assert.Contains(t, body, "Phishing probability")
}

func TestWebFilterClassifyLegitimate(t *testing.T) {
	f := newTestFilter(t)

	rec := postForm(t, f.Handler(), "Hi team, the weekly meeting is moved to 3pm tomorrow. See you there.")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appears to be legitimate")
}

func TestWebFilterEmptySubmission(t *testing.T) {
	f := newTestFilter(t)

	rec := postForm(t, f.Handler(), "   ")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter some email text")
}

func TestWebFilterClassifyRequiresPost(t *testing.T) {
	f := newTestFilter(t)

	req := httptest.NewRequest(http.MethodGet, "/classify", nil)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestWebFilterTxtUpload(t *testing.T) {
	f := newTestFilter(t)

	body, contentType := multipartUpload(t, "email.txt",
		"Congratulations! You've won the lottery. Click the link and provide your bank details.")
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appears to be a phishing attempt")
}

func TestWebFilterEmlUpload(t *testing.T) {
	f := newTestFilter(t)

	raw := "From: it-support@evil.example\r\n" +
		"Subject: Password verification required\r\n" +
		"\r\n" +
		"Your account has been compromised. Click here to verify your password and secure your account.\r\n"
	body, contentType := multipartUpload(t, "suspicious.eml", raw)
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appears to be a phishing attempt")
}

func TestWebFilterProcessEmail(t *testing.T) {
	f := newTestFilter(t)

	result, err := f.ProcessEmail(context.Background(), &core.Email{
		Body: "Verify your account now or it will be suspended. Click here immediately.",
	})
	require.NoError(t, err)
	assert.True(t, result.IsPhishing)
}

func TestWebFilterStartStop(t *testing.T) {
	f := newTestFilter(t)

	require.NoError(t, f.Start())
	require.NoError(t, f.Stop())
}
