package filter

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/textproc"
)

//go:embed templates/*.html
var templateFS embed.FS

// Example emails shown on the form page.
const (
	examplePhishing   = "URGENT: Your account has been compromised! Click here immediately to verify your identity. Enter your password now to secure your account."
	exampleLegitimate = "Hi team, just a reminder about our weekly meeting tomorrow at 10 AM. Please review the agenda I sent earlier."
)

// WebFilter serves the HTML form front end
type WebFilter struct {
	service       *core.DetectorService
	processor     *textproc.Processor
	logger        *zap.Logger
	listenAddr    string
	maxUploadSize int64
	server        *http.Server
	templates     *template.Template
}

// indexData feeds the form template
type indexData struct {
	Error             string
	ExamplePhishing   string
	ExampleLegitimate string
}

// resultData feeds the verdict template
type resultData struct {
	Result        *core.ClassificationResult
	Preview       string
	ConfidencePct string
	PhishingPct   string
	LegitimatePct string
}

// NewWebFilter creates a new web front end
func NewWebFilter(
	service *core.DetectorService,
	processor *textproc.Processor,
	logger *zap.Logger,
	listenAddr string,
	maxUploadSize int64,
) (*WebFilter, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	f := &WebFilter{
		service:       service,
		processor:     processor,
		logger:        logger,
		listenAddr:    listenAddr,
		maxUploadSize: maxUploadSize,
		templates:     templates,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handleIndex)
	mux.HandleFunc("/classify", f.handleClassify)

	f.server = &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return f, nil
}

// Start starts the HTTP server
func (f *WebFilter) Start() error {
	f.logger.Info("Web front end starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully
func (f *WebFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.server.Shutdown(ctx)
}

// ProcessEmail classifies an email directly, bypassing HTTP
func (f *WebFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.service.ClassifyEmail(ctx, email)
}

// Handler exposes the HTTP handler, mainly for tests
func (f *WebFilter) Handler() http.Handler {
	return f.server.Handler
}

func (f *WebFilter) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f.renderIndex(w, "")
}

func (f *WebFilter) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, f.maxUploadSize)

	text, err := f.extractSubmission(r)
	if err != nil {
		f.logger.Warn("Failed to read submission", zap.Error(err))
		f.renderIndex(w, "Could not read the submitted email: "+err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		f.renderIndex(w, "Please enter some email text to analyze.")
		return
	}

	email := &core.Email{Body: text}
	result, err := f.service.ClassifyEmail(r.Context(), email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		http.Error(w, "classification failed", http.StatusInternalServerError)
		return
	}

	f.logger.Info("Classified submission",
		zap.String("processing_id", result.ProcessingID),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.Float64("phishing_probability", result.PhishingProbability))

	data := resultData{
		Result:        result,
		Preview:       f.processor.TruncateText(text, 300),
		ConfidencePct: fmt.Sprintf("%.1f", result.Confidence*100),
		PhishingPct:   fmt.Sprintf("%.1f", result.PhishingProbability*100),
		LegitimatePct: fmt.Sprintf("%.1f", result.LegitimateProbability*100),
	}
	if err := f.templates.ExecuteTemplate(w, "result.html", data); err != nil {
		f.logger.Error("Failed to render result template", zap.Error(err))
	}
}

// extractSubmission pulls the email text out of the form: either the pasted
// textarea content or an uploaded .txt/.eml file
func (f *WebFilter) extractSubmission(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(f.maxUploadSize); err != nil {
			return "", err
		}
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			raw, err := io.ReadAll(file)
			if err != nil {
				return "", err
			}
			content := f.processor.SanitizeUTF8(string(raw))
			if strings.HasSuffix(strings.ToLower(header.Filename), ".eml") {
				if msg, err := mail.ReadMessage(strings.NewReader(content)); err == nil {
					text, err := extractTextFromMessage(msg)
					if err == nil {
						subject := msg.Header.Get("Subject")
						if subject != "" {
							return subject + "\n" + text, nil
						}
						return text, nil
					}
				}
				// Fall back to the raw file content if parsing fails
			}
			return content, nil
		}
		return r.FormValue("text"), nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.FormValue("text"), nil
}

func (f *WebFilter) renderIndex(w http.ResponseWriter, errMsg string) {
	data := indexData{
		Error:             errMsg,
		ExamplePhishing:   examplePhishing,
		ExampleLegitimate: exampleLegitimate,
	}
	if err := f.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		f.logger.Error("Failed to render index template", zap.Error(err))
	}
}
