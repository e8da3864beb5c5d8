package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

// CliFilter implements a command-line front end for phishing detection
type CliFilter struct {
	service *core.DetectorService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.DetectorService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail classifies an email and prints the result
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	result, err := f.service.ClassifyEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		return nil, err
	}

	PrintResult(result, email.Text(), f.verbose)
	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

// PrintResult renders a classification result to standard output
func PrintResult(result *core.ClassificationResult, preview string, showModel bool) {
	fmt.Printf("\n%s\n", divider)
	fmt.Printf("CLASSIFICATION RESULT\n")
	fmt.Printf("%s\n", divider)

	if preview != "" {
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Printf("\nEmail preview: %s\n", preview)
	}

	fmt.Printf("\nVerdict: %s\n", result.Label)
	fmt.Printf("Confidence: %.1f%%\n", result.Confidence*100)
	fmt.Printf("\nProbability breakdown:\n")
	fmt.Printf("  - Phishing: %.1f%%\n", result.PhishingProbability*100)
	fmt.Printf("  - Legitimate: %.1f%%\n", result.LegitimateProbability*100)

	if result.IsPhishing {
		fmt.Printf("\nWARNING: This email appears to be a phishing attempt!\n")
		fmt.Printf("Do not click any links or provide personal information.\n")
	} else {
		fmt.Printf("\nThis email appears to be legitimate.\n")
	}

	if showModel {
		fmt.Printf("\nModel used: %s\n", result.ModelUsed)
		fmt.Printf("Processing ID: %s\n", result.ProcessingID)
	}

	fmt.Printf("%s\n", divider)
}

const divider = "=================================================="
