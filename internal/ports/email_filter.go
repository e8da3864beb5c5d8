package ports

import (
	"context"

	"github.com/mikey/phish-detector/internal/core"
)

// EmailFilter defines the interface for the front ends that accept messages
// and hand them to the detector service
type EmailFilter interface {
	// ProcessEmail classifies an email and returns the result
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error)

	// Start starts the filter front end
	Start() error

	// Stop stops the filter front end
	Stop() error
}
