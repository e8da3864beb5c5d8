package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/adapters/filter"
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/di"
	"github.com/mikey/phish-detector/internal/factory"
	"github.com/mikey/phish-detector/internal/logging"
	"github.com/mikey/phish-detector/internal/ml"
	"github.com/mikey/phish-detector/internal/textproc"
	"github.com/mikey/phish-detector/internal/whitelist"
)

func main() {
	flags := di.ParseFlags()

	logger, err := logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if flags.ConfigFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = flags.BuildConfig()
	}

	processor := textproc.NewProcessor(logger)

	classifierFactory := factory.NewClassifierFactory(cfg, logger, processor)
	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		if errors.Is(err, ml.ErrModelNotFound) {
			logger.Fatal("No trained model found; run phish-train first",
				zap.String("model_dir", cfg.GetClassifier().ModelDir),
				zap.Error(err))
		}
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}

	trusted := whitelist.NewChecker(cfg.GetStringSlice("detector.trusted_domains"), logger)
	app := &classifyApp{
		classifier: classifier,
		trusted:    trusted,
		threshold:  cfg.GetFloat64("detector.threshold"),
		verbose:    flags.Verbose,
		logger:     logger,
	}

	args := strings.Join(flag.Args(), " ")
	switch {
	case flags.Interactive:
		app.runInteractive()
	case flags.InputFile != "":
		app.classifyFile(flags.InputFile)
	case strings.TrimSpace(args) != "":
		app.classifyText(args)
	default:
		printUsage()
		app.runDemo()
	}
}

type classifyApp struct {
	classifier core.Classifier
	trusted    *whitelist.Checker
	threshold  float64
	verbose    bool
	logger     *zap.Logger
}

// classify runs a single email through the trusted list and the classifier
func (a *classifyApp) classify(email *core.Email) *core.ClassificationResult {
	if a.trusted.IsTrusted(email.From) {
		fmt.Printf("\nSender domain is trusted; skipping classification.\n")
		return nil
	}

	result, err := a.classifier.ClassifyEmail(context.Background(), email)
	if err != nil {
		a.logger.Fatal("Failed to classify email", zap.Error(err))
	}

	// The threshold turns the phishing probability into the binary verdict
	result.IsPhishing = result.PhishingProbability >= a.threshold
	if result.IsPhishing {
		result.Label = core.LabelPhishing
		result.Confidence = result.PhishingProbability
	} else {
		result.Label = core.LabelLegitimate
		result.Confidence = result.LegitimateProbability
	}
	return result
}

func (a *classifyApp) classifyText(text string) {
	email := &core.Email{Body: text}
	if result := a.classify(email); result != nil {
		filter.PrintResult(result, text, a.verbose)
	}
}

// classifyFile reads an email from a file; RFC 5322 messages have their
// subject and body extracted, anything else is treated as plain text
func (a *classifyApp) classifyFile(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		a.logger.Fatal("Failed to read input file", zap.Error(err), zap.String("file", path))
	}

	email := &core.Email{Body: string(raw)}
	if msg, err := mail.ReadMessage(bufio.NewReader(strings.NewReader(string(raw)))); err == nil {
		email.From = msg.Header.Get("From")
		email.Subject = msg.Header.Get("Subject")
		if body, err := io.ReadAll(msg.Body); err == nil {
			email.Body = string(body)
		}
	}

	if result := a.classify(email); result != nil {
		filter.PrintResult(result, email.Text(), a.verbose)
	}
}

// runInteractive classifies messages typed on stdin. A blank line finishes a
// message; "quit" exits.
func (a *classifyApp) runInteractive() {
	fmt.Printf("\n==================================================\n")
	fmt.Printf("PHISHING EMAIL DETECTOR - Interactive Mode\n")
	fmt.Printf("==================================================\n")
	fmt.Printf("\nEnter email text to classify (type 'quit' to exit):\n")
	fmt.Printf("(For multi-line input, enter an empty line when done)\n\n")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Printf("------------------------------\n")
		fmt.Printf("Enter email text:\n")

		var lines []string
		for scanner.Scan() {
			line := scanner.Text()
			if strings.EqualFold(strings.TrimSpace(line), "quit") {
				fmt.Printf("\nGoodbye!\n")
				return
			}
			if line == "" && len(lines) > 0 {
				break
			}
			lines = append(lines, line)
		}
		if err := scanner.Err(); err != nil {
			a.logger.Fatal("Failed to read input", zap.Error(err))
		}
		if len(lines) == 0 {
			// EOF with nothing buffered
			return
		}

		text := strings.Join(lines, "\n")
		if strings.TrimSpace(text) != "" {
			a.classifyText(text)
		}
	}
}

// runDemo classifies the two canonical examples
func (a *classifyApp) runDemo() {
	fmt.Printf("\nRunning quick demo...\n")

	demos := []string{
		"URGENT: Your account has been compromised! Click here to verify immediately.",
		"Hi team, just a reminder about our meeting tomorrow at 10 AM.",
	}
	for _, text := range demos {
		a.classifyText(text)
	}
}

func printUsage() {
	fmt.Printf("\nUsage:\n")
	fmt.Printf("  phish-classify <email text>\n")
	fmt.Printf("  phish-classify -file <path to email file>\n")
	fmt.Printf("  phish-classify -interactive\n")
	fmt.Printf("\nExample:\n")
	fmt.Printf("  phish-classify \"Click here to claim your prize!\"\n")
}
