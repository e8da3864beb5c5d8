package di

import (
	"flag"
	"strings"

	"github.com/mikey/phish-detector/internal/config"
)

// CLIFlags contains all command line flags for the classification CLI
type CLIFlags struct {
	// Classifier flags
	Backend  string
	ModelDir string

	// OpenAI flags (optional backend)
	OpenAIAPIKey    string
	OpenAIModelName string

	// Detection flags
	Threshold      float64
	TrustedDomains string

	// Input flags
	InputFile   string
	Interactive bool
	Verbose     bool
	JSONLog     bool
	ConfigFile  string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.Backend, "backend", "local", "Classifier backend (local, openai)")
	flag.StringVar(&flags.ModelDir, "model-dir", "model", "Directory holding the trained model artifacts")

	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for the OpenAI backend")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	flag.Float64Var(&flags.Threshold, "threshold", 0.5, "Phishing probability threshold")
	flag.StringVar(&flags.TrustedDomains, "trusted", "", "Comma-separated list of trusted sender domains")

	flag.StringVar(&flags.InputFile, "file", "", "Read the email from this file instead of arguments")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Classify messages interactively")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildConfig creates a configuration from the parsed flags
func (f *CLIFlags) BuildConfig() *config.Config {
	v := config.NewEmptyViper()

	v.Set("classifier.backend", f.Backend)
	v.Set("classifier.model_dir", f.ModelDir)
	v.Set("detector.threshold", f.Threshold)

	if f.Backend == "openai" {
		v.Set("openai.api_key", f.OpenAIAPIKey)
		v.Set("openai.model_name", f.OpenAIModelName)
	}

	if f.TrustedDomains != "" {
		domains := strings.Split(f.TrustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("detector.trusted_domains", domains)
	} else {
		v.Set("detector.trusted_domains", []string{})
	}

	// The one-shot CLI has no use for a verdict cache
	v.Set("cache.enabled", false)

	return config.NewFromViper(v)
}
