package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/logging"
	"github.com/mikey/phish-detector/internal/textproc"
	"github.com/mikey/phish-detector/internal/training"
)

var (
	dataPath    = flag.String("data", "", "CSV dataset with text,label columns (bundled samples if missing)")
	modelDir    = flag.String("model-dir", "model", "Directory to write the model artifacts to")
	testRatio   = flag.Float64("test-size", 0.2, "Held-out fraction for evaluation")
	seed        = flag.Int64("seed", 42, "Random seed for the train/test split")
	alpha       = flag.Float64("alpha", 0.1, "Naive Bayes smoothing parameter")
	maxFeatures = flag.Int("max-features", 5000, "Maximum vocabulary size")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog     = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile  = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := optionsFromFlags()
	if *configFile != "" {
		cfg, err := config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		opts = optionsFromConfig(cfg)
	}

	processor := textproc.NewProcessor(logger)
	trainer := training.NewTrainer(opts, processor, logger)

	pipeline, report, err := trainer.Run()
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}

	fmt.Printf("\n==================================================\n")
	fmt.Printf("MODEL EVALUATION\n")
	fmt.Printf("==================================================\n\n")
	if report != nil {
		fmt.Print(report.String())
	} else {
		fmt.Printf("No held-out set (test size 0); evaluation skipped.\n")
	}
	fmt.Printf("\nVocabulary size: %d\n", pipeline.Vectorizer.NumFeatures())
	fmt.Printf("Model artifacts written to %s\n", opts.ModelDir)
	fmt.Printf("\nTraining complete!\n")
}

func optionsFromFlags() training.Options {
	return training.Options{
		DataPath:    *dataPath,
		ModelDir:    *modelDir,
		TestRatio:   *testRatio,
		Seed:        *seed,
		Alpha:       *alpha,
		MaxFeatures: *maxFeatures,
	}
}

func optionsFromConfig(cfg *config.Config) training.Options {
	trainingCfg := cfg.GetTraining()
	return training.Options{
		DataPath:    trainingCfg.DataPath,
		ModelDir:    cfg.GetClassifier().ModelDir,
		TestRatio:   trainingCfg.TestRatio,
		Seed:        trainingCfg.Seed,
		Alpha:       trainingCfg.Alpha,
		MaxFeatures: trainingCfg.MaxFeatures,
	}
}
