package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/plexvest/plexvest/internal/analysis"
	"github.com/plexvest/plexvest/internal/config"
	"github.com/plexvest/plexvest/internal/region"
	"github.com/plexvest/plexvest/internal/server"
	"github.com/plexvest/plexvest/internal/store"
	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	propertyID := flag.Int64("property", 0, "property id to analyze")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot analysis")
	flag.Parse()

	// Environment bootstrap; a missing .env file is fine.
	_ = godotenv.Load()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal(fmt.Sprintf("invalid output format: %s", outputFormat),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()

	databaseURL := conf.Database.URL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	db, err := store.New(ctx, databaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer db.Close()

	var regions analysis.RegionLookup
	if conf.Regions.ShapefilePath != "" {
		index, err := region.Load(conf.Regions.ShapefilePath, conf.Regions.NameField, logger)
		if err != nil {
			logger.Warn("failed to load region shapefile; using the default region",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			regions = index
		}
	}

	engine := analysis.NewEngine(db, regions, conf.Defaults, logger)

	if *serve {
		handler := server.NewHandler(engine, db, db, logger, conf.Server.MaxBodyBytes)
		logger.Info("serving API",
			zap.String("op", "main"),
			zap.String("address", conf.Server.Address),
		)
		if err := http.ListenAndServe(conf.Server.Address, handler); err != nil {
			logger.Fatal("server exited",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	if *propertyID == 0 {
		logger.Fatal("a property id is required unless running with -serve",
			zap.String("op", "main"),
		)
	}

	record, err := db.PropertyRecord(ctx, *propertyID)
	if err != nil {
		logger.Fatal("failed to load property",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	report, err := engine.Analyze(ctx, record)
	if err != nil {
		logger.Fatal("failed to compute analysis",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range report.Warnings {
		logger.Warn("Analysis warning: "+warning,
			zap.String("op", "main"),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(report.Scenarios)
	case constants.OutputFormatCSV:
		output.CsvFormat(report.Scenarios)
	}
}
