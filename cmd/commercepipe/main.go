package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/internal/pipeline"
	"github.com/commercepipe/commercepipe/pkg/config"
	"github.com/commercepipe/commercepipe/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "commercepipe",
		Short: "CommercePipe - e-commerce batch ETL pipeline",
		Long: `CommercePipe ingests raw e-commerce tables, cleans and validates them,
joins them into enriched analytical datasets and persists business-metric
tables in columnar and row-oriented formats.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CommercePipe v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Main run command
	var configFile, rawDir, outputDir, logLevel, compressionName string
	var formats []string
	var development bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the batch pipeline",
		Long: `Run the full batch pipeline: extract the raw source tables, clean and
enrich orders, inventory and reviews, compute the aggregate result tables
and persist everything in the configured output formats.

Example:
  commercepipe run --config pipeline.yaml --formats csv,json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			// Command line flags override the file
			if rawDir != "" {
				cfg.Paths.RawDir = rawDir
			}
			if outputDir != "" {
				cfg.Paths.OutputDir = outputDir
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if compressionName != "" {
				cfg.Output.Compression = compressionName
			}
			if len(formats) > 0 {
				cfg.Output.Formats = formats
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := logger.Init(logger.Config{
				Level:       cfg.Logging.Level,
				Development: development || cfg.Logging.Development,
				Encoding:    cfg.Logging.Encoding,
			}); err != nil {
				return err
			}
			defer logger.Sync()

			log := logger.Get().With(zap.String("component", "commercepipe-cli"))
			log.Info("starting pipeline",
				zap.String("raw_dir", cfg.Paths.RawDir),
				zap.String("output_dir", cfg.Paths.OutputDir),
				zap.Strings("formats", cfg.Output.Formats))

			return pipeline.New(cfg, log).Run()
		},
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to pipeline configuration YAML file (defaults apply when omitted)")
	runCmd.Flags().StringVar(&rawDir, "raw-dir", "", "Directory holding the raw source CSV files")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory receiving the aggregated result tables")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringSliceVar(&formats, "formats", nil, "Output formats (csv, json, arrow)")
	runCmd.Flags().StringVar(&compressionName, "compression", "", "CSV output compression (none, gzip, zstd, snappy, lz4)")
	runCmd.Flags().BoolVar(&development, "dev", false, "Use the human-readable console log encoder")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the pipeline configuration, falling back to defaults
// when no file is given.
func loadConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		return config.NewPipelineConfig(), nil
	}
	return config.LoadPipelineConfig(path)
}
