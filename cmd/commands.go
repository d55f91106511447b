package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/yigitozgenc/image-api/internal/config"
	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/ingest"
	applogger "github.com/yigitozgenc/image-api/internal/logger"
	"github.com/yigitozgenc/image-api/internal/pipeline"
	"github.com/yigitozgenc/image-api/internal/service"
	"github.com/yigitozgenc/image-api/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// GetCommands возвращает все доступные команды
func GetCommands() []*cli.Command {
	return []*cli.Command{
		getServeCommand(),
		getIngestCommand(),
		getInitCommand(),
		getClearCommand(),
		getGenerateCommand(),
		getVersionCommand(),
	}
}

// CommandContext общий контекст команд
type CommandContext struct {
	Config *config.Config
	Logger *zap.Logger
}

func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err := applogger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &CommandContext{
		Config: cfg,
		Logger: logger,
	}, nil
}

// Close sync для stdout/stderr на linux возвращает EINVAL, это не ошибка
func (cc *CommandContext) Close() {
	if err := cc.Logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		log.Printf("Error during logger sync: %v", err)
	}
}

// withFrameService открывает базу только на время команды
func (cc *CommandContext) withFrameService(ctx context.Context, fn func(*service.FrameService) error) error {
	repo, cleanup, err := provideRepository(ctx, cc.Config, cc.Logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(service.NewFrameService(repo, nil, cc.Logger))
}

func getServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP and gRPC servers",
		Action: func(c *cli.Context) error {
			cc, err := NewCommandContext(c)
			if err != nil {
				return err
			}
			defer cc.Close()

			cc.Logger.Info("Starting image API", zap.String("version", Version))

			app, cleanup, err := InitializeApp(c.Context, cc.Config, cc.Logger)
			if err != nil {
				cc.Logger.Error("Failed to initialize application", zap.Error(err))
				return err
			}
			defer cleanup()

			return app.Run(c.Context)
		},
	}
}

func getIngestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Load frames from a CSV file (depth,col1..colN)",
		ArgsUsage: "<file.csv>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Frames per insert transaction (default from config)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of processing workers (default from config)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one CSV file is required", 2)
			}

			cc, err := NewCommandContext(c)
			if err != nil {
				return err
			}
			defer cc.Close()

			batchSize := cc.Config.Ingest.BatchSize
			if c.IsSet("batch-size") {
				batchSize = c.Int("batch-size")
			}
			workers := cc.Config.Ingest.WorkerCount
			if c.IsSet("workers") {
				workers = c.Int("workers")
			}

			path := c.Args().First()
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer file.Close()

			reader, err := ingest.NewCSVReader(file, cc.Config.Image.OriginalWidth)
			if err != nil {
				return err
			}

			frameCodec, err := provideCodec(cc.Config)
			if err != nil {
				return err
			}
			ingester := pipeline.NewIngester(cc.Config.Image.OriginalWidth, cc.Config.Image.ResizedWidth, frameCodec)

			repo, cleanup, err := provideRepository(c.Context, cc.Config, cc.Logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := repo.CreateTables(c.Context); err != nil {
				return err
			}

			cc.Logger.Info("Ingesting CSV file", zap.String("path", path))

			runner := ingest.NewRunner(ingester, repo, workers, batchSize, cc.Logger)
			summary, err := runner.Run(c.Context, reader)
			if summary != nil {
				fmt.Fprintf(c.App.Writer, "Ingestion complete: %d rows read, %d frames saved, %d rows failed, %d of %d batches failed\n",
					summary.RowsRead, summary.Saved, summary.Failed, summary.BatchFailures, summary.Batches)
			}
			return err
		},
	}
}

func getInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create database schema if missing",
		Action: func(c *cli.Context) error {
			cc, err := NewCommandContext(c)
			if err != nil {
				return err
			}
			defer cc.Close()

			return cc.withFrameService(c.Context, func(s *service.FrameService) error {
				created, err := s.InitSchema(c.Context)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(c.App.Writer, "Tables created")
				} else {
					fmt.Fprintln(c.App.Writer, "Tables already exist")
				}
				return nil
			})
		},
	}
}

func getClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all frames (schema is kept)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Confirm deletion",
			},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return cli.Exit("refusing to delete frames without --yes", 2)
			}

			cc, err := NewCommandContext(c)
			if err != nil {
				return err
			}
			defer cc.Close()

			return cc.withFrameService(c.Context, func(s *service.FrameService) error {
				deleted, err := s.ClearFrames(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Deleted %d frames\n", deleted)
				return nil
			})
		},
	}
}

func getGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Write a synthetic CSV file for ingestion",
		ArgsUsage: "<out.csv|->",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "rows",
				Aliases: []string{"n"},
				Value:   1000,
				Usage:   "Number of rows",
			},
			&cli.StringFlag{
				Name:  "start-depth",
				Usage: "Depth of the first row (default 9000.00)",
			},
			&cli.StringFlag{
				Name:  "step",
				Usage: "Depth increment between rows (default 0.10)",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Value: patternBanded,
				Usage: "Sample pattern: banded or random",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Samples per row (default from config)",
			},
			&cli.IntFlag{
				Name:  "noise",
				Value: 8,
				Usage: "Random noise amplitude; 0 for smooth gradients",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one output path is required ('-' for stdout)", 2)
			}

			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			width := cfg.Image.OriginalWidth
			if c.IsSet("width") {
				width = c.Int("width")
			}
			depths, err := depthGeneratorFromFlags(c)
			if err != nil {
				return err
			}
			samples, err := sampleGenerator(c.String("pattern"), c.Int("noise"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			out := c.App.Writer
			if path := c.Args().First(); path != "-" {
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			writer, err := ingest.NewCSVWriter(out, width)
			if err != nil {
				return err
			}

			for i := 0; i < c.Int("rows"); i++ {
				row := domain.RawSampleRow{
					Depth:   depths.Generate(),
					Samples: samples(width),
				}
				if err := writer.Write(row); err != nil {
					return err
				}
			}
			return writer.Flush()
		},
	}
}

const (
	patternBanded = "banded"
	patternRandom = "random"
)

// sampleGenerator выбирает генератор отсчётов; noise действует только на banded
func sampleGenerator(pattern string, noise int) (func(width int) []uint8, error) {
	switch pattern {
	case patternBanded:
		return func(width int) []uint8 {
			return utils.GenerateBandedSamples(width, noise)
		}, nil
	case patternRandom:
		return utils.GenerateRandomSamples, nil
	default:
		return nil, fmt.Errorf("unknown pattern %q, expected %s or %s", pattern, patternBanded, patternRandom)
	}
}

func depthGeneratorFromFlags(c *cli.Context) (*utils.DepthGenerator, error) {
	if !c.IsSet("start-depth") && !c.IsSet("step") {
		return utils.DefaultDepthGenerator(), nil
	}

	start, step := utils.DefaultStartDepth, utils.DefaultDepthStep
	if c.IsSet("start-depth") {
		value, err := decimal.NewFromString(c.String("start-depth"))
		if err != nil {
			return nil, fmt.Errorf("invalid start depth: %w", err)
		}
		start = value
	}
	if c.IsSet("step") {
		value, err := decimal.NewFromString(c.String("step"))
		if err != nil {
			return nil, fmt.Errorf("invalid step: %w", err)
		}
		step = value
	}
	return utils.NewDepthGenerator(start, step), nil
}

func getVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "image-api\n")
			fmt.Fprintf(c.App.Writer, "Version:    %s\n", Version)
			fmt.Fprintf(c.App.Writer, "Commit:     %s\n", Commit)
			fmt.Fprintf(c.App.Writer, "Build Date: %s\n", BuildDate)
			return nil
		},
	}
}
