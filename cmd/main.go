package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ALEYI17/InfraSight_traffic/internal/config"
	"github.com/ALEYI17/InfraSight_traffic/internal/loaders"
	"github.com/ALEYI17/InfraSight_traffic/internal/report"
	"github.com/ALEYI17/InfraSight_traffic/internal/session"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.Usage(os.Stderr)
			return
		}
		fmt.Fprintf(os.Stderr, "infrasight-traffic: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logutil.InitLogger(cfg.LogLevel)

	logger := logutil.GetLogger()
	defer logger.Sync()

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigch
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Reconstruction failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Reconstruction finished")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logutil.GetLogger()

	trimmer, err := loaders.NewTrimmer(cfg.Trim)
	if err != nil {
		return err
	}
	loader := loaders.NewNethogsLoader(cfg.Results, cfg.ExecFile)
	s := session.New(session.Settings{
		Iterations: cfg.Iterations,
		Interval:   cfg.Interval,
		TimingPath: cfg.TimingPath(),
		Lenient:    cfg.Lenient,
	}, loader)

	logger.Info("Processing results",
		zap.String("results", cfg.Results),
		zap.String("execfile", cfg.ExecFile),
		zap.Int("iterations", cfg.Iterations))

	r, err := report.Build(ctx, s, report.Options{
		Trimmer:       trimmer,
		PowerPath:     cfg.PowerPath(),
		ExtraPaths:    cfg.ExtraPaths(),
		ExtraProtocol: cfg.Protocol,
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	write := report.WriteJSON
	switch cfg.Format {
	case config.FormatText:
		write = report.WriteText
	case config.FormatAuto:
		if cfg.Output == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
			write = report.WriteText
		}
	}

	if cfg.Output == "-" {
		err = write(os.Stdout, r)
	} else {
		err = report.Save(cfg.Output, r, write)
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("Report written", zap.String("output", cfg.Output), zap.String("trim", r.Trim))
	return nil
}
