package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/seanblong/repodoc/internal/ai"
	"github.com/seanblong/repodoc/internal/chunk"
	"github.com/seanblong/repodoc/internal/config"
	"github.com/seanblong/repodoc/internal/docgen"
	"github.com/seanblong/repodoc/internal/gitclone"
	"github.com/seanblong/repodoc/internal/selector"
	"github.com/seanblong/repodoc/internal/summarize"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("repodoc", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { config.Usage(fs, stderr) }

	cfg, err := config.Load("", fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "repodoc: %v\n", err)
		return 1
	}

	if err := setupLogging(cfg.LogLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "repodoc: invalid log level %q: %v\n", cfg.LogLevel, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "repodoc: %v\n", err)
		return 1
	}

	res, err := gen.Run(ctx)
	if err != nil {
		var ce *docgen.CloneError
		var we *docgen.WriteError
		switch {
		case errors.As(err, &ce):
			log.Error().Err(ce.Err).Str("url", ce.URL).Msg("clone failed")
		case errors.As(err, &we):
			log.Error().Err(we.Err).Str("path", we.Path).Msg("could not write document")
		}
		fmt.Fprintf(stderr, "repodoc: %v\n", err)
		return 1
	}

	if res.State == docgen.StateEmpty {
		fmt.Fprintf(stderr, "repodoc: no source files matched in %s; nothing to document\n", cfg.RepoURL)
		return 0
	}
	fmt.Fprintf(stderr, "Documentation written to %s (%d files)\n", res.Output, len(res.Report.Files))
	return 0
}

func newGenerator(ctx context.Context, cfg config.Specification, stderr io.Writer) (*docgen.Generator, error) {
	client, err := ai.NewClient(ctx, &ai.ClientConfig{
		Provider:  ai.Provider(cfg.Provider),
		Endpoint:  cfg.Endpoint,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		ProjectID: cfg.ProjectID,
		Location:  cfg.Location,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", cfg.Provider).Str("model", client.Model()).Msg("inference client ready")

	measure, err := chunk.NewMeasure(cfg.Chunk.Unit)
	if err != nil {
		return nil, err
	}
	splitter, err := chunk.New(cfg.Chunk.Size, measure)
	if err != nil {
		return nil, err
	}

	sel := selector.New(selector.Config{
		ExcludeDirs:      cfg.Scan.ExcludeDirs,
		Extensions:       cfg.Scan.Extensions,
		DependencyFiles:  cfg.Scan.DependencyFiles,
		RespectGitignore: cfg.Scan.RespectGitignore,
	})

	// clone progress is noise once the user asked for warnings only
	var progress io.Writer
	if zerolog.GlobalLevel() <= zerolog.InfoLevel {
		progress = stderr
	}

	return docgen.New(docgen.Options{
		RepoURL: cfg.RepoURL,
		WorkDir: cfg.WorkDir,
		Output:  cfg.Output,
		Keep:    cfg.Keep,
		Model:   client.Model(),
	}, gitclone.New(progress), sel, splitter, summarize.New(client, cfg.Combine, cfg.Timeout)), nil
}

func setupLogging(level string, w io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	return nil
}
