package pbo

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tyen-customs-a3/pbo-tools/internal/config"
	"github.com/tyen-customs-a3/pbo-tools/internal/extractor"
	"github.com/tyen-customs-a3/pbo-tools/internal/filter"
	"github.com/tyen-customs-a3/pbo-tools/internal/model"
	"github.com/tyen-customs-a3/pbo-tools/internal/retry"
	"github.com/tyen-customs-a3/pbo-tools/internal/workspace"
)

// API performs archive operations. It is safe for concurrent use;
// every operation runs with its own workspace and retry state.
type API struct {
	cfg        config.Config
	backend    extractor.Backend
	workspaces *workspace.Manager
	logger     *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithBackend substitutes the tool backend, mainly for tests.
func WithBackend(b extractor.Backend) Option {
	return func(a *API) {
		a.backend = b
	}
}

// WithWorkspaceManager substitutes the workspace manager.
func WithWorkspaceManager(m *workspace.Manager) Option {
	return func(a *API) {
		a.workspaces = m
	}
}

// WithLogger sets the logger for all operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates an API around the given configuration. Unless
// overridden, the backend runs the configured extractor binary and
// workspaces live under the default base directory.
func New(cfg config.Config, opts ...Option) (*API, error) {
	a := &API{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.backend == nil {
		a.backend = extractor.NewExtractPbo(cfg.Extractor, a.logger)
	}
	if a.workspaces == nil {
		m, err := workspace.NewManager(workspace.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.workspaces = m
	}

	return a, nil
}

// ListContents returns the archive's entries with sizes where the
// tool reports them.
func (a *API) ListContents(ctx context.Context, archivePath string) (model.ListResult, error) {
	return a.list(ctx, archivePath, extractor.ModeList)
}

// ListContentsBrief returns the archive's entries from the bare-path
// listing, which is faster on large archives.
func (a *API) ListContentsBrief(ctx context.Context, archivePath string) (model.ListResult, error) {
	return a.list(ctx, archivePath, extractor.ModeListBrief)
}

func (a *API) list(ctx context.Context, archivePath string, mode extractor.Mode) (model.ListResult, error) {
	if err := a.validateArchive(archivePath); err != nil {
		return model.ListResult{}, err
	}

	// Listing writes nothing, but it still runs against a private
	// workspace so every operation has the same isolation and cleanup
	// path.
	workDir, err := a.workspaces.Acquire()
	if err != nil {
		return model.ListResult{}, err
	}
	defer func() {
		if rerr := a.workspaces.Release(workDir); rerr != nil {
			a.logger.Warn("failed to release workspace", "dir", workDir, "error", rerr)
		}
	}()

	ctrl := a.newController()
	attempt, attempts, err := ctrl.Run(ctx, extractor.Request{
		Mode:        mode,
		ArchivePath: archivePath,
		OutputDir:   workDir,
	}, func() error {
		return a.workspaces.Clear(workDir)
	})
	if err != nil {
		return model.ListResult{}, err
	}

	a.logWarnings(archivePath, attempt.Warnings)

	result := parseListOutput(archivePath, attempt.Result.Stdout, mode == extractor.ModeListBrief)
	a.logger.Debug("listing complete",
		"archive", archivePath,
		"entries", len(result.Entries),
		"attempts", attempts)

	return result, nil
}

// Prefix returns the prefix header the archive declares, or the empty
// string when it has none.
func (a *API) Prefix(ctx context.Context, archivePath string) (string, error) {
	res, err := a.ListContents(ctx, archivePath)
	if err != nil {
		return "", err
	}
	return res.Prefix, nil
}

// ExtractFiles unpacks the requested archive into the output
// directory. The tool writes into a private workspace; only files
// passing the filter and path validation are committed, all at once,
// after the tool run succeeds.
func (a *API) ExtractFiles(ctx context.Context, req model.ExtractRequest) (model.ExtractResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return model.ExtractResult{}, err
	}
	if err := a.validateArchive(req.ArchivePath); err != nil {
		return model.ExtractResult{}, err
	}

	fl, err := filter.Compile(req.Filter, a.cfg.CaseSensitive)
	if err != nil {
		return model.ExtractResult{}, err
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return model.ExtractResult{}, &model.FileSystemError{
			Op:   model.FSOpCommit,
			Path: req.OutputDir,
			Err:  err,
		}
	}

	workDir, err := a.workspaces.Acquire()
	if err != nil {
		return model.ExtractResult{}, err
	}
	defer func() {
		if rerr := a.workspaces.Release(workDir); rerr != nil {
			a.logger.Warn("failed to release workspace", "dir", workDir, "error", rerr)
		}
	}()

	toolReq := extractor.Request{
		Mode:        extractor.ModeExtract,
		ArchivePath: req.ArchivePath,
		OutputDir:   workDir,
	}
	// The tool's own filter matching is case-sensitive, so it can only
	// serve as a pre-filter when ours is too. Commit-time matching
	// stays authoritative either way.
	if a.cfg.CaseSensitive && !fl.MatchesAll() {
		toolReq.Filter = req.Filter
	}

	ctrl := a.newController()
	attempt, attempts, err := ctrl.Run(ctx, toolReq, func() error {
		return a.workspaces.Clear(workDir)
	})
	if err != nil {
		return model.ExtractResult{}, err
	}

	a.logWarnings(req.ArchivePath, attempt.Warnings)

	files, err := commitWorkspace(ctx, workDir, req.OutputDir, fl, a.cfg, a.logger)
	if err != nil {
		return model.ExtractResult{}, err
	}

	result := model.ExtractResult{
		ArchivePath: req.ArchivePath,
		OutputDir:   req.OutputDir,
		Files:       files,
		Warnings:    attempt.Warnings,
		Attempts:    attempts,
		Elapsed:     time.Since(start),
	}

	a.logger.Info("extraction complete",
		"archive", req.ArchivePath,
		"files", len(files),
		"attempts", attempts,
		"elapsed", result.Elapsed)

	return result, nil
}

// validateArchive checks that the archive exists and is a readable
// file before any tool run, so obvious mistakes fail fast without
// spending an invocation.
func (a *API) validateArchive(archivePath string) error {
	if strings.TrimSpace(archivePath) == "" {
		return &model.ExtractError{
			Kind:       model.KindArchiveNotFound,
			Archive:    archivePath,
			Diagnostic: "empty archive path",
		}
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return &model.ExtractError{
			Kind:    model.KindArchiveNotFound,
			Archive: archivePath,
			Err:     err,
		}
	}
	if info.IsDir() {
		return &model.ExtractError{
			Kind:       model.KindArchiveNotFound,
			Archive:    archivePath,
			Diagnostic: "path is a directory",
		}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return &model.ExtractError{
			Kind:    model.KindArchiveNotFound,
			Archive: archivePath,
			Err:     err,
		}
	}
	f.Close()

	if !model.KnownArchiveExtension(archivePath) {
		a.logger.Debug("unrecognized archive extension", "archive", archivePath)
	}

	return nil
}

// newController assembles the per-operation attempt loop from the
// configured backend, classifier, and retry policy.
func (a *API) newController() *retry.Controller {
	invoker := extractor.NewInvoker(a.backend, extractor.NewClassifier(a.cfg), a.cfg.Timeout, a.logger)
	return retry.NewController(invoker, retry.PolicyFromConfig(a.cfg), a.logger)
}

func (a *API) logWarnings(archivePath string, warnings []string) {
	for _, w := range warnings {
		a.logger.Warn("tool warning", "archive", archivePath, "warning", w)
	}
}
