package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"speakerscribe/internal/acquire"
	"speakerscribe/internal/config"
	"speakerscribe/internal/history"
	"speakerscribe/internal/language"
	"speakerscribe/internal/logging"
	"speakerscribe/internal/notifications"
	"speakerscribe/internal/output"
	"speakerscribe/internal/preflight"
	"speakerscribe/internal/services"
	"speakerscribe/internal/services/pyannote"
	"speakerscribe/internal/services/whisper"
	"speakerscribe/internal/staging"
	"speakerscribe/internal/transcript"
)

// LockFileName is created in the output directory for the duration of a run.
const LockFileName = ".speakerscribe.lock"

// Stage names stamped on the run context.
const (
	StageAcquisition   = "acquisition"
	StageTranscription = "transcription"
	StageDiarization   = "diarization"
	StageMerge         = "merge"
)

// Request describes one run. Empty fields fall back to configuration.
type Request struct {
	Source    string
	OutputDir string
	Model     string
	Language  string
	HFToken   string
	KeepAudio bool
}

// Result summarizes a successful run.
type Result struct {
	RunID    string
	Source   string
	Language string
	// AudioPath is set only when the intermediate audio was kept.
	AudioPath string
	Outputs   output.Paths
	Segments  int
	Turns     int
	Summary   transcript.Summary
	Duration  time.Duration
}

// TranscriberFactory builds a transcription engine for one run.
type TranscriberFactory func(config.Transcription) (whisper.Engine, error)

// DiarizerFactory builds a diarization engine for one run.
type DiarizerFactory func(config.Diarization) (pyannote.Engine, error)

// Runner executes pipeline runs against a base configuration.
type Runner struct {
	cfg            *config.Config
	fetcher        acquire.Fetcher
	newTranscriber TranscriberFactory
	newDiarizer    DiarizerFactory
	store          *history.Store
	notifier       notifications.Service
	logger         *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithFetcher overrides the acquisition strategy from configuration.
func WithFetcher(fetcher acquire.Fetcher) Option {
	return func(r *Runner) {
		if fetcher != nil {
			r.fetcher = fetcher
		}
	}
}

// WithTranscriberFactory overrides how transcription engines are built.
func WithTranscriberFactory(factory TranscriberFactory) Option {
	return func(r *Runner) {
		if factory != nil {
			r.newTranscriber = factory
		}
	}
}

// WithDiarizerFactory overrides how diarization engines are built.
func WithDiarizerFactory(factory DiarizerFactory) Option {
	return func(r *Runner) {
		if factory != nil {
			r.newDiarizer = factory
		}
	}
}

// WithStore records every run in the given history store.
func WithStore(store *history.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithNotifier replaces the ntfy service built from configuration.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner builds a runner from cfg.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	r := &Runner{
		cfg:            cfg,
		newTranscriber: whisper.New,
		newDiarizer:    pyannote.New,
		notifier:       notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		fetcher, err := acquire.New(cfg.Acquisition)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		r.fetcher = fetcher
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	return r, nil
}

// plan is a request resolved against configuration.
type plan struct {
	source        string
	outputDir     string
	audioPath     string
	keepAudio     bool
	transcription config.Transcription
	diarization   config.Diarization
	output        config.Output
}

func (r *Runner) resolve(req Request) (plan, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return plan{}, services.Wrap(services.ErrValidation, "", "request", "source url is required", nil)
	}

	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = r.cfg.Output.Dir
	}
	expanded, err := config.ExpandPath(outDir)
	if err != nil {
		return plan{}, services.Wrap(services.ErrValidation, "", "request", "resolve output dir", err)
	}
	outDir, err = filepath.Abs(expanded)
	if err != nil {
		return plan{}, services.Wrap(services.ErrValidation, "", "request", "resolve output dir", err)
	}

	p := plan{
		source:        source,
		outputDir:     outDir,
		audioPath:     filepath.Join(outDir, r.cfg.Acquisition.AudioFileName),
		keepAudio:     req.KeepAudio || r.cfg.Output.KeepAudio,
		transcription: r.cfg.Transcription,
		diarization:   r.cfg.Diarization,
		output:        r.cfg.Output,
	}
	if model := strings.TrimSpace(req.Model); model != "" {
		p.transcription.Model = model
	}
	if hint := strings.TrimSpace(req.Language); hint != "" {
		code, err := language.Normalize(hint)
		if err != nil {
			return plan{}, services.Wrap(services.ErrValidation, "", "request", "language hint", err)
		}
		p.transcription.Language = code
	}
	if token := strings.TrimSpace(req.HFToken); token != "" {
		p.diarization.HFToken = token
	}
	if p.diarization.Backend != config.BackendSidecar && p.diarization.HFToken == "" {
		scoped := config.Config{Diarization: p.diarization}
		return plan{}, services.Wrap(services.ErrConfiguration, "", "request", "diarization credential", scoped.RequireHFToken())
	}
	return p, nil
}

// Run executes one request. The returned error carries a services marker
// (ErrAcquisition, ErrExternalTool, ErrValidation, ...) for classification.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	p, err := r.resolve(req)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "", "request", "create output dir", err)
	}
	if check := preflight.CheckDirectoryAccess("Output directory", p.outputDir); !check.Passed {
		return Result{}, services.Wrap(services.ErrValidation, "", "preflight", check.Detail, nil)
	}

	lock := flock.New(filepath.Join(p.outputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "", "lock", "acquire output dir lock", err)
	}
	if !locked {
		return Result{}, services.Wrap(services.ErrValidation, "", "lock",
			fmt.Sprintf("output directory %s is in use by another run", p.outputDir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSource(ctx, p.source)
	logger := logging.WithContext(ctx, r.logger)

	// Scratch directories left by an interrupted run are safe to drop under the lock.
	staging.CleanStale(ctx, p.outputDir, staging.ScratchPrefixes, 0, logger)

	if r.store != nil {
		if _, err := r.store.Begin(ctx, history.Run{
			ID:        runID,
			Source:    p.source,
			Model:     p.transcription.Model,
			Language:  p.transcription.Language,
			OutputDir: p.outputDir,
			StartedAt: started.UTC(),
		}); err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "", "history", "record run", err)
		}
	}

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("output_dir", p.outputDir),
		logging.String("model", p.transcription.Model),
		logging.Bool("parallel", r.cfg.Pipeline.Parallel),
	)

	result, runErr := r.execute(ctx, logger, p)
	result.RunID = runID
	result.Source = p.source
	result.Duration = time.Since(started)

	r.finish(ctx, logger, runID, result, runErr)
	if runErr != nil {
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("status", string(services.FailureStatus(runErr))),
			logging.Duration("run_duration", result.Duration),
		}
		if stage := services.StageOf(runErr); stage != "" {
			attrs = append(attrs, logging.String("failed_stage", stage))
		}
		logger.Info("run finished with error", logging.Args(attrs...)...)
		return result, runErr
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("segments", result.Segments),
		logging.Int("turns", result.Turns),
		logging.Int("speakers", len(result.Summary.Speakers)),
		logging.Int("unknown_segments", result.Summary.Unknown),
		logging.Duration("run_duration", result.Duration),
	)
	return result, nil
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, p plan) (result Result, err error) {
	transcriber, err := r.newTranscriber(p.transcription)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, StageTranscription, "engine", "build transcriber", err)
	}
	diarizer, err := r.newDiarizer(p.diarization)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, StageDiarization, "engine", "build diarizer", err)
	}

	// Cleanup covers only audio this run fetched successfully.
	fetched := false
	defer func() {
		if !fetched {
			return
		}
		if p.keepAudio {
			result.AudioPath = p.audioPath
			return
		}
		if rmErr := os.Remove(p.audioPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to remove intermediate audio", "audio_cleanup_failed",
				logging.String("audio_path", p.audioPath),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "intermediate audio left in output directory"),
			)
		}
	}()

	err = r.stage(ctx, logger, StageAcquisition, func(ctx context.Context) error {
		if err := r.fetcher.Fetch(ctx, p.source, p.audioPath); err != nil {
			var acqErr *acquire.AcquisitionError
			if errors.As(err, &acqErr) {
				return err
			}
			return &acquire.AcquisitionError{Source: p.source, Err: err}
		}
		return nil
	}, logging.String("fetcher", r.fetcher.Name()))
	if err != nil {
		return result, err
	}
	fetched = true

	var (
		transcription transcript.Transcription
		turns         []transcript.Turn
	)
	transcribe := func(ctx context.Context) error {
		return r.stage(ctx, logger, StageTranscription, func(ctx context.Context) error {
			var err error
			transcription, err = transcriber.Transcribe(ctx, p.audioPath)
			return err
		}, logging.String("engine", transcriber.Name()))
	}
	diarize := func(ctx context.Context) error {
		return r.stage(ctx, logger, StageDiarization, func(ctx context.Context) error {
			var err error
			turns, err = diarizer.Diarize(ctx, p.audioPath)
			return err
		}, logging.String("engine", diarizer.Name()))
	}

	if r.cfg.Pipeline.Parallel {
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error { return transcribe(groupCtx) })
		group.Go(func() error { return diarize(groupCtx) })
		err = group.Wait()
	} else {
		err = transcribe(ctx)
		if err == nil {
			err = diarize(ctx)
		}
	}
	if err != nil {
		return result, err
	}

	result.Language = transcription.Language
	result.Segments = len(transcription.Segments)
	result.Turns = len(turns)

	err = r.stage(ctx, logger, StageMerge, func(context.Context) error {
		annotated := transcript.Merge(transcription.Segments, turns)
		result.Summary = transcript.Summarize(annotated)
		if n := len(annotated); n > 0 {
			logger.Debug("segments merged",
				logging.Int("speakers", len(result.Summary.Speakers)),
				logging.Int("unknown_segments", result.Summary.Unknown),
				logging.Seconds("transcript_end", annotated[n-1].End),
			)
		}
		paths, err := output.WriteAll(p.outputDir, p.output, transcription.Raw, annotated)
		if err != nil {
			return services.Wrap(services.ErrTransient, StageMerge, "write", "write outputs", err)
		}
		result.Outputs = paths
		return nil
	})
	return result, err
}

// stage runs fn with the stage stamped on ctx and logs its start and end.
func (r *Runner) stage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error, attrs ...logging.Attr) error {
	ctx = services.WithStage(ctx, name)
	stageLogger := logging.WithContext(ctx, logger)
	started := time.Now()
	stageLogger.Info("stage started", logging.Args(append([]logging.Attr{logging.String(logging.FieldEventType, "stage_start")}, attrs...)...)...)

	if err := fn(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted")
			return err
		}
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.Error(err),
			logging.Duration("stage_duration", time.Since(started)),
		)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started)),
	)
	return nil
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, runID string, result Result, runErr error) {
	// Cancelled runs are still recorded and reported.
	ctx = context.WithoutCancel(ctx)
	r.record(ctx, logger, runID, result, runErr)
	r.notify(ctx, logger, result, runErr)
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, runID string, result Result, runErr error) {
	if r.store == nil {
		return
	}
	outcome := history.Outcome{
		Status:         history.StatusSucceeded,
		SegmentCount:   result.Segments,
		TurnCount:      result.Turns,
		SpeakerCount:   len(result.Summary.Speakers),
		UnknownCount:   result.Summary.Unknown,
		TranscriptPath: result.Outputs.Transcription,
		AnnotatedPath:  result.Outputs.AnnotatedText,
	}
	if runErr != nil {
		outcome.Status = services.FailureStatus(runErr)
		outcome.Err = runErr
	}
	if err := r.store.Finish(ctx, runID, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record run outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is missing this run's outcome"),
		)
	}
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, result Result, runErr error) {
	if !notifications.Enabled(r.notifier) {
		return
	}
	var err error
	if runErr != nil {
		err = r.notifier.NotifyRunFailed(ctx, result.Source, runErr)
	} else {
		err = r.notifier.NotifyRunCompleted(ctx, notifications.RunOutcome{
			Source:        result.Source,
			Segments:      result.Segments,
			Speakers:      result.Summary.Speakers,
			Unknown:       result.Summary.Unknown,
			Duration:      result.Duration,
			AnnotatedPath: result.Outputs.AnnotatedText,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "no alert was delivered for this run"),
		)
	}
}
