package mixjob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"AutoDJ/config"
	"AutoDJ/core/audio"
	"AutoDJ/logger"
	"AutoDJ/model"
	"AutoDJ/repository"
	"AutoDJ/storage"

	"golang.org/x/sync/errgroup"
)

// ErrJobAlreadyRunning is returned when a mix job is launched for a mix ID
// that already has one in flight.
var ErrJobAlreadyRunning = errors.New("mix job already running for this mix")

// TrackRetriever fetches a track's audio to local storage.
type TrackRetriever interface {
	Download(ctx context.Context, track *model.Track) (string, error)
}

// ObjectStore persists an exported mix and returns its durable locator.
type ObjectStore interface {
	UploadMix(ctx context.Context, mixID, localPath string) (string, error)
}

// MinioStore adapts the storage package to ObjectStore.
type MinioStore struct {
	Bucket string
}

func (s *MinioStore) UploadMix(ctx context.Context, mixID, localPath string) (string, error) {
	return storage.UploadMix(ctx, s.Bucket, mixID, localPath)
}

// Runner executes mix jobs in the background. Each job owns its Mix record
// exclusively for its lifetime: a second Launch for the same mix ID is
// rejected, so there is exactly one writer per mix identity.
type Runner struct {
	cfg       *config.Config
	trackRepo repository.TrackRepository
	mixRepo   repository.MixRepository
	retriever TrackRetriever
	loader    audio.SignalLoader
	encoder   audio.Encoder
	store     ObjectStore
	broker    *Broker

	mu      sync.Mutex
	running map[string]struct{}
}

// NewRunner creates a mix job runner.
func NewRunner(
	cfg *config.Config,
	trackRepo repository.TrackRepository,
	mixRepo repository.MixRepository,
	retriever TrackRetriever,
	loader audio.SignalLoader,
	encoder audio.Encoder,
	store ObjectStore,
	broker *Broker,
) *Runner {
	return &Runner{
		cfg:       cfg,
		trackRepo: trackRepo,
		mixRepo:   mixRepo,
		retriever: retriever,
		loader:    loader,
		encoder:   encoder,
		store:     store,
		broker:    broker,
		running:   make(map[string]struct{}),
	}
}

// Broker returns the status event broker.
func (r *Runner) Broker() *Broker {
	return r.broker
}

// Launch moves the mix to processing, starts the pipeline in the
// background and returns immediately. The caller acknowledges the request
// with the Mix already in processing state; the pipeline flips the status
// to completed or failed when it finishes.
func (r *Runner) Launch(mix *model.Mix, candidates []*model.Track) error {
	r.mu.Lock()
	if _, ok := r.running[mix.ID]; ok {
		r.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	r.running[mix.ID] = struct{}{}
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		delete(r.running, mix.ID)
		r.mu.Unlock()
	}

	if err := r.mixRepo.MarkProcessing(mix.ID); err != nil {
		release()
		return fmt.Errorf("failed to mark mix %s as processing: %w", mix.ID, err)
	}
	mix.Status = model.MixProcessing
	r.broker.Publish(StatusEvent{MixID: mix.ID, Status: model.MixProcessing})

	go func() {
		defer release()
		r.run(context.Background(), mix, candidates)
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, mix *model.Mix, candidates []*model.Track) {
	r.prepareTracks(ctx, candidates)

	if err := r.assembleAndExport(ctx, mix, candidates); err != nil {
		logger.Error("Mix job failed", logger.String("mixId", mix.ID), logger.ErrorField(err))
		if failErr := r.mixRepo.FailMix(mix.ID); failErr != nil {
			logger.Error("Failed to mark mix as failed",
				logger.String("mixId", mix.ID), logger.ErrorField(failErr))
		}
		r.broker.Publish(StatusEvent{MixID: mix.ID, Status: model.MixFailed})
		return
	}
	r.broker.Publish(StatusEvent{MixID: mix.ID, Status: model.MixCompleted})
}

// prepareTracks downloads and analyzes the candidate tracks with bounded
// parallelism. A track that cannot be retrieved or analyzed is left without
// local audio and is skipped later by the assembler; per-track failures
// never abort the job.
func (r *Runner) prepareTracks(ctx context.Context, candidates []*model.Track) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MixWorkers)

	for _, track := range candidates {
		track := track
		g.Go(func() error {
			trackCtx, cancel := context.WithTimeout(gctx, r.cfg.TrackTimeout)
			defer cancel()
			r.prepareOne(trackCtx, track)
			return nil
		})
	}
	// Errors are handled per track; Wait only synchronizes.
	_ = g.Wait()
}

func (r *Runner) prepareOne(ctx context.Context, track *model.Track) {
	localPath, err := r.retriever.Download(ctx, track)
	if err != nil {
		logger.Warn("Track retrieval failed, track will be skipped",
			logger.String("trackId", track.ID), logger.ErrorField(err))
		return
	}
	track.LocalPath = localPath

	signal, err := r.loader.Load(ctx, localPath)
	if err != nil {
		// Downloaded but undecodable: record the empty analysis so the
		// track has a uniform shape downstream.
		logger.Warn("Track decode failed, storing empty analysis",
			logger.String("trackId", track.ID), logger.ErrorField(err))
		track.Analysis = audio.AnalyzeSignal(nil)
	} else {
		track.Duration = signal.Duration()
		track.Analysis = audio.AnalyzeSignal(signal)
	}

	if err := r.trackRepo.UpdateTrackMedia(track); err != nil {
		logger.Error("Failed to persist track analysis",
			logger.String("trackId", track.ID), logger.ErrorField(err))
	}
}

// assembleAndExport runs the strictly sequential tail of the pipeline:
// assemble, encode, upload, complete. Any error here is fatal to the mix.
func (r *Runner) assembleAndExport(ctx context.Context, mix *model.Mix, tracks []*model.Track) error {
	assembler := audio.NewAssembler(r.loader)
	result, err := assembler.Assemble(ctx, tracks)
	if err != nil {
		return fmt.Errorf("assembly failed: %w", err)
	}

	if len(result.Contributed) == 0 {
		// Every candidate was skipped. That is a degraded outcome, not a
		// failure: the mix completes with zero duration and no audio file.
		logger.Warn("No tracks contributed to mix, completing without audio",
			logger.String("mixId", mix.ID), logger.Int("skipped", len(result.Skipped)))
		if err := r.mixRepo.CompleteMix(mix.ID, 0, ""); err != nil {
			return fmt.Errorf("completion update failed: %w", err)
		}
		return nil
	}

	outPath := filepath.Join(r.cfg.MixDir, mix.ID+".mp3")
	if err := r.encoder.Encode(ctx, result.Buffer, result.SampleRate, outPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	defer os.Remove(outPath)

	locator, err := r.store.UploadMix(ctx, mix.ID, outPath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if err := r.mixRepo.CompleteMix(mix.ID, result.Duration, locator); err != nil {
		return fmt.Errorf("completion update failed: %w", err)
	}
	return nil
}
