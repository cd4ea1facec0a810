package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"slidemovie/internal/config"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/plan"
	"slidemovie/internal/project"
	"slidemovie/internal/script"
	"slidemovie/internal/services"
	"slidemovie/internal/services/deck"
	"slidemovie/internal/services/media"
	"slidemovie/internal/services/raster"
	"slidemovie/internal/services/tts"
	"slidemovie/internal/status"
)

// Collaborators bundles the external tool clients the executor drives.
type Collaborators struct {
	TTS    tts.Synthesizer
	Deck   deck.Converter
	Raster raster.Rasterizer
	Media  media.Encoder
}

// Result summarizes one run for the caller.
type Result struct {
	Slides       int
	Regenerated  int
	Reused       int
	Skipped      int
	MovieRebuilt bool
	MoviePath    string
}

// Executor runs the incremental pipeline for one project.
type Executor struct {
	cfg    *config.Config
	proj   *project.Project
	store  *status.Store
	co     Collaborators
	logger *slog.Logger
}

// NewExecutor constructs an executor. All collaborators are required.
func NewExecutor(cfg *config.Config, proj *project.Project, store *status.Store, co Collaborators, logger *slog.Logger) *Executor {
	return &Executor{cfg: cfg, proj: proj, store: store, co: co, logger: logger}
}

// Run executes the full pipeline. The status store is saved exactly
// once, after the run finishes or fails; on failure the state already
// recorded for completed slides is preserved.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	result := &Result{MoviePath: e.proj.MoviePath}
	runErr := e.execute(ctx, result)

	if saveErr := e.store.Save(e.proj.StatusPath); saveErr != nil {
		if runErr == nil {
			runErr = saveErr
		} else {
			e.logger.Error("failed to persist build state", "error", saveErr)
		}
	}
	return result, runErr
}

func (e *Executor) execute(ctx context.Context, result *Result) error {
	if err := e.proj.EnsureDirs(); err != nil {
		return err
	}

	changed, err := script.EnsureIDs(e.proj.ScriptPath, e.proj.Name)
	if err != nil {
		return err
	}
	if changed {
		e.logger.Info("assigned ids to new slides", "script", e.proj.ScriptPath)
	}

	slides, err := script.ParseFile(e.proj.ScriptPath)
	if err != nil {
		return err
	}
	if len(slides) == 0 {
		return fmt.Errorf("script %s contains no slides", e.proj.ScriptPath)
	}
	result.Slides = len(slides)

	deckHash, deckChanged, err := e.ensureDeck(ctx)
	if err != nil {
		return err
	}

	render := &renderState{}
	defer render.cleanup()

	// Render hashes come from actual page images when the deck changed,
	// and from stored records when it did not: an unchanged deck renders
	// byte-identical pages, so stored hashes are still the render's.
	if deckChanged || !e.storedImageHashesComplete(slides) {
		if err := e.rasterizeDeck(ctx, render, len(slides)); err != nil {
			return err
		}
	}
	imageHashes := render.hashes
	if imageHashes == nil {
		imageHashes = e.storedImageHashes(slides)
	}

	buildPlan, err := plan.Build(plan.Inputs{
		Slides:           slides,
		Store:            e.store,
		Config:           e.cfg,
		Project:          e.proj,
		DeckHash:         deckHash,
		SlideImageHashes: imageHashes,
	})
	if err != nil {
		return err
	}
	result.Regenerated = buildPlan.CountRegenerate()
	result.Reused = buildPlan.CountReuse()
	result.Skipped = len(buildPlan.Decisions()) - result.Regenerated - result.Reused

	for _, sp := range buildPlan.Slides {
		e.store.SyncSlide(sp.Slide.ID, sp.Slide.Title, sp.Slide.Position)
	}
	e.logDecisions(buildPlan)

	if err := e.generateImages(ctx, buildPlan, render); err != nil {
		return err
	}
	if err := e.generateAudio(ctx, buildPlan); err != nil {
		return err
	}
	if err := e.generateClips(ctx, buildPlan); err != nil {
		return err
	}
	return e.assembleMovie(ctx, buildPlan, result)
}

// ensureDeck regenerates the deck when the script changed or the deck
// file is gone, and returns the deck's content digest along with
// whether it differs from the one the last run saw.
func (e *Executor) ensureDeck(ctx context.Context) (string, bool, error) {
	scriptHash, err := fingerprint.File(e.proj.ScriptPath)
	if err != nil {
		return "", false, err
	}

	current := e.store.DeckTask
	fresh := current.Status != status.StatusGenerated ||
		current.SourceHash != scriptHash ||
		!fileutil.FileExists(e.proj.DeckPath)
	if fresh {
		e.logger.Info("building deck", "deck", e.proj.DeckPath)
		if err := e.co.Deck.Convert(ctx, e.proj.ScriptPath, e.proj.DeckPath, e.proj.SourceDir); err != nil {
			return "", false, err
		}
		e.store.DeckTask = status.TaskRecord{
			Status:     status.StatusGenerated,
			SourceHash: scriptHash,
			FileName:   filepath.Base(e.proj.DeckPath),
		}
	}

	deckHash, err := fingerprint.File(e.proj.DeckPath)
	if err != nil {
		return "", false, err
	}
	changed := deckHash != e.store.PptxHash
	e.store.PptxHash = deckHash
	return deckHash, changed, nil
}

// renderState carries the rendered deck pages through a run.
type renderState struct {
	dir    string
	pages  []string
	hashes []string
}

func (r *renderState) cleanup() {
	if r.dir != "" {
		os.RemoveAll(r.dir)
	}
}

// rasterizeDeck renders every deck page and digests each one. The deck
// must render exactly one page per script slide.
func (e *Executor) rasterizeDeck(ctx context.Context, render *renderState, slideCount int) error {
	dir, err := os.MkdirTemp("", "slidemovie-pages-*")
	if err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}
	render.dir = dir

	e.logger.Info("rendering deck pages", "deck", e.proj.DeckPath)
	pages, err := e.co.Raster.Rasterize(ctx, e.proj.DeckPath, dir)
	if err != nil {
		return err
	}
	if len(pages) != slideCount {
		return &SlideSyncError{ScriptSlides: slideCount, DeckPages: len(pages)}
	}

	hashes := make([]string, len(pages))
	for i, page := range pages {
		hash, err := fingerprint.File(page)
		if err != nil {
			return err
		}
		hashes[i] = hash
	}
	render.pages = pages
	render.hashes = hashes
	return nil
}

// storedImageHashesComplete reports whether every slide that needs a
// rendered image already has a recorded render digest.
func (e *Executor) storedImageHashesComplete(slides []script.Slide) bool {
	for _, slide := range slides {
		if slide.HasOverride() {
			continue
		}
		rec, ok := e.store.Get(slide.ID, status.KindImage)
		if !ok || rec.Hash == "" {
			return false
		}
	}
	return true
}

// storedImageHashes reads the recorded render digest per slide position.
func (e *Executor) storedImageHashes(slides []script.Slide) []string {
	hashes := make([]string, len(slides))
	for _, slide := range slides {
		if rec, ok := e.store.Get(slide.ID, status.KindImage); ok {
			hashes[slide.Position] = rec.Hash
		}
	}
	return hashes
}

// generateImages copies the rendered page for every slide whose image
// is due. Pages are rendered lazily here when planning found stale
// images without the deck having changed (an image file deleted from
// disk, say).
func (e *Executor) generateImages(ctx context.Context, buildPlan *plan.Plan, render *renderState) error {
	due := false
	for _, sp := range buildPlan.Slides {
		if sp.Image.Action == plan.ActionRegenerate {
			due = true
			break
		}
	}
	if !due {
		return nil
	}

	if render.pages == nil {
		if err := e.rasterizeDeck(ctx, render, len(buildPlan.Slides)); err != nil {
			return err
		}
	}

	for _, sp := range buildPlan.Slides {
		if sp.Image.Action != plan.ActionRegenerate {
			continue
		}
		slideID := sp.Slide.ID
		if err := copyFile(render.pages[sp.Slide.Position], e.proj.ImagePath(slideID)); err != nil {
			detail := err.Error()
			e.store.Put(slideID, status.KindImage, status.ArtifactRecord{Status: status.StatusError, Hash: sp.Image.Hash, ErrorDetail: detail})
			return &ArtifactGenerationError{SlideID: slideID, Kind: status.KindImage, Detail: detail, Err: err}
		}
		e.store.Put(slideID, status.KindImage, status.ArtifactRecord{Status: status.StatusGenerated, Hash: sp.Image.Hash})
		e.logger.Info("slide image ready", "slide", slideID)
	}
	return nil
}

// generateAudio synthesizes narration for every slide whose audio is
// due, running up to the configured number of workers in parallel. A
// slide that exhausts the retry budget stops the run; audio already
// produced by other workers stays recorded.
func (e *Executor) generateAudio(ctx context.Context, buildPlan *plan.Plan) error {
	workers := e.cfg.TTS.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	voice := e.cfg.GetVoice()
	for _, sp := range buildPlan.Slides {
		if sp.Audio.Action != plan.ActionRegenerate {
			continue
		}
		sp := sp
		g.Go(func() error {
			return e.synthesizeSlide(gctx, sp, voice)
		})
	}
	return g.Wait()
}

func (e *Executor) synthesizeSlide(ctx context.Context, sp plan.SlidePlan, voice config.VoiceConfig) error {
	slideID := sp.Slide.ID
	outPath := e.proj.AudioPath(slideID)
	text := fingerprint.NormalizeNotes(sp.Slide.Notes)
	additionalPrompt := e.store.AdditionalPrompt(slideID)

	err := e.withRetry(ctx, func(ctx context.Context) error {
		e.logger.Info("synthesizing narration", "slide", slideID)
		return e.co.TTS.Synthesize(ctx, text, additionalPrompt, voice, outPath)
	})
	if err == nil && e.cfg.Audio.SilenceSec > 0 {
		err = e.co.Media.PrependSilence(ctx, outPath, e.cfg.Audio.SilenceSec)
	}
	if err != nil {
		detail := err.Error()
		e.store.Put(slideID, status.KindAudio, status.ArtifactRecord{Status: status.StatusError, Hash: sp.Audio.Hash, ErrorDetail: detail})
		return &ArtifactGenerationError{SlideID: slideID, Kind: status.KindAudio, Detail: detail, Err: err}
	}

	duration, err := e.co.Media.Probe(ctx, outPath)
	if err != nil {
		e.logger.Warn("could not probe narration duration", "slide", slideID, "error", err)
		duration = 0
	}

	e.store.Put(slideID, status.KindAudio, status.ArtifactRecord{
		Status:   status.StatusGenerated,
		Hash:     sp.Audio.Hash,
		FilePath: filepath.Base(outPath),
	})
	e.store.SetAudioDetail(slideID, duration)
	e.logger.Info("narration ready", "slide", slideID, "duration_sec", duration)
	return nil
}

// generateClips composes the per-slide videos in position order.
func (e *Executor) generateClips(ctx context.Context, buildPlan *plan.Plan) error {
	for _, sp := range buildPlan.Slides {
		if sp.Video.Action != plan.ActionRegenerate {
			continue
		}
		slideID := sp.Slide.ID
		clipPath := e.proj.ClipPath(slideID)

		var err error
		if sp.Slide.HasOverride() {
			e.logger.Info("converting override video", "slide", slideID)
			err = e.co.Media.ConvertClip(ctx, plan.OverridePath(e.proj, sp.Slide), clipPath)
		} else {
			e.logger.Info("composing clip", "slide", slideID)
			err = e.co.Media.ComposeStill(ctx, e.proj.ImagePath(slideID), e.proj.AudioPath(slideID), clipPath)
		}
		if err != nil {
			detail := err.Error()
			e.store.Put(slideID, status.KindVideo, status.ArtifactRecord{Status: status.StatusError, Hash: sp.Video.Hash, ErrorDetail: detail})
			return &ArtifactGenerationError{SlideID: slideID, Kind: status.KindVideo, Detail: detail, Err: err}
		}

		duration, err := e.co.Media.Probe(ctx, clipPath)
		if err != nil {
			e.logger.Warn("could not probe clip duration", "slide", slideID, "error", err)
			duration = 0
		}

		e.store.Put(slideID, status.KindVideo, status.ArtifactRecord{
			Status:   status.StatusGenerated,
			Hash:     sp.Video.Hash,
			FilePath: filepath.Base(clipPath),
		})
		e.store.SetVideoDetail(slideID, duration)
		e.logger.Info("clip ready", "slide", slideID, "duration_sec", duration)
	}
	return nil
}

// assembleMovie concatenates the clips when their sequence digest
// differs from the last assembled movie, or when the movie file is
// gone.
func (e *Executor) assembleMovie(ctx context.Context, buildPlan *plan.Plan, result *Result) error {
	hashes := make([]string, 0, len(buildPlan.Slides))
	clips := make([]string, 0, len(buildPlan.Slides))
	for _, sp := range buildPlan.Slides {
		hashes = append(hashes, sp.Video.Hash)
		clips = append(clips, e.proj.ClipPath(sp.Slide.ID))
	}
	sequenceHash := fingerprint.Sequence(hashes)

	current := e.store.FinalMovie
	if current.Status == status.StatusGenerated &&
		current.SourceHash == sequenceHash &&
		fileutil.FileExists(e.proj.MoviePath) {
		e.logger.Info("movie is up to date", "movie", e.proj.MoviePath)
		return nil
	}

	e.logger.Info("assembling movie", "movie", e.proj.MoviePath, "clips", len(clips))
	if err := e.co.Media.Concat(ctx, clips, e.proj.MoviePath); err != nil {
		return err
	}
	e.store.FinalMovie = status.TaskRecord{
		Status:     status.StatusGenerated,
		SourceHash: sequenceHash,
		FileName:   filepath.Base(e.proj.MoviePath),
	}
	result.MovieRebuilt = true
	return nil
}

var retryBaseDelay = 2 * time.Second

// withRetry runs op until it succeeds, fails permanently, or spends
// max_retry+1 attempts. Backoff grows linearly between attempts.
func (e *Executor) withRetry(ctx context.Context, op func(context.Context) error) error {
	attempts := e.cfg.Build.MaxRetry + 1
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			e.logger.Warn("retrying after failure", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryBaseDelay):
			}
		}
		if err = op(ctx); err == nil {
			return nil
		}
		if !services.IsRetryable(err) {
			return err
		}
	}
	return err
}

func (e *Executor) logDecisions(buildPlan *plan.Plan) {
	if !e.cfg.Build.ShowSkip {
		return
	}
	for _, d := range buildPlan.Decisions() {
		if d.Action == plan.ActionRegenerate {
			continue
		}
		e.logger.Info("not regenerating", "slide", d.SlideID, "kind", string(d.Kind), "action", string(d.Action), "reason", d.Reason)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return fileutil.WriteFileAtomic(dst, data, 0o644)
}
