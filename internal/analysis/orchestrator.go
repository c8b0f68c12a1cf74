package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/videoaudit/audit-agent/internal/config"
	"github.com/videoaudit/audit-agent/internal/logging"
	"github.com/videoaudit/audit-agent/internal/validation"
)

// serviceErrorMarker prefixes analysis text when the upstream model hit
// a quota or internal failure while still answering 200.
const serviceErrorMarker = "Error"

// ErrSuperseded is returned to a caller whose in-flight submission was
// cancelled and replaced by a newer one. Nothing is committed for the
// superseded call; its late result, if any, is discarded.
var ErrSuperseded = errors.New("submission superseded by a newer upload")

// Upload is the submission ticket: everything the orchestrator needs to
// send one video, passed explicitly at call time.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// RemoteResult is a successful HTTP-level answer from the analysis
// service. Optional fields stay nil/empty when the service omits them.
type RemoteResult struct {
	VideoID         string
	VideoURL        string
	Analysis        string
	RetentionScore  *int
	FinalStatus     string
	EditingTimeline []EditingStep
	Message         string
}

// Client submits a video to the analysis service. Implementations return
// *ServiceError for answered-but-negative outcomes and plain errors for
// transport failures; the orchestrator decides what each means.
type Client interface {
	SubmitVideo(ctx context.Context, upload Upload) (*RemoteResult, error)
}

// Orchestrator owns the end-to-end submission lifecycle. At most one
// upload is in flight at a time: a newer Submit cancels and replaces the
// older one, and a generation check keeps a superseded call's late
// result out of the store.
type Orchestrator struct {
	client  Client
	repo    Repository
	synth   *Synthesizer
	scoring config.Scoring
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
}

func NewOrchestrator(client Client, repo Repository, scoring config.Scoring, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:  client,
		repo:    repo,
		synth:   NewSynthesizer(scoring),
		scoring: scoring,
		timeout: timeout,
		logger:  logger,
	}
}

// Submit transmits the video and always resolves to a usable artifact or
// a documented error: *InputError before any network activity,
// *ServiceError when the service answered negatively, ErrSuperseded or
// the caller's context error on cancellation. Timeout and transport
// unreachability are recovered internally through the fallback
// synthesizer and never surface raw.
func (o *Orchestrator) Submit(ctx context.Context, upload Upload) (*Artifact, error) {
	if err := validation.ValidateUpload(upload.Filename, upload.ContentType, upload.Size); err != nil {
		return nil, &InputError{Err: err}
	}

	reqCtx, gen := o.begin(ctx)
	defer o.finish(gen)

	callCtx, cancelCall := context.WithTimeout(reqCtx, o.timeout)
	defer cancelCall()

	res, err := o.client.SubmitVideo(callCtx, upload)
	if err != nil {
		return o.resolveFailure(ctx, reqCtx, gen, err)
	}

	if strings.HasPrefix(res.Analysis, serviceErrorMarker) {
		return nil, &ServiceError{StatusCode: 200, Body: res.Analysis}
	}

	artifact := o.assemble(res)

	committed, err := o.commit(ctx, gen, artifact)
	if err != nil {
		return nil, fmt.Errorf("commit artifact: %w", err)
	}
	if !committed {
		return nil, ErrSuperseded
	}

	if o.logger != nil {
		logging.WithVideoID(o.logger, artifact.VideoID).Info("analysis committed",
			"recommendations", len(artifact.Recommendations),
			"parse_degraded", artifact.ParseDegraded,
		)
	}
	return artifact, nil
}

// resolveFailure classifies a failed service call. The order matters:
// an answered failure surfaces even if the context died meanwhile, the
// caller's own cancellation wins over everything else, and only the
// absence of an answer routes to the fallback synthesizer.
func (o *Orchestrator) resolveFailure(ctx, reqCtx context.Context, gen uint64, err error) (*Artifact, error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return nil, svcErr
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if reqCtx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrSuperseded
	}

	if o.logger != nil {
		o.logger.Warn("analysis service unavailable, synthesizing fallback", "error", err)
	}

	artifact := o.synth.Synthesize()
	committed, commitErr := o.commit(ctx, gen, artifact)
	if commitErr != nil {
		return nil, fmt.Errorf("commit fallback artifact: %w", commitErr)
	}
	if !committed {
		return nil, ErrSuperseded
	}
	return artifact, nil
}

// assemble builds the artifact from a successful response: parsed
// recommendations plus score, status and timeline taken verbatim, with
// the status normalized from the score when missing or unrecognized.
func (o *Orchestrator) assemble(res *RemoteResult) *Artifact {
	recs, parseDegraded := ParseRecommendations(res.Analysis)

	videoID := res.VideoID
	if videoID == "" {
		videoID = NewTempID()
	}

	status := res.FinalStatus
	if status != StatusReady && status != StatusChangesNeeded {
		status = ""
		if res.RetentionScore != nil {
			status = StatusForScore(*res.RetentionScore, o.scoring.ReadyThreshold)
		}
	}

	timeline := normalizeTimeline(res.EditingTimeline)

	return &Artifact{
		VideoID:         videoID,
		VideoURL:        res.VideoURL,
		RawAnalysis:     res.Analysis,
		Recommendations: recs,
		RetentionScore:  res.RetentionScore,
		FinalStatus:     status,
		EditingTimeline: timeline,
		ParseDegraded:   parseDegraded,
		CreatedAt:       time.Now().UTC(),
	}
}

// normalizeTimeline lowercases action types and buckets unrecognized
// ones under "cut", mirroring the recommendation coercion rules.
func normalizeTimeline(steps []EditingStep) []EditingStep {
	out := make([]EditingStep, len(steps))
	for i, step := range steps {
		step.ActionType = strings.ToLower(step.ActionType)
		if !actionTypes[step.ActionType] {
			step.ActionType = ActionCut
		}
		out[i] = step
	}
	return out
}

// begin cancels any in-flight submission and registers this one.
func (o *Orchestrator) begin(ctx context.Context) (context.Context, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.generation++
	return reqCtx, o.generation
}

func (o *Orchestrator) finish(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation == gen && o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// commit writes the artifact only if this submission is still current.
func (o *Orchestrator) commit(ctx context.Context, gen uint64, a *Artifact) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen {
		return false, nil
	}
	if err := o.repo.PutArtifact(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// GetArtifact retrieves a stored artifact; (nil, nil) when absent.
func (o *Orchestrator) GetArtifact(ctx context.Context, videoID string) (*Artifact, error) {
	return o.repo.GetArtifact(ctx, videoID)
}

// ListHistory returns stored artifact ids, newest first.
func (o *Orchestrator) ListHistory(ctx context.Context) ([]string, error) {
	return o.repo.ListArtifactIDs(ctx)
}

// DeleteArtifact removes a stored artifact. Explicit deletion is the
// only way an artifact is destroyed.
func (o *Orchestrator) DeleteArtifact(ctx context.Context, videoID string) error {
	return o.repo.DeleteArtifact(ctx, videoID)
}
