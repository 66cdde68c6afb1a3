package logic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"aimage-backend/fault"
	"aimage-backend/models"
	"aimage-backend/pkg"
)

// Generation parameter defaults, matching the provider's documented
// ranges for the SDXL engine.
const (
	defaultDimension   = 1024
	defaultCfgScale    = 7
	defaultSteps       = 30
	defaultStylePreset = "digital-art"
)

// GenerationLogic runs the coin-gated generation transaction:
// precheck balance, invoke the rate-limited retrying provider client,
// persist payloads, then debit + ledger entry + metadata in one atomic
// commit. Any failure after payloads are written triggers compensation
// so no coins move and no partial artifact stays visible.
type GenerationLogic struct {
	ledger       LedgerStore
	commits      GenerationStore
	generator    ImageGenerator
	blobs        pkg.BlobStore
	costPerImage int64
	maxSamples   int
	engine       string
}

func NewGenerationLogic(
	ledger LedgerStore,
	commits GenerationStore,
	generator ImageGenerator,
	blobs pkg.BlobStore,
	costPerImage int64,
	maxSamples int,
	engine string,
) *GenerationLogic {
	return &GenerationLogic{
		ledger:       ledger,
		commits:      commits,
		generator:    generator,
		blobs:        blobs,
		costPerImage: costPerImage,
		maxSamples:   maxSamples,
		engine:       engine,
	}
}

// GenerateInput is the transient request; it is only persisted as part
// of the artifact metadata on success
type GenerateInput struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Samples        int     `json:"samples"`
	CfgScale       float64 `json:"cfg_scale"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed"`
	StylePreset    string  `json:"style_preset"`
}

type GenerateResult struct {
	Images         []*models.Image `json:"images"`
	CoinsUsed      int64           `json:"coins_used"`
	RemainingCoins int64           `json:"remaining_coins"`
}

// compensation is one reversing step recorded while building up side
// effects; steps run in reverse order on abort
type compensation struct {
	name string
	undo func() error
}

func runCompensations(steps []compensation) {
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].undo(); err != nil {
			// the caller already sees the original error
			log.Printf("Compensation %q failed: %v", steps[i].name, err)
		}
	}
}

// Generate executes one generation transaction for the user
func (l *GenerationLogic) Generate(ctx context.Context, userID uint64, in GenerateInput) (*GenerateResult, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, fault.ErrInvalidPrompt
	}
	l.applyDefaults(&in)

	cost := l.costPerImage * int64(in.Samples)

	// advisory precheck: fail fast before the rate gate and before any
	// provider attempt; the commit re-verifies under the row lock
	ok, err := l.ledger.Reserve(userID, cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.ErrInsufficientCoins
	}

	artifacts, err := l.generator.Generate(ctx, pkg.GenerateRequest{
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Width:          in.Width,
		Height:         in.Height,
		Samples:        in.Samples,
		CfgScale:       in.CfgScale,
		Steps:          in.Steps,
		Seed:           in.Seed,
		StylePreset:    in.StylePreset,
	})
	if err != nil {
		return nil, err
	}

	var undo []compensation
	images := make([]*models.Image, 0, len(artifacts))
	for _, art := range artifacts {
		data, err := base64.StdEncoding.DecodeString(art.Base64)
		if err != nil {
			runCompensations(undo)
			return nil, fault.ErrProviderRejected
		}

		id := uuid.New()
		ref, err := l.blobs.Put(id.String(), data)
		if err != nil {
			runCompensations(undo)
			return nil, fault.ErrStorageWriteFailed
		}
		undo = append(undo, compensation{
			name: "delete blob " + ref,
			undo: func() error { return l.blobs.Delete(ref) },
		})

		params, err := json.Marshal(models.GenerationParams{
			Prompt:         in.Prompt,
			NegativePrompt: in.NegativePrompt,
			Width:          in.Width,
			Height:         in.Height,
			Samples:        in.Samples,
			CfgScale:       in.CfgScale,
			Steps:          in.Steps,
			Seed:           art.Seed,
			StylePreset:    in.StylePreset,
			Engine:         l.engine,
		})
		if err != nil {
			runCompensations(undo)
			return nil, fault.ErrCommitFailed
		}

		images = append(images, &models.Image{
			ID:            id,
			UserID:        userID,
			Params:        params,
			CoinsUsed:     l.costPerImage,
			StorageRef:    ref,
			DownloadState: models.DownloadAvailable,
		})
	}

	// charge for what the provider actually returned
	charged := l.costPerImage * int64(len(images))
	detail := fmt.Sprintf("Generated %d image(s)", len(images))

	remaining, err := l.commits.CommitGeneration(ctx, userID, charged, detail, images)
	if err != nil {
		runCompensations(undo)
		if fault.IsErrFunds(err) {
			// a concurrent spend won the race since the precheck
			return nil, err
		}
		log.Printf("Generation commit failed for user %d: %v", userID, err)
		return nil, fault.ErrCommitFailed
	}

	return &GenerateResult{
		Images:         images,
		CoinsUsed:      charged,
		RemainingCoins: remaining,
	}, nil
}

func (l *GenerationLogic) applyDefaults(in *GenerateInput) {
	if in.Width <= 0 {
		in.Width = defaultDimension
	}
	if in.Height <= 0 {
		in.Height = defaultDimension
	}
	if in.CfgScale <= 0 {
		in.CfgScale = defaultCfgScale
	}
	if in.Steps <= 0 {
		in.Steps = defaultSteps
	}
	if in.StylePreset == "" {
		in.StylePreset = defaultStylePreset
	}
	if in.NegativePrompt == "" {
		in.NegativePrompt = pkg.DefaultNegativePrompt
	}
	if in.Samples <= 0 {
		in.Samples = 1
	}
	if in.Samples > l.maxSamples {
		in.Samples = l.maxSamples
	}
}
