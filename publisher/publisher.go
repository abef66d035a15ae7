package publisher

import (
	"fmt"

	"photopost/builder"
	"photopost/common"
	"photopost/config"
	"photopost/deployer"
)

// Result collects what one publish run produced.
type Result struct {
	Report   common.ResizeReport
	Plan     deployer.UploadPlan
	PostPath string
}

// Publisher turns a folder of photos into a post
type Publisher struct {
	cfg      *config.Config
	resizer  *common.Resizer
	deployer *deployer.Deployer
	composer *builder.Composer
}

// New creates a publisher using uploader for the upload step.
func New(cfg *config.Config, uploader deployer.Uploader) *Publisher {
	resizer := common.NewResizer(cfg.Images.MaxWidth)
	resizer.JPEGQuality = cfg.Quality("jpeg", resizer.JPEGQuality)
	resizer.WebPQuality = float32(cfg.Quality("webp", int(resizer.WebPQuality)))

	return &Publisher{
		cfg:      cfg,
		resizer:  resizer,
		deployer: deployer.NewDeployer(cfg, uploader),
		composer: builder.NewComposer(cfg),
	}
}

// Publish runs the whole pipeline for a validated request:
//  1. scan the photo folder
//  2. resize into the processed folder
//  3. plan (and print) the upload
//  4. write the post
func (p *Publisher) Publish(req common.PostRequest) (*Result, error) {
	log := common.Logger()
	log.Info().Msgf("🚀 Creating post %s", req.Slug())

	photos, err := common.ScanImages(req.PhotoSourceDir, p.cfg.Images.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to scan photos: %w", err)
	}
	log.Info().Msgf("Found %d images in %s", len(photos), req.PhotoSourceDir)

	report, err := p.resizer.Resize(photos, req.PhotoSourceDir, p.cfg.Images.ProcessedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process images: %w", err)
	}

	// The plan lists what actually made it into the processed folder.
	processed, err := common.ScanImages(p.cfg.Images.ProcessedDir, p.cfg.Images.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to scan processed images: %w", err)
	}

	plan := p.deployer.Plan(req, processed)

	postPath, err := p.composer.Compose(req, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to write post: %w", err)
	}

	log.Info().Msgf("✅ Post ready: %s", postPath)
	return &Result{
		Report:   report,
		Plan:     plan,
		PostPath: postPath,
	}, nil
}
