package deployer

import (
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/alessio/shellescape"

	"photopost/common"
	"photopost/config"
)

// LocalMarker separates the commands run on the server from the ones run
// on the local machine.
const LocalMarker = "# then, on the local machine:"

// UploadPlan describes where the processed images of a post go.
type UploadPlan struct {
	RemoteFolderName string
	Photos           common.PhotoSet
	LocalDir         string
	// Server is nil when the server config could not be loaded.
	Server *config.ServerConfig
}

// RemotePath returns the folder on the server holding the post images.
func (p UploadPlan) RemotePath() string {
	if p.Server == nil {
		return ""
	}
	return path.Join(p.Server.PathToPostImgRoot, p.RemoteFolderName)
}

// Commands returns the shell commands that push the images by hand, or
// nil without a server config.
func (p UploadPlan) Commands() []string {
	if p.Server == nil {
		return nil
	}
	target := p.Server.Target()
	remote := p.RemotePath()
	return []string{
		fmt.Sprintf("ssh %s", target),
		fmt.Sprintf("mkdir %s", shellescape.Quote(remote)),
		LocalMarker,
		fmt.Sprintf("scp %s %s:%s", shellescape.Quote(filepath.Clean(p.LocalDir))+"/*", target, shellescape.Quote(remote)),
	}
}

// Uploader transfers the images of a plan to the server.
type Uploader interface {
	Upload(plan UploadPlan) error
}

// PrintUploader performs no transfer: it prints the commands a human runs
// to upload the images.
type PrintUploader struct {
	out io.Writer
}

// NewPrintUploader creates an uploader printing to out.
func NewPrintUploader(out io.Writer) *PrintUploader {
	return &PrintUploader{out: out}
}

// Upload prints the plan's commands.
func (u *PrintUploader) Upload(plan UploadPlan) error {
	cmds := plan.Commands()
	if cmds == nil {
		return fmt.Errorf("no server configured for %s", plan.RemoteFolderName)
	}
	for _, line := range cmds {
		if _, err := fmt.Fprintln(u.out, line); err != nil {
			return fmt.Errorf("failed to print upload commands: %w", err)
		}
	}
	return nil
}

// Deployer computes upload plans and hands them to an Uploader
type Deployer struct {
	cfg      *config.Config
	uploader Uploader
}

// NewDeployer creates a new deployer
func NewDeployer(cfg *config.Config, uploader Uploader) *Deployer {
	return &Deployer{cfg: cfg, uploader: uploader}
}

// Plan builds the upload plan for req and runs the uploader. Server config
// and upload failures are logged, never returned: the post is produced
// either way.
func (d *Deployer) Plan(req common.PostRequest, photos common.PhotoSet) UploadPlan {
	log := common.Logger()

	plan := UploadPlan{
		RemoteFolderName: req.Slug(),
		Photos:           photos,
		LocalDir:         d.cfg.Images.ProcessedDir,
	}

	server, err := config.LoadServerConfig(d.cfg.Upload.ServerConfig)
	if err != nil {
		log.Error().Err(err).Msg("Skipping upload instructions")
		return plan
	}
	plan.Server = server

	log.Info().Msgf("🌐 Upload %d images to %s:%s", len(photos), server.Target(), plan.RemotePath())
	if err := d.uploader.Upload(plan); err != nil {
		log.Error().Err(err).Msg("Upload step failed")
	}

	return plan
}
