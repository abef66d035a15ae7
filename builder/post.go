package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"photopost/common"
	"photopost/config"
	"photopost/deployer"
)

// Literal placeholders of the post and image-include templates. Only the
// first occurrence of each is replaced.
const (
	TitlePlaceholder     = `title: ""`
	PhotosDirPlaceholder = `photos_dir: ""`
	FilenamePlaceholder  = `filename=""`
)

// Composer writes photo posts into the site's posts directory
type Composer struct {
	cfg *config.Config
}

// NewComposer creates a new post composer
func NewComposer(cfg *config.Config) *Composer {
	return &Composer{cfg: cfg}
}

// PostFilename returns "{YYYY-MM-DD}-{title}.md".
func PostFilename(req common.PostRequest) string {
	return req.Slug() + ".md"
}

// Compose renders the post for req and plan and writes it. It returns the
// path of the written file. A failed write may leave a truncated file.
func (c *Composer) Compose(req common.PostRequest, plan deployer.UploadPlan) (string, error) {
	log := common.Logger()

	content, err := c.Render(req, plan)
	if err != nil {
		return "", err
	}

	if _, _, err := common.ParseFrontmatter([]byte(content)); err != nil {
		log.Warn().Err(err).Msg("Composed post has unreadable front matter; writing it anyway")
	}

	postsDir := c.cfg.PostsPath()
	if err := os.MkdirAll(postsDir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create posts directory: %v", common.ErrWrite, err)
	}

	postPath := filepath.Join(postsDir, PostFilename(req))
	if err := os.WriteFile(postPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrWrite, postPath, err)
	}

	log.Info().Msgf("📝 Wrote post %s with %d images", postPath, len(plan.Photos))
	return postPath, nil
}

// Render builds the post body without touching the posts directory.
func (c *Composer) Render(req common.PostRequest, plan deployer.UploadPlan) (string, error) {
	post, err := readTemplate(c.cfg.Templates.Post)
	if err != nil {
		return "", err
	}

	post = replaceFirst(post, TitlePlaceholder, fmt.Sprintf(`title: "%s"`, req.Title))
	post = replaceFirst(post, PhotosDirPlaceholder, fmt.Sprintf(`photos_dir: "%s"`, plan.RemoteFolderName))

	if len(plan.Photos) == 0 {
		return post, nil
	}

	imageTemplate, err := readTemplate(c.cfg.Templates.ImageFull)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(post)
	for _, photo := range plan.Photos {
		b.WriteString(replaceFirst(imageTemplate, FilenamePlaceholder, fmt.Sprintf(`filename="%s"`, photo)))
	}
	return b.String(), nil
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", common.ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

func replaceFirst(s, placeholder, value string) string {
	if !strings.Contains(s, placeholder) {
		common.Logger().Warn().Str("placeholder", placeholder).Msg("Template has no placeholder")
		return s
	}
	return strings.Replace(s, placeholder, value, 1)
}
