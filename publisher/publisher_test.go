package publisher

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"photopost/common"
	"photopost/config"
	"photopost/deployer"
)

func setupSite(t *testing.T) (*config.Config, string) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default(base)

	os.MkdirAll(filepath.Join(base, "templates"), 0755)
	os.WriteFile(cfg.Templates.Post, []byte("---\nlayout: post\ntitle: \"\"\nphotos_dir: \"\"\n---\n\n"), 0644)
	os.WriteFile(cfg.Templates.ImageFull, []byte("{% include post_image_full.html filename=\"\" %}\n"), 0644)

	photos := filepath.Join(base, "photos")
	os.MkdirAll(photos, 0755)
	fill := color.NRGBA{R: 10, G: 90, B: 160, A: 255}
	if err := imaging.Save(imaging.New(1800, 1000, fill), filepath.Join(photos, "wide.png")); err != nil {
		t.Fatalf("Failed to write wide.png: %v", err)
	}
	if err := imaging.Save(imaging.New(400, 300, fill), filepath.Join(photos, "small.jpg")); err != nil {
		t.Fatalf("Failed to write small.jpg: %v", err)
	}
	os.WriteFile(filepath.Join(photos, "broken.jpg"), []byte("nope"), 0644)
	os.WriteFile(filepath.Join(photos, "notes.txt"), []byte("not a photo"), 0644)

	return &cfg, photos
}

func request(photos string) common.PostRequest {
	return common.PostRequest{
		Date:           time.Date(2021, time.July, 4, 0, 0, 0, 0, time.UTC),
		Title:          "july-fourth",
		PhotoSourceDir: photos,
	}
}

func TestPublish(t *testing.T) {
	cfg, photos := setupSite(t)
	os.WriteFile(cfg.Upload.ServerConfig, []byte(`{"path_to_post_img_root": "/img", "host": "h", "user": "u"}`), 0644)

	var out bytes.Buffer
	result, err := New(cfg, deployer.NewPrintUploader(&out)).Publish(request(photos))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(result.Report.Resized) != 1 || len(result.Report.Copied) != 1 || len(result.Report.Failed) != 1 {
		t.Errorf("Unexpected resize report %+v", result.Report)
	}
	if len(result.Plan.Photos) != 2 {
		t.Errorf("Expected 2 processed photos in the plan, got %v", result.Plan.Photos)
	}

	img, err := imaging.Open(filepath.Join(cfg.Images.ProcessedDir, "wide.png"))
	if err != nil {
		t.Fatalf("Processed wide.png missing: %v", err)
	}
	if img.Bounds().Dx() != 900 || img.Bounds().Dy() != 500 {
		t.Errorf("Expected 900x500, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 4 {
		t.Errorf("Expected 4 command lines, got %d:\n%s", len(lines), out.String())
	}

	data, err := os.ReadFile(result.PostPath)
	if err != nil {
		t.Fatalf("Post missing: %v", err)
	}
	if filepath.Base(result.PostPath) != "2021-07-04-july-fourth.md" {
		t.Errorf("Unexpected post filename %s", filepath.Base(result.PostPath))
	}
	content := string(data)
	for _, name := range []string{"wide.png", "small.jpg"} {
		if !strings.Contains(content, `filename="`+name+`"`) {
			t.Errorf("Post should include %s", name)
		}
	}
	if strings.Contains(content, "broken.jpg") {
		t.Error("Post should not include an image that failed to process")
	}
}

func TestPublishWithoutServerConfig(t *testing.T) {
	cfg, photos := setupSite(t)

	var out bytes.Buffer
	result, err := New(cfg, deployer.NewPrintUploader(&out)).Publish(request(photos))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("No upload commands expected without server config, got:\n%s", out.String())
	}
	if result.Plan.RemoteFolderName != "2021-07-04-july-fourth" {
		t.Errorf("Unexpected folder name %s", result.Plan.RemoteFolderName)
	}
	if _, err := os.Stat(result.PostPath); err != nil {
		t.Errorf("Post should be written anyway: %v", err)
	}
}

func TestPublishMissingPhotoFolder(t *testing.T) {
	cfg, _ := setupSite(t)

	_, err := New(cfg, deployer.NewPrintUploader(&bytes.Buffer{})).Publish(request(filepath.Join(t.TempDir(), "missing")))
	if !errors.Is(err, common.ErrDirectoryNotFound) {
		t.Errorf("Expected ErrDirectoryNotFound, got %v", err)
	}
	if _, err := os.Stat(cfg.PostsPath()); !os.IsNotExist(err) {
		t.Error("No post should be written when the photo folder is missing")
	}
}
