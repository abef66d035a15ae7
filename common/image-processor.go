package common

// Image processor for photo posts
//
// 1. Scan a folder for images by extension
// 2. Clear the processed folder so it only holds the current run
// 3. Copy images that already fit the full-width preset
// 4. Downscale wider images with an area-averaging filter, keeping the
//    filename (and so the format) unchanged

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imageorient"
	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"
)

// FullWidth is the maximum width in pixels of a full-width post image.
const FullWidth = 900

// DefaultExtensions are the image extensions picked up by ScanImages.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "webp"}

// PhotoSet is an ordered list of image filenames (not paths), in directory
// listing order.
type PhotoSet []string

// ScanImages lists the images directly inside dir. A name matches when it
// ends with "."+ext in either all-lowercase or all-uppercase form.
func ScanImages(dir string, extensions []string) (PhotoSet, error) {
	f, err := os.Open(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	defer f.Close()

	entries, err := f.Readdir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	photos := make(PhotoSet, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if HasImageExtension(entry.Name(), extensions) {
			photos = append(photos, entry.Name())
		}
	}
	return photos, nil
}

// HasImageExtension reports whether name carries one of extensions.
func HasImageExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, "."+strings.ToLower(ext)) ||
			strings.HasSuffix(name, "."+strings.ToUpper(ext)) {
			return true
		}
	}
	return false
}

// Resizer writes post-ready copies of images into a processed folder.
type Resizer struct {
	MaxWidth    int
	JPEGQuality int
	WebPQuality float32
}

// ResizeReport tells what happened to every image of a batch.
type ResizeReport struct {
	Copied  []string
	Resized []string
	Failed  map[string]error
}

// NewResizer creates a resizer for maxWidth with default encoder quality.
func NewResizer(maxWidth int) *Resizer {
	return &Resizer{
		MaxWidth:    maxWidth,
		JPEGQuality: 90,
		WebPQuality: 85,
	}
}

// Resize clears dstDir and fills it with one output per photo of srcDir.
// Per-image failures are logged and reported; they do not stop the batch.
func (r *Resizer) Resize(photos PhotoSet, srcDir, dstDir string) (ResizeReport, error) {
	log := Logger()
	report := ResizeReport{Failed: make(map[string]error)}

	if err := ClearDir(dstDir); err != nil {
		return report, err
	}

	for _, name := range photos {
		resized, err := r.processImage(filepath.Join(srcDir, name), filepath.Join(dstDir, name))
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("Skipping image")
			report.Failed[name] = err
			continue
		}
		if resized {
			report.Resized = append(report.Resized, name)
		} else {
			report.Copied = append(report.Copied, name)
		}
	}

	log.Info().Msgf("📷 Processed %d images: %d resized, %d copied, %d failed",
		len(photos), len(report.Resized), len(report.Copied), len(report.Failed))
	return report, nil
}

// processImage returns true when the image had to be scaled down.
func (r *Resizer) processImage(src, dst string) (bool, error) {
	img, err := decodeImage(src)
	if err != nil {
		return false, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= r.MaxWidth {
		Logger().Debug().Str("file", filepath.Base(src)).Int("width", width).Msg("copying image")
		if err := copyFile(src, dst); err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrWrite, dst, err)
		}
		return false, nil
	}

	newHeight := ScaledHeight(width, height, r.MaxWidth)
	Logger().Debug().
		Str("file", filepath.Base(src)).
		Int("width", width).
		Int("height", height).
		Int("new_height", newHeight).
		Msg("resizing image")

	resized := imaging.Resize(img, r.MaxWidth, newHeight, imaging.Box)
	if err := r.encode(dst, resized); err != nil {
		return false, err
	}
	return true, nil
}

// ScaledHeight is height scaled by maxWidth/width, rounded, at least 1.
func ScaledHeight(width, height, maxWidth int) int {
	scale := float64(maxWidth) / float64(width)
	h := int(math.Round(float64(height) * scale))
	if h < 1 {
		h = 1
	}
	return h
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := imageorient.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}
	return img, nil
}

// encode picks the encoder from the filename suffix.
func (r *Resizer) encode(path string, img image.Image) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return r.encodeWebP(path, img)
	}

	err := imaging.Save(img, path,
		imaging.JPEGQuality(r.JPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	return nil
}

func (r *Resizer) encodeWebP(path string, img image.Image) (err error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetPhoto, r.WebPQuality)
	if err != nil {
		return fmt.Errorf("webp options: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %v", ErrWrite, path, cerr)
		}
	}()

	if err := webp.Encode(out, img, options); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	return nil
}

// ClearDir makes sure dir exists and removes every file directly inside it.
// Subdirectories are left alone.
func ClearDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove stale %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
