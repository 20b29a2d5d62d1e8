package folio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/folio/views"
)

// Share images are cropped to the size social cards render at.
const (
	shareImageWidth  = 1200
	shareImageHeight = 630
	jpegQuality      = 82
	maxUploadSize    = 10 << 20
	shareImageDir    = "assets/images/share"
)

// ShareImage is an uploaded og:image / twitter:image candidate.
type ShareImage = views.ShareImage

// cropToCard scales img to cover the card size and crops the overflow
// around the center.
func cropToCard(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	// Source rectangle with the card's aspect ratio.
	src := b
	if w*shareImageHeight > h*shareImageWidth {
		cw := h * shareImageWidth / shareImageHeight
		x0 := b.Min.X + (w-cw)/2
		src = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else {
		ch := w * shareImageHeight / shareImageWidth
		y0 := b.Min.Y + (h-ch)/2
		src = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}
	dst := image.NewRGBA(image.Rect(0, 0, shareImageWidth, shareImageHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

// processShareImage decodes r, crops it to the card size and encodes it as
// JPEG.
func processShareImage(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropToCard(img), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) shareImagePath(name string) string {
	return filepath.Join(a.Config.PublicDir, filepath.FromSlash(shareImageDir), name)
}

// uniqueShareImageName returns a free file name derived from original.
func (a *App) uniqueShareImageName(original string) string {
	base := Slugify(strings.TrimSuffix(original, filepath.Ext(original)))
	if base == "" {
		base = "image"
	}
	name := base + ".jpg"
	for i := 2; ; i++ {
		if _, err := os.Stat(a.shareImagePath(name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s-%d.jpg", base, i)
	}
}

// ListShareImages returns the uploaded share images by name.
func (a *App) ListShareImages() ([]ShareImage, error) {
	entries, err := os.ReadDir(filepath.Join(a.Config.PublicDir, filepath.FromSlash(shareImageDir)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []ShareImage
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		out = append(out, ShareImage{
			Filename: e.Name(),
			URL:      a.Config.URL + "/" + path.Join(shareImageDir, e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (a *App) handleShareImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return redirectWithMessage(c, "No image file provided.")
	}
	if file.Size > maxUploadSize {
		return redirectWithMessage(c, "File too large (max 10MB).")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processShareImage(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return redirectWithMessage(c, "Invalid image: "+err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(a.shareImagePath("x")), 0o755); err != nil {
		return fmt.Errorf("create share image dir: %w", err)
	}
	name := a.uniqueShareImageName(file.Filename)
	if err := os.WriteFile(a.shareImagePath(name), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return redirectWithMessage(c, "Uploaded "+name+".")
}

func (a *App) handleShareImageDelete(c echo.Context) error {
	name := filepath.Base(c.FormValue("filename"))
	if name == "." || name == string(filepath.Separator) || !strings.HasSuffix(name, ".jpg") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
	}
	if err := os.Remove(a.shareImagePath(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return redirectWithMessage(c, "Deleted "+name+".")
}
