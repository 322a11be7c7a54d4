package monk

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxCoverWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	coversSubdir  = "covers"
)

// processCover decodes an image from src, scales it down to maxCoverWidth
// when wider, and encodes it as JPEG.
func processCover(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxCoverWidth {
		newH := h * maxCoverWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxCoverWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// coverFilename names a cover after its article. The timestamp changes the
// URL on every upload since /public is served as immutable.
func coverFilename(id string, now time.Time) string {
	return fmt.Sprintf("%s-%d.jpg", Slugify(id), now.UnixNano())
}

func (a *App) handleCoverUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	article, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processCover(src)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := filepath.Join(a.staticDir, coversSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create covers dir: %w", err)
	}
	name := coverFilename(id, time.Now())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}

	if err := a.Store.SetCover(id, "/public/"+coversSubdir+"/"+name); err != nil {
		return err
	}
	a.removeCover(article.Cover)
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/articles/"+id+"/")
}

// removeCover deletes a cover file given its public path. Missing files
// are ignored.
func (a *App) removeCover(public string) {
	name := strings.TrimPrefix(public, "/public/"+coversSubdir+"/")
	if public == "" || name == public || strings.ContainsAny(name, `/\`) {
		return
	}
	_ = os.Remove(filepath.Join(a.staticDir, coversSubdir, name))
}

// Slugify converts s to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
