// Package portrait draws the profile picture into terminal cells.
//
// Images are scaled to cols x rows*2 pixels and printed with the upper half
// block, using the foreground colour for the top pixel and the background
// colour for the bottom one, so pixels come out roughly square.
package portrait

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/ztprofile/pkg/metrics"
)

const halfBlock = "▀"

var (
	colorBackdrop = color.RGBA{0x28, 0x2A, 0x36, 0xFF}
	colorSkin     = color.RGBA{0xF1, 0xC2, 0x9A, 0xFF}
	colorHair     = color.RGBA{0x2B, 0x1B, 0x17, 0xFF}
	colorShirt    = color.RGBA{0xBD, 0x93, 0xF9, 0xFF}
	colorEyes     = color.RGBA{0x1E, 0x1F, 0x29, 0xFF}
	colorInitials = color.RGBA{0xF8, 0xF8, 0xF2, 0xFF}
)

// Default draws the built-in portrait at the given pixel size. initials, if
// not empty, are stamped in the bottom-left corner.
func Default(width, height int, initials string) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	w, h := float64(width), float64(height)
	cx := w / 2

	// Shoulders
	dc.SetColor(colorShirt)
	dc.DrawEllipse(cx, h, w*0.42, h*0.28)
	dc.Fill()

	// Head and hair
	headR := minf(w, h) * 0.22
	headY := h * 0.42
	dc.SetColor(colorHair)
	dc.DrawCircle(cx, headY-headR*0.15, headR*1.08)
	dc.Fill()
	dc.SetColor(colorSkin)
	dc.DrawCircle(cx, headY, headR)
	dc.Fill()

	// Eyes
	dc.SetColor(colorEyes)
	dc.DrawCircle(cx-headR*0.38, headY-headR*0.1, headR*0.12)
	dc.DrawCircle(cx+headR*0.38, headY-headR*0.1, headR*0.12)
	dc.Fill()

	if initials != "" && width >= 24 {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(colorInitials)
		dc.DrawStringAnchored(initials, 3, h-3, 0, 0)
	}

	return dc.Image()
}

// Load decodes a PNG or JPEG file.
func Load(path string) (image.Image, error) {
	defer metrics.Timer(metrics.PortraitLoad)()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Initials returns the upper-cased first letter of each word in name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range strings.ToUpper(word) {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// Render scales img into cols x rows terminal cells.
func Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, y*2)
			bottom := dst.RGBAAt(x, y*2+1)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom)))
			b.WriteString(cell.Render(halfBlock))
		}
	}
	return b.String()
}

// Portrait holds a source image and the size it was last rendered at, so a
// View can be called every frame without rescaling.
type Portrait struct {
	img        image.Image
	cols, rows int
	cached     string
}

// New wraps an image.
func New(img image.Image) *Portrait {
	return &Portrait{img: img}
}

// SetImage replaces the source image and drops the cached rendering.
func (p *Portrait) SetImage(img image.Image) {
	p.img = img
	p.cached = ""
	p.cols, p.rows = 0, 0
}

// View renders the portrait at cols x rows, reusing the previous result when
// the size is unchanged.
func (p *Portrait) View(cols, rows int) string {
	if p == nil {
		return ""
	}
	if p.cached != "" && cols == p.cols && rows == p.rows {
		return p.cached
	}
	p.cols, p.rows = cols, rows
	p.cached = Render(p.img, cols, rows)
	return p.cached
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
