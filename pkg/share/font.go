package share

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	gofontOnce sync.Once
	gofontData *opentype.Font
	gofontErr  error
)

// faceSet - шрифты одного экспорта. font.Face нельзя делить между горутинами,
// поэтому набор создаётся на каждый экспорт и закрывается после.
type faceSet struct {
	title    font.Face
	subtitle font.Face
	small    font.Face
	padding  int
	owned    []font.Face
}

func newFaceSet(imageHeight int) *faceSet {
	titleSize := clampSize(float64(imageHeight)/14, 14, 96)
	fs := &faceSet{padding: int(titleSize / 2)}

	fs.title = fs.face(titleSize)
	fs.subtitle = fs.face(titleSize * 0.6)
	fs.small = fs.face(clampSize(titleSize*0.4, 10, 32))
	return fs
}

func (fs *faceSet) face(size float64) font.Face {
	gofontOnce.Do(func() {
		gofontData, gofontErr = opentype.Parse(goregular.TTF)
	})
	if gofontErr != nil || gofontData == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(gofontData, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	fs.owned = append(fs.owned, face)
	return face
}

func (fs *faceSet) Close() {
	for _, f := range fs.owned {
		_ = f.Close()
	}
	fs.owned = nil
}

func clampSize(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func drawText(img *image.RGBA, text string, x, y int, c color.RGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// truncateToWidth обрезает текст с многоточием, чтобы он поместился в maxWidth
func truncateToWidth(face font.Face, text string, maxWidth int) string {
	if maxWidth <= 0 || measure(face, text) <= maxWidth {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if measure(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}
