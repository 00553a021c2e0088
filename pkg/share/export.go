// Package share собирает картинку карты для соцсетей: снимок карты,
// масштабирование, заголовок, водяной знак и атрибуция, PNG на выходе.
package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"
)

// Размеры картинки по умолчанию (формат карточки соцсетей)
const (
	DefaultWidth  = 1200
	DefaultHeight = 630
	MaxDimension  = 4096

	DefaultWatermark   = "pajamaparty.eu"
	DefaultAttribution = "© Mapbox © OpenStreetMap"
)

// Capturer снимает текущую карту в растр.
// Размер результата может отличаться от запрошенного, Exporter масштабирует.
type Capturer interface {
	Capture(ctx context.Context, width, height int) (image.Image, error)
}

// CaptureFunc - функция как Capturer
type CaptureFunc func(ctx context.Context, width, height int) (image.Image, error)

func (f CaptureFunc) Capture(ctx context.Context, width, height int) (image.Image, error) {
	return f(ctx, width, height)
}

// Options - параметры экспорта. Пустые поля берутся из настроек экспортёра
type Options struct {
	Width       int
	Height      int
	Title       string
	Subtitle    string
	Watermark   string
	Attribution string
}

// Result - готовая картинка
type Result struct {
	PNG      []byte
	Width    int
	Height   int
	Filename string
}

// AsyncResult - результат ExportAsync
type AsyncResult struct {
	Result *Result
	Err    error
}

// ExportError - ошибка экспорта с сообщением для пользователя
type ExportError struct {
	Op          string
	Err         error
	UserMessage string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Op, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

var (
	ErrInvalidSize = errors.New("invalid image size")

	msgCapture = "We couldn't capture the map. Please wait until it has finished loading and try again."
	msgEncode  = "We couldn't create the image. Please try again."
	msgSize    = fmt.Sprintf("Image size must be between 1 and %d pixels.", MaxDimension)
)

// Exporter собирает PNG из снимка карты
type Exporter struct {
	capturer Capturer
	defaults Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewExporter создаёт экспортёр. defaults задаёт размеры, водяной знак и атрибуцию по умолчанию
func NewExporter(capturer Capturer, defaults Options, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Width <= 0 {
		defaults.Width = DefaultWidth
	}
	if defaults.Height <= 0 {
		defaults.Height = DefaultHeight
	}
	if defaults.Watermark == "" {
		defaults.Watermark = DefaultWatermark
	}
	if defaults.Attribution == "" {
		defaults.Attribution = DefaultAttribution
	}
	return &Exporter{
		capturer: capturer,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

func (e *Exporter) merge(opts Options) Options {
	if opts.Width == 0 {
		opts.Width = e.defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = e.defaults.Height
	}
	if opts.Watermark == "" {
		opts.Watermark = e.defaults.Watermark
	}
	if opts.Attribution == "" {
		opts.Attribution = e.defaults.Attribution
	}
	if opts.Title == "" {
		opts.Title = e.defaults.Title
	}
	if opts.Subtitle == "" {
		opts.Subtitle = e.defaults.Subtitle
	}
	return opts
}

// Export снимает карту и собирает картинку
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	opts = e.merge(opts)

	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > MaxDimension || opts.Height > MaxDimension {
		return nil, &ExportError{
			Op:          "validate",
			Err:         fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height),
			UserMessage: msgSize,
		}
	}

	if e.capturer == nil {
		return nil, &ExportError{Op: "capture", Err: errors.New("no map capturer configured"), UserMessage: msgCapture}
	}

	snapshot, err := e.capturer.Capture(ctx, opts.Width, opts.Height)
	if err == nil && snapshot == nil {
		err = errors.New("empty snapshot")
	}
	if err != nil {
		e.logger.Error("Failed to capture map", zap.Error(err))
		return nil, &ExportError{Op: "capture", Err: err, UserMessage: msgCapture}
	}

	img := compose(snapshot, opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		e.logger.Error("Failed to encode export image", zap.Error(err))
		return nil, &ExportError{Op: "encode", Err: err, UserMessage: msgEncode}
	}

	e.logger.Debug("Map exported",
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Int("bytes", buf.Len()))

	return &Result{
		PNG:      buf.Bytes(),
		Width:    opts.Width,
		Height:   opts.Height,
		Filename: "pajama-party-map-" + e.now().UTC().Format("20060102-150405") + ".png",
	}, nil
}

// ExportAsync выполняет Export в отдельной горутине. Канал получает ровно одно значение
func (e *Exporter) ExportAsync(ctx context.Context, opts Options) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		res, err := e.Export(ctx, opts)
		out <- AsyncResult{Result: res, Err: err}
	}()
	return out
}

var (
	bandColor  = color.RGBA{0x1B, 0x26, 0x3B, 0xD9}
	stripColor = color.RGBA{0x00, 0x00, 0x00, 0x80}
	white      = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	muted      = color.RGBA{0xE2, 0xE8, 0xF0, 0xFF}
)

// compose масштабирует снимок до размера картинки и рисует поверх текст
func compose(snapshot image.Image, opts Options) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if snapshot.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), snapshot, snapshot.Bounds().Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), snapshot, snapshot.Bounds(), xdraw.Src, nil)
	}

	faces := newFaceSet(opts.Height)
	defer faces.Close()

	if opts.Title != "" || opts.Subtitle != "" {
		drawTitleBand(dst, faces, opts.Title, opts.Subtitle)
	}
	drawFooter(dst, faces, opts.Attribution, opts.Watermark)

	return dst
}

func drawTitleBand(img *image.RGBA, faces *faceSet, title, subtitle string) {
	width := img.Bounds().Dx()
	padding := faces.padding

	height := padding * 2
	if title != "" {
		height += faces.title.Metrics().Height.Ceil()
	}
	if subtitle != "" {
		height += faces.subtitle.Metrics().Height.Ceil()
	}
	fillRect(img, 0, 0, width, height, bandColor)

	y := padding
	if title != "" {
		y += faces.title.Metrics().Ascent.Ceil()
		drawText(img, truncateToWidth(faces.title, title, width-2*padding), padding, y, white, faces.title)
		y += faces.title.Metrics().Descent.Ceil()
	}
	if subtitle != "" {
		y += faces.subtitle.Metrics().Ascent.Ceil()
		drawText(img, truncateToWidth(faces.subtitle, subtitle, width-2*padding), padding, y, muted, faces.subtitle)
	}
}

func drawFooter(img *image.RGBA, faces *faceSet, attribution, watermark string) {
	if attribution == "" && watermark == "" {
		return
	}

	b := img.Bounds()
	face := faces.small
	lineHeight := face.Metrics().Height.Ceil()
	padding := faces.padding / 2
	top := b.Max.Y - lineHeight - 2*padding

	fillRect(img, 0, top, b.Dx(), b.Max.Y, stripColor)

	baseline := b.Max.Y - padding - face.Metrics().Descent.Ceil()
	if attribution != "" {
		drawText(img, attribution, padding, baseline, muted, face)
	}
	if watermark != "" {
		w := measure(face, watermark)
		drawText(img, watermark, b.Dx()-w-padding, baseline, white, face)
	}
}

func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	rect := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
