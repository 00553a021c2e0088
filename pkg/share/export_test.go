package share_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/pkg/share"
)

var mapColor = color.RGBA{0x10, 0x80, 0x40, 0xFF}

func solidCapturer(width, height int) share.CaptureFunc {
	return func(ctx context.Context, _, _ int) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: mapColor}, image.Point{}, draw.Src)
		return img, nil
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestExporter_Export_ScalesAndOverlays(t *testing.T) {
	exporter := share.NewExporter(solidCapturer(200, 100), share.Options{}, nil)

	res, err := exporter.Export(context.Background(), share.Options{
		Width:    800,
		Height:   400,
		Title:    "Night trains from Berlin",
		Subtitle: "24 dreamers and counting",
	})
	require.NoError(t, err)

	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 400, res.Height)
	assert.Regexp(t, `^pajama-party-map-\d{8}-\d{6}\.png$`, res.Filename)

	img := decode(t, res.PNG)
	assert.Equal(t, image.Rect(0, 0, 800, 400), img.Bounds())

	// middle of the map is the scaled snapshot
	center := color.RGBAModel.Convert(img.At(400, 200)).(color.RGBA)
	assert.InDelta(t, mapColor.R, center.R, 2)
	assert.InDelta(t, mapColor.G, center.G, 2)
	assert.InDelta(t, mapColor.B, center.B, 2)

	// title band and footer strip are drawn over it
	assert.NotEqual(t, color.RGBAModel.Convert(img.At(2, 2)), color.RGBAModel.Convert(mapColor))
	assert.NotEqual(t, color.RGBAModel.Convert(img.At(2, 398)), color.RGBAModel.Convert(mapColor))
}

func TestExporter_Export_Defaults(t *testing.T) {
	exporter := share.NewExporter(solidCapturer(share.DefaultWidth, share.DefaultHeight), share.Options{}, nil)

	res, err := exporter.Export(context.Background(), share.Options{})
	require.NoError(t, err)

	img := decode(t, res.PNG)
	assert.Equal(t, image.Rect(0, 0, share.DefaultWidth, share.DefaultHeight), img.Bounds())
}

func TestExporter_Export_CaptureFailure(t *testing.T) {
	captureErr := errors.New("canvas is not ready")
	exporter := share.NewExporter(share.CaptureFunc(func(ctx context.Context, w, h int) (image.Image, error) {
		return nil, captureErr
	}), share.Options{}, nil)

	res, err := exporter.Export(context.Background(), share.Options{})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, captureErr)

	var exportErr *share.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "capture", exportErr.Op)
	assert.NotEmpty(t, exportErr.UserMessage)
}

func TestExporter_Export_NilSnapshot(t *testing.T) {
	exporter := share.NewExporter(share.CaptureFunc(func(ctx context.Context, w, h int) (image.Image, error) {
		return nil, nil
	}), share.Options{}, nil)

	_, err := exporter.Export(context.Background(), share.Options{})

	var exportErr *share.ExportError
	assert.ErrorAs(t, err, &exportErr)
}

func TestExporter_Export_InvalidSize(t *testing.T) {
	exporter := share.NewExporter(solidCapturer(10, 10), share.Options{}, nil)

	_, err := exporter.Export(context.Background(), share.Options{Width: share.MaxDimension + 1, Height: 100})
	assert.ErrorIs(t, err, share.ErrInvalidSize)

	_, err = exporter.Export(context.Background(), share.Options{Width: -5, Height: 100})
	assert.ErrorIs(t, err, share.ErrInvalidSize)
}

func TestExporter_Export_NoCapturer(t *testing.T) {
	exporter := share.NewExporter(nil, share.Options{}, nil)

	_, err := exporter.Export(context.Background(), share.Options{})

	var exportErr *share.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "capture", exportErr.Op)
}

func TestExporter_ExportAsync(t *testing.T) {
	exporter := share.NewExporter(solidCapturer(100, 50), share.Options{Width: 300, Height: 150}, nil)

	res := <-exporter.ExportAsync(context.Background(), share.Options{Title: "Dream big"})

	require.NoError(t, res.Err)
	require.NotNil(t, res.Result)
	assert.Equal(t, 300, res.Result.Width)
	assert.NotEmpty(t, res.Result.PNG)
}

func TestExporter_ExportAsync_Concurrent(t *testing.T) {
	exporter := share.NewExporter(solidCapturer(100, 50), share.Options{Width: 200, Height: 100}, nil)

	results := make([]<-chan share.AsyncResult, 4)
	for i := range results {
		results[i] = exporter.ExportAsync(context.Background(), share.Options{Title: "Parallel"})
	}
	for _, ch := range results {
		res := <-ch
		assert.NoError(t, res.Err)
	}
}
