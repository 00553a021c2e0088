package usecase

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/config"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/validator"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/share"
)

// MaxStaticImageSize - предел стороны снимка у Static Images API
const MaxStaticImageSize = 1280

const defaultShareText = "I'm dreaming of a night train across Europe. Add your dream to the Pajama Party map!"

// ExportUseCase собирает картинку карты для соцсетей и ссылки «поделиться»
type ExportUseCase struct {
	mapboxRepo repository.MapboxRepository
	cfg        config.ExportConfig
	logger     *zap.Logger
}

func NewExportUseCase(mapboxRepo repository.MapboxRepository, cfg config.ExportConfig, logger *zap.Logger) *ExportUseCase {
	if cfg.MaxWidth <= 0 || cfg.MaxWidth > share.MaxDimension {
		cfg.MaxWidth = share.MaxDimension
	}
	if cfg.MaxHeight <= 0 || cfg.MaxHeight > share.MaxDimension {
		cfg.MaxHeight = share.MaxDimension
	}
	return &ExportUseCase{
		mapboxRepo: mapboxRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// ExportMap снимает карту через Mapbox и накладывает заголовок, водяной знак и атрибуцию
func (uc *ExportUseCase) ExportMap(ctx context.Context, req dto.ExportMapRequest) (*share.Result, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Width > uc.cfg.MaxWidth || req.Height > uc.cfg.MaxHeight {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"max_width":  uc.cfg.MaxWidth,
			"max_height": uc.cfg.MaxHeight,
		})
	}

	exporter := share.NewExporter(uc.staticCapturer(req), share.Options{
		Watermark:   uc.cfg.Watermark,
		Attribution: uc.cfg.Attribution,
	}, uc.logger)

	result, err := exporter.Export(ctx, share.Options{
		Width:    req.Width,
		Height:   req.Height,
		Title:    req.Title,
		Subtitle: req.Subtitle,
	})
	if err != nil {
		return nil, mapExportError(err)
	}

	return result, nil
}

// staticCapturer - снимок текущего вида через Static Images API.
// Запрошенный размер вписывается в предел API, дальше картинку масштабирует экспортёр.
func (uc *ExportUseCase) staticCapturer(req dto.ExportMapRequest) share.CaptureFunc {
	return func(ctx context.Context, width, height int) (image.Image, error) {
		w, h := fitStaticSize(width, height)

		data, err := uc.mapboxRepo.StaticImage(ctx, domain.StaticMapRequest{
			Lat:    req.Lat,
			Lng:    req.Lng,
			Zoom:   req.Zoom,
			Width:  w,
			Height: h,
			Style:  req.Style,
		})
		if err != nil {
			return nil, err
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode static image: %w", err)
		}
		return img, nil
	}
}

// fitStaticSize вписывает размер в MaxStaticImageSize с сохранением пропорций
func fitStaticSize(width, height int) (int, int) {
	if width <= MaxStaticImageSize && height <= MaxStaticImageSize {
		return width, height
	}

	scale := math.Min(
		float64(MaxStaticImageSize)/float64(width),
		float64(MaxStaticImageSize)/float64(height),
	)
	w := int(math.Max(1, math.Round(float64(width)*scale)))
	h := int(math.Max(1, math.Round(float64(height)*scale)))
	return w, h
}

func mapExportError(err error) error {
	var exportErr *share.ExportError
	if !stderrors.As(err, &exportErr) {
		return errors.ErrInternalServer
	}

	switch {
	case stderrors.Is(exportErr, share.ErrInvalidSize):
		return errors.ErrInvalidRequest.WithMessage(exportErr.UserMessage)
	case exportErr.Op == "capture":
		return errors.ErrMapCapture.WithDetails(map[string]interface{}{
			"reason": exportErr.UserMessage,
		})
	default:
		return errors.ErrInternalServer.WithMessage(exportErr.UserMessage)
	}
}

// ShareLinks - ссылки на соцсети для страницы карты
func (uc *ExportUseCase) ShareLinks(req dto.ShareLinksRequest) (*dto.ShareLinksResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		pageURL = uc.cfg.ShareBaseURL
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = defaultShareText
	}

	hashtags := uc.cfg.Hashtags
	if len(hashtags) == 0 {
		hashtags = share.DefaultHashtags
	}

	return &dto.ShareLinksResponse{
		URL:   pageURL,
		Text:  text,
		Links: share.ShareLinks(pageURL, text, hashtags),
	}, nil
}
