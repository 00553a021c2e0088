package mapview

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// FeatureSource - откуда менеджер берёт данные групп (реализуется pkg/client.Client)
type FeatureSource interface {
	DreamFeatures(ctx context.Context) (*geojson.FeatureCollection, error)
	PlaceFeatures(ctx context.Context) (*geojson.FeatureCollection, error)
	RealityFeatures(ctx context.Context) (stations, routes *geojson.FeatureCollection, err error)
}

// APILoader строит GroupLoader поверх FeatureSource.
// Ошибка точек интереса не мешает показать мечты.
func APILoader(src FeatureSource) GroupLoader {
	return func(ctx context.Context, group LayerGroup) (map[string]*geojson.FeatureCollection, error) {
		switch group {
		case GroupDream:
			return loadDreamGroup(ctx, src)
		case GroupReality:
			stations, routes, err := src.RealityFeatures(ctx)
			if err != nil {
				return nil, fmt.Errorf("reality network: %w", err)
			}
			return map[string]*geojson.FeatureCollection{
				SourceRealityNodes:  stations,
				SourceRealityRoutes: routes,
			}, nil
		default:
			return nil, fmt.Errorf("unknown layer group %q", group)
		}
	}
}

func loadDreamGroup(ctx context.Context, src FeatureSource) (map[string]*geojson.FeatureCollection, error) {
	out := make(map[string]*geojson.FeatureCollection, 3)
	var errs []error

	fc, err := src.DreamFeatures(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("dream features: %w", err))
	} else {
		points, lines := SplitByGeometry(fc)
		out[SourceDreams] = points
		out[SourceDreamRoutes] = lines
	}

	places, err := src.PlaceFeatures(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("places: %w", err))
	} else {
		out[SourcePlaces] = places
	}

	return out, errors.Join(errs...)
}
