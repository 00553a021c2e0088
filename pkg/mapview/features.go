package mapview

import (
	"time"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Значения свойства kind в объектах слоя мечт
const (
	KindDream = "dream"
	KindRoute = "route"
)

// DreamFeatures строит коллекцию слоя мечт: точка на каждую мечту с координатами
// отправления и линия на каждую мечту с обеими парами координат. Порядок [lng, lat].
func DreamFeatures(dreams []domain.Dream) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i := range dreams {
		d := &dreams[i]
		if !d.HasOriginCoordinates() {
			continue
		}

		f := geojson.NewFeature(orb.Point{*d.OriginLng, *d.OriginLat})
		f.ID = d.ID
		f.Properties["kind"] = KindDream
		f.Properties["id"] = d.ID
		f.Properties["dreamer_name"] = d.DreamerName
		f.Properties["origin_station"] = d.OriginStation
		f.Properties["destination_city"] = d.DestinationCity
		if d.OriginCountry != nil {
			f.Properties["origin_country"] = *d.OriginCountry
		}
		if !d.CreatedAt.IsZero() {
			f.Properties["created_at"] = d.CreatedAt.UTC().Format(time.RFC3339)
		}
		fc.Append(f)
	}

	for _, f := range RouteFeatures(domain.RoutesFromDreams(dreams)) {
		fc.Append(f)
	}

	return fc
}

// RouteFeatures - линии маршрутов мечт
func RouteFeatures(routes []domain.DreamRoute) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(routes))
	for _, r := range routes {
		f := geojson.NewFeature(orb.LineString{
			orb.Point{r.From.Coordinates[0], r.From.Coordinates[1]},
			orb.Point{r.To.Coordinates[0], r.To.Coordinates[1]},
		})
		f.ID = r.ID
		f.Properties["kind"] = KindRoute
		f.Properties["id"] = r.ID
		f.Properties["from"] = r.From.Name
		f.Properties["to"] = r.To.Name
		f.Properties["dreamer_name"] = r.DreamerName
		f.Properties["count"] = r.Count
		out = append(out, f)
	}
	return out
}

// RoutesFromFeatures восстанавливает маршруты из линий коллекции слоя мечт
func RoutesFromFeatures(fc *geojson.FeatureCollection) []domain.DreamRoute {
	if fc == nil {
		return nil
	}

	routes := make([]domain.DreamRoute, 0)
	for _, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok || len(ls) < 2 {
			continue
		}
		from, to := ls[0], ls[len(ls)-1]

		count := 1
		if n, ok := toInt64(f.Properties["count"]); ok && n > 0 {
			count = int(n)
		}

		routes = append(routes, domain.DreamRoute{
			ID:          f.Properties.MustString("id", ""),
			From:        domain.RouteEndpoint{Name: f.Properties.MustString("from", ""), Coordinates: [2]float64{from[0], from[1]}},
			To:          domain.RouteEndpoint{Name: f.Properties.MustString("to", ""), Coordinates: [2]float64{to[0], to[1]}},
			DreamerName: f.Properties.MustString("dreamer_name", ""),
			Count:       count,
		})
	}
	return routes
}

// PlaceFeatures - точки интереса слоя мечт
func PlaceFeatures(places []domain.Place) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range places {
		f := geojson.NewFeature(orb.Point{p.Lng, p.Lat})
		f.ID = p.ID
		f.Properties["id"] = p.ID
		f.Properties["name"] = p.Name
		f.Properties["description"] = p.Description
		f.Properties["category"] = p.Category
		f.Properties["city"] = p.City
		f.Properties["country"] = p.Country
		if p.ImageURL != nil {
			f.Properties["image_url"] = *p.ImageURL
		}
		fc.Append(f)
	}
	return fc
}

// RealityFeatures - станции и маршруты действующих ночных поездов.
// Маршруты с путём короче двух точек пропускаются.
func RealityFeatures(network domain.RealityNetwork) (stations, routes *geojson.FeatureCollection) {
	stations = geojson.NewFeatureCollection()
	for _, s := range network.Stations {
		f := geojson.NewFeature(orb.Point{s.Lng, s.Lat})
		f.ID = s.ID
		f.Properties["id"] = s.ID
		f.Properties["name"] = s.Name
		f.Properties["country"] = s.Country
		f.Properties["operators"] = s.Operators
		f.Properties["routes"] = s.Routes
		stations.Append(f)
	}

	routes = geojson.NewFeatureCollection()
	for _, r := range network.Routes {
		if len(r.Path) < 2 {
			continue
		}
		line := make(orb.LineString, len(r.Path))
		for i, c := range r.Path {
			line[i] = orb.Point{c[0], c[1]}
		}

		f := geojson.NewFeature(line)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		f.Properties["operator"] = r.Operator
		f.Properties["from"] = r.From
		f.Properties["to"] = r.To
		f.Properties["frequency"] = r.Frequency
		routes.Append(f)
	}

	return stations, routes
}

// CriticalMassFeatures - маркеры готовности станций; pulse помечает станции с высоким спросом
func CriticalMassFeatures(entries []domain.CriticalMassEntry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range entries {
		f := geojson.NewFeature(orb.Point{e.Coordinates[0], e.Coordinates[1]})
		f.Properties["station"] = e.Station
		f.Properties["dream_count"] = e.DreamCount
		f.Properties["readiness_level"] = string(e.ReadinessLevel)
		f.Properties["readiness_score"] = e.ReadinessScore
		f.Properties["pajama_party_potential"] = e.PajamaPartyPotential
		f.Properties["pulse"] = isHighDemand(e.ReadinessLevel)
		fc.Append(f)
	}
	return fc
}

// HeatFeatures - точки тепловой карты со свойством intensity
func HeatFeatures(points []HeatPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.Lng, p.Lat})
		f.Properties["intensity"] = p.Intensity
		fc.Append(f)
	}
	return fc
}

// SplitByGeometry делит коллекцию на точки и линии (кластеризуемый источник принимает только точки)
func SplitByGeometry(fc *geojson.FeatureCollection) (points, lines *geojson.FeatureCollection) {
	points = geojson.NewFeatureCollection()
	lines = geojson.NewFeatureCollection()
	if fc == nil {
		return points, lines
	}

	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Point, orb.MultiPoint:
			points.Append(f)
		case orb.LineString, orb.MultiLineString:
			lines.Append(f)
		}
	}
	return points, lines
}

func isHighDemand(level domain.ReadinessLevel) bool {
	return level == domain.ReadinessCritical || level == domain.ReadinessHigh
}
