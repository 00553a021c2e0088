package domain

// RouteEndpoint - конец маршрута; координаты в порядке [lng, lat]
type RouteEndpoint struct {
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
}

// DreamRoute - проекция мечты в линию для отрисовки
type DreamRoute struct {
	ID          string        `json:"id"`
	From        RouteEndpoint `json:"from"`
	To          RouteEndpoint `json:"to"`
	DreamerName string        `json:"dreamerName"`
	Count       int           `json:"count"`
}

// RoutesFromDreams строит маршруты из мечт, у которых известны обе пары координат
func RoutesFromDreams(dreams []Dream) []DreamRoute {
	routes := make([]DreamRoute, 0, len(dreams))
	for i := range dreams {
		d := &dreams[i]
		if !d.HasOriginCoordinates() || !d.HasDestinationCoordinates() {
			continue
		}
		routes = append(routes, DreamRoute{
			ID: d.ID,
			From: RouteEndpoint{
				Name:        d.OriginStation,
				Coordinates: [2]float64{*d.OriginLng, *d.OriginLat},
			},
			To: RouteEndpoint{
				Name:        d.DestinationCity,
				Coordinates: [2]float64{*d.DestinationLng, *d.DestinationLat},
			},
			DreamerName: d.DreamerName,
			Count:       1,
		})
	}
	return routes
}
