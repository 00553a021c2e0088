package errors

import "net/http"

var (
	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrValidation = New(
		"VALIDATION_FAILED",
		"Some fields are missing or invalid",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidZoom = New(
		"INVALID_ZOOM",
		"Invalid zoom level",
		http.StatusBadRequest,
	)

	ErrInvalidTileCoordinates = New(
		"INVALID_TILE_COORDINATES",
		"Invalid tile coordinates",
		http.StatusBadRequest,
	)

	ErrDreamNotFound = New(
		"DREAM_NOT_FOUND",
		"Dream not found",
		http.StatusNotFound,
	)

	ErrStationNotFound = New(
		"STATION_NOT_FOUND",
		"Station not found",
		http.StatusNotFound,
	)

	ErrRealityUnavailable = New(
		"REALITY_NETWORK_UNAVAILABLE",
		"Night train network data is temporarily unavailable",
		http.StatusServiceUnavailable,
	)

	ErrMapCapture = New(
		"MAP_CAPTURE_FAILED",
		"Could not capture the map image",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
