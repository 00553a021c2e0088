package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// RealityRepository - действующая сеть ночных поездов
type RealityRepository interface {
	GetNetwork(ctx context.Context) (*domain.RealityNetwork, error)
}
