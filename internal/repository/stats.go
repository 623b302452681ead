package repository

import (
	"context"
	"fmt"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type StatsRepository interface {
	Platform(ctx context.Context) (*model.PlatformStats, error)
}

type apiStatsRepo struct{ client *apiclient.Client }

func NewStatsRepository(client *apiclient.Client) StatsRepository {
	return &apiStatsRepo{client: client}
}

func (r *apiStatsRepo) Platform(ctx context.Context) (*model.PlatformStats, error) {
	stats := &model.PlatformStats{}
	if err := r.client.Get(ctx, "/stats/platform", stats); err != nil {
		return nil, fmt.Errorf("get platform stats: %w", err)
	}
	return stats, nil
}
