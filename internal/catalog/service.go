package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

// TravelAPI is the read-only catalog surface of the upstream client.
type TravelAPI interface {
	ListBanners(ctx context.Context) ([]travel.Banner, error)
	ListPromos(ctx context.Context) ([]travel.Promo, error)
	ListCategories(ctx context.Context) ([]travel.Category, error)
	ListActivities(ctx context.Context) ([]travel.Activity, error)
}

// HomeView is the joined initial page load. All four fetches must succeed;
// there is no partial rendering.
type HomeView struct {
	Banners    []travel.Banner   `json:"banners"`
	Promos     []travel.Promo    `json:"promos"`
	Categories []travel.Category `json:"categories"`
	Activities []travel.Activity `json:"activities"`
}

type Service interface {
	LoadHome(ctx context.Context) (*HomeView, error)
}

type service struct {
	api TravelAPI
}

func NewService(api TravelAPI) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "travel api required")
	}
	return &service{api: api}, nil
}

func (s *service) LoadHome(ctx context.Context) (*HomeView, error) {
	var view HomeView

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		banners, err := s.api.ListBanners(gctx)
		if err != nil {
			return err
		}
		view.Banners = banners
		return nil
	})
	g.Go(func() error {
		promos, err := s.api.ListPromos(gctx)
		if err != nil {
			return err
		}
		view.Promos = promos
		return nil
	})
	g.Go(func() error {
		categories, err := s.api.ListCategories(gctx)
		if err != nil {
			return err
		}
		view.Categories = categories
		return nil
	})
	g.Go(func() error {
		activities, err := s.api.ListActivities(gctx)
		if err != nil {
			return err
		}
		view.Activities = activities
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}
