package catalog

import (
	"context"
	"testing"

	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

type stubAPI struct {
	bannersErr    error
	activitiesErr error
}

func (s *stubAPI) ListBanners(_ context.Context) ([]travel.Banner, error) {
	if s.bannersErr != nil {
		return nil, s.bannersErr
	}
	return []travel.Banner{{ID: "b1", Name: "Summer"}}, nil
}

func (s *stubAPI) ListPromos(_ context.Context) ([]travel.Promo, error) {
	return []travel.Promo{{ID: "p1", Title: "Weekend deal"}}, nil
}

func (s *stubAPI) ListCategories(_ context.Context) ([]travel.Category, error) {
	return []travel.Category{{ID: "c1", Name: "Beach"}}, nil
}

func (s *stubAPI) ListActivities(_ context.Context) ([]travel.Activity, error) {
	if s.activitiesErr != nil {
		return nil, s.activitiesErr
	}
	return []travel.Activity{{ID: "a1", Title: "Snorkeling"}}, nil
}

func TestLoadHomeJoinsAllSections(t *testing.T) {
	svc, err := NewService(&stubAPI{})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}

	view, err := svc.LoadHome(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Banners) != 1 || len(view.Promos) != 1 || len(view.Categories) != 1 || len(view.Activities) != 1 {
		t.Fatalf("expected every section populated, got %+v", view)
	}
}

func TestLoadHomeFailsWhole(t *testing.T) {
	upstream := pkgerrors.New(pkgerrors.CodeDependency, "banners unavailable")
	svc, err := NewService(&stubAPI{bannersErr: upstream})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}

	view, err := svc.LoadHome(context.Background())
	if err == nil {
		t.Fatal("expected the failed fetch to fail the load")
	}
	if view != nil {
		t.Fatal("expected no partial view on failure")
	}
}
