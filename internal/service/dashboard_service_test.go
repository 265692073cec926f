package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type stubFacultyRepo struct {
	profiles []models.FacultyProfile
}

func (r *stubFacultyRepo) GetByScholarID(ctx context.Context, scholarID string) (*models.FacultyProfile, error) {
	for i := range r.profiles {
		if r.profiles[i].ScholarID == scholarID {
			return &r.profiles[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubFacultyRepo) ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error) {
	var out []models.FacultyProfile
	for _, p := range r.profiles {
		if p.College == college && p.Department == department {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubFacultyRepo) ListAll(ctx context.Context) ([]models.FacultyProfile, error) {
	return r.profiles, nil
}

func (r *stubFacultyRepo) Update(ctx context.Context, profile *models.FacultyProfile) error {
	return nil
}

type stubPublicationRepo struct {
	byScholar map[string][]models.Publication
}

func (r *stubPublicationRepo) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	return r.byScholar[scholarID], nil
}

func (r *stubPublicationRepo) Create(ctx context.Context, pub *models.Publication) error {
	r.byScholar[pub.ScholarID] = append(r.byScholar[pub.ScholarID], *pub)
	return nil
}

func dashboardFixture() (*stubFacultyRepo, *stubPublicationRepo) {
	faculty := &stubFacultyRepo{profiles: []models.FacultyProfile{
		{ScholarID: "s1", Name: "Maria Santos", College: "Science", Department: "Physics"},
		{ScholarID: "s2", Name: "Chen Wei", College: "Science", Department: "Physics"},
	}}
	pubs := &stubPublicationRepo{byScholar: map[string][]models.Publication{
		"s1": {
			{ScholarID: "s1", Year: 2023, Citations: 10},
			{ScholarID: "s1", Year: 2024, Citations: 8},
		},
		"s2": {
			{ScholarID: "s2", Year: 2024, Citations: 1},
		},
	}}
	return faculty, pubs
}

func TestAdminDashboard(t *testing.T) {
	faculty, pubs := dashboardFixture()
	svc := NewDashboardService(faculty, pubs, nil, nil, nil, nil, 0, 10, nil)

	dashboard, err := svc.Admin(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalFaculty)
	assert.Equal(t, 3, dashboard.TotalPublications)
	assert.Equal(t, 19, dashboard.TotalCitations)
	require.NotEmpty(t, dashboard.TopResearchers)
	assert.Equal(t, "s1", dashboard.TopResearchers[0].ScholarID)
	require.Len(t, dashboard.YearlySeries, 2)
}

type gatedPublicationRepo struct {
	inner   *stubPublicationRepo
	arrived chan struct{}
	release chan struct{}
}

func (r *gatedPublicationRepo) ListByScholar(ctx context.Context, scholarID string) ([]models.Publication, error) {
	r.arrived <- struct{}{}
	<-r.release
	return r.inner.ListByScholar(ctx, scholarID)
}

func TestAdminDashboardLoadsResearchersConcurrently(t *testing.T) {
	faculty, pubs := dashboardFixture()
	gated := &gatedPublicationRepo{
		inner:   pubs,
		arrived: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	svc := NewDashboardService(faculty, gated, nil, nil, nil, nil, 0, 10, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Admin(context.Background())
		done <- err
	}()

	// Both lookups must be in flight before either is released.
	for i := 0; i < 2; i++ {
		select {
		case <-gated.arrived:
		case <-time.After(time.Second):
			t.Fatal("publication lookups were not issued concurrently")
		}
	}
	close(gated.release)
	require.NoError(t, <-done)
}

func TestResearcherDashboard(t *testing.T) {
	faculty, pubs := dashboardFixture()
	facultySvc := NewFacultyService(faculty, nil, nil, nil)
	svc := NewDashboardService(faculty, pubs, nil, facultySvc, nil, nil, 0, 10, nil)

	dashboard, err := svc.Researcher(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", dashboard.Profile.Name)
	assert.Equal(t, 2, dashboard.Impact.Publications)
	assert.Equal(t, 18, dashboard.Impact.Citations)
	assert.Equal(t, 2, dashboard.Impact.HIndex)
}

func TestResearcherDashboardWithoutScholarID(t *testing.T) {
	faculty, pubs := dashboardFixture()
	svc := NewDashboardService(faculty, pubs, nil, nil, nil, nil, 0, 10, nil)

	_, err := svc.Researcher(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDepartmentDashboardDelegatesToAnalytics(t *testing.T) {
	faculty, pubs := dashboardFixture()
	facultySvc := NewFacultyService(faculty, nil, nil, nil)
	pubSvc := NewPublicationService(pubs, faculty, nil, nil, nil)
	analytics := NewAnalyticsService(pubSvc, nil, 0, nil)
	svc := NewDashboardService(faculty, pubs, analytics, facultySvc, nil, nil, 0, 10, nil)

	metrics, err := svc.Department(context.Background(), "Science", "Physics")

	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalResearchers)
	assert.Equal(t, 3, metrics.TotalPublications)
}
