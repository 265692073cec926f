package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
)

type stubSearchFaculty struct {
	all          []models.FacultyProfile
	byDepartment []models.FacultyProfile
	scoped       bool
}

func (r *stubSearchFaculty) ListAll(ctx context.Context) ([]models.FacultyProfile, error) {
	return r.all, nil
}

func (r *stubSearchFaculty) ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error) {
	r.scoped = true
	return r.byDepartment, nil
}

func searchFixture() *stubSearchFaculty {
	return &stubSearchFaculty{all: []models.FacultyProfile{
		{ScholarID: "s1", Name: "Maria Santos", Affiliation: "Jouf University", Interests: []string{"machine learning", "data mining"}},
		{ScholarID: "s2", Name: "Mario Santana", Affiliation: "State College", Interests: []string{"databases"}},
		{ScholarID: "s3", Name: "Chen Wei", Affiliation: "Tsinghua", Interests: []string{"quantum computing"}},
	}}
}

func TestSearchExactNameAlwaysMatches(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "Maria Santos", SearchScope{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "s1", results[0].ScholarID)
}

func TestSearchEmptyQueryReturnsScope(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "   ", SearchScope{})

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchToleratesTypos(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "mariia", SearchScope{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "s1", results[0].ScholarID)
}

func TestSearchSubstringRanksAboveFuzzy(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "mario", SearchScope{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s2", results[0].ScholarID, "substring hit ranks first")
	assert.Equal(t, "s1", results[1].ScholarID, "maria is one edit from mario")
}

func TestSearchMatchesInterests(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "machine learning", SearchScope{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].ScholarID)
}

func TestSearchMatchesAffiliation(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "jouf", SearchScope{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].ScholarID)
}

func TestSearchToleratesInterestTypos(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "quantun", SearchScope{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "s3", results[0].ScholarID)
}

func TestSearchUnrelatedQueryMatchesNothing(t *testing.T) {
	svc := NewSearchService(searchFixture(), 2, nil)

	results, err := svc.Search(context.Background(), "zzzzzzzz", SearchScope{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchScopesToDepartment(t *testing.T) {
	repo := searchFixture()
	repo.byDepartment = []models.FacultyProfile{{ScholarID: "s3", Name: "Chen Wei"}}
	svc := NewSearchService(repo, 2, nil)

	results, err := svc.Search(context.Background(), "chen", SearchScope{College: "Science", Department: "Physics"})

	require.NoError(t, err)
	assert.True(t, repo.scoped)
	require.Len(t, results, 1)
	assert.Equal(t, "s3", results[0].ScholarID)
}

func TestLevenshtein(t *testing.T) {
	assert.Zero(t, levenshtein("same", "same"))
	assert.Equal(t, 1, levenshtein("kitten", "kittens"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 4, levenshtein("", "four"))
}
