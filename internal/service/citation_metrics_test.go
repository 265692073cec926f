package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/litrix/litrix-api/internal/models"
)

func TestHIndex(t *testing.T) {
	tests := []struct {
		name      string
		citations []int
		expected  int
	}{
		{"classic", []int{10, 8, 5, 3, 1}, 3},
		{"all zero", []int{0, 0, 0}, 0},
		{"empty", nil, 0},
		{"single cited", []int{7}, 1},
		{"single uncited", []int{0}, 0},
		{"uniform", []int{3, 3, 3}, 3},
		{"unsorted input", []int{1, 10, 3, 8, 5}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HIndex(tt.citations))
		})
	}
}

func TestHIndexDoesNotMutateInput(t *testing.T) {
	citations := []int{1, 10, 3}
	HIndex(citations)
	assert.Equal(t, []int{1, 10, 3}, citations)
}

func TestYearlyRollup(t *testing.T) {
	pubs := []models.Publication{
		{Year: 2023, Citations: 5},
		{Year: 2023, Citations: 3},
		{Year: 2021, Citations: 10},
		{Year: 0, Citations: 99},
		{Year: -1, Citations: 7},
	}

	rollup := YearlyRollup(pubs)

	assert.Equal(t, []models.YearlyMetrics{
		{Year: 2021, Publications: 1, Citations: 10},
		{Year: 2023, Publications: 2, Citations: 8},
	}, rollup)
}

func TestYearlyRollupEmpty(t *testing.T) {
	assert.Empty(t, YearlyRollup(nil))
}

func TestPercentPublished(t *testing.T) {
	group := []models.ResearcherPublications{
		{ScholarID: "a", Publications: []models.Publication{{Year: 2024}}},
		{ScholarID: "b", Publications: []models.Publication{{Year: 2023}}},
		{ScholarID: "c"},
		{ScholarID: "d", Publications: []models.Publication{{Year: 2024}, {Year: 2024}}},
	}

	assert.InDelta(t, 50.0, PercentPublished(group, 2024), 1e-9)
	assert.InDelta(t, 25.0, PercentPublished(group, 2023), 1e-9)
	assert.Zero(t, PercentPublished(nil, 2024))
}

func TestPercentPublishedNeverExceedsHundred(t *testing.T) {
	group := []models.ResearcherPublications{
		{ScholarID: "a", Publications: []models.Publication{{Year: 2024}, {Year: 2024}}},
	}
	assert.InDelta(t, 100.0, PercentPublished(group, 2024), 1e-9)
}

func TestAvgPublicationsPerResearcher(t *testing.T) {
	group := make([]models.ResearcherPublications, 5)
	for i := range group {
		pubs := make([]models.Publication, 7)
		for j := range pubs {
			pubs[j] = models.Publication{Year: 2024}
		}
		group[i] = models.ResearcherPublications{Publications: pubs}
	}

	assert.InDelta(t, 7.0, AvgPublicationsPerResearcher(group, 2024), 1e-9)
	assert.Zero(t, AvgPublicationsPerResearcher(nil, 2024))
}

func TestAvgCitationsPerPublication(t *testing.T) {
	pubs := []models.Publication{
		{Citations: 10},
		{Citations: 0},
		{Citations: 5},
	}
	assert.InDelta(t, 5.0, AvgCitationsPerPublication(pubs), 1e-9)
	assert.Zero(t, AvgCitationsPerPublication(nil))
}

func TestTopByHIndex(t *testing.T) {
	group := []models.ResearcherPublications{
		{ScholarID: "low", Publications: []models.Publication{{Citations: 1}}},
		{ScholarID: "high", Publications: []models.Publication{
			{Citations: 10}, {Citations: 8}, {Citations: 5}, {Citations: 3}, {Citations: 1},
		}},
		{ScholarID: "mid", Publications: []models.Publication{
			{Citations: 4}, {Citations: 4}, {Citations: 1},
		}},
	}

	top := TopByHIndex(group, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "high", top[0].ScholarID)
	assert.Equal(t, 3, top[0].HIndex)
	assert.Equal(t, "mid", top[1].ScholarID)
	assert.Equal(t, 2, top[1].HIndex)
}

func TestTopByHIndexStableOnTies(t *testing.T) {
	group := []models.ResearcherPublications{
		{ScholarID: "first", Publications: []models.Publication{{Citations: 2}, {Citations: 2}}},
		{ScholarID: "second", Publications: []models.Publication{{Citations: 2}, {Citations: 2}}},
	}

	top := TopByHIndex(group, 10)

	assert.Equal(t, "first", top[0].ScholarID)
	assert.Equal(t, "second", top[1].ScholarID)
}

func TestFilterByYear(t *testing.T) {
	pubs := []models.Publication{{Year: 2024}, {Year: 2023}, {Year: 2024}}

	assert.Len(t, FilterByYear(pubs, 2024), 2)
	assert.Len(t, FilterByYear(pubs, 0), 3)
	assert.Empty(t, FilterByYear(pubs, 1999))
}
