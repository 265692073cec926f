package service

import (
	"sort"

	"github.com/litrix/litrix-api/internal/models"
)

// Citation metrics over publication lists. All functions tolerate
// partially populated records: missing numeric fields are zero, missing
// lists are empty, and nothing here returns an error. The upstream store
// can serve half-backfilled documents and dashboards still render.

// YearlyRollup groups publications by year, counting publications and
// summing citations per year. Records with a non-positive year are left
// out of the per-year rows (they still count towards all-time totals
// computed elsewhere). Output is sorted ascending by year.
func YearlyRollup(pubs []models.Publication) []models.YearlyMetrics {
	byYear := make(map[int]*models.YearlyMetrics)
	for _, pub := range pubs {
		if pub.Year <= 0 {
			continue
		}
		row, ok := byYear[pub.Year]
		if !ok {
			row = &models.YearlyMetrics{Year: pub.Year}
			byYear[pub.Year] = row
		}
		row.Publications++
		row.Citations += pub.Citations
	}

	rollup := make([]models.YearlyMetrics, 0, len(byYear))
	for _, row := range byYear {
		rollup = append(rollup, *row)
	}
	sort.Slice(rollup, func(i, j int) bool { return rollup[i].Year < rollup[j].Year })
	return rollup
}

// PercentPublished returns the share of researchers with at least one
// publication in the given year, as a percentage clamped to [0, 100]. An
// empty group yields 0, not a division error.
func PercentPublished(group []models.ResearcherPublications, year int) float64 {
	if len(group) == 0 {
		return 0
	}
	published := 0
	for _, researcher := range group {
		if countInYear(researcher.Publications, year) > 0 {
			published++
		}
	}
	percent := float64(published) / float64(len(group)) * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}

// AvgPublicationsPerResearcher averages per-researcher publication counts
// for the given year across the group; 0 for an empty group.
func AvgPublicationsPerResearcher(group []models.ResearcherPublications, year int) float64 {
	if len(group) == 0 {
		return 0
	}
	total := 0
	for _, researcher := range group {
		total += countInYear(researcher.Publications, year)
	}
	return float64(total) / float64(len(group))
}

// AvgCitationsPerPublication divides total citations by total publication
// count across all years; 0 when there are no publications.
func AvgCitationsPerPublication(pubs []models.Publication) float64 {
	if len(pubs) == 0 {
		return 0
	}
	total := 0
	for _, pub := range pubs {
		total += pub.Citations
	}
	return float64(total) / float64(len(pubs))
}

// HIndex computes the standard h-index: with citation counts sorted
// descending, H is the largest 1-based position i whose value is >= i.
// [10 8 5 3 1] -> 4; [0 0 0] -> 0; empty -> 0.
func HIndex(citations []int) int {
	if len(citations) == 0 {
		return 0
	}
	sorted := make([]int, len(citations))
	copy(sorted, citations)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	h := 0
	for i, c := range sorted {
		if c >= i+1 {
			h = i + 1
		} else {
			break
		}
	}
	return h
}

// BuildResearcherImpact condenses one researcher's publications into
// the leaderboard row dashboards display.
func BuildResearcherImpact(researcher models.ResearcherPublications) models.ResearcherImpact {
	citations := make([]int, 0, len(researcher.Publications))
	totalCitations := 0
	for _, pub := range researcher.Publications {
		citations = append(citations, pub.Citations)
		totalCitations += pub.Citations
	}
	return models.ResearcherImpact{
		ScholarID:    researcher.ScholarID,
		Name:         researcher.Name,
		Publications: len(researcher.Publications),
		Citations:    totalCitations,
		HIndex:       HIndex(citations),
	}
}

// TopByHIndex ranks researchers by h-index descending and returns at most
// n entries. The sort is stable: ties keep their input order.
func TopByHIndex(group []models.ResearcherPublications, n int) []models.ResearcherImpact {
	impacts := make([]models.ResearcherImpact, 0, len(group))
	for _, researcher := range group {
		impacts = append(impacts, BuildResearcherImpact(researcher))
	}
	sort.SliceStable(impacts, func(i, j int) bool { return impacts[i].HIndex > impacts[j].HIndex })
	if n > 0 && len(impacts) > n {
		impacts = impacts[:n]
	}
	return impacts
}

// FilterByYear returns the publications from the given year. Year zero
// disables the filter.
func FilterByYear(pubs []models.Publication, year int) []models.Publication {
	if year <= 0 {
		return pubs
	}
	filtered := make([]models.Publication, 0, len(pubs))
	for _, pub := range pubs {
		if pub.Year == year {
			filtered = append(filtered, pub)
		}
	}
	return filtered
}

func countInYear(pubs []models.Publication, year int) int {
	if year <= 0 {
		return len(pubs)
	}
	count := 0
	for _, pub := range pubs {
		if pub.Year == year {
			count++
		}
	}
	return count
}
