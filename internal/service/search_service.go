package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type searchFacultyRepository interface {
	ListAll(ctx context.Context) ([]models.FacultyProfile, error)
	ListByDepartment(ctx context.Context, college, department string) ([]models.FacultyProfile, error)
}

// SearchService finds faculty by approximate match over name, affiliation
// and research interests. Substring hits rank first, then tokens within
// the configured edit distance of the query. This tolerates the usual
// typos in names copied off publications.
type SearchService struct {
	repo        searchFacultyRepository
	maxDistance int
	logger      *zap.Logger
}

// NewSearchService constructs the search service.
func NewSearchService(repo searchFacultyRepository, maxDistance int, logger *zap.Logger) *SearchService {
	if maxDistance <= 0 {
		maxDistance = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{repo: repo, maxDistance: maxDistance, logger: logger}
}

// SearchScope optionally restricts a search to one department.
type SearchScope struct {
	College    string
	Department string
}

// Search returns faculty ranked by how closely their name matches the
// query. An empty query returns the full scope unranked.
func (s *SearchService) Search(ctx context.Context, query string, scope SearchScope) ([]models.FacultyProfile, error) {
	profiles, err := s.listScope(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty for search")
	}

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return profiles, nil
	}

	type scored struct {
		profile  models.FacultyProfile
		distance int
	}

	matches := make([]scored, 0, len(profiles))
	for _, profile := range profiles {
		distance, ok := s.matchDistance(query, profile)
		if !ok {
			continue
		}
		matches = append(matches, scored{profile: profile, distance: distance})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	results := make([]models.FacultyProfile, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.profile)
	}
	return results, nil
}

// matchDistance reports whether the profile matches the query and how far
// off it is. Name, affiliation and every interest are searched. A
// substring hit in any field scores 0. Otherwise each whitespace-separated
// token of each field is compared to the query and the best token distance
// within the threshold wins.
func (s *SearchService) matchDistance(query string, profile models.FacultyProfile) (int, bool) {
	fields := make([]string, 0, 2+len(profile.Interests))
	fields = append(fields, profile.Name, profile.Affiliation)
	fields = append(fields, profile.Interests...)

	best := s.maxDistance + 1
	for _, field := range fields {
		lowered := strings.ToLower(field)
		if lowered == "" {
			continue
		}
		if strings.Contains(lowered, query) {
			return 0, true
		}
		for _, token := range strings.Fields(lowered) {
			if d := levenshtein(query, token); d < best {
				best = d
			}
		}
	}
	if best > s.maxDistance {
		return 0, false
	}
	return best, true
}

func (s *SearchService) listScope(ctx context.Context, scope SearchScope) ([]models.FacultyProfile, error) {
	if scope.College != "" && scope.Department != "" {
		return s.repo.ListByDepartment(ctx, scope.College, scope.Department)
	}
	return s.repo.ListAll(ctx)
}

// levenshtein computes edit distance over bytes using a single rolling
// row, O(min(m,n)) space.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := previous[i] + 1
			insertion := current[i-1] + 1
			substitution := previous[i-1] + cost

			current[i] = minInt(deletion, minInt(insertion, substitution))
		}

		previous = current
	}

	return previous[len(a)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
