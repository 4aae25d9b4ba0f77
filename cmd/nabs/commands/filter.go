package commands

import (
	"strings"

	"go.nabs.build/nabs/internal/core/domain"
)

// parseFilter turns repeated --filter values into a ProjectFilter. A value
// containing a path separator matches by project root path; otherwise it
// matches by display name.
func parseFilter(values []string) domain.ProjectFilter {
	if len(values) == 0 {
		return nil
	}
	filter := make(domain.ProjectFilter, len(values))
	for i, v := range values {
		matcher := domain.MatchByName
		if strings.ContainsRune(v, '/') {
			matcher = domain.MatchByPath
		}
		filter[i] = domain.FilterSpec{Matcher: matcher, Value: v}
	}
	return filter
}
