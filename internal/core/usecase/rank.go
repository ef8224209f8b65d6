package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

// FilterRank keeps records accepted by keep, orders them by key descending
// and returns at most topK of them (all when topK <= 0). Equal keys keep
// their arrival order.
func FilterRank[T any](records []T, keep func(T) bool, key func(T) float64, topK int) []T {
	kept := make([]T, 0, len(records))
	for _, rec := range records {
		if keep == nil || keep(rec) {
			kept = append(kept, rec)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return key(kept[i]) > key(kept[j])
	})

	if topK > 0 && len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}

// KeywordPredicate matches the mission text case-insensitively against
// pattern. An empty pattern keeps every record; an absent mission never
// matches a non-empty pattern.
func KeywordPredicate(pattern string) (func(domain.ExtractedRecord) bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return func(domain.ExtractedRecord) bool { return true }, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "compile keyword", fmt.Errorf("%q: %w", pattern, err))
	}
	return func(rec domain.ExtractedRecord) bool {
		return rec.MissionText.Found && re.MatchString(rec.MissionText.Value)
	}, nil
}

func ByRevenue(rec domain.ExtractedRecord) float64 {
	return rec.Revenue
}
