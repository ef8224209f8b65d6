package usecase

import (
	"testing"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

func record(name, mission string, revenue float64) domain.ExtractedRecord {
	rec := domain.ExtractedRecord{SourceID: name + ".xml", OrganizationName: domain.Present(name), Revenue: revenue}
	if mission != "" {
		rec.MissionText = domain.Present(mission)
	}
	return rec
}

func TestFilterRankSortsDescendingAndTruncates(t *testing.T) {
	records := []domain.ExtractedRecord{
		record("a", "religious worship", 10),
		record("b", "food bank", 500),
		record("c", "Religion and community", 300),
		record("d", "RELIGIOUS education", 1000),
		record("e", "interfaith religion outreach", 20),
	}
	keep, err := KeywordPredicate("religio")
	if err != nil {
		t.Fatalf("KeywordPredicate() error = %v", err)
	}

	got := FilterRank(records, keep, ByRevenue, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := 0; i+1 < len(got); i++ {
		if got[i].Revenue < got[i+1].Revenue {
			t.Fatalf("records not sorted descending: %+v", got)
		}
	}
	want := []string{"d", "c", "e"}
	for i, name := range want {
		if got[i].OrganizationName.Value != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].OrganizationName.Value)
		}
	}
}

func TestFilterRankReturnsAllWhenFewerThanTopK(t *testing.T) {
	records := []domain.ExtractedRecord{record("a", "x", 1), record("b", "y", 2)}
	got := FilterRank(records, nil, ByRevenue, 5)
	if len(got) != 2 || got[0].OrganizationName.Value != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterRankKeepsArrivalOrderOnTies(t *testing.T) {
	records := []domain.ExtractedRecord{record("first", "x", 7), record("second", "x", 7), record("third", "x", 9)}
	got := FilterRank(records, nil, ByRevenue, 0)
	if got[0].OrganizationName.Value != "third" || got[1].OrganizationName.Value != "first" || got[2].OrganizationName.Value != "second" {
		t.Fatalf("unexpected tie order: %+v", got)
	}
}

func TestFilterRankDoesNotMutateInput(t *testing.T) {
	records := []domain.ExtractedRecord{record("a", "x", 1), record("b", "x", 2)}
	_ = FilterRank(records, nil, ByRevenue, 0)
	if records[0].OrganizationName.Value != "a" {
		t.Fatalf("input slice was reordered")
	}
}

func TestKeywordPredicateSkipsAbsentMission(t *testing.T) {
	keep, err := KeywordPredicate("religion")
	if err != nil {
		t.Fatalf("KeywordPredicate() error = %v", err)
	}
	if keep(record("a", "", 10)) {
		t.Fatalf("absent mission must not match")
	}
}

func TestKeywordPredicateRejectsInvalidPattern(t *testing.T) {
	_, err := KeywordPredicate("(unclosed")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestKeywordPredicateEmptyKeepsEverything(t *testing.T) {
	keep, err := KeywordPredicate("  ")
	if err != nil {
		t.Fatalf("KeywordPredicate() error = %v", err)
	}
	if !keep(record("a", "", 0)) {
		t.Fatalf("empty pattern should keep every record")
	}
}
