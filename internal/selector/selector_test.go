package selector

import (
	"errors"
	"testing"

	"github.com/opencouncil/crux/internal/model"
)

func claims(n int, speaker string) []model.Claim {
	out := make([]model.Claim, n)
	for i := range out {
		out[i] = model.Claim{Text: "claim", Speaker: speaker}
	}
	return out
}

func TestSelect_SkipsSmallSubtopics(t *testing.T) {
	tree := model.ClaimsTree{
		"Transit": {Subtopics: map[string]model.Subtopic{
			"Buses":   {Claims: []model.Claim{{Speaker: "Alice"}, {Speaker: "Bob"}}},
			"Ferries": {Claims: []model.Claim{{Speaker: "Carol"}}},
		}},
	}
	topics := []model.TopicMetadata{{
		Name: "Transit",
		Subtopics: []model.SubtopicMetadata{
			{Name: "Buses", Description: "bus service"},
			{Name: "Ferries", Description: "ferry service"},
		},
	}}

	items, err := Select(tree, topics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 eligible subtopic, got %d", len(items))
	}
	if items[0].Subtopic != "Buses" {
		t.Errorf("expected Buses, got %s", items[0].Subtopic)
	}
	if items[0].Description != "bus service" {
		t.Errorf("expected metadata description, got %q", items[0].Description)
	}
	if items[0].Label != "Transit → Buses" {
		t.Errorf("unexpected label %q", items[0].Label)
	}
	if items[0].TotalSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", items[0].TotalSpeakers)
	}
}

func TestSelect_TraversalOrderFollowsMetadata(t *testing.T) {
	tree := model.ClaimsTree{
		"B-Topic": {Subtopics: map[string]model.Subtopic{
			"Second": {Claims: claims(2, "x")},
			"First":  {Claims: claims(2, "y")},
		}},
		"A-Topic": {Subtopics: map[string]model.Subtopic{
			"Only": {Claims: claims(3, "z")},
		}},
	}
	topics := []model.TopicMetadata{
		{Name: "B-Topic", Subtopics: []model.SubtopicMetadata{{Name: "Second"}, {Name: "First"}}},
		{Name: "A-Topic", Subtopics: []model.SubtopicMetadata{{Name: "Only"}}},
	}

	for run := 0; run < 5; run++ {
		items, err := Select(tree, topics)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := make([]string, len(items))
		for i, it := range items {
			got[i] = it.Label
		}
		want := []string{"B-Topic → Second", "B-Topic → First", "A-Topic → Only"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: order %v, want %v", run, got, want)
			}
		}
		for i, it := range items {
			if it.Ordinal != i {
				t.Errorf("item %d has ordinal %d", i, it.Ordinal)
			}
		}
	}
}

func TestSelect_TreeOnlyEntriesStillVisited(t *testing.T) {
	tree := model.ClaimsTree{
		"Transit": {Subtopics: map[string]model.Subtopic{
			"Buses":    {Claims: claims(2, "a")},
			"Unlisted": {Claims: claims(2, "b")},
		}},
	}
	topics := []model.TopicMetadata{
		{Name: "Transit", Subtopics: []model.SubtopicMetadata{{Name: "Buses"}}},
	}

	items, err := Select(tree, topics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Subtopic != "Unlisted" {
		t.Errorf("expected unlisted subtopic to follow taxonomy entries, got %v", items)
	}
}

func TestSelect_StructuralErrors(t *testing.T) {
	okTree := model.ClaimsTree{
		"Transit": {Subtopics: map[string]model.Subtopic{"Buses": {Claims: claims(2, "a")}}},
	}
	okTopics := []model.TopicMetadata{{Name: "Transit", Subtopics: []model.SubtopicMetadata{{Name: "Buses"}}}}

	if _, err := Select(model.ClaimsTree{}, okTopics); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("empty tree: got %v, want ErrEmptyTree", err)
	}
	if _, err := Select(okTree, nil); !errors.Is(err, ErrNoTopicMetadata) {
		t.Errorf("empty metadata: got %v, want ErrNoTopicMetadata", err)
	}

	tiny := model.ClaimsTree{
		"Transit": {Subtopics: map[string]model.Subtopic{"Buses": {Claims: claims(1, "a")}}},
	}
	if _, err := Select(tiny, okTopics); !errors.Is(err, ErrNoEligibleClaims) {
		t.Errorf("no eligible claims: got %v, want ErrNoEligibleClaims", err)
	}
}
