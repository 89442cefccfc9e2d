package cache

import (
	"testing"
	"time"

	"github.com/opencouncil/crux/internal/model"
)

func TestResponseKey_StableAndDistinct(t *testing.T) {
	item := model.SubtopicWorkItem{
		Label: "Transit → Buses",
		Claims: []model.Claim{
			{Speaker: "Alice", Text: "More night buses"},
			{Speaker: "Bob", Text: "Night buses waste money"},
		},
	}

	a := ResponseKey("gpt-4o-mini", item)
	b := ResponseKey("gpt-4o-mini", item)
	if a != b {
		t.Errorf("same inputs produced different keys: %s vs %s", a, b)
	}

	if ResponseKey("gpt-4o", item) == a {
		t.Error("different model should produce a different key")
	}

	reordered := item
	reordered.Claims = []model.Claim{item.Claims[1], item.Claims[0]}
	if ResponseKey("gpt-4o-mini", reordered) == a {
		t.Error("claim order is significant and must change the key")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set("k", []byte("raw response"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "raw response" {
		t.Errorf("get = %q, %v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("value survived delete")
	}
}
