package anonymize

import (
	"sort"
	"strconv"

	"github.com/opencouncil/crux/internal/model"
)

// SpeakerMap maps a participant's display name to the small anonymous ID
// used for the lifetime of one run. Only the IDs are sent to the model.
type SpeakerMap map[string]string

// Build collects every distinct speaker across the whole tree, sorts the
// names lexicographically and numbers them from "0". The same tree always
// yields the same map; scoring and matrix building both invert it
// independently and must agree.
func Build(tree model.ClaimsTree) SpeakerMap {
	seen := make(map[string]bool)
	for _, topic := range tree {
		for _, subtopic := range topic.Subtopics {
			for _, claim := range subtopic.Claims {
				seen[claim.Speaker] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	m := make(SpeakerMap, len(names))
	for i, name := range names {
		m[name] = strconv.Itoa(i)
	}
	return m
}

// Inverse returns the ID → name mapping. The map is bijective within a
// run, so no entry is ever overwritten here.
func (m SpeakerMap) Inverse() map[string]string {
	inv := make(map[string]string, len(m))
	for name, id := range m {
		inv[id] = name
	}
	return inv
}

// Tags returns every speaker as an "id:name" tag, ordered by numeric ID.
// Because IDs were assigned over sorted names, this order is also the
// lexicographic name order.
func (m SpeakerMap) Tags() []string {
	type pair struct {
		id   int
		name string
	}
	pairs := make([]pair, 0, len(m))
	for name, id := range m {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair{id: n, name: name})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	tags := make([]string, len(pairs))
	for i, p := range pairs {
		tags[i] = strconv.Itoa(p.id) + ":" + p.name
	}
	return tags
}
