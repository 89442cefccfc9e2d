// Package selector walks the claims tree and decides which subtopics are
// worth a model call. A subtopic needs at least two claims to express
// disagreement, so anything smaller is skipped silently.
package selector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/opencouncil/crux/internal/logger"
	"github.com/opencouncil/crux/internal/model"
)

// MinClaimsPerSubtopic is the eligibility threshold.
const MinClaimsPerSubtopic = 2

var (
	// ErrEmptyTree means the claims tree has no topics at all.
	ErrEmptyTree = errors.New("claims tree has no topics")

	// ErrNoTopicMetadata means the taxonomy list from upstream is empty.
	ErrNoTopicMetadata = errors.New("topic metadata list is empty")

	// ErrNoEligibleClaims means no subtopic cleared the claim threshold.
	ErrNoEligibleClaims = errors.New("no subtopic has enough claims")
)

// Select produces the ordered work items for one run. Traversal order is
// the metadata list order (the taxonomy mirrors the tree); tree entries
// the taxonomy does not mention are visited afterwards in name order, so
// the ordering stays deterministic either way.
//
// All three error conditions indicate a malformed upstream step, not a
// data-quality problem, and surface as structural failures.
func Select(tree model.ClaimsTree, topics []model.TopicMetadata) ([]model.SubtopicWorkItem, error) {
	if len(tree) == 0 {
		return nil, ErrEmptyTree
	}
	if len(topics) == 0 {
		return nil, ErrNoTopicMetadata
	}

	var items []model.SubtopicWorkItem
	ordinal := 0
	skipped := 0

	visit := func(topicName, subName, description string, sub model.Subtopic) {
		if len(sub.Claims) < MinClaimsPerSubtopic {
			skipped++
			ordinal++
			return
		}
		items = append(items, model.SubtopicWorkItem{
			Topic:         topicName,
			Subtopic:      subName,
			Claims:        sub.Claims,
			Description:   description,
			Label:         fmt.Sprintf("%s → %s", topicName, subName),
			Ordinal:       ordinal,
			TotalSpeakers: countSpeakers(sub.Claims),
		})
		ordinal++
	}

	seenTopics := make(map[string]bool)
	for _, meta := range topics {
		topic, ok := tree[meta.Name]
		if !ok {
			continue
		}
		seenTopics[meta.Name] = true

		seenSubs := make(map[string]bool)
		for _, subMeta := range meta.Subtopics {
			sub, ok := topic.Subtopics[subMeta.Name]
			if !ok {
				continue
			}
			seenSubs[subMeta.Name] = true
			visit(meta.Name, subMeta.Name, subMeta.Description, sub)
		}
		for _, subName := range sortedKeys(topic.Subtopics) {
			if !seenSubs[subName] {
				visit(meta.Name, subName, "", topic.Subtopics[subName])
			}
		}
	}

	// Topics present in the tree but absent from the taxonomy.
	var leftover []string
	for name := range tree {
		if !seenTopics[name] {
			leftover = append(leftover, name)
		}
	}
	sort.Strings(leftover)
	for _, topicName := range leftover {
		topic := tree[topicName]
		for _, subName := range sortedKeys(topic.Subtopics) {
			visit(topicName, subName, "", topic.Subtopics[subName])
		}
	}

	if len(items) == 0 {
		return nil, ErrNoEligibleClaims
	}

	if skipped > 0 {
		logger.Debugf("selector: %d subtopics below %d-claim threshold skipped", skipped, MinClaimsPerSubtopic)
	}
	return items, nil
}

func countSpeakers(claims []model.Claim) int {
	seen := make(map[string]bool)
	for _, c := range claims {
		seen[c.Speaker] = true
	}
	return len(seen)
}

func sortedKeys(m map[string]model.Subtopic) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
