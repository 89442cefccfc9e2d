// Package extract validates raw model output and recovers what it can
// from partially malformed responses.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/opencouncil/crux/internal/logger"
	"github.com/opencouncil/crux/internal/model"
	"github.com/opencouncil/crux/internal/score"
)

var (
	// ErrParseFailed means the response was missing the crux object or a
	// required field, or was not valid JSON at all.
	ErrParseFailed = errors.New("crux response parse failed")

	// ErrNoValidSpeakers means every agree and disagree ID the model
	// produced was outside the subtopic's valid set.
	ErrNoValidSpeakers = errors.New("no valid speaker IDs in response")
)

// rawEnvelope is the strict decode target for model output. Pointer
// fields distinguish missing from empty: a crux without an agree list is
// fatal, a crux with an empty one is not.
type rawEnvelope struct {
	Crux *rawCrux `json:"crux"`
}

type rawCrux struct {
	CruxClaim       *string   `json:"cruxClaim"`
	Agree           *[]string `json:"agree"`
	Disagree        *[]string `json:"disagree"`
	NoClearPosition []string  `json:"no_clear_position"`
	Explanation     string    `json:"explanation"`
}

// Parse validates one subtopic's raw response against the run's speaker
// map and assembles the scored SubtopicCrux.
//
// Invalid speaker IDs are filtered rather than fatal: the item only fails
// when both the agree and disagree lists end up empty. Partial survival
// is logged as a recovery, not an error.
func Parse(raw string, item model.SubtopicWorkItem, validIDs map[string]bool, idToName map[string]string) (*model.SubtopicCrux, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal([]byte(stripFences(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	crux := envelope.Crux
	if crux == nil {
		return nil, fmt.Errorf("%w: missing crux object", ErrParseFailed)
	}
	if crux.CruxClaim == nil || crux.Agree == nil || crux.Disagree == nil {
		return nil, fmt.Errorf("%w: missing required field", ErrParseFailed)
	}

	agree := speakerIDs(*crux.Agree)
	disagree := speakerIDs(*crux.Disagree)
	noPosition := speakerIDs(crux.NoClearPosition)

	agree, droppedAgree := filterValid(agree, validIDs)
	disagree, droppedDisagree := filterValid(disagree, validIDs)
	noPosition, droppedNoPos := filterValid(noPosition, validIDs)

	dropped := droppedAgree + droppedDisagree + droppedNoPos
	if len(agree) == 0 && len(disagree) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoValidSpeakers, item.Label)
	}
	if dropped > 0 {
		logger.WithFields(logger.Fields{
			"subtopic": item.Label,
			"dropped":  dropped,
		}).Warnf("recovered crux after dropping invalid speaker IDs")
	}

	scores := score.Controversy(len(agree), len(disagree), item.TotalSpeakers)

	return &model.SubtopicCrux{
		Topic:             item.Topic,
		Subtopic:          item.Subtopic,
		CruxClaim:         *crux.CruxClaim,
		Agree:             attachNames(agree, idToName),
		Disagree:          attachNames(disagree, idToName),
		NoClearPosition:   attachNames(noPosition, idToName),
		Explanation:       crux.Explanation,
		AgreementScore:    scores.Agreement,
		DisagreementScore: scores.Disagreement,
		ControversyScore:  scores.Controversy,
		SpeakersInvolved:  countDistinct(agree, disagree, noPosition),
		TotalSpeakers:     item.TotalSpeakers,
	}, nil
}

// speakerIDs extracts the ID portion of each "id:label" token, keeping
// only the text before the first separator, and dedupes within the list.
// Anything after the first ":" is discarded, including malformed
// multi-colon tokens.
func speakerIDs(tokens []string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, token := range tokens {
		id, _, _ := strings.Cut(strings.TrimSpace(token), ":")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func filterValid(ids []string, validIDs map[string]bool) (kept []string, dropped int) {
	for _, id := range ids {
		if validIDs[id] {
			kept = append(kept, id)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// attachNames turns surviving IDs back into "id:name" tags via the
// inverse speaker map.
func attachNames(ids []string, idToName map[string]string) []string {
	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = id + ":" + idToName[id]
	}
	return tags
}

func countDistinct(lists ...[]string) int {
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, id := range list {
			seen[id] = true
		}
	}
	return len(seen)
}

// stripFences removes a markdown code fence around the JSON body, which
// some models emit despite JSON-mode instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ValidIDSet returns the anonymous IDs of the speakers appearing in the
// item's claims, the only IDs the model may legally reference.
func ValidIDSet(item model.SubtopicWorkItem, speakerToID map[string]string) map[string]bool {
	valid := make(map[string]bool)
	for _, claim := range item.Claims {
		if id, ok := speakerToID[claim.Speaker]; ok {
			valid[id] = true
		}
	}
	return valid
}
