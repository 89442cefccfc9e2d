package score

import (
	"strings"

	"github.com/opencouncil/crux/internal/model"
)

// Result is the per-subtopic score triple. All three values sit in [0,1].
type Result struct {
	Agreement    float64
	Disagreement float64
	Controversy  float64
}

// Controversy computes the score triple for a subtopic with agree count
// agree, disagree count disagree and total eligible speakers.
//
// controversy = 2 * min(agree/total, disagree/total): it peaks at 1.0
// exactly on an even split and is 0 when everyone agrees, everyone
// disagrees, or total is 0.
func Controversy(agree, disagree, total int) Result {
	if total <= 0 {
		return Result{}
	}

	r := Result{
		Agreement:    float64(agree) / float64(total),
		Disagreement: float64(disagree) / float64(total),
	}
	lower := r.Agreement
	if r.Disagreement < lower {
		lower = r.Disagreement
	}
	r.Controversy = 2 * lower
	return r
}

// Rollup groups surviving cruxes by topic and produces one TopicScore per
// topic, in first-appearance order. Topics without a surviving crux are
// omitted entirely rather than emitted as zero rows.
//
// TotalSpeakers counts the union of agree and disagree tags across the
// topic's cruxes, so a speaker active in several subtopics counts once.
func Rollup(cruxes []model.SubtopicCrux) []model.TopicScore {
	type bucket struct {
		sum      float64
		count    int
		speakers map[string]bool
	}

	buckets := make(map[string]*bucket)
	var order []string

	for _, crux := range cruxes {
		b, ok := buckets[crux.Topic]
		if !ok {
			b = &bucket{speakers: make(map[string]bool)}
			buckets[crux.Topic] = b
			order = append(order, crux.Topic)
		}
		b.sum += crux.ControversyScore
		b.count++
		for _, tag := range crux.Agree {
			b.speakers[speakerID(tag)] = true
		}
		for _, tag := range crux.Disagree {
			b.speakers[speakerID(tag)] = true
		}
	}

	scores := make([]model.TopicScore, 0, len(order))
	for _, topic := range order {
		b := buckets[topic]
		scores = append(scores, model.TopicScore{
			Topic:              topic,
			AverageControversy: b.sum / float64(b.count),
			SubtopicCount:      b.count,
			TotalSpeakers:      len(b.speakers),
		})
	}
	return scores
}

// speakerID returns the ID half of an "id:name" tag. Names may themselves
// contain colons, so only the first separator counts.
func speakerID(tag string) string {
	id, _, _ := strings.Cut(tag, ":")
	return id
}
