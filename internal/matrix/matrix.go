// Package matrix assembles the speaker × crux position grid used by the
// report visualization.
package matrix

import (
	"strings"

	"github.com/opencouncil/crux/internal/model"
)

// Build produces the dense matrix of every speaker's position against
// every surviving crux. Speakers come from the full run map, not just
// those who took a position, so the grid always covers all participants.
//
// Every cell starts as "no_position"; agree and disagree lists overwrite
// it. Speakers in no_clear_position are written with the default value,
// a no-op today, kept explicit so a future distinct marker is a one-line
// change. Zero cruxes or zero speakers yield the empty triple.
func Build(cruxes []model.SubtopicCrux, speakerTags []string) model.SpeakerCruxMatrix {
	if len(cruxes) == 0 || len(speakerTags) == 0 {
		return model.SpeakerCruxMatrix{
			Speakers:   []string{},
			CruxLabels: []string{},
			Matrix:     [][]model.Position{},
		}
	}

	rowByID := make(map[string]int, len(speakerTags))
	for i, tag := range speakerTags {
		id, _, _ := strings.Cut(tag, ":")
		rowByID[id] = i
	}

	labels := make([]string, len(cruxes))
	grid := make([][]model.Position, len(speakerTags))
	for i := range grid {
		row := make([]model.Position, len(cruxes))
		for j := range row {
			row[j] = model.PositionNoPosition
		}
		grid[i] = row
	}

	for col, crux := range cruxes {
		labels[col] = crux.Topic + " → " + crux.Subtopic
		setColumn(grid, rowByID, col, crux.Agree, model.PositionAgree)
		setColumn(grid, rowByID, col, crux.Disagree, model.PositionDisagree)
		setColumn(grid, rowByID, col, crux.NoClearPosition, model.PositionNoPosition)
	}

	return model.SpeakerCruxMatrix{
		Speakers:   speakerTags,
		CruxLabels: labels,
		Matrix:     grid,
	}
}

func setColumn(grid [][]model.Position, rowByID map[string]int, col int, tags []string, pos model.Position) {
	for _, tag := range tags {
		id, _, _ := strings.Cut(tag, ":")
		if row, ok := rowByID[id]; ok {
			grid[row][col] = pos
		}
	}
}
