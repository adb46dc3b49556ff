package analysis

import (
	"sort"

	"fes-bids/internal/model"
)

// RankSources summarises every generation column of a snapshot and sorts
// them by total output, largest first. Columns that are zero all day are
// dropped.
func RankSources(snap *model.Snapshot) []Summary {
	out := make([]Summary, 0, len(model.GenerationSources))
	for _, src := range model.GenerationSources {
		s := Summarize(string(src), snap.Column(src))
		if s.Min == 0 && s.Max == 0 {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}
