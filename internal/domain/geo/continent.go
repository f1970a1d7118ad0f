package geo

import "sort"

// Member is the minimal per-country aggregate consumed by Aggregate.
type Member struct {
	Code     string
	Articles int64
	AvgTone  float64
}

// ContinentTotal is the aggregate of one continent.
type ContinentTotal struct {
	Name     string
	Articles int64
	AvgTone  float64
	Members  []Member
}

// Aggregate groups per-country totals by continent. Countries whose code is
// not in the reference table are skipped. The continent tone is the mean of
// the member tones weighted by their article counts. Results are sorted by
// article count, descending, then by name.
func Aggregate(members []Member) []ContinentTotal {
	idx := make(map[string]*ContinentTotal)
	weighted := make(map[string]float64)
	for _, m := range members {
		cont := ContinentOf(m.Code)
		if cont == "" {
			continue
		}
		ct, ok := idx[cont]
		if !ok {
			ct = &ContinentTotal{Name: cont}
			idx[cont] = ct
		}
		ct.Articles += m.Articles
		ct.Members = append(ct.Members, m)
		weighted[cont] += m.AvgTone * float64(m.Articles)
	}

	out := make([]ContinentTotal, 0, len(idx))
	for name, ct := range idx {
		if ct.Articles > 0 {
			ct.AvgTone = weighted[name] / float64(ct.Articles)
		}
		sort.SliceStable(ct.Members, func(i, j int) bool {
			return ct.Members[i].Articles > ct.Members[j].Articles
		})
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Articles != out[j].Articles {
			return out[i].Articles > out[j].Articles
		}
		return out[i].Name < out[j].Name
	})
	return out
}
