package similarity

import "sort"

// DefaultMergeThreshold is the stricter threshold used by SuggestMerges.
const DefaultMergeThreshold = 85

// Variation is a population record scored against a target.
type Variation struct {
	Record Record `json:"record"`
	Score  int    `json:"score"`
}

// Cluster groups a primary record with its detected variations.
type Cluster struct {
	Primary    Record      `json:"primary"`
	Variations []Variation `json:"variations"`
}

// MergeSuggestion annotates a tight cluster with a human-readable reason.
type MergeSuggestion struct {
	Cluster Cluster `json:"cluster"`
	Reason  string  `json:"reason"`
}

// FindVariations scores every other record in the population against the
// target and returns those within [threshold, 99], sorted descending by
// score. A score of 100 signals identity, not variation, and is excluded.
func FindVariations(target Record, population []Record, threshold int) []Variation {
	variations := make([]Variation, 0)
	for _, candidate := range population {
		if candidate.ID == target.ID {
			continue
		}
		score := RecordSimilarity(target.Profile, candidate.Profile)
		if score >= threshold && score <= 99 {
			variations = append(variations, Variation{Record: candidate, Score: score})
		}
	}

	sort.SliceStable(variations, func(i, j int) bool {
		return variations[i].Score > variations[j].Score
	})

	return variations
}

// ClusterVariations groups the population with a single greedy pass: each
// unassigned record becomes a cluster primary, its variations are pulled in,
// and all members are marked assigned. The grouping is not transitively
// closed: a record similar to a variation but not to the primary stays out.
// Downstream tooling depends on this exact behavior.
func ClusterVariations(population []Record, threshold int) []Cluster {
	assigned := make(map[string]struct{}, len(population))
	clusters := make([]Cluster, 0)

	for _, record := range population {
		if _, done := assigned[record.ID]; done {
			continue
		}
		assigned[record.ID] = struct{}{}

		variations := FindVariations(record, population, threshold)
		members := variations[:0]
		for _, v := range variations {
			if _, done := assigned[v.Record.ID]; done {
				continue
			}
			assigned[v.Record.ID] = struct{}{}
			members = append(members, v)
		}

		clusters = append(clusters, Cluster{Primary: record, Variations: members})
	}

	return clusters
}

// SuggestMerges clusters the population at a stricter threshold and keeps
// clusters that actually have variations, annotating each with a reason:
// "nearly identical" when any member scores above 95, "highly similar"
// otherwise.
func SuggestMerges(population []Record, mergeThreshold int) []MergeSuggestion {
	if mergeThreshold <= 0 {
		mergeThreshold = DefaultMergeThreshold
	}

	suggestions := make([]MergeSuggestion, 0)
	for _, cluster := range ClusterVariations(population, mergeThreshold) {
		if len(cluster.Variations) == 0 {
			continue
		}

		reason := "highly similar"
		for _, v := range cluster.Variations {
			if v.Score > 95 {
				reason = "nearly identical"
				break
			}
		}

		suggestions = append(suggestions, MergeSuggestion{Cluster: cluster, Reason: reason})
	}

	return suggestions
}
