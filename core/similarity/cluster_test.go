package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rec(id, content, name, structure string) Record {
	return Record{
		ID: id,
		Profile: Profile{
			Content:     content,
			DisplayName: name,
			Structure:   structure,
		},
	}
}

// TestFindVariations_ExcludesIdentity tests that a 100 score never appears in
// the variation list.
func TestFindVariations_ExcludesIdentity(t *testing.T) {
	target := rec("a", "text:Hello", "Heparin", "anticoagulant|heparin")
	twin := rec("b", "text:Hello", "Heparin", "anticoagulant|heparin") // identical profile

	variations := FindVariations(target, []Record{target, twin}, 70)
	assert.Empty(t, variations)
}

// TestFindVariations_RankedDescending tests the score window and ordering.
func TestFindVariations_RankedDescending(t *testing.T) {
	target := rec("a", "text:Administer slowly over one hour", "Heparin Drip", "anticoagulant|heparin")
	closest := rec("b", "text:Administer slowly over one hour", "Heparin Drips", "anticoagulant|heparin")
	further := rec("c", "text:Administer slowly over two hours", "Heparin Bolus", "anticoagulant|heparin")
	unrelated := rec("d", "text:Apply topically", "Lidocaine Patch", "anesthetic|lidocaine")

	variations := FindVariations(target, []Record{target, closest, further, unrelated}, 70)

	assert.Len(t, variations, 2)
	assert.Equal(t, "b", variations[0].Record.ID)
	assert.Equal(t, "c", variations[1].Record.ID)
	assert.GreaterOrEqual(t, variations[0].Score, variations[1].Score)
	for _, v := range variations {
		assert.LessOrEqual(t, v.Score, 99)
		assert.GreaterOrEqual(t, v.Score, 70)
	}
}

// TestClusterVariations_GreedyAssignment tests that every record lands in
// exactly one cluster and assigned records are skipped as primaries.
func TestClusterVariations_GreedyAssignment(t *testing.T) {
	a := rec("a", "text:Administer slowly over one hour", "Heparin Drip", "anticoagulant|heparin")
	b := rec("b", "text:Administer slowly over one hour", "Heparin Drips", "anticoagulant|heparin")
	c := rec("c", "text:Apply topically", "Lidocaine Patch", "anesthetic|lidocaine")

	clusters := ClusterVariations([]Record{a, b, c}, 70)

	assert.Len(t, clusters, 2)
	assert.Equal(t, "a", clusters[0].Primary.ID)
	assert.Len(t, clusters[0].Variations, 1)
	assert.Equal(t, "b", clusters[0].Variations[0].Record.ID)
	assert.Equal(t, "c", clusters[1].Primary.ID)
	assert.Empty(t, clusters[1].Variations)

	// Each record appears exactly once across all clusters.
	seen := map[string]int{}
	for _, cl := range clusters {
		seen[cl.Primary.ID]++
		for _, v := range cl.Variations {
			seen[v.Record.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "record %s clustered more than once", id)
	}
}

// TestSuggestMerges_Reasons tests reason annotation at the merge threshold.
func TestSuggestMerges_Reasons(t *testing.T) {
	a := rec("a", "text:Administer slowly over one hour", "Heparin Drip", "anticoagulant|heparin")
	nearTwin := rec("b", "text:Administer slowly over one hour", "Heparin Drip ", "anticoagulant|heparin")
	loner := rec("c", "text:Apply topically", "Lidocaine Patch", "anesthetic|lidocaine")

	suggestions := SuggestMerges([]Record{a, nearTwin, loner}, DefaultMergeThreshold)

	assert.Len(t, suggestions, 1)
	assert.Equal(t, "a", suggestions[0].Cluster.Primary.ID)
	assert.Equal(t, "nearly identical", suggestions[0].Reason)
}

// TestSuggestMerges_DefaultThreshold tests that a non-positive threshold
// falls back to the default.
func TestSuggestMerges_DefaultThreshold(t *testing.T) {
	a := rec("a", "text:Administer slowly over one hour", "Heparin Drip", "anticoagulant|heparin")
	b := rec("b", "text:Administer slowly over one hour", "Heparin Drip ", "anticoagulant|heparin")

	suggestions := SuggestMerges([]Record{a, b}, 0)
	assert.Len(t, suggestions, 1)
}
