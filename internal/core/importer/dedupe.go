package importer

import "github.com/example/safer/internal/models"

// LinkedIssueNumbers collects every external issue number linked from the
// given item sets. Callers must pass both active and archived items: an issue
// imported once and later archived must still block re-import.
func LinkedIssueNumbers(sets ...[]*models.DeliveryItem) map[int]bool {
	seen := make(map[int]bool)
	for _, set := range sets {
		for _, d := range set {
			for _, n := range d.OutcomeTracking.LinkedIssues {
				seen[n] = true
			}
		}
	}
	return seen
}

// PartitionNew splits candidates into those not yet imported and the count of
// those already present. Duplicates inside the candidate list are collapsed.
func PartitionNew(candidates []models.ImportedItem, existing map[int]bool) ([]models.ImportedItem, int) {
	var fresh []models.ImportedItem
	skipped := 0
	batch := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		if existing[c.Number] || batch[c.Number] {
			skipped++
			continue
		}
		batch[c.Number] = true
		fresh = append(fresh, c)
	}
	return fresh, skipped
}
