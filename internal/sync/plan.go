package sync

import (
	"sort"
	"strings"

	"github.com/hyperjump/michibiki/internal/models"
)

// Plan is the set of mutations one reconciliation pass must apply. Deletes are
// applied before upserts so a pass that both removes and replaces never leaves
// the index larger than the snapshot.
type Plan struct {
	Upserts   []*models.CourseDocument
	Deletes   []string
	Unchanged int
}

// Empty reports whether the plan implies no mutations.
func (p *Plan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

// BuildPlan diffs a catalog snapshot against the stored baseline of ID to
// content hash. Classification per record: unknown ID is an insert, known ID
// with a different hash is an update, matching hash is unchanged. Baseline IDs
// absent from the snapshot become deletes. When a snapshot repeats an ID the
// first occurrence wins and later ones are ignored.
//
// BuildPlan is pure: it reads nothing and mutates nothing but its result,
// which makes the diff rules testable without storage or embeddings.
func BuildPlan(records []models.CourseRecord, baseline map[string]string) *Plan {
	plan := &Plan{}
	seen := make(map[string]bool, len(records))

	for i := range records {
		r := &records[i]
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		doc := BuildDocument(r)
		if baseline[r.ID] == doc.Metadata[models.MetaContentHash] {
			plan.Unchanged++
			continue
		}
		plan.Upserts = append(plan.Upserts, doc)
	}

	for id := range baseline {
		if !seen[id] {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	sort.Strings(plan.Deletes)
	return plan
}

// PruneDeletes drops planned deletes whose ID belongs to one of the given
// source prefixes. A source that failed to load contributes zero records to
// the snapshot; deleting its courses would turn a transient read error into
// data loss, so its namespace is exempt for the pass.
func (p *Plan) PruneDeletes(prefixes []string) int {
	if len(prefixes) == 0 || len(p.Deletes) == 0 {
		return 0
	}
	kept := p.Deletes[:0]
	pruned := 0
	for _, id := range p.Deletes {
		skip := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(id, prefix) {
				skip = true
				break
			}
		}
		if skip {
			pruned++
			continue
		}
		kept = append(kept, id)
	}
	p.Deletes = kept
	return pruned
}
