// Package advisor implements the retrieval and ranking engine: it turns a
// skill-gap analysis into per-skill course recommendations by querying the
// similarity index, filtering by distance, bucketing by language affinity, and
// falling back to an external search link when nothing qualifies.
package advisor

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
)

// Ranker selects courses for one skill gap. Its knobs come from the retrieval
// config; the distance threshold is tied to the embedding space in use.
type Ranker struct {
	querier      index.Querier
	maxDistance  float64
	queryK       int
	maxCourses   int
	localSources map[string]bool
	fallbackURL  string
	logger       *zap.Logger
}

// NewRanker creates a ranker over the given index querier.
func NewRanker(querier index.Querier, cfg config.RetrievalConfig, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	local := make(map[string]bool, len(cfg.LocalSources))
	for _, s := range cfg.LocalSources {
		local[strings.ToLower(s)] = true
	}
	return &Ranker{
		querier:      querier,
		maxDistance:  cfg.MaxDistance,
		queryK:       cfg.QueryK,
		maxCourses:   cfg.MaxCoursesPerSkill,
		localSources: local,
		fallbackURL:  cfg.FallbackURLPrefix,
		logger:       logger,
	}
}

// Recommend returns up to MaxCoursesPerSkill courses for one skill gap,
// or exactly one synthetic external-search placeholder when nothing qualifies.
// Query failures degrade to zero hits rather than failing the request; the
// fallback still fires.
func (r *Ranker) Recommend(ctx context.Context, skill models.SkillGap, lang models.Language) []models.RankedCourse {
	queries := []string{skill.QueryEN}
	if skill.QueryLocal != "" && skill.QueryLocal != skill.QueryEN {
		queries = append(queries, skill.QueryLocal)
	}

	var hits []index.Hit
	for _, q := range queries {
		found, err := r.querier.Query(ctx, q, r.queryK)
		if err != nil {
			r.logger.Warn("similarity query failed",
				zap.String("query", q), zap.Error(err))
			continue
		}
		hits = append(hits, found...)
	}

	candidates := r.filter(dedupeByURL(hits))
	selected := r.selectByLanguage(candidates, lang)
	if len(selected) == 0 {
		return []models.RankedCourse{r.fallback(skill)}
	}
	return selected
}

// dedupeByURL collapses hits pointing at the same course URL, keeping the
// closest one. Multi-query retrieval routinely returns the same course twice.
func dedupeByURL(hits []index.Hit) []models.RankedCourse {
	best := make(map[string]models.RankedCourse, len(hits))
	order := make([]string, 0, len(hits))
	for _, h := range hits {
		url := h.Metadata[models.MetaURL]
		if url == "" {
			continue
		}
		course := models.RankedCourse{
			Title:    h.Metadata[models.MetaTitle],
			URL:      url,
			Level:    h.Metadata[models.MetaLevel],
			Category: h.Metadata[models.MetaCategory],
			Duration: h.Metadata[models.MetaDuration],
			ImageURL: h.Metadata[models.MetaImageURL],
			Source:   h.Metadata[models.MetaSource],
			Score:    h.Score,
		}
		prev, seen := best[url]
		if !seen {
			order = append(order, url)
			best[url] = course
			continue
		}
		if course.Score < prev.Score {
			best[url] = course
		}
	}
	out := make([]models.RankedCourse, 0, len(best))
	for _, url := range order {
		out = append(out, best[url])
	}
	return out
}

// filter drops courses above the distance threshold and sorts ascending.
func (r *Ranker) filter(courses []models.RankedCourse) []models.RankedCourse {
	kept := courses[:0]
	for _, c := range courses {
		if c.Score <= r.maxDistance {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score < kept[j].Score })
	return kept
}

// selectByLanguage partitions candidates into the local-language bucket and
// the rest, then fills from the user's preferred bucket first, padding from
// the other bucket only when the preferred one runs short.
func (r *Ranker) selectByLanguage(candidates []models.RankedCourse, lang models.Language) []models.RankedCourse {
	var local, other []models.RankedCourse
	for _, c := range candidates {
		if r.isLocal(c) {
			local = append(local, c)
		} else {
			other = append(other, c)
		}
	}

	preferred, rest := other, local
	if lang == models.LanguageThai {
		preferred, rest = local, other
	}

	selected := preferred
	if len(selected) > r.maxCourses {
		selected = selected[:r.maxCourses]
	}
	for _, c := range rest {
		if len(selected) >= r.maxCourses {
			break
		}
		selected = append(selected, c)
	}
	return selected
}

// isLocal reports whether a course belongs to the local-language bucket:
// either its source only publishes local-language content, or its title
// contains Thai script.
func (r *Ranker) isLocal(c models.RankedCourse) bool {
	if r.localSources[strings.ToLower(c.Source)] {
		return true
	}
	return containsThai(c.Title)
}

func containsThai(s string) bool {
	for _, ch := range s {
		if unicode.Is(unicode.Thai, ch) {
			return true
		}
	}
	return false
}

// fallback synthesizes the external-search placeholder so downstream
// consumers never special-case an empty recommendation list.
func (r *Ranker) fallback(skill models.SkillGap) models.RankedCourse {
	title := skill.DisplayName
	if title == "" {
		title = skill.QueryEN
	}
	// QueryEN is an English keyword list by contract, so spaces are the only
	// characters needing escape.
	return models.RankedCourse{
		Title:    "Search for '" + title + "' courses",
		URL:      r.fallbackURL + strings.ReplaceAll(skill.QueryEN, " ", "%20"),
		Level:    models.FallbackLevel,
		Duration: "-",
		Score:    0,
	}
}
