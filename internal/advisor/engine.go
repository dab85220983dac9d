package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/extract"
	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
)

// indexStatus is the slice of the index client the engine needs besides
// querying: whether an index has ever been built.
type indexStatus interface {
	Empty(ctx context.Context) (bool, error)
}

// Engine answers user messages end to end: extract the skill-gap analysis,
// then recommend courses per skill. One request walks Extract, Query,
// Merge/Dedup, Filter, Bucket, Select, and optionally Fallback exactly once.
type Engine struct {
	extractor extract.Extractor
	ranker    *Ranker
	status    indexStatus
	maxSkills int
	logger    *zap.Logger
}

// NewEngine creates an advice engine.
func NewEngine(extractor extract.Extractor, ranker *Ranker, status indexStatus, maxSkills int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		extractor: extractor,
		ranker:    ranker,
		status:    status,
		maxSkills: maxSkills,
		logger:    logger,
	}
}

// Advise produces the full advice for one user message. Extraction failure is
// a request-level error. A missing index is not: the analysis is still useful,
// so the advice comes back degraded with no recommendations instead.
func (e *Engine) Advise(ctx context.Context, message string) (*models.Advice, error) {
	analysis, err := e.extractor.Extract(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("analyze message: %w", err)
	}

	advice := &models.Advice{
		UserIntent: models.UserIntent{
			CurrentRole: analysis.CurrentRole,
			TargetRole:  analysis.TargetRole,
		},
		AnalysisSummary: analysis.Summary,
	}

	empty, err := e.status.Empty(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if empty {
		e.logger.Warn("advising without a course index")
		advice.Degraded = true
		return advice, nil
	}

	skills := analysis.Skills
	if len(skills) > e.maxSkills {
		skills = skills[:e.maxSkills]
	}
	for _, skill := range skills {
		courses := e.ranker.Recommend(ctx, skill, analysis.Language)
		advice.Recommendations = append(advice.Recommendations, models.SkillRecommendation{
			SkillGap:         skill.DisplayName,
			SuggestedCourses: courses,
		})
	}
	e.logger.Info("advice produced",
		zap.String("language", string(analysis.Language)),
		zap.Int("skills", len(skills)))
	return advice, nil
}

// RecommendSkill serves direct skill queries that bypass extraction. Unlike
// Advise it fails with ErrNoIndex when no index has ever been built, since
// there is no analysis to fall back on.
func (e *Engine) RecommendSkill(ctx context.Context, skill models.SkillGap, lang models.Language) ([]models.RankedCourse, error) {
	if skill.QueryEN == "" {
		return nil, fmt.Errorf("skill has no English query")
	}
	empty, err := e.status.Empty(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if empty {
		return nil, index.ErrNoIndex
	}
	if lang == "" {
		lang = models.LanguageEnglish
	}
	return e.ranker.Recommend(ctx, skill, lang), nil
}
