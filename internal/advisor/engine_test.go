package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
)

type fakeExtractor struct {
	analysis *models.Analysis
	err      error
}

func (f *fakeExtractor) Extract(context.Context, string) (*models.Analysis, error) {
	return f.analysis, f.err
}
func (f *fakeExtractor) Close() error { return nil }

type fakeStatus struct {
	empty bool
	err   error
}

func (f *fakeStatus) Empty(context.Context) (bool, error) { return f.empty, f.err }

func thaiAnalysis() *models.Analysis {
	return &models.Analysis{
		Language:    models.LanguageThai,
		CurrentRole: "AI Engineer",
		TargetRole:  "Project Manager",
		Summary:     "สรุป",
		Skills: []models.SkillGap{
			{DisplayName: "การจัดการโครงการ", QueryEN: "Project Management"},
		},
	}
}

func testEngine(ext *fakeExtractor, q index.Querier, status *fakeStatus) *Engine {
	return NewEngine(ext, NewRanker(q, testRetrievalConfig(), nil), status, 5, nil)
}

func TestEngine_advise(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"Project Management": {hit("PM 101", "https://c/pm", "Coursera", 0.2)},
	}}
	e := testEngine(&fakeExtractor{analysis: thaiAnalysis()}, q, &fakeStatus{})

	advice, err := e.Advise(context.Background(), "อยากเป็น PM")
	if err != nil {
		t.Fatal(err)
	}
	if advice.UserIntent.CurrentRole != "AI Engineer" || advice.UserIntent.TargetRole != "Project Manager" {
		t.Errorf("intent = %+v", advice.UserIntent)
	}
	if advice.Degraded {
		t.Error("advice should not be degraded with an index present")
	}
	if len(advice.Recommendations) != 1 {
		t.Fatalf("recommendations = %d, want 1", len(advice.Recommendations))
	}
	rec := advice.Recommendations[0]
	if rec.SkillGap != "การจัดการโครงการ" {
		t.Errorf("skill gap shown as %q, want the display name", rec.SkillGap)
	}
	if len(rec.SuggestedCourses) != 1 || rec.SuggestedCourses[0].Title != "PM 101" {
		t.Errorf("courses = %+v", rec.SuggestedCourses)
	}
}

func TestEngine_adviseDegradedWithoutIndex(t *testing.T) {
	e := testEngine(&fakeExtractor{analysis: thaiAnalysis()}, &fakeQuerier{}, &fakeStatus{empty: true})

	advice, err := e.Advise(context.Background(), "อยากเป็น PM")
	if err != nil {
		t.Fatal(err)
	}
	if !advice.Degraded {
		t.Error("advice must be degraded when no index was ever built")
	}
	if len(advice.Recommendations) != 0 {
		t.Errorf("degraded advice must carry no recommendations, got %d", len(advice.Recommendations))
	}
	if advice.AnalysisSummary != "สรุป" {
		t.Error("analysis must still be returned")
	}
}

func TestEngine_adviseExtractionFailure(t *testing.T) {
	e := testEngine(&fakeExtractor{err: errors.New("model unavailable")}, &fakeQuerier{}, &fakeStatus{})

	if _, err := e.Advise(context.Background(), "hello"); err == nil {
		t.Fatal("extraction failure must be a request-level error")
	}
}

func TestEngine_adviseCapsSkills(t *testing.T) {
	analysis := thaiAnalysis()
	analysis.Skills = nil
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		analysis.Skills = append(analysis.Skills, models.SkillGap{DisplayName: s, QueryEN: s})
	}
	e := testEngine(&fakeExtractor{analysis: analysis}, &fakeQuerier{}, &fakeStatus{})

	advice, err := e.Advise(context.Background(), "msg")
	if err != nil {
		t.Fatal(err)
	}
	if len(advice.Recommendations) != 5 {
		t.Errorf("recommendations = %d, want the cap of 5", len(advice.Recommendations))
	}
}

func TestEngine_recommendSkill(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"Python Programming": {hit("Intro to Python", "https://c/1", "Coursera", 0.1)},
	}}
	e := testEngine(&fakeExtractor{}, q, &fakeStatus{})

	courses, err := e.RecommendSkill(context.Background(), models.SkillGap{QueryEN: "Python Programming"}, models.LanguageEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 1 || courses[0].Title != "Intro to Python" || courses[0].Score != 0.1 {
		t.Errorf("courses = %+v", courses)
	}

	if _, err := e.RecommendSkill(context.Background(), models.SkillGap{}, models.LanguageEnglish); err == nil {
		t.Error("missing query_en must error")
	}
}

func TestEngine_recommendSkillNoIndex(t *testing.T) {
	e := testEngine(&fakeExtractor{}, &fakeQuerier{}, &fakeStatus{empty: true})

	_, err := e.RecommendSkill(context.Background(), models.SkillGap{QueryEN: "Go"}, models.LanguageEnglish)
	if !errors.Is(err, index.ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
}
