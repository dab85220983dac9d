package advisor

import (
	"context"
	"testing"

	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
)

// fakeQuerier returns canned hits keyed by query text.
type fakeQuerier struct {
	hits map[string][]index.Hit
	err  error
}

func (f *fakeQuerier) Query(_ context.Context, text string, _ int) ([]index.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[text], nil
}

func hit(title, url, source string, score float64) index.Hit {
	return index.Hit{
		Metadata: map[string]string{
			models.MetaTitle:  title,
			models.MetaURL:    url,
			models.MetaSource: source,
			models.MetaLevel:  "Beginner",
		},
		Score: score,
	}
}

func testRetrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		MaxDistance:        0.3,
		QueryK:             5,
		MaxSkills:          5,
		MaxCoursesPerSkill: 2,
		LocalSources:       []string{"FutureSkill", "SkillLane"},
		FallbackURLPrefix:  "https://www.coursera.org/search?query=",
	}
}

func TestRanker_thresholdIsInclusive(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"Python Programming": {
			hit("At Threshold", "https://c/at", "Coursera", 0.3),
			hit("Above Threshold", "https://c/above", "Coursera", 0.30001),
		},
	}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	got := r.Recommend(context.Background(), models.SkillGap{QueryEN: "Python Programming"}, models.LanguageEnglish)
	if len(got) != 1 {
		t.Fatalf("got %d courses, want 1", len(got))
	}
	if got[0].Title != "At Threshold" {
		t.Errorf("kept %q, want the hit exactly at the threshold", got[0].Title)
	}
}

func TestRanker_dedupeKeepsCloserScore(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"SQL":           {hit("SQL Course", "https://c/sql", "Coursera", 0.25)},
		"ฐานข้อมูล SQL": {hit("SQL Course", "https://c/sql", "Coursera", 0.10)},
	}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	skill := models.SkillGap{QueryEN: "SQL", QueryLocal: "ฐานข้อมูล SQL"}
	got := r.Recommend(context.Background(), skill, models.LanguageThai)
	if len(got) != 1 {
		t.Fatalf("got %d courses, want 1 after dedup", len(got))
	}
	if got[0].Score != 0.10 {
		t.Errorf("score = %v, want the closer 0.10", got[0].Score)
	}
}

func TestRanker_localBucketPreferredForThai(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"Data Analysis": {
			hit("Data A", "https://o/a", "Coursera", 0.05),
			hit("Data B", "https://o/b", "Coursera", 0.06),
			hit("คอร์สวิเคราะห์ข้อมูล 1", "https://l/1", "FutureSkill", 0.1),
			hit("คอร์สวิเคราะห์ข้อมูล 2", "https://l/2", "SkillLane", 0.2),
			hit("คอร์สวิเคราะห์ข้อมูล 3", "https://l/3", "FutureSkill", 0.3),
		},
	}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	got := r.Recommend(context.Background(), models.SkillGap{QueryEN: "Data Analysis"}, models.LanguageThai)
	if len(got) != 2 {
		t.Fatalf("got %d courses, want 2", len(got))
	}
	// Local bucket wins despite the other bucket scoring closer.
	if got[0].URL != "https://l/1" || got[1].URL != "https://l/2" {
		t.Errorf("selected %q, %q", got[0].URL, got[1].URL)
	}
}

func TestRanker_crossBucketPadding(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"DevOps": {
			hit("คอร์ส DevOps", "https://l/1", "SkillLane", 0.2),
			hit("DevOps Foundations", "https://o/1", "Coursera", 0.1),
		},
	}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	got := r.Recommend(context.Background(), models.SkillGap{QueryEN: "DevOps"}, models.LanguageThai)
	if len(got) != 2 {
		t.Fatalf("got %d courses, want local hit padded from other bucket", len(got))
	}
	if got[0].URL != "https://l/1" || got[1].URL != "https://o/1" {
		t.Errorf("selected %q, %q", got[0].URL, got[1].URL)
	}
}

func TestRanker_thaiTitleJoinsLocalBucket(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{
		"Excel": {
			hit("สูตร Excel ครบจบ", "https://l/1", "Udemy", 0.2),
			hit("Excel Basics", "https://o/1", "Udemy", 0.1),
		},
	}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	got := r.Recommend(context.Background(), models.SkillGap{QueryEN: "Excel"}, models.LanguageThai)
	// The Thai-titled course is local by script even though Udemy is not a
	// local-only source.
	if got[0].URL != "https://l/1" {
		t.Errorf("first selection = %q, want the Thai-titled course", got[0].URL)
	}
}

func TestRanker_fallbackPlaceholder(t *testing.T) {
	q := &fakeQuerier{hits: map[string][]index.Hit{}}
	r := NewRanker(q, testRetrievalConfig(), nil)

	skill := models.SkillGap{DisplayName: "Cloud Computing", QueryEN: "Cloud Computing AWS"}
	got := r.Recommend(context.Background(), skill, models.LanguageEnglish)
	if len(got) != 1 {
		t.Fatalf("got %d courses, want exactly one placeholder", len(got))
	}
	fb := got[0]
	if fb.Level != models.FallbackLevel {
		t.Errorf("level = %q", fb.Level)
	}
	if fb.URL != "https://www.coursera.org/search?query=Cloud%20Computing%20AWS" {
		t.Errorf("url = %q", fb.URL)
	}
	if fb.Score != 0 || fb.Duration != "-" {
		t.Errorf("placeholder = %+v", fb)
	}
}

func TestRanker_queryFailureStillFallsBack(t *testing.T) {
	q := &fakeQuerier{err: context.DeadlineExceeded}
	r := NewRanker(q, testRetrievalConfig(), nil)

	got := r.Recommend(context.Background(), models.SkillGap{QueryEN: "Go"}, models.LanguageEnglish)
	if len(got) != 1 || got[0].Level != models.FallbackLevel {
		t.Errorf("query failure should degrade to the placeholder, got %+v", got)
	}
}

func TestRanker_englishQueryNotDuplicated(t *testing.T) {
	calls := 0
	q := &countingQuerier{calls: &calls}
	r := NewRanker(q, testRetrievalConfig(), nil)

	// query_local equal to query_en must not issue a second query.
	r.Recommend(context.Background(), models.SkillGap{QueryEN: "Go", QueryLocal: "Go"}, models.LanguageEnglish)
	if calls != 1 {
		t.Errorf("issued %d queries, want 1", calls)
	}
}

type countingQuerier struct{ calls *int }

func (c *countingQuerier) Query(context.Context, string, int) ([]index.Hit, error) {
	*c.calls++
	return nil, nil
}
