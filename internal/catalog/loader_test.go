package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/models"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAll_csv(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "coursera.csv",
		"id,title,description,level,category,duration,url,image_url,source\n"+
			"c1,Intro to Go,Learn Go basics,Beginner,Programming,12 hours,https://example.com/c1,https://img/c1.png,Coursera\n"+
			"c2,Data Wrangling,\"Pandas, with newlines\",Intermediate,Data,,https://example.com/c2,,Coursera\n"+
			",No ID Course,dropped,,,,https://example.com/none,,\n")

	loader := NewLoader(config.CatalogConfig{
		DataDir: dir,
		Sources: []config.SourceConfig{{Name: "coursera", Path: "coursera.csv"}},
	}, nil)

	snap, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Failed) != 0 {
		t.Fatalf("failed sources: %v", snap.Failed)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("got %d records, want 2 (row without id skipped)", len(snap.Records))
	}

	first := snap.Records[0]
	if first.ID != "coursera:c1" {
		t.Errorf("ID = %q, want namespaced coursera:c1", first.ID)
	}
	if first.Source != "Coursera" {
		t.Errorf("Source = %q", first.Source)
	}

	// Missing duration normalizes at load time.
	if snap.Records[1].Duration != models.DefaultDuration {
		t.Errorf("Duration = %q, want %q", snap.Records[1].Duration, models.DefaultDuration)
	}
	if snap.Records[1].Description != "Pandas, with newlines" {
		t.Errorf("quoted field parsed as %q", snap.Records[1].Description)
	}
}

func TestLoadAll_xlsx(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"id", "title", "description", "level", "category", "duration", "url", "image_url", "source"},
		{"s1", "Thai Cooking", "Cook pad thai", "Beginner", "Lifestyle", "3 hours", "https://example.com/s1", "", "SkillLane"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "skilllane.xlsx")); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(config.CatalogConfig{
		DataDir: dir,
		Sources: []config.SourceConfig{{Name: "skilllane", Path: "skilllane.xlsx"}},
	}, nil)

	snap, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(snap.Records))
	}
	if snap.Records[0].ID != "skilllane:s1" {
		t.Errorf("ID = %q", snap.Records[0].ID)
	}
	if snap.Records[0].Title != "Thai Cooking" {
		t.Errorf("Title = %q", snap.Records[0].Title)
	}
}

func TestLoadAll_missingSourceReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "ok.csv", "id,title,url\nc1,Course One,https://example.com/c1\n")

	loader := NewLoader(config.CatalogConfig{
		DataDir: dir,
		Sources: []config.SourceConfig{
			{Name: "ok", Path: "ok.csv"},
			{Name: "gone", Path: "gone.csv"},
		},
	}, nil)

	snap, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Records) != 1 {
		t.Errorf("got %d records, want 1 from the healthy source", len(snap.Records))
	}
	if len(snap.Failed) != 1 || snap.Failed[0] != "gone" {
		t.Errorf("Failed = %v, want [gone]", snap.Failed)
	}
}

func TestLoadAll_missingIDColumn(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "bad.csv", "title,url\nCourse,https://example.com\n")

	loader := NewLoader(config.CatalogConfig{
		DataDir: dir,
		Sources: []config.SourceConfig{{Name: "bad", Path: "bad.csv"}},
	}, nil)

	snap, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Failed) != 1 {
		t.Errorf("source without id column should be reported as failed, got %v", snap.Failed)
	}
}
