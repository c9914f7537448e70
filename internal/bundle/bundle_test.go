package bundle_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/listsum/internal/bundle"
)

func TestBuildContextIncludesSummariesAndInstructions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "eval")
	b := bundle.New("eval", "", dir)
	b.SetInstructions("  Describe the label distribution  ")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.AddSummary(bundle.Entry{
		Source:  "train.txt",
		Field:   "label",
		Summary: "The list contains 3 items, including 0 None values.",
		AddedAt: base,
	})
	b.AddSummary(bundle.Entry{
		Source:      "dialogs.jsonl",
		Query:       "[.turns[].speaker]",
		Description: "speakers per dialog",
		Summary:     "The list contains 2 items, including 1 None values.",
		AddedAt:     base.Add(time.Second),
	})

	ctx, tokens, err := b.BuildContext()
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected tokens > 0")
	}
	if !strings.HasPrefix(ctx, "[INSTRUCTIONS]\nDescribe the label distribution\n\n[COLUMN SUMMARIES]\n") {
		t.Fatalf("unexpected header:\n%s", ctx)
	}
	first := strings.Index(ctx, "--- Column: label (train.txt) ---")
	second := strings.Index(ctx, "--- Column: [.turns[].speaker] (dialogs.jsonl) ---\nDescription: speakers per dialog\n")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("sections missing or out of order:\n%s", ctx)
	}
	if !strings.HasSuffix(ctx, "[TASK]\nBased on the column summaries above, please: Describe the label distribution\n") {
		t.Fatalf("missing task section:\n%s", ctx)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	b := bundle.New("empty", "", t.TempDir())
	if _, _, err := b.BuildContext(); !errors.Is(err, bundle.ErrEmptyBundle) {
		t.Fatalf("expected ErrEmptyBundle, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	dir := bundle.Dir(root, "eval")
	b := bundle.New("eval", "evaluation columns", dir)
	e := b.AddSummary(bundle.Entry{Source: "a.csv", Field: "score", Category: "numeric", NExamples: 5, Summary: strings.Repeat("x", 40)})
	if e.ID == "" || e.Tokens != 10 {
		t.Fatalf("entry not filled: %+v", e)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bundle.json")); err != nil {
		t.Fatalf("bundle.json missing: %v", err)
	}

	got, err := bundle.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "eval" || got.Description != "evaluation columns" || got.RootDir() != dir {
		t.Fatalf("unexpected bundle: %+v", got)
	}
	le, ok := got.Entries[e.ID]
	if !ok || le.Field != "score" || le.NExamples != 5 || le.Category != "numeric" {
		t.Fatalf("entry not persisted: %+v", got.Entries)
	}
	if got.Tokens() != 10 {
		t.Fatalf("tokens = %d", got.Tokens())
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := bundle.Load(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, bundle.ErrBundleNotFound) {
		t.Fatalf("expected ErrBundleNotFound, got %v", err)
	}
}

func TestSaveWithoutRoot(t *testing.T) {
	var b bundle.Bundle
	if err := b.Save(); err == nil {
		t.Fatalf("expected error without root dir")
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha"} {
		if err := bundle.New(name, "", bundle.Dir(root, name)).Save(); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "stray"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := bundle.List(root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "zeta" {
		t.Fatalf("unexpected list: %v", got)
	}

	none, err := bundle.List(filepath.Join(root, "absent"))
	if err != nil || len(none) != 0 {
		t.Fatalf("missing dir: %v %v", none, err)
	}
}

func TestRemoveByPrefix(t *testing.T) {
	b := bundle.New("b", "", t.TempDir())
	e := b.AddSummary(bundle.Entry{Source: "a.csv", Field: "x", Summary: "s"})
	b.AddSummary(bundle.Entry{Source: "a.csv", Field: "y", Summary: "s"})

	if _, err := b.Remove("does-not-exist"); !errors.Is(err, bundle.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	got, err := b.Remove(e.ID[:8])
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got.Field != "x" || len(b.Entries) != 1 {
		t.Fatalf("unexpected state after remove: %+v %d", got, len(b.Entries))
	}
}

func TestBreakdown(t *testing.T) {
	b := bundle.New("b", "", t.TempDir())
	b.SetInstructions("abcdefgh")
	b.AddSummary(bundle.Entry{Source: "a.csv", Field: "x", Summary: strings.Repeat("y", 12)})
	bd := b.Breakdown()
	if bd["[INSTRUCTIONS]"] != 2 || bd["--- Column: x (a.csv) ---"] != 3 {
		t.Fatalf("unexpected breakdown: %v", bd)
	}
}
