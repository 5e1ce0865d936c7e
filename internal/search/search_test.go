package search

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/not-ani/blockfile/internal/heuristics"
	"github.com/not-ani/blockfile/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "index.sqlite3"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFile(t *testing.T, s *store.Store, rootID int64, relPath string, headings []store.Heading, authors []store.Author) int64 {
	t.Helper()
	ctx := context.Background()
	var fileID int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		id, err := store.UpsertFileTx(ctx, tx, store.File{
			RootID: rootID, RelativePath: relPath, AbsolutePath: "/root/" + relPath,
			ModifiedMs: 1, Size: 10,
		})
		if err != nil {
			return err
		}
		fileID = id
		if err := store.ReplaceHeadingsTx(ctx, tx, id, headings); err != nil {
			return err
		}
		if err := store.ReplaceAuthorsTx(ctx, tx, id, authors); err != nil {
			return err
		}
		return store.SetHeadingCountTx(ctx, tx, id, len(headings))
	})
	if err != nil {
		t.Fatalf("seed file %q: %v", relPath, err)
	}
	return fileID
}

func heading(order, level int, text, fileName, relPath string) store.Heading {
	return store.Heading{
		Order: order, Level: level, Text: text,
		Normalized: heuristics.NormalizeForSearch(text),
		FileName:   fileName, RelativePath: relPath,
	}
}

func author(order int, text, fileName, relPath string) store.Author {
	return store.Author{
		Order: order, Text: text,
		Normalized: heuristics.NormalizeForSearch(text),
		FileName:   fileName, RelativePath: relPath,
	}
}

func TestIndexDefaultsZeroLimitTo120NotTen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root, err := s.AddRoot(ctx, "/root", 1)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	for i := 0; i < 15; i++ {
		relPath := strings.Repeat("x", i+1) + ".docx"
		seedFile(t, s, root.ID, relPath,
			[]store.Heading{heading(1, 1, "Quarterly Report", relPath, relPath)}, nil)
	}

	hits, err := Index(ctx, s, "quarterly report", nil, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(hits) <= 10 {
		t.Errorf("expected the zero-limit default (120) to surface more than the old 10-row floor, got %d hits", len(hits))
	}
}

func TestIndexGuardOnShortQuery(t *testing.T) {
	s := newTestStore(t)
	hits, err := Index(context.Background(), s, "a", nil, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if hits != nil {
		t.Errorf("expected no hits for a sub-2-char query, got %v", hits)
	}
}

func TestIndexFindsHeadingMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root, err := s.AddRoot(ctx, "/root", 1)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	seedFile(t, s, root.ID, "a.docx",
		[]store.Heading{heading(1, 1, "Quarterly Report Summary", "a.docx", "a.docx")}, nil)

	hits, err := Index(ctx, s, "quarterly report", nil, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one heading hit")
	}
	if hits[0].Kind != KindHeading {
		t.Errorf("kind = %q, want heading", hits[0].Kind)
	}
}

func TestIndexFallsBackToPathLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root, err := s.AddRoot(ctx, "/root", 1)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	seedFile(t, s, root.ID, "budget/forecast.docx", nil, nil)

	hits, err := Index(ctx, s, "forecast", nil, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	found := false
	for _, h := range hits {
		if h.Kind == KindFile && h.RelativePath == "budget/forecast.docx" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a path-LIKE file hit, got %+v", hits)
	}
}

func TestIndexFiltersByRoot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rootA, err := s.AddRoot(ctx, "/rootA", 1)
	if err != nil {
		t.Fatalf("add rootA: %v", err)
	}
	rootB, err := s.AddRoot(ctx, "/rootB", 1)
	if err != nil {
		t.Fatalf("add rootB: %v", err)
	}
	seedFile(t, s, rootA.ID, "a.docx", []store.Heading{heading(1, 1, "Annual Review", "a.docx", "a.docx")}, nil)
	seedFile(t, s, rootB.ID, "b.docx", []store.Heading{heading(1, 1, "Annual Review", "b.docx", "b.docx")}, nil)

	hits, err := Index(ctx, s, "annual review", &rootA.ID, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	for _, h := range hits {
		if h.RelativePath != "a.docx" {
			t.Errorf("got hit from outside the filtered root: %+v", h)
		}
	}
}

func TestIndexFuzzyFallbackOnTypo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root, err := s.AddRoot(ctx, "/root", 1)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	seedFile(t, s, root.ID, "a.docx", []store.Heading{heading(1, 1, "Research Methodology", "a.docx", "a.docx")}, nil)

	hits, err := Index(ctx, s, "reserch methodolgy", nil, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected the fuzzy fallback to surface a near-miss heading")
	}
}

func TestFetchFileCandidatesUsesWidePathBound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root, err := s.AddRoot(ctx, "/root", 1)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}

	shortPath := "research.docx"
	longPath := strings.Repeat("folder/", 8) + "research.docx"
	tooLongPath := strings.Repeat("folder/", 30) + "research.docx"
	seedFile(t, s, root.ID, shortPath, nil, nil)
	seedFile(t, s, root.ID, longPath, nil, nil)
	seedFile(t, s, root.ID, tooLongPath, nil, nil)

	qLen := len([]rune("reserch"))
	minLen, maxLen := qLen-6, qLen+160
	if minLen < 0 {
		minLen = 0
	}

	candidates, err := fetchFileCandidates(ctx, s.DB(), nil, minLen, maxLen, 100)
	if err != nil {
		t.Fatalf("fetch file candidates: %v", err)
	}

	found := map[string]bool{}
	for _, c := range candidates {
		found[c.relativePath] = true
	}
	if !found[shortPath] {
		t.Errorf("expected short path within bounds, candidates: %+v", candidates)
	}
	if !found[longPath] {
		t.Errorf("expected a long-but-within-bound path to survive the widened filter, candidates: %+v", candidates)
	}
	if found[tooLongPath] {
		t.Errorf("expected a path beyond qlen+160 to still be excluded, candidates: %+v", candidates)
	}
}

func TestBuildMatchExpressionCapsAtTwelveTokens(t *testing.T) {
	q := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen"
	expr := buildMatchExpression(q)
	if got := len(strings.Split(expr, " AND ")); got != maxQueryTokens {
		t.Errorf("token count = %d, want %d", got, maxQueryTokens)
	}
}
