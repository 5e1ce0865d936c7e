// Package search implements the hybrid search engine: BM25-ranked
// full-text queries over headings and authors, a path LIKE scan, and
// an adaptive-threshold fuzzy fallback.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/not-ani/blockfile/internal/heuristics"
	"github.com/not-ani/blockfile/internal/store"
)

// Kind identifies what a SearchHit matched against.
type Kind string

const (
	KindHeading Kind = "heading"
	KindAuthor  Kind = "author"
	KindFile    Kind = "file"
)

// Hit is one ranked search result.
type Hit struct {
	Kind         Kind
	FileID       int64
	FileName     string
	RelativePath string
	Text         string
	Level        int
	Order        int
	Score        float64
}

const maxQueryTokens = 12

// Index runs search_index(query, root, limit) per spec §4.F.
func Index(ctx context.Context, db *store.Store, query string, rootID *int64, limit int) ([]Hit, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < 2 {
		return nil, nil
	}

	if limit <= 0 {
		limit = 120
	}
	lim := clampInt(limit, 10, 400)

	matchExpr := buildMatchExpression(trimmed)
	normalizedQuery := heuristics.NormalizeForSearch(trimmed)

	seenFiles := make(map[int64]bool)
	seenHeadings := make(map[string]bool)
	seenAuthors := make(map[string]bool)

	var hits []Hit

	headingHits, err := queryHeadingFTS(ctx, db.DB(), matchExpr, rootID, lim)
	if err != nil {
		return nil, fmt.Errorf("query heading full-text index; %w", err)
	}
	for _, h := range headingHits {
		key := headingDedupKey(h)
		if seenHeadings[key] {
			continue
		}
		seenHeadings[key] = true
		seenFiles[h.FileID] = true
		hits = append(hits, h)
	}

	if len(hits) < lim {
		authorHits, err := queryAuthorFTS(ctx, db.DB(), matchExpr, rootID, lim)
		if err != nil {
			return nil, fmt.Errorf("query author full-text index; %w", err)
		}
		for _, a := range authorHits {
			key := authorDedupKey(a)
			if seenAuthors[key] {
				continue
			}
			seenAuthors[key] = true
			seenFiles[a.FileID] = true
			hits = append(hits, a)
		}
	}

	if len(hits) < lim {
		remaining := lim - len(hits)
		pathHits, err := queryPathLike(ctx, db.DB(), normalizedQuery, trimmed, rootID, seenFiles, remaining)
		if err != nil {
			return nil, fmt.Errorf("query path like scan; %w", err)
		}
		for _, f := range pathHits {
			if seenFiles[f.FileID] {
				continue
			}
			seenFiles[f.FileID] = true
			hits = append(hits, f)
		}
	}

	if len(hits) < lim {
		fuzzyHits, err := fuzzyFallback(ctx, db.DB(), normalizedQuery, rootID, lim, seenFiles, seenHeadings, seenAuthors)
		if err != nil {
			return nil, fmt.Errorf("query fuzzy fallback; %w", err)
		}
		hits = append(hits, fuzzyHits...)
	}

	return hits, nil
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// buildMatchExpression takes the first 12 normalized tokens, suffixes
// each with "*", and joins them with " AND " to build an FTS5 MATCH
// expression.
func buildMatchExpression(query string) string {
	normalized := heuristics.NormalizeForSearch(query)
	tokens := strings.Fields(normalized)
	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}
	for i, t := range tokens {
		tokens[i] = t + "*"
	}
	return strings.Join(tokens, " AND ")
}

func headingDedupKey(h Hit) string {
	return fmt.Sprintf("%d|%d|%d|%s", h.FileID, h.Level, h.Order, h.Text)
}

func authorDedupKey(h Hit) string {
	return fmt.Sprintf("%d|%d|%s", h.FileID, h.Order, h.Text)
}

func queryHeadingFTS(ctx context.Context, db *sql.DB, matchExpr string, rootID *int64, limit int) ([]Hit, error) {
	if matchExpr == "" {
		return nil, nil
	}
	args := []any{matchExpr}
	where := ""
	if rootID != nil {
		where = " AND files.root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT headings.file_id, headings.heading_order, headings.level, headings.text,
		       headings.file_name, headings.relative_path,
		       bm25(search_fts, 12, 6, 1.5, 1.0) AS rank
		FROM search_fts
		JOIN headings ON headings.id = search_fts.rowid
		JOIN files ON files.id = headings.file_id
		WHERE search_fts MATCH ?`+where+`
		ORDER BY rank
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		h.Kind = KindHeading
		if err := rows.Scan(&h.FileID, &h.Order, &h.Level, &h.Text, &h.FileName, &h.RelativePath, &h.Score); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func queryAuthorFTS(ctx context.Context, db *sql.DB, matchExpr string, rootID *int64, limit int) ([]Hit, error) {
	if matchExpr == "" {
		return nil, nil
	}
	args := []any{matchExpr}
	where := ""
	if rootID != nil {
		where = " AND files.root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT authors.file_id, authors.author_order, authors.text,
		       authors.file_name, authors.relative_path,
		       bm25(author_fts, 16, 7, 1.5, 1.0) AS rank
		FROM author_fts
		JOIN authors ON authors.id = author_fts.rowid
		JOIN files ON files.id = authors.file_id
		WHERE author_fts MATCH ?`+where+`
		ORDER BY rank
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		h.Kind = KindAuthor
		var rank float64
		if err := rows.Scan(&h.FileID, &h.Order, &h.Text, &h.FileName, &h.RelativePath, &rank); err != nil {
			return nil, err
		}
		h.Score = rank + 400
		out = append(out, h)
	}
	return out, rows.Err()
}

func queryPathLike(ctx context.Context, db *sql.DB, normalizedQuery, rawQuery string, rootID *int64, seenFiles map[int64]bool, limit int) ([]Hit, error) {
	pattern := "%" + strings.ToLower(rawQuery) + "%"
	args := []any{pattern}
	where := ""
	if rootID != nil {
		where = " AND root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT id, relative_path
		FROM files
		WHERE lower(relative_path) LIKE ?`+where+`
		ORDER BY relative_path
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var fileID int64
		var relPath string
		if err := rows.Scan(&fileID, &relPath); err != nil {
			return nil, err
		}
		if seenFiles[fileID] {
			continue
		}
		out = append(out, Hit{
			Kind:         KindFile,
			FileID:       fileID,
			RelativePath: relPath,
			Score:        9999,
		})
	}
	return out, rows.Err()
}

// fuzzyThreshold returns the adaptive similarity threshold for a query
// of the given rune length, per spec §4.F.
func fuzzyThreshold(qLen int) float64 {
	switch {
	case qLen <= 4:
		return 0.58
	case qLen <= 7:
		return 0.64
	case qLen <= 12:
		return 0.70
	default:
		return 0.74
	}
}

type fuzzyCandidate struct {
	fileID       int64
	order        int
	level        int
	text         string
	normalized   string
	fileName     string
	relativePath string
}

func fuzzyFallback(ctx context.Context, db *sql.DB, normalizedQuery string, rootID *int64, limit int, seenFiles map[int64]bool, seenHeadings, seenAuthors map[string]bool) ([]Hit, error) {
	if normalizedQuery == "" {
		return nil, nil
	}
	qLen := len([]rune(normalizedQuery))
	threshold := fuzzyThreshold(qLen)

	headingLimit := clampInt(limit*14, 120, 1800)
	authorLimit := clampInt(limit*10, 100, 1500)
	fileLimit := clampInt(limit*8, 80, 1200)

	minLen, maxLen := qLen-6, qLen+36
	if minLen < 0 {
		minLen = 0
	}
	fileMinLen, fileMaxLen := qLen-6, qLen+160
	if fileMinLen < 0 {
		fileMinLen = 0
	}

	var batch []Hit

	headingCandidates, err := fetchHeadingCandidates(ctx, db, rootID, minLen, maxLen, headingLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range headingCandidates {
		key := fmt.Sprintf("%d|%d|%d|%s", c.fileID, c.level, c.order, c.text)
		if seenHeadings[key] {
			continue
		}
		sim := fuzzySimilarity(normalizedQuery, c.normalized)
		if sim < threshold {
			continue
		}
		batch = append(batch, Hit{
			Kind: KindHeading, FileID: c.fileID, FileName: c.fileName, RelativePath: c.relativePath,
			Text: c.text, Level: c.level, Order: c.order,
			Score: 2000 + (1-sim)*1000,
		})
		seenHeadings[key] = true
	}

	authorCandidates, err := fetchAuthorCandidates(ctx, db, rootID, minLen, maxLen, authorLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range authorCandidates {
		key := fmt.Sprintf("%d|%d|%s", c.fileID, c.order, c.text)
		if seenAuthors[key] {
			continue
		}
		sim := fuzzySimilarity(normalizedQuery, c.normalized)
		if sim < threshold {
			continue
		}
		batch = append(batch, Hit{
			Kind: KindAuthor, FileID: c.fileID, FileName: c.fileName, RelativePath: c.relativePath,
			Text: c.text, Order: c.order,
			Score: 3000 + (1-sim)*1000,
		})
		seenAuthors[key] = true
	}

	fileCandidates, err := fetchFileCandidates(ctx, db, rootID, fileMinLen, fileMaxLen, fileLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range fileCandidates {
		if seenFiles[c.fileID] {
			continue
		}
		sim := fuzzySimilarity(normalizedQuery, c.normalized)
		if sim < threshold {
			continue
		}
		batch = append(batch, Hit{
			Kind: KindFile, FileID: c.fileID, RelativePath: c.relativePath,
			Score: 4000 + (1-sim)*1000,
		})
		seenFiles[c.fileID] = true
	}

	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].Score != batch[j].Score {
			return batch[i].Score < batch[j].Score
		}
		return batch[i].RelativePath < batch[j].RelativePath
	})

	return batch, nil
}

func fetchHeadingCandidates(ctx context.Context, db *sql.DB, rootID *int64, minLen, maxLen, limit int) ([]fuzzyCandidate, error) {
	args := []any{minLen, maxLen}
	where := ""
	if rootID != nil {
		where = " AND files.root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT headings.file_id, headings.heading_order, headings.level, headings.text,
		       headings.normalized, headings.file_name, headings.relative_path
		FROM headings
		JOIN files ON files.id = headings.file_id
		WHERE length(headings.normalized) BETWEEN ? AND ?`+where+`
		ORDER BY files.modified_ms DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fuzzyCandidate
	for rows.Next() {
		var c fuzzyCandidate
		if err := rows.Scan(&c.fileID, &c.order, &c.level, &c.text, &c.normalized, &c.fileName, &c.relativePath); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func fetchAuthorCandidates(ctx context.Context, db *sql.DB, rootID *int64, minLen, maxLen, limit int) ([]fuzzyCandidate, error) {
	args := []any{minLen, maxLen}
	where := ""
	if rootID != nil {
		where = " AND files.root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT authors.file_id, authors.author_order, authors.text,
		       authors.normalized, authors.file_name, authors.relative_path
		FROM authors
		JOIN files ON files.id = authors.file_id
		WHERE length(authors.normalized) BETWEEN ? AND ?`+where+`
		ORDER BY files.modified_ms DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fuzzyCandidate
	for rows.Next() {
		var c fuzzyCandidate
		if err := rows.Scan(&c.fileID, &c.order, &c.text, &c.normalized, &c.fileName, &c.relativePath); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func fetchFileCandidates(ctx context.Context, db *sql.DB, rootID *int64, minLen, maxLen, limit int) ([]fuzzyCandidate, error) {
	args := []any{minLen, maxLen}
	where := ""
	if rootID != nil {
		where = " AND root_id = ?"
		args = append(args, *rootID)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, relative_path
		FROM files
		WHERE length(relative_path) BETWEEN ? AND ?%s
		ORDER BY modified_ms DESC
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fuzzyCandidate
	for rows.Next() {
		var c fuzzyCandidate
		if err := rows.Scan(&c.fileID, &c.relativePath); err != nil {
			return nil, err
		}
		c.normalized = heuristics.NormalizeForSearch(c.relativePath)
		out = append(out, c)
	}
	return out, rows.Err()
}
