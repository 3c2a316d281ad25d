// Package research finds precedent cases similar to the intake facts.
//
// Two backends implement the same Similar operation: a pgvector-backed
// nearest-neighbour search over the cases table, and a compiled-in seed
// corpus with lexical ranking for demo mode (no database, no embedder).
package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/kanonhq/kanon/internal/log"
)

// DefaultTopK is the number of similar cases returned to the wizard.
const DefaultTopK = 5

// MaxTopK bounds a caller-supplied limit.
const MaxTopK = 20

// embedTimeout bounds the embedding call inside a search.
const embedTimeout = 15 * time.Second

// ErrEmptyQuery indicates a similarity search with no query text.
var ErrEmptyQuery = errors.New("empty research query")

// Case is one precedent case. Certainty is a 0-1 relevance signal derived
// from cosine distance (vector backend) or lexical overlap (seed backend).
type Case struct {
	CaseID      string  `json:"caseId"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Judge       string  `json:"judge,omitempty"`
	Court       string  `json:"court,omitempty"`
	DateFiled   string  `json:"dateFiled,omitempty"`
	SourceFile  string  `json:"sourceFile,omitempty"`
	AbsoluteURL string  `json:"absoluteUrl,omitempty"`
	Certainty   float64 `json:"certainty"`
}

// Embedder produces the query embedding for vector search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PostgresSearcher runs nearest-neighbour search over the cases table.
type PostgresSearcher struct {
	pool     *pgxpool.Pool
	embedder Embedder
	logger   log.Logger
}

// NewPostgresSearcher creates a vector-backed searcher.
func NewPostgresSearcher(pool *pgxpool.Pool, embedder Embedder, logger log.Logger) *PostgresSearcher {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PostgresSearcher{pool: pool, embedder: embedder, logger: logger}
}

// Similar returns the topK cases nearest to the query text by cosine
// distance.
func (s *PostgresSearcher) Similar(ctx context.Context, query string, topK int) ([]Case, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	topK = clampTopK(topK)

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	embedding, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx,
		`SELECT case_id, title, body, judge, court,
		        COALESCE(to_char(date_filed, 'YYYY-MM-DD'), ''),
		        source_file, absolute_url,
		        1 - (embedding <=> $1) AS certainty
		 FROM cases
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("searching cases: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.CaseID, &c.Title, &c.Body, &c.Judge, &c.Court,
			&c.DateFiled, &c.SourceFile, &c.AbsoluteURL, &c.Certainty); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}

	s.logger.Debug("vector case search", "query_len", len(query), "results", len(cases))
	return cases, nil
}

// SeedSearcher ranks the compiled-in corpus by lexical overlap. It keeps the
// wizard usable with no database or API key configured.
type SeedSearcher struct {
	cases []Case
}

// NewSeedSearcher creates a searcher over the embedded seed corpus.
func NewSeedSearcher() *SeedSearcher {
	return &SeedSearcher{cases: seedCases()}
}

// Similar returns the topK seed cases with the highest token overlap against
// the query. Ties break on corpus order for stable results.
func (s *SeedSearcher) Similar(_ context.Context, query string, topK int) ([]Case, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	topK = clampTopK(topK)

	queryTokens := tokenize(query)
	type scored struct {
		c     Case
		score float64
		order int
	}
	ranked := make([]scored, 0, len(s.cases))
	for i, c := range s.cases {
		score := overlap(queryTokens, tokenize(c.Title+" "+c.Body))
		ranked = append(ranked, scored{c: c, score: score, order: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	out := make([]Case, 0, topK)
	for _, r := range ranked[:topK] {
		c := r.c
		c.Certainty = r.score
		out = append(out, c)
	}
	return out, nil
}

func clampTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// tokenize lowercases and splits on non-letter/digit runs, dropping short
// stopword-like tokens.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	}) {
		if len(tok) > 2 {
			tokens[tok] = true
		}
	}
	return tokens
}

// overlap returns the fraction of query tokens present in doc, in [0,1].
func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for tok := range query {
		if doc[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
