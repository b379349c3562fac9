package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/db"
	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/query"
	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/logger"
	"github.com/kailas-cloud/recipeq/internal/metrics"
)

// Service evaluates query strings against the recipe store.
type Service struct {
	parser    *query.Parser
	finder    Finder
	maxLength int // 0: unlimited
}

// New creates a search service.
func New(parser *query.Parser, finder Finder) *Service {
	return &Service{parser: parser, finder: finder}
}

// WithMaxLength rejects queries longer than n bytes as malformed. n <= 0 disables the cap.
func (s *Service) WithMaxLength(n int) *Service {
	s.maxLength = max(n, 0)
	return s
}

// Parse validates and parses a query string without touching the store.
func (s *Service) Parse(raw string) (query.Query, error) {
	if s.maxLength > 0 && len(raw) > s.maxLength {
		return query.Query{}, fmt.Errorf("query longer than %d bytes: %w", s.maxLength, domain.ErrMalformedQuery)
	}
	q, err := s.parser.Parse(raw)
	if err != nil {
		return query.Query{}, fmt.Errorf("parse query: %w", err)
	}
	return q, nil
}

// Evaluate parses raw and dispatches it to the scope's collection.
// The cursor is lazy and must be closed; zero matches is not an error.
func (s *Service) Evaluate(ctx context.Context, raw string) (db.Cursor, error) {
	cur, _, err := s.evaluate(ctx, raw)
	return cur, err
}

// Search evaluates raw and drains the result.
func (s *Service) Search(ctx context.Context, raw string) ([]recipe.Document, error) {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	cur, q, err := s.evaluate(ctx, raw)
	if err != nil {
		return nil, err
	}
	docs, err := db.Collect(ctx, cur)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(q.Scope), metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("read results: %w", err)
	}

	outcome := metrics.OutcomeMatched
	if len(docs) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.QueriesTotal.WithLabelValues(string(q.Scope), outcome).Inc()
	logger.FromContext(ctx).Debug("query evaluated",
		zap.String("query", raw),
		zap.String("scope", string(q.Scope)),
		zap.Stringer("predicate", q.Predicate),
		zap.Int("matches", len(docs)),
	)
	return docs, nil
}

func (s *Service) evaluate(ctx context.Context, raw string) (db.Cursor, query.Query, error) {
	log := logger.FromContext(ctx)

	q, err := s.Parse(raw)
	if err != nil {
		kind := domain.QueryErrorKind(err)
		metrics.QueriesTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
		metrics.QueryErrorsTotal.WithLabelValues(kind).Inc()
		log.Warn("query rejected", zap.String("query", raw), zap.String("kind", kind), zap.Error(err))
		return nil, query.Query{}, err
	}

	cur, err := s.finder.Find(ctx, q.Collection, q.Predicate)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(q.Scope), metrics.OutcomeFailed).Inc()
		return nil, q, fmt.Errorf("dispatch to %s: %w", q.Collection, err)
	}
	return cur, q, nil
}
