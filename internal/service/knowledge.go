package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/cockpit-service/internal/cache"
	"github.com/spec-kit/cockpit-service/internal/domain"
	"github.com/spec-kit/cockpit-service/internal/repository"
	"github.com/spec-kit/cockpit-service/internal/upstream"
)

const solutionCacheTTL = 30 * time.Minute

// ArticleSearcher is the knowledge-base subset of the ticketing client.
type ArticleSearcher interface {
	FetchKnowledgeArticles(ctx context.Context, search string, limit int) ([]domain.KnowledgeArticle, error)
}

// PointGenerator produces generated guidance points when no knowledge
// article matches.
type PointGenerator interface {
	GenerateSolutionPoints(ctx context.Context, sc upstream.SolutionContext) ([]string, error)
}

// KnowledgeService builds the solution summary for an incident: published
// knowledge articles first, generated guidance as fallback. Results are
// cached per incident so reselecting a ticket does not re-query, and
// non-empty summaries are mirrored into the local snapshot store.
type KnowledgeService struct {
	articles  ArticleSearcher
	generator PointGenerator
	store     cache.Store
	incidents repository.IncidentRepository
	logger    *zap.Logger
}

// NewKnowledgeService constructs the service. generator may be nil when
// generation is not configured; the knowledge-base path still works.
func NewKnowledgeService(articles ArticleSearcher, generator PointGenerator, store cache.Store, incidents repository.IncidentRepository, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{articles: articles, generator: generator, store: store, incidents: incidents, logger: logger}
}

// Summarize returns guidance points for the incident, bounded to limit
// source articles. An empty summary means the upstreams had nothing to
// say; it is not an error.
func (s *KnowledgeService) Summarize(ctx context.Context, incident domain.Incident, deviceName string, limit int) (domain.SolutionSummary, error) {
	if limit <= 0 {
		limit = DefaultSolutionLimit
	}

	cacheKey := "solution:" + incident.Number
	if payload, ok := s.store.Get(ctx, cacheKey); ok {
		var cached domain.SolutionSummary
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	summary, err := s.build(ctx, incident, deviceName, limit)
	if err != nil {
		return domain.SolutionSummary{}, err
	}
	if !summary.Empty() {
		if payload, err := json.Marshal(summary); err == nil {
			s.store.Set(ctx, cacheKey, payload, solutionCacheTTL)
		}
		if err := s.incidents.SaveSolution(ctx, incident.Number, &summary); err != nil {
			s.logger.Warn("solution persistence failed",
				zap.String("number", incident.Number), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *KnowledgeService) build(ctx context.Context, incident domain.Incident, deviceName string, limit int) (domain.SolutionSummary, error) {
	articles, err := s.articles.FetchKnowledgeArticles(ctx, incident.Title, limit)
	if err != nil {
		// The generated path can still answer; keep the error only when
		// generation is unavailable too.
		s.logger.Warn("knowledge article search failed",
			zap.String("number", incident.Number), zap.Error(err))
		if s.generator == nil {
			return domain.SolutionSummary{}, err
		}
	}

	if len(articles) > 0 {
		points := make([]string, 0, len(articles))
		for _, article := range articles {
			points = append(points, articlePoint(article))
		}
		return domain.SolutionSummary{
			IncidentNumber: incident.Number,
			Points:         points,
			Source:         domain.SummarySourceKnowledgeBase,
			ArticleCount:   len(articles),
			Confidence:     "high",
		}, nil
	}

	if s.generator == nil {
		return domain.SolutionSummary{
			IncidentNumber: incident.Number,
			Source:         domain.SummarySourceKnowledgeBase,
		}, nil
	}

	points, err := s.generator.GenerateSolutionPoints(ctx, upstream.SolutionContext{
		Description: strings.TrimSpace(incident.Title + ". " + incident.Description),
		Category:    incident.Category,
		DeviceName:  deviceName,
	})
	if err != nil {
		return domain.SolutionSummary{}, err
	}
	return domain.SolutionSummary{
		IncidentNumber: incident.Number,
		Points:         points,
		Source:         domain.SummarySourceGenerated,
		Confidence:     "medium",
	}, nil
}

// articlePoint flattens one article into a single guidance line.
func articlePoint(article domain.KnowledgeArticle) string {
	snippet := strings.TrimSpace(article.Snippet)
	if snippet == "" {
		return article.Title
	}
	if len(snippet) > 200 {
		snippet = snippet[:200] + "…"
	}
	if article.Title == "" {
		return snippet
	}
	return article.Title + ": " + snippet
}
