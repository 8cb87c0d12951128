package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Scoring weights per query token. Tag hits outrank title hits; matching is
// substring containment, matching the product's search behavior.
const (
	titleScore = 3
	bodyScore  = 2
	tagScore   = 4
)

// KBService scores knowledge-base articles against queries and manages the
// article collection.
type KBService struct {
	articles repository.ArticleRepository
}

// NewKBService constructs the service.
func NewKBService(articles repository.ArticleRepository) *KBService {
	return &KBService{articles: articles}
}

// Search returns up to limit published articles ranked against query,
// descending by score. Candidate order is preserved on score ties. When a
// category is given (and is not "other"), only articles tagged with it are
// considered.
func (s *KBService) Search(ctx context.Context, query string, category domain.TicketCategory, limit int) ([]domain.Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, util.NewValidationError("search query required", nil)
	}
	if limit <= 0 {
		limit = 3
	}

	terms := searchTerms(query)
	candidates, err := s.articles.List(ctx, domain.ArticleStatusPublished)
	if err != nil {
		return nil, err
	}

	type scored struct {
		article domain.Article
		score   int
	}
	var results []scored
	for _, article := range candidates {
		if category != "" && category != domain.CategoryOther && !hasTag(article.Tags, string(category)) {
			continue
		}
		score := scoreArticle(article, terms)
		if score == 0 {
			continue
		}
		results = append(results, scored{article: article, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	articles := make([]domain.Article, 0, len(results))
	for _, item := range results {
		articles = append(articles, item.article)
	}
	return articles, nil
}

// searchTerms tokenizes by whitespace and discards tokens of length <= 2.
func searchTerms(query string) []string {
	var terms []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if len(token) > 2 {
			terms = append(terms, token)
		}
	}
	return terms
}

func scoreArticle(article domain.Article, terms []string) int {
	title := strings.ToLower(article.Title)
	body := strings.ToLower(article.Body)
	tags := strings.ToLower(strings.Join(article.Tags, " "))

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleScore
		}
		if strings.Contains(body, term) {
			score += bodyScore
		}
		if strings.Contains(tags, term) {
			score += tagScore
		}
	}
	return score
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// CreateArticle validates and stores a new article.
func (s *KBService) CreateArticle(ctx context.Context, authorID string, article *domain.Article) error {
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Body) == "" {
		return util.NewValidationError("title and body required", nil)
	}
	if article.Status == "" {
		article.Status = domain.ArticleStatusDraft
	}
	if article.Status != domain.ArticleStatusDraft && article.Status != domain.ArticleStatusPublished {
		return util.NewValidationError("invalid article status", map[string]any{"status": article.Status})
	}
	article.AuthorID = &authorID
	return s.articles.Create(ctx, article)
}

// UpdateArticle applies changes to an existing article.
func (s *KBService) UpdateArticle(ctx context.Context, article *domain.Article) error {
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Body) == "" {
		return util.NewValidationError("title and body required", nil)
	}
	if article.Status != domain.ArticleStatusDraft && article.Status != domain.ArticleStatusPublished {
		return util.NewValidationError("invalid article status", map[string]any{"status": article.Status})
	}
	return s.articles.Update(ctx, article)
}

// DeleteArticle removes an article.
func (s *KBService) DeleteArticle(ctx context.Context, id string) error {
	return s.articles.Delete(ctx, id)
}

// GetArticle fetches one article.
func (s *KBService) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// ListArticles returns articles, optionally filtered by status.
func (s *KBService) ListArticles(ctx context.Context, status domain.ArticleStatus) ([]domain.Article, error) {
	return s.articles.List(ctx, status)
}

// ArticlesByIDs resolves article ids preserving order; unknown ids are
// skipped.
func (s *KBService) ArticlesByIDs(ctx context.Context, ids []string) ([]domain.Article, error) {
	articles := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		article, err := s.articles.GetByID(ctx, id)
		if err != nil {
			if util.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, nil
}
