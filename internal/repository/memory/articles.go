package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ArticleRepository is a mutex-guarded article store.
type ArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	order    []string
}

// NewArticleRepository builds an empty store.
func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{articles: make(map[string]domain.Article)}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	r.articles[article.ID] = cloneArticle(*article)
	r.order = append(r.order, article.ID)
	return nil
}

func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[article.ID]; !ok {
		return util.NewNotFound("article", nil)
	}
	article.UpdatedAt = time.Now()
	r.articles[article.ID] = cloneArticle(*article)
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return util.NewNotFound("article", nil)
	}
	delete(r.articles, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, util.NewNotFound("article", nil)
	}
	copied := cloneArticle(article)
	return &copied, nil
}

// List returns articles in insertion order when statuses tie on update time,
// which keeps search scoring deterministic.
func (r *ArticleRepository) List(ctx context.Context, status domain.ArticleStatus) ([]domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Article
	for _, id := range r.order {
		article := r.articles[id]
		if status != "" && article.Status != status {
			continue
		}
		result = append(result, cloneArticle(article))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func cloneArticle(a domain.Article) domain.Article {
	a.Tags = append([]string(nil), a.Tags...)
	if a.AuthorID != nil {
		v := *a.AuthorID
		a.AuthorID = &v
	}
	return a
}
