package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

// FeedService answers the blog listing, search and similarity queries. Store
// failures never escape: callers always get something renderable.
type FeedService struct {
	postRepo repository.PostRepository
}

func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// degradedListing is served when the store cannot answer.
func degradedListing() *model.Listing {
	return &model.Listing{
		Blogs:       []model.Post{},
		Trending:    []model.Post{},
		CurrentPage: 1,
		TotalPages:  1,
		Degraded:    true,
	}
}

// totalPages is ceil(total/PageSize), never less than 1.
func totalPages(total int) int {
	pages := (total + model.PageSize - 1) / model.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// maxPage keeps (page-1)*PageSize within int range.
const maxPage = math.MaxInt / model.PageSize

// List returns one page of posts matching q, newest first, plus the trending
// set. Count, page and trending are fetched concurrently.
func (s *FeedService) List(ctx context.Context, q model.ListQuery) *model.Listing {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	query := strings.TrimSpace(q.Query)
	filter := repository.PostFilter{Query: query}

	var (
		total    int
		blogs    []model.Post
		trending []model.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.postRepo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		blogs, err = s.postRepo.List(gctx, filter, (page-1)*model.PageSize, model.PageSize)
		return err
	})
	g.Go(func() error {
		var err error
		trending, err = s.postRepo.List(gctx, repository.PostFilter{}, 0, model.TrendingLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("component", "feed_service").
			Int("page", page).
			Str("query", query).
			Msg("listing failed, serving empty page")
		return degradedListing()
	}

	if blogs == nil {
		blogs = []model.Post{}
	}
	if trending == nil {
		trending = []model.Post{}
	}
	return &model.Listing{
		Blogs:       blogs,
		Trending:    trending,
		CurrentPage: page,
		TotalPages:  totalPages(total),
		Query:       query,
	}
}

// Similar returns up to SimilarLimit other posts sharing a tag with tags.
func (s *FeedService) Similar(ctx context.Context, tags []string, exclude uuid.UUID) []model.Post {
	posts, err := s.postRepo.FindSimilar(ctx, tags, exclude, model.SimilarLimit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("component", "feed_service").
			Str("post_id", exclude.String()).
			Msg("similar posts lookup failed")
		return []model.Post{}
	}
	return posts
}
