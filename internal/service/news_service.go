package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/repository"
)

// maxEntriesPerFeed 每个来源最多检查的条目数
const maxEntriesPerFeed = 20

// MaxNewsPerReply 单次刷新或推送最多显示的新闻数
const MaxNewsPerReply = 5

// NewsItem 一条命中关键字的新闻
type NewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FeedFetcher 抓取单个 RSS/Atom 来源
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// GofeedFetcher 基于 gofeed 的默认实现
type GofeedFetcher struct {
	parser *gofeed.Parser
}

// NewGofeedFetcher 创建默认抓取器
func NewGofeedFetcher() *GofeedFetcher {
	return &GofeedFetcher{parser: gofeed.NewParser()}
}

// Fetch 抓取并解析来源
func (f *GofeedFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	return f.parser.ParseURLWithContext(feedURL, ctx)
}

// NewsService 新闻订阅业务
type NewsService interface {
	AddKeyword(ctx context.Context, userID, keyword string) error
	RemoveKeyword(ctx context.Context, userID, keyword string) (bool, error)
	ListKeywords(ctx context.Context, userID string) ([]string, error)

	AddFeed(ctx context.Context, userID, feedURL string) error
	RemoveFeed(ctx context.Context, userID, feedURL string) (bool, error)
	// ListFeeds 返回用户自订来源；为空时返回默认来源清单
	ListFeeds(ctx context.Context, userID string) (urls []string, usingDefault bool, err error)

	// FetchMatches 抓取用户来源，返回命中关键字且未推送过的全部新闻。
	// 不写去重缓存，何时记入由调用方以 MarkSent 决定
	FetchMatches(ctx context.Context, userID string) ([]NewsItem, error)
	// MarkSent 将一条新闻记入去重缓存，之后不再返回
	MarkSent(ctx context.Context, item NewsItem) error
	// ListSubscribers 列出设有关键字的用户，供排程任务轮询
	ListSubscribers(ctx context.Context) ([]string, error)
}

type newsService struct {
	repo         repository.SubscriptionRepository
	fetcher      FeedFetcher
	defaultFeeds []string
	logger       *zap.Logger
}

// NewNewsService 创建新闻服务
func NewNewsService(repo repository.SubscriptionRepository, fetcher FeedFetcher, defaultFeeds []string, logger *zap.Logger) NewsService {
	return &newsService{repo: repo, fetcher: fetcher, defaultFeeds: defaultFeeds, logger: logger}
}

func (s *newsService) AddKeyword(ctx context.Context, userID, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("%w: empty keyword", ErrInvalidInput)
	}
	return s.repo.AddKeyword(ctx, userID, keyword)
}

func (s *newsService) RemoveKeyword(ctx context.Context, userID, keyword string) (bool, error) {
	return s.repo.RemoveKeyword(ctx, userID, strings.TrimSpace(keyword))
}

func (s *newsService) ListKeywords(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListKeywords(ctx, userID)
}

func (s *newsService) AddFeed(ctx context.Context, userID, feedURL string) error {
	feedURL = strings.TrimSpace(feedURL)
	u, err := url.Parse(feedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: feed url must be http(s)", ErrInvalidInput)
	}
	return s.repo.AddFeed(ctx, userID, feedURL)
}

func (s *newsService) RemoveFeed(ctx context.Context, userID, feedURL string) (bool, error) {
	return s.repo.RemoveFeed(ctx, userID, strings.TrimSpace(feedURL))
}

func (s *newsService) ListFeeds(ctx context.Context, userID string) ([]string, bool, error) {
	urls, err := s.repo.ListFeeds(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if len(urls) == 0 {
		return s.defaultFeeds, true, nil
	}
	return urls, false, nil
}

func (s *newsService) FetchMatches(ctx context.Context, userID string) ([]NewsItem, error) {
	keywords, err := s.repo.ListKeywords(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	feeds, _, err := s.ListFeeds(ctx, userID)
	if err != nil {
		return nil, err
	}

	var matches []NewsItem
	for _, feedURL := range feeds {
		feed, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			// 单个来源失败不影响其余来源
			s.logger.Warn("RSS 抓取失败", zap.String("feed", feedURL), zap.Error(err))
			continue
		}
		items := feed.Items
		if len(items) > maxEntriesPerFeed {
			items = items[:maxEntriesPerFeed]
		}
		for _, item := range items {
			if item.Link == "" || !matchAny(item, lowered) {
				continue
			}
			sent, err := s.repo.IsSent(ctx, item.Link)
			if err != nil {
				return nil, err
			}
			if sent {
				continue
			}
			matches = append(matches, NewsItem{Title: item.Title, URL: item.Link})
		}
	}
	return matches, nil
}

func (s *newsService) MarkSent(ctx context.Context, item NewsItem) error {
	return s.repo.MarkSent(ctx, item.URL, item.Title)
}

func (s *newsService) ListSubscribers(ctx context.Context) ([]string, error) {
	return s.repo.ListSubscribers(ctx)
}

// matchAny 判断标题或摘要是否含任一关键字，大小写不敏感的子串匹配
func matchAny(item *gofeed.Item, loweredKeywords []string) bool {
	haystack := strings.ToLower(item.Title + " " + item.Description)
	for _, k := range loweredKeywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}
