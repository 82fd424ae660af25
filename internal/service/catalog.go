package service

import (
	"fmt"
	"time"

	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"github.com/user/movieplatform/internal/utils"
	"golang.org/x/sync/singleflight"
)

// 各视图的固定 TTL
const (
	highRatedTTL = 10 * time.Minute
	listTTL      = 15 * time.Minute
	complexTTL   = 60 * time.Minute
)

// mediaPage 缓存的列表页数据
type mediaPage struct {
	Items []*model.Media
	Total int64
}

// CatalogService 缓存前置的目录读取层。
// 未命中时回源仓库计算并按固定 TTL 写入；并发未命中用 singleflight
// 合并成一次计算，最后写入者胜出即可，不会产生脏数据
type CatalogService struct {
	repos *repository.Repositories
	sf    singleflight.Group

	// 组合查询结果用有界 LRU 缓存，演示接口的键空间可能较大
	complexMovies  *utils.QueryCache[[]*model.Media]
	complexShows   *utils.QueryCache[[]*model.Media]
	complexRatings *utils.QueryCache[[]*model.Rating]
}

// NewCatalogService 创建目录服务
func NewCatalogService(repos *repository.Repositories) *CatalogService {
	return &CatalogService{
		repos:          repos,
		complexMovies:  utils.NewQueryCache[[]*model.Media](256, complexTTL),
		complexShows:   utils.NewQueryCache[[]*model.Media](256, complexTTL),
		complexRatings: utils.NewQueryCache[[]*model.Rating](256, complexTTL),
	}
}

// HighRated 平均分严格大于阈值的媒体，结果缓存 10 分钟
func (s *CatalogService) HighRated(mediaType model.MediaType, threshold float64) ([]*model.Media, error) {
	key := fmt.Sprintf("high_rated:%s:%.2f", mediaType, threshold)
	if cached, found := utils.CacheGet(key); found {
		if items, ok := cached.([]*model.Media); ok {
			return items, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		items, err := s.repos.Media.HighRated(mediaType, threshold)
		if err != nil {
			return nil, err
		}
		utils.CacheSet(key, items, highRatedTTL)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Media), nil
}

// MediaPage 分页列表，结果缓存 15 分钟。
// 缓存键由视图参数和请求用户共同决定：未发布条目只对登录用户可见，
// 同一参数对不同身份可能是不同结果
func (s *CatalogService) MediaPage(p repository.MediaListParams, userID int) ([]*model.Media, int64, error) {
	key := fmt.Sprintf("media_list:%s:%s:%d:%v:%v:%s:%v:%v:%d:%d:u%d",
		p.Type, p.Search, p.CountryID, p.ReleaseFrom, p.ReleaseTo,
		p.Sort, p.Desc, p.OnlyVisible, p.Page, p.PageSize, userID)

	if cached, found := utils.CacheGet(key); found {
		if page, ok := cached.(*mediaPage); ok {
			return page.Items, page.Total, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		items, total, err := s.repos.Media.List(p)
		if err != nil {
			return nil, err
		}
		page := &mediaPage{Items: items, Total: total}
		utils.CacheSet(key, page, listTTL)
		return page, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := v.(*mediaPage)
	return page.Items, page.Total, nil
}

// MoviesByLengthAndCountry 组合查询一：电影按时长与国家排除
func (s *CatalogService) MoviesByLengthAndCountry(maxLength int, excludeCountry string) ([]*model.Media, error) {
	key := fmt.Sprintf("%d:%s", maxLength, excludeCountry)
	if items, found := s.complexMovies.Get(key); found {
		return items, nil
	}

	items, err := s.repos.Media.MoviesByLengthAndCountry(maxLength, excludeCountry)
	if err != nil {
		return nil, err
	}
	s.complexMovies.Set(key, items)
	return items, nil
}

// TVShowsBySeasonsAndCountry 组合查询：剧集按季数与国家
func (s *CatalogService) TVShowsBySeasonsAndCountry(minSeasons int, country string) ([]*model.Media, error) {
	key := fmt.Sprintf("%d:%s", minSeasons, country)
	if items, found := s.complexShows.Get(key); found {
		return items, nil
	}

	items, err := s.repos.Media.TVShowsBySeasonsAndCountry(minSeasons, country)
	if err != nil {
		return nil, err
	}
	s.complexShows.Set(key, items)
	return items, nil
}

// RatingsOutsideRange 组合查询二：评分区间外、国家与标题过滤
func (s *CatalogService) RatingsOutsideRange(lo, hi int, country, titleContains string) ([]*model.Rating, error) {
	key := fmt.Sprintf("%d:%d:%s:%s", lo, hi, country, titleContains)
	if ratings, found := s.complexRatings.Get(key); found {
		return ratings, nil
	}

	ratings, err := s.repos.Rating.OutsideRange(lo, hi, country, titleContains)
	if err != nil {
		return nil, err
	}
	s.complexRatings.Set(key, ratings)
	return ratings, nil
}
