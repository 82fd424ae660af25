package handler

import (
	"github.com/user/movieplatform/internal/model"
)

// GenreResponse 流派资源
type GenreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CountryResponse 国家资源
type CountryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MediaResponse 媒体资源。按判别标签展开成电影或剧集的扁平表示，
// 变体专属字段只在对应类型下出现
type MediaResponse struct {
	ID            int              `json:"id"`
	Type          model.MediaType  `json:"type"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Poster        string           `json:"poster"`
	ReleaseDate   string           `json:"release_date"`
	Country       *CountryResponse `json:"country"`
	Genres        []GenreResponse  `json:"genres"`
	IsPublished   bool             `json:"is_published"`
	Length        *int             `json:"length,omitempty"`
	SeasonsCount  *int             `json:"seasons_count,omitempty"`
	AverageRating *float64         `json:"average_rating,omitempty"`
}

// RatingResponse 评分资源
type RatingResponse struct {
	ID     int            `json:"id"`
	Rating int            `json:"rating"`
	UserID *int           `json:"user_id"`
	Media  *MediaResponse `json:"media"`
}

func newGenreResponse(g *model.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name}
}

func newCountryResponse(c *model.Country) *CountryResponse {
	if c == nil {
		return nil
	}
	return &CountryResponse{ID: c.ID, Name: c.Name}
}

func newMediaResponse(m *model.Media) *MediaResponse {
	if m == nil {
		return nil
	}

	genres := make([]GenreResponse, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, newGenreResponse(g))
	}

	resp := &MediaResponse{
		ID:          m.ID,
		Type:        m.Type,
		Title:       m.Title,
		Description: m.Description,
		Poster:      m.Poster,
		ReleaseDate: m.ReleaseDate.Format("2006-01-02"),
		Country:     newCountryResponse(m.Country),
		Genres:      genres,
		IsPublished: m.IsPublished,
	}

	// 标签分发：变体字段只在对应类型下输出
	switch m.GetMediaType() {
	case model.MediaTypeMovie:
		resp.Length = m.Length
	case model.MediaTypeTVShow:
		resp.SeasonsCount = m.SeasonsCount
	}

	return resp
}

func newMediaResponses(items []*model.Media) []*MediaResponse {
	out := make([]*MediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, newMediaResponse(m))
	}
	return out
}

// newRatingResponse 评分序列化。媒体引用按判别标签解析成对应的嵌套表示；
// 引用缺失或损坏时 media 输出 null，而不是让整个响应失败
func newRatingResponse(r *model.Rating) *RatingResponse {
	return &RatingResponse{
		ID:     r.ID,
		Rating: r.Rating,
		UserID: r.UserID,
		Media:  newMediaResponse(r.Media),
	}
}

func newRatingResponses(ratings []*model.Rating) []*RatingResponse {
	out := make([]*RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, newRatingResponse(r))
	}
	return out
}
