package model

import (
	"fmt"
	"time"
)

// MediaType 媒体类型判别标签
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTVShow MediaType = "tvshow"
)

// Genre 流派模型
type Genre struct {
	ID    int      `json:"id"`
	Name  string   `json:"name" gorm:"size:100;uniqueIndex" validate:"required,min=2"`
	Media []*Media `json:"-" gorm:"many2many:media_genres"`
}

func (g *Genre) String() string {
	return g.Name
}

// Country 国家模型
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name" gorm:"size:30;uniqueIndex" validate:"required,min=2"`
}

func (c *Country) String() string {
	return c.Name
}

// Media 媒体模型。电影和剧集共用一张表，通过 Type 字段区分，
// 变体专属字段（Length / SeasonsCount）为可空列
type Media struct {
	ID          int       `json:"id"`
	Type        MediaType `json:"type" gorm:"size:10;index" validate:"required,oneof=movie tvshow"`
	Title       string    `json:"title" gorm:"size:100" validate:"required,min=2"`
	Description string    `json:"description"`
	Poster      string    `json:"poster"`
	ReleaseDate time.Time `json:"release_date" gorm:"type:date" validate:"release_date"`
	CountryID   *int      `json:"country_id" gorm:"index" validate:"required"`
	Country     *Country  `json:"country,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Genres      []*Genre  `json:"genres,omitempty" gorm:"many2many:media_genres"`
	// 默认发布由创建边界赋值，不放在列默认值上，否则 false 会在插入时被吞掉
	IsPublished bool `json:"is_published"`

	// 仅电影：时长（分钟）
	Length *int `json:"length,omitempty" validate:"omitempty,gt=0"`
	// 仅剧集：季数
	SeasonsCount *int `json:"seasons_count,omitempty" validate:"omitempty,gte=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 显式指定表名，避免复数化歧义
func (Media) TableName() string {
	return "media"
}

// GetMediaType 获取媒体类型标签
func (m *Media) GetMediaType() MediaType {
	return m.Type
}

// String 字符串表示：电影带上映年份，剧集只有标题
func (m *Media) String() string {
	if m.Type == MediaTypeMovie {
		return fmt.Sprintf("%s (%d)", m.Title, m.ReleaseDate.Year())
	}
	return m.Title
}

// Snapshot 生成当前字段值的历史快照
func (m *Media) Snapshot() *MediaHistory {
	return &MediaHistory{
		MediaID:      m.ID,
		Type:         m.Type,
		Title:        m.Title,
		Description:  m.Description,
		Poster:       m.Poster,
		ReleaseDate:  m.ReleaseDate,
		CountryID:    m.CountryID,
		IsPublished:  m.IsPublished,
		Length:       m.Length,
		SeasonsCount: m.SeasonsCount,
		ChangedAt:    time.Now(),
	}
}

// MediaHistory 媒体变更历史。每次成功更新前追加一条旧值快照，只增不改
type MediaHistory struct {
	ID           int       `json:"id"`
	MediaID      int       `json:"media_id" gorm:"index"`
	Type         MediaType `json:"type" gorm:"size:10"`
	Title        string    `json:"title" gorm:"size:100"`
	Description  string    `json:"description"`
	Poster       string    `json:"poster"`
	ReleaseDate  time.Time `json:"release_date" gorm:"type:date"`
	CountryID    *int      `json:"country_id"`
	IsPublished  bool      `json:"is_published"`
	Length       *int      `json:"length,omitempty"`
	SeasonsCount *int      `json:"seasons_count,omitempty"`
	ChangedAt    time.Time `json:"changed_at" gorm:"index"`
}

// Rating 评分模型。MediaID 可空：无媒体的评分视为孤儿，由清理任务删除
type Rating struct {
	ID        int       `json:"id"`
	UserID    *int      `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating" gorm:"default:5" validate:"min=1,max=5"`
	MediaID   *int      `json:"media_id" gorm:"index"`
	Media     *Media    `json:"media,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Rating) String() string {
	title := ""
	if r.Media != nil {
		title = r.Media.Title
	}
	return fmt.Sprintf("%v - %s - %d", r.UserID, title, r.Rating)
}
