package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"github.com/xuri/excelize/v2"
)

// 导出过滤条件：剧集只导出季数大于该值的条目
const exportMinSeasons = 6

// ExportFile 一次导出的产物
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Exporter 媒体集合导出器，支持 JSON / CSV / XLSX
type Exporter struct {
	repos *repository.Repositories
}

// NewExporter 创建导出器
func NewExporter(repos *repository.Repositories) *Exporter {
	return &Exporter{repos: repos}
}

// ExportMovies 导出电影集合。只包含已发布的条目
func (e *Exporter) ExportMovies(format string) (*ExportFile, error) {
	items, _, err := e.repos.Media.List(repository.MediaListParams{
		Type:        model.MediaTypeMovie,
		OnlyVisible: true,
	})
	if err != nil {
		return nil, err
	}

	headers := []string{"标题", "上映日期", "流派", "国家", "时长"}
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		rows = append(rows, []string{
			"电影：" + m.Title,
			m.ReleaseDate.Format("02-01-2006"),
			joinGenres(m),
			countryName(m),
			formatLength(m.Length),
		})
	}

	return encode("movies", format, headers, rows)
}

// ExportTVShows 导出剧集集合。只包含季数大于 6 的条目
func (e *Exporter) ExportTVShows(format string) (*ExportFile, error) {
	items, err := e.repos.Media.TVShowsBySeasons(exportMinSeasons)
	if err != nil {
		return nil, err
	}

	headers := []string{"标题", "上映日期", "流派", "国家", "季数"}
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		seasons := ""
		if t.SeasonsCount != nil {
			seasons = fmt.Sprintf("%d", *t.SeasonsCount)
		}
		rows = append(rows, []string{
			"剧集：" + t.Title,
			t.ReleaseDate.Format("02-01-2006"),
			joinGenres(t),
			countryName(t),
			seasons,
		})
	}

	return encode("tvshows", format, headers, rows)
}

// encode 把表头和数据行编码成指定格式
func encode(name, format string, headers []string, rows [][]string) (*ExportFile, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(headers); err != nil {
			return nil, err
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
		return &ExportFile{
			Content:     buf.Bytes(),
			ContentType: "text/csv; charset=utf-8",
			Filename:    name + ".csv",
		}, nil

	case "xlsx":
		f := excelize.NewFile()
		defer f.Close()

		sheet := f.GetSheetName(0)
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return nil, err
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, err
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Content:     buf.Bytes(),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    name + ".xlsx",
		}, nil

	case "", "json":
		records := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			record := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					record[h] = row[i]
				}
			}
			records = append(records, record)
		}
		content, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/json",
			Filename:    name + ".json",
		}, nil
	}

	return nil, fmt.Errorf("不支持的导出格式: %s", format)
}

func joinGenres(m *model.Media) string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func countryName(m *model.Media) string {
	if m.Country == nil {
		return ""
	}
	return m.Country.Name
}

// formatLength 分钟数格式化为 HH:MM
func formatLength(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", *minutes/60, *minutes%60)
}
