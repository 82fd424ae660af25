package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
)

// 推荐阈值
const digestThreshold = 4.0

// TaskService 周期性后台任务：高分媒体推荐邮件、孤儿评分清理。
// 两个任务都可以安全地重复执行：推荐每轮从头重算并重发（不做去重），
// 清理按谓词整批删除，没有孤儿时是空操作
type TaskService struct {
	repos    *repository.Repositories
	mailer   MailSender
	interval time.Duration
	stop     chan struct{}
}

// NewTaskService 创建任务服务
func NewTaskService(repos *repository.Repositories, mailer MailSender, interval time.Duration) *TaskService {
	return &TaskService{
		repos:    repos,
		mailer:   mailer,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *TaskService) Start() {
	ticker := time.NewTicker(s.interval)

	// 启动时先运行一次
	go s.runOnce()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop 停止定时任务
func (s *TaskService) Stop() {
	close(s.stop)
}

func (s *TaskService) runOnce() {
	s.SendHighRatedDigest()
	s.CleanEmptyRatings()
}

// SendHighRatedDigest 把高分电影和剧集列表发给所有有邮箱的用户。
// 失败只记录日志，不吞掉：交给下一轮重试
func (s *TaskService) SendHighRatedDigest() {
	movies, err := s.repos.Media.HighRated(model.MediaTypeMovie, digestThreshold)
	if err != nil {
		log.Printf("[TaskService] 查询高分电影失败: %v", err)
		return
	}
	tvshows, err := s.repos.Media.HighRated(model.MediaTypeTVShow, digestThreshold)
	if err != nil {
		log.Printf("[TaskService] 查询高分剧集失败: %v", err)
		return
	}

	if len(movies) == 0 && len(tvshows) == 0 {
		return
	}

	emails, err := s.repos.User.ListEmails()
	if err != nil {
		log.Printf("[TaskService] 获取收件人失败: %v", err)
		return
	}
	if len(emails) == 0 {
		return
	}

	body := buildDigest(movies, tvshows)
	if err := s.mailer.Send("本周观影推荐", body, emails); err != nil {
		log.Printf("[TaskService] 推荐邮件发送失败: %v", err)
		return
	}

	log.Printf("[TaskService] 已发送推荐: %d 部电影, %d 部剧集, %d 个收件人",
		len(movies), len(tvshows), len(emails))
}

// CleanEmptyRatings 删除没有关联媒体的评分
func (s *TaskService) CleanEmptyRatings() {
	deleted, err := s.repos.Rating.DeleteOrphans()
	if err != nil {
		log.Printf("[TaskService] 清理孤儿评分失败: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[TaskService] 已清理 %d 条无媒体评分", deleted)
	}
}

// buildDigest 拼装推荐邮件正文
func buildDigest(movies, tvshows []*model.Media) string {
	var b strings.Builder
	b.WriteString("推荐观看：\n\n")

	if len(movies) > 0 {
		b.WriteString("电影：\n")
		for _, m := range movies {
			fmt.Fprintf(&b, "- %s (%d)\n", m.Title, m.ReleaseDate.Year())
		}
	}

	if len(tvshows) > 0 {
		b.WriteString("\n剧集：\n")
		for _, t := range tvshows {
			fmt.Fprintf(&b, "- %s (%d)\n", t.Title, t.ReleaseDate.Year())
		}
	}

	return b.String()
}
