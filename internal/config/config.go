package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env          string
	AppSecret    string
	DatabaseURL  string
	JWTExpiry    time.Duration
	Port         string
	SiteName     string
	SiteUrl      string
	AllowedHosts []string

	// 邮件推送
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// 后台任务调度间隔
	TaskInterval time.Duration
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "movieplatform")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	taskMinutes, _ := strconv.Atoi(getEnv("TASK_INTERVAL_MINUTES", "1"))

	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		AppSecret:    appSecret,
		DatabaseURL:  dbURL,
		JWTExpiry:    time.Duration(expiryHours) * time.Hour,
		Port:         getEnv("PORT", "5005"),
		SiteName:     getEnv("SITE_NAME", "MoviePlatform"),
		SiteUrl:      getEnv("SITE_URL", "http://localhost:5005"),
		AllowedHosts: splitHosts(getEnv("ALLOWED_HOSTS", "")),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     smtpPort,
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "noreply@movieplatform.com"),
		TaskInterval: time.Duration(taskMinutes) * time.Minute,
	}
}

func splitHosts(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
