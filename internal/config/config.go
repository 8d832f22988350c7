package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      string
	GoogleAudience  string
	AllowOrigins    []string
	LogstashTCPAddr string
	HomeURL         string

	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MinIOBucketMedia string
	MinIOPublicURL   string

	MapboxBaseURL string
	MapboxToken   string

	MediaMaxBytes     int64
	MediaMaxFiles     int
	MediaMaxDimension int
	FFmpegPath        string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	mediaMax := int64(50 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("MEDIA_MAX_BYTES", "52428800"), 10, 64); err == nil && v > 0 {
		mediaMax = v
	}

	maxFiles := 10
	if v, err := strconv.Atoi(getenv("MEDIA_MAX_FILES", "10")); err == nil && v > 0 {
		maxFiles = v
	}

	maxDimension := 0
	if v, err := strconv.Atoi(getenv("MEDIA_MAX_DIMENSION", "0")); err == nil && v > 0 {
		maxDimension = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      getenv("SESSION_TTL", "24h"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		HomeURL:         getenv("HOME_URL", ""),

		MinIOEndpoint:    must("MINIO_ENDPOINT"),
		MinIOAccessKey:   must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:   must("MINIO_SECRET_KEY"),
		MinIOUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketMedia: getenv("MINIO_BUCKET_MEDIA", "journey-media"),
		MinIOPublicURL:   getenv("MINIO_PUBLIC_URL", ""),

		MapboxBaseURL: getenv("MAPBOX_BASE_URL", ""),
		MapboxToken:   must("MAPBOX_TOKEN"),

		MediaMaxBytes:     mediaMax,
		MediaMaxFiles:     maxFiles,
		MediaMaxDimension: maxDimension,
		FFmpegPath:        getenv("FFMPEG_PATH", "ffmpeg"),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
