package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port    string
	GinMode string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret      string
	ClerkSecretKey string
	GoogleClientID string

	GoogleCredentialsFile string
	GeminiAPIKey          string
	ImageAPIURL           string
	ImageAPIKey           string
	ImageModel            string
	TTSVoiceMap           map[string]string

	SupabaseURL   string
	SupabaseKey   string
	StorageBucket string
	StoragePublic bool
	StorageURLTTL time.Duration

	CORSOrigins []string

	PodcastLimitPerUser int
	LimitExemptEmails   []string

	GenerateRatePerMin int
	GenerateBurst      int

	UploadTTL time.Duration
}

// Load đọc cấu hình từ biến môi trường (gọi godotenv.Load trước nếu cần).
func Load() (Config, error) {
	cfg := Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		ClerkSecretKey: os.Getenv("CLERK_SECRET_KEY"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		ImageAPIURL:           getEnv("IMAGE_API_URL", "https://api.openai.com/v1"),
		ImageAPIKey:           os.Getenv("IMAGE_API_KEY"),
		ImageModel:            getEnv("IMAGE_MODEL", "dall-e-3"),

		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		StorageBucket: getEnv("STORAGE_BUCKET", "podcasts"),

		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LimitExemptEmails: splitList(os.Getenv("PODCAST_LIMIT_EXEMPT_EMAILS")),
	}

	var err error
	if cfg.StoragePublic, err = getBool("STORAGE_PUBLIC", false); err != nil {
		return cfg, err
	}
	if cfg.StorageURLTTL, err = getDuration("STORAGE_URL_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.UploadTTL, err = getDuration("UPLOAD_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.PodcastLimitPerUser, err = getInt("PODCAST_LIMIT_PER_USER", 0); err != nil {
		return cfg, err
	}
	if cfg.GenerateRatePerMin, err = getInt("GENERATE_RATE_PER_MIN", 10); err != nil {
		return cfg, err
	}
	if cfg.GenerateBurst, err = getInt("GENERATE_BURST", 3); err != nil {
		return cfg, err
	}
	if cfg.TTSVoiceMap, err = parseVoiceMap(os.Getenv("TTS_VOICE_MAP")); err != nil {
		return cfg, err
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET chưa được thiết lập")
	}
	return cfg, nil
}

// DSN trả về chuỗi kết nối PostgreSQL, ưu tiên DATABASE_URL.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s không hợp lệ: %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s không hợp lệ: %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s không hợp lệ: %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseVoiceMap đọc dạng "alloy=en-US-Neural2-A,nova=en-US-Neural2-F".
func parseVoiceMap(v string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(v) {
		tag, name, ok := strings.Cut(pair, "=")
		tag, name = strings.TrimSpace(tag), strings.TrimSpace(name)
		if !ok || tag == "" || name == "" {
			return nil, fmt.Errorf("TTS_VOICE_MAP không hợp lệ: %q", pair)
		}
		out[tag] = name
	}
	return out, nil
}
