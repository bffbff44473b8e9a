package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	ClamAV   ClamAVConfig
	Media    MediaConfig
}

type ServerConfig struct {
	Port         string
	ServiceName  string
	ServiceID    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Host         string
	Environment  string
}

type MinIOConfig struct {
	Endpoint        string
	PublicBaseURL   string // Base URL for public asset links (CDN or public MinIO endpoint)
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Region          string
}

type RedisConfig struct {
	Address    string
	Password   string
	DB         int
	OutcomeTTL time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	Address     string
	ServiceName string
	ServiceID   string
}

type ClamAVConfig struct {
	Host     string
	Port     string
	Socket   string // Unix socket path; takes precedence over host/port when set
	Timeout  time.Duration
	Enabled  bool
	FailHard bool // Treat an unreachable daemon at startup as fatal
}

type MediaConfig struct {
	TempDir       string
	FFmpegBinary  string
	FFprobeBinary string
}

// Load loads the configuration from environment variables
func Load() *Config {
	env := getEnv("APP_ENV", "development")
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ServiceName:  getEnv("SERVICE_NAME", "upload-service"),
			ServiceID:    getEnv("SERVICE_NAME", "upload-service") + "-" + getEnv("HOSTNAME", "1"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			Host:         getEnv("HOST", "0.0.0.0"),
			Environment:  env,
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "minio:9000"),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:          getEnv("MINIO_BUCKET_NAME", "chat-uploads"),
			Region:          getEnv("MINIO_REGION", "us-east-1"),
		},
		Redis: RedisConfig{
			Address:    getEnv("REDIS_ADDRESS", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			OutcomeTTL: getEnvAsDuration("OUTCOME_CACHE_TTL", 24*time.Hour),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "storage.events"),
		},
		Consul: ConsulConfig{
			Address:     getEnv("CONSUL_ADDRESS", ""),
			ServiceName: getEnv("SERVICE_NAME", "upload-service"),
			ServiceID:   getEnv("SERVICE_NAME", "upload-service") + "-" + getEnv("HOSTNAME", "1"),
		},
		ClamAV: ClamAVConfig{
			Host:     getEnv("CLAMAV_HOST", "clamav"),
			Port:     getEnv("CLAMAV_PORT", "3310"),
			Socket:   getEnv("CLAMAV_SOCKET", ""),
			Timeout:  getEnvAsDuration("CLAMAV_TIMEOUT", 60*time.Second),
			Enabled:  getEnvAsBool("CLAMAV_ENABLED", true),
			FailHard: getEnvAsBool("CLAMAV_FAIL_HARD", env == "production"),
		},
		Media: MediaConfig{
			TempDir:       getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			FFmpegBinary:  getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobeBinary: getEnv("FFPROBE_PATH", "ffprobe"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Error converting %s to int: %v", key, err)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Error converting %s to duration: %v", key, err)
			return defaultValue
		}
		return time.Duration(intVal) * time.Second
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Error converting %s to bool: %v", key, err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}
