package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Config = new(AppConfig)

// JWTSecret is mirrored out of Config for the auth middleware.
var JWTSecret string

type AppConfig struct {
	App     AppSettings   `mapstructure:"app"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Trash   TrashConfig   `mapstructure:"trash"`
}

type AppSettings struct {
	Name           string        `mapstructure:"name"`
	Mode           string        `mapstructure:"mode"`
	Port           string        `mapstructure:"port"`
	AllowOrigins   string        `mapstructure:"allow_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SeedDir        string        `mapstructure:"seed_dir"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // postgres | mysql | sqlite
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // oss | s3 | memory
	Prefix  string `mapstructure:"prefix"`

	// served by the app itself when Backend is memory
	MemoryBaseURL string `mapstructure:"memory_base_url"`

	OSSEndpoint        string `mapstructure:"oss_endpoint"`
	OSSAccessKeyID     string `mapstructure:"oss_access_key_id"`
	OSSAccessKeySecret string `mapstructure:"oss_access_key_secret"`
	OSSBucket          string `mapstructure:"oss_bucket"`

	S3Region string `mapstructure:"s3_region"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Key    string `mapstructure:"s3_access_key_id"`
	S3Secret string `mapstructure:"s3_secret_access_key"`
}

type TrashConfig struct {
	Retention time.Duration `mapstructure:"retention"`
	Schedule  string        `mapstructure:"schedule"`
}

var defaults = map[string]any{
	"app.name":            "edudirectory",
	"app.mode":            "development",
	"app.port":            "3000",
	"app.allow_origins":   "http://localhost:5173,http://localhost:3000",
	"app.request_timeout": 5 * time.Second,
	"app.seed_dir":        "internals/seeds/data",

	"log.level":       "info",
	"log.filename":    "",
	"log.max_size":    100,
	"log.max_backups": 7,
	"log.max_age":     30,
	"log.compress":    true,

	"db.driver":         "postgres",
	"db.dsn":            "",
	"db.host":           "localhost",
	"db.port":           "5432",
	"db.user":           "postgres",
	"db.password":       "",
	"db.name":           "edudirectory",
	"db.sslmode":        "disable",
	"db.max_open_conns": 20,
	"db.max_idle_conns": 10,

	"auth.jwt_secret": "",
	"auth.token_ttl":  24 * time.Hour,

	"storage.backend":               "memory",
	"storage.prefix":                "edudirectory",
	"storage.memory_base_url":       "http://localhost:3000/storage",
	"storage.oss_endpoint":          "",
	"storage.oss_access_key_id":     "",
	"storage.oss_access_key_secret": "",
	"storage.oss_bucket":            "",
	"storage.s3_region":             "ap-south-1",
	"storage.s3_bucket":             "",
	"storage.s3_access_key_id":      "",
	"storage.s3_secret_access_key":  "",

	"trash.retention": 30 * 24 * time.Hour,
	"trash.schedule":  "0 3 * * *",
}

// LoadEnv reads .env when present and binds every key to its env var
// (app.port -> APP_PORT) before unmarshalling into Config.
func LoadEnv() error {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system environment")
		} else {
			log.Println("✅ .env loaded")
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PORT and JWT_SECRET are the names most hosts inject.
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("db.dsn", "DB_DSN", "DATABASE_URL")

	if err := v.Unmarshal(Config); err != nil {
		return err
	}
	JWTSecret = Config.Auth.JWTSecret
	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set, admin routes will reject every token")
	}
	return nil
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
