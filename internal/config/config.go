package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`

	DBUser     string `yaml:"db_user" env:"DB_USER" env-default:"root"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD" env-default:""`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"sales_offer"`
	ParseTime  bool   `yaml:"parse_time" env-default:"true"`

	RedisAddress  string `yaml:"redis_address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	DebounceWindow time.Duration `yaml:"debounce_window" env-default:"250ms"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN" env-default:"admin"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS" env-default:""`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout"  env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout"  env-default:"60s"`
}

type Storage struct {
	// Backend selects the KeyValueStore implementation: memory, mysql, redis.
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`

	// DocumentKey is the single key the state document lives under.
	DocumentKey string `yaml:"document_key" env-default:"sales_offer_state"`

	// MaxDocumentBytes is the practical ceiling for one serialized document;
	// writes past it trip the degradation ladder. 0 disables the local check.
	MaxDocumentBytes int64 `yaml:"max_document_bytes" env-default:"5242880"`
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
