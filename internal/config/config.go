package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	REDIS_ADDR string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	KAFKA_ADDRESS string

	SMTP_HOST string
	SMTP_PORT string
	SMTP_USER string
	SMTP_PASS string
	MAIL_FROM string

	JWT_SECRET string
	APP_URL    string
	LOG_LEVEL  string
	PORT       int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		REDIS_ADDR: os.Getenv("REDIS_ADDR"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		SMTP_HOST: os.Getenv("SMTP_HOST"),
		SMTP_PORT: EnvDefault("SMTP_PORT", "587"),
		SMTP_USER: os.Getenv("SMTP_USER"),
		SMTP_PASS: os.Getenv("SMTP_PASS"),
		MAIL_FROM: os.Getenv("MAIL_FROM"),

		JWT_SECRET: os.Getenv("JWT_SECRET"),
		APP_URL:    EnvDefault("APP_URL", "http://localhost:8080"),
		LOG_LEVEL:  EnvDefault("LOG_LEVEL", "info"),
		PORT:       EnvIntDefault("PORT", 8080),
	}

	return config, nil
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}
