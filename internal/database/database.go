package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"whiteboard-backend/internal/model"
)

// DB global database instance
var DB *gorm.DB

// Config database settings
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

// LoadConfig reads DB settings from environment variables
func LoadConfig() *Config {
	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSLMODE", "require"),
		TimeZone: getEnv("DB_TIMEZONE", "UTC"),
	}
}

// ConnectDB establishes the database connection
func ConnectDB() (*gorm.DB, error) {
	cfg := LoadConfig()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.TimeZone,
	)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	DB = db

	if err := db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.Container{},
		&model.ContainerItem{},
		&model.Friend{},
		&model.DrawingStroke{},
	); err != nil {
		log.Printf("AutoMigrate warning: %v", err)
	}

	// Fallback for the stroke table: AutoMigrate has been seen silently
	// skipping jsonb columns on some managed Postgres flavors.
	sql := `CREATE TABLE IF NOT EXISTS drawing_strokes (
		id bigserial PRIMARY KEY,
		stroke_id varchar(64) NOT NULL,
		board_id varchar(64) NOT NULL,
		container_id varchar(64),
		user_uid varchar(64) NOT NULL,
		color varchar(20) NOT NULL,
		brush_size double precision DEFAULT 4,
		opacity double precision DEFAULT 1,
		point_data jsonb NOT NULL,
		created_at timestamptz DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_board_created ON drawing_strokes (board_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_drawing_strokes_stroke_id ON drawing_strokes (stroke_id);`

	if err := db.Exec(sql).Error; err != nil {
		log.Printf("Manual table creation warning: %v", err)
	}

	return db, nil
}

// Close shuts down the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// getEnv reads an environment variable with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
