// Package database opens the postgres connection shared by the server and
// the ingestion command.
package database

import (
	"fmt"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(dbConfig *config.DBConfig, appConfig *config.AppConfig, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if appConfig.DebugLogs() {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}
	log.Info("database connected", zap.String("host", dbConfig.Host), zap.String("name", dbConfig.Name))
	return db, nil
}

// Migrate creates the task and document tables. The chunk table is migrated
// by the vector index itself since it needs the pgvector extension.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn("could not enable uuid-ossp", zap.Error(err))
	}
	if err := db.AutoMigrate(&model.EvaluationTask{}, &model.Document{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
