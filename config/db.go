package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/podcastr-backend/models"
)

// InitDB kết nối PostgreSQL, cấu hình pool và migrate.
func InitDB(cfg Config) *gorm.DB {
	db, err := ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Không thể kết nối database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Không thể lấy sql.DB từ gorm:", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal("autoMigrate lỗi: ", err)
	}

	log.Println("postgreSQL connected & migrated successfully!")
	return db
}

// ConnectDatabase mở kết nối gorm nhưng không migrate.
func ConnectDatabase(cfg Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.GinMode == "release" {
		level = logger.Warn
	}
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Podcast{},
		&models.StoredFile{},
	); err != nil {
		return err
	}
	return MigrateLegacyAudioStorage(db)
}

// MigrateLegacyAudioStorage chuyển dữ liệu từ cột audio_strorage_id (viết sai)
// sang audio_storage_id rồi xoá cột cũ.
func MigrateLegacyAudioStorage(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasColumn(&models.Podcast{}, models.LegacyAudioStorageColumn) {
		return nil
	}

	res := db.Exec(fmt.Sprintf(
		`UPDATE podcasts SET audio_storage_id = %s WHERE audio_storage_id IS NULL AND %s IS NOT NULL`,
		models.LegacyAudioStorageColumn, models.LegacyAudioStorageColumn,
	))
	if res.Error != nil {
		return fmt.Errorf("migrate %s: %w", models.LegacyAudioStorageColumn, res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("Đã chuyển %d audio storage id từ cột cũ", res.RowsAffected)
	}

	return m.DropColumn(&models.Podcast{}, models.LegacyAudioStorageColumn)
}
