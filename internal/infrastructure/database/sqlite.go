package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSQLiteDB mở database SQLite cho local run và test
// dsn ":memory:" tạo database trong RAM
//
// TranslateError bật để unique violation trả về gorm.ErrDuplicatedKey.
// Một connection duy nhất: mỗi connection ":memory:" là một database riêng,
// và SQLite chỉ cho một writer tại một thời điểm.
func NewSQLiteDB(dsn string) (*gorm.DB, error) {
	log.Printf("[DATABASE] Opening SQLite database %q", dsn)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// CloseSQLiteDB đóng connection bên dưới gorm
func CloseSQLiteDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
