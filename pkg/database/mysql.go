// Package database 提供 MySQL、Redis 连接与 GORM 实例的初始化。
package database

import (
	"time"

	"orgchart_go/internal/model"
	"orgchart_go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

// DB 全局 GORM 数据库实例，在 InitMySQL 成功后可在业务层通过 database.DB 进行 CRUD 等操作。
var DB *gorm.DB

// InitMySQL 根据 DSN 连接 MySQL 并初始化全局 DB。
// 会配置连接池（最大空闲连接数、最大打开连接数、连接最大存活时间），失败时调用 log.Fatal 退出进程。
func InitMySQL(dsn string) {
	var err error

	// GORM 日志走 zap，和应用日志统一输出
	gormLogger := zapgorm2.New(log.GetLogger())
	gormLogger.SetAsDefault()

	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		// 把驱动层的唯一键冲突翻译成 gorm.ErrDuplicatedKey，
		// get-or-create 路径依赖这个错误做并发去重
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to MySQL", err)
	}
	log.Info("Connected to MySQL")

	// 获取底层 *sql.DB 以配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get SQL DB", err)
	}
	sqlDB.SetMaxIdleConns(10)           // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100)          // 最大打开连接数
	sqlDB.SetConnMaxLifetime(time.Hour) // 连接最大存活时间，超时连接会被回收

	log.Info("MySQL initialized successfully")
}

func RunMigrate() error {
	log.Info("Running migrations...")

	if err := DB.AutoMigrate(
		&model.User{},
		&model.Department{},
		&model.Location{},
		&model.Brand{},
		&model.JobTitleLevel{},
		&model.Employee{},
		&model.Position{},
		&model.PositionAssignment{},
		&model.ManagerAlias{},
	); err != nil {
		log.Errorf("Failed to run migrations: %v", err)
		return err
	}

	log.Info("Migrations completed successfully")
	return nil
}
