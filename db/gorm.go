package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"soundcatalog/config"
	"soundcatalog/model"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// catalogRecord 是 SQL 后端里的一行：(表名, uid) 为联合主键，data 为 JSON 记录
type catalogRecord struct {
	Tbl       string `gorm:"primaryKey;size:64"`
	UID       string `gorm:"column:uid;primaryKey;size:191"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (catalogRecord) TableName() string {
	return "catalog_records"
}

// MySQLDSN 根据配置生成 MySQL DSN
func MySQLDSN(cfg *config.Config) string {
	dsn := mysqldriver.NewConfig()
	dsn.User = cfg.DBUser
	dsn.Passwd = cfg.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

// ConnectGormDB 建立 GORM 数据库连接，driver 为 mysql 或 sqlite
func ConnectGormDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		dialector = mysql.Open(MySQLDSN(cfg))
	case config.StoreSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("store driver %q is not backed by GORM", cfg.StoreDriver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	// 获取底层的 sql.DB 并配置连接池
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return gormDB, nil
}

// GormStore 用一张通用表保存所有实体记录
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates the backing table if needed and returns the store.
func NewGormStore(gormDB *gorm.DB) (*GormStore, error) {
	if err := gormDB.AutoMigrate(&catalogRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate catalog_records: %w", err)
	}
	return &GormStore{db: gormDB}, nil
}

func (s *GormStore) GetItem(ctx context.Context, table, uid string) (model.Record, error) {
	var row catalogRecord
	err := s.db.WithContext(ctx).
		Where("tbl = ? AND uid = ?", table, uid).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStoreError("GetItem", table, err)
	}
	return decodeRecord("GetItem", table, []byte(row.Data))
}

func (s *GormStore) PutItem(ctx context.Context, table string, record model.Record) error {
	uid, err := recordKey(table, record)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return model.NewStoreError("PutItem", table, err)
	}

	row := catalogRecord{Tbl: table, UID: uid, Data: string(data)}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return model.NewStoreError("PutItem", table, err)
	}
	return nil
}

func (s *GormStore) DeleteItem(ctx context.Context, table, uid string) error {
	err := s.db.WithContext(ctx).
		Where("tbl = ? AND uid = ?", table, uid).
		Delete(&catalogRecord{}).Error
	if err != nil {
		return model.NewStoreError("DeleteItem", table, err)
	}
	return nil
}

// Scan 主键过滤下推为 WHERE uid IN (...)，其余过滤在本地完成
func (s *GormStore) Scan(ctx context.Context, table string, filter *Filter) ([]model.Record, error) {
	query := s.db.WithContext(ctx).Where("tbl = ?", table)
	if filter.OnKey() {
		uids := distinct(filter.Values)
		if len(uids) == 0 {
			return []model.Record{}, nil
		}
		query = query.Where("uid IN ?", uids)
	}

	var rows []catalogRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, model.NewStoreError("Scan", table, err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		r, err := decodeRecord("Scan", table, []byte(row.Data))
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.Match(r) {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return model.NewStoreError("Ping", "catalog_records", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return model.NewStoreError("Ping", "catalog_records", err)
	}
	return nil
}

// Close 关闭底层连接
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
