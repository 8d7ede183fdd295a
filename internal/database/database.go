package database

import (
	"fmt"
	"time"

	"rental-portal/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	db *gorm.DB
}

// NewMySQL opens a MySQL-backed store.
func NewMySQL(host, port, user, password, dbname string) (*DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}
	return wrap(db)
}

// NewPostgres opens a PostgreSQL-backed store.
func NewPostgres(host, port, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return wrap(db)
}

// NewFromGorm wraps an existing gorm.DB instance (used by tests).
func NewFromGorm(db *gorm.DB) *DB {
	return &DB{db: db}
}

func wrap(db *gorm.DB) (*DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (d *DB) DB() *gorm.DB {
	return d.db
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (d *DB) InitSchema() error {
	return d.db.AutoMigrate(
		&models.Lease{},
		&models.LeaseHistory{},
		&models.RecurringInvoiceSchedule{},
		&models.Invoice{},
		&models.LateFee{},
		&models.AutopayEnrollment{},
		&models.PaymentMethod{},
		&models.Payment{},
		&models.LeaseRenewalOffer{},
		&models.LeaseNotice{},
		&models.DeleteLog{},
	)
}
