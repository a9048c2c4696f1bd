package db

import (
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type GormDB struct {
	DB *gorm.DB
}

// GetDB connects to postgres and migrates the schema.
func GetDB(c *config.Config) (*GormDB, error) {
	return Open(postgres.New(postgres.Config{DSN: c.PostgresDSN()}), c.IsProd())
}

// Open wraps any gorm dialector. Tests use it with an sqlite file.
func Open(dialector gorm.Dialector, quiet bool) (*GormDB, error) {
	gormConfig := &gorm.Config{}
	if quiet {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}
	gormDB, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	g := &GormDB{DB: gormDB}
	if err := migrate(g.DB); err != nil {
		return nil, errors.Wrap(err, "unable to run migrations")
	}
	return g, nil
}

func (g *GormDB) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the underlying connection is usable.
func (g *GormDB) Ping() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.BookLike{},
		&models.Message{},
		&models.Blacklist{},
	)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrap(err, what)
}
