package config

import (
	"context"
	"time"

	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
)

// DB holds the database connections the configuration asked for. Either
// field may be nil.
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
}

// InitDB opens the connections required by cfg: Mongo when it is the document
// store, Postgres when local auth keeps its accounts there.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	db := &DB{}

	if cfg.StoreDriver == StoreMongo {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to MongoDB")
		}
		db.Mongo = client
	}

	if cfg.AuthProvider == AuthLocal && cfg.PostgresConnStr != "" {
		pg, err := connectPostgres(ctx, cfg.PostgresConnStr)
		if err != nil {
			db.CloseDB()
			return nil, errors.Wrap(err, "failed to connect to PostgreSQL")
		}
		db.Postgres = pg
	}

	return db, nil
}

// connectPostgres opens the account database. Only signups and logins touch
// it, so the pool stays small.
func connectPostgres(ctx context.Context, connStr string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Log.WithField("database", "postgres").Info("connected")
	return gdb, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName("socialape-api").
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Log.WithField("database", "mongo").Info("connected")
	return client, nil
}

// CloseDB closes whatever InitDB opened. Failures are logged, not returned:
// it runs on the way out.
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err != nil {
			log.Log.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.Log.WithError(err).Error("Error closing PostgreSQL connection")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Log.WithError(err).Error("Error closing MongoDB connection")
		}
	}
	log.Log.Debug("database connections closed")
}
