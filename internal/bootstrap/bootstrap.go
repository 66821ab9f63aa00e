// Package bootstrap opens the infrastructure the configuration selects:
// database connections, Firebase and the document store.
package bootstrap

import (
	"context"
	"time"

	"github.com/anonto42/socialape/backend/internal/auth"
	"github.com/anonto42/socialape/backend/internal/media"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/config"
	"github.com/anonto42/socialape/backend/pkg/firebase"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/pkg/errors"
)

// Infra holds the opened connections. Close releases all of them.
type Infra struct {
	Config   *config.Config
	DB       *config.DB
	Firebase *firebase.App
	Store    store.Store
}

// Open connects to everything cfg asks for and builds the document store.
func Open(ctx context.Context, cfg *config.Config) (*Infra, error) {
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	infra := &Infra{Config: cfg, DB: db}

	if cfg.NeedsFirebase() {
		infra.Firebase, err = firebase.InitFirebase(ctx, firebase.Options{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
			StorageBucket:   cfg.StorageBucket,
		})
		if err != nil {
			infra.Close()
			return nil, err
		}
	}

	infra.Store, err = infra.openStore(ctx)
	if err != nil {
		infra.Close()
		return nil, err
	}
	log.Log.WithField("driver", cfg.StoreDriver).Info("document store ready")
	return infra, nil
}

func (i *Infra) openStore(ctx context.Context) (store.Store, error) {
	switch i.Config.StoreDriver {
	case config.StoreFirestore:
		client, err := i.Firebase.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewFirestoreStore(client), nil
	case config.StoreMongo:
		s := store.NewMongoStore(i.DB.Mongo, i.Config.MongoDatabase)
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.EnsureIndexes(ctx, repositories.MongoIndexes()); err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory:
		log.Log.Warn("using the in-memory store, data is lost on exit")
		return store.NewMemoryStore(), nil
	}
	return nil, errors.Errorf("unknown store driver %q", i.Config.StoreDriver)
}

// AuthProvider builds the identity provider cfg selects.
func (i *Infra) AuthProvider(ctx context.Context) (auth.Provider, error) {
	if i.Config.AuthProvider == config.AuthFirebase {
		provider, err := auth.NewFirebaseProvider(ctx, i.Firebase.AuthClient, i.Config.FirebaseAPIKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}

	ttl := time.Duration(i.Config.JWTTTLHours) * time.Hour
	if i.DB.Postgres == nil {
		log.Log.Warn("no POSTGRES_CONN_STR, local accounts are kept in memory")
		return auth.NewLocalProvider(auth.NewMemoryAccountStore(), i.Config.JWTSecret, ttl), nil
	}
	accounts, err := auth.NewPostgresAccountStore(i.DB.Postgres)
	if err != nil {
		return nil, err
	}
	return auth.NewLocalProvider(accounts, i.Config.JWTSecret, ttl), nil
}

// Uploader stores images in the Firebase bucket when one is configured and
// in memory otherwise.
func (i *Infra) Uploader(ctx context.Context) (media.Uploader, error) {
	if i.Firebase == nil || i.Config.StorageBucket == "" {
		log.Log.Warn("no STORAGE_BUCKET, uploaded images are kept in memory")
		return media.NewMemoryUploader(i.Config.StorageBucket), nil
	}
	bucket, err := i.Firebase.Bucket(ctx)
	if err != nil {
		return nil, err
	}
	return media.NewFirebaseUploader(bucket, i.Config.StorageBucket), nil
}

func (i *Infra) Close() {
	if i.Store != nil {
		if err := i.Store.Close(); err != nil {
			log.Log.WithError(err).Error("Error closing document store")
		}
	}
	i.DB.CloseDB()
}
