package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Open selects a backend from the URL scheme: memory://, redis://,
// sqlite:///path, postgres:// (or postgresql://) and mongodb://host/db.
func Open(ctx context.Context, rawURL string) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storage url: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "redis", "rediss":
		return ConnectRedis(ctx, rawURL)
	case "sqlite":
		path := strings.TrimPrefix(rawURL, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite storage url needs a file path")
		}
		return NewSQLStore(ctx, DialectSQLite, path)
	case "postgres", "postgresql":
		return NewSQLStore(ctx, DialectPostgres, rawURL)
	case "mongodb", "mongodb+srv":
		dbName := strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			dbName = "storefront"
		}
		db, err := ConnectMongoDB(ctx, rawURL, dbName)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
	}
}
