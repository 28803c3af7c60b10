package app

import (
    "context"
    "database/sql"
    "fmt"

    "go.uber.org/zap"

    "github.com/iliyamo/raffle-reservation/internal/config"
    "github.com/iliyamo/raffle-reservation/internal/database"
    "github.com/iliyamo/raffle-reservation/internal/handler"
    "github.com/iliyamo/raffle-reservation/internal/repository"
    "github.com/iliyamo/raffle-reservation/internal/service"
)

// AdminSeeder creates the configured admin account if missing.
type AdminSeeder interface {
    EnsureSeed(ctx context.Context, username, password string, cost int) (bool, error)
}

// Stores is the persistence layer selected by STORE_DRIVER.
type Stores struct {
    Entries service.EntryStore
    Admins  interface {
        handler.AdminStore
        AdminSeeder
    }
    Tokens handler.TokenStore
    Health handler.Pinger
    Close  func(ctx context.Context) error
}

// OpenStores connects to the configured backend, brings its schema or
// indexes up to date and seeds the admin account.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
    var (
        st  *Stores
        err error
    )
    switch cfg.StoreDriver {
    case config.DriverMongo:
        st, err = openMongo(ctx, cfg)
    case config.DriverSQLite:
        st, err = openSQL(ctx, cfg, logger, "sqlite")
    default:
        st, err = openSQL(ctx, cfg, logger, "mysql")
    }
    if err != nil {
        return nil, err
    }

    if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
        created, err := st.Admins.EnsureSeed(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.BcryptCost)
        if err != nil {
            _ = st.Close(ctx)
            return nil, fmt.Errorf("seed admin: %w", err)
        }
        if created {
            logger.Info("admin account created", zap.String("username", cfg.AdminUsername))
        }
    } else {
        logger.Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set; no admin account seeded")
    }
    return st, nil
}

func openSQL(ctx context.Context, cfg config.Config, logger *zap.Logger, driver string) (*Stores, error) {
    var (
        db  *sql.DB
        err error
    )
    if driver == "sqlite" {
        db, err = database.OpenSQLite(cfg.SQLitePath)
    } else {
        db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    }
    if err != nil {
        return nil, err
    }

    m, err := database.NewMigrator(db, driver, logger)
    if err != nil {
        _ = db.Close()
        return nil, err
    }
    if err := m.Run(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }

    return &Stores{
        Entries: repository.NewEntryRepo(db),
        Admins:  repository.NewAdminRepo(db),
        Tokens:  repository.NewTokenRepo(db),
        Health:  handler.PingFunc(db.PingContext),
        Close:   func(context.Context) error { return db.Close() },
    }, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*Stores, error) {
    client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
    if err != nil {
        return nil, err
    }
    entries := repository.NewMongoEntryRepo(db)
    admins := repository.NewMongoAdminRepo(db)
    tokens := repository.NewMongoTokenRepo(db)
    for _, ensure := range []func(context.Context) error{entries.EnsureIndexes, admins.EnsureIndexes, tokens.EnsureIndexes} {
        if err := ensure(ctx); err != nil {
            _ = client.Disconnect(ctx)
            return nil, err
        }
    }
    return &Stores{
        Entries: entries,
        Admins:  admins,
        Tokens:  tokens,
        Health:  handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
        Close:   client.Disconnect,
    }, nil
}
