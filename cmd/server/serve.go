package main

import (
    "context"
    "net/http"
    "os"
    "os/signal"
    "strconv"
    "syscall"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"
    "github.com/urfave/cli"

    "github.com/iliyamo/cinema-catalog/internal/config"
    "github.com/iliyamo/cinema-catalog/internal/database"
    "github.com/iliyamo/cinema-catalog/internal/handler"
    "github.com/iliyamo/cinema-catalog/internal/middleware"
    "github.com/iliyamo/cinema-catalog/internal/repository"
    "github.com/iliyamo/cinema-catalog/internal/router"
    "github.com/iliyamo/cinema-catalog/internal/service"
    "github.com/iliyamo/cinema-catalog/internal/storage"
)

func makeServeCMD() cli.Command {
    return cli.Command{
        Name:    "serve",
        Aliases: []string{"s"},
        Usage:   "Serves the catalog API",
        Action:  serve,
    }
}

func configureLogging(cfg config.Config) {
    if cfg.Env == "prod" {
        log.SetFormatter(&log.JSONFormatter{})
    } else {
        log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
    }
    lvl, err := log.ParseLevel(cfg.LogLevel)
    if err != nil {
        log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
        lvl = log.InfoLevel
    }
    log.SetLevel(lvl)
}

type closer func(context.Context) error

func serve(c *cli.Context) error {
    cfg, err := config.Load()
    if err != nil {
        return err
    }
    configureLogging(cfg)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // Setting Mongo
    mongo, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
    if err != nil {
        return err
    }
    // Released last; the client disconnects once every repository is closed.
    closers := []closer{mongo.Release}
    defer func() {
        shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
        defer cancel()
        for i := len(closers) - 1; i >= 0; i-- {
            if err := closers[i](shCtx); err != nil {
                log.WithError(err).Warn("shutdown: close failed")
            }
        }
    }()
    if err := mongo.EnsureIndexes(ctx); err != nil {
        return err
    }

    // Setting repositories
    movies := repository.NewMovieRepo(mongo)
    genres := repository.NewGenreRepo(mongo)
    closers = append(closers, movies.Close, genres.Close)

    // Setting seance source
    finder, closeFinder, err := makeSeanceFinder(cfg, mongo)
    if err != nil {
        return err
    }
    closers = append(closers, closeFinder)

    // Setting blob store
    blobs, mediaDir, err := makeBlobStore(cfg)
    if err != nil {
        return err
    }

    // Setting Redis
    rdb := config.NewRedisClient()
    if rdb != nil {
        closers = append(closers, func(context.Context) error { return rdb.Close() })
    }

    v := handler.NewValidator()
    mh := &handler.MovieHandler{
        Scheme:         cfg.IDScheme,
        Movies:         movies,
        Genres:         genres,
        Availability:   service.NewAvailability(finder, cfg.SeanceLookupTimeout, cfg.SeanceFanOut),
        Blobs:          blobs,
        Publisher:      service.NewPublisher(cfg.RabbitMQURL, cfg.ReservationQueue),
        Validator:      v,
        MaxUploadBytes: cfg.MaxUploadBytes,
    }
    gh := &handler.GenreHandler{Genres: genres, Catalog: mh, Validator: v}

    // Setting Echo
    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.RequestID(), echomw.Recover(), middleware.RequestLogger())
    e.Use(echomw.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))
    router.RegisterRoutes(e)
    router.RegisterCatalog(e, router.Deps{
        JWTSecret:   cfg.JWTSecret,
        Redis:       rdb,
        Cache:       config.LoadCacheConfig(),
        RateLimit:   config.LoadRateLimitConfig(),
        MediaDir:    mediaDir,
        MediaPrefix: cfg.MediaURLPrefix,
    }, mh, gh)

    errCh := make(chan error, 1)
    go func() {
        log.WithField("addr", ":"+cfg.Port).
            WithField("env", cfg.Env).
            WithField("id_scheme", cfg.IDScheme).
            WithField("seances", cfg.SeanceBackend).
            Info("listening")
        if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case <-ctx.Done():
        log.Info("shutdown signal received")
    case err := <-errCh:
        if err != nil {
            return errors.Wrap(err, "http server")
        }
    }
    shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
    defer cancel()
    return errors.Wrap(e.Shutdown(shCtx), "http shutdown")
}

func makeSeanceFinder(cfg config.Config, mongo *database.Mongo) (service.SeanceFinder, closer, error) {
    if cfg.SeanceBackend == config.SeanceBackendMySQL {
        db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        if err != nil {
            return nil, nil, err
        }
        r := repository.NewSQLSeanceRepo(db)
        return r, r.Close, nil
    }
    r := repository.NewMongoSeanceRepo(mongo)
    return r, r.Close, nil
}

// makeBlobStore returns the configured store and, for the local backend, the
// directory to serve under the media prefix.
func makeBlobStore(cfg config.Config) (handler.BlobStore, string, error) {
    if cfg.BlobBackend == config.BlobBackendS3 {
        s, err := storage.NewS3(cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.S3Prefix)
        if err != nil {
            return nil, "", err
        }
        return s, "", nil
    }
    return storage.NewLocal(cfg.UploadDir, cfg.MediaURLPrefix), cfg.UploadDir, nil
}

// bodyLimit leaves headroom over the upload limit for multipart framing.
func bodyLimit(maxUpload int64) string {
    const mb = 1 << 20
    n := maxUpload/mb + 1
    return strconv.FormatInt(n, 10) + "M"
}
