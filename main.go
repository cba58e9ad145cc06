package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"rowlly_listings/catalog"
	"rowlly_listings/config"
	"rowlly_listings/httputil"
	"rowlly_listings/logging"
	"rowlly_listings/models"
	"rowlly_listings/scheduler"
	"rowlly_listings/search"
	"rowlly_listings/selection"
	"rowlly_listings/server"
	"rowlly_listings/services"
	"rowlly_listings/storage"
	"rowlly_listings/workers"
)

var (
	searchQuery    = flag.String("search", "", "Run one search against the catalog, print matching ids and exit")
	searchType     = flag.String("type", "all", "Property type for -search")
	searchSort     = flag.String("sort", string(models.SortPriceLow), "Sort key for -search")
	importPostgres = flag.Bool("import-postgres", false, "Copy the configured catalog into Postgres (DATABASE_URL) and exit")
	publishS3      = flag.Bool("publish-s3", false, "Upload the configured catalog to S3 and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath, models.ParseLogLevel(cfg.LogLevel))
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := catalogSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog source: %v", err)
	}
	defer closeSource()

	// Handle one-shot commands
	switch {
	case flagSet("search"):
		if err := runSearch(ctx, source); err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		return
	case *importPostgres:
		if err := runImport(ctx, cfg, source); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	case *publishS3:
		if err := runPublish(ctx, cfg, source); err != nil {
			log.Fatalf("Publish failed: %v", err)
		}
		return
	}

	log.Println("Starting rowlly listings...")

	listings, err := services.NewListingService(ctx, source)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Catalog source: %s (%d listings)", cfg.Catalog.Source, listings.Catalog().Len())

	// SQLite carries operator commands and image check results whatever the
	// selection store is.
	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	store, closeStore, err := selectionStore(ctx, cfg, sqliteStore)
	if err != nil {
		log.Fatalf("Failed to open selection store: %v", err)
	}
	defer closeStore()
	log.Printf("Selection store: %s", cfg.Selection.Store)

	clients, err := httputil.NewClients(cfg.ImageCheck)
	if err != nil {
		log.Fatalf("Failed to build HTTP clients: %v", err)
	}

	imageWorker := workers.NewImageCheckWorker(listings, sqliteStore, clients.Check)
	go imageWorker.Run(ctx, cfg.ImageCheck.Interval)
	log.Println("Image check worker started")

	sched := scheduler.New(cfg.Scheduler, listings, sqliteStore)
	sched.SetWorkers(imageWorker)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := server.New(
		listings,
		services.NewHealthcheckService(listings, store),
		selection.NewRegistry(store, cfg.Selection.KeyPrefix, cfg.Selection.MaxSessions, cfg.Selection.SessionTTL),
		imageWorker,
	)
	log.Printf("Listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr, cfg.CORSOrigins); err != nil {
		log.Printf("HTTP server: %v", err)
	}

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

func catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	noop := func() {}
	switch cfg.Catalog.Source {
	case "file":
		return catalog.FileSource{Path: cfg.Catalog.Path}, noop, nil
	case "s3":
		src, err := storage.NewS3CatalogSource(ctx, s3Config(cfg))
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case "postgres":
		pg, err := storage.NewPostgresStore(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Catalog.DatabaseURL))
		return pg, pg.Close, nil
	default:
		return catalog.SampleSource, noop, nil
	}
}

func selectionStore(ctx context.Context, cfg *config.Config, sqliteStore *storage.SQLiteStore) (selection.Store, func(), error) {
	switch cfg.Selection.Store {
	case "redis":
		rs, err := storage.NewRedisStore(ctx, cfg.Selection.RedisAddr, cfg.Selection.RedisPassword, cfg.Selection.RedisDB, cfg.Selection.RedisTTL)
		if err != nil {
			return nil, func() {}, err
		}
		return rs, func() { rs.Close() }, nil
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return sqliteStore, func() {}, nil
	}
}

func s3Config(cfg *config.Config) storage.S3Config {
	return storage.S3Config{
		Bucket:          cfg.Catalog.S3.Bucket,
		Key:             cfg.Catalog.S3.Key,
		Region:          cfg.Catalog.S3.Region,
		Endpoint:        cfg.Catalog.S3.Endpoint,
		AccessKeyID:     cfg.Catalog.S3.AccessKeyID,
		SecretAccessKey: cfg.Catalog.S3.SecretAccessKey,
	}
}

func runSearch(ctx context.Context, source catalog.Source) error {
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	spec := models.DefaultFilterSpec()
	spec.Search = *searchQuery
	if *searchType != "" && *searchType != "all" {
		if spec.PropertyType, err = models.ParsePropertyType(*searchType); err != nil {
			return err
		}
	}
	if spec.SortBy, err = models.ParseSortKey(*searchSort); err != nil {
		return err
	}

	for _, p := range search.Search(c.Properties(), spec) {
		fmt.Printf("%s\t%d\t%s, %s\n", p.ID, p.Price, p.Title, p.City)
	}
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, source catalog.Source) error {
	if cfg.Catalog.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Catalog.Source == "postgres" {
		return fmt.Errorf("catalog source is already postgres")
	}
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	pg, err := storage.NewPostgresStore(ctx, cfg.Catalog.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := pg.ImportCatalog(ctx, c); err != nil {
		return err
	}
	log.Printf("Imported %d listings into %s", c.Len(), maskConnectionString(cfg.Catalog.DatabaseURL))
	return nil
}

func runPublish(ctx context.Context, cfg *config.Config, source catalog.Source) error {
	if cfg.Catalog.S3.Bucket == "" || cfg.Catalog.S3.Key == "" {
		return fmt.Errorf("S3_BUCKET and S3_KEY are required")
	}
	c, err := source.Load(ctx)
	if err != nil {
		return err
	}

	dst, err := storage.NewS3CatalogSource(ctx, s3Config(cfg))
	if err != nil {
		return err
	}
	if err := dst.Publish(ctx, c); err != nil {
		return err
	}
	log.Printf("Published %d listings to s3://%s/%s", c.Len(), cfg.Catalog.S3.Bucket, cfg.Catalog.S3.Key)
	return nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, ok := u.User.Password(); ok {
		return strings.Replace(u.Redacted(), "xxxxx", "****", 1)
	}
	return connStr
}
