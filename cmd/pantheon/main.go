package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/developforgood/pantheon/internal/airtable"
	"github.com/developforgood/pantheon/internal/api"
	"github.com/developforgood/pantheon/internal/config"
	"github.com/developforgood/pantheon/internal/jobs"
	"github.com/developforgood/pantheon/internal/mail"
	"github.com/developforgood/pantheon/internal/pipeline"
	"github.com/developforgood/pantheon/internal/storage"
	"github.com/developforgood/pantheon/internal/workspace"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("pantheon %s (commit: %s, built: %s)\n", version, commit, date)
			os.Exit(0)
		}
	}

	// Local development keeps secrets in a .env file; missing is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	cfg := config.Parse()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level %q", cfg.LogLevel)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	store := openStore(ctx, cfg)
	registry := jobs.NewRegistry(store)

	if cfg.AirtableToken == "" {
		log.Fatal("AIRTABLE_TOKEN is required")
	}
	source := airtable.NewClient(cfg.AirtableToken)

	directory := openDirectory(cfg)
	mailer := openMailer(cfg)

	exporter := pipeline.NewExporter(directory, mailer, store, registry, pipeline.ExporterConfig{
		Principal: cfg.WorkspacePrincipal,
		OrgUnit:   cfg.WorkspaceOrgUnit,
		Domain:    cfg.WorkspaceDomain,
	})

	server := &api.Server{
		Store:    store,
		Registry: registry,
		Source:   source,
		Bases:    source,
		Importer: pipeline.NewImporter(source, store, registry),
		Exporter: exporter,
	}

	log.WithFields(log.Fields{"version": version, "listen": cfg.Listen}).
		Info("pantheon starting")
	if err := http.ListenAndServe(cfg.Listen, api.NewRouter(server)); err != nil {
		log.Fatal(err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) storage.Gateway {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store; data will not survive restarts")
		return storage.NewMemory()
	}
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	store := storage.NewStore(pool)
	if err := store.ApplySchema(ctx); err != nil {
		log.WithError(err).Fatal("applying database schema")
	}
	return store
}

func openDirectory(cfg *config.Config) workspace.Gateway {
	if cfg.WorkspaceKeyFile == "" {
		log.Warn("no workspace service account key configured, directory provisioning disabled")
		return workspace.Noop{}
	}
	key, err := workspace.LoadServiceAccountKey(cfg.WorkspaceKeyFile)
	if err != nil {
		log.WithError(err).Fatal("loading workspace service account key")
	}
	if cfg.WorkspacePrincipal == "" {
		log.Fatal("workspacePrincipal is required when a service account key is configured")
	}
	return workspace.NewServiceAccount(key)
}

func openMailer(cfg *config.Config) mail.Gateway {
	if cfg.SendgridKey == "" {
		log.Warn("SENDGRID_API_KEY not set, onboarding mail disabled")
		return mail.Noop{}
	}
	var opts []mail.SGOption
	if cfg.MailOverrideRecipient != "" {
		opts = append(opts, mail.WithOverrideRecipient(cfg.MailOverrideRecipient))
	}
	return mail.NewSendgrid(cfg.SendgridKey, opts...)
}
