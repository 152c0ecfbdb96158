package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mkrupp/homecase-console/internal/infra/config"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	transport "github.com/mkrupp/homecase-console/internal/infra/transport/http"
	"github.com/mkrupp/homecase-console/internal/repo/session"
	"github.com/mkrupp/homecase-console/internal/svc/accesssvc"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc/authclient"
	"github.com/mkrupp/homecase-console/internal/svc/catalogsvc"
	"github.com/mkrupp/homecase-console/internal/svc/consolesvc"
)

const (
	appName = "homecase"
	svcName = "console"
)

type Config struct {
	config.EnvConfig

	Log        logging.LoggerConfig           `envPrefix:"LOG_"`
	Auth       authsvc.AuthConfig             `envPrefix:"AUTH_"`
	AuthClient authclient.HTTPClientConfig    `envPrefix:"AUTH_CLIENT_"`
	Catalog    catalogsvc.GraphQLClientConfig `envPrefix:"CATALOG_"`
	HTTP       transport.HTTPClientConfig     `envPrefix:"HTTP_"`
	Session    session.RepositoryConfig       `envPrefix:"SESSION_"`
	CLI        consolesvc.CLIConfig           `envPrefix:"CLI_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	code := run(ctx, cfg, os.Args[1:])

	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg Config, args []string) int {
	log := logging.GetLogger("cmd.console")

	repo, err := newSessionRepository(cfg.Session)
	if err != nil {
		log.ErrorContext(ctx, "open session storage", "error", err)
		fmt.Fprintln(os.Stderr, "No se pudo abrir el almacenamiento de la sesión.")

		return 1
	}

	authSvc := authsvc.NewAuthService(
		authclient.NewHTTPClient(cfg.AuthClient, transport.NewHTTPClient(cfg.HTTP, nil, nil)),
		authsvc.NewSessionStore(repo),
		cfg.Auth,
	)
	defer func() {
		if cerr := authSvc.Close(); cerr != nil {
			log.WarnContext(ctx, "close session store", "error", cerr)
		}
	}()

	catalog := catalogsvc.NewGraphQLClient(cfg.Catalog, transport.NewHTTPClient(cfg.HTTP, nil, authSvc))

	cli := consolesvc.NewCLITransport(
		authSvc,
		accesssvc.NewDefaultRouter(authSvc),
		catalog,
		cfg.CLI,
		consolesvc.StdIO(),
	)

	return cli.Run(ctx, args)
}

func newSessionRepository(cfg session.RepositoryConfig) (session.Repository, error) {
	factory, err := session.NewRepositoryFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("new session repository factory: %w", err)
	}

	repo, err := factory()
	if err != nil {
		return nil, fmt.Errorf("new session repository: %w", err)
	}

	return repo, nil
}
