// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quixsi/compose/internal/config"
	"github.com/quixsi/compose/internal/db"
	"github.com/quixsi/compose/internal/db/jsondb"
	"github.com/quixsi/compose/internal/db/kvdb"
	"github.com/quixsi/compose/internal/server"
)

func main() {
	var (
		serviceName = flag.String("service-name", "invite-composer", "otel service name")
		addr        = flag.String("addr", "0.0.0.0:8080", "default server address")
		dbStr       = flag.String("db", "jsondb://testdata", "database connection string, jsondb://<dir> or kvdb://<file>")
		otlpAddr    = flag.String("otlp-grpc", "", "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "INFO", "log level")
		staticDir   = flag.String("static-dir", "", "path to static directory")
	)
	flag.Parse()

	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	if *otlpAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
		conn, err := grpc.DialContext(ctx, *otlpAddr, grpcOptions...)
		if err != nil {
			logger.Error("failed to create gRPC connection to collector", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		// Set up a trace exporter
		otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
		otel.SetTracerProvider(tp)
	}

	var (
		stateStore db.StateStore
		themeStore db.ThemeStore
	)

	u, err := url.Parse(*dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "jsondb":
		dir := u.Host + u.Path
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("could not create storage directory", "error", err)
			os.Exit(1)
		}
		stateStore, err = jsondb.NewStateStore(filepath.Join(dir, "state.json"))
		if err != nil {
			logger.Error("could not initialize state store", "error", err)
			os.Exit(1)
		}
		themeStore, err = jsondb.NewThemeStore(filepath.Join(dir, "themes.json"))
		if err != nil {
			logger.Error("could not initialize theme store", "error", err)
			os.Exit(1)
		}
	case "kvdb":
		path := u.Host + u.Path
		bdb, err := bolt.Open(path, 0600, nil)
		if err != nil {
			logger.Error("could not open bolt database", "error", err)
			os.Exit(1)
		}
		defer bdb.Close()

		stateStore, err = kvdb.NewStateStore(bdb)
		if err != nil {
			logger.Error("could not initialize state buckets", "error", err)
			os.Exit(1)
		}
		// The theme catalog is static either way.
		themeStore, err = jsondb.NewThemeStore("")
		if err != nil {
			logger.Error("could not initialize theme store", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("Unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: server.NewServer(
			*serviceName,
			*staticDir,
			cfg,
			stateStore,
			themeStore,
		),
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}
