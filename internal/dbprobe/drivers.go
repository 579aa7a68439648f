package dbprobe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" driver
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

func init() {
	Register("postgres", func(l *slog.Logger) Prober {
		return newSQLProber(l, "pgx", "SELECT version()", postgresDSN)
	})
	Register("mysql", func(l *slog.Logger) Prober {
		return newSQLProber(l, "mysql", "SELECT VERSION()", mysqlDSN)
	})
	Register("sqlite", func(l *slog.Logger) Prober {
		return newSQLProber(l, "sqlite", "SELECT sqlite_version()", fileDSN)
	})
	Register("duckdb", func(l *slog.Logger) Prober {
		return newSQLProber(l, "duckdb", "SELECT version()", fileDSN)
	})
	Register("mongodb", func(l *slog.Logger) Prober {
		return &mongoProber{logger: l}
	})
}

// postgresDSN builds a keyword/value connection string.
func postgresDSN(t Target) (string, error) {
	host := t.Host
	if host == "" {
		host = "localhost"
	}
	port := t.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if mode, ok := t.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		"host=" + quoteDSNValue(host),
		"port=" + strconv.Itoa(port),
		"sslmode=" + quoteDSNValue(sslmode),
	}
	if t.Database != "" {
		parts = append(parts, "dbname="+quoteDSNValue(t.Database))
	}
	if t.Username != "" {
		parts = append(parts, "user="+quoteDSNValue(t.Username))
	}
	if t.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(t.Password))
	}
	return strings.Join(parts, " "), nil
}

// quoteDSNValue quotes a libpq keyword value when it contains spaces or quotes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func mysqlDSN(t Target) (string, error) {
	host := t.Host
	if host == "" {
		host = "localhost"
	}
	port := t.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.User = t.Username
	cfg.Passwd = t.Password
	cfg.DBName = t.Database
	if t.Timeout > 0 {
		cfg.Timeout = t.Timeout
	}
	if len(t.Options) > 0 {
		cfg.Params = make(map[string]string, len(t.Options))
		for k, v := range t.Options {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

func fileDSN(t Target) (string, error) {
	if t.Path != "" {
		return t.Path, nil
	}
	if t.Database != "" {
		return t.Database, nil
	}
	return ":memory:", nil
}

// mongoURI builds a mongodb:// connection string.
func mongoURI(t Target) string {
	host := t.Host
	if host == "" {
		host = "localhost"
	}
	port := t.Port
	if port == 0 {
		port = 27017
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + t.Database,
	}
	if t.Username != "" {
		if t.Password != "" {
			u.User = url.UserPassword(t.Username, t.Password)
		} else {
			u.User = url.User(t.Username)
		}
	}
	if len(t.Options) > 0 {
		keys := make([]string, 0, len(t.Options))
		for k := range t.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := url.Values{}
		for _, k := range keys {
			q.Set(k, t.Options[k])
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type mongoProber struct {
	logger *slog.Logger
}

func (p *mongoProber) Probe(ctx context.Context, t Target) (*Result, error) {
	uri := mongoURI(t)
	p.logger.Debug("probing database", slog.String("driver", "mongodb"), slog.String("host", t.Host), slog.String("database", t.Database))

	opts := options.Client().ApplyURI(uri)
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetServerSelectionTimeout(time.Until(deadline))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open mongodb connection: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	start := time.Now()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	latency := time.Since(start)

	var info struct {
		Version string `bson:"version"`
	}
	err = client.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to read mongodb version: %w", err)
	}

	return &Result{Version: info.Version, Latency: latency}, nil
}
