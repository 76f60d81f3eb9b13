package db

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shresthjindal28/gradient-library/constants"
	"github.com/shresthjindal28/gradient-library/model"
	"github.com/shresthjindal28/gradient-library/util"
)

// SetupDatabase opens a gorm handle for a connection string in either the
// 'DBTYPE=PARAMS' form (sqlite=..., postgres=...) or postgres URL form.
func SetupDatabase(dbval string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch {
	case strings.HasPrefix(dbval, "sqlite="):
		dial = sqlite.Open(strings.TrimPrefix(dbval, "sqlite="))
	case strings.HasPrefix(dbval, "postgres="):
		dial = postgres.Open(strings.TrimPrefix(dbval, "postgres="))
	case strings.HasPrefix(dbval, "postgres://"), strings.HasPrefix(dbval, "postgresql://"):
		dial = postgres.Open(dbval)
	default:
		return nil, fmt.Errorf("unsupported or unrecognized db type: %s", dbval)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxIdleConns(80)
	sqldb.SetMaxOpenConns(99)
	sqldb.SetConnMaxIdleTime(time.Hour)

	if err := db.AutoMigrate(
		&util.User{},
		&util.AuthToken{},
		&model.Gradient{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

// Normalize appends the default database name to URL-form connection strings
// that carry no path, mirroring what operators usually forget to include.
func Normalize(conn string) string {
	if !strings.HasPrefix(conn, "postgres://") && !strings.HasPrefix(conn, "postgresql://") {
		return conn
	}

	u, err := url.Parse(conn)
	if err != nil {
		return conn
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/" + constants.DefaultDatabaseName
	}
	return u.String()
}

// Candidates returns the ordered list of connection strings to attempt: the
// configured value first, then a fixed list of transforms (scheme
// substitution and resolver/ssl hints). Only URL-form postgres strings have
// meaningful alternatives.
func Candidates(conn string) []string {
	out := []string{conn}

	switch {
	case strings.HasPrefix(conn, "postgresql://"):
		out = append(out, "postgres://"+strings.TrimPrefix(conn, "postgresql://"))
	case strings.HasPrefix(conn, "postgres://"):
		out = append(out, "postgresql://"+strings.TrimPrefix(conn, "postgres://"))
	default:
		return out
	}

	for _, hint := range []string{"sslmode=prefer", "connect_timeout=10"} {
		param := strings.SplitN(hint, "=", 2)[0]
		if strings.Contains(conn, param+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(conn, "?") {
			sep = "&"
		}
		out = append(out, conn+sep+hint)
	}
	return out
}

// Redact masks the credential portion of a connection string for logging.
func Redact(conn string) string {
	start := strings.Index(conn, "://")
	if start < 0 {
		return conn
	}
	at := strings.LastIndex(conn, "@")
	if at < 0 {
		return conn
	}
	return conn[:start+3] + "***:***" + conn[at:]
}
