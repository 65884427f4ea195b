// Package config declares the service configuration, parsed from the
// environment with the RUNWAY prefix.
package config

import "time"

type Config struct {
	Web     Web
	Cors    Cors
	Catalog Catalog
	Store   Store
	Cart    Cart
	Rate    Rate
	Session Session
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:5000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type Catalog struct {
	// File is the scraped marketplace dump the catalog is built from.
	File string `conf:"default:jumia_catalog_all.json"`
}

type Store struct {
	// Backend selects where visitor snapshots live: file, memory or redis.
	Backend  string        `conf:"default:file"`
	Dir      string        `conf:"default:data/snapshots"`
	RedisURL string        `conf:"default:redis://localhost:6379/0,mask"`
	RedisTTL time.Duration `conf:"default:720h"`
}

type Cart struct {
	Currency              string  `conf:"default:USD"`
	TaxRate               float64 `conf:"default:0.1"`
	FreeShippingThreshold float64 `conf:"default:50"`
}

type Rate struct {
	RPS   float64       `conf:"default:20"`
	Burst int           `conf:"default:40"`
	Idle  time.Duration `conf:"default:3m"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:720h"`
}
