package config

import "os"

// Server captures process level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty DATABASE_URL selects the in-memory stores.
func FromEnv() Server {
	addr := os.Getenv("PRECATO_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}
