package config

import "os"

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Identity IdentityConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Addr string
}

type AuthConfig struct {
	// Provider selects where credentials are verified: "local" checks the
	// password hash in the users table, "external" proxies to the identity
	// provider configured in IdentityConfig.
	Provider      string
	JWTSecret     string
	JWTAccessTTL  string
	JWTRefreshTTL string
	LoginRPS      string
	LoginBurst    string
}

type IdentityConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       string
}

type CORSConfig struct {
	AllowedOrigins string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr: getenv("SERVER_ADDR", ":8080"),
		},
		Auth: AuthConfig{
			Provider:      getenv("AUTH_PROVIDER", "local"),
			JWTSecret:     os.Getenv("JWT_SECRET"),
			JWTAccessTTL:  getenv("JWT_ACCESS_TTL", "60m"),
			JWTRefreshTTL: getenv("JWT_REFRESH_TTL", "168h"),
			LoginRPS:      getenv("LOGIN_RATE_LIMIT", "5"),
			LoginBurst:    getenv("LOGIN_RATE_BURST", "10"),
		},
		Identity: IdentityConfig{
			BaseURL:    os.Getenv("IDENTITY_URL"),
			ServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),
			Timeout:    getenv("IDENTITY_TIMEOUT", "15s"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenv("REDIS_DB", "0"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getenv("CORS_ORIGINS", "*"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
