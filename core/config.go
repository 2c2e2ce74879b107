package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (local; default) | TEST | QA | PROD
		Build    string
		AppName  string

		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Upstream UpstreamConfig
		Cache    CacheConfig
	}

	ServerConfig struct {
		Host            string
		APIHost         string
		DebugHost       string
		ShutdownTimeout time.Duration

		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// UpstreamConfig holds the base URLs of the backend services the gateway
	// reads from. Bearer tokens are forwarded as-is; the gateway owns no
	// upstream credentials.
	UpstreamConfig struct {
		AcademicsURL    string
		OrganizationURL string
		PaymentsURL     string
		Timeout         time.Duration
	}

	CacheConfig struct {
		DefaultTTL time.Duration
		StaleTTL   time.Duration // extra window an expired entry may still be served stale
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("apiHost", "0.0.0.0:8000")
	conf.SetDefault("debugHost", "0.0.0.0:4000")
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "darasa")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbUser", "")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbAdminUser", "")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbDisableTLS", true)

	conf.SetDefault("upstreamAcademicsURL", "http://localhost:9001")
	conf.SetDefault("upstreamOrganizationURL", "http://localhost:9002")
	conf.SetDefault("upstreamPaymentsURL", "http://localhost:9003")
	conf.SetDefault("upstreamTimeout", 30*time.Second)

	conf.SetDefault("cacheDefaultTTL", 5*time.Minute)
	conf.SetDefault("cacheStaleTTL", 15*time.Minute)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     env == "TEST",
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			APIHost:            conf.GetString("apiHost"),
			DebugHost:          conf.GetString("debugHost"),
			ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Name:          conf.GetString("dbName"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Upstream: UpstreamConfig{
			AcademicsURL:    conf.GetString("upstreamAcademicsURL"),
			OrganizationURL: conf.GetString("upstreamOrganizationURL"),
			PaymentsURL:     conf.GetString("upstreamPaymentsURL"),
			Timeout:         conf.GetDuration("upstreamTimeout"),
		},
		Cache: CacheConfig{
			DefaultTTL: conf.GetDuration("cacheDefaultTTL"),
			StaleTTL:   conf.GetDuration("cacheStaleTTL"),
		},
	}
}
