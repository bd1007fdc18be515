// Package config loads service settings from defaults, an optional YAML file,
// a .env file and LAGER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "LAGER"
	configFileName = "config"
	configFileType = "yaml"
)

// Config keys.
const (
	KeyHTTPAddr             = "http.addr"
	KeyGRPCAddr             = "grpc.addr"
	KeyStoreDriver          = "store.driver"
	KeyStoreDSN             = "store.dsn"
	KeyStoreMaxOpenConns    = "store.max_open_conns"
	KeyStoreMaxIdleConns    = "store.max_idle_conns"
	KeyStoreConnMaxLifetime = "store.conn_max_lifetime"
	KeyRedisAddr            = "redis.addr"
	KeyRedisPassword        = "redis.password"
	KeyRedisDB              = "redis.db"
	KeyRedisPoolSize        = "redis.pool_size"
	KeyIdempotencyTTL       = "redis.idempotency_ttl"
	KeyDeletePolicy         = "catalog.category_delete_policy"
	KeyExportCategoryLabel  = "export.category_label"
	KeyExportItemLabel      = "export.item_label"
	KeyExportSheet          = "export.sheet"
	KeyExportFileName       = "export.file_name"
	KeyArchiveDriver        = "archive.driver"
	KeyArchiveDir           = "archive.dir"
	KeyS3Bucket             = "archive.s3.bucket"
	KeyS3Region             = "archive.s3.region"
	KeyS3Endpoint           = "archive.s3.endpoint"
	KeyS3Prefix             = "archive.s3.prefix"
	KeyS3PathStyle          = "archive.s3.path_style"
	KeyS3AccessKeyID        = "archive.s3.access_key_id"
	KeyS3SecretAccessKey    = "archive.s3.secret_access_key"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyShutdownTimeout      = "shutdown_timeout"
)

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration
	Store           StoreConfig
	Redis           RedisConfig
	Catalog         CatalogConfig
	Export          ExportConfig
	Archive         ArchiveConfig
	Log             LogConfig
}

type StoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig: an empty Addr disables request deduplication.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	IdempotencyTTL time.Duration
}

type CatalogConfig struct {
	CategoryDeletePolicy string
}

type ExportConfig struct {
	CategoryLabel string
	ItemLabel     string
	Sheet         string
	FileName      string
}

type ArchiveConfig struct {
	Driver string // fs, s3 or none
	Dir    string
	S3     S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyGRPCAddr, ":50051")
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)
	v.SetDefault(KeyStoreDriver, "sqlite")
	v.SetDefault(KeyStoreDSN, "lagerapp.db")
	v.SetDefault(KeyStoreMaxOpenConns, 50)
	v.SetDefault(KeyStoreMaxIdleConns, 25)
	v.SetDefault(KeyStoreConnMaxLifetime, 5*time.Minute)
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisPoolSize, 100)
	v.SetDefault(KeyIdempotencyTTL, 24*time.Hour)
	v.SetDefault(KeyDeletePolicy, "reject")
	v.SetDefault(KeyExportCategoryLabel, "Warengruppe")
	v.SetDefault(KeyExportItemLabel, "Artikel")
	v.SetDefault(KeyExportSheet, "Bestände")
	v.SetDefault(KeyExportFileName, "dashboard_bestande")
	v.SetDefault(KeyArchiveDriver, "none")
	v.SetDefault(KeyArchiveDir, "exports")
	v.SetDefault(KeyS3Region, "us-east-1")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load reads the configuration. configFile may be empty, in which case
// config.yaml is looked up in the working directory and ./config; a missing
// file is not an error. A .env file in the working directory is loaded into
// the environment first when present.
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		HTTPAddr:        v.GetString(KeyHTTPAddr),
		GRPCAddr:        v.GetString(KeyGRPCAddr),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		Store: StoreConfig{
			Driver:          strings.ToLower(v.GetString(KeyStoreDriver)),
			DSN:             v.GetString(KeyStoreDSN),
			MaxOpenConns:    v.GetInt(KeyStoreMaxOpenConns),
			MaxIdleConns:    v.GetInt(KeyStoreMaxIdleConns),
			ConnMaxLifetime: v.GetDuration(KeyStoreConnMaxLifetime),
		},
		Redis: RedisConfig{
			Addr:           v.GetString(KeyRedisAddr),
			Password:       v.GetString(KeyRedisPassword),
			DB:             v.GetInt(KeyRedisDB),
			PoolSize:       v.GetInt(KeyRedisPoolSize),
			IdempotencyTTL: v.GetDuration(KeyIdempotencyTTL),
		},
		Catalog: CatalogConfig{
			CategoryDeletePolicy: strings.ToLower(v.GetString(KeyDeletePolicy)),
		},
		Export: ExportConfig{
			CategoryLabel: v.GetString(KeyExportCategoryLabel),
			ItemLabel:     v.GetString(KeyExportItemLabel),
			Sheet:         v.GetString(KeyExportSheet),
			FileName:      v.GetString(KeyExportFileName),
		},
		Archive: ArchiveConfig{
			Driver: strings.ToLower(v.GetString(KeyArchiveDriver)),
			Dir:    v.GetString(KeyArchiveDir),
			S3: S3Config{
				Bucket:          v.GetString(KeyS3Bucket),
				Region:          v.GetString(KeyS3Region),
				Endpoint:        v.GetString(KeyS3Endpoint),
				Prefix:          v.GetString(KeyS3Prefix),
				PathStyle:       v.GetBool(KeyS3PathStyle),
				AccessKeyID:     v.GetString(KeyS3AccessKeyID),
				SecretAccessKey: v.GetString(KeyS3SecretAccessKey),
			},
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("%s: unknown driver %q", KeyStoreDriver, c.Store.Driver)
	}
	switch c.Catalog.CategoryDeletePolicy {
	case "reject", "cascade":
	default:
		return fmt.Errorf("%s: must be reject or cascade, got %q", KeyDeletePolicy, c.Catalog.CategoryDeletePolicy)
	}
	switch c.Archive.Driver {
	case "none", "fs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("%s is required for the s3 archive", KeyS3Bucket)
		}
	default:
		return fmt.Errorf("%s: unknown driver %q", KeyArchiveDriver, c.Archive.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s: must be text or json, got %q", KeyLogFormat, c.Log.Format)
	}
	return nil
}
