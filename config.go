package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables read by the App.
const EnvPrefix = "BKIS"

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Mongo                   MongoConfig   `yaml:"mongo" envconfig:"MONGO"`
	Mirror                  MirrorConfig  `yaml:"mirror" envconfig:"MIRROR"`
	Redis                   RedisConfig   `yaml:"redis" envconfig:"REDIS"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb" envconfig:"BOLTDB"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            string        `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri" envconfig:"URI" json:"-"`
	Database       string        `yaml:"database" envconfig:"DATABASE"`
	Collection     string        `yaml:"collection" envconfig:"COLLECTION"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
	OpsTimeout     time.Duration `yaml:"ops_timeout" envconfig:"OPS_TIMEOUT"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" envconfig:"MAX_POOL_SIZE"`
}

// MirrorConfig toggles the redis-fed boltdb copy of the books collection.
type MirrorConfig struct {
	Enable bool `yaml:"enable" envconfig:"ENABLE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"HOST"`
	Port          string        `yaml:"port" envconfig:"PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"USERNAME"`
	Password      string        `yaml:"password" envconfig:"PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overrides the App config.
// Keys are built from the prefix and the nested tags, e.g. BKIS_SERVER_PORT.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Mongo.URI) == 0 {
		return errors.New("make sure to set valid mongo connection uri in configuration file")
	}

	if len(config.Mongo.Database) == 0 || len(config.Mongo.Collection) == 0 {
		return errors.New("make sure to set valid mongo database and collection names in configuration file")
	}

	if config.Mirror.Enable {
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("mirror enabled: make sure to set valid redis address and port in configuration file")
		}
		if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
			return errors.New("mirror enabled: make sure to set valid boltdb file path and bucket in configuration file")
		}
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.Mongo.ConnectTimeout <= 0 {
		config.Mongo.ConnectTimeout = 10 * time.Second
	}

	if config.Mongo.OpsTimeout <= 0 {
		config.Mongo.OpsTimeout = 5 * time.Second
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 15 * time.Second
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The file is optional.
	if err = godotenv.Load("./config.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
