package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the directory passed to Load.
const FileName = "dogfight.cfg.json"

// EnvFile is an optional dotenv file next to the config file. Its
// variables never override ones already set in the environment.
const EnvFile = ".env"

// EnvPrefix namespaces environment overrides: DOGFIGHT_API_APIKEY sets
// api.apiKey.
const EnvPrefix = "DOGFIGHT"

// SimConfig tunes the headless simulation host.
type SimConfig struct {
	TickHz          float64 `json:"tickHz" mapstructure:"tickHz"`
	MaxDt           float64 `json:"maxDt" mapstructure:"maxDt"`
	RestartDelay    float64 `json:"restartDelay" mapstructure:"restartDelay"`
	Seed            int64   `json:"seed" mapstructure:"seed"`
	FuzeProbability float64 `json:"fuzeProbability" mapstructure:"fuzeProbability"`
	MissileGuidance bool    `json:"missileGuidance" mapstructure:"missileGuidance"`
	// StateEvery samples recorded aircraft states every N ticks.
	StateEvery int `json:"stateEvery" mapstructure:"stateEvery"`
	// Duration stops the host after this much wall time; zero runs until signalled.
	Duration time.Duration `json:"duration" mapstructure:"duration"`

	SpawnX       float64 `json:"spawnX" mapstructure:"spawnX"`
	SpawnY       float64 `json:"spawnY" mapstructure:"spawnY"`
	SpawnZ       float64 `json:"spawnZ" mapstructure:"spawnZ"`
	SpawnHeading float64 `json:"spawnHeading" mapstructure:"spawnHeading"`

	Weather WeatherConfig `json:"weather" mapstructure:"weather"`
	Origin  OriginConfig  `json:"origin" mapstructure:"origin"`
}

// WeatherConfig is the static environment handed to the flight model.
type WeatherConfig struct {
	WindSpeed     float64 `json:"windSpeed" mapstructure:"windSpeed"`
	WindDirection float64 `json:"windDirection" mapstructure:"windDirection"`
	Turbulence    float64 `json:"turbulence" mapstructure:"turbulence"`
	Visibility    float64 `json:"visibility" mapstructure:"visibility"`
}

// OriginConfig anchors local simulation metres to a WGS84 position.
type OriginConfig struct {
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the in-memory sqlite backend settings.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// PostgresConfig holds connection settings for the postgres backend.
type PostgresConfig struct {
	Host          string        `json:"host" mapstructure:"host"`
	Port          string        `json:"port" mapstructure:"port"`
	Username      string        `json:"username" mapstructure:"username"`
	Password      string        `json:"password" mapstructure:"password"`
	Database      string        `json:"database" mapstructure:"database"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
}

// WebSocketConfig holds settings for streaming to a remote server.
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the recording backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig  `json:"postgres" mapstructure:"postgres"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL is the server address built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GraylogConfig holds GELF output settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// APIConfig holds the recording server settings.
type APIConfig struct {
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
	Upload    bool   `json:"upload" mapstructure:"upload"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	if err := loadEnvFile(filepath.Join(configDir, EnvFile)); err != nil {
		return err
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error reading env file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Dogfight")
	viper.SetDefault("logsDir", "./dogfightlogs")

	viper.SetDefault("sim.tickHz", 60.0)
	viper.SetDefault("sim.maxDt", 0.1)
	viper.SetDefault("sim.restartDelay", 3.0)
	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.fuzeProbability", 0.001)
	viper.SetDefault("sim.missileGuidance", false)
	viper.SetDefault("sim.stateEvery", 6)
	viper.SetDefault("sim.duration", "0s")
	viper.SetDefault("sim.spawnX", 0.0)
	viper.SetDefault("sim.spawnY", 1.5)
	viper.SetDefault("sim.spawnZ", -2150.0)
	viper.SetDefault("sim.spawnHeading", 3.141592653589793)
	viper.SetDefault("sim.weather.windSpeed", 0.0)
	viper.SetDefault("sim.weather.windDirection", 0.0)
	viper.SetDefault("sim.weather.turbulence", 0.0)
	viper.SetDefault("sim.weather.visibility", 10000.0)
	viper.SetDefault("sim.origin.latitude", 0.0)
	viper.SetDefault("sim.origin.longitude", 0.0)

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.upload", false)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "dogfight-metrics")
	viper.SetDefault("influx.bucket", "dogfight_performance")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/dogfight.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "dogfight")
	viper.SetDefault("storage.postgres.flushInterval", "2s")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "dogfight")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSimConfig returns the simulation host settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		TickHz:          viper.GetFloat64("sim.tickHz"),
		MaxDt:           viper.GetFloat64("sim.maxDt"),
		RestartDelay:    viper.GetFloat64("sim.restartDelay"),
		Seed:            viper.GetInt64("sim.seed"),
		FuzeProbability: viper.GetFloat64("sim.fuzeProbability"),
		MissileGuidance: viper.GetBool("sim.missileGuidance"),
		StateEvery:      viper.GetInt("sim.stateEvery"),
		Duration:        viper.GetDuration("sim.duration"),
		SpawnX:          viper.GetFloat64("sim.spawnX"),
		SpawnY:          viper.GetFloat64("sim.spawnY"),
		SpawnZ:          viper.GetFloat64("sim.spawnZ"),
		SpawnHeading:    viper.GetFloat64("sim.spawnHeading"),
		Weather: WeatherConfig{
			WindSpeed:     viper.GetFloat64("sim.weather.windSpeed"),
			WindDirection: viper.GetFloat64("sim.weather.windDirection"),
			Turbulence:    viper.GetFloat64("sim.weather.turbulence"),
			Visibility:    viper.GetFloat64("sim.weather.visibility"),
		},
		Origin: OriginConfig{
			Latitude:  viper.GetFloat64("sim.origin.latitude"),
			Longitude: viper.GetFloat64("sim.origin.longitude"),
		},
	}
}

// GetStorageConfig returns the storage configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		Postgres: PostgresConfig{
			Host:          viper.GetString("storage.postgres.host"),
			Port:          viper.GetString("storage.postgres.port"),
			Username:      viper.GetString("storage.postgres.username"),
			Password:      viper.GetString("storage.postgres.password"),
			Database:      viper.GetString("storage.postgres.database"),
			FlushInterval: viper.GetDuration("storage.postgres.flushInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the Graylog configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetAPIConfig returns the recording server configuration.
func GetAPIConfig() APIConfig {
	return APIConfig{
		ServerURL: viper.GetString("api.serverUrl"),
		APIKey:    viper.GetString("api.apiKey"),
		Upload:    viper.GetBool("api.upload"),
	}
}
