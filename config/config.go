package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del copiador.
type Config struct {
	Copier  CopierConfig  `yaml:"copier"`
	Targets TargetsConfig `yaml:"targets"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// CopierConfig controla el comportamiento del monitor.
type CopierConfig struct {
	Mode                  string  `yaml:"mode"` // debug | live
	PollIntervalSeconds   float64 `yaml:"poll_interval_seconds"`
	StatusIntervalSeconds float64 `yaml:"status_interval_seconds"`
	InitialCapital        float64 `yaml:"initial_capital"`

	SizingMode         string  `yaml:"sizing_mode"` // fixed | percent_of_trade | percent_of_portfolio | proportional
	FixedSize          float64 `yaml:"fixed_size"`
	PercentOfTrade     float64 `yaml:"percent_of_trade"`
	PercentOfPortfolio float64 `yaml:"percent_of_portfolio"`

	MaxSlippage float64 `yaml:"max_slippage"`
	MinPrice    float64 `yaml:"min_price"`
	MaxPrice    float64 `yaml:"max_price"`
}

// TargetsConfig lista los traders a seguir: por nombre de usuario (se
// resuelve a wallet vía Gamma) o directamente por dirección. Allocations
// asigna el budget por wallet para el sizing proporcional.
type TargetsConfig struct {
	Usernames   []string           `yaml:"usernames"`
	Wallets     []string           `yaml:"wallets"`
	Allocations map[string]float64 `yaml:"allocations"`
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase   string `yaml:"clob_base"`
	GammaBase  string `yaml:"gamma_base"`
	DataBase   string `yaml:"data_base"`
	PolygonRPC string `yaml:"polygon_rpc"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshot_path"` // estado JSON para reanudar
	JournalDSN   string `yaml:"journal_dsn"`   // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Credentials son las credenciales de trading, solo desde el entorno.
// Nunca van al YAML ni a los logs.
type Credentials struct {
	PrivateKey    string
	SignatureType int
	Funder        string
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Copier.PollIntervalSeconds * float64(time.Second))
}

// StatusInterval devuelve la cadencia del informe de estado.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Copier.StatusIntervalSeconds * float64(time.Second))
}

// LoadCredentials lee las credenciales de trading del entorno. Solo son
// obligatorias en modo live.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		PrivateKey: os.Getenv("POLYMARKET_PRIVATE_KEY"),
		Funder:     os.Getenv("POLYMARKET_FUNDER"),
	}
	if creds.PrivateKey == "" {
		return Credentials{}, fmt.Errorf("config.LoadCredentials: POLYMARKET_PRIVATE_KEY not set")
	}

	if v := os.Getenv("POLYMARKET_SIGNATURE_TYPE"); v != "" {
		st, err := strconv.Atoi(v)
		if err != nil || st < 0 || st > 2 {
			return Credentials{}, fmt.Errorf("config.LoadCredentials: invalid POLYMARKET_SIGNATURE_TYPE %q", v)
		}
		creds.SignatureType = st
	}
	return creds, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COPIER_MODE"); v != "" {
		cfg.Copier.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Copier.Mode == "" {
		cfg.Copier.Mode = "debug"
	}
	if cfg.Copier.PollIntervalSeconds <= 0 {
		cfg.Copier.PollIntervalSeconds = 3
	}
	if cfg.Copier.StatusIntervalSeconds <= 0 {
		cfg.Copier.StatusIntervalSeconds = 120
	}
	if cfg.Copier.InitialCapital <= 0 {
		cfg.Copier.InitialCapital = 1000
	}
	if cfg.Copier.SizingMode == "" {
		cfg.Copier.SizingMode = "fixed"
	}
	if cfg.Copier.FixedSize <= 0 {
		cfg.Copier.FixedSize = 10
	}
	if cfg.Copier.PercentOfTrade <= 0 {
		cfg.Copier.PercentOfTrade = 0.1
	}
	if cfg.Copier.PercentOfPortfolio <= 0 {
		cfg.Copier.PercentOfPortfolio = 0.02
	}
	if cfg.Copier.MaxSlippage <= 0 {
		cfg.Copier.MaxSlippage = 0.05
	}
	if cfg.Copier.MinPrice <= 0 {
		cfg.Copier.MinPrice = 0.01
	}
	if cfg.Copier.MaxPrice <= 0 {
		cfg.Copier.MaxPrice = 0.99
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.PolygonRPC == "" {
		cfg.API.PolygonRPC = "https://polygon-rpc.com"
	}
	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "copytrading_state.json"
	}
	if cfg.Storage.JournalDSN == "" {
		cfg.Storage.JournalDSN = "copytrader.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
