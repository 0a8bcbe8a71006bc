package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type Application struct {
	Server     Server     `koanf:"server"`
	Ledger     Ledger     `koanf:"ledger"`
	Storage    Storage    `koanf:"storage"`
	Completion Completion `koanf:"completion"`
	Sheets     Sheets     `koanf:"sheets"`
	AMQP       AMQP       `koanf:"amqp"`
	Websocket  Websocket  `koanf:"websocket"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Ledger struct {
	// Timezone is the viewer's zone used to normalize calendar dates. "Local" uses the process zone.
	Timezone      string `koanf:"timezone"`
	DefaultBudget string `koanf:"defaultbudget"`
}

type Storage struct {
	Backend    string   `koanf:"backend"`
	SQLitePath string   `koanf:"sqlitepath"`
	Postgres   Database `koanf:"postgres"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Completion struct {
	Provider string        `koanf:"provider"`
	APIKey   string        `koanf:"apikey"`
	Model    string        `koanf:"model"`
	Timeout  time.Duration `koanf:"timeout"`
}

type Sheets struct {
	SpreadsheetID   string `koanf:"spreadsheetid"`
	SheetName       string `koanf:"sheetname"`
	CredentialsFile string `koanf:"credentialsfile"`
}

type AMQP struct {
	URL        string `koanf:"url"`
	Exchange   string `koanf:"exchange"`
	RoutingKey string `koanf:"routingkey"`
}

type Websocket struct {
	Enabled bool `koanf:"enabled"`
}

func Defaults() Application {
	return Application{
		Server: Server{Addr: ":8181"},
		Ledger: Ledger{
			Timezone:      "Local",
			DefaultBudget: "1000",
		},
		Storage: Storage{
			Backend:    BackendSQLite,
			SQLitePath: "./data/pocketbudget.db",
			Postgres: Database{
				Host:   "localhost",
				Port:   5432,
				User:   "pocketbudget",
				Pass:   "",
				Name:   "pocketbudget",
				Schema: "pocketbudget",
			},
		},
		Completion: Completion{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash",
			Timeout:  60 * time.Second,
		},
		Sheets: Sheets{SheetName: "Expenses"},
		AMQP: AMQP{
			Exchange:   "pocketbudget",
			RoutingKey: "ledger.changed",
		},
		Websocket: Websocket{Enabled: true},
	}
}

func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "POCKETBUDGET_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "POCKETBUDGET_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// Location resolves the configured ledger timezone.
func (l Ledger) Location() (*time.Location, error) {
	if l.Timezone == "" || l.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(l.Timezone)
}

func (l Ledger) Budget() (decimal.Decimal, error) {
	return decimal.NewFromString(l.DefaultBudget)
}

// Validate reports every configuration problem at once.
func (a Application) Validate() error {
	var problems []string

	if a.Server.Addr == "" {
		problems = append(problems, "server address cannot be empty")
	}

	if _, err := a.Ledger.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid ledger timezone %q: %v", a.Ledger.Timezone, err))
	}
	if budget, err := a.Ledger.Budget(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid default budget %q: %v", a.Ledger.DefaultBudget, err))
	} else if budget.IsNegative() {
		problems = append(problems, fmt.Sprintf("default budget %s cannot be negative", budget))
	}

	switch a.Storage.Backend {
	case BackendSQLite:
		if a.Storage.SQLitePath == "" {
			problems = append(problems, "sqlite path cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if a.Storage.Postgres.Host == "" || a.Storage.Postgres.Name == "" {
			problems = append(problems, "postgres host and name are required when using postgres backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of %v",
			a.Storage.Backend, []string{BackendSQLite, BackendPostgres, BackendMemory}))
	}

	switch a.Completion.Provider {
	case ProviderGemini, ProviderAnthropic:
	default:
		problems = append(problems, fmt.Sprintf("invalid completion provider %q: must be one of %v",
			a.Completion.Provider, []string{ProviderGemini, ProviderAnthropic}))
	}
	if a.Completion.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("invalid completion timeout %v: cannot be negative", a.Completion.Timeout))
	}

	if a.Sheets.SpreadsheetID != "" && a.Sheets.CredentialsFile == "" {
		problems = append(problems, "sheets credentials file is required when a spreadsheet id is set")
	}

	if a.AMQP.URL != "" {
		if parsed, err := url.Parse(a.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if a.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
