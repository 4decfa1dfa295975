package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Application struct {
	Address  string   `koanf:"address"`
	Cors     Cors     `koanf:"cors"`
	Storage  Storage  `koanf:"storage"`
	Horizon  Horizon  `koanf:"horizon"`
	Refresh  Refresh  `koanf:"refresh"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Storage struct {
	// Driver is one of "file", "postgres" or "redis".
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

// Horizon is the span of months, around the current month, over which
// recurring events are materialized.
type Horizon struct {
	MonthsBefore int `koanf:"monthsbefore"`
	MonthsAfter  int `koanf:"monthsafter"`
}

type Refresh struct {
	// Schedule is a cron expression for recomputing the horizon; empty disables it.
	Schedule string `koanf:"schedule"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Redis struct {
	URL string `koanf:"url"`
	Key string `koanf:"key"`
}

func Defaults() Application {
	return Application{
		Address: ":8181",
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Storage: Storage{
			Driver: StorageFile,
			Path:   "./data/calendar-events.json",
		},
		Horizon: Horizon{
			MonthsBefore: 6,
			MonthsAfter:  12,
		},
		Refresh: Refresh{
			Schedule: "@daily",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "monthcal",
			Pass:   "",
			Name:   "monthcal",
			Schema: "monthcal",
		},
		Redis: Redis{
			URL: "redis://localhost:6379/0",
			Key: "calendar-events",
		},
	}
}

func Load(path string) (Application, error) {
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
		Prefix: "MONTHCAL_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "MONTHCAL_")), "_", ".")
			if k == "cors.allowedorigins" {
				return k, strings.Split(v, ",")
			}
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
