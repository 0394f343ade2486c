package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"merge-service/internal/merge/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFormat    string // console | json
	MaxUploadMB  int
	LogFile      string
	ExportDir    string

	SynonymsFile        string
	Threshold           float64
	HighNullRatio       float64
	SampleSize          int
	MaxCanonicalColumns int
	ParallelMapping     bool
}

// Load читает окружение; .env (если есть) подмешивается, но не перекрывает уже заданные переменные.
func Load() Config {
	_ = godotenv.Load()

	def := model.DefaultConfig()
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    strings.ToLower(getenv("LOG_FORMAT", "console")),
		MaxUploadMB:  mb,
		LogFile:      getenv("LOG_FILE", "logs/merge-service.log"),
		ExportDir:    getenv("EXPORT_DIR", "exports"),

		SynonymsFile:        getenv("SYNONYMS_FILE", ""),
		Threshold:           getfloat("MERGE_THRESHOLD", def.Threshold),
		HighNullRatio:       getfloat("HIGH_NULL_RATIO", def.HighNullRatio),
		SampleSize:          getint("SAMPLE_SIZE", def.SampleSize),
		MaxCanonicalColumns: getint("MAX_CANONICAL_COLUMNS", 0),
		ParallelMapping:     getbool("PARALLEL_MAPPING", false),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MergeConfig — параметры движка из окружения поверх значений по умолчанию.
func (c Config) MergeConfig() (model.Config, error) {
	mc := model.DefaultConfig()
	mc.Threshold = c.Threshold
	mc.HighNullRatio = c.HighNullRatio
	mc.SampleSize = c.SampleSize
	mc.MaxCanonicalColumns = c.MaxCanonicalColumns
	mc.ParallelMapping = c.ParallelMapping
	if c.SynonymsFile != "" {
		groups, err := LoadSynonyms(c.SynonymsFile)
		if err != nil {
			return model.Config{}, err
		}
		mc.SynonymGroups = groups
	}
	if err := mc.Validate(); err != nil {
		return model.Config{}, err
	}
	return mc, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if n, err := strconv.Atoi(getenv(k, "")); err == nil {
		return n
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil {
		return f
	}
	return def
}

func getbool(k string, def bool) bool {
	if b, err := strconv.ParseBool(getenv(k, "")); err == nil {
		return b
	}
	return def
}
