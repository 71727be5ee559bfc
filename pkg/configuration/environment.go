package configuration

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zintra/rfq-templates/pkg/logging"
)

var DefaultEnvFiles = []string{".env", ".env.local"}

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type TemplatesOptions struct {
	Path       string `env:"RFQ_TEMPLATES_PATH" envDefault:"public/data/rfq-templates-v2-hierarchical.json"`
	Sentinel   string `env:"RFQ_SENTINEL_OPTION" envDefault:"Other"`
	SelectType string `env:"RFQ_SELECT_FIELD_TYPE" envDefault:"select"`
	// Empty disables fix manifests.
	ManifestDir string `env:"RFQ_MANIFEST_DIR"`
}

type Configuration struct {
	Templates TemplatesOptions

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	logger *logrus.Logger
}

// New loads the env files that exist, parses the environment and builds the
// logger.
func New(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTemplates(); err != nil {
		return err
	}
	c.logger = logging.ConsoleLogger(c.LogrusLogLevel(), c.LogFormat, os.Stderr)
	return nil
}

func (c *Configuration) validateLogging() error {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level == "" {
		level = "info"
	}
	switch level {
	case "silent", "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("invalid LOG_LEVEL=%q (expected silent|error|warn|info|debug)", c.LogLevel)
	}
	c.LogLevel = level

	format := strings.ToLower(strings.TrimSpace(c.LogFormat))
	if format == "" {
		format = logging.FormatText
	}
	switch format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid LOG_FORMAT=%q (expected text|json)", c.LogFormat)
	}
	c.LogFormat = format
	return nil
}

func (c *Configuration) validateTemplates() error {
	if strings.TrimSpace(c.Templates.Sentinel) == "" {
		return fmt.Errorf("RFQ_SENTINEL_OPTION must not be blank")
	}
	if strings.TrimSpace(c.Templates.SelectType) == "" {
		return fmt.Errorf("RFQ_SELECT_FIELD_TYPE must not be blank")
	}
	c.Templates.Path = strings.TrimSpace(c.Templates.Path)
	c.Templates.ManifestDir = strings.TrimSpace(c.Templates.ManifestDir)
	return nil
}
