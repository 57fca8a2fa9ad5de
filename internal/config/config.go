package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/event-rota/pkg/core/constraints"
	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/notify"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

const defaultDayLabelFormat = "Monday"

// maxRRuleDays bounds rules without COUNT or UNTIL
const maxRRuleDays = 31

// Event describes the schedule grid of an event
type Event struct {
	Name string `yaml:"name" validate:"required"`
	// Days lists the day labels in order. Ignored when DaysRRule is set.
	Days []string `yaml:"days,omitempty" validate:"required_without=DaysRRule,omitempty,unique,dive,required"`
	// DaysRRule generates the days from an RFC 5545 rule, e.g.
	// "DTSTART:20260612T000000Z\nRRULE:FREQ=DAILY;COUNT=4"
	DaysRRule             string   `yaml:"daysRRule,omitempty"`
	DayLabelFormat        string   `yaml:"dayLabelFormat,omitempty"`
	Shifts                []string `yaml:"shifts" validate:"required,min=1,unique,dive,required"`
	ConsecutiveShiftLimit int      `yaml:"consecutiveShiftLimit,omitempty" validate:"omitempty,min=1"`
	PortalURL             string   `yaml:"portalURL,omitempty" validate:"omitempty,url"`
	// Attributes names the intake question facets coordinators can filter on
	Attributes []string `yaml:"attributes,omitempty" validate:"omitempty,unique,dive,required"`
}

// Dispatch tunes notification delivery
type Dispatch struct {
	BatchSize             int `yaml:"batchSize,omitempty" validate:"omitempty,min=1"`
	// DelayBetweenBatchesMs of 0 sends batches back to back. Unset uses the default.
	DelayBetweenBatchesMs *int `yaml:"delayBetweenBatchesMs,omitempty" validate:"omitempty,min=0"`
	MaxRetries            int `yaml:"maxRetries,omitempty" validate:"omitempty,min=1"`
	RetryBaseDelayMs      int `yaml:"retryBaseDelayMs,omitempty" validate:"omitempty,min=1"`
	Concurrency           int `yaml:"concurrency,omitempty" validate:"omitempty,min=1"`
}

// Database selects and locates the document store
type Database struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres redis"`
	URL    string `yaml:"url" validate:"required"`
	// Prefix namespaces keys when Driver is redis
	Prefix string `yaml:"prefix,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Event           Event    `yaml:"event" validate:"required"`
	Dispatch        Dispatch `yaml:"dispatch,omitempty"`
	Database        Database `yaml:"database" validate:"required"`
	RosterSheetID   string   `yaml:"rosterSheetID,omitempty"`
	RosterTab       string   `yaml:"rosterTab,omitempty" validate:"required_with=RosterSheetID"`
	GmailUserID     string   `yaml:"gmailUserID" validate:"required"`
	GmailSender     string   `yaml:"gmailSender,omitempty"`
	CredentialsFile string   `yaml:"credentialsFile" validate:"required"`

	path string
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from event_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return loadNamed("event_config.yaml")
}

// LoadWithEnv loads event_config.<env>.yaml from the current or home directory
func LoadWithEnv(env string) (*Config, error) {
	return loadNamed(fmt.Sprintf("event_config.%s.yaml", env))
}

func loadNamed(name string) (*Config, error) {
	configPath, err := findConfigFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.path = path

	return &cfg, nil
}

// Reload reads the file the configuration was loaded from and returns a new
// instance. The receiver is left untouched.
func (c *Config) Reload() (*Config, error) {
	if c.path == "" {
		return nil, fmt.Errorf("config was not loaded from a file")
	}
	return LoadFromPath(c.path)
}

// Validate validates the configuration struct, the rrule syntax and the grid labels
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Event.DaysRRule != "" {
		if _, err := rrule.StrToRRuleSet(cfg.Event.DaysRRule); err != nil {
			return fmt.Errorf("invalid rrule in event.daysRRule: %w", err)
		}
	}

	days, err := cfg.EventDays()
	if err != nil {
		return err
	}
	if _, err := slots.NewGrid(days, cfg.Event.Shifts); err != nil {
		return fmt.Errorf("invalid event grid: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Event.ConsecutiveShiftLimit == 0 {
		c.Event.ConsecutiveShiftLimit = constraints.DefaultConsecutiveLimit
	}
	if c.Dispatch.BatchSize == 0 {
		c.Dispatch.BatchSize = dispatch.DefaultBatchSize
	}
	if c.Dispatch.DelayBetweenBatchesMs == nil {
		delay := int(dispatch.DefaultDelayBetweenBatches / time.Millisecond)
		c.Dispatch.DelayBetweenBatchesMs = &delay
	}
	if c.Dispatch.MaxRetries == 0 {
		c.Dispatch.MaxRetries = notify.DefaultMaxRetries
	}
	if c.Dispatch.RetryBaseDelayMs == 0 {
		c.Dispatch.RetryBaseDelayMs = int(notify.DefaultBaseDelay / time.Millisecond)
	}
	if c.Dispatch.Concurrency == 0 {
		c.Dispatch.Concurrency = notify.DefaultConcurrency
	}
	if c.Database.Prefix == "" {
		c.Database.Prefix = "rota"
	}
}

// EventDays returns the ordered day labels, generating them from the rrule if set
func (c *Config) EventDays() ([]string, error) {
	if c.Event.DaysRRule == "" {
		return c.Event.Days, nil
	}

	set, err := rrule.StrToRRuleSet(c.Event.DaysRRule)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in event.daysRRule: %w", err)
	}

	format := c.Event.DayLabelFormat
	if format == "" {
		format = defaultDayLabelFormat
	}

	var days []string
	next := set.Iterator()
	for {
		day, ok := next()
		if !ok || len(days) == maxRRuleDays {
			break
		}
		days = append(days, day.Format(format))
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("event.daysRRule produces no days")
	}
	return days, nil
}

// Grid builds the immutable schedule grid for the event
func (c *Config) Grid() (*slots.Grid, error) {
	days, err := c.EventDays()
	if err != nil {
		return nil, err
	}
	return slots.NewGrid(days, c.Event.Shifts)
}

// DispatchOptions converts the dispatch settings for the dispatcher
func (c *Config) DispatchOptions() dispatch.Options {
	opts := dispatch.Options{BatchSize: c.Dispatch.BatchSize}
	if c.Dispatch.DelayBetweenBatchesMs != nil {
		opts.DelayBetweenBatches = time.Duration(*c.Dispatch.DelayBetweenBatchesMs) * time.Millisecond
		if opts.DelayBetweenBatches == 0 {
			opts.DelayBetweenBatches = dispatch.NoDelay
		}
	}
	return opts
}

// RetryBaseDelay is the first backoff step for rate limited sends
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Dispatch.RetryBaseDelayMs) * time.Millisecond
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
