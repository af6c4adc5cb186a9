// engine/internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Rule is one named keyword set. A text hits the rule when any term occurs in it.
type Rule struct {
	Tag string   `yaml:"tag" json:"tag"`
	Any []string `yaml:"any" json:"any"`
}

type Taxonomy struct {
	Statuses      []string `yaml:"statuses" json:"statuses"`
	Departments   []string `yaml:"departments" json:"departments"`
	LocationLabel []string `yaml:"location_labels" json:"location_labels"`
	// WholeWordRegions requires department names to sit on word boundaries.
	// It defaults to true, which differs from plain substring matching:
	// "ica" no longer fires inside "publica". Set it to false to get the
	// substring behaviour back.
	WholeWordRegions bool `yaml:"whole_word_regions" json:"whole_word_regions"`

	PublicationLabels   []string `yaml:"publication_labels" json:"publication_labels"`
	ScheduleStartLabels []string `yaml:"schedule_start_labels" json:"schedule_start_labels"`
	ScheduleEndLabels   []string `yaml:"schedule_end_labels" json:"schedule_end_labels"`

	// TypeMarkers are explicit description prefixes; tag is the object type.
	TypeMarkers []Rule `yaml:"type_markers" json:"type_markers"`
	// ConsultingMarkers match anywhere in the description.
	ConsultingMarkers []string `yaml:"consulting_markers" json:"consulting_markers"`
	// TypeKeywords are evaluated in order; first rule with a hit wins.
	TypeKeywords []Rule `yaml:"type_keywords" json:"type_keywords"`
}

type Config struct {
	App struct {
		Host                string `yaml:"host" json:"host" env:"HOST"`
		Port                int    `yaml:"port" json:"port" env:"PORT"`
		DataDir             string `yaml:"data_dir" json:"data_dir" env:"SEACE_DATA_DIR"`
		MaxSessions         int    `yaml:"max_sessions" json:"max_sessions" env:"SEACE_MAX_SESSIONS"`
		QueueTimeoutSeconds int    `yaml:"queue_timeout_seconds" json:"queue_timeout_seconds"`
		CrawlTimeoutSeconds int    `yaml:"crawl_timeout_seconds" json:"crawl_timeout_seconds" env:"SEACE_CRAWL_TIMEOUT"`
	} `yaml:"app" json:"app"`

	Logging struct {
		Level       string `yaml:"level" json:"level" env:"LOG_LEVEL"`
		Development bool   `yaml:"development" json:"development" env:"LOG_DEVELOPMENT"`
	} `yaml:"logging" json:"logging"`

	Auth struct {
		KeyringAccount string `yaml:"keyring_account" json:"keyring_account"`
		TokenEnv       string `yaml:"token_env" json:"token_env"`
	} `yaml:"auth" json:"auth"`

	Source struct {
		ListingURL             string `yaml:"listing_url" json:"listing_url" env:"SEACE_LISTING_URL"`
		DetailPath             string `yaml:"detail_path" json:"detail_path"`
		CardSelector           string `yaml:"card_selector" json:"card_selector"`
		PageSizeSelector       string `yaml:"page_size_selector" json:"page_size_selector"`
		PageSizeOptionSelector string `yaml:"page_size_option_selector" json:"page_size_option_selector"`
		NextSelector           string `yaml:"next_selector" json:"next_selector"`
		Timezone               string `yaml:"timezone" json:"timezone"`
	} `yaml:"source" json:"source"`

	Browser struct {
		Headless       bool     `yaml:"headless" json:"headless" env:"BROWSER_HEADLESS"`
		ExecutablePath string   `yaml:"executable_path" json:"executable_path" env:"BROWSER_EXECUTABLE"`
		UserAgent      string   `yaml:"user_agent" json:"user_agent"`
		ViewportWidth  int      `yaml:"viewport_width" json:"viewport_width"`
		ViewportHeight int      `yaml:"viewport_height" json:"viewport_height"`
		Args           []string `yaml:"args" json:"args"`
		InstallDriver  bool     `yaml:"install_driver" json:"install_driver" env:"BROWSER_INSTALL"`
	} `yaml:"browser" json:"browser"`

	Crawl struct {
		MaxPages              int  `yaml:"max_pages" json:"max_pages" env:"SEACE_MAX_PAGES"`
		EarlyStop             bool `yaml:"early_stop" json:"early_stop" env:"SEACE_EARLY_STOP"`
		NavTimeoutSeconds     int  `yaml:"nav_timeout_seconds" json:"nav_timeout_seconds"`
		InitialWaitSeconds    int  `yaml:"initial_wait_seconds" json:"initial_wait_seconds"`
		PageSizeWaitSeconds   int  `yaml:"page_size_wait_seconds" json:"page_size_wait_seconds"`
		NextWaitSeconds       int  `yaml:"next_wait_seconds" json:"next_wait_seconds"`
		RefreshTimeoutSeconds int  `yaml:"refresh_timeout_seconds" json:"refresh_timeout_seconds"`
		SettleMillis          int  `yaml:"settle_ms" json:"settle_ms"`
	} `yaml:"crawl" json:"crawl"`

	Enrichment struct {
		DetailTimeoutSeconds int     `yaml:"detail_timeout_seconds" json:"detail_timeout_seconds"`
		BodyWaitSeconds      int     `yaml:"body_wait_seconds" json:"body_wait_seconds"`
		CellClassPattern     string  `yaml:"cell_class_pattern" json:"cell_class_pattern"`
		MinDigits            int     `yaml:"min_digits" json:"min_digits"`
		MaxDigits            int     `yaml:"max_digits" json:"max_digits"`
		RequestsPerSecond    float64 `yaml:"requests_per_second" json:"requests_per_second" env:"SEACE_DETAIL_RPS"`
		Burst                int     `yaml:"burst" json:"burst"`
	} `yaml:"enrichment" json:"enrichment"`

	Taxonomy Taxonomy `yaml:"taxonomy" json:"taxonomy"`
}

// Load returns Default() overlaid with the YAML file at path and then with
// environment overrides (.env files included).
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (c Config) QueueTimeout() time.Duration   { return seconds(c.App.QueueTimeoutSeconds) }
func (c Config) CrawlTimeout() time.Duration   { return seconds(c.App.CrawlTimeoutSeconds) }
func (c Config) NavTimeout() time.Duration     { return seconds(c.Crawl.NavTimeoutSeconds) }
func (c Config) InitialWait() time.Duration    { return seconds(c.Crawl.InitialWaitSeconds) }
func (c Config) PageSizeWait() time.Duration   { return seconds(c.Crawl.PageSizeWaitSeconds) }
func (c Config) NextWait() time.Duration       { return seconds(c.Crawl.NextWaitSeconds) }
func (c Config) RefreshTimeout() time.Duration { return seconds(c.Crawl.RefreshTimeoutSeconds) }
func (c Config) Settle() time.Duration         { return time.Duration(c.Crawl.SettleMillis) * time.Millisecond }
func (c Config) DetailTimeout() time.Duration  { return seconds(c.Enrichment.DetailTimeoutSeconds) }
func (c Config) BodyWait() time.Duration       { return seconds(c.Enrichment.BodyWaitSeconds) }

// Location resolves source.timezone, falling back to UTC-5 (Peru has no DST).
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Source.Timezone); err == nil && c.Source.Timezone != "" {
		return loc
	}
	return time.FixedZone("PET", -5*60*60)
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}
