package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Seconds of picks kept behind the latest pick.
	MaxBufferInterval float64 `mapstructure:"max_buffer_interval"`
	// Seconds two picks may be apart and still pair.
	MaxPickDelay              float64 `mapstructure:"max_pick_delay"`
	MaxPickDistance           float64 `mapstructure:"max_pick_distance"`
	MinPickDistance           float64 `mapstructure:"min_pick_distance"`
	DefaultPhaseType          string  `mapstructure:"default_phase_type"`
	MinReleasedClusteredPicks int     `mapstructure:"min_released_clustered_picks"`
	Test                      bool    `mapstructure:"test"`
	Playback                  bool    `mapstructure:"playback"`
	ReleaseToDatabase         bool    `mapstructure:"release_todatabase"`
	ReleaseCluster            bool    `mapstructure:"release_cluster"`
	ReleaseLocation           bool    `mapstructure:"release_location"`
	EnableLocClust            bool    `mapstructure:"enable_loc_clust"`
	EnableChaClust            bool    `mapstructure:"enable_cha_clust"`
	EnableSameIdClust         bool    `mapstructure:"enable_same_id_clust"`

	AgencyId               string   `mapstructure:"agency_id"`
	Author                 string   `mapstructure:"author"`
	MaxBatchPicks          int      `mapstructure:"max_batch_picks"`
	InventoryFile          string   `mapstructure:"inventory_file"`
	InventoryCacheSize     int64    `mapstructure:"inventory_cache_size"`
	ElasticsearchAddresses []string `mapstructure:"elasticsearch_addresses"`
	WriteQueueSize         int      `mapstructure:"write_queue_size"`
	RecentOrigins          int      `mapstructure:"recent_origins"`
	HttpListen             string   `mapstructure:"http_listen"`
	OtlpListen             string   `mapstructure:"otlp_listen"`
	PickTopic              string   `mapstructure:"pick_topic"`
	OriginTopic            string   `mapstructure:"origin_topic"`
}

const envPrefix = "LOCUS"

var defaults = map[string]interface{}{
	"max_buffer_interval":          10800.0,
	"max_pick_delay":               120.0,
	"max_pick_distance":            50.0,
	"min_pick_distance":            1.0,
	"default_phase_type":           "P",
	"min_released_clustered_picks": 2,
	"test":                         false,
	"playback":                     false,
	"release_todatabase":           true,
	"release_cluster":              true,
	"release_location":             false,
	"enable_loc_clust":             true,
	"enable_cha_clust":             false,
	"enable_same_id_clust":         false,
	"agency_id":                    "LOCUS",
	"author":                       "locus",
	"max_batch_picks":              0,
	"inventory_file":               "",
	"inventory_cache_size":         int64(10000),
	"elasticsearch_addresses":      []string{},
	"write_queue_size":             30,
	"recent_origins":               100,
	"http_listen":                  ":8080",
	"otlp_listen":                  ":4317",
	"pick_topic":                   "PICK",
	"origin_topic":                 "LOCATION",
}

// New prepares a viper instance with defaults, LOCUS_ environment variables and, when path is
// set, the given config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	return v, nil
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() (Config, error) {
	v, err := New("")
	if err != nil {
		return Config{}, err
	}
	return Load(v)
}

func (c Config) Validate() error {
	var problems []string
	if c.MaxBufferInterval <= 0 {
		problems = append(problems, "max_buffer_interval must be positive")
	}
	if c.MaxPickDelay < 0 {
		problems = append(problems, "max_pick_delay must not be negative")
	}
	if c.MinPickDistance < 0 {
		problems = append(problems, "min_pick_distance must not be negative")
	}
	if c.MaxPickDistance < c.MinPickDistance {
		problems = append(problems, "max_pick_distance must not be below min_pick_distance")
	}
	if c.DefaultPhaseType == "" {
		problems = append(problems, "default_phase_type must be set")
	}
	if c.MinReleasedClusteredPicks < 0 {
		problems = append(problems, "min_released_clustered_picks must not be negative")
	}
	if c.MaxBatchPicks < 0 {
		problems = append(problems, "max_batch_picks must not be negative")
	}
	if c.InventoryCacheSize < 0 {
		problems = append(problems, "inventory_cache_size must not be negative")
	}
	if c.PickTopic == "" || c.OriginTopic == "" {
		problems = append(problems, "pick_topic and origin_topic must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) BufferInterval() time.Duration {
	return secondsToDuration(c.MaxBufferInterval)
}

func (c Config) PickDelay() time.Duration {
	return secondsToDuration(c.MaxPickDelay)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)
