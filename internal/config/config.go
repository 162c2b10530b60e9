package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dkeye/Office/internal/app/rooms"
	"github.com/dkeye/Office/internal/app/zone"
	"github.com/dkeye/Office/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	SendBuffer int           `mapstructure:"send_buffer"`

	JoinRateLimit  int           `mapstructure:"join_rate_limit"`
	JoinRateWindow time.Duration `mapstructure:"join_rate_window"`

	Office Office `mapstructure:"office"`
	Client Client `mapstructure:"client"`
}

// Office is the one consistent set of layout constants shared by the
// server and every client.
type Office struct {
	World      domain.Rect       `mapstructure:"world"`
	Margin     float64           `mapstructure:"margin"`
	Spawn      domain.Position   `mapstructure:"spawn"`
	Lobby      domain.Position   `mapstructure:"lobby"`
	Thresholds domain.Thresholds `mapstructure:"thresholds"`
	Rooms      []domain.Room     `mapstructure:"rooms"`
	Zones      []domain.Zone     `mapstructure:"zones"`
}

type Client struct {
	ServerURL       string        `mapstructure:"server_url"`
	Name            string        `mapstructure:"name"`
	X               float64       `mapstructure:"x"`
	Y               float64       `mapstructure:"y"`
	Room            string        `mapstructure:"room"`
	ReconcilePeriod time.Duration `mapstructure:"reconcile_period"`
	GainPeriod      time.Duration `mapstructure:"gain_period"`
	ICEServers      []string      `mapstructure:"ice_servers"`
}

func (o Office) Layout() domain.Layout {
	return domain.Layout{World: o.World, Margin: o.Margin, Rooms: o.Rooms, Zones: o.Zones, Thresholds: o.Thresholds}
}

func DefaultRooms() []domain.Room {
	return []domain.Room{
		{ID: "A", Name: "Glass hall", Bounds: domain.Rect{X: 40, Y: 180, W: 680, H: 800}, Capacity: 10},
		{ID: "B", Name: "Sofa corner", Bounds: domain.Rect{X: 820, Y: 550, W: 500, H: 450}, Capacity: 6},
	}
}

func DefaultZones() []domain.Zone {
	return []domain.Zone{
		{Label: "Focus booth", Kind: domain.ZoneQuiet, Bounds: domain.Rect{X: 750, Y: 0, W: 850, H: 450}},
		{Label: "Community hub", Kind: domain.ZoneOpen, CatchAll: true},
	}
}

func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("join_rate_limit", 5)
	v.SetDefault("join_rate_window", "10s")

	v.SetDefault("office.world", map[string]any{"x": 0, "y": 0, "w": 2000, "h": 1125})
	v.SetDefault("office.margin", 20)
	v.SetDefault("office.spawn", map[string]any{"x": 1400, "y": 900})
	v.SetDefault("office.lobby", map[string]any{"x": 1300, "y": 900})
	v.SetDefault("office.thresholds.connect", 120)
	v.SetDefault("office.thresholds.disconnect", 150)

	v.SetDefault("client.server_url", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("client.name", "guest")
	v.SetDefault("client.reconcile_period", "1500ms")
	v.SetDefault("client.gain_period", "200ms")
	v.SetDefault("client.ice_servers", []string{"stun:stun.l.google.com:19302"})
	return v
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
func Load() (*Config, error) {
	return LoadWith(New())
}

// LoadWith lets callers bind flags or env into v before the file is read.
func LoadWith(v *viper.Viper) (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Office.Rooms) == 0 {
		cfg.Office.Rooms = DefaultRooms()
	}
	if len(cfg.Office.Zones) == 0 {
		cfg.Office.Zones = DefaultZones()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Int("rooms", len(cfg.Office.Rooms)).
		Int("zones", len(cfg.Office.Zones)).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.JoinRateLimit <= 0 || c.JoinRateWindow <= 0 {
		errs = append(errs, errors.New("join rate limit and window must be positive"))
	}
	th := c.Office.Thresholds
	if th.Connect <= 0 || th.Disconnect <= th.Connect {
		errs = append(errs, fmt.Errorf("thresholds: need 0 < connect < disconnect, got %v/%v", th.Connect, th.Disconnect))
	}
	if c.Office.World.Empty() {
		errs = append(errs, errors.New("office world is empty"))
	}
	if _, err := rooms.New(c.Office.Rooms); err != nil {
		errs = append(errs, err)
	}
	if _, err := zone.New(c.Office.Zones); err != nil {
		errs = append(errs, err)
	}
	if c.Client.ReconcilePeriod <= 0 || c.Client.GainPeriod <= 0 {
		errs = append(errs, errors.New("client periods must be positive"))
	}
	return errors.Join(errs...)
}
