package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "sprout.db"
	DefaultStore          = "sqlite"

	defaultConfigDir = "~/.config/sprout"
	defaultDataDir   = "~/.sprout"

	MinFocusMinutes = 1
	MaxFocusMinutes = 120
	MinBreakMinutes = 1
	MaxBreakMinutes = 60
)

var ErrInvalidPomodoro = errors.New("pomodoro minutes out of range")

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	AddCategory string `toml:"add_category"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Rename      string `toml:"rename"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	SwitchPane  string `toml:"switch_pane"`
	Sidebar     string `toml:"sidebar"`
	Focus       string `toml:"focus"`
	Settings    string `toml:"settings"`
	StartStop   string `toml:"start_stop"`
	Reset       string `toml:"reset"`
	SwitchMode  string `toml:"switch_mode"`
	Minimize    string `toml:"minimize"`
	Maximize    string `toml:"maximize"`
}

type Pomodoro struct {
	FocusMinutes int `toml:"focus_minutes"`
	BreakMinutes int `toml:"break_minutes"`
}

// Validate checks both durations against the ranges the settings dialog
// accepts.
func (p Pomodoro) Validate() error {
	if p.FocusMinutes < MinFocusMinutes || p.FocusMinutes > MaxFocusMinutes {
		return fmt.Errorf("focus %d not in %d..%d: %w", p.FocusMinutes, MinFocusMinutes, MaxFocusMinutes, ErrInvalidPomodoro)
	}
	if p.BreakMinutes < MinBreakMinutes || p.BreakMinutes > MaxBreakMinutes {
		return fmt.Errorf("break %d not in %d..%d: %w", p.BreakMinutes, MinBreakMinutes, MaxBreakMinutes, ErrInvalidPomodoro)
	}
	return nil
}

type Telegram struct {
	Token  string `toml:"token"`
	ChatID int64  `toml:"chat_id"`
}

// Enabled reports whether enough is set to send messages.
func (t Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type Config struct {
	Store     string   `toml:"store"`
	DBPath    string   `toml:"db_path"`
	DiskvPath string   `toml:"diskv_path"`
	LogFile   string   `toml:"log_file"`
	LogLevel  string   `toml:"log_level"`
	Pomodoro  Pomodoro `toml:"pomodoro"`
	Telegram  Telegram `toml:"telegram"`
	Keys      Keymap   `toml:"keys"`
}

// ResolveConfigPath returns explicit when set, else the default location.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit == "" {
		explicit = filepath.Join(defaultConfigDir, DefaultConfigFileName)
	}
	return homedir.Expand(explicit)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Missing keys keep their default values.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.expand()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Pomodoro.Validate(); err != nil {
		return cfg, err
	}
	return cfg.expand()
}

func (c Config) expand() (Config, error) {
	for _, p := range []*string{&c.DBPath, &c.DiskvPath, &c.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return c, err
		}
		*p = expanded
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = DefaultStore
	}
	return c, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultKeymap returns the bindings a fresh config file starts with.
func DefaultKeymap() Keymap {
	return defaultConfig().Keys
}

func defaultConfig() Config {
	return Config{
		Store:     DefaultStore,
		DBPath:    filepath.Join(defaultDataDir, DefaultDBName),
		DiskvPath: filepath.Join(defaultDataDir, "kv"),
		LogFile:   filepath.Join(defaultDataDir, "sprout.log"),
		LogLevel:  "info",
		Pomodoro:  Pomodoro{FocusMinutes: 25, BreakMinutes: 5},
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			AddCategory: "A",
			Up:          "k",
			Down:        "j",
			Toggle:      " ",
			Delete:      "d",
			Rename:      "r",
			Confirm:     "enter",
			Cancel:      "esc",
			SwitchPane:  "tab",
			Sidebar:     "b",
			Focus:       "f",
			Settings:    "s",
			StartStop:   " ",
			Reset:       "r",
			SwitchMode:  "m",
			Minimize:    "ctrl+z",
			Maximize:    "M",
		},
	}
}
