// Package config reads command line flags, falling back to LIVEBOARD_*
// environment variables and then to an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"LiveBoard/internal/interaction"
	lbnet "LiveBoard/internal/net"
	"LiveBoard/internal/state"
)

// Mode is how the process takes part in a session.
type Mode int

const (
	// ModeHost runs a relay and a board connected to it.
	ModeHost Mode = iota
	// ModeJoin runs a board connected to someone else's relay.
	ModeJoin
	// ModeRelay runs only the relay, without a window.
	ModeRelay
	// ModeDiscover looks for a relay on the LAN and joins it.
	ModeDiscover
)

func (m Mode) String() string {
	switch m {
	case ModeJoin:
		return "join"
	case ModeRelay:
		return "relay"
	case ModeDiscover:
		return "discover"
	default:
		return "host"
	}
}

const (
	DefaultPort    = 8888
	DefaultFlushMS = 1000
)

type Config struct {
	Mode            Mode
	Port            int
	RelayAddr       string
	FlushInterval   time.Duration
	MaxQueued       int
	Tool            interaction.Mode
	LogLevel        slog.Level
	Advertise       bool
	DiscoverTimeout time.Duration
}

// Parse reads args (without the program name). A bare liveboard:// link
// as the first argument joins that relay.
func Parse(args []string) (Config, error) {
	var (
		cfg       Config
		relay     string
		relayOnly bool
		discover  bool
		noMDNS    bool
		flushMS   int
		logLevel  string
		tool      string
		envFile   string
	)

	if len(args) > 0 && strings.HasPrefix(args[0], lbnet.Scheme) {
		relay, args = args[0], args[1:]
	}

	flags := flag.NewFlagSet("liveboard", flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "p", 0, "Relay port when hosting")
	flags.StringVar(&relay, "relay", relay, "Relay to join (host:port or liveboard:// link)")
	flags.BoolVar(&relayOnly, "relay-only", false, "Run the relay without a board window")
	flags.BoolVar(&discover, "discover", false, "Find a relay on the local network and join it")
	flags.BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the relay over mDNS")
	flags.IntVar(&flushMS, "flush-ms", 0, "Milliseconds between sends of local edits")
	flags.IntVar(&cfg.MaxQueued, "max-queued", -1, "Most unsent edits kept per queue (0 = unbounded)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&tool, "tool", "", "Tool selected at start: draw, erase or move")
	flags.StringVar(&envFile, "env", ".env", "Optional file of KEY=value defaults")
	flags.DurationVar(&cfg.DiscoverTimeout, "discover-timeout", 3*time.Second, "How long to browse for a relay")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	env, err := loadEnv(envFile)
	if err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		cfg.Port, err = env.intOr("LIVEBOARD_PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if relay == "" {
		relay = env.get("LIVEBOARD_RELAY")
	}
	if relay != "" {
		cfg.RelayAddr, err = relayAddr(relay)
		if err != nil {
			return Config{}, err
		}
	}

	if flushMS == 0 {
		flushMS, err = env.intOr("LIVEBOARD_FLUSH_MS", DefaultFlushMS)
		if err != nil {
			return Config{}, err
		}
	}
	if flushMS <= 0 {
		return Config{}, fmt.Errorf("flush interval must be positive, got %dms", flushMS)
	}
	cfg.FlushInterval = time.Duration(flushMS) * time.Millisecond

	if cfg.MaxQueued < 0 {
		cfg.MaxQueued, err = env.intOr("LIVEBOARD_MAX_QUEUED", state.DefaultOutboxLimit)
		if err != nil {
			return Config{}, err
		}
	}
	if cfg.MaxQueued < 0 {
		return Config{}, errors.New("max queued must not be negative")
	}

	if logLevel == "" {
		logLevel = env.get("LIVEBOARD_LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	if tool == "" {
		tool = env.get("LIVEBOARD_TOOL")
	}
	cfg.Tool = interaction.ModeDraw
	if tool != "" {
		m, ok := interaction.ParseMode(tool)
		if !ok || m == interaction.ModeNone {
			return Config{}, fmt.Errorf("invalid tool %q", tool)
		}
		cfg.Tool = m
	}

	switch {
	case relayOnly && cfg.RelayAddr != "":
		return Config{}, errors.New("-relay-only cannot be combined with a relay to join")
	case relayOnly:
		cfg.Mode = ModeRelay
	case cfg.RelayAddr != "":
		cfg.Mode = ModeJoin
	case discover:
		cfg.Mode = ModeDiscover
	default:
		cfg.Mode = ModeHost
	}
	cfg.Advertise = !noMDNS && (cfg.Mode == ModeHost || cfg.Mode == ModeRelay)
	return cfg, nil
}

func relayAddr(relay string) (string, error) {
	if strings.HasPrefix(relay, lbnet.Scheme) {
		return lbnet.ParseShareLink(relay)
	}
	return lbnet.ParseShareLink(lbnet.Scheme + relay)
}

// environment looks keys up in the process environment first and the
// .env file second. The process environment is never modified.
type environment map[string]string

func loadEnv(path string) (environment, error) {
	if path == "" {
		return environment{}, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return environment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

func (e environment) get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return e[key]
}

func (e environment) intOr(key string, def int) (int, error) {
	s := e.get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
