package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/weatherchat/internal/agent"
	"github.com/lox/weatherchat/internal/chat"
	"github.com/lox/weatherchat/internal/config"
	"github.com/lox/weatherchat/internal/llm"
	"github.com/lox/weatherchat/internal/logger"
	"github.com/lox/weatherchat/internal/metrics"
	"github.com/lox/weatherchat/internal/openweather"
	"github.com/lox/weatherchat/internal/store"
	"github.com/lox/weatherchat/internal/weather"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`

	Config        string `help:"Path to a YAML config file." env:"WEATHERCHAT_CONFIG"`
	APIKey        string `name:"api-key" help:"OpenAI API key (can also be set via OPENAI_API_KEY)." env:"OPENAI_API_KEY"`
	WeatherAPIKey string `name:"weather-api-key" help:"OpenWeather API key (can also be set via WEATHER_API_KEY)." env:"WEATHER_API_KEY"`
	Model         string `help:"Model identifier." env:"MODEL"`
	BaseURL       string `name:"base-url" help:"OpenAI compatible API base URL." env:"OPENAI_BASE_URL"`
	LogLevel      string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL"`
	Debug         bool   `help:"Show tool calls and detailed errors."`
	DB            string `name:"db" help:"SQLite cache database path. Empty disables caching." env:"WEATHERCHAT_DB"`
	MetricsAddr   string `help:"Serve Prometheus metrics on this address, e.g. :9090."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("weatherchat"),
		kong.Description("Start an interactive chat session with your weather assistant."),
		kong.UsageOnError(),
	)
	os.Exit(run(cli, os.Stdin, os.Stdout))
}

func run(cli CLI, stdin io.Reader, stdout *os.File) int {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		return 1
	}
	applyFlags(cfg, cli)

	color := chat.ColorEnabled(stdout)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stdout, credentialsHelp(err, color))
		return 1
	}

	log := logger.New(os.Stderr, cfg.Log.Level).With("session", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, log); err != nil {
				log.Error("metrics server", "error", err)
			}
		}()
	}

	var (
		placeCache   weather.PlaceCache
		payloadCache weather.PayloadCache
	)
	if cfg.Cache.Path != "" {
		st, err := store.Open(cfg.Cache.Path, log)
		if err != nil {
			log.Error("open cache, continuing without it", "path", cfg.Cache.Path, "error", err)
		} else {
			defer st.Close()
			if n, err := st.PruneRawPayloads(cfg.Cache.Retention); err != nil {
				log.Warn("prune cache", "error", err)
			} else if n > 0 {
				log.Debug("pruned cached payloads", "count", n)
			}
			placeCache, payloadCache = st, st
		}
	}

	ow, err := openweather.NewClient(openweather.Config{
		APIKey:        cfg.Weather.APIKey,
		BaseURL:       cfg.Weather.BaseURL,
		Timeout:       cfg.Weather.Timeout,
		MaxRetries:    cfg.Weather.MaxRetries,
		RetryInterval: cfg.Weather.RetryInterval,
	})
	if err != nil {
		log.Error("create weather client", "error", err)
		return 1
	}

	model, err := llm.NewClient(llm.Config{APIKey: cfg.Model.APIKey, BaseURL: cfg.Model.BaseURL}, log)
	if err != nil {
		log.Error("create model client", "error", err)
		return 1
	}

	resolver := weather.NewResolver(ow, placeCache, cfg.Cache.GeocodeTTL, log)
	tool := weather.NewTool(resolver, ow, payloadCache, cfg.Cache.ForecastTTL, log)
	assistant := agent.New(agent.Config{
		Model:        cfg.Model.Name,
		MaxTokens:    cfg.Model.MaxTokens,
		MaxToolCalls: cfg.Model.MaxToolCalls,
	}, model, tool, log)

	conv := agent.NewConversation(agent.SystemPrompt(time.Now()))
	session := chat.NewSession(assistant, conv, stdin, stdout, chat.Options{Color: color, Debug: cli.Debug}, log)
	if cli.Debug {
		assistant.OnToolCall = session.ToolCallHook
		assistant.OnToolDone = session.ToolDoneHook
	}

	if err := session.Run(ctx); err != nil {
		log.Error("chat session", "error", err)
		return 1
	}
	return 0
}

// applyFlags gives command line flags the last word over file and environment settings.
func applyFlags(cfg *config.Config, cli CLI) {
	if cli.APIKey != "" {
		cfg.Model.APIKey = cli.APIKey
	}
	if cli.WeatherAPIKey != "" {
		cfg.Weather.APIKey = cli.WeatherAPIKey
	}
	if cli.Model != "" {
		cfg.Model.Name = cli.Model
	}
	if cli.BaseURL != "" {
		cfg.Model.BaseURL = cli.BaseURL
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.DB != "" {
		cfg.Cache.Path = cli.DB
	}
	if cli.MetricsAddr != "" {
		cfg.Metrics.Addr = cli.MetricsAddr
	}
	if cli.Debug {
		cfg.Log.Level = slog.LevelDebug.String()
	}
}

func credentialsHelp(err error, color bool) string {
	red := func(s string) string {
		if !color {
			return s
		}
		return "\033[31m" + s + "\033[0m"
	}
	switch {
	case errors.Is(err, config.ErrMissingModelAPIKey):
		return red("❌ Error: OpenAI API key not found!") +
			"\nPlease set OPENAI_API_KEY environment variable or use --api-key option."
	case errors.Is(err, config.ErrMissingWeatherAPIKey):
		return red("❌ Error: Weather API key not found!") +
			"\nPlease set WEATHER_API_KEY environment variable or use --weather-api-key option."
	default:
		return red("❌ Error: " + err.Error())
	}
}
