package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"coupsurcoup"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	Game     Game
	Bot      Bot
	Rewards  Rewards
	Realtime Realtime
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache, snapshot and pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20" validate:"gt=0"`
}

// Security stores secrets for signing player session tokens.
type Security struct {
	JWTSecret  string        `env:"JWT_SECRET,notEmpty"`
	SessionTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"6h" validate:"gt=0"`
}

// Game groups round timings and lobby limits.
type Game struct {
	MinPlayers        int           `env:"GAME_MIN_PLAYERS" envDefault:"2" validate:"gte=2"`
	MaxPlayers        int           `env:"GAME_MAX_PLAYERS" envDefault:"8" validate:"gtefield=MinPlayers"`
	SelectiveTurn     time.Duration `env:"GAME_SELECTIVE_TURN" envDefault:"10s" validate:"gt=0"`
	SelectiveSurvivor int           `env:"GAME_SELECTIVE_SURVIVORS" envDefault:"3" validate:"gte=2"`
	TrapTurn          time.Duration `env:"GAME_TRAP_TURN" envDefault:"15s" validate:"gt=0"`
	TrapAdvanceDelay  time.Duration `env:"GAME_TRAP_ADVANCE_DELAY" envDefault:"2s" validate:"gte=0"`
	RevealPause       time.Duration `env:"GAME_REVEAL_PAUSE" envDefault:"1500ms" validate:"gte=0"`
	DuelPick          time.Duration `env:"GAME_DUEL_PICK" envDefault:"10s" validate:"gt=0"`
	DuelAnswer        time.Duration `env:"GAME_DUEL_ANSWER" envDefault:"10s" validate:"gt=0"`
	ChronoClock       time.Duration `env:"GAME_CHRONO_CLOCK" envDefault:"60s" validate:"gt=0"`
	ClueTurn          time.Duration `env:"GAME_CLUE_TURN" envDefault:"20s" validate:"gt=0"`
	QuestionCacheTTL  time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"10m" validate:"gt=0"`
	SnapshotTTL       time.Duration `env:"GAME_SNAPSHOT_TTL" envDefault:"2h" validate:"gt=0"`
}

// Bot tunes the simulated players that fill rooms.
type Bot struct {
	SuccessRate float64       `env:"BOT_SUCCESS_RATE" envDefault:"0.7" validate:"gte=0,lte=1"`
	MinDelay    time.Duration `env:"BOT_MIN_DELAY" envDefault:"1s" validate:"gte=0"`
	MaxDelay    time.Duration `env:"BOT_MAX_DELAY" envDefault:"3s" validate:"gtefield=MinDelay"`
}

// Rewards holds coin and XP constants.
type Rewards struct {
	CorrectCoins   int `env:"REWARD_CORRECT_COINS" envDefault:"100"`
	WrongPenalty   int `env:"REWARD_WRONG_PENALTY" envDefault:"75" validate:"gte=0"`
	TimeoutPenalty int `env:"REWARD_TIMEOUT_PENALTY" envDefault:"50" validate:"gte=0"`
	DuelBonus      int `env:"REWARD_DUEL_BONUS" envDefault:"150" validate:"gte=0"`
	WinnerBonus    int `env:"REWARD_WINNER_BONUS" envDefault:"500" validate:"gte=0"`
	LevelUpBonus   int `env:"REWARD_LEVEL_UP_BONUS" envDefault:"50" validate:"gte=0"`
	XPPerCorrect   int `env:"REWARD_XP_PER_CORRECT" envDefault:"20" validate:"gte=0"`
	XPPerLevel     int `env:"REWARD_XP_PER_LEVEL" envDefault:"100" validate:"gt=0"`
}

// Realtime configures the pub/sub channel naming.
type Realtime struct {
	ChannelPrefix string `env:"REALTIME_CHANNEL_PREFIX" envDefault:"game"`
}

// Load parses environment variables into App config and validates ranges.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct-tag validation and flattens field errors into one message.
func Validate(cfg *App) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validate config: %w", err)
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
