package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Константы площадки. Набор кортов и сетка расписания фиксированы -
// виджет отдает данные именно для этой конфигурации.
const (
	DefaultFacilityID = 76443
	DefaultSport      = "badminton"

	DefaultWidgetURL = "https://www.eversports.de/widget/w/c7o9ft"
	DefaultAPIBase   = "https://www.eversports.de/widget/api/slot"

	DefaultOpenTime     = "10:15"
	DefaultCloseTime    = "22:15"
	DefaultSlotDuration = 45 // минуты

	DefaultDataDir = "public/data"
)

// Config - неизменяемая конфигурация процесса. Собирается один раз при
// старте и передается по значению в компоненты: никакого глобального
// мутабельного состояния.
type Config struct {
	FacilityID int
	Sport      string
	CourtIDs   []int
	CourtNames map[int]string

	WidgetURL string
	APIBase   string

	OpenTime     string // "HH:MM"
	CloseTime    string // "HH:MM"
	SlotDuration int    // минуты

	DataDir     string
	HistoryFile string
	ReportFile  string

	TargetDatesCSVURL string

	TelegramBotToken string
	TelegramChatID   int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Verbose bool
}

// Load собирает конфигурацию из дефолтов и переменных окружения
func Load() Config {
	cfg := Config{
		FacilityID: DefaultFacilityID,
		Sport:      DefaultSport,
		CourtIDs:   []int{77394, 77395, 77396},
		CourtNames: map[int]string{
			77394: "Court 1",
			77395: "Court 2",
			77396: "Court 3",
		},

		WidgetURL: DefaultWidgetURL,
		APIBase:   DefaultAPIBase,

		OpenTime:     DefaultOpenTime,
		CloseTime:    DefaultCloseTime,
		SlotDuration: DefaultSlotDuration,

		DataDir: envDefault("DATA_DIR", DefaultDataDir),

		TargetDatesCSVURL: os.Getenv("TARGET_DATES_CSV_URL"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       0, // badminton-bot
	}

	cfg.HistoryFile = filepath.Join(cfg.DataDir, "availability.json")
	cfg.ReportFile = filepath.Join(cfg.DataDir, "report.json")

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("⚠️ Invalid TELEGRAM_CHAT_ID %q: %v (notifications disabled)", raw, err)
		} else {
			cfg.TelegramChatID = chatID
		}
	}

	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		log.Println("⚠️ Telegram configuration incomplete. Skipping notification.")
	}

	return cfg
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
