package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"badminton-bot/checker"
	"badminton-bot/config"
	"badminton-bot/notifier"
	"badminton-bot/schedule"
	"badminton-bot/scraper"
	"badminton-bot/storage"
	"badminton-bot/targets"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		startDate string
		days      int
		verbose   bool
	)

	root := &cobra.Command{
		Use:           "badminton-bot",
		Short:         "Scrape Eversports for free badminton courts and notify about new slots",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env опционален - в проде переменные приходят из окружения
			_ = godotenv.Load()

			cfg := config.Load()
			cfg.Verbose = verbose

			return run(cfg, startDate, days)
		},
	}

	root.Flags().StringVar(&startDate, "start-date", "", "Start date in YYYY-MM-DD format. Defaults to today.")
	root.Flags().IntVar(&days, "days", 3, "Number of days to check. Defaults to 3.")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")

	return root
}

func run(cfg config.Config, startDate string, days int) error {
	grid, err := schedule.GenerateSlotGrid(cfg.OpenTime, cfg.CloseTime, cfg.SlotDuration)
	if err != nil {
		return fmt.Errorf("invalid slot grid configuration: %w", err)
	}
	if cfg.Verbose {
		log.Printf("📅 Generated %d slots: %v", len(grid), grid)
	}

	intervals, err := targets.Load(cfg.TargetDatesCSVURL, startDate, days)
	if err != nil {
		return err
	}

	sc := scraper.New(cfg)

	// Пробуем достать названия кортов со страницы виджета; если не
	// вышло - остаемся на статическом маппинге из конфигурации
	courtNames := cfg.CourtNames
	if discovered, err := sc.DiscoverCourtNames(); err == nil {
		merged := make(map[int]string, len(courtNames))
		for id, name := range courtNames {
			merged[id] = name
		}
		for id, name := range discovered {
			merged[id] = name
		}
		courtNames = merged
	} else if cfg.Verbose {
		log.Printf("⚠️ Court name discovery failed: %v (using static mapping)", err)
	}

	chk := checker.New(cfg, courtNames, sc.FetchBookedSlots, chooseStore(cfg), notifier.New(cfg.TelegramBotToken, cfg.TelegramChatID))
	chk.Run(intervals, grid)

	return nil
}

// chooseStore выбирает бэкенд хранения: Redis если задан REDIS_ADDR,
// иначе JSON файлы. Недоступный Redis не роняет запуск - откатываемся
// на файлы с предупреждением.
func chooseStore(cfg config.Config) storage.Store {
	if cfg.RedisAddr != "" {
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(); err != nil {
			log.Printf("⚠️ Redis connection failed: %v (falling back to file storage)", err)
		} else {
			log.Printf("📦 Using Redis storage at %s", cfg.RedisAddr)
			return rs
		}
	}
	return storage.NewFileStore(cfg.DataDir, cfg.HistoryFile, cfg.ReportFile)
}
