// Package checker - ядро бота: сравнивает текущую доступность с
// историей, находит новые слоты и собирает результат запуска.
package checker

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"badminton-bot/config"
	"badminton-bot/notifier"
	"badminton-bot/schedule"
	"badminton-bot/scraper"
	"badminton-bot/storage"
	"badminton-bot/types"
)

// FetchFunc загружает сырой фид занятых слотов для одной даты.
// Вынесена в тип, чтобы в тестах подставлять фейковый фид.
type FetchFunc func(dateStr string) ([]byte, error)

// DateSlots - новые слоты одной даты для уведомления
type DateSlots struct {
	Date  string
	Slots []types.Slot
}

// Outcome - все, что накопил один проход по целевым датам
type Outcome struct {
	StateSnapshot types.HistoryState
	Days          []types.DayAvailability
	NewSlots      []DateSlots
}

// TotalNewSlots считает новые слоты после фильтрации по окнам времени
func (o Outcome) TotalNewSlots() int {
	total := 0
	for _, ds := range o.NewSlots {
		total += len(ds.Slots)
	}
	return total
}

type Checker struct {
	Cfg        config.Config
	CourtNames map[int]string
	Fetch      FetchFunc
	Store      storage.Store
	Notifier   notifier.Notifier
}

func New(cfg config.Config, courtNames map[int]string, fetch FetchFunc, store storage.Store, notify notifier.Notifier) *Checker {
	return &Checker{
		Cfg:        cfg,
		CourtNames: courtNames,
		Fetch:      fetch,
		Store:      store,
		Notifier:   notify,
	}
}

// DiffAgainstHistory сравнивает свежую карту свободных слотов с
// предыдущей для той же даты. Слот новый, если хотя бы один его корт
// не был свободен в прошлый раз - даже когда остальные корты слота
// были свободны давно. Исчезнувшие слоты не отслеживаются.
func DiffAgainstHistory(current, previous types.FreeSlotsMap, courtNames map[int]string) ([]types.Slot, int) {
	times := make([]string, 0, len(current))
	for t := range current {
		times = append(times, t)
	}
	sort.Strings(times)

	slots := make([]types.Slot, 0, len(times))
	newCount := 0

	for _, t := range times {
		freeIDs := current[t]

		prevFree := make(map[int]bool, len(previous[t]))
		for _, cid := range previous[t] {
			prevFree[cid] = true
		}

		isNew := false
		for _, cid := range freeIDs {
			if !prevFree[cid] {
				isNew = true
				break
			}
		}
		if isNew {
			newCount++
		}

		sortedIDs := append([]int(nil), freeIDs...)
		sort.Ints(sortedIDs)

		names := make([]string, 0, len(sortedIDs))
		for _, cid := range sortedIDs {
			names = append(names, courtName(courtNames, cid))
		}

		slots = append(slots, types.Slot{
			Time:     t,
			Courts:   names,
			CourtIDs: sortedIDs,
			IsNew:    isNew,
		})
	}

	return slots, newCount
}

func courtName(courtNames map[int]string, cid int) string {
	if name, ok := courtNames[cid]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", cid)
}

// buildDayAvailability загружает фид и собирает результат одной даты.
// nil означает "данных нет" - фид не загрузился.
func (c *Checker) buildDayAvailability(dateStr string, grid []string, history types.HistoryState) *types.DayAvailability {
	feed, err := c.Fetch(dateStr)
	if err != nil {
		log.Printf("⚠️ Error fetching data for %s: %v", dateStr, err)
		return nil
	}

	freeSlots := scraper.ComputeFreeSlots(feed, dateStr, grid, c.Cfg.CourtIDs)
	slots, newCount := DiffAgainstHistory(freeSlots, history[dateStr], c.CourtNames)

	return &types.DayAvailability{
		Date:         dateStr,
		Slots:        slots,
		NewCount:     newCount,
		FreeSlotsMap: freeSlots,
	}
}

// filterNewSlots отбирает новые слоты даты, пересекающиеся с окном
// времени целевого интервала. Фильтр влияет только на уведомление -
// отчет и история хранят все.
func (c *Checker) filterNewSlots(day types.DayAvailability, interval types.TargetInterval) []types.Slot {
	filtered := make([]types.Slot, 0)
	for _, s := range day.Slots {
		if !s.IsNew {
			continue
		}
		if schedule.Overlaps(s.Time, c.Cfg.SlotDuration, interval) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Collect обходит целевые даты строго последовательно и накапливает
// снапшот состояния, отчет и кандидатов на уведомление. Неудачная
// загрузка даты не роняет запуск: прошлое состояние даты переносится
// в снапшот как есть, если оно было.
func (c *Checker) Collect(intervals []types.TargetInterval, grid []string, history types.HistoryState) Outcome {
	outcome := Outcome{
		StateSnapshot: make(types.HistoryState, len(intervals)),
		Days:          make([]types.DayAvailability, 0, len(intervals)),
		NewSlots:      make([]DateSlots, 0),
	}

	for _, interval := range intervals {
		dateStr := interval.Date
		day := c.buildDayAvailability(dateStr, grid, history)

		if day == nil {
			if prev, ok := history[dateStr]; ok {
				// фид не загрузился - переносим прошлое состояние даты
				outcome.StateSnapshot[dateStr] = prev
			}
			continue
		}

		outcome.StateSnapshot[dateStr] = day.FreeSlotsMap
		outcome.Days = append(outcome.Days, *day)

		if filtered := c.filterNewSlots(*day, interval); len(filtered) > 0 {
			outcome.NewSlots = append(outcome.NewSlots, DateSlots{Date: dateStr, Slots: filtered})
		}
	}

	return outcome
}

// Run - полный цикл одного запуска: история -> обход дат -> отчеты ->
// сохранение -> уведомление. Ошибки записи и отправки не фатальны.
func (c *Checker) Run(intervals []types.TargetInterval, grid []string) Outcome {
	dates := make([]string, 0, len(intervals))
	for _, interval := range intervals {
		dates = append(dates, interval.Date)
	}
	log.Printf("🔍 Checking availability for %d days: %s", len(intervals), strings.Join(dates, ", "))

	history := c.Store.LoadHistory()
	outcome := c.Collect(intervals, grid, history)

	for _, day := range outcome.Days {
		PrintDayReport(day)
	}

	if err := c.Store.SaveHistory(outcome.StateSnapshot); err != nil {
		log.Printf("⚠️ Failed to save history: %v", err)
	}
	if err := c.Store.SaveReport(outcome.Days); err != nil {
		log.Printf("⚠️ Failed to save report: %v", err)
	}

	if total := outcome.TotalNewSlots(); total > 0 {
		fmt.Printf("\n*** Total NEW slots found: %d ***\n", total)
		message := FormatNotification(total, outcome.NewSlots, c.Cfg.WidgetURL)
		if err := c.Notifier.Send(message); err != nil {
			log.Printf("⚠️ Failed to send Telegram message: %v", err)
		}
	} else {
		fmt.Printf("\nNo new slots found across %d days.\n", len(intervals))
	}

	return outcome
}

// PrintDayReport печатает отчет по одной дате в stdout
func PrintDayReport(day types.DayAvailability) {
	fmt.Printf("\n--- Availability Report for %s ---\n", day.Date)

	for _, s := range day.Slots {
		prefix := "[AVAILABLE]"
		if s.IsNew {
			prefix = "[NEW]      "
		}
		fmt.Printf("%s %s: %s\n", prefix, s.Time, strings.Join(s.Courts, ", "))
	}

	if len(day.Slots) > 0 {
		fmt.Printf("Summary: Found %d available time slots for %s!\n", len(day.Slots), day.Date)
	} else {
		fmt.Printf("Summary: No courts available for %s.\n", day.Date)
	}
}

// FormatNotification собирает текст уведомления: секция на дату,
// строка на слот, ссылка на виджет в конце
func FormatNotification(total int, newSlots []DateSlots, widgetURL string) string {
	lines := make([]string, 0)
	for _, ds := range newSlots {
		lines = append(lines, fmt.Sprintf("*%s*:", ds.Date))
		for _, s := range ds.Slots {
			lines = append(lines, fmt.Sprintf("  - %s (%s)", s.Time, strings.Join(s.Courts, ", ")))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏸 *New Badminton Slots Found!* (%d)\n\n", total)
	b.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "\n\n[Book Now](%s)", widgetURL)
	return b.String()
}
