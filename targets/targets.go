// Package targets определяет, какие даты проверять в этом запуске:
// разбирает строки из Google Sheet CSV и при их отсутствии генерирует
// даты от стартовой даты CLI.
package targets

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"badminton-bot/types"
)

const (
	csvDateLayout = "02.01.2006"
	isoDateLayout = "2006-01-02"
	timeLayout    = "15:04"

	fetchTimeout = 10 * time.Second
)

// Заголовочные строки таблицы, которые пропускаем без предупреждения
var headerTokens = map[string]bool{
	"date":  true,
	"datum": true,
	"day":   true,
	"tag":   true,
}

// FetchRawTargetRows загружает CSV документ с целевыми датами.
// Ожидаемый формат:
//
//	колонка A: дата DD.MM.YYYY
//	колонка B: время начала HH:MM (опционально)
//	колонка C: время конца HH:MM (опционально)
func FetchRawTargetRows(url string) ([][]string, error) {
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("csv fetch failed (status=%d)", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // строки могут иметь разное число колонок

	rows := make([][]string, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("⚠️ Skipping malformed CSV line: %v", err)
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// rowOutcome - результат разбора одной строки таблицы.
// Строка либо дает интервал, либо молча пропускается.
type rowOutcome int

const (
	rowOK rowOutcome = iota
	rowSkip
)

// parseRow разбирает одну строку CSV в TargetInterval.
// Пустые строки, заголовки и строки с нечитаемой датой пропускаются.
// Нечитаемое время не отбрасывает строку целиком - только само поле,
// с предупреждением в лог.
func parseRow(row []string) (types.TargetInterval, rowOutcome) {
	if len(row) == 0 {
		return types.TargetInterval{}, rowSkip
	}

	dateRaw := strings.TrimSpace(row[0])
	if headerTokens[strings.ToLower(dateRaw)] {
		return types.TargetInterval{}, rowSkip
	}

	dt, err := time.Parse(csvDateLayout, dateRaw)
	if err != nil {
		// скорее всего мусор или незнакомый заголовок
		return types.TargetInterval{}, rowSkip
	}

	interval := types.TargetInterval{
		Date:      dt.Format(isoDateLayout),
		StartTime: parseOptionalTime(row, 1, dateRaw, "start"),
		EndTime:   parseOptionalTime(row, 2, dateRaw, "end"),
	}

	return interval, rowOK
}

// parseOptionalTime достает время из колонки col. Пустая или
// отсутствующая колонка - это нормально, нечитаемое значение
// отбрасывается с предупреждением. Результат всегда зачищен до
// "HH:MM": парсер принимает и "9:00", а дальше по коду времена
// сравниваются как строки, где ведущий ноль обязателен.
func parseOptionalTime(row []string, col int, dateRaw, label string) string {
	if len(row) <= col {
		return ""
	}
	raw := strings.TrimSpace(row[col])
	if raw == "" {
		return ""
	}
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s time format %q for %s, ignoring", label, raw, dateRaw)
		return ""
	}
	return parsed.Format(timeLayout)
}

// Resolve превращает сырые строки таблицы в упорядоченный список
// целевых интервалов. Если из строк ничего не получилось, генерирует
// cliDays подряд идущих дат начиная с cliStartDate (или с сегодня).
// Возвращает ошибку только если и то и другое дало пустой список -
// без целевых дат запуск невозможен.
func Resolve(rawRows [][]string, cliStartDate string, cliDays int) ([]types.TargetInterval, error) {
	intervals := make([]types.TargetInterval, 0)
	for _, row := range rawRows {
		if interval, outcome := parseRow(row); outcome == rowOK {
			intervals = append(intervals, interval)
		}
	}

	if len(intervals) > 0 {
		return intervals, nil
	}

	log.Println("⚠️ No target dates found in google sheet")

	start := time.Now()
	if cliStartDate != "" {
		parsed, err := time.Parse(isoDateLayout, cliStartDate)
		if err != nil {
			return nil, fmt.Errorf("start date must be in YYYY-MM-DD format, got %q", cliStartDate)
		}
		start = parsed
	}

	for i := 0; i < cliDays; i++ {
		intervals = append(intervals, types.TargetInterval{
			Date: start.AddDate(0, 0, i).Format(isoDateLayout),
		})
	}

	if len(intervals) == 0 {
		return nil, fmt.Errorf("no target dates found")
	}

	return intervals, nil
}

// Load - удобная обертка для main: загружает строки из CSV (если URL
// задан) и резолвит их в интервалы. Ошибка загрузки CSV не фатальна -
// срабатывает CLI fallback.
func Load(csvURL, cliStartDate string, cliDays int) ([]types.TargetInterval, error) {
	var rows [][]string
	if csvURL != "" {
		log.Println("📋 Fetching target dates from CSV...")
		fetched, err := FetchRawTargetRows(csvURL)
		if err != nil {
			log.Printf("⚠️ Failed to fetch target dates: %v", err)
		} else {
			rows = fetched
		}
	}

	return Resolve(rows, cliStartDate, cliDays)
}
