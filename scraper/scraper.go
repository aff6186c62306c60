// Package scraper ходит в API виджета eversports за занятыми слотами и
// считает, какие корты свободны в каждый слот сетки.
package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"time"

	"badminton-bot/config"
	"badminton-bot/types"
)

const requestTimeout = 10 * time.Second

// Заголовки, имитирующие браузер - без них виджет отдает 403
var commonHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/129.0.0.0 Safari/537.36",
	"Accept":           "application/json, text/plain, */*",
	"Accept-Language":  "de-DE,de;q=0.9,en;q=0.8",
	"Origin":           "https://www.eversports.de",
	"Sec-Fetch-Site":   "same-origin",
	"Sec-Fetch-Mode":   "cors",
	"Sec-Fetch-Dest":   "empty",
	"Connection":       "keep-alive",
	"X-Requested-With": "XMLHttpRequest",
}

// Booking - одна запись о занятом слоте из ответа API
type Booking struct {
	Date  string `json:"date"`  // "YYYY-MM-DD"
	Start string `json:"start"` // "HHMM", например "1100"
	Court int    `json:"court"`
}

// Scraper держит HTTP клиент и конфигурацию площадки
type Scraper struct {
	cfg         config.Config
	client      *http.Client
	lastRequest time.Time
}

func New(cfg config.Config) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// rateLimit добавляет небольшую случайную задержку между запросами,
// чтобы не дергать виджет слишком часто
func (s *Scraper) rateLimit() {
	delay := time.Duration(200+rand.Intn(301)) * time.Millisecond
	elapsed := time.Since(s.lastRequest)

	if elapsed < delay {
		time.Sleep(delay - elapsed)
	}
	s.lastRequest = time.Now()
}

// BuildURL собирает URL запроса слотов для конкретной даты:
// facilityId, sport, startDate плюс повторяющийся courts[] на каждый корт
func (s *Scraper) BuildURL(dayISO string) string {
	qs := url.Values{}
	qs.Set("facilityId", fmt.Sprintf("%d", s.cfg.FacilityID))
	qs.Set("sport", s.cfg.Sport)
	qs.Set("startDate", dayISO)
	for _, cid := range s.cfg.CourtIDs {
		qs.Add("courts[]", fmt.Sprintf("%d", cid))
	}
	return s.cfg.APIBase + "?" + qs.Encode()
}

// FetchBookedSlots загружает сырой фид занятых слотов для даты.
// Любая транспортная ошибка, не-2xx статус и битый JSON - это
// восстановимая ошибка уровня даты: вызывающий пропустит дату и
// продолжит запуск.
func (s *Scraper) FetchBookedSlots(dateStr string) ([]byte, error) {
	s.rateLimit()

	fullURL := s.BuildURL(dateStr)
	log.Printf("🌐 Fetching data for %s", dateStr)
	if s.cfg.Verbose {
		log.Printf("  → URL: %s", fullURL)
	}

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Referer", s.cfg.WidgetURL)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if s.cfg.Verbose {
		log.Printf("  → Response status: %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("request blocked by Cloudflare (status=403)")
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("slot request failed (status=%d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("malformed JSON response for %s", dateStr)
	}

	return body, nil
}

// ParseBookedSlots раскладывает записи фида по слотам сетки: для каждого
// времени слота - множество занятых кортов. Фид отдает фиксированное
// окно дат, а не ровно один день, поэтому записи для других дат
// игнорируются. Запись с временем вне сетки - не ошибка, только
// предупреждение.
func ParseBookedSlots(feed []byte, dateStr string, grid []string) map[string]map[int]bool {
	booked := make(map[string]map[int]bool, len(grid))
	for _, slot := range grid {
		booked[slot] = make(map[int]bool)
	}

	var envelope struct {
		Slots *[]Booking `json:"slots"`
	}
	if err := json.Unmarshal(feed, &envelope); err != nil || envelope.Slots == nil {
		log.Println("⚠️ Unexpected JSON format. 'slots' key missing.")
		return nil
	}

	for _, b := range *envelope.Slots {
		if b.Date != dateStr {
			continue
		}
		if b.Start == "" || b.Court == 0 {
			continue
		}

		// кривое время не совпадет ни с одним слотом сетки и
		// останется видимым в логе через предупреждение ниже
		start := formatStart(b.Start)
		if _, ok := booked[start]; !ok {
			log.Printf("⚠️ Booking found for slot %s which is not in our generated schedule.", start)
			continue
		}
		booked[start][b.Court] = true
	}

	return booked
}

// formatStart превращает сырое "HHMM" время фида в "HH:MM".
// Короткие значения не роняют разбор - дают заведомо несетчатое время.
func formatStart(raw string) string {
	if len(raw) < 2 {
		return raw + ":"
	}
	return raw[:2] + ":" + raw[2:]
}

// CalculateFreeSlots вычитает занятые корты из полного набора.
// Слот попадает в результат только если свободен хотя бы один корт.
func CalculateFreeSlots(booked map[string]map[int]bool, grid []string, allCourts []int) types.FreeSlotsMap {
	freeSlots := make(types.FreeSlotsMap)

	for _, slot := range grid {
		bookedIDs := booked[slot]
		free := make([]int, 0, len(allCourts))
		for _, cid := range allCourts {
			if !bookedIDs[cid] {
				free = append(free, cid)
			}
		}
		if len(free) > 0 {
			sort.Ints(free)
			freeSlots[slot] = free
		}
	}

	return freeSlots
}

// ComputeFreeSlots - чистая композиция разбора и вычитания: из сырого
// фида в карту свободных слотов одной даты. Битая форма фида дает
// пустую карту, не ошибку - вызывающий трактует это как "данных нет".
func ComputeFreeSlots(feed []byte, dateStr string, grid []string, allCourts []int) types.FreeSlotsMap {
	booked := ParseBookedSlots(feed, dateStr, grid)
	if booked == nil {
		return types.FreeSlotsMap{}
	}
	return CalculateFreeSlots(booked, grid, allCourts)
}
