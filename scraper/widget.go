package scraper

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverCourtNames пытается вытащить отображаемые названия кортов со
// страницы виджета. Виджет рисует колонку на корт с data-court
// атрибутом и заголовком. Любая проблема здесь не фатальна - вызывающий
// остается на статическом маппинге из конфигурации.
func (s *Scraper) DiscoverCourtNames() (map[int]string, error) {
	s.rateLimit()

	req, err := http.NewRequest(http.MethodGet, s.cfg.WidgetURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("widget page request failed (status=%d)", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string)

	doc.Find("[data-court]").Each(func(i int, sel *goquery.Selection) {
		raw, exists := sel.Attr("data-court")
		if !exists {
			return
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return
		}

		name := strings.TrimSpace(sel.Text())
		// заголовки колонок содержат лишние переносы строк
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			return
		}

		if _, seen := names[id]; !seen {
			names[id] = name
		}
	})

	if len(names) == 0 {
		return nil, fmt.Errorf("no court headers found on widget page")
	}

	log.Printf("🎾 Discovered %d court names from widget page", len(names))
	return names, nil
}
