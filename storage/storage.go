// Package storage хранит историю доступности и отчет между запусками.
// Два бэкенда за одним интерфейсом: JSON файлы (по умолчанию) и Redis.
package storage

import (
	"encoding/json"
	"log"
	"time"

	"badminton-bot/types"
)

// Store - что нужно оркестратору от хранилища. Ошибки загрузки
// поглощаются внутри (старт с пустого состояния), ошибки записи
// возвращаются - вызывающий логирует и продолжает.
type Store interface {
	LoadHistory() types.HistoryState
	SaveHistory(history types.HistoryState) error
	SaveReport(days []types.DayAvailability) error
}

// historyEnvelope - актуальный формат файла истории
type historyEnvelope struct {
	LastUpdated  string             `json:"last_updated"`
	Availability types.HistoryState `json:"availability"`
}

// reportEnvelope - формат файла отчета, всегда перезаписывается целиком
type reportEnvelope struct {
	LastUpdated string                  `json:"last_updated"`
	Days        []types.DayAvailability `json:"days"`
}

// decodeHistory разбирает историю в одном из двух форматов: обернутый
// {"last_updated": ..., "availability": {...}} или legacy - голая мапа
// дата -> слоты. Явная двухвариантная попытка декодирования: сначала
// проверяем наличие ключа availability, иначе читаем как голую мапу.
func decodeHistory(data []byte) (types.HistoryState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if _, ok := probe["availability"]; ok {
		var env historyEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, err
		}
		if env.LastUpdated != "" {
			log.Printf("📦 Loaded history from cache, last updated: %s", env.LastUpdated)
		}
		if env.Availability == nil {
			return types.HistoryState{}, nil
		}
		return env.Availability, nil
	}

	// legacy формат без обертки
	var bare types.HistoryState
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	if bare == nil {
		bare = types.HistoryState{}
	}
	return bare, nil
}

func encodeHistory(history types.HistoryState) ([]byte, error) {
	env := historyEnvelope{
		LastUpdated:  time.Now().Format(time.RFC3339),
		Availability: history,
	}
	return json.MarshalIndent(env, "", "  ")
}

func encodeReport(days []types.DayAvailability) ([]byte, error) {
	if days == nil {
		days = []types.DayAvailability{}
	}
	env := reportEnvelope{
		LastUpdated: time.Now().Format(time.RFC3339),
		Days:        days,
	}
	return json.MarshalIndent(env, "", "  ")
}
