// Package schedule генерирует сетку слотов площадки и проверяет
// пересечение слота с окном времени целевой даты.
package schedule

import (
	"fmt"
	"log"
	"time"

	"badminton-bot/types"
)

const timeLayout = "15:04"

// GenerateSlotGrid строит упорядоченный список всех возможных времен
// начала слота: openTime + k*duration, включая closeTime если оно
// попадает точно на сетку. Для площадки 10:15-22:15 с шагом 45 минут
// получается 17 слотов.
//
// Ошибка здесь - фатальная ошибка конфигурации, не ошибка запуска.
func GenerateSlotGrid(openTime, closeTime string, slotDurationMinutes int) ([]string, error) {
	if slotDurationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", slotDurationMinutes)
	}

	open, err := time.Parse(timeLayout, openTime)
	if err != nil {
		return nil, fmt.Errorf("invalid open time %q: %w", openTime, err)
	}
	close, err := time.Parse(timeLayout, closeTime)
	if err != nil {
		return nil, fmt.Errorf("invalid close time %q: %w", closeTime, err)
	}
	if close.Before(open) {
		return nil, fmt.Errorf("close time %s is before open time %s", closeTime, openTime)
	}

	slots := make([]string, 0)
	for current := open; !current.After(close); current = current.Add(time.Duration(slotDurationMinutes) * time.Minute) {
		slots = append(slots, current.Format(timeLayout))
	}

	return slots, nil
}

// Overlaps проверяет, пересекается ли слот с окном времени целевой даты.
// Без заданного окна подходит любой слот. Формула полуоткрытого
// интервала: slotStart < end AND slotEnd > start. Слот, который
// заканчивается ровно в начале окна или начинается ровно в его конце,
// не пересекается. Инвертированное или нулевое окно (start >= end) не
// пересекается ни с чем - валидацию порядка здесь сознательно не делаем.
func Overlaps(slotTime string, slotDurationMinutes int, interval types.TargetInterval) bool {
	if interval.Unconstrained() {
		return true
	}

	start, err := time.Parse(timeLayout, slotTime)
	if err != nil {
		log.Printf("⚠️ Cannot parse slot time %q: %v", slotTime, err)
		return false
	}

	// Конец слота сравниваем как "HH:MM": у зачищенных времен
	// лексикографический порядок совпадает с хронологическим
	slotEnd := start.Add(time.Duration(slotDurationMinutes) * time.Minute).Format(timeLayout)

	return slotTime < interval.EndTime && slotEnd > interval.StartTime
}
