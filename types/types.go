package types

// FreeSlotsMap хранит свободные корты по времени слота для одной даты.
// Время слота - строка "HH:MM". Слот присутствует в мапе только если
// свободен хотя бы один корт (пустые списки не храним).
type FreeSlotsMap map[string][]int

// HistoryState - последнее известное состояние по всем датам.
// Ключ - дата "YYYY-MM-DD", значение - что было свободно при последней
// успешной проверке этой даты.
type HistoryState map[string]FreeSlotsMap

// Slot - одна строка отчета о доступности
type Slot struct {
	Time     string   `json:"time"`
	Courts   []string `json:"courts"`    // человекочитаемые названия ("Court 1")
	CourtIDs []int    `json:"court_ids"` // ID кортов из виджета
	IsNew    bool     `json:"is_new"`    // появился ли слот с прошлой проверки
}

// DayAvailability - результат проверки одной даты
type DayAvailability struct {
	Date         string       `json:"date"`
	Slots        []Slot       `json:"slots"`
	NewCount     int          `json:"new_count"`
	FreeSlotsMap FreeSlotsMap `json:"free_slots_map"`
}

// TargetInterval - одна дата для проверки с опциональным окном времени.
// Пустой StartTime или EndTime означает "без ограничения" - подходят
// все слоты дня.
type TargetInterval struct {
	Date      string // "YYYY-MM-DD"
	StartTime string // "HH:MM" или "" если не задано
	EndTime   string // "HH:MM" или "" если не задано
}

// Unconstrained сообщает, задано ли у интервала окно времени
func (t TargetInterval) Unconstrained() bool {
	return t.StartTime == "" || t.EndTime == ""
}
