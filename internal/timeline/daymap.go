package timeline

import "slices"

// DayMap is the merged per-date mapping. Every DateKey maps to exactly one
// DayEntry; all entry creation goes through getOrCreate.
type DayMap struct {
	entries map[DateKey]*DayEntry
}

func NewDayMap() *DayMap {
	return &DayMap{entries: make(map[DateKey]*DayEntry)}
}

func (m *DayMap) getOrCreate(date DateKey) *DayEntry {
	if e, ok := m.entries[date]; ok {
		return e
	}
	e := &DayEntry{Date: date}
	m.entries[date] = e
	return e
}

func (m *DayMap) Get(date DateKey) (*DayEntry, bool) {
	e, ok := m.entries[date]
	return e, ok
}

func (m *DayMap) Len() int {
	return len(m.entries)
}

// Dates returns every date present, ascending.
func (m *DayMap) Dates() []DateKey {
	dates := make([]DateKey, 0, len(m.entries))
	for d := range m.entries {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

// Entries returns all entries ordered by ascending date.
func (m *DayMap) Entries() []*DayEntry {
	dates := m.Dates()
	entries := make([]*DayEntry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, m.entries[d])
	}
	return entries
}

func (e *DayEntry) ensureSleep() *SleepDay {
	if e.Sleep == nil {
		e.Sleep = &SleepDay{Date: e.Date}
	}
	return e.Sleep
}

func (e *DayEntry) ensureReadiness() *ReadinessDay {
	if e.Readiness == nil {
		e.Readiness = &ReadinessDay{Date: e.Date}
	}
	return e.Readiness
}
