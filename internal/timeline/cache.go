package timeline

// Flattened is the cache representation of a DayMap: three per-category
// record arrays that are a pure function of the mapping and can rebuild it.
type Flattened struct {
	Runs      []ActivityRecord
	Sleeps    []SleepDay
	Readiness []ReadinessDay
}

// Flatten decomposes the mapping into per-category arrays, ordered by
// ascending date (runs keep their insertion order within a day).
func (m *DayMap) Flatten() Flattened {
	var f Flattened
	for _, e := range m.Entries() {
		if e.Sleep != nil {
			f.Sleeps = append(f.Sleeps, *e.Sleep)
		}
		if e.Readiness != nil {
			f.Readiness = append(f.Readiness, *e.Readiness)
		}
		f.Runs = append(f.Runs, e.Runs...)
	}
	return f
}

// Rebuild is the inverse of Flatten. Every date in [start, end] is filled
// with an empty placeholder first, so a requested range outside the cached
// coverage still yields a complete, gap-free series; the cached records are
// then overlaid on top.
func Rebuild(start, end DateKey, f Flattened) *DayMap {
	m := NewDayMap()
	for _, d := range Days(start, end) {
		m.getOrCreate(d)
	}
	for _, sd := range f.Sleeps {
		sd := sd
		m.getOrCreate(sd.Date).Sleep = &sd
	}
	for _, rd := range f.Readiness {
		rd := rd
		m.getOrCreate(rd.Date).Readiness = &rd
	}
	for _, run := range f.Runs {
		e := m.getOrCreate(run.Date)
		e.Runs = append(e.Runs, run)
	}
	return m
}
