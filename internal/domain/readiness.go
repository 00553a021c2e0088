package domain

import "sort"

// ReadinessLevel - уровень готовности станции к организации пижамной вечеринки
type ReadinessLevel string

const (
	ReadinessCritical ReadinessLevel = "critical"
	ReadinessHigh     ReadinessLevel = "high"
	ReadinessMedium   ReadinessLevel = "medium"
	ReadinessLow      ReadinessLevel = "low"
)

// Пороговые значения количества мечт
const (
	CriticalMassThreshold = 20
	HighDemandThreshold   = 10
	MediumDemandThreshold = 5
)

// CriticalMassEntry - вычисляемая запись критической массы, в БД не хранится
type CriticalMassEntry struct {
	Station              string         `json:"station"`
	Coordinates          [2]float64     `json:"coordinates"` // [lng, lat]
	DreamCount           int            `json:"dreamCount"`
	ReadinessLevel       ReadinessLevel `json:"readinessLevel"`
	ReadinessScore       int            `json:"readinessScore"`
	PajamaPartyPotential string         `json:"pajamaPartyPotential"`
}

// ComputeReadiness переводит количество мечт в уровень, оценку (0-100) и подпись
func ComputeReadiness(dreamCount int) (ReadinessLevel, int, string) {
	score := dreamCount * 5
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	switch {
	case dreamCount >= CriticalMassThreshold:
		return ReadinessCritical, score, "Ready for a pajama party"
	case dreamCount >= HighDemandThreshold:
		return ReadinessHigh, score, "Almost there"
	case dreamCount >= MediumDemandThreshold:
		return ReadinessMedium, score, "Community growing"
	default:
		return ReadinessLow, score, "Needs more dreamers"
	}
}

// BuildCriticalMass строит записи для станций с координатами, по убыванию количества мечт
func BuildCriticalMass(counts []StationDreamCount) []CriticalMassEntry {
	entries := make([]CriticalMassEntry, 0, len(counts))
	for _, c := range counts {
		if c.Lat == nil || c.Lng == nil || c.Count <= 0 {
			continue
		}
		level, score, potential := ComputeReadiness(c.Count)
		entries = append(entries, CriticalMassEntry{
			Station:              c.Station,
			Coordinates:          [2]float64{*c.Lng, *c.Lat},
			DreamCount:           c.Count,
			ReadinessLevel:       level,
			ReadinessScore:       score,
			PajamaPartyPotential: potential,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DreamCount != entries[j].DreamCount {
			return entries[i].DreamCount > entries[j].DreamCount
		}
		return entries[i].Station < entries[j].Station
	})

	return entries
}
