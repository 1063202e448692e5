package incidents

import "time"

// Stats son las métricas del panel: totales y ventanas por created_at.
// ByStatus solo se llena para admin.
type Stats struct {
	Total      int
	Last7Days  int
	Last30Days int
	ByStatus   map[Status]int
}

func ComputeStats(list []Incident, now time.Time, withStatus bool) Stats {
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	st := Stats{Total: len(list)}
	if withStatus {
		st.ByStatus = map[Status]int{
			StatusPending:  0,
			StatusApproved: 0,
			StatusRejected: 0,
		}
	}
	for _, inc := range list {
		if !inc.CreatedAt.Before(week) {
			st.Last7Days++
		}
		if !inc.CreatedAt.Before(month) {
			st.Last30Days++
		}
		if withStatus {
			st.ByStatus[inc.Status]++
		}
	}
	return st
}
