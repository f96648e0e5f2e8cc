package handlers

import "gorm.io/gorm"

type occupancyAgg struct {
	ClassID   uint
	Attendees int64
	CheckedIn int64
}

// occupancyAggregation counts attendee rows and check-ins for every class in
// a single GROUP BY query.
func occupancyAggregation(q *gorm.DB) (map[uint]occupancyAgg, error) {
	var aggs []occupancyAgg
	err := q.Table("attendees").
		Select(`class_id,
			COUNT(*) AS attendees,
			SUM(CASE WHEN check_in_at IS NOT NULL THEN 1 ELSE 0 END) AS checked_in`).
		Group("class_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]occupancyAgg, len(aggs))
	for _, a := range aggs {
		out[a.ClassID] = a
	}
	return out, nil
}
