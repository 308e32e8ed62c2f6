package model

// BookingTotals counts bookings by lifecycle status. The invariant
// Confirmed+Cancelled+Completed == Total holds for any committed state.
type BookingTotals struct {
	Confirmed int64 `json:"confirmed_bookings" bson:"confirmed_bookings"`
	Cancelled int64 `json:"cancelled_bookings" bson:"cancelled_bookings"`
	Completed int64 `json:"completed_bookings" bson:"completed_bookings"`
	Total     int64 `json:"total_bookings" bson:"total_bookings"`
}

// ServiceStats aggregates per-service confirmed bookings and revenue.
type ServiceStats struct {
	ServiceID    string  `json:"service_id" bson:"_id"`
	Name         string  `json:"name" bson:"name"`
	BookingCount int64   `json:"booking_count" bson:"booking_count"`
	TotalRevenue float64 `json:"total_revenue" bson:"total_revenue"`
}

// Stats is the read-only summary derived from the ledger and slot store.
type Stats struct {
	Summary        BookingTotals  `json:"summary"`
	AvailableSlots int64          `json:"available_slots"`
	ByService      []ServiceStats `json:"by_service"`
}
