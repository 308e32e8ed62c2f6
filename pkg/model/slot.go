package model

import "time"

// Slot is a bookable unit of time belonging to one service. The available
// flag is the authoritative claim state: it is flipped only by the
// reservation coordinator inside a store transaction, so at any committed
// point it agrees with the existence of a confirmed booking for the slot.
type Slot struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ServiceID string    `json:"service_id" bson:"service_id"`
	Date      time.Time `json:"slot_date" bson:"slot_date"`
	Time      string    `json:"slot_time" bson:"slot_time"`
	Available bool      `json:"available" bson:"available"`
}

// SlotView joins a slot with its service and, when the slot is taken, the
// confirmed booking holding it. Used by the slot listing endpoints.
type SlotView struct {
	ID              string    `json:"id" bson:"_id"`
	ServiceID       string    `json:"service_id" bson:"service_id"`
	Date            time.Time `json:"slot_date" bson:"slot_date"`
	Time            string    `json:"slot_time" bson:"slot_time"`
	Available       bool      `json:"available" bson:"available"`
	ServiceName     string    `json:"service_name" bson:"service_name"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`
	Price           float64   `json:"price" bson:"price"`
	CustomerName    string    `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty" bson:"customer_email,omitempty"`
	BookingStatus   string    `json:"booking_status,omitempty" bson:"booking_status,omitempty"`
}
