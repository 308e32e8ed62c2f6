package model

// Service is a catalog entry describing a bookable offering. Services are
// written by an out-of-scope admin path; the booking core only reads them.
type Service struct {
	ID              string  `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string  `json:"name" bson:"name"`
	Description     string  `json:"description,omitempty" bson:"description,omitempty"`
	DurationMinutes int     `json:"duration_minutes" bson:"duration_minutes"`
	Price           float64 `json:"price" bson:"price"`
}
