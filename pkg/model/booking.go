package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is a customer's claim on a slot. Bookings are never hard-deleted;
// cancellation transitions status and reopens the referenced slot.
type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SlotID        string    `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	CustomerName  string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string    `json:"customer_email" bson:"customer_email" validate:"required,email"`
	CustomerPhone string    `json:"customer_phone,omitempty" bson:"customer_phone,omitempty" validate:"omitempty,e164"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled completed"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the reservation input accepted from the outward-facing
// layer. Name and email are mandatory; phone and notes are optional.
type BookingRequest struct {
	SlotID        string `json:"slot_id" validate:"required,mongodb"`
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone,omitempty" validate:"omitempty,e164"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// BookingView is the denormalized booking + slot + service record used for
// API responses and broadcast payloads.
type BookingView struct {
	ID              string    `json:"id" bson:"_id"`
	SlotID          string    `json:"slot_id" bson:"slot_id"`
	CustomerName    string    `json:"customer_name" bson:"customer_name"`
	CustomerEmail   string    `json:"customer_email" bson:"customer_email"`
	CustomerPhone   string    `json:"customer_phone,omitempty" bson:"customer_phone,omitempty"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Status          string    `json:"status" bson:"status"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	SlotDate        time.Time `json:"slot_date" bson:"slot_date"`
	SlotTime        string    `json:"slot_time" bson:"slot_time"`
	ServiceID       string    `json:"service_id" bson:"service_id"`
	ServiceName     string    `json:"service_name" bson:"service_name"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`
	Price           float64   `json:"price" bson:"price"`
}
