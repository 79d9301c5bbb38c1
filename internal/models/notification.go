package models

import "time"

// PurchaseNotification is the event published to Kafka after a
// successful purchase. Email/SMS dispatchers consume it downstream;
// this service never delivers messages itself.
type PurchaseNotification struct {
	PurchaseID    string    `json:"purchase_id"`
	OfferingID    string    `json:"offering_id"`
	OfferingTitle string    `json:"offering_title"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Quantity      int       `json:"quantity"`
	TotalAmount   float64   `json:"total_amount"`
	TicketNumbers []string  `json:"ticket_numbers"`
	AccessURL     string    `json:"access_url"`
	CreatedAt     time.Time `json:"created_at"`
}
