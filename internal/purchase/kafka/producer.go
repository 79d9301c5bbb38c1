package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-boxoffice/internal/models"
)

// Producer signals downstream collaborators after a purchase commits:
// the notifications topic feeds the email/SMS dispatchers, the
// completed topic feeds the analytics pipeline. Delivery retries and
// fallbacks belong to those consumers.
type Producer struct {
	Notifications *kafka.Writer
	Completed     *kafka.Writer
}

func NewProducer(brokers []string, notificationsTopic, completedTopic string) *Producer {
	return &Producer{
		Notifications: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   notificationsTopic,
		}),
		Completed: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   completedTopic,
		}),
	}
}

// PublishNotification streams the email/SMS trigger for a purchase.
func (p *Producer) PublishNotification(notification models.PurchaseNotification) error {
	msgBytes, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [purchase_notification]: %s\n", notification.PurchaseID)

	return p.Notifications.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(notification.PurchaseID),
			Value: msgBytes,
		},
	)
}

// PublishPurchaseCompleted streams the purchase record itself.
func (p *Producer) PublishPurchaseCompleted(purchase models.Purchase) error {
	msgBytes, err := json.Marshal(purchase)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [purchase_completed]: %s\n", purchase.ID)

	return p.Completed.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(purchase.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if err := p.Notifications.Close(); err != nil {
		return err
	}
	return p.Completed.Close()
}
