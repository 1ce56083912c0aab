package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
)

const appointmentTopic = "appointment_events"

type KafkaProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewKafkaProducer(logger *logrus.Logger) *KafkaProducer {
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		broker = "localhost:9092"
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      []string{broker},
		Topic:        appointmentTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})
	return &KafkaProducer{writer: writer, logger: logger}
}

func (kp *KafkaProducer) PublishAppointmentEvent(event domain.AppointmentEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.AppointmentID), 10)),
		Value: message,
	}
	if err := kp.writer.WriteMessages(context.Background(), msg); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	kp.logger.WithFields(logrus.Fields{
		"appointment_id": event.AppointmentID,
		"status":         event.Status,
	}).Info("Appointment event published")
	return nil
}

func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
