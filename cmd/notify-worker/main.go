package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/healthunity/scheduling-service/internal/config"
	"github.com/healthunity/scheduling-service/internal/logger"
	"github.com/healthunity/scheduling-service/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("notify-worker starting up",
		zap.String("env", cfg.Env),
		zap.String("queue", cfg.NotifyQueue))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := notification.Connect(cfg.AMQPURL)
	if err != nil {
		zlog.Fatal("rabbitmq connection error", zap.Error(err))
	}
	defer func() { _ = conn.Close() }()

	channel, err := conn.Channel()
	if err != nil {
		zlog.Fatal("rabbitmq channel error", zap.Error(err))
	}
	defer func() { _ = channel.Close() }()

	if _, err := channel.QueueDeclare(cfg.NotifyQueue, true, false, false, false, nil); err != nil {
		zlog.Fatal("queue declare error", zap.Error(err))
	}

	if err := channel.Qos(8, 0, false); err != nil {
		zlog.Fatal("qos error", zap.Error(err))
	}

	deliveries, err := channel.Consume(cfg.NotifyQueue, "notify-worker", false, false, false, false, nil)
	if err != nil {
		zlog.Fatal("consume error", zap.Error(err))
	}

	sender := notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)

	zlog.Info("consuming booking confirmations")

	for {
		select {
		case <-rootCtx.Done():
			zlog.Info("shutdown signal received, stopping notify-worker")
			return
		case d, ok := <-deliveries:
			if !ok {
				zlog.Error("delivery channel closed, stopping notify-worker")
				return
			}
			handleDelivery(zlog, sender, d)
		}
	}
}

func handleDelivery(zlog *zap.Logger, sender *notification.SMTPSender, d amqp091.Delivery) {
	var msg notification.BookingConfirmation
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		zlog.Error("malformed confirmation payload, discarding", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	subject, body := notification.RenderConfirmationEmail(msg)
	if err := sender.Send(msg.PatientEmail, subject, body); err != nil {
		zlog.Warn("email delivery failed, requeueing",
			zap.String("to", msg.PatientEmail),
			zap.Error(err))
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	zlog.Info("confirmation email sent",
		zap.String("to", msg.PatientEmail),
		zap.String("date", msg.Date),
		zap.String("time", msg.Time))
	_ = d.Ack(false)
}
