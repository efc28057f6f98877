package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"texnomart/notification-worker-service/internal/app/notification/config"
)

func TestSMTPMailer_CancelledContext(t *testing.T) {
	// Arrange
	mailer := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@texnomart.local"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := mailer.Send(ctx, "operator@texnomart.local", "Product deleted", "Product with ID 1 has been deleted.")

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPMailer_UnreachableServer(t *testing.T) {
	// Arrange
	mailer := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@texnomart.local"})

	// Act
	err := mailer.Send(context.Background(), "operator@texnomart.local", "Product deleted", "body")

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
