package stream_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherly-go/internal/config"
	"gatherly-go/internal/journal"
	"gatherly-go/internal/stream"
)

func mockConfig() config.StreamConfig {
	return config.StreamConfig{
		Enabled:  true,
		MockMode: true,
		Topics: config.TopicConfig{
			RegistrationPending:   "registration-pending",
			RegistrationCompleted: "registration-completed",
			RegistrationFailed:    "registration-failed",
		},
	}
}

func TestMockModePublishesWithoutBroker(t *testing.T) {
	p := stream.NewProducer(mockConfig(), nil)
	defer p.Close()

	attempt := journal.Attempt{
		AttemptID:      "att_1",
		EventID:        "evt_1",
		RegistrationID: "reg_1",
		OrderID:        "order_1",
	}

	ctx := context.Background()
	require.NoError(t, p.PublishPending(ctx, attempt))
	require.NoError(t, p.PublishCompleted(ctx, attempt))
	require.NoError(t, p.PublishFailed(ctx, attempt, "confirmation timed out"))
}

func TestDisabledStreamDropsMessages(t *testing.T) {
	p := stream.NewProducer(config.StreamConfig{Enabled: false}, nil)
	defer p.Close()

	assert.NoError(t, p.PublishCompleted(context.Background(), journal.Attempt{AttemptID: "att_1"}))
}

func TestCloseWithoutWriter(t *testing.T) {
	p := stream.NewProducer(config.StreamConfig{}, nil)
	assert.NoError(t, p.Close())
}
