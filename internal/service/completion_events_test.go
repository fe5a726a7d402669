package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestEventPublisherFansOutToRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer redisClient.Close()

	ctx := context.Background()
	pubsub := redisClient.Subscribe(ctx, "lumen:progress:completions")
	defer pubsub.Close()

	_, err = pubsub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewEventPublisher(redisClient, nil, "lumen:progress", zerolog.Nop())

	require.NoError(t, publisher.Publish(ctx, CompletionEvent{
		Action:    EventCourseCompleted,
		StudentID: 1,
		CourseID:  10,
	}))

	select {
	case msg := <-pubsub.Channel():
		var event CompletionEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, EventCourseCompleted, event.Action)
		require.Equal(t, uint(1), event.StudentID)
		require.Equal(t, uint(10), event.CourseID)
		require.NotEmpty(t, event.Source)
		require.False(t, event.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}
}

func TestEventPublisherNilBrokersAreNoops(t *testing.T) {
	publisher := NewEventPublisher(nil, nil, "", zerolog.Nop())

	require.NoError(t, publisher.Publish(context.Background(), CompletionEvent{
		Action:    EventCertificateIssued,
		StudentID: 2,
		CourseID:  20,
	}))
}
