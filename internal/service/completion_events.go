package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CompletionEvent is the payload fanned out when an enrollment completes or a
// certificate is issued.
type CompletionEvent struct {
	Source     string    `json:"source"`
	Action     string    `json:"action"`
	StudentID  uint      `json:"student_id"`
	CourseID   uint      `json:"course_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event actions published by the engine.
const (
	EventCourseCompleted   = "course.completed"
	EventCertificateIssued = "certificate.issued"
)

// EventPublisher fans engine events out to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event CompletionEvent) error
}

type brokerEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
	now          func() time.Time
}

// NewEventPublisher builds a publisher writing to a Redis pub/sub channel and
// a NATS subject derived from channelBase. Either broker may be nil; the
// publisher skips whatever is not configured.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":completions"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".completions"
	}

	return &brokerEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
		now:          time.Now,
	}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event CompletionEvent) error {
	event.Source = p.nodeID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}
