package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Engagement event names carried on the broker. The worker reconciles
// aggregate counters when it sees the like/unlike events.
const (
	ENGAGEMENT_POST_LIKED      = "engagement.post.liked"
	ENGAGEMENT_POST_UNLIKED    = "engagement.post.unliked"
	ENGAGEMENT_COMMENT_CREATED = "engagement.comment.created"
	ENGAGEMENT_POST_DELETED    = "engagement.post.deleted"
)

// PostEvent is the payload for all post-scoped engagement events.
type PostEvent struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id,omitempty"`
}

type KafkaClient struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

func NewKafkaClient(host string, port string, topic string, group string) (*KafkaClient, error) {
	address := fmt.Sprintf("%s:%s", host, port)

	writer := &kafka.Writer{
		Addr:     kafka.TCP(address),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{address},
		Topic:   topic,
		GroupID: group,
	})

	return &KafkaClient{
		writer: writer,
		reader: reader,
	}, nil
}

// WriteEvent publishes a named event. The event name travels as the message
// key so the worker can route without decoding payloads it does not handle.
func (c *KafkaClient) WriteEvent(ctx context.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: data,
	})
}

// ReadMessage blocks until the next event arrives and returns its name and
// raw payload.
func (c *KafkaClient) ReadMessage(ctx context.Context) (string, []byte, error) {
	message, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return "", nil, err
	}

	return string(message.Key), message.Value, nil
}

func (c *KafkaClient) Close() error {
	if err := c.writer.Close(); err != nil {
		return err
	}
	return c.reader.Close()
}
