package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

const (
	TopicUsersCreated = "users.created"
	TopicPostsCreated = "posts.created"
)

type Writer interface {
	WriteJSON(ctx context.Context, key string, v any) error
	Close() error
}

// publishTimeout bounds one synchronous write.
const publishTimeout = 2 * time.Second

type writer struct {
	w       *kgo.Writer
	timeout time.Duration
}

// NewWriter creates a Kafka writer for one topic.
// Env overrides (optional):
//   - KAFKA_REQUIRED_ACKS: "none" | "one" | "all" (default: "one")
//   - KAFKA_ASYNC: "true" | "false" (default: "false")
//   - KAFKA_PUBLISH_TIMEOUT: Go duration (default: 2s)
func NewWriter(bootstrapServers, topic string) Writer {
	var addrs []string
	for _, a := range strings.Split(bootstrapServers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}

	var requiredAcks kgo.RequiredAcks
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KAFKA_REQUIRED_ACKS"))) {
	case "none":
		requiredAcks = kgo.RequireNone
	case "all":
		requiredAcks = kgo.RequireAll
	default:
		requiredAcks = kgo.RequireOne
	}

	timeout := publishTimeout
	if d, err := time.ParseDuration(os.Getenv("KAFKA_PUBLISH_TIMEOUT")); err == nil && d > 0 {
		timeout = d
	}

	return &writer{timeout: timeout, w: &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           requiredAcks,
		Async:                  strings.EqualFold(os.Getenv("KAFKA_ASYNC"), "true"),
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (wr *writer) WriteJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// detached from the request, bounded by the writer's own timeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wr.timeout)
	defer cancel()
	return wr.w.WriteMessages(ctx, kgo.Message{Key: []byte(key), Value: b, Time: time.Now()})
}

func (wr *writer) Close() error { return wr.w.Close() }

// Topic prefixes name with prefix, if any.
func Topic(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, ".") + "." + name
}
