package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestAMQPSenderPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	sender := &AMQPSender{channel: ch, queue: queueName(AMQPConfig{})}

	if err := sender.Send(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != "" || got.key != DefaultQueue {
		t.Fatalf("expected default exchange routed to %s, got %q/%q", DefaultQueue, got.exchange, got.key)
	}
	if got.msg.ContentType != "application/json" || got.msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing %+v", got.msg)
	}

	var body map[string]string
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["to_email"] != "results@example.com" || body["score"] != "3/5" || body["percentage"] != "60%" {
		t.Fatalf("unexpected body %s", got.msg.Body)
	}
}

func TestAMQPSenderWrapsPublishFailure(t *testing.T) {
	sender := &AMQPSender{channel: &fakeChannel{err: errors.New("channel closed")}, queue: "results"}
	err := sender.Send(context.Background(), sampleNotification())
	if err == nil || !strings.Contains(err.Error(), "channel closed") {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestAMQPQueueName(t *testing.T) {
	if got := queueName(AMQPConfig{Queue: "custom"}); got != "custom" {
		t.Fatalf("expected configured queue, got %s", got)
	}
	if got := queueName(AMQPConfig{}); got != DefaultQueue {
		t.Fatalf("expected default queue, got %s", got)
	}
}

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []publishCall
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error { return nil }

