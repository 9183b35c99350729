package changefeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"

	"github.com/huynhanx03/go-crud/pkg/crud/crudtest"
	"github.com/huynhanx03/go-crud/pkg/mq/batcher"
	"github.com/huynhanx03/go-crud/pkg/mq/kafka"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return epoch }
func (fixedClock) Stop()          {}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *recordingPublisher) events(t *testing.T) []Event {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Value.(Event))
	}
	return out
}

func newWidgetFeed(pub Publisher) (*Service[crudtest.Widget, *crudtest.Widget, int64], *crudtest.Service[crudtest.Widget, *crudtest.Widget, int64], *Feed) {
	backing := crudtest.NewWidgets()
	feed := NewFeed(pub, "widgets.changes", batcher.Config{Size: 100}, fixedClock{}, nil)
	return Wrap[crudtest.Widget, *crudtest.Widget](backing, feed, "widgets"), backing, feed
}

// =============================================================================
// Service
// =============================================================================

func TestService_EmitsOnWrites(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _, feed := newWidgetFeed(pub)

	created, err := svc.Create(ctx, &crudtest.Widget{Name: "gear"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.Name = "cog"
	if _, err := svc.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.Read(ctx, created.ID); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	feed.Close()

	events := pub.events(t)
	wantOps := []Op{OpCreate, OpUpdate, OpDelete}
	if len(events) != len(wantOps) {
		t.Fatalf("events = %d, want %d", len(events), len(wantOps))
	}
	for i, ev := range events {
		if ev.Op != wantOps[i] || ev.ID != "1" || ev.Resource != "widgets" || !ev.At.Equal(epoch) {
			t.Errorf("event[%d] = %+v", i, ev)
		}
	}

	var snap crudtest.Widget
	if err := json.Unmarshal(events[0].Entity, &snap); err != nil || snap.Name != "gear" {
		t.Errorf("create snapshot = %+v, %v", snap, err)
	}
	if events[2].Entity != nil {
		t.Errorf("delete carries entity %s", events[2].Entity)
	}

	pub.mu.Lock()
	first := pub.msgs[0]
	pub.mu.Unlock()
	if first.Topic != "widgets.changes" || first.Key != "widgets:1" || first.Headers["op"] != "create" {
		t.Errorf("message = %+v", first)
	}
}

func TestService_NoEventWithoutChange(t *testing.T) {
	tests := []struct {
		name  string
		fault error
		call  func(context.Context, *Service[crudtest.Widget, *crudtest.Widget, int64]) error
	}{
		{
			name: "update_missing",
			call: func(ctx context.Context, s *Service[crudtest.Widget, *crudtest.Widget, int64]) error {
				_, err := s.Update(ctx, &crudtest.Widget{ID: 99, Name: "x"})
				return err
			},
		},
		{
			name:  "create_fault",
			fault: errors.New("boom"),
			call: func(ctx context.Context, s *Service[crudtest.Widget, *crudtest.Widget, int64]) error {
				_, _ = s.Create(ctx, &crudtest.Widget{Name: "x"})
				return nil
			},
		},
		{
			name:  "delete_fault",
			fault: errors.New("boom"),
			call: func(ctx context.Context, s *Service[crudtest.Widget, *crudtest.Widget, int64]) error {
				_ = s.Delete(ctx, 1)
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc, backing, feed := newWidgetFeed(pub)
			backing.Fault = tt.fault

			if err := tt.call(context.Background(), svc); err != nil {
				t.Fatalf("call: %v", err)
			}
			feed.Close()

			if n := len(pub.events(t)); n != 0 {
				t.Errorf("events = %d, want 0", n)
			}
		})
	}
}

// =============================================================================
// Feed
// =============================================================================

func TestFeed_PublishFailureDropsBatch(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	feed := NewFeed(pub, "t", batcher.Config{Size: 1}, fixedClock{}, nil)

	feed.Emit("widgets", OpDelete, "1", nil)
	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()
	feed.Emit("widgets", OpDelete, "2", nil)
	feed.Close()

	events := pub.events(t)
	if len(events) != 1 || events[0].ID != "2" {
		t.Errorf("events = %+v", events)
	}
}

func TestFeed_EmitAfterClose(t *testing.T) {
	pub := &recordingPublisher{}
	feed := NewFeed(pub, "t", batcher.Config{Size: 10}, fixedClock{}, nil)
	feed.Close()

	feed.Emit("widgets", OpCreate, "1", map[string]string{"a": "b"})
	feed.Flush()
	if n := len(pub.events(t)); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}

func TestFeed_ThroughSaramaProducer(t *testing.T) {
	mock := mocks.NewSyncProducer(t, kafka.NewConfig(settings.Kafka{}))
	for i := 0; i < 2; i++ {
		mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
			raw, err := m.Value.Encode()
			if err != nil {
				return err
			}
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				return err
			}
			if ev.Resource != "widgets" || ev.Op != OpCreate {
				return errors.New("unexpected event")
			}
			return nil
		})
	}

	producer := kafka.NewProducerFrom(mock, nil)
	feed := NewFeed(producer, "widgets.changes", batcher.Config{Size: 2}, fixedClock{}, nil)
	feed.Emit("widgets", OpCreate, "1", crudtest.Widget{ID: 1, Name: "a"})
	feed.Emit("widgets", OpCreate, "2", crudtest.Widget{ID: 2, Name: "b"})
	feed.Close()

	if err := producer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
