package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/aq2208/tableorder/internal/logging"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (f *fakeSession) Context() context.Context { return context.Background() }
func (f *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	f.marked = append(f.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (f *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return f.ch }

func claimOf(values ...string) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for i, v := range values {
		ch <- &sarama.ConsumerMessage{Offset: int64(i), Value: []byte(v)}
	}
	close(ch)
	return &fakeClaim{ch: ch}
}

type fakeCache struct {
	m   map[string]string
	err error
}

func (f *fakeCache) SetStatus(_ context.Context, id, status string) error {
	if f.err != nil {
		return f.err
	}
	f.m[id] = status
	return nil
}

func (f *fakeCache) GetStatus(_ context.Context, id string) (string, bool, error) {
	s, ok := f.m[id]
	return s, ok, nil
}

var _ usecase.OrderStatusCache = (*fakeCache)(nil)

func TestConsumeClaim_CachesStatusAndMarks(t *testing.T) {
	cache := &fakeCache{m: map[string]string{}}
	h := &cgHandler{handle: NewOrderStatusChangedHandler(cache).Handle, logger: logging.New("test")}
	sess := &fakeSession{}

	err := h.ConsumeClaim(sess, claimOf(
		`{"order_uuid":"o-1","payment_status":"PAID"}`,
		`garbage`,
		`{"payment_status":"PAID"}`,
	))
	assert.NoError(t, err)
	assert.Equal(t, "Paid", cache.m["o-1"])
	// poison is marked too
	assert.Equal(t, []int64{0, 1, 2}, sess.marked)
}

func TestConsumeClaim_HandlerErrorLeavesUnmarked(t *testing.T) {
	cache := &fakeCache{m: map[string]string{}, err: errors.New("redis down")}
	h := &cgHandler{handle: NewOrderStatusChangedHandler(cache).Handle, logger: logging.New("test")}
	sess := &fakeSession{}

	assert.NoError(t, h.ConsumeClaim(sess, claimOf(`{"order_uuid":"o-1","payment_status":"FAILED"}`)))
	assert.Empty(t, sess.marked)
}
