package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := &model.Receipt{ReceiptID: "01A", Wallet: "0xmerchant", BrandKey: "cafe", Status: model.StatusPaid, TotalMinor: 1963, Currency: "USD", TransactionHash: "0xabc"}

	e := NewEvent(ReceiptStatusChanged, r, at)

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, ReceiptStatusChanged, e.Type)
	assert.Equal(t, "01A", e.ReceiptID)
	assert.Equal(t, int64(1963), e.TotalMinor)
	assert.Equal(t, "0xabc", e.TransactionHash)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())
	assert.NotEqual(t, e.ID, NewEvent(ReceiptStatusChanged, r, at).ID)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, zerolog.Nop())

	e := NewEvent(ReceiptCreated, &model.Receipt{ReceiptID: "01A", Wallet: "0xmerchant", Status: model.StatusGenerated}, time.Now())
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("01A"), msg.Key)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, []byte(ReceiptCreated), msg.Headers[0].Value)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, model.StatusGenerated, decoded.Status)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := newKafkaPublisher(&recordingWriter{err: errors.New("broker down")}, zerolog.Nop())

	err := p.Publish(context.Background(), Event{ReceiptID: "01A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
