package report

import (
	"context"
	"errors"
	"testing"

	"token-guard/internal/server/model"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMQ struct {
	calls int
	msgs  []kafka.Message
	err   error
}

func (f *fakeMQ) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func TestKafkaReportWriter(t *testing.T) {
	mq := &fakeMQ{}
	w := NewKafkaReportWriter(mq, zap.NewNop(), "token_guard.report")

	records := []model.ReportRecord{
		{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Score: 80, Rating: "Safe"},
		{Mint: "So11111111111111111111111111111111111111112", Score: 40, Rating: "Risky"},
	}
	require.NoError(t, w.BWrite(context.Background(), records))
	require.Len(t, mq.msgs, 2)

	assert.Equal(t, "token_guard.report", mq.msgs[0].Topic)
	assert.Equal(t, records[0].Mint, string(mq.msgs[0].Key))

	var got model.ReportRecord
	require.NoError(t, sonic.Unmarshal(mq.msgs[1].Value, &got))
	assert.Equal(t, records[1].Mint, got.Mint)
	assert.Equal(t, 40, got.Score)
}

func TestKafkaReportWriter_Retries(t *testing.T) {
	mq := &fakeMQ{err: errors.New("broker unavailable")}
	w := NewKafkaReportWriter(mq, zap.NewNop(), "t")

	err := w.BWrite(context.Background(), []model.ReportRecord{{Mint: "m"}})
	assert.Error(t, err)
	assert.Equal(t, RETRY_COUNT, mq.calls)

	require.NoError(t, w.BWrite(context.Background(), nil))
	assert.Equal(t, RETRY_COUNT, mq.calls)
}
