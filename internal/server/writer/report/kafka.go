package report

import (
	"context"

	"token-guard/internal/server/model"
	"token-guard/internal/server/writer"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter *kafka.Writer 的子集
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaReportWriter 新生成的报告推送到 topic，key 为 mint
type KafkaReportWriter struct {
	mq    MessageWriter
	tl    *zap.Logger
	topic string
}

func NewKafkaReportWriter(mq MessageWriter, tl *zap.Logger, topic string) writer.BatchWriter[model.ReportRecord] {
	return &KafkaReportWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaReportWriter) BWrite(ctx context.Context, records []model.ReportRecord) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		msg, err := w.marshalToMsg(r)
		if err != nil {
			w.tl.Warn("report event encode failed", zap.String("mint", r.Mint), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, mqWriteTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ MQ write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaReportWriter) Close() error {
	return nil
}

func (w *KafkaReportWriter) marshalToMsg(r model.ReportRecord) (kafka.Message, error) {
	data, err := sonic.Marshal(r)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(r.Mint),
		Value: data,
	}, nil
}
