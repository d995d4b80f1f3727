package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

type sliceReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
	closed bool
}

func (r *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *sliceReader) Close() error {
	r.closed = true
	return nil
}

func TestSendIndexTask(t *testing.T) {
	w := &recordingWriter{}
	SetProducer(w)
	t.Cleanup(func() { SetProducer(nil) })

	err := SendIndexTask(context.Background(), "comment-index", &IndexTask{CommentID: 42, Action: ActionIndex})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "comment-index", w.msgs[0].Topic)
	assert.Equal(t, "comment-42", string(w.msgs[0].Key))

	var task IndexTask
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &task))
	assert.EqualValues(t, 42, task.CommentID)
	assert.Equal(t, ActionIndex, task.Action)
}

func TestSendIndexTask_WithoutProducer(t *testing.T) {
	SetProducer(nil)
	err := SendIndexTask(context.Background(), "t", &IndexTask{CommentID: 1})
	assert.ErrorIs(t, err, ErrProducerNotInitialized)
}

func TestSendIndexTask_WriteError(t *testing.T) {
	SetProducer(&recordingWriter{err: errors.New("broker down")})
	t.Cleanup(func() { SetProducer(nil) })

	err := SendIndexTask(context.Background(), "t", &IndexTask{CommentID: 1})
	assert.Error(t, err)
}

func TestConsume_SkipsMalformedAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &sliceReader{
		cancel: cancel,
		msgs: []kafka.Message{
			{Value: []byte("not json")},
			{Value: []byte(`{"comment_id":5,"action":"index"}`)},
			{Value: []byte(`{"comment_id":6,"action":"delete"}`)},
		},
	}

	var got []int64
	Consume(ctx, reader, func(_ context.Context, task *IndexTask) error {
		got = append(got, task.CommentID)
		if task.CommentID == 5 {
			return errors.New("handler failure is logged only")
		}
		return nil
	})

	assert.Equal(t, []int64{5, 6}, got)
	assert.True(t, reader.closed)
}
