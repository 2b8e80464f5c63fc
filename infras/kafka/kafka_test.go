package kafka_test

import (
	"homestay/infras/kafka"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ToKafkaMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  kafka.Message
		expected string
	}{
		{
			name:     "struct value is encoded as JSON",
			message:  kafka.Message{Key: "bk-1", Value: map[string]any{"status": "PAID"}},
			expected: `{"status":"PAID"}`,
		},
		{
			name:     "raw bytes are kept",
			message:  kafka.Message{Key: "bk-1", Value: []byte(`{"raw":true}`)},
			expected: `{"raw":true}`,
		},
		{
			name:     "string is kept",
			message:  kafka.Message{Key: "bk-1", Value: "plain"},
			expected: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := tt.message.ToKafkaMessage("booking.events")
			require.NoError(t, err)

			assert.Equal(t, "booking.events", msg.Topic)
			assert.Equal(t, []byte(tt.message.Key), msg.Key)
			assert.Equal(t, tt.expected, string(msg.Value))
		})
	}
}

func TestMessage_ToKafkaMessage_Headers(t *testing.T) {
	message := kafka.Message{Key: "k", Value: "v", Headers: map[string]string{"event_type": "notification"}}

	msg, err := message.ToKafkaMessage("topic")
	require.NoError(t, err)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("notification"), msg.Headers[0].Value)
}

func TestMessage_ToKafkaMessage_InvalidValue(t *testing.T) {
	message := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := message.ToKafkaMessage("topic")
	assert.Error(t, err)
}
