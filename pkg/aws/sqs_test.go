package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSQS struct {
	messages   []types.Message
	deleted    []string
	receiveErr error
	receives   int
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receives++
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, sdkaws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSConsumer_PollOnceDeletesOnlyHandledMessages(t *testing.T) {
	fake := &fakeSQS{messages: []types.Message{
		{MessageId: sdkaws.String("1"), ReceiptHandle: sdkaws.String("rh-1"), Body: sdkaws.String("ok")},
		{MessageId: sdkaws.String("2"), ReceiptHandle: sdkaws.String("rh-2"), Body: sdkaws.String("fail")},
		{MessageId: sdkaws.String("3"), ReceiptHandle: sdkaws.String("rh-3")},
	}}
	consumer := NewSQSConsumerWithClient(fake, "queue", zap.NewNop())

	var seen []string
	handled, err := consumer.PollOnce(context.Background(), func(_ context.Context, body string) error {
		seen = append(seen, body)
		if body == "fail" {
			return errors.New("cannot handle")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	assert.Equal(t, []string{"ok", "fail"}, seen)
	assert.Equal(t, []string{"rh-1"}, fake.deleted)
}

func TestSQSConsumer_StartPollingBacksOffAfterReceiveFailure(t *testing.T) {
	fake := &fakeSQS{receiveErr: errors.New("AWS.SimpleQueueService.NonExistentQueue")}
	consumer := NewSQSConsumerWithClient(fake, "queue", zap.NewNop())
	consumer.retryDelay = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := consumer.StartPolling(ctx, func(context.Context, string) error { return nil })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, fake.receives, 2)
	assert.LessOrEqual(t, fake.receives, 4)
}
