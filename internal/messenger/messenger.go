package messenger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"
)

var (
	ErrMissingQueueUrl = errors.New("missing queue url")
)

const (
	eventTypeAttribute = "EventType"
	waitTimeSeconds    = 20
	maxMessages        = 10
)

// MessageService publishes committed marketplace events to an SQS queue and reads them back.
type MessageService interface {
	SendMessage(ctx context.Context, e entity.Event) error
	PollMessages(ctx context.Context, messages chan<- *sqs.Message) error
	DeleteMessage(ctx context.Context, message *sqs.Message) error
}

type Config struct {
	AccessKey string
	SecretKey string
	Token     string
	Region    string
	QueueUrl  string
}

type messenger struct {
	client   sqsiface.SQSAPI
	queueUrl string
}

func NewMessenger(config Config) (MessageService, error) {
	if config.QueueUrl == "" {
		return nil, ErrMissingQueueUrl
	}

	awsConfig := aws.NewConfig().WithRegion(config.Region)
	if config.AccessKey != "" {
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, config.Token))
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	return NewWithClient(sqs.New(sess), config.QueueUrl), nil
}

func NewWithClient(client sqsiface.SQSAPI, queueUrl string) MessageService {
	return &messenger{client: client, queueUrl: queueUrl}
}

func (m *messenger) SendMessage(ctx context.Context, e entity.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	output, err := m.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(m.queueUrl),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			eventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(e.Type)),
			},
		},
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("id", e.ID)).Error("[Queue] Failed to publish message")
		return err
	}

	zap.L().With(zap.String("messageId", aws.StringValue(output.MessageId)), zap.String("type", string(e.Type))).
		Debug("[Queue] Published message")

	return nil
}

// PollMessages long polls the queue into messages until ctx is done.
func (m *messenger) PollMessages(ctx context.Context, messages chan<- *sqs.Message) error {
	defer close(messages)

	for {
		output, err := m.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(m.queueUrl),
			MaxNumberOfMessages:   aws.Int64(maxMessages),
			WaitTimeSeconds:       aws.Int64(waitTimeSeconds),
			MessageAttributeNames: aws.StringSlice([]string{eventTypeAttribute}),
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			zap.L().With(zap.Error(err)).Error("[Queue] Failed to receive messages")
			return err
		}

		for _, message := range output.Messages {
			select {
			case messages <- message:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (m *messenger) DeleteMessage(ctx context.Context, message *sqs.Message) error {
	_, err := m.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(m.queueUrl),
		ReceiptHandle: message.ReceiptHandle,
	})

	return err
}

// DecodeEvent reads the event carried by a received message.
func DecodeEvent(message *sqs.Message) (entity.Event, error) {
	var e entity.Event
	err := json.Unmarshal([]byte(aws.StringValue(message.Body)), &e)
	return e, err
}
