package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"chat-relay/internal/domain"
)

const (
	pkPrefixExchange = "EXCH#"
	skMeta           = "META#"
	ttlDuration      = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client writes exchange audit records to a DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func exchangePK(exchangeID string) string {
	return pkPrefixExchange + exchangeID
}

// NewExchangeRecord returns a record with keys, timestamp and TTL filled in.
// The caller sets the counters and outcome.
func (c *Client) NewExchangeRecord(correlationID, user string) domain.ExchangeRecord {
	now := c.now().UTC()
	id := newExchangeID()
	return domain.ExchangeRecord{
		PK:            exchangePK(id),
		SK:            skMeta,
		ExchangeID:    id,
		CorrelationID: correlationID,
		User:          user,
		CreatedAt:     now.Format(time.RFC3339Nano),
		TTL:           now.Add(ttlDuration).Unix(),
	}
}

// RecordExchange persists rec. Records are write-once.
func (c *Client) RecordExchange(ctx context.Context, rec domain.ExchangeRecord) error {
	if rec.PK == "" || rec.SK == "" {
		return errors.New("repository: RecordExchange: PK and SK are required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

func exchangeItem(rec domain.ExchangeRecord) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":            &types.AttributeValueMemberS{Value: rec.PK},
		"SK":            &types.AttributeValueMemberS{Value: rec.SK},
		"exchangeId":    &types.AttributeValueMemberS{Value: rec.ExchangeID},
		"correlationId": &types.AttributeValueMemberS{Value: rec.CorrelationID},
		"historyTurns":  numAttr(int64(rec.HistoryTurns)),
		"promptChars":   numAttr(int64(rec.PromptChars)),
		"replyChars":    numAttr(int64(rec.ReplyChars)),
		"latencyMs":     numAttr(rec.LatencyMillis),
		"outcome":       &types.AttributeValueMemberS{Value: rec.Outcome},
		"createdAt":     &types.AttributeValueMemberS{Value: rec.CreatedAt},
		"ttl":           numAttr(rec.TTL),
	}
	// anonymous callers have no user attribute
	if rec.User != "" {
		item["user"] = &types.AttributeValueMemberS{Value: rec.User}
	}
	return item
}

func numAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

var newExchangeID = func() string {
	return uuid.NewString()
}
