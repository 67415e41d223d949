package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	historyPK  = "HISTORY"
	counterSK  = "COUNTER"
	slotPrefix = "SLOT#"
)

// DynamoAPI is the subset of the DynamoDB client the store calls.
type DynamoAPI interface {
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// historyItem is the DynamoDB row for one ring slot.
type historyItem struct {
	PK  string `dynamodbav:"PK"`
	SK  string `dynamodbav:"SK"`
	Seq int64  `dynamodbav:"seq"`
	Record
}

// Dynamo stores records in a ring of capacity slots under a single
// partition. An atomic counter picks the slot, so concurrent writers never
// share one.
type Dynamo struct {
	client    DynamoAPI
	tableName string
	capacity  int
}

// NewDynamo creates a DynamoDB-backed store.
func NewDynamo(client DynamoAPI, tableName string, capacity int) *Dynamo {
	return &Dynamo{client: client, tableName: tableName, capacity: capacity}
}

func (s *Dynamo) Add(ctx context.Context, r Record) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(historyItem{
		PK:     historyPK,
		SK:     slotKey(seq, s.capacity),
		Seq:    seq,
		Record: r,
	})
	if err != nil {
		return fmt.Errorf("marshal history item: %w", err)
	}

	// A slower writer holding an older seq must not clobber a newer record.
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(seq) OR seq < :seq"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seq": &types.AttributeValueMemberN{Value: strconv.FormatInt(seq, 10)},
		},
	})
	var stale *types.ConditionalCheckFailedException
	if errors.As(err, &stale) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("put history item: %w", err)
	}
	return nil
}

func (s *Dynamo) nextSeq(ctx context.Context) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: historyPK},
			"SK": &types.AttributeValueMemberS{Value: counterSK},
		},
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment history counter: %w", err)
	}
	n, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("history counter: missing seq attribute")
	}
	seq, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse history counter: %w", err)
	}
	return seq, nil
}

func (s *Dynamo) Recent(ctx context.Context, limit int) ([]Record, error) {
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :slot)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: historyPK},
			":slot": &types.AttributeValueMemberS{Value: slotPrefix},
		},
	})

	var items []historyItem
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query history: %w", err)
		}
		var batch []historyItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
		items = append(items, batch...)
	}

	return newestFirst(items, normalizeLimit(limit)), nil
}

func (s *Dynamo) Close() error { return nil }

// slotKey maps a 1-based sequence number onto its ring slot.
func slotKey(seq int64, capacity int) string {
	return fmt.Sprintf("%s%05d", slotPrefix, (seq-1)%int64(capacity))
}

func newestFirst(items []historyItem, limit int) []Record {
	sort.Slice(items, func(i, j int) bool { return items[i].Seq > items[j].Seq })
	out := make([]Record, 0, min(limit, len(items)))
	for _, it := range items {
		if len(out) == limit {
			break
		}
		out = append(out, it.Record)
	}
	return out
}
