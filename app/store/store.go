package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var _ SubscriptionStore = (*Store)(nil)

// Store persists feed subscriptions and their publish cursors in a DynamoDB
// table keyed by feed URL.
type Store struct {
	client DynamoAPI
	table  string
}

func New(client DynamoAPI, table string) *Store {
	return &Store{client: client, table: table}
}

// ListSubscriptions scans the whole table. A record without a url attribute is
// malformed and fails the call; an absent cursor is a feed that has never
// posted.
func (s *Store) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subscriptions []Subscription
	var startKey map[string]types.AttributeValue

	for {
		output, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			Select:            types.SelectAllAttributes,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriptions table: %w", err)
		}

		for _, item := range output.Items {
			url, err := stringAttribute(item, "url")
			if err != nil {
				return nil, fmt.Errorf("malformed subscription record: %w", err)
			}

			subscription := Subscription{URL: url}
			if id, ok := optionalStringAttribute(item, "last_posted_entry_id"); ok {
				subscription.LastPostedEntryID = &id
			}
			subscriptions = append(subscriptions, subscription)
		}

		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		startKey = output.LastEvaluatedKey
	}

	return subscriptions, nil
}

// AdvanceCursor records entryID as the most recently published entry for the
// feed. Plain last-writer-wins update; runs are assumed non-overlapping.
func (s *Store) AdvanceCursor(ctx context.Context, feedURL string, entryID string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"url": &types.AttributeValueMemberS{Value: feedURL},
		},
		UpdateExpression: aws.String("SET last_posted_entry_id = :last_posted_entry_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":last_posted_entry_id": &types.AttributeValueMemberS{Value: entryID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to advance cursor for %s: %w", feedURL, err)
	}

	return nil
}

func stringAttribute(item map[string]types.AttributeValue, key string) (string, error) {
	value, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := value.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}

func optionalStringAttribute(item map[string]types.AttributeValue, key string) (string, bool) {
	value, ok := item[key]
	if !ok {
		return "", false
	}
	s, ok := value.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}
