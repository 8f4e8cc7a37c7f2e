package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the part of *dynamodb.Client the room storage uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type DynamoRoomStorage struct {
	Client    DynamoAPI
	TableName string
}

// Put writes the room unless the table already holds the same or a newer version.
func (s *DynamoRoomStorage) Put(ctx context.Context, room *RoomRecord) error {
	item, err := attributevalue.MarshalMap(room)
	if err != nil {
		logging.Log.Errorf("ROOM: failed to marshal room %s: %v", room.ID, err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR Version < :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(room.Version, 10)},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("ROOM: skipped stale write of room %s version %d", room.ID, room.Version)
			return ErrStaleRecord
		}
		logging.Log.Errorf("ROOM: failed to put room %s: %v", room.ID, err)
		return err
	}
	return nil
}

func (s *DynamoRoomStorage) GetAll(ctx context.Context) ([]*RoomRecord, error) {
	var lastEvaluatedKey map[string]types.AttributeValue
	rooms := make([]*RoomRecord, 0)

	for {
		out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         &s.TableName,
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("ROOM: scan failed: %v", err)
			return nil, err
		}

		var page []*RoomRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("ROOM: failed to unmarshal room list: %v", err)
			return nil, err
		}
		rooms = append(rooms, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
	return rooms, nil
}

func (s *DynamoRoomStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ROOM: failed to marshal delete key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ROOM: failed to delete room %s: %v", id, err)
		return err
	}
	logging.Log.Infof("ROOM: deleted room %s", id)
	return nil
}
