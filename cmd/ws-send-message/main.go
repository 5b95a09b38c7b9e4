// Package main implements the WebSocket fan-out Lambda. Document
// mutation events published to EventBridge land here and are forwarded
// to every editor client subscribed to that document.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Global AWS clients survive warm invocations
var (
	dynamoClient *dynamodb.Client
	apiGwClient  *apigatewaymanagementapi.Client
)

// mutationDetail is the EventBridge payload produced by the editor.
// The aggregate id is the document id.
type mutationDetail struct {
	EventType   string `json:"event_type"`
	AggregateID string `json:"aggregate_id"`
	Version     int    `json:"version"`
}

// clientMessage is the frame forwarded to connected editors
type clientMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
	Version    int    `json:"version"`
	Timestamp  int64  `json:"timestamp"`
}

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)

	if endpoint := os.Getenv("WEBSOCKET_ENDPOINT"); endpoint != "" {
		apiGwClient = apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
}

func connectionsTable() string {
	if table := os.Getenv("CONNECTIONS_TABLE"); table != "" {
		return table
	}
	return "mindmap-connections"
}

// connectionsForDocument returns the connection ids subscribed to one
// document. Connection records are written by the ws-connect handler as
// PK = DOC#{documentID}, SK = CONN#{connectionID}.
func connectionsForDocument(ctx context.Context, documentID string) ([]string, error) {
	result, err := dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(connectionsTable()),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", documentID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	var connectionIDs []string
	for _, item := range result.Items {
		if connID, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			connectionIDs = append(connectionIDs, connID.Value)
		}
	}
	return connectionIDs, nil
}

// dropConnection removes a stale connection record
func dropConnection(ctx context.Context, documentID, connectionID string) {
	_, err := dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(connectionsTable()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", documentID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
		},
	})
	if err != nil {
		log.Printf("failed to delete stale connection %s: %v", connectionID, err)
	}
}

// Handler fans one mutation event out to the document's subscribers.
// Gone connections are pruned as a side effect.
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	if apiGwClient == nil {
		return errors.New("WEBSOCKET_ENDPOINT is not configured")
	}

	var detail mutationDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to decode event detail: %w", err)
	}
	if detail.AggregateID == "" {
		log.Printf("event %s has no document, skipping", detail.EventType)
		return nil
	}

	connectionIDs, err := connectionsForDocument(ctx, detail.AggregateID)
	if err != nil {
		return err
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(clientMessage{
		Type:       detail.EventType,
		DocumentID: detail.AggregateID,
		Version:    detail.Version,
		Timestamp:  time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode client message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err != nil {
			var gone *apigwtypes.GoneException
			if errors.As(err, &gone) {
				dropConnection(ctx, detail.AggregateID, connectionID)
				continue
			}
			log.Printf("failed to post to connection %s: %v", connectionID, err)
		}
	}

	return nil
}

func main() {
	lambda.Start(Handler)
}
