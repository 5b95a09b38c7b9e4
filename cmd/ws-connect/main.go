// Package main implements the WebSocket connect/disconnect Lambda.
// Clients connect with a document id and a token; the connection record
// is what the fan-out handler queries when a mutation event arrives.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang-jwt/jwt/v5"
)

// Global DynamoDB client survives warm invocations
var dynamoClient *dynamodb.Client

// connectionTTL bounds how long a record outlives a dead connection
const connectionTTL = 24 * time.Hour

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)
}

func connectionsTable() string {
	if table := os.Getenv("CONNECTIONS_TABLE"); table != "" {
		return table
	}
	return "mindmap-connections"
}

// validateToken verifies the HS256 token and returns the subject
func validateToken(tokenString string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// storeConnection records the subscription of one connection to one document
func storeConnection(ctx context.Context, documentID, connectionID, userID string) error {
	now := time.Now()
	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", documentID)},
		"SK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
		"ConnectionID": &types.AttributeValueMemberS{Value: connectionID},
		"UserID":       &types.AttributeValueMemberS{Value: userID},
		"DocumentID":   &types.AttributeValueMemberS{Value: documentID},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(connectionTTL).Unix())},
	}

	_, err := dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(connectionsTable()),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}
	return nil
}

// removeConnection deletes the subscription record on disconnect
func removeConnection(ctx context.Context, documentID, connectionID string) error {
	_, err := dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(connectionsTable()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", documentID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

func respond(status int) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: status}
}

// handler processes $connect and $disconnect route events
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	documentID := request.QueryStringParameters["document_id"]

	switch request.RequestContext.RouteKey {
	case "$connect":
		if documentID == "" {
			log.Printf("connect %s rejected: no document_id", connectionID)
			return respond(http.StatusBadRequest), nil
		}

		token := request.QueryStringParameters["token"]
		userID, err := validateToken(token)
		if err != nil {
			log.Printf("connect %s rejected: %v", connectionID, err)
			return respond(http.StatusUnauthorized), nil
		}

		if err := storeConnection(ctx, documentID, connectionID, userID); err != nil {
			log.Printf("connect %s failed: %v", connectionID, err)
			return respond(http.StatusInternalServerError), nil
		}
		log.Printf("connection %s subscribed to document %s", connectionID, documentID)
		return respond(http.StatusOK), nil

	case "$disconnect":
		if documentID != "" {
			if err := removeConnection(ctx, documentID, connectionID); err != nil {
				log.Printf("disconnect %s cleanup failed: %v", connectionID, err)
			}
		}
		return respond(http.StatusOK), nil

	default:
		return respond(http.StatusOK), nil
	}
}

func main() {
	lambda.Start(handler)
}
