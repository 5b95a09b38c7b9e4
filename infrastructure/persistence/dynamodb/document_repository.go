package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/utils"
)

// DocumentRepository implements ports.DocumentRepository on DynamoDB.
//
// Single-table layout: PK = USER#{owner}, SK = DOC#{id}. The whole tree
// is stored as one JSON blob on the item; documents are loaded and saved
// as a unit, which matches the aggregate boundary.
type DocumentRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DocumentRepository {
	return &DocumentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// documentItem represents the DynamoDB item structure for a document
type documentItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	DocumentID string  `dynamodbav:"DocumentID"`
	OwnerID    string  `dynamodbav:"OwnerID"`
	Name       string  `dynamodbav:"Name"`
	Tree       string  `dynamodbav:"Tree"`
	ViewportX  float64 `dynamodbav:"ViewportX"`
	ViewportY  float64 `dynamodbav:"ViewportY"`
	Scale      float64 `dynamodbav:"Scale"`
	Thumbnail  string  `dynamodbav:"Thumbnail,omitempty"`
	NodeCount  int     `dynamodbav:"NodeCount"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
	Version    int     `dynamodbav:"Version"`
}

func pk(ownerID string) string {
	return fmt.Sprintf("USER#%s", ownerID)
}

func sk(id aggregates.DocumentID) string {
	return fmt.Sprintf("DOC#%s", id.String())
}

// Save persists the whole document, tree included
func (r *DocumentRepository) Save(ctx context.Context, doc *aggregates.Document) error {
	tree, err := json.Marshal(doc.Root())
	if err != nil {
		return pkgerrors.Wrap(err, "failed to serialize tree")
	}

	item := documentItem{
		PK:         pk(doc.OwnerID()),
		SK:         sk(doc.ID()),
		EntityType: "DOCUMENT",
		DocumentID: doc.ID().String(),
		OwnerID:    doc.OwnerID(),
		Name:       doc.Name(),
		Tree:       string(tree),
		ViewportX:  doc.Viewport().Position.X,
		ViewportY:  doc.Viewport().Position.Y,
		Scale:      doc.Viewport().Scale,
		Thumbnail:  doc.Thumbnail(),
		NodeCount:  doc.NodeCount(),
		CreatedAt:  utils.FormatRFC3339(doc.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(doc.UpdatedAt()),
		Version:    doc.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal document item")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save document", err)
	}

	r.logger.Debug("document saved",
		zap.String("document_id", doc.ID().String()),
		zap.Int("node_count", doc.NodeCount()),
		zap.Int("version", doc.Version()),
	)
	return nil
}

// GetByID retrieves one of the owner's documents
func (r *DocumentRepository) GetByID(ctx context.Context, ownerID string, id aggregates.DocumentID) (*aggregates.Document, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(ownerID)},
			"SK": &types.AttributeValueMemberS{Value: sk(id)},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get document", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("document")
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal document item")
	}

	return r.reconstruct(item)
}

// ListByOwner returns document summaries without deserializing trees
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]ports.DocumentSummary, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pk(ownerID))).
		And(expression.Key("SK").BeginsWith("DOC#"))
	proj := expression.NamesList(
		expression.Name("DocumentID"),
		expression.Name("Name"),
		expression.Name("Thumbnail"),
		expression.Name("NodeCount"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(proj).
		Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build list expression")
	}

	var summaries []ports.DocumentSummary
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list documents", err)
		}

		var page []documentItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to unmarshal document list")
		}
		for _, item := range page {
			summaries = append(summaries, ports.DocumentSummary{
				ID:        item.DocumentID,
				Name:      item.Name,
				Thumbnail: item.Thumbnail,
				NodeCount: item.NodeCount,
				UpdatedAt: item.UpdatedAt,
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return summaries, nil
}

// Delete removes a document permanently
func (r *DocumentRepository) Delete(ctx context.Context, ownerID string, id aggregates.DocumentID) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build delete expression")
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(ownerID)},
			"SK": &types.AttributeValueMemberS{Value: sk(id)},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("document")
		}
		return pkgerrors.NewDatabaseError("delete document", err)
	}

	return nil
}

// SaveViewport updates only the viewport attributes, never the tree.
// Debounced viewport writes therefore cannot clobber a concurrent
// structural save.
func (r *DocumentRepository) SaveViewport(ctx context.Context, doc *aggregates.Document) error {
	update := expression.Set(expression.Name("ViewportX"), expression.Value(doc.Viewport().Position.X)).
		Set(expression.Name("ViewportY"), expression.Value(doc.Viewport().Position.Y)).
		Set(expression.Name("Scale"), expression.Value(doc.Viewport().Scale)).
		Set(expression.Name("UpdatedAt"), expression.Value(utils.NowRFC3339()))
	cond := expression.AttributeExists(expression.Name("PK"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build viewport expression")
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(doc.OwnerID())},
			"SK": &types.AttributeValueMemberS{Value: sk(doc.ID())},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("document")
		}
		return pkgerrors.NewDatabaseError("save viewport", err)
	}

	return nil
}

func (r *DocumentRepository) reconstruct(item documentItem) (*aggregates.Document, error) {
	var root entities.Node
	if err := json.Unmarshal([]byte(item.Tree), &root); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to deserialize tree")
	}

	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return aggregates.ReconstructDocument(
		aggregates.DocumentID(item.DocumentID),
		item.OwnerID,
		item.Name,
		&root,
		valueobjects.Viewport{
			Position: valueobjects.Point{X: item.ViewportX, Y: item.ViewportY},
			Scale:    item.Scale,
		},
		item.Thumbnail,
		createdAt,
		updatedAt,
		item.Version,
	)
}
