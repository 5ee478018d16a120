package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

const tablesCollection = "consumption_tables"

// TableRepository serves reference consumption tables stored one document
// per genetic line.
type TableRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	logger   *zap.Logger
}

// NewTableRepository connects to MongoDB and verifies the connection.
func NewTableRepository(ctx context.Context, uri, dbName string, logger *zap.Logger) (*TableRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &TableRepository{
		client:   client,
		dbName:   dbName,
		collName: tablesCollection,
		logger:   logger,
	}, nil
}

// ConsumptionTable fetches and validates the table of the given line.
func (r *TableRepository) ConsumptionTable(ctx context.Context, line string) (models.ConsumptionTable, error) {
	line = models.NormalizeLine(line)

	var doc models.ConsumptionTable
	err := r.collection().FindOne(ctx, bson.M{"line": line}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ConsumptionTable{}, fmt.Errorf("%w: %q", models.ErrUnknownLine, line)
		}
		return models.ConsumptionTable{}, fmt.Errorf("find consumption table %q: %w", line, err)
	}

	return tableFromDocument(line, doc)
}

// SaveConsumptionTable replaces the stored table of table.Line.
func (r *TableRepository) SaveConsumptionTable(ctx context.Context, table models.ConsumptionTable) error {
	checked, err := tableFromDocument(table.Line, table)
	if err != nil {
		return err
	}

	_, err = r.collection().ReplaceOne(ctx,
		bson.M{"line": checked.Line},
		checked,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save consumption table %q: %w", checked.Line, err)
	}

	r.logger.Info("consumption table saved", zap.String("line", checked.Line), zap.Int("rows", len(checked.Rows)))
	return nil
}

// Close closes the MongoDB connection.
func (r *TableRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *TableRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func tableFromDocument(line string, doc models.ConsumptionTable) (models.ConsumptionTable, error) {
	line = models.NormalizeLine(line)
	if line == "" {
		return models.ConsumptionTable{}, fmt.Errorf("%w: empty line", models.ErrUnknownLine)
	}
	table, err := models.NewConsumptionTable(line, doc.Rows)
	if err != nil {
		return models.ConsumptionTable{}, fmt.Errorf("stored table: %w", err)
	}
	return table, nil
}
