package users

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const CollectionName = "users"

var tracer = otel.Tracer("github.com/pure-golang/webcore/users")

// listProjection drops credentials server-side.
var listProjection = bson.D{{Key: "password", Value: 0}}

// DatabaseProvider resolves the application database, e.g. *mongo.Provider.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// User is an account document without credentials.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Role          string             `bson:"role,omitempty" json:"role,omitempty"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	EmailVerified *time.Time         `bson:"emailVerified,omitempty" json:"emailVerified,omitempty"`
	CreatedAt     *time.Time         `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

type Repository struct {
	db DatabaseProvider
}

func NewRepository(db DatabaseProvider) *Repository {
	return &Repository{db: db}
}

// List returns every user. The password field never leaves the database.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	ctx, span := tracer.Start(ctx, "users.List")
	defer span.End()
	span.SetAttributes(attribute.String("db.collection", CollectionName))

	users, err := r.list(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

func (r *Repository) list(ctx context.Context) ([]User, error) {
	db, err := r.db.Database(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(CollectionName).Find(ctx, bson.D{},
		options.Find().SetProjection(listProjection))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find users")
	}

	users := make([]User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "failed to decode users")
	}
	return users, nil
}
