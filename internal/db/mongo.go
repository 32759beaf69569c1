package db

import (
	"context"
	"errors"
	"time"

	"backend-tripline/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var errMongoURIMissing = errors.New("MONGO_URI not set")

func ConnectMongo(cfg config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, errMongoURIMissing
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
