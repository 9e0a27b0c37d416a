package chefRepo

import (
	"context"
	"fmt"
	"time"

	"chefdispatch/database"
	"chefdispatch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoChefRepo implements ChefRepository using MongoDB.
type MongoChefRepo struct {
	coll *mongo.Collection
}

// NewMongoChefRepo creates a new instance of ChefRepository using MongoDB.
func NewMongoChefRepo() ChefRepository {
	coll := database.MongoClient.Database("chefdispatch").Collection("chefs")
	return &MongoChefRepo{coll: coll}
}

func (r *MongoChefRepo) GetByID(ctx context.Context, id string) (*models.ChefInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var chef models.ChefInfo
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&chef); err != nil {
		return nil, fmt.Errorf("failed to fetch chef with id %s: %w", id, err)
	}
	return &chef, nil
}

func (r *MongoChefRepo) ActiveChefsForDate(ctx context.Context, date string) ([]models.ChefInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"available":   true,
		"leave_dates": bson.M{"$ne": date},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chefs for %s: %w", date, err)
	}
	defer cursor.Close(ctx)
	var chefs []models.ChefInfo
	for cursor.Next(ctx) {
		var c models.ChefInfo
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode chef: %w", err)
		}
		chefs = append(chefs, c)
	}
	return chefs, nil
}
