package dispatchRepo

import (
	"context"
	"fmt"
	"time"

	"chefdispatch/database"
	"chefdispatch/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database("chefdispatch").Collection("bookings")
	return &MongoBookingRepo{coll: coll}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) BookingsForDate(ctx context.Context, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"date":   date,
		"status": bson.M{"$ne": models.BookingStatusCompleted},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings for %s: %w", date, err)
	}
	defer cursor.Close(ctx)
	return decodeBookings(ctx, cursor)
}

func (r *MongoBookingRepo) BookingsForChefOnDate(ctx context.Context, chefID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"date":             date,
		"assigned_chef_id": chefID,
		"status":           bson.M{"$ne": models.BookingStatusCompleted},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings for chef %s on %s: %w", chefID, date, err)
	}
	defer cursor.Close(ctx)
	return decodeBookings(ctx, cursor)
}

func (r *MongoBookingRepo) CountChefBookingsInRange(ctx context.Context, chefID string, from, to time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"assigned_chef_id": chefID,
		"start":            bson.M{"$gte": from, "$lt": to},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for chef %s: %w", chefID, err)
	}
	return int(count), nil
}

func (r *MongoBookingRepo) CountCompletedWithCustomer(ctx context.Context, chefID, customerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"assigned_chef_id": chefID,
		"customer_id":      customerID,
		"status":           models.BookingStatusCompleted,
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count history for chef %s and customer %s: %w", chefID, customerID, err)
	}
	return int(count), nil
}

func decodeBookings(ctx context.Context, cursor *mongo.Cursor) ([]models.Booking, error) {
	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
