package dispatchRepo

import (
	"context"
	"fmt"
	"time"

	"chefdispatch/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AssignChef commits the assignment with a filtered update on the version
// field. A concurrent request that claimed the chef first leaves
// MatchedCount at zero and the caller retries the next-ranked candidate.
func (r *MongoBookingRepo) AssignChef(ctx context.Context, bookingID, chefID string, start time.Time, expectedVersion int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":               bookingID,
		"version":          expectedVersion,
		"assigned_chef_id": bson.M{"$in": bson.A{"", nil}},
	}
	update := bson.M{
		"$set": bson.M{
			"assigned_chef_id": chefID,
			"start":            start,
			"status":           models.BookingStatusConfirmed,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to assign chef %s to booking %s: %w", chefID, bookingID, err)
	}
	if res.MatchedCount == 0 {
		return ErrAssignmentConflict
	}
	return nil
}

// ShiftBookingTime updates a booking's start after an accepted negotiation.
func (r *MongoBookingRepo) ShiftBookingTime(ctx context.Context, bookingID string, newStart time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$ne": models.BookingStatusCompleted},
	}
	update := bson.M{
		"$set": bson.M{"start": newStart},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to shift booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return ErrAssignmentConflict
	}
	return nil
}
