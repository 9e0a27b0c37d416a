package notification

import (
	"context"
	"fmt"

	"chefdispatch/utils"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationService delivers dispatch messages to customers. The
// transport is FCM; callers only care about delivery success.
type NotificationService interface {
	SendCustomerPush(ctx context.Context, customerID, title, body string, data map[string]string) error
}

// TokenLookup resolves a customer's push token.
type TokenLookup interface {
	FCMToken(ctx context.Context, customerID string) (string, error)
}

// MongoTokenLookup reads customer push tokens from the customers collection
// maintained by the external booking API.
type MongoTokenLookup struct {
	Coll *mongo.Collection
}

func (l *MongoTokenLookup) FCMToken(ctx context.Context, customerID string) (string, error) {
	var doc struct {
		FCMToken string `bson:"fcm_token"`
	}
	if err := l.Coll.FindOne(ctx, bson.M{"id": customerID}).Decode(&doc); err != nil {
		return "", fmt.Errorf("could not find customer %s: %w", customerID, err)
	}
	return doc.FCMToken, nil
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Tokens TokenLookup
}

// SendCustomerPush looks up the customer's FCM token and sends a push.
func (s *DefaultNotificationService) SendCustomerPush(ctx context.Context, customerID, title, body string, data map[string]string) error {
	token, err := s.Tokens.FCMToken(ctx, customerID)
	if err != nil {
		return fmt.Errorf("SendCustomerPush: %w", err)
	}
	if token == "" {
		return fmt.Errorf("SendCustomerPush: customer %s has no FCM token", customerID)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendCustomerPush: failed to send FCM message: %w", err)
	}
	return nil
}
