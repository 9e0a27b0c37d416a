package utils

import (
	"context"

	"chefdispatch/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMClient delivers customer pushes. Set once at startup.
var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase app and its messaging client from
// the configured service account credentials.
func FirebaseInit() {
	logger := GetLogger()
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, nil,
		option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile))
	if err != nil {
		logger.Fatal("failed to initialize firebase app", zap.Error(err))
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Fatal("failed to create firebase messaging client", zap.Error(err))
	}
	FCMClient = client
}
