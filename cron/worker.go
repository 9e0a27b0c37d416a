package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"chefdispatch/config"
	"chefdispatch/models"
	"chefdispatch/services/dispatch"
	"chefdispatch/services/tasks"

	"github.com/hibiken/asynq"
)

// InitNegotiationWorker runs the async worker that closes negotiations
// whose response window lapsed.
func InitNegotiationWorker(negSvc dispatch.NegotiationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNegotiationExpire, handleNegotiationExpiry(negSvc))

	go func() {
		log.Println("[NegotiationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NegotiationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NegotiationWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNegotiationExpiry(negSvc dispatch.NegotiationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NegotiationExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NegotiationWorker] invalid payload: %v", err)
			return err
		}

		if err := negSvc.Expire(ctx, p.NegotiationID); err != nil {
			log.Printf("[NegotiationWorker] failed to expire negotiation %s: %v", p.NegotiationID, err)
			return err
		}
		return nil
	}
}
