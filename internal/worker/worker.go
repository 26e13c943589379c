package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	eventpkg "github.com/campusworks-org/backend/internal/event"
	ormpkg "github.com/campusworks-org/backend/internal/orm"
)

// Worker consumes engagement events and keeps the cached aggregates honest:
// every like/unlike triggers a reconcile that rewrites a post's like_count
// from the like rows, which are the source of truth. The cache can lag by at
// most the broker's delivery delay.
type Worker struct {
	context      context.Context
	cancel       func()
	waitGroup    sync.WaitGroup
	logger       *zap.Logger
	router       *Router
	brokerClient *eventpkg.KafkaClient
	database     *ormpkg.PostgresClient
}

func NewWorker(logger *zap.Logger, brokerClient *eventpkg.KafkaClient, database *ormpkg.PostgresClient) *Worker {
	context, cancel := context.WithCancel(context.Background())
	this := &Worker{
		context:      context,
		cancel:       cancel,
		logger:       logger,
		brokerClient: brokerClient,
		database:     database,
	}
	this.router = NewRouter(
		map[string][]EventHandler{
			eventpkg.ENGAGEMENT_POST_LIKED: {
				this.ReconcileLikeCountHandler,
			},
			eventpkg.ENGAGEMENT_POST_UNLIKED: {
				this.ReconcileLikeCountHandler,
			},
			eventpkg.ENGAGEMENT_COMMENT_CREATED: {
				this.CommentCreatedHandler,
			},
			eventpkg.ENGAGEMENT_POST_DELETED: {
				this.PostDeletedHandler,
			},
		},
	)
	return this
}

func (this *Worker) Start() error {
	this.logger.Info("starting engagement worker")

	this.waitGroup.Add(1)
	go this.worker()
	return nil
}

func (this *Worker) Stop() error {
	this.logger.Info("stopping engagement worker")

	this.cancel()
	this.waitGroup.Wait()
	return nil
}

func (this *Worker) worker() {
	defer this.waitGroup.Done()

	for {
		select {
		case <-this.context.Done():
			return
		case <-time.After(1 * time.Millisecond):
		}

		event, data, err := this.brokerClient.ReadMessage(this.context)
		if err != nil {
			if this.context.Err() != nil {
				return
			}
			this.logger.Error("error receiving kafka message", zap.Error(err))
			continue
		}

		err = this.router.Handle(event, data)
		if err != nil {
			this.logger.Error("error handling kafka message", zap.String("event", event), zap.Error(err))
			continue
		}
	}
}

func (this *Worker) ReconcileLikeCountHandler(data []byte) error {
	var message eventpkg.PostEvent
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	likeCount, err := this.database.ReconcilePostLikeCount(message.PostID)
	if err != nil {
		return err
	}

	this.logger.Info("reconciled like count",
		zap.String("post_id", message.PostID),
		zap.Int64("like_count", likeCount),
	)
	return nil
}

func (this *Worker) CommentCreatedHandler(data []byte) error {
	var message eventpkg.PostEvent
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	this.logger.Info("comment created", zap.String("post_id", message.PostID))
	return nil
}

func (this *Worker) PostDeletedHandler(data []byte) error {
	var message eventpkg.PostEvent
	err := json.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	this.logger.Info("post deleted", zap.String("post_id", message.PostID))
	return nil
}
