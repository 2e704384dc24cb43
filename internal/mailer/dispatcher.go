package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

const (
	taskTypeDeliver = "mail:deliver"
	queueName       = "mail"
)

// Dispatcher queues messages on Redis via asynq and runs the delivery worker.
type Dispatcher struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	sender Sender
	logger *log.Logger
}

var _ Mailer = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher whose worker delivers through sender.
func NewDispatcher(redisURI string, sender Sender, logger *log.Logger) (*Dispatcher, error) {
	opt, err := asynq.ParseRedisURI(redisURI)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			queueName: 1,
		},
	})

	d := &Dispatcher{
		client: client,
		server: server,
		mux:    asynq.NewServeMux(),
		sender: sender,
		logger: logger,
	}
	d.mux.HandleFunc(taskTypeDeliver, d.handleDeliver)
	return d, nil
}

// Enqueue queues a message for delivery and returns immediately.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	task := asynq.NewTask(taskTypeDeliver, payload, asynq.Queue(queueName), asynq.MaxRetry(3))
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue mail to %s: %w", msg.To, err)
	}
	return nil
}

// StartWorker runs the asynq server in the background.
func (d *Dispatcher) StartWorker() {
	go func() {
		if err := d.server.Run(d.mux); err != nil && err != asynq.ErrServerClosed {
			d.logger.Printf("mail worker stopped with error: %v", err)
		}
	}()
}

// Shutdown stops the worker and closes the queue client.
func (d *Dispatcher) Shutdown() {
	d.server.Shutdown()
	_ = d.client.Close()
}

func (d *Dispatcher) handleDeliver(ctx context.Context, task *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		// Malformed payloads will never succeed; drop instead of retrying.
		d.logger.Printf("drop malformed mail task: %v", err)
		return nil
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Printf("mail delivery to %s failed: %v", msg.To, err)
		return err
	}

	d.logger.Printf("mail delivered to %s", msg.To)
	return nil
}
