package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/forevermatch/api/internal/jobs"
	"github.com/redis/go-redis/v9"
)

// EmailQueueKey is the list the verification-email jobs wait in.
const EmailQueueKey = "emails:pending"

var ErrQueueEmpty = errors.New("queue empty")

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Enqueue pushes a job envelope onto the email queue.
func (c *Client) Enqueue(ctx context.Context, j jobs.Job) error {
	b, err := json.Marshal(j)

	if err != nil {
		return err
	}

	return c.redisdb.LPush(ctx, EmailQueueKey, b).Err()
}

// Dequeue blocks up to timeout for the next job. ErrQueueEmpty when the
// timeout passes with nothing to do.
func (c *Client) Dequeue(ctx context.Context, timeout time.Duration) (jobs.Job, error) {
	res, err := c.redisdb.BRPop(ctx, timeout, EmailQueueKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return jobs.Job{}, ErrQueueEmpty
		}

		return jobs.Job{}, err
	}

	// BRPOP returns [key, value]
	var j jobs.Job

	err = json.Unmarshal([]byte(res[1]), &j)

	if err != nil {
		return jobs.Job{}, err
	}

	return j, nil
}

// Depth reports how many jobs are waiting.
func (c *Client) Depth(ctx context.Context) (int64, error) {
	return c.redisdb.LLen(ctx, EmailQueueKey).Result()
}
