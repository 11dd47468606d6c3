package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// Client publishes activity events to a single Pub/Sub topic.
type Client struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	projectID string
	topic     string
}

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub activity topic is required")
)

// NewClient creates a Pub/Sub v2 client and verifies the activity topic exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	topic := TopicResourceName(gcp.ProjectID, cfg.ActivityTopic)
	if topic == "" {
		return nil, errTopicRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		projectID: gcp.ProjectID,
		topic:     topic,
	}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	c.publisher = psClient.Publisher(topic)

	logg.Info(logg.WithField(ctx, "topic", topic), "pubsub client initialized")
	return c, nil
}

// Publish sends one message and waits for the server ack. The routing key
// travels as the routing_key attribute.
func (c *Client) Publish(ctx context.Context, routingKey string, payload []byte, attrs map[string]string) error {
	if c == nil || c.publisher == nil {
		return errors.New("pubsub publisher not initialized")
	}
	attributes := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		attributes[k] = v
	}
	attributes["routing_key"] = routingKey

	result := c.publisher.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: attributes,
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", c.topic, err)
	}
	return nil
}

// Ping verifies the activity topic exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", c.topic)
		}
		return fmt.Errorf("checking topic %q: %w", c.topic, err)
	}
	return nil
}

// Close flushes pending publishes and releases the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// TopicResourceName expands a bare topic id into its full resource name.
// Full names pass through unchanged.
func TopicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}
