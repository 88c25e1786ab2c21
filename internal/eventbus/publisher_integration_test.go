// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

//go:build integration

package eventbus_test

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tunetrail/serving/internal/eventbus"
	"github.com/tunetrail/serving/internal/models"
)

// natsContainer runs a disposable NATS broker with JetStream enabled, so
// the publisher is exercised against a real broker rather than a fake.
func natsContainer(t *testing.T, ctx context.Context) (url string, terminate func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2-alpine",
		Cmd:          []string{"-js"},
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nats container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4222/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	return "nats://" + host + ":" + port.Port(), func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate nats container: %v", err)
		}
	}
}

func TestPublisherPublishesToRealBroker(t *testing.T) {
	ctx := context.Background()
	url, terminate := natsContainer(t, ctx)
	defer terminate()

	const subject = "tunetrail.interactions.test"
	pub, err := eventbus.NewPublisher(eventbus.DefaultConfig(url, subject))
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if pub == nil {
		t.Fatal("expected a non-nil publisher for a non-empty URL")
	}
	defer pub.Close()

	nc, err := natsgo.Connect(url)
	if err != nil {
		t.Fatalf("connect subscriber: %v", err)
	}
	defer nc.Close()

	received := make(chan *natsgo.Msg, 1)
	sub, err := nc.Subscribe(subject, func(m *natsgo.Msg) { received <- m })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	interaction := &models.Interaction{ID: "interaction_1", UserID: "user_1", TrackID: "track_1", Type: models.InteractionPlay}
	if err := pub.PublishInteraction(ctx, interaction); err != nil {
		t.Fatalf("publish interaction: %v", err)
	}

	select {
	case msg := <-received:
		if len(msg.Data) == 0 {
			t.Error("expected a non-empty published payload")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published interaction")
	}
}
