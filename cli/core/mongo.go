package core

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"github.com/pizzashop/pizzasetup/pkg/probe"
)

const mongoServiceName = "MongoDB"

// MongoResult is the outcome of a successful database ping.
type MongoResult struct {
	Database string // from the URI path; empty when the URI names none
	RTT      time.Duration
}

// PingMongo connects to cfg.URI, pings the primary and disconnects.
// The server selection timeout follows the context deadline.
func PingMongo(ctx context.Context, cfg MongoConfig) (MongoResult, error) {
	cs, err := connstring.ParseAndValidate(cfg.URI)
	if err != nil {
		return MongoResult{}, &ValidationError{Key: probe.KeyMongoURI, Message: err.Error()}
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			opts.SetServerSelectionTimeout(d)
		}
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return MongoResult{}, &ConnectivityError{Service: mongoServiceName, Op: "connect", Err: err}
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	start := time.Now()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return MongoResult{}, &ConnectivityError{Service: mongoServiceName, Op: "ping", Err: err}
	}
	return MongoResult{Database: cs.Database, RTT: time.Since(start)}, nil
}
