package db

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TextSource yields a race text for a newly created room.
type TextSource interface {
	RandomText(ctx context.Context) string
}

// RaceText is the stored shape of one race text.
type RaceText struct {
	Body            string `bson:"body"`
	TotalCharacters int    `bson:"totalCharacters"`
	Hash            string `bson:"hash"`
}

// fallbackTexts keep the server racing when no database is configured
// or a lookup fails.
var fallbackTexts = []string{
	"The quick brown fox jumps over the lazy dog. This pangram contains every letter of the English alphabet at least once.",
	"Programming is the process of creating a set of instructions that tell a computer how to perform a task. Programming can be done using a variety of computer programming languages.",
	"The Internet is a global system of interconnected computer networks that use the standard Internet protocol suite to link devices worldwide.",
	"Artificial intelligence is intelligence demonstrated by machines, as opposed to the natural intelligence displayed by humans or animals.",
	"Cloud computing is the on-demand availability of computer system resources, especially data storage and computing power, without direct active management by the user.",
}

// StaticSource serves the built-in text list.
type StaticSource struct{}

func NewStaticSource() StaticSource { return StaticSource{} }

func (StaticSource) RandomText(context.Context) string {
	return fallbackTexts[rand.Intn(len(fallbackTexts))]
}

// MongoSource samples a random race text from MongoDB.
type MongoSource struct {
	client *mongo.Client
	log    *slog.Logger
}

func Connect(ctx context.Context, uri string, log *slog.Logger) (*MongoSource, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoSource{client: client, log: log}, nil
}

func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) RandomText(ctx context.Context) string {
	collection := s.client.Database("TypeRace").Collection("racetexts")

	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		s.log.Warn("race text lookup failed, using fallback", "err", err)
		return StaticSource{}.RandomText(ctx)
	}
	defer cursor.Close(ctx)

	var text RaceText
	if cursor.Next(ctx) {
		if err := cursor.Decode(&text); err == nil && text.Body != "" {
			return text.Body
		}
	}
	return StaticSource{}.RandomText(ctx)
}
