package legstore

import (
	"context"
	"errors"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"
	"backend-tripline/internal/pathedit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	legsCollection  = "legs"
	locksCollection = "itinerary_locks"
)

// Mongo stores each leg as a document carrying a snapshot of its edge.
// Mutate runs inside a multi-document transaction whose first write bumps
// a per-itinerary version document, so two concurrent edits of the same
// itinerary write-conflict and the driver retries the loser. A nil
// StatusReader treats every itinerary as active.
type Mongo struct {
	client *mongo.Client
	legs   *mongo.Collection
	locks  *mongo.Collection
	status StatusReader
}

func NewMongo(client *mongo.Client, database string, status StatusReader) *Mongo {
	db := client.Database(database)
	return &Mongo{
		client: client,
		legs:   db.Collection(legsCollection),
		locks:  db.Collection(locksCollection),
		status: status,
	}
}

// EnsureIndexes creates the index backing ordered leg reads.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.legs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    legOrder(),
		Options: options.Index().SetName("itinerary_order"),
	})
	return err
}

func (m *Mongo) Mutate(ctx context.Context, itineraryID string, fn func(ctx context.Context, tx pathedit.Tx) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		_, err := m.locks.UpdateOne(sc,
			bson.M{"_id": itineraryID},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, err
		}
		return nil, fn(sc, &mongoTx{store: m, itineraryID: itineraryID})
	})
	return err
}

func (m *Mongo) ItineraryOfLeg(ctx context.Context, legID string) (string, error) {
	var doc struct {
		ItineraryID string `bson:"itinerary_id"`
	}
	err := m.legs.FindOne(ctx, bson.M{"_id": legID},
		options.FindOne().SetProjection(bson.M{"itinerary_id": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", itinerary.ErrLegNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.ItineraryID, nil
}

func (m *Mongo) Legs(ctx context.Context, itineraryID string) ([]itinerary.Leg, error) {
	if m.status != nil {
		if _, err := m.status.Status(ctx, itineraryID); err != nil {
			return nil, err
		}
	}
	return m.find(ctx, itineraryID)
}

func (m *Mongo) Purge(ctx context.Context, itineraryID string) error {
	if _, err := m.legs.DeleteMany(ctx, bson.M{"itinerary_id": itineraryID}); err != nil {
		return err
	}
	_, err := m.locks.DeleteOne(ctx, bson.M{"_id": itineraryID})
	return err
}

func (m *Mongo) find(ctx context.Context, itineraryID string) ([]itinerary.Leg, error) {
	cursor, err := m.legs.Find(ctx, bson.M{"itinerary_id": itineraryID}, options.Find().SetSort(legOrder()))
	if err != nil {
		return nil, err
	}
	legs := []itinerary.Leg{}
	if err := cursor.All(ctx, &legs); err != nil {
		return nil, err
	}
	for i := range legs {
		legs[i].StartTime, legs[i].EndTime = legs[i].StartTime.UTC(), legs[i].EndTime.UTC()
	}
	itinerary.SortLegs(legs)
	return legs, nil
}

func legOrder() bson.D {
	return bson.D{{Key: "itinerary_id", Value: 1}, {Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}
}

func legFilter(itineraryID, legID string) bson.M {
	return bson.M{"_id": legID, "itinerary_id": itineraryID}
}

type mongoTx struct {
	store       *Mongo
	itineraryID string
}

func (tx *mongoTx) Status(ctx context.Context) (itinerary.Status, error) {
	if tx.store.status == nil {
		return itinerary.StatusActive, nil
	}
	return tx.store.status.Status(ctx, tx.itineraryID)
}

func (tx *mongoTx) OrderedLegs(ctx context.Context) ([]itinerary.Leg, error) {
	return tx.store.find(ctx, tx.itineraryID)
}

func (tx *mongoTx) AddLeg(ctx context.Context, edge catalog.Edge, start, end time.Time, class itinerary.Classification) (itinerary.Leg, error) {
	leg, err := itinerary.NewLeg(tx.itineraryID, edge, start, end, class)
	if err != nil {
		return itinerary.Leg{}, err
	}
	// BSON datetimes hold milliseconds
	leg.StartTime = leg.StartTime.Truncate(time.Millisecond)
	leg.EndTime = leg.EndTime.Truncate(time.Millisecond)
	if _, err := tx.store.legs.InsertOne(ctx, leg); err != nil {
		return itinerary.Leg{}, err
	}
	return leg, nil
}

func (tx *mongoTx) DeleteLeg(ctx context.Context, legID string) error {
	res, err := tx.store.legs.DeleteOne(ctx, legFilter(tx.itineraryID, legID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return itinerary.ErrLegNotFound
	}
	return nil
}

func (tx *mongoTx) GetLeg(ctx context.Context, legID string) (itinerary.Leg, error) {
	var leg itinerary.Leg
	err := tx.store.legs.FindOne(ctx, legFilter(tx.itineraryID, legID)).Decode(&leg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	if err != nil {
		return itinerary.Leg{}, err
	}
	leg.StartTime, leg.EndTime = leg.StartTime.UTC(), leg.EndTime.UTC()
	return leg, nil
}

func (tx *mongoTx) UpdateLegEdge(ctx context.Context, legID string, edge catalog.Edge, newEnd time.Time) (itinerary.Leg, error) {
	leg, err := tx.GetLeg(ctx, legID)
	if err != nil {
		return itinerary.Leg{}, err
	}
	if err := checkEnd(leg, newEnd); err != nil {
		return itinerary.Leg{}, err
	}
	leg.Edge = edge
	leg.EndTime = newEnd.UTC().Truncate(time.Millisecond)

	res, err := tx.store.legs.UpdateOne(ctx, legFilter(tx.itineraryID, legID),
		bson.M{"$set": bson.M{"edge": leg.Edge, "end_time": leg.EndTime}},
	)
	if err != nil {
		return itinerary.Leg{}, err
	}
	if res.MatchedCount == 0 {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	return leg, nil
}
