package database

import (
	"context"
	"time"

	"countdowntimer/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db Database) TimerInsert(ctx context.Context, t model.Timer) (model.Timer, error) {
	t.ID = primitive.NilObjectID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	r, err := db.Collection(CollectionTimers).InsertOne(ctx, t)
	if err != nil {
		return t, errors.Wrapf(err, "error inserting Timer for shop: %s", t.Shop)
	}
	t.ID = r.InsertedID.(primitive.ObjectID)
	return t, nil
}

func (db Database) TimerFindOne(ctx context.Context, shop string, timerID string) (model.Timer, error) {
	var t model.Timer
	objID, err := primitive.ObjectIDFromHex(timerID)
	if err != nil {
		return t, errors.Wrapf(err, "error creating ObjectID from hex: %s", timerID)
	}
	err = db.Collection(CollectionTimers).FindOne(ctx, bson.M{"_id": objID, "shop": shop}).Decode(&t)
	return t, errors.Wrapf(err, "error finding Timer with ID: %s for shop: %s", timerID, shop)
}

func (db Database) TimersFindByShop(ctx context.Context, shop string) ([]model.Timer, error) {
	var ts []model.Timer
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cur, err := db.Collection(CollectionTimers).Find(ctx, bson.M{"shop": shop}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Timers for shop: %s", shop)
	}
	if err = cur.All(ctx, &ts); err != nil {
		return nil, errors.Wrapf(err, "error getting Timers from cursor for shop: %s", shop)
	}
	return ts, nil
}

// TimersFindRunning returns the timers for shop that are enabled and inside
// their [startDate, endDate] window at now. Product targeting and the
// recency tie-break are applied in Go by model.SelectActive so the selection
// rule stays in one place.
func (db Database) TimersFindRunning(ctx context.Context, shop string, now time.Time) ([]model.Timer, error) {
	var ts []model.Timer
	cur, err := db.Collection(CollectionTimers).Find(ctx, bson.M{
		"shop":      shop,
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find running Timers for shop: %s", shop)
	}
	if err = cur.All(ctx, &ts); err != nil {
		return nil, errors.Wrapf(err, "error getting running Timers from cursor for shop: %s", shop)
	}
	return ts, nil
}

func (db Database) TimerUpdate(ctx context.Context, shop string, timerID string, fields bson.M) (model.Timer, error) {
	var t model.Timer
	objID, err := primitive.ObjectIDFromHex(timerID)
	if err != nil {
		return t, errors.Wrapf(err, "error creating ObjectID from hex: %s", timerID)
	}
	fields["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = db.Collection(CollectionTimers).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID, "shop": shop},
		bson.M{"$set": fields},
		opts,
	).Decode(&t)
	return t, errors.Wrapf(err, "error updating Timer with ID: %s for shop: %s", timerID, shop)
}

func (db Database) TimerDelete(ctx context.Context, shop string, timerID string) error {
	objID, err := primitive.ObjectIDFromHex(timerID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", timerID)
	}
	res, err := db.Collection(CollectionTimers).DeleteOne(ctx, bson.M{"_id": objID, "shop": shop})
	if err != nil {
		return errors.Wrapf(err, "error deleting Timer with ID: %s for shop: %s", timerID, shop)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(mongo.ErrNoDocuments, "no Timer deleted with ID: %s for shop: %s", timerID, shop)
	}
	return nil
}

// TimerIncrementViews atomically bumps the view counter. Callers treat this
// as best-effort telemetry: a failure must not fail the surrounding read.
func (db Database) TimerIncrementViews(ctx context.Context, timerID primitive.ObjectID) error {
	_, err := db.Collection(CollectionTimers).UpdateOne(
		ctx,
		bson.M{"_id": timerID},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	return errors.Wrapf(err, "error incrementing views for Timer with ID: %s", timerID.Hex())
}

// TimerIncrementClicks atomically bumps the click counter. Matching zero
// documents is not an error: unknown IDs are silently accepted.
func (db Database) TimerIncrementClicks(ctx context.Context, timerID string) error {
	objID, err := primitive.ObjectIDFromHex(timerID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", timerID)
	}
	_, err = db.Collection(CollectionTimers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"clicks": 1}},
	)
	return errors.Wrapf(err, "error incrementing clicks for Timer with ID: %s", timerID)
}

func (db Database) TimersDeleteByShop(ctx context.Context, shop string) (int64, error) {
	res, err := db.Collection(CollectionTimers).DeleteMany(ctx, bson.M{"shop": shop})
	if err != nil {
		return 0, errors.Wrapf(err, "error deleting Timers for shop: %s", shop)
	}
	return res.DeletedCount, nil
}
