package database

import (
	"context"
	"time"

	"countdowntimer/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db Database) StoreUpsert(ctx context.Context, s model.Store) error {
	if s.Settings == (model.StoreSettings{}) {
		s.Settings = model.DefaultStoreSettings()
	}
	now := time.Now().UTC()
	_, err := db.Collection(CollectionStores).UpdateOne(
		ctx,
		bson.M{"shop": s.Shop},
		bson.M{
			"$set": bson.M{
				"accessToken": s.AccessToken,
				"settings":    s.Settings,
				"updatedAt":   now,
			},
			"$setOnInsert": bson.M{
				"shop":        s.Shop,
				"installedAt": now,
				"createdAt":   now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "error upserting Store for shop: %s", s.Shop)
}

func (db Database) StoreFindByShop(ctx context.Context, shop string) (model.Store, error) {
	var s model.Store
	err := db.Collection(CollectionStores).FindOne(ctx, bson.M{"shop": shop}).Decode(&s)
	return s, errors.Wrapf(err, "error finding Store for shop: %s", shop)
}

func (db Database) StoreDeleteByShop(ctx context.Context, shop string) error {
	_, err := db.Collection(CollectionStores).DeleteOne(ctx, bson.M{"shop": shop})
	return errors.Wrapf(err, "error deleting Store for shop: %s", shop)
}
