package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shrinkr-io/shrinkr/internal/infrastructure/db"
	"github.com/shrinkr-io/shrinkr/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LinksRepository struct {
	coll *mongo.Collection
}

type linkDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Code      string              `bson:"code"`
	LongURL   string              `bson:"longUrl"`
	ShortURL  string              `bson:"shortUrl"`
	Clicks    int64               `bson:"clicks"`
	Owner     *primitive.ObjectID `bson:"owner,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
}

func NewLinksRepository(m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{coll: m.Collection("links")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_code"),
		},
		{
			Keys:    bson.D{{Key: "longUrl", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_long_url"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("owner_createdAt_desc"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	doc := linkDoc{
		Code:      link.Code,
		LongURL:   link.LongURL,
		ShortURL:  link.ShortURL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt.UTC(),
	}

	if link.OwnerID != "" {
		owner, err := primitive.ObjectIDFromHex(link.OwnerID)
		if err != nil {
			return err
		}
		doc.Owner = &owner
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}

	if mongo.IsDuplicateKeyError(err) {
		// Two unique indexes can fire here; tell them apart so the service
		// can retry on a code collision but return the winner on a long-URL
		// race.
		if strings.Contains(err.Error(), "uniq_long_url") {
			return links.ErrURLTaken
		}
		return links.ErrCodeTaken
	}

	return err
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err == nil {
		return mapLinkDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}

	return nil, err
}

func (r *LinksRepository) FindByLongURL(ctx context.Context, longURL string) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOne(ctx, bson.M{"longUrl": longURL}).Decode(&doc)
	if err == nil {
		return mapLinkDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}

	return nil, err
}

// FindByCodeAndIncClick bumps the click counter and returns the updated
// link in one round trip, so concurrent redirects never lose counts.
func (r *LinksRepository) FindByCodeAndIncClick(ctx context.Context, code string) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"code": code},
		bson.M{"$inc": bson.M{"clicks": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return mapLinkDoc(doc), nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}

	return nil, err
}

func (r *LinksRepository) FindByOwner(ctx context.Context, ownerID string) ([]*links.Link, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		// A malformed identity owns nothing.
		return []*links.Link{}, nil
	}

	cur, err := r.coll.Find(
		ctx,
		bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*links.Link, 0)
	for cur.Next(ctx) {
		var doc linkDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, mapLinkDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func mapLinkDoc(doc linkDoc) *links.Link {
	link := &links.Link{
		Code:      doc.Code,
		LongURL:   doc.LongURL,
		ShortURL:  doc.ShortURL,
		Clicks:    doc.Clicks,
		CreatedAt: doc.CreatedAt,
	}
	if doc.Owner != nil {
		link.OwnerID = doc.Owner.Hex()
	}
	return link
}
