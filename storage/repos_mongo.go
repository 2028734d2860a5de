package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB repos

type mongoUserRepo struct {
	db *mongo.Database
}

func (r *mongoUserRepo) Ensure(externalID string) (int64, error) {
	if id, err := r.GetByExternalID(externalID); err == nil {
		return id, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq, err := nextSeq(r.db, "af_user")
	if err != nil {
		return 0, err
	}

	doc := bson.M{
		"id":           seq,
		"uuid":         uuid.New().String(),
		"external_id":  externalID,
		"date_created": time.Now(),
	}

	coll := r.db.Collection("af_user")
	_, err = coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByExternalID(externalID)
		}
		return 0, err
	}
	return seq, nil
}

func (r *mongoUserRepo) GetByExternalID(externalID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_user")
	var doc struct {
		ID int64 `bson:"id"`
	}
	err := coll.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

type mongoConversationRepo struct {
	db *mongo.Database
}

type mongoConversationDoc struct {
	ID          int64     `bson:"id"`
	UUID        string    `bson:"uuid"`
	UserID      int64     `bson:"user_id"`
	Title       string    `bson:"title"`
	DateUpdated time.Time `bson:"date_updated"`
}

func (r *mongoConversationRepo) Create(userID int64, title string) (Conversation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq, err := nextSeq(r.db, "af_conversation")
	if err != nil {
		return Conversation{}, err
	}

	u := uuid.New().String()
	now := time.Now()
	doc := bson.M{
		"id":           seq,
		"uuid":         u,
		"user_id":      userID,
		"title":        title,
		"date_created": now,
		"date_updated": now,
	}

	coll := r.db.Collection("af_conversation")
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return Conversation{}, err
	}
	return Conversation{ID: seq, UUID: u, UserID: userID, Title: title, UpdatedAt: now}, nil
}

func (r *mongoConversationRepo) GetByUUID(convUUID string) (Conversation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_conversation")
	var doc mongoConversationDoc
	err := coll.FindOne(ctx, bson.M{"uuid": convUUID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	return Conversation{ID: doc.ID, UUID: doc.UUID, UserID: doc.UserID, Title: doc.Title, UpdatedAt: doc.DateUpdated}, nil
}

func (r *mongoConversationRepo) ListByUser(userID int64, limit int) ([]Conversation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_conversation")
	cur, err := coll.Find(
		ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "date_updated", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Conversation
	for cur.Next(ctx) {
		var doc mongoConversationDoc
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, Conversation{ID: doc.ID, UUID: doc.UUID, UserID: doc.UserID, Title: doc.Title, UpdatedAt: doc.DateUpdated})
	}
	return out, cur.Err()
}

func (r *mongoConversationRepo) Rename(conversationID int64, title string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_conversation")
	_, err := coll.UpdateOne(
		ctx,
		bson.M{"id": conversationID},
		bson.M{"$set": bson.M{"title": title, "date_updated": time.Now()}},
	)
	return err
}

func (r *mongoConversationRepo) Touch(conversationID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_conversation")
	_, err := coll.UpdateOne(
		ctx,
		bson.M{"id": conversationID},
		bson.M{"$set": bson.M{"date_updated": time.Now()}},
	)
	return err
}

type mongoMessageRepo struct {
	db *mongo.Database
}

type mongoMessageDoc struct {
	ID             int64     `bson:"id"`
	UUID           string    `bson:"uuid"`
	ConversationID int64     `bson:"conversation_id"`
	Role           string    `bson:"role"`
	Content        string    `bson:"content"`
	DateCreated    time.Time `bson:"date_created"`
}

func (r *mongoMessageRepo) Create(conversationID, userID int64, role, content string) (Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq, err := nextSeq(r.db, "af_conversation_message")
	if err != nil {
		return Message{}, err
	}

	u := uuid.New().String()
	now := time.Now()
	doc := bson.M{
		"id":              seq,
		"uuid":            u,
		"conversation_id": conversationID,
		"user_id":         userID,
		"role":            role,
		"content":         content,
		"date_created":    now,
	}

	coll := r.db.Collection("af_conversation_message")
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return Message{}, err
	}
	return Message{ID: seq, UUID: u, ConversationID: conversationID, Role: role, Content: content, CreatedAt: now}, nil
}

func (r *mongoMessageRepo) ListAsc(conversationID int64, limit int) ([]Message, error) {
	return r.list(conversationID, limit, 1, false)
}

func (r *mongoMessageRepo) ListRecent(conversationID int64, limit int) ([]Message, error) {
	return r.list(conversationID, limit, -1, true)
}

func (r *mongoMessageRepo) list(conversationID int64, limit int, sortDir int, reverse bool) ([]Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_conversation_message")
	cur, err := coll.Find(
		ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().
			SetSort(bson.D{{Key: "date_created", Value: sortDir}, {Key: "id", Value: sortDir}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Message
	for cur.Next(ctx) {
		var doc mongoMessageDoc
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, Message{ID: doc.ID, UUID: doc.UUID, ConversationID: doc.ConversationID, Role: doc.Role, Content: doc.Content, CreatedAt: doc.DateCreated})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

type mongoFactRepo struct {
	db *mongo.Database
}

func (r *mongoFactRepo) Upsert(userID int64, key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_user_fact")
	filter := bson.M{"user_id": userID, "fact_key": key}
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"date_created": now,
		},
		"$set": bson.M{
			"fact_value":   value,
			"date_updated": now,
		},
	}
	_, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoFactRepo) FindAll(userID int64) ([]Fact, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := r.db.Collection("af_user_fact")
	cur, err := coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Fact
	for cur.Next(ctx) {
		var doc struct {
			Key   string `bson:"fact_key"`
			Value string `bson:"fact_value"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, Fact{Key: doc.Key, Value: doc.Value})
	}
	return out, cur.Err()
}

// wire Mongo repos into MongoDriver

func (d *MongoDriver) User() UserRepo {
	return &mongoUserRepo{db: d.db()}
}

func (d *MongoDriver) Conversation() ConversationRepo {
	return &mongoConversationRepo{db: d.db()}
}

func (d *MongoDriver) Message() MessageRepo {
	return &mongoMessageRepo{db: d.db()}
}

func (d *MongoDriver) Fact() FactRepo {
	return &mongoFactRepo{db: d.db()}
}

// sequence helper for Mongo collections

func nextSeq(db *mongo.Database, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := db.Collection("af_counters")
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
