package records

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
)

const mongoCollectionName = "BookingRecords"

// MongoStore is the self-hosted record backend. Documents mirror the
// decoded record shape, so both backends feed the normalizer identically.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *logger.Logger
}

func NewMongoStore(mongoClient *mongo.Client, database string, log *logger.Logger) *MongoStore {
	db := mongoClient.Database(database)
	return &MongoStore{
		client:     mongoClient,
		collection: db.Collection(mongoCollectionName),
		log:        log,
	}
}

type mongoRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	RoomID    string             `bson:"room_id"`
	RoomLabel string             `bson:"room_label"`
	SlotStart *time.Time         `bson:"slot_start,omitempty"`
	SlotEnd   *time.Time         `bson:"slot_end,omitempty"`
	People    []string           `bson:"people,omitempty"`
	Duration  string             `bson:"duration,omitempty"`
	Title     string             `bson:"title,omitempty"`
}

func (d mongoRecord) toRecord() Record {
	rec := Record{ID: d.ID.Hex()}
	if d.RoomID != "" || d.RoomLabel != "" {
		rec.Room = &Select{ID: d.RoomID, Name: d.RoomLabel}
	}
	slot := &DateRange{}
	if d.SlotStart != nil {
		slot.Start = d.SlotStart.Format(time.RFC3339)
	}
	if d.SlotEnd != nil {
		slot.End = d.SlotEnd.Format(time.RFC3339)
	}
	if slot.Start != "" || slot.End != "" {
		rec.Slot = slot
	}
	for _, name := range d.People {
		rec.People = append(rec.People, Person{Name: name})
	}
	if d.Duration != "" {
		rec.Duration = &Formula{String: d.Duration}
	}
	if d.Title != "" {
		rec.Title = []RichText{{PlainText: d.Title}}
	}
	return rec
}

func (s *MongoStore) Query(ctx context.Context, q Query) (*Page, error) {
	filter := bson.M{}
	if q.Filter.RoomLabel != "" {
		filter["room_label"] = q.Filter.RoomLabel
	}
	if q.Filter.StartOnOrAfter != nil || q.Filter.StartOnOrBefore != nil {
		bounds := bson.M{}
		if q.Filter.StartOnOrAfter != nil {
			bounds["$gte"] = *q.Filter.StartOnOrAfter
		}
		if q.Filter.StartOnOrBefore != nil {
			bounds["$lte"] = *q.Filter.StartOnOrBefore
		}
		filter["slot_start"] = bounds
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var offset int64
	if q.StartCursor != "" {
		parsed, err := strconv.ParseInt(q.StartCursor, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid pagination cursor: %q", q.StartCursor)
		}
		offset = parsed
	}

	// Fetch one extra row to learn whether another page exists.
	opts := options.Find().
		SetSort(bson.D{{Key: "slot_start", Value: 1}, {Key: "slot_end", Value: 1}}).
		SetSkip(offset).
		SetLimit(int64(pageSize) + 1)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRecord
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode booking records: %w", err)
	}

	page := &Page{}
	if len(docs) > pageSize {
		docs = docs[:pageSize]
		page.HasMore = true
		page.NextCursor = strconv.FormatInt(offset+int64(pageSize), 10)
	}
	for _, doc := range docs {
		page.Records = append(page.Records, doc.toRecord())
	}
	return page, nil
}

func (s *MongoStore) Create(ctx context.Context, rec NewRecord) (*Record, error) {
	doc := mongoRecord{
		RoomID:    rec.RoomID,
		RoomLabel: rec.RoomLabel,
		SlotStart: &rec.Start,
		SlotEnd:   &rec.End,
		People:    rec.Occupants,
		Title:     rec.Title,
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking record: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	created := doc.toRecord()
	return &created, nil
}

func (s *MongoStore) UpdateSlot(ctx context.Context, id string, start, end time.Time) (*Record, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}

	update := bson.M{"$set": bson.M{"slot_start": start, "slot_end": end}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoRecord
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking record %s not found", id)
		}
		return nil, fmt.Errorf("failed to update booking record: %w", err)
	}

	updated := doc.toRecord()
	return &updated, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
