package mongo

import (
	"context"
	"time"

	"psyjaciele/internal/domain/events"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type eventDoc struct {
	ID           string    `bson:"_id"`
	IncidentID   string    `bson:"incident_id"`
	Type         string    `bson:"type"`
	ActorID      string    `bson:"actor_id,omitempty"`
	ActorRole    string    `bson:"actor_role"`
	Status       string    `bson:"status,omitempty"`
	HelpfulCount int       `bson:"helpful_count,omitempty"`
	ImageRef     string    `bson:"image_ref,omitempty"`
	OccurredAt   time.Time `bson:"occurred_at"`
}

type EventsRepo struct {
	col *mongo.Collection
}

func NewEventsRepo(db *mongo.Database) *EventsRepo {
	return &EventsRepo{col: db.Collection(eventsCollection)}
}

func (r *EventsRepo) Append(ctx context.Context, e events.Event) error {
	_, err := r.col.InsertOne(ctx, eventDoc{
		ID:           e.ID,
		IncidentID:   e.IncidentID,
		Type:         string(e.Type),
		ActorID:      e.Actor.ID,
		ActorRole:    e.Actor.Role,
		Status:       e.Status,
		HelpfulCount: e.HelpfulCount,
		ImageRef:     e.ImageRef,
		OccurredAt:   e.OccurredAt,
	})
	return err
}

func (r *EventsRepo) ListByIncident(ctx context.Context, incidentID string, filter events.ListFilter) ([]events.Event, error) {
	q := bson.M{"incident_id": incidentID}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		q["type"] = bson.M{"$in": types}
	}

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]events.Event, 0)
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, events.Event{
			ID:           doc.ID,
			Type:         events.Type(doc.Type),
			IncidentID:   doc.IncidentID,
			Actor:        events.Actor{ID: doc.ActorID, Role: doc.ActorRole},
			OccurredAt:   doc.OccurredAt.UTC(),
			Status:       doc.Status,
			HelpfulCount: doc.HelpfulCount,
			ImageRef:     doc.ImageRef,
		})
	}
	return out, cur.Err()
}
