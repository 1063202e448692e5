package mongo

import (
	"context"
	"errors"
	"time"

	"psyjaciele/internal/domain/incidents"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type locationDoc struct {
	Address   string   `bson:"address"`
	Latitude  *float64 `bson:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty"`
}

type incidentDoc struct {
	ID           string      `bson:"_id"`
	Description  string      `bson:"description"`
	Location     locationDoc `bson:"location"`
	Date         string      `bson:"date"`
	Time         string      `bson:"time"`
	DogName      string      `bson:"dog_name,omitempty"`
	ReporterName string      `bson:"reporter_name"`
	Status       string      `bson:"status"`
	HelpfulCount int         `bson:"helpful_count"`
	ReportedBy   string      `bson:"reported_by"`
	Images       []string    `bson:"images"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

type IncidentsRepo struct {
	col *mongo.Collection
}

func NewIncidentsRepo(db *mongo.Database) *IncidentsRepo {
	return &IncidentsRepo{col: db.Collection(incidentsCollection)}
}

func (r *IncidentsRepo) Create(ctx context.Context, inc incidents.Incident) error {
	_, err := r.col.InsertOne(ctx, toIncidentDoc(inc))
	return err
}

func (r *IncidentsRepo) GetByID(ctx context.Context, id string) (incidents.Incident, error) {
	var doc incidentDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return incidents.Incident{}, incidents.ErrNotFound
	}
	if err != nil {
		return incidents.Incident{}, err
	}
	return doc.toDomain(), nil
}

func (r *IncidentsRepo) List(ctx context.Context, filter incidents.ListFilter) ([]incidents.Incident, error) {
	q := bson.M{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		q["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]incidents.Incident, 0)
	for cur.Next(ctx) {
		var doc incidentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *IncidentsRepo) TransitionStatus(ctx context.Context, id string, from, to incidents.Status, at time.Time) (incidents.Incident, error) {
	inc, err := r.findAndUpdate(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": at}},
	)
	if errors.Is(err, incidents.ErrNotFound) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return incidents.Incident{}, gerr
		}
		return incidents.Incident{}, incidents.ErrInvalidTransition
	}
	return inc, err
}

// IncrementHelpful usa $inc: el servidor serializa los incrementos.
func (r *IncidentsRepo) IncrementHelpful(ctx context.Context, id string, at time.Time) (incidents.Incident, error) {
	return r.findAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"helpful_count": 1},
			"$set": bson.M{"updated_at": at},
		},
	)
}

func (r *IncidentsRepo) AddImage(ctx context.Context, id, ref string, at time.Time) (incidents.Incident, error) {
	return r.findAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"images": ref},
			"$set":  bson.M{"updated_at": at},
		},
	)
}

func (r *IncidentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return incidents.ErrNotFound
	}
	return nil
}

func (r *IncidentsRepo) findAndUpdate(ctx context.Context, filter, update bson.M) (incidents.Incident, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc incidentDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return incidents.Incident{}, incidents.ErrNotFound
	}
	if err != nil {
		return incidents.Incident{}, err
	}
	return doc.toDomain(), nil
}

func toIncidentDoc(inc incidents.Incident) incidentDoc {
	images := inc.Images
	if images == nil {
		images = []string{}
	}
	return incidentDoc{
		ID:          inc.ID,
		Description: inc.Description,
		Location: locationDoc{
			Address:   inc.Location.Address,
			Latitude:  inc.Location.Latitude,
			Longitude: inc.Location.Longitude,
		},
		Date:         inc.Date,
		Time:         inc.Time,
		DogName:      inc.DogName,
		ReporterName: inc.ReporterName,
		Status:       string(inc.Status),
		HelpfulCount: inc.HelpfulCount,
		ReportedBy:   inc.ReportedBy,
		Images:       images,
		CreatedAt:    inc.CreatedAt,
		UpdatedAt:    inc.UpdatedAt,
	}
}

func (d incidentDoc) toDomain() incidents.Incident {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return incidents.Incident{
		ID:          d.ID,
		Description: d.Description,
		Location: incidents.Location{
			Address:   d.Location.Address,
			Latitude:  d.Location.Latitude,
			Longitude: d.Location.Longitude,
		},
		Date:         d.Date,
		Time:         d.Time,
		DogName:      d.DogName,
		ReporterName: d.ReporterName,
		Status:       incidents.Status(d.Status),
		HelpfulCount: d.HelpfulCount,
		ReportedBy:   d.ReportedBy,
		Images:       images,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
