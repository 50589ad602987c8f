package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type taskDocument struct {
	ID             string                `bson:"_id"`
	Title          string                `bson:"title"`
	Description    string                `bson:"description,omitempty"`
	Category       string                `bson:"category"`
	Priority       string                `bson:"priority"`
	Status         string                `bson:"status"`
	ClientName     string                `bson:"client_name"`
	ClientPhone    string                `bson:"client_phone,omitempty"`
	ClientEmail    string                `bson:"client_email,omitempty"`
	Equipment      string                `bson:"equipment,omitempty"`
	EquipmentModel string                `bson:"equipment_model,omitempty"`
	RequiredParts  string                `bson:"required_parts,omitempty"`
	Budget         *primitive.Decimal128 `bson:"budget,omitempty"`
	TechnicianID   string                `bson:"technician_id"`
	DueDate        *time.Time            `bson:"due_date,omitempty"`
	CreatedAt      time.Time             `bson:"created_at"`
	CompletedAt    *time.Time            `bson:"completed_at,omitempty"`
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toTaskDocument(t)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain()
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"client_name": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Update translates the patch into a single $set/$unset and returns the
// document as it is after the write.
func (r *TaskRepository) Update(ctx context.Context, id string, patch ports.TaskPatch) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	unset := bson.M{}
	setIf := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	setIf("title", patch.Title)
	setIf("description", patch.Description)
	setIf("category", patch.Category)
	setIf("client_name", patch.ClientName)
	setIf("client_phone", patch.ClientPhone)
	setIf("client_email", patch.ClientEmail)
	setIf("equipment", patch.Equipment)
	setIf("equipment_model", patch.EquipmentModel)
	setIf("required_parts", patch.RequiredParts)
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Budget.Set {
		if patch.Budget.Value == nil {
			unset["budget"] = ""
		} else {
			d, err := toDecimal128(patch.Budget.Value)
			if err != nil {
				return nil, err
			}
			set["budget"] = d
		}
	}
	for field, v := range map[string]ports.Nullable[time.Time]{"due_date": patch.DueDate, "completed_at": patch.CompletedAt} {
		if !v.Set {
			continue
		}
		if v.Value == nil {
			unset[field] = ""
		} else {
			set[field] = v.Value.UTC()
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain()
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Stats computes every counter in one $group pass.
func (r *TaskRepository) Stats(ctx context.Context, today time.Time) (domain.TaskStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	countIf := func(cond bson.M) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}
	statusIs := func(s domain.TaskStatus) bson.M {
		return bson.M{"$eq": bson.A{"$status", string(s)}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"total":       bson.M{"$sum": 1},
			"pending":     countIf(statusIs(domain.StatusPending)),
			"in_progress": countIf(statusIs(domain.StatusInProgress)),
			"completed":   countIf(statusIs(domain.StatusCompleted)),
			"overdue": countIf(bson.M{"$and": bson.A{
				bson.M{"$ne": bson.A{"$status", string(domain.StatusCompleted)}},
				bson.M{"$eq": bson.A{bson.M{"$type": "$due_date"}, "date"}},
				bson.M{"$lt": bson.A{"$due_date", domain.DateOf(today)}},
			}}),
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total      int64 `bson:"total"`
		Pending    int64 `bson:"pending"`
		InProgress int64 `bson:"in_progress"`
		Completed  int64 `bson:"completed"`
		Overdue    int64 `bson:"overdue"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return domain.TaskStats{}, fmt.Errorf("decode stats: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}

	return domain.TaskStats{
		Total:      row.Total,
		Pending:    row.Pending,
		InProgress: row.InProgress,
		Completed:  row.Completed,
		Overdue:    row.Overdue,
	}, nil
}

func (r *TaskRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode category counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates the indexes backing the list filters and ordering.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toTaskDocument(t *domain.Task) (*taskDocument, error) {
	budget, err := toDecimal128(t.Budget)
	if err != nil {
		return nil, err
	}
	return &taskDocument{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		ClientName:     t.ClientName,
		ClientPhone:    t.ClientPhone,
		ClientEmail:    t.ClientEmail,
		Equipment:      t.Equipment,
		EquipmentModel: t.EquipmentModel,
		RequiredParts:  t.RequiredParts,
		Budget:         budget,
		TechnicianID:   t.TechnicianID,
		DueDate:        t.DueDate,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}, nil
}

func (d *taskDocument) toDomain() (*domain.Task, error) {
	t := &domain.Task{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Priority:       domain.TaskPriority(d.Priority),
		Status:         domain.TaskStatus(d.Status),
		ClientName:     d.ClientName,
		ClientPhone:    d.ClientPhone,
		ClientEmail:    d.ClientEmail,
		Equipment:      d.Equipment,
		EquipmentModel: d.EquipmentModel,
		RequiredParts:  d.RequiredParts,
		TechnicianID:   d.TechnicianID,
		DueDate:        utcPtr(d.DueDate),
		CreatedAt:      d.CreatedAt.UTC(),
		CompletedAt:    utcPtr(d.CompletedAt),
	}
	if d.Budget != nil {
		b, err := decimal.NewFromString(d.Budget.String())
		if err != nil {
			return nil, fmt.Errorf("decode budget of task %s: %w", d.ID, err)
		}
		t.Budget = &b
	}
	return t, nil
}

func toDecimal128(d *decimal.Decimal) (*primitive.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return nil, fmt.Errorf("encode budget: %w", err)
	}
	return &v, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
