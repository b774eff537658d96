// Package qdrant provides a SearchIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
)

// Repository implements the SearchIndex interface using Qdrant.
//
// Bound objects are stored twice in the payload: as a keyword list of
// "objectID|direction" pairs for exact filtering, and as a JSON blob for
// reconstructing the full BoundObject list on reads.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its data.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Index stores a fact document with its embedding.
func (r *Repository) Index(ctx context.Context, doc *entities.FactDocument) error {
	payload, err := documentPayload(doc)
	if err != nil {
		return err
	}

	point := &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: doc.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: doc.Embedding},
			},
		},
		Payload: payload,
	}

	_, err = r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}

	return nil
}

// FindByID retrieves a fact document by its ID. Returns nil if absent.
func (r *Repository) FindByID(ctx context.Context, id string) (*entities.FactDocument, error) {
	resp, err := r.points.Get(ctx, &pb.GetPoints{
		CollectionName: r.collection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting point: %w", err)
	}

	if len(resp.Result) == 0 {
		return nil, nil
	}

	return pointToDocument(resp.Result[0].Id, resp.Result[0].Payload, resp.Result[0].Vectors)
}

// FindByCriteria returns documents matching the existence criteria exactly.
// Keyword fields and binding pairs are filtered in Qdrant; the float and
// count comparisons are verified in Go since Qdrant matches cannot express
// exact double equality.
func (r *Repository) FindByCriteria(ctx context.Context, criteria *entities.ExistenceCriteria) ([]entities.FactDocument, error) {
	must := []*pb.Condition{
		keywordCondition("type", string(criteria.Type)),
		keywordCondition("access_mode", string(criteria.AccessMode)),
	}
	if criteria.Value != "" {
		must = append(must, keywordCondition("value", criteria.Value))
	}
	if criteria.OriginID != "" {
		must = append(must, keywordCondition("origin_id", criteria.OriginID))
	}
	if criteria.OrganizationID != "" {
		must = append(must, keywordCondition("organization_id", criteria.OrganizationID))
	}
	if criteria.InReferenceToID != "" {
		must = append(must, keywordCondition("in_reference_to_id", criteria.InReferenceToID))
	}
	for _, object := range criteria.Objects {
		must = append(must, keywordCondition("objects", bindingKey(object.ObjectID, object.Direction)))
	}

	resp, err := r.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: r.collection,
		Limit:          pb.PtrOf(uint32(64)),
		Filter:         &pb.Filter{Must: must},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling points by criteria: %w", err)
	}

	docs := make([]entities.FactDocument, 0, len(resp.Result))
	for _, point := range resp.Result {
		doc, err := pointToDocument(point.Id, point.Payload, nil)
		if err != nil {
			return nil, err
		}
		if matchesCriteria(doc, criteria) {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

// matchesCriteria verifies the parts of the criteria the Qdrant filter
// cannot: exact confidence, empty-string fields and the binding count.
func matchesCriteria(doc *entities.FactDocument, criteria *entities.ExistenceCriteria) bool {
	if doc.Confidence != criteria.Confidence {
		return false
	}
	if doc.Value != criteria.Value ||
		doc.OriginID != criteria.OriginID ||
		doc.OrganizationID != criteria.OrganizationID ||
		doc.InReferenceToID != criteria.InReferenceToID {
		return false
	}
	return len(doc.Objects) == len(criteria.Objects)
}

// Search performs a semantic search and returns similar fact documents.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.FactDocument, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	docs := make([]entities.FactDocument, 0, len(resp.Result))
	for _, point := range resp.Result {
		doc, err := pointToDocument(point.Id, point.Payload, nil)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// MarkRetracted flags a fact document as retracted. The relational store
// never sees this flag; the index owns it.
func (r *Repository) MarkRetracted(ctx context.Context, id string) error {
	_, err := r.points.SetPayload(ctx, &pb.SetPayloadPoints{
		CollectionName: r.collection,
		Payload: map[string]*pb.Value{
			"retracted": {Kind: &pb.Value_BoolValue{BoolValue: true}},
		},
		PointsSelector: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marking point retracted: %w", err)
	}
	return nil
}

// Delete removes a fact document by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// Count returns the number of indexed fact documents.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// bindingKey builds the keyword stored for one bound object.
func bindingKey(objectID string, direction entities.Direction) string {
	return objectID + "|" + string(direction)
}

// documentPayload builds the Qdrant payload for a fact document.
func documentPayload(doc *entities.FactDocument) (map[string]*pb.Value, error) {
	objectsJSON, err := json.Marshal(doc.Objects)
	if err != nil {
		return nil, fmt.Errorf("marshaling bound objects: %w", err)
	}

	bindingKeys := make([]*pb.Value, 0, len(doc.Objects))
	for _, object := range doc.Objects {
		bindingKeys = append(bindingKeys, &pb.Value{
			Kind: &pb.Value_StringValue{StringValue: bindingKey(object.ID, object.Direction)},
		})
	}

	acl := make([]*pb.Value, 0, len(doc.ACL))
	for _, subject := range doc.ACL {
		acl = append(acl, &pb.Value{Kind: &pb.Value_StringValue{StringValue: subject}})
	}

	return map[string]*pb.Value{
		"type":               {Kind: &pb.Value_StringValue{StringValue: string(doc.Type)}},
		"value":              {Kind: &pb.Value_StringValue{StringValue: doc.Value}},
		"in_reference_to_id": {Kind: &pb.Value_StringValue{StringValue: doc.InReferenceToID}},
		"organization_id":    {Kind: &pb.Value_StringValue{StringValue: doc.OrganizationID}},
		"origin_id":          {Kind: &pb.Value_StringValue{StringValue: doc.OriginID}},
		"added_by_id":        {Kind: &pb.Value_StringValue{StringValue: doc.AddedByID}},
		"access_mode":        {Kind: &pb.Value_StringValue{StringValue: string(doc.AccessMode)}},
		"confidence":         {Kind: &pb.Value_DoubleValue{DoubleValue: doc.Confidence}},
		"trust":              {Kind: &pb.Value_DoubleValue{DoubleValue: doc.Trust}},
		"created_at":         {Kind: &pb.Value_StringValue{StringValue: doc.CreatedAt.Format(time.RFC3339)}},
		"last_seen_at":       {Kind: &pb.Value_StringValue{StringValue: doc.LastSeenAt.Format(time.RFC3339)}},
		"retracted":          {Kind: &pb.Value_BoolValue{BoolValue: doc.Retracted}},
		"acl":                {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: acl}}},
		"objects":            {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: bindingKeys}}},
		"objects_json":       {Kind: &pb.Value_StringValue{StringValue: string(objectsJSON)}},
	}, nil
}

// pointToDocument converts a Qdrant point back to a FactDocument.
func pointToDocument(pointID *pb.PointId, payload map[string]*pb.Value, vectors *pb.VectorsOutput) (*entities.FactDocument, error) {
	doc := &entities.FactDocument{
		ID:              pointID.GetUuid(),
		Type:            entities.FactType(getStringValue(payload, "type")),
		Value:           getStringValue(payload, "value"),
		InReferenceToID: getStringValue(payload, "in_reference_to_id"),
		OrganizationID:  getStringValue(payload, "organization_id"),
		OriginID:        getStringValue(payload, "origin_id"),
		AddedByID:       getStringValue(payload, "added_by_id"),
		AccessMode:      entities.AccessMode(getStringValue(payload, "access_mode")),
		Confidence:      getDoubleValue(payload, "confidence"),
		Trust:           getDoubleValue(payload, "trust"),
		Retracted:       getBoolValue(payload, "retracted"),
	}

	if createdAt, err := time.Parse(time.RFC3339, getStringValue(payload, "created_at")); err == nil {
		doc.CreatedAt = createdAt
	}
	if lastSeenAt, err := time.Parse(time.RFC3339, getStringValue(payload, "last_seen_at")); err == nil {
		doc.LastSeenAt = lastSeenAt
	}

	if objectsJSON := getStringValue(payload, "objects_json"); objectsJSON != "" {
		if err := json.Unmarshal([]byte(objectsJSON), &doc.Objects); err != nil {
			return nil, fmt.Errorf("unmarshaling bound objects: %w", err)
		}
	}

	if aclValue, ok := payload["acl"]; ok {
		for _, subject := range aclValue.GetListValue().GetValues() {
			if s := subject.GetStringValue(); s != "" {
				doc.ACL = append(doc.ACL, s)
			}
		}
	}

	if vectors != nil {
		if vec := vectors.GetVector(); vec != nil {
			doc.Embedding = vec.Data
		}
	}

	return doc, nil
}

// keywordCondition builds an exact keyword match condition.
func keywordCondition(key, keyword string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: keyword},
				},
			},
		},
	}
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func getDoubleValue(payload map[string]*pb.Value, key string) float64 {
	if v, ok := payload[key]; ok {
		return v.GetDoubleValue()
	}
	return 0
}

func getBoolValue(payload map[string]*pb.Value, key string) bool {
	if v, ok := payload[key]; ok {
		return v.GetBoolValue()
	}
	return false
}
