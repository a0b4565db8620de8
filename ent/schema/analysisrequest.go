package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnalysisRequest holds the schema definition for the AnalysisRequest
// entity — the Postgres-backed queue row a worker claims with
// FOR UPDATE SKIP LOCKED. This schema documents the table shape that
// internal/store/migrations/0001_init.up.sql creates and
// internal/store.QueueService queries directly via database/sql; no ent
// runtime client is generated against it (see DESIGN.md).
type AnalysisRequest struct {
	ent.Schema
}

// Fields of the AnalysisRequest.
func (AnalysisRequest) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("request_id").
			Unique().
			Immutable(),
		field.String("match_id").
			Immutable(),
		field.String("region").
			Immutable(),
		field.String("requester_id").
			Immutable(),
		field.String("interaction_token").
			Comment("Opaque token for the deferred-interaction reply"),
		field.String("application_id").
			Optional().
			Nillable(),
		field.Time("requested_at").
			Immutable(),
		field.JSON("user_profile", map[string]interface{}{}).
			Optional().
			Comment("Requester display preferences, for narration tone"),
		field.Time("claimed_at").
			Optional().
			Nillable(),
		field.String("claimed_by").
			Optional().
			Nillable().
			Comment("pod_id of the claiming worker, for orphan attribution"),
		field.Enum("status").
			Values("pending", "claimed", "done").
			Default("pending"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the AnalysisRequest.
func (AnalysisRequest) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "created_at"),
		index.Fields("claimed_at"),
	}
}
