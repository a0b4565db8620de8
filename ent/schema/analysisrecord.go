package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnalysisRecord holds the schema definition for the AnalysisRecord
// entity — the per (match_id, requester_id) lifecycle row the
// AnalyzeMatch task mutates between stages. This schema documents the
// table shape internal/store/migrations/0001_init.up.sql creates;
// internal/store.RecordService queries it directly via database/sql
// (see DESIGN.md for why no ent runtime client is generated).
type AnalysisRecord struct {
	ent.Schema
}

// Fields of the AnalysisRecord.
func (AnalysisRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("match_id").
			Immutable(),
		field.String("requester_id").
			Immutable(),
		field.Enum("status").
			Values("pending", "processing", "analyzing", "delivering", "completed", "completed_no_delivery", "failed").
			Default("pending"),
		field.String("mode").
			Comment("classic | blindmode | arena | fallback"),
		field.String("algorithm_version").
			Optional().
			Nillable(),
		field.JSON("score_data", map[string]interface{}{}).
			Optional().
			Comment("Per-player PlayerScore rows"),
		field.Text("narrative_text").
			Optional().
			Nillable().
			Comment("Generated coaching narrative (full-text searchable)"),
		field.Text("tts_summary").
			Optional().
			Nillable(),
		field.String("emotion_tag").
			Optional().
			Nillable(),
		field.JSON("llm_metadata", map[string]interface{}{}).
			Optional(),
		field.JSON("degradation_flags", map[string]bool{}).
			Optional(),
		field.Text("error_message").
			Optional().
			Nillable(),
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("Soft delete for retention policy"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the AnalysisRecord.
func (AnalysisRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("match_id", "requester_id").Unique(),
		index.Fields("status"),
		index.Fields("created_at"),
		index.Fields("deleted_at").
			Annotations(entsql.IndexWhere("deleted_at IS NOT NULL")),
	}
}

// Annotations for PostgreSQL-specific features. The GIN full-text-search
// index over narrative_text is created via the embedded migration, not
// through ent codegen (see internal/store/migrations/0001_init.up.sql).
func (AnalysisRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
