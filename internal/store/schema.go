package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions applied by ent's migrator on Open. Timestamps are unix
// milliseconds.
var (
	requestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp_ms", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "endpoint", Type: field.TypeString},
		{Name: "method", Type: field.TypeString},
		{Name: "status_code", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	requestEventsTable = &schema.Table{
		Name:       "request_events",
		Columns:    requestEventsColumns,
		PrimaryKey: []*schema.Column{requestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "requestevent_timestamp_ms", Columns: []*schema.Column{requestEventsColumns[2]}},
			{Name: "requestevent_session_id", Columns: []*schema.Column{requestEventsColumns[3]}},
		},
	}

	submissionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp_ms", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "request_name", Type: field.TypeString},
		{Name: "answers", Type: field.TypeJSON},
		{Name: "query_summary", Type: field.TypeString, Default: ""},
		{Name: "recommendations", Type: field.TypeJSON},
	}
	submissionsTable = &schema.Table{
		Name:       "submissions",
		Columns:    submissionsColumns,
		PrimaryKey: []*schema.Column{submissionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "submission_timestamp_ms", Columns: []*schema.Column{submissionsColumns[2]}},
		},
	}

	// Single row (id = 1) holding the next value of the shared sequence.
	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	tables = []*schema.Table{requestEventsTable, submissionsTable, globalSequenceTable}
)
