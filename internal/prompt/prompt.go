// Package prompt holds the fixed text context handed to the language model:
// the telemetry schema, the attribute notes and the stage prompt templates.
// Everything static is assembled once at construction; per-call methods only
// substitute the question/query/results.
package prompt

import (
	"fmt"
	"strings"
)

// Unanswerable is the marker the translation stage returns when the question
// cannot be answered from the schema. It travels between stages as ordinary
// data, never as an error.
const Unanswerable = "I don't know"

// Fallback is the phrase the assistant uses for questions it cannot answer.
const Fallback = "I don't have enough information to answer that question."

const schemaDDL = `CREATE TABLE telemetry_data (
    timestamp TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT,  -- Assuming 'value' can store text or numerical data
    calibrated_value TEXT,
    unit TEXT,
    c_func TEXT
);`

const attributeNotes = `1. timestamp: The date and time of the data entry.
2. name: The type of measurement or event recorded (e.g., uptime, eps_battery, software_ident, safe_mode, AMRAD_message).
3. value: The raw value of the measurement.
4. calibrated_value: A potentially processed or calibrated value (though this column seems mostly empty).
5. unit: The units associated with the values (e.g., seconds for time measurements).
6. c_func: Possibly a column for function or additional metadata.`

const systemPrompt = `You are an expert in satellite housekeeping data analysis. Your role is to assist users by answering questions about Amateur Radio Satellite data, including power levels, battery status, temperature, RSSI, system messages, and other relevant metrics. Use your knowledge to provide insightful answers and explanations about satellite operations and status. If you cannot answer a question, say "` + Fallback + `"`

// Builder produces the per-stage prompts. The translate and compose skeletons
// are rendered once in New; only the dynamic parts are substituted per call.
type Builder struct {
	translateTmpl string
	composeTmpl   string
}

func New() *Builder {
	translate := fmt.Sprintf(`### Task
Generate a SQL query to answer [QUESTION]%%[1]s[/QUESTION] about satellite housekeeping data.

## Database Schema:
%s

## Information about Data attributes:
%s

## Satellite Housekeeping Data Context:
This data represents various metrics and events from an Amateur Radio Satellite, including power levels, battery status, temperature, RSSI, and system messages.

## Instructions
- Provide a SQL query that answers the user's question about satellite housekeeping data.
- If you cannot answer the question with the available database schema, return '%s'.
- Focus on retrieving relevant data for satellite metrics, events, and status information.

### Answer
Given the database schema, here is the SQL query that answers [QUESTION]%%[1]s[/QUESTION]
Response only in [SQL] format and do not include any other information.`, schemaDDL, attributeNotes, Unanswerable)

	compose := fmt.Sprintf(`### Task
Generate a natural language response to the user's query about satellite housekeeping data based on the SQL query results.

### User Query
%%[1]s

### SQL Query
%%[2]s

### Query Results
%%[3]s

## Database Schema:
%s

## Information about Data attributes:
%s

## Instructions
- Provide a short, clear and concise, to the point answer to the user's query about satellite housekeeping data.
- Interpret the query results in the context of satellite operations and metrics.
- If specific data is requested, present it clearly and explain its significance.
- Avoid mentioning SQL or database operations in your response.
- If you cannot answer the question with the available data, say "%s"`, schemaDDL, attributeNotes, Fallback)

	return &Builder{translateTmpl: translate, composeTmpl: compose}
}

// System returns the conversational system instruction replayed at the front
// of every session's history.
func (b *Builder) System() string { return systemPrompt }

// Translate renders the question-to-SQL prompt.
func (b *Builder) Translate(question string) string {
	return fmt.Sprintf(b.translateTmpl, question)
}

// Compose renders the answer-phrasing prompt.
func (b *Builder) Compose(question, query, results string) string {
	return fmt.Sprintf(b.composeTmpl, question, query, results)
}

// CleanQuery normalizes a model-produced query: surrounding whitespace, code
// fences and [SQL] markers are stripped, everything else passes through
// verbatim (including malformed output).
func CleanQuery(raw string) string {
	q := strings.TrimSpace(raw)
	q = strings.TrimPrefix(q, "```sql")
	q = strings.TrimPrefix(q, "```")
	q = strings.TrimSuffix(q, "```")
	q = strings.TrimSpace(q)
	q = strings.TrimPrefix(q, "[SQL]")
	q = strings.TrimSuffix(q, "[/SQL]")
	return strings.TrimSpace(q)
}
