package domain

// AnalysisRecord is a single row of the results table. The table is
// written by an external ingestion pipeline and read-only here, so items
// stay opaque maps and pass through the API unmodified. Only the key
// attributes are known to this service.
type AnalysisRecord map[string]interface{}

// Key attribute names of the results table, as written by the ingestion
// pipeline. PatientPhone is the partition key, date the sort key.
const (
	ResultAttrPhone = "PatientPhone"
	ResultAttrDate  = "date"
)

// ResultsQuery is a lookup request against the results table.
// Date is optional; when empty, all dates for the phone are returned.
type ResultsQuery struct {
	PatientPhone string `json:"patientPhone" validate:"required"`
	Date         string `json:"date"`
}
