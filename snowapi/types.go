package snowapi

// RowType describes one column of a result set: its name, its
// Service-reported type tag, and (for fixed-point numerics) its scale.
type RowType struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Scale      int    `json:"scale"`
	Nullable   bool   `json:"nullable"`
	ByteLength int    `json:"byteLength"`
	Length     int    `json:"length"`
	Precision  int    `json:"precision"`
	Collation  string `json:"collation"`
}

// PartitionInfo mirrors one entry of the Service's partitionInfo array.
type PartitionInfo struct {
	RowCount         int  `json:"rowCount"`
	UncompressedSize int  `json:"uncompressedSize"`
	CompressedSize   *int `json:"compressedSize,omitempty"`
}

// resultSetMetaData is the metadata block of a submission response.
type resultSetMetaData struct {
	NumRows       int             `json:"numRows"`
	RowType       []RowType       `json:"rowType"`
	PartitionInfo []PartitionInfo `json:"partitionInfo"`
}

// submissionResponse is the JSON body returned by POST /api/v2/statements.
// ResultSetMetaData is a pointer because statements without a result
// set (e.g. DDL) omit it entirely.
type submissionResponse struct {
	StatementHandle   string             `json:"statementHandle"`
	ResultSetMetaData *resultSetMetaData `json:"resultSetMetaData"`
	Data              [][]*string        `json:"data"`
}

// partitionResponse is the JSON body returned by
// GET /api/v2/statements/<handle>?partition=<i>.
type partitionResponse struct {
	Data [][]*string `json:"data"`
}

// statementRequest is the JSON body POSTed to submit a statement.
type statementRequest struct {
	Statement string `json:"statement"`
	Warehouse string `json:"warehouse"`
}
