package snowapi

import (
	"context"
	"sync"
)

// partitionFetchFunc retrieves the rows of one partition (index >= 1;
// partition 0 always arrives with the submission response).
type partitionFetchFunc func(ctx context.Context, index int) ([][]*string, error)

// Result is a query's decoded result set. Depending on how it was
// built, it is either fully materialized (single-thread and threaded
// strategies) or lazily fetches partitions on iteration (streaming).
type Result struct {
	rowTypes      []RowType
	columnIndex   map[string]int
	partitionInfo []PartitionInfo

	// materialized holds every row, already concatenated in partition
	// order, when the Result was built eagerly.
	materialized []*Row

	// streaming state; nil for a materialized Result.
	stream *streamState
}

type streamState struct {
	mu          sync.Mutex
	fetch       partitionFetchFunc
	partitions  int
	nextPart    int
	currentRows [][]*string
	currentIdx  int
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
}

func newEmptyResult() *Result {
	return &Result{columnIndex: map[string]int{}}
}

func buildColumnIndex(rowTypes []RowType) map[string]int {
	idx := make(map[string]int, len(rowTypes))
	for i, rt := range rowTypes {
		idx[normalizeColumnName(rt.Name)] = i
	}
	return idx
}

// newMaterializedResult concatenates partitions (already fetched, in
// index order) with partition 0 into a fully in-memory Result.
func newMaterializedResult(rowTypes []RowType, partitionInfo []PartitionInfo, partitionRows [][][]*string) *Result {
	columnIndex := buildColumnIndex(rowTypes)

	var rows []*Row
	for _, part := range partitionRows {
		for _, cells := range part {
			rows = append(rows, newRow(rowTypes, columnIndex, cells))
		}
	}

	return &Result{
		rowTypes:      rowTypes,
		columnIndex:   columnIndex,
		partitionInfo: partitionInfo,
		materialized:  rows,
	}
}

// newStreamingResult wraps partition 0's rows plus a lazy fetcher for
// partitions 1..N-1, fetched strictly on demand as iteration reaches them.
func newStreamingResult(ctx context.Context, rowTypes []RowType, partitionInfo []PartitionInfo, partitionCount int, partition0 [][]*string, fetch partitionFetchFunc) *Result {
	columnIndex := buildColumnIndex(rowTypes)
	streamCtx, cancel := context.WithCancel(ctx)

	return &Result{
		rowTypes:      rowTypes,
		columnIndex:   columnIndex,
		partitionInfo: partitionInfo,
		stream: &streamState{
			fetch:       fetch,
			partitions:  partitionCount,
			nextPart:    1,
			currentRows: partition0,
			currentIdx:  0,
			ctx:         streamCtx,
			cancel:      cancel,
		},
	}
}

// ColumnNames returns column names in metadata order.
func (r *Result) ColumnNames() []string {
	names := make([]string, len(r.rowTypes))
	for i, rt := range r.rowTypes {
		names[i] = rt.Name
	}
	return names
}

// Partitions returns the Service-reported per-partition metadata.
func (r *Result) Partitions() []PartitionInfo { return r.partitionInfo }

// IsStreaming reports whether this Result fetches lazily.
func (r *Result) IsStreaming() bool { return r.stream != nil }

// RowCount returns the number of rows for a materialized Result. It is
// undefined (returns -1) for a streaming Result, whose size is not known
// until fully iterated.
func (r *Result) RowCount() int {
	if r.stream != nil {
		return -1
	}
	return len(r.materialized)
}

// Row returns the row at index i of a materialized Result.
func (r *Result) Row(i int) (*Row, error) {
	if r.stream != nil {
		return nil, newRequestError("Row(i) is not available on a streaming Result; use Next", nil)
	}
	if i < 0 || i >= len(r.materialized) {
		return nil, newRequestError("row index out of range", map[string]any{"index": i, "count": len(r.materialized)})
	}
	return r.materialized[i], nil
}

// Rows returns every row of a materialized Result, in order.
func (r *Result) Rows() []*Row { return r.materialized }

// Next advances a streaming Result and returns its next row. It
// reports ok=false once every partition has been exhausted, with err
// nil in that case. A failure fetching a partition surfaces from
// whichever Next call first needed that partition.
func (r *Result) Next() (row *Row, ok bool, err error) {
	if r.stream == nil {
		return nil, false, newRequestError("Next is only available on a streaming Result", nil)
	}

	s := r.stream
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.closed {
			return nil, false, nil
		}
		if s.currentIdx < len(s.currentRows) {
			cells := s.currentRows[s.currentIdx]
			s.currentIdx++
			return newRow(r.rowTypes, r.columnIndex, cells), true, nil
		}
		if s.nextPart >= s.partitions {
			return nil, false, nil
		}

		rows, err := s.fetch(s.ctx, s.nextPart)
		if err != nil {
			return nil, false, err
		}
		s.nextPart++
		s.currentRows = rows
		s.currentIdx = 0
	}
}

// Close releases resources held by a streaming Result and cancels any
// in-flight or future partition fetch.
func (r *Result) Close() error {
	if r.stream == nil {
		return nil
	}
	s := r.stream
	// Cancel before taking the lock: Next holds it for the whole of a
	// partition fetch, so cancelling under the lock would wait for that
	// fetch to finish instead of interrupting it.
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
