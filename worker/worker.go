// Package worker implements the per-worker scan loop: claim a page
// range, open a binary COPY stream for it, decode tuples off the wire
// into columnar chunks, and repeat until the coordinator runs dry.
package worker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/arrow/array"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"

	"github.com/danthegoodman1/pgscan/chunk"
	"github.com/danthegoodman1/pgscan/coordinator"
	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/introspect"
	"github.com/danthegoodman1/pgscan/pgerr"
	"github.com/danthegoodman1/pgscan/pgwire"
	"github.com/danthegoodman1/pgscan/typemap"
)

var logger = gologger.NewLogger()

// RowIDColumn is the sentinel projected-column index that resolves to
// the remote row's ctid, synthesized into a signed 64-bit row id.
const RowIDColumn = -1

// Config describes one worker's share of a scan: which columns to
// project (RowIDColumn for the row-id sentinel), the rendered predicate
// fragment (empty for an unfiltered scan), and where to publish chunks.
type Config struct {
	ID            string
	Descriptor    *introspect.ScanDescriptor
	Coordinator   *coordinator.Coordinator
	Projected     []int
	PredicateSQL  string
	ChunkCapacity int
	OnChunk       func(array.Record)
}

// Run drives one worker to completion: open its own connection, adopt
// the scan's snapshot, and loop over coordinator-assigned page ranges
// until none remain or ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	log := logger.With().Str("scan_worker_id", cfg.ID).Logger()

	colSpecs, err := columnSpecs(cfg.Descriptor, cfg.Projected)
	if err != nil {
		return err
	}

	connCfg, err := pgconn.ParseConfig(cfg.Descriptor.DSN)
	if err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "parsing worker dsn")
	}
	conn, err := pgconn.ConnectConfig(ctx, connCfg)
	if err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "connecting worker")
	}
	defer conn.Close(ctx)

	if err := execSimple(ctx, conn, "BEGIN TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY"); err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "starting worker transaction")
	}
	if !cfg.Descriptor.InRecovery {
		snapshotSQL := fmt.Sprintf("SET TRANSACTION SNAPSHOT '%s'", cfg.Descriptor.SnapshotID)
		if err := execSimple(ctx, conn, snapshotSQL); err != nil {
			return pgerr.Wrap(pgerr.ConnectionError, err, "adopting snapshot")
		}
	} else {
		log.Warn().Msg("scan snapshot unavailable, worker reads are best-effort consistent")
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		task, ok := cfg.Coordinator.NextTask()
		if !ok {
			return nil
		}

		log.Debug().Uint32("lo", task.Lo).Uint32("hi", task.Hi).Msg("claimed task")

		if err := scanTask(ctx, conn, cfg, colSpecs, task); err != nil {
			return err
		}
	}
}

func columnSpecs(desc *introspect.ScanDescriptor, projected []int) ([]chunk.ColumnSpec, error) {
	specs := make([]chunk.ColumnSpec, len(projected))
	for i, idx := range projected {
		if idx == RowIDColumn {
			specs[i] = chunk.ColumnSpec{Name: "rowid", Type: typemap.TargetType{Kind: typemap.I64}}
			continue
		}
		if idx < 0 || idx >= len(desc.Columns) {
			return nil, fmt.Errorf("projected column index %d out of range", idx)
		}
		col := desc.Columns[idx]
		specs[i] = chunk.ColumnSpec{Name: col.Name, Type: col.TargetType}
	}
	return specs, nil
}

// buildQuery renders the COPY statement for one page-range task,
// quoting every identifier and appending ::VARCHAR to any column that
// needs a server-side text cast.
func buildQuery(desc *introspect.ScanDescriptor, projected []int, predicateSQL string, task coordinator.PageRangeTask) string {
	cols := make([]string, len(projected))
	for i, idx := range projected {
		if idx == RowIDColumn {
			cols[i] = "ctid"
			continue
		}
		col := desc.Columns[idx]
		expr := quoteIdent(col.Name)
		if col.NeedsTextCast {
			expr += "::VARCHAR"
		}
		cols[i] = expr
	}

	return fmt.Sprintf(
		"COPY (SELECT %s FROM %s.%s WHERE ctid BETWEEN '(%d,0)'::tid AND '(%d,0)'::tid%s) TO STDOUT (FORMAT binary)",
		strings.Join(cols, ", "),
		quoteIdent(desc.Schema), quoteIdent(desc.Table),
		task.Lo, task.Hi,
		predicateSQL,
	)
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func scanTask(ctx context.Context, conn *pgconn.PgConn, cfg Config, colSpecs []chunk.ColumnSpec, task coordinator.PageRangeTask) error {
	sql := buildQuery(cfg.Descriptor, cfg.Projected, cfg.PredicateSQL, task)

	src := newCopySource(conn.Frontend())
	if err := src.start(sql); err != nil {
		return err
	}

	first, err := src.NextMessage()
	if err != nil {
		return pgerr.Wrap(pgerr.ProtocolError, err, "reading copy header")
	}
	consumed, err := pgwire.ParseHeader(first)
	if err != nil {
		return err
	}

	decoder := pgwire.NewDecoder(src)
	decoder.Reset(first, consumed)

	builder, err := chunk.NewBuilder(colSpecs, cfg.ChunkCapacity)
	if err != nil {
		return err
	}

	publish := func() error {
		if builder.NumRows() == 0 {
			return nil
		}
		rec := builder.Build()
		cfg.OnChunk(rec)
		builder, err = chunk.NewBuilder(colSpecs, cfg.ChunkCapacity)
		return err
	}

	for {
		if ctx.Err() != nil {
			builder.Release()
			return nil
		}

		count, err := decoder.FieldCount()
		if err != nil {
			builder.Release()
			return pgerr.Wrap(pgerr.ProtocolError, err, "reading tuple field count")
		}
		if count == -1 {
			break
		}

		for i := 0; i < int(count); i++ {
			data, isNull, err := decoder.Field()
			if err != nil {
				builder.Release()
				return pgerr.Wrap(pgerr.ProtocolError, err, "reading field")
			}
			if isNull {
				if err := builder.Append(i, nil); err != nil {
					builder.Release()
					return err
				}
				continue
			}
			value, err := decodeField(cfg.Descriptor, cfg.Projected[i], data)
			if err != nil {
				builder.Release()
				return err
			}
			if err := builder.Append(i, value); err != nil {
				builder.Release()
				return err
			}
		}

		if builder.NumRows() >= builder.Capacity() {
			if err := publish(); err != nil {
				return err
			}
		}
	}

	if err := drain(src); err != nil {
		builder.Release()
		return err
	}

	return publish()
}

// decodeField dispatches a raw field payload to the Wire Codec function
// matching the projected column's target type.
func decodeField(desc *introspect.ScanDescriptor, projectedIdx int, data []byte) (interface{}, error) {
	if projectedIdx == RowIDColumn {
		return pgwire.DecodeCtid(data)
	}
	col := desc.Columns[projectedIdx]
	if col.TargetType.Kind == typemap.LIST {
		return decodeArray(col, data)
	}
	if col.TargetType.Kind == typemap.F64 && col.RemoteTypeName == "numeric" {
		// Unbounded numeric maps to F64 but arrives in the numeric wire
		// layout, not as a float8.
		d, err := pgwire.DecodeNumeric(data)
		if err != nil {
			return nil, err
		}
		return d.Float64(), nil
	}
	return decodeByTarget(col.TargetType, data)
}

// decodeArray checks the wire envelope's element OID against the
// descriptor's actual element type OID — not derivable from TargetType
// alone, since the fallback-to-text path loses the original OID — then
// recursively decodes each element via the resolved element target type.
func decodeArray(col introspect.ColumnDescriptor, data []byte) (interface{}, error) {
	if col.TargetType.ElementType == nil {
		return nil, fmt.Errorf("LIST column %q missing element type", col.Name)
	}
	elems, err := pgwire.DecodeArrayEnvelope(data, col.ElementTypeOID)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(elems))
	for i, e := range elems {
		if e.IsNull {
			continue
		}
		v, err := decodeByTarget(*col.TargetType.ElementType, e.Data)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeByTarget(t typemap.TargetType, data []byte) (interface{}, error) {
	switch t.Kind {
	case typemap.BOOL:
		return pgwire.DecodeBool(data)
	case typemap.I16:
		return pgwire.DecodeInt16(data)
	case typemap.I32:
		return pgwire.DecodeInt32(data)
	case typemap.I64:
		return pgwire.DecodeInt64(data)
	case typemap.U32:
		return pgwire.DecodeUint32(data)
	case typemap.F32:
		return pgwire.DecodeFloat32(data)
	case typemap.F64:
		return pgwire.DecodeFloat64(data)
	case typemap.DECIMAL:
		return pgwire.DecodeNumeric(data)
	case typemap.TEXT:
		return pgwire.DecodeText(data), nil
	case typemap.JSONB:
		stripped, err := pgwire.DecodeJSONB(data)
		if err != nil {
			return nil, err
		}
		return string(stripped), nil
	case typemap.BLOB:
		return pgwire.DecodeBlob(data), nil
	case typemap.DATE:
		return pgwire.DecodeDate(data)
	case typemap.TIME:
		return pgwire.DecodeTime(data)
	case typemap.TIME_TZ:
		return pgwire.DecodeTimeTZ(data)
	case typemap.TIMESTAMP, typemap.TIMESTAMP_TZ:
		return pgwire.DecodeTimestamp(data)
	case typemap.INTERVAL:
		return pgwire.DecodeInterval(data)
	case typemap.UUID:
		return pgwire.DecodeUUID(data)
	case typemap.ENUM:
		label := pgwire.DecodeText(data)
		for ordinal, candidate := range t.EnumLabels {
			if candidate == label {
				return int32(ordinal), nil
			}
		}
		return nil, pgerr.Newf(pgerr.UnknownEnumLabel, "label %q not in mapped enum", label)
	default:
		return nil, fmt.Errorf("unmapped target kind %q", t.Kind)
	}
}

func execSimple(ctx context.Context, conn *pgconn.PgConn, sql string) error {
	_, err := conn.Exec(ctx, sql).ReadAll()
	return err
}

// copySource adapts the raw frontend protocol to pgwire.MessageSource,
// giving the decoder one CopyData payload at a time instead of buffering
// the whole result set the way pgconn.CopyTo does.
type copySource struct {
	fe *pgproto3.Frontend
}

func newCopySource(fe *pgproto3.Frontend) *copySource {
	return &copySource{fe: fe}
}

func (c *copySource) start(sql string) error {
	c.fe.Send(&pgproto3.Query{String: sql})
	return c.fe.Flush()
}

func (c *copySource) NextMessage() ([]byte, error) {
	for {
		msg, err := c.fe.Receive()
		if err != nil {
			return nil, err
		}
		switch m := msg.(type) {
		case *pgproto3.CopyOutResponse:
			continue
		case *pgproto3.CopyData:
			return m.Data, nil
		case *pgproto3.CopyDone:
			continue
		case *pgproto3.CommandComplete:
			continue
		case *pgproto3.ReadyForQuery:
			return nil, io.EOF
		case *pgproto3.ErrorResponse:
			return nil, pgerr.Newf(pgerr.ConnectionError, "server error during copy: %s", m.Message)
		default:
			continue
		}
	}
}

// drain reads and discards protocol messages until the server reports
// ReadyForQuery, resynchronizing the connection for the next task's COPY.
func drain(src *copySource) error {
	for {
		_, err := src.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pgerr.Wrap(pgerr.ProtocolError, err, "draining copy stream")
		}
	}
}
