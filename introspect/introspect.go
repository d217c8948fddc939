// Package introspect implements Bind: the one-time, transactional
// catalog walk that turns (dsn, schema, table) into a ScanDescriptor —
// snapshot, page estimate, and resolved column types — that every worker
// in the scan then shares read-only.
package introspect

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/pgerr"
	"github.com/danthegoodman1/pgscan/pgpool"
	"github.com/danthegoodman1/pgscan/typemap"
)

var logger = gologger.NewLogger()

// ColumnDescriptor is the resolved, immutable metadata for one projected
// column, produced once at Bind and shared read-only by every worker.
type ColumnDescriptor struct {
	Name                string
	RemoteTypeNamespace string
	RemoteTypeName      string
	RemoteTypeKind      typemap.RemoteKind
	TypeLength          int16
	TypeModifier        int32
	ElementTypeName     string
	ElementTypeKind     typemap.RemoteKind
	ElementTypeOID      uint32
	TargetType          typemap.TargetType
	NeedsTextCast       bool
}

// ScanDescriptor is the immutable, shared description of one scan,
// produced by Bind and consumed by the Coordinator and every Worker.
type ScanDescriptor struct {
	DSN             string
	Schema          string
	Table           string
	Columns         []ColumnDescriptor
	ApproxPageCount uint64
	SnapshotID      string
	InRecovery      bool
	PagesPerTask    uint64
}

const defaultPagesPerTask = 1000

// Bind opens a connection, starts a REPEATABLE READ READ ONLY transaction,
// reads the server's recovery state and exports a snapshot, resolves the
// relation's approximate page count and column types, and returns the
// resulting ScanDescriptor. The bind connection is closed before Bind
// returns; it plays no further part in the scan.
func Bind(ctx context.Context, dsn, schema, table string, pagesPerTask uint64) (*ScanDescriptor, error) {
	if pagesPerTask == 0 {
		pagesPerTask = defaultPagesPerTask
	}

	pool, err := pgpool.Connect(ctx, dsn)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.ConnectionError, err, "connecting for bind")
	}
	defer pool.Close()

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, pgerr.Wrap(pgerr.ConnectionError, err, "starting bind transaction")
	}
	defer tx.Rollback(ctx)

	desc := &ScanDescriptor{DSN: dsn, Schema: schema, Table: table, PagesPerTask: pagesPerTask}

	if err := loadSnapshot(ctx, tx, desc); err != nil {
		return nil, err
	}
	oid, err := loadRelation(ctx, tx, desc)
	if err != nil {
		return nil, err
	}
	if err := loadColumns(ctx, tx, oid, desc); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, pgerr.Wrap(pgerr.ConnectionError, err, "committing bind transaction")
	}

	logger.Debug().
		Str("schema", schema).Str("table", table).
		Uint64("approx_pages", desc.ApproxPageCount).
		Bool("in_recovery", desc.InRecovery).
		Int("columns", len(desc.Columns)).
		Msg("bind complete")

	return desc, nil
}

func loadSnapshot(ctx context.Context, tx pgx.Tx, desc *ScanDescriptor) error {
	if err := tx.QueryRow(ctx, "SELECT pg_is_in_recovery()").Scan(&desc.InRecovery); err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "querying recovery state")
	}
	if desc.InRecovery {
		logger.Warn().Str("schema", desc.Schema).Str("table", desc.Table).
			Msg("server is in recovery, scanning without a shared snapshot")
		return nil
	}
	if err := tx.QueryRow(ctx, "SELECT pg_export_snapshot()").Scan(&desc.SnapshotID); err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "exporting snapshot")
	}
	return nil
}

func loadRelation(ctx context.Context, tx pgx.Tx, desc *ScanDescriptor) (oid uint32, err error) {
	const q = `
SELECT pg_class.oid, GREATEST(relpages, 1)
FROM pg_class JOIN pg_namespace ON relnamespace = pg_namespace.oid
WHERE nspname = $1 AND relname = $2 AND relkind = 'r'`

	var approxPages int64
	err = tx.QueryRow(ctx, q, desc.Schema, desc.Table).Scan(&oid, &approxPages)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, pgerr.Newf(pgerr.TableNotFound, "relation %q.%q not found", desc.Schema, desc.Table)
		}
		return 0, pgerr.Wrap(pgerr.ConnectionError, err, "querying relation")
	}
	desc.ApproxPageCount = uint64(approxPages)
	return oid, nil
}

func loadColumns(ctx context.Context, tx pgx.Tx, oid uint32, desc *ScanDescriptor) error {
	const q = `
SELECT
    attname, atttypid, atttypmod, pg_namespace.nspname,
    pg_type.typname, pg_type.typlen, pg_type.typtype, pg_type.typelem,
    pg_type_elem.typname, pg_type_elem.typlen, pg_type_elem.typtype
FROM pg_attribute
    JOIN pg_type ON atttypid = pg_type.oid
    LEFT JOIN pg_type pg_type_elem ON pg_type.typelem = pg_type_elem.oid
    LEFT JOIN pg_namespace ON pg_type.typnamespace = pg_namespace.oid
WHERE attrelid = $1 AND attnum > 0
ORDER BY attnum`

	rows, err := tx.Query(ctx, q, oid)
	if err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "querying column catalog")
	}
	defer rows.Close()

	lookup := &enumLookup{tx: tx}

	for rows.Next() {
		var (
			name, namespace, typname, typtype string
			typoid, typelem                   uint32
			typmod                            int32
			typlen                            int16
			elemTypname, elemTyptype          *string
			elemTyplen                        *int16
		)
		if err := rows.Scan(&name, &typoid, &typmod, &namespace, &typname, &typlen, &typtype, &typelem,
			&elemTypname, &elemTyplen, &elemTyptype); err != nil {
			return pgerr.Wrap(pgerr.ConnectionError, err, "scanning column row")
		}

		meta := typemap.ColumnMeta{
			Name:         name,
			Namespace:    namespace,
			TypeName:     typname,
			TypeOID:      typoid,
			TypeModifier: typmod,
		}

		remoteKind := classifyKind(typname, typtype)
		meta.Kind = remoteKind

		col := ColumnDescriptor{
			Name:                name,
			RemoteTypeNamespace: namespace,
			RemoteTypeName:      typname,
			RemoteTypeKind:      remoteKind,
			TypeLength:          typlen,
			TypeModifier:        typmod,
		}

		if remoteKind == typemap.KindArray {
			elemName := ""
			if elemTypname != nil {
				elemName = *elemTypname
			}
			elemTT := ""
			if elemTyptype != nil {
				elemTT = *elemTyptype
			}
			meta.ElementTypeName = elemName
			meta.ElementTypeOID = typelem
			meta.ElementTypeKind = classifyKind(elemName, elemTT)
			col.ElementTypeName = elemName
			col.ElementTypeKind = meta.ElementTypeKind
			col.ElementTypeOID = typelem
		}

		target, needsCast, err := typemap.Map(ctx, lookup, meta)
		if err != nil {
			return err
		}
		col.TargetType = target
		col.NeedsTextCast = needsCast

		desc.Columns = append(desc.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return pgerr.Wrap(pgerr.ConnectionError, err, "iterating column rows")
	}
	if len(desc.Columns) == 0 {
		return pgerr.Newf(pgerr.EmptyRelation, "relation %q.%q has no columns", desc.Schema, desc.Table)
	}
	return nil
}

func classifyKind(typname, typtype string) typemap.RemoteKind {
	if typemap.IsArrayTypeName(typname) {
		return typemap.KindArray
	}
	if typtype == "e" {
		return typemap.KindEnum
	}
	return typemap.KindBase
}

type enumLookup struct {
	tx pgx.Tx
}

func (e *enumLookup) EnumLabels(ctx context.Context, namespace, name string) ([]string, error) {
	q := fmt.Sprintf(`SELECT unnest(enum_range(NULL::%s.%s))`, quoteIdent(namespace), quoteIdent(name))
	rows, err := e.tx.Query(ctx, q)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.ConnectionError, err, "querying enum_range")
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, pgerr.Wrap(pgerr.ConnectionError, err, "scanning enum label")
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func quoteIdent(ident string) string {
	return `"` + ident + `"`
}
