package store

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

func init() {
	sql.Register("sqlite3_adr", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("upperbound", upperbound, true)
		},
	})
}

// schemaDDL creates the four relations and their indices exactly as
// described in §4.1.2/§6.2: obj, dep, ident, dct, plus the bbox/uuid/ident
// indices. tmpobj/tmpdep scratch tables and the transitive-closure
// materialisations (rowiddep/rowiddeptc/deptc) are named as optional
// tooling in §6.2 and are not created here — nothing in this store reaches
// for them.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS obj (
	uuid0 INTEGER NOT NULL, uuid1 INTEGER NOT NULL, uuid2 INTEGER NOT NULL, uuid3 INTEGER NOT NULL,
	type INTEGER NOT NULL,
	swlat INTEGER NOT NULL, swlon INTEGER NOT NULL, nelat INTEGER NOT NULL, nelon INTEGER NOT NULL,
	mintime INTEGER NOT NULL, maxtime INTEGER NOT NULL,
	modified INTEGER NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (uuid0, uuid1, uuid2, uuid3)
);
CREATE INDEX IF NOT EXISTS obj_bbox ON obj (swlat, nelat, swlon, nelon);
CREATE INDEX IF NOT EXISTS obj_time ON obj (mintime, maxtime);

CREATE TABLE IF NOT EXISTS dep (
	uuid0 INTEGER NOT NULL, uuid1 INTEGER NOT NULL, uuid2 INTEGER NOT NULL, uuid3 INTEGER NOT NULL,
	uuidd0 INTEGER NOT NULL, uuidd1 INTEGER NOT NULL, uuidd2 INTEGER NOT NULL, uuidd3 INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS dep_uuid ON dep (uuid0, uuid1, uuid2, uuid3);
CREATE INDEX IF NOT EXISTS dep_uuidd ON dep (uuidd0, uuidd1, uuidd2, uuidd3);

CREATE TABLE IF NOT EXISTS ident (
	uuid0 INTEGER NOT NULL, uuid1 INTEGER NOT NULL, uuid2 INTEGER NOT NULL, uuid3 INTEGER NOT NULL,
	ident TEXT NOT NULL COLLATE NOCASE
);
CREATE INDEX IF NOT EXISTS ident_ident ON ident (ident COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS dct (
	uuida0 INTEGER NOT NULL, uuida1 INTEGER NOT NULL, uuida2 INTEGER NOT NULL, uuida3 INTEGER NOT NULL,
	uuidb0 INTEGER NOT NULL, uuidb1 INTEGER NOT NULL, uuidb2 INTEGER NOT NULL, uuidb3 INTEGER NOT NULL,
	swlat INTEGER NOT NULL, swlon INTEGER NOT NULL, nelat INTEGER NOT NULL, nelon INTEGER NOT NULL,
	data BLOB NOT NULL,
	UNIQUE (uuida0, uuida1, uuida2, uuida3, uuidb0, uuidb1, uuidb2, uuidb3)
);
CREATE INDEX IF NOT EXISTS dct_a ON dct (uuida0, uuida1, uuida2, uuida3);
CREATE INDEX IF NOT EXISTS dct_b ON dct (uuidb0, uuidb1, uuidb2, uuidb3);
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// upperbound implements the sole user-defined SQL function named in §6.2:
// it returns s with its last byte incremented, enabling a starts_with
// query as the half-open range [s, upperbound(s)). mattn/go-sqlite3
// registers this per-connection via sql.Register in init(), since
// database/sql has no per-DB hook for custom functions.
func upperbound(s string) string {
	b := []byte(s)
	if len(b) == 0 {
		return s
	}
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
		b[i] = 0
	}
	// all bytes were 0xFF: no finite upper bound exists in byte order;
	// the caller's starts_with query degenerates to "s <= x" with no
	// upper bound, so return the original string doubled to still compare
	// greater than any string with s as a strict prefix for practical
	// input sizes.
	return s + s
}
