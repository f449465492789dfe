package db

import (
	"context"
	"database/sql"

	"mycelica/patchscan/internal/patch"
)

// insertConnections stores connection records for scanID, seq preserving scan order
func insertConnections(ctx context.Context, tx *sql.Tx, scanID string, conns []patch.Connection) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO connections (scan_id, seq, line, source_node, source_port, dest_node, dest_port, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range conns {
		if _, err := stmt.ExecContext(ctx, scanID, i, c.Line,
			c.SourceNode, c.SourcePort, c.DestNode, c.DestPort, c.Raw); err != nil {
			return err
		}
	}
	return nil
}

// scanConnection scans a row into a Connection. The row must have the 6
// columns line, source_node, source_port, dest_node, dest_port, raw.
func scanConnection(scanner interface{ Scan(dest ...any) error }) (patch.Connection, error) {
	var c patch.Connection
	err := scanner.Scan(&c.Line, &c.SourceNode, &c.SourcePort, &c.DestNode, &c.DestPort, &c.Raw)
	return c, err
}

func (d *DB) queryConnections(ctx context.Context, query string, args ...any) ([]patch.Connection, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := []patch.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// ConnectionsForScan returns the connection records of a stored scan in scan order
func (d *DB) ConnectionsForScan(ctx context.Context, scanID string) ([]patch.Connection, error) {
	return d.queryConnections(ctx, `
		SELECT line, source_node, source_port, dest_node, dest_port, raw
		FROM connections WHERE scan_id = ? ORDER BY seq
	`, scanID)
}

// ConnectionsTouching returns connections of a stored scan whose source or
// destination is nodeID, in scan order
func (d *DB) ConnectionsTouching(ctx context.Context, scanID string, nodeID int) ([]patch.Connection, error) {
	return d.queryConnections(ctx, `
		SELECT line, source_node, source_port, dest_node, dest_port, raw
		FROM connections WHERE scan_id = ? AND (source_node = ? OR dest_node = ?) ORDER BY seq
	`, scanID, nodeID, nodeID)
}
