package db

import (
	"context"
	"database/sql"

	"mycelica/patchscan/internal/patch"
)

// insertNodes stores node records for scanID in id order
func insertNodes(ctx context.Context, tx *sql.Tx, scanID string, nodes []patch.Node) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (scan_id, id, line, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, scanID, n.ID, n.Line, n.Content); err != nil {
			return err
		}
	}
	return nil
}

// NodesForScan returns the node records of a stored scan ordered by id
func (d *DB) NodesForScan(ctx context.Context, scanID string) ([]patch.Node, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, line, content FROM nodes WHERE scan_id = ? ORDER BY id
	`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []patch.Node{}
	for rows.Next() {
		var n patch.Node
		if err := rows.Scan(&n.ID, &n.Line, &n.Content); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
