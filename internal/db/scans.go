package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"mycelica/patchscan/internal/patch"
)

// ErrScanNotFound is returned when a scan id has no row
var ErrScanNotFound = errors.New("scan not found")

// SaveScan stores res under a new scan id in one transaction and returns the id
func (d *DB) SaveScan(ctx context.Context, source string, res *patch.Result) (string, error) {
	id := uuid.NewString()

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scans (id, source, created_at, node_count, connection_count)
		VALUES (?, ?, ?, ?, ?)
	`, id, source, time.Now().UnixMilli(), len(res.Nodes), len(res.Connections)); err != nil {
		return "", fmt.Errorf("inserting scan: %w", err)
	}

	if err := insertNodes(ctx, tx, id, res.Nodes); err != nil {
		return "", fmt.Errorf("inserting nodes: %w", err)
	}
	if err := insertConnections(ctx, tx, id, res.Connections); err != nil {
		return "", fmt.Errorf("inserting connections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing scan: %w", err)
	}

	d.logger.Info("scan stored", "scan_id", id, "source", source,
		"nodes", len(res.Nodes), "connections", len(res.Connections))
	return id, nil
}

// scanRecord scans a row into a ScanRecord. The row must have all 5 columns in standard order.
func scanRecord(scanner interface{ Scan(dest ...any) error }) (ScanRecord, error) {
	var s ScanRecord
	err := scanner.Scan(&s.ID, &s.Source, &s.CreatedAt, &s.NodeCount, &s.ConnectionCount)
	return s, err
}

// ListScans returns stored scans, newest first
func (d *DB) ListScans(ctx context.Context) ([]ScanRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, source, created_at, node_count, connection_count
		FROM scans ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []ScanRecord{}
	for rows.Next() {
		s, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// GetScan returns the scan row for id, or ErrScanNotFound
func (d *DB) GetScan(ctx context.Context, id string) (*ScanRecord, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, source, created_at, node_count, connection_count
		FROM scans WHERE id = ?
	`, id)
	s, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LatestScan returns the most recent scan of source, or ErrScanNotFound
func (d *DB) LatestScan(ctx context.Context, source string) (*ScanRecord, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, source, created_at, node_count, connection_count
		FROM scans WHERE source = ? ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, source)
	s, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no scans of %s", ErrScanNotFound, source)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScan rebuilds the scan result stored under id
func (d *DB) LoadScan(ctx context.Context, id string) (*patch.Result, error) {
	if _, err := d.GetScan(ctx, id); err != nil {
		return nil, err
	}
	nodes, err := d.NodesForScan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	conns, err := d.ConnectionsForScan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading connections: %w", err)
	}
	return &patch.Result{Nodes: nodes, Connections: conns}, nil
}

// DeleteScan removes a scan; its nodes and connections cascade
func (d *DB) DeleteScan(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting scan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	return nil
}

// ResolveScanID accepts a full scan id or a unique prefix of at least 6 characters
func (d *DB) ResolveScanID(ctx context.Context, ref string) (string, error) {
	if s, err := d.GetScan(ctx, ref); err == nil {
		return s.ID, nil
	}
	if len(ref) < 6 || strings.Trim(ref, "0123456789abcdef-") != "" {
		return "", fmt.Errorf("%w: %s", ErrScanNotFound, ref)
	}

	rows, err := d.conn.QueryContext(ctx, `SELECT id FROM scans WHERE id LIKE ? LIMIT 2`, ref+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrScanNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous scan reference '%s', use a longer prefix", ref)
	}
}
