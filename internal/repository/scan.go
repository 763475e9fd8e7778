package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"threatscan/internal/apperr"
	"threatscan/internal/models"
)

type ScanRepository interface {
	SaveScan(scan *models.ScanResult) error
	ListScans() ([]*models.ScanSummary, error)
	GetScanByID(id int64) (*models.ScanResult, error)
}

type scanRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewScanRepository(db *sqlx.DB, logger *zap.Logger) ScanRepository {
	return &scanRepository{db: db, logger: logger}
}

// SaveScan inserts an immutable scan record. The assigned id and timestamp
// are written back into scan.
func (r *scanRepository) SaveScan(scan *models.ScanResult) error {
	query := `INSERT INTO scan_results (input_type, raw_name, content, is_malicious, threat_type, threat_score, binary_score, tokens)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	return r.db.QueryRowx(query, scan.InputType, scan.RawName, scan.Content, scan.IsMalicious,
		scan.ThreatType, scan.ThreatScore, scan.BinaryScore, scan.Tokens).StructScan(scan)
}

// ListScans returns scan summaries without the stored content, newest first.
func (r *scanRepository) ListScans() ([]*models.ScanSummary, error) {
	var scans []*models.ScanSummary
	query := `SELECT id, input_type, raw_name, threat_type, is_malicious, created_at
	          FROM scan_results ORDER BY created_at DESC`
	if err := r.db.Select(&scans, query); err != nil {
		return nil, err
	}
	return scans, nil
}

// GetScanByID returns the full scan record for an id.
func (r *scanRepository) GetScanByID(id int64) (*models.ScanResult, error) {
	var scan models.ScanResult
	query := `SELECT id, input_type, raw_name, content, is_malicious, threat_type, threat_score, binary_score, tokens, created_at
	          FROM scan_results WHERE id = $1`
	err := r.db.Get(&scan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "scan %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}
