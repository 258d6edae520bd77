package calibration

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"polyfield-edm/internal/geometry"
)

//go:embed schema.sql
var schemaSQL string

// SQLitePersister is the Persister backend used in production: an
// embedded schema applied at open time, a flat table with one row per
// device.
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLitePersister opens (and if needed creates) the SQLite-backed
// calibration store at path. Use ":memory:" for ephemeral/test stores.
func OpenSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("calibration: open sqlite store: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("calibration: apply schema: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

func (s *SQLitePersister) Close() error { return s.db.Close() }

func (s *SQLitePersister) Save(c Calibration) error {
	var lastCentre sql.NullString
	if !c.LastCentreAt.IsZero() {
		lastCentre = sql.NullString{String: c.LastCentreAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	var edgeMeasured, edgeDiff, edgeTol sql.NullFloat64
	var edgeInTol sql.NullInt64
	if c.Edge != nil {
		edgeMeasured = sql.NullFloat64{Float64: c.Edge.MeasuredRadius, Valid: true}
		edgeDiff = sql.NullFloat64{Float64: c.Edge.DifferenceMm, Valid: true}
		edgeTol = sql.NullFloat64{Float64: c.Edge.ToleranceMm, Valid: true}
		edgeInTol = sql.NullInt64{Int64: boolToInt(c.Edge.InTolerance), Valid: true}
	}

	var sectorX, sectorY sql.NullFloat64
	if c.SectorPoint != nil {
		sectorX = sql.NullFloat64{Float64: c.SectorPoint.X, Valid: true}
		sectorY = sql.NullFloat64{Float64: c.SectorPoint.Y, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO calibration (
			device_id, circle_type, target_radius_m, station_x_m, station_y_m,
			centre_set, last_centre_at,
			edge_measured_m, edge_diff_mm, edge_tolerance_mm, edge_in_tolerance,
			sector_x_m, sector_y_m
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			circle_type=excluded.circle_type,
			target_radius_m=excluded.target_radius_m,
			station_x_m=excluded.station_x_m,
			station_y_m=excluded.station_y_m,
			centre_set=excluded.centre_set,
			last_centre_at=excluded.last_centre_at,
			edge_measured_m=excluded.edge_measured_m,
			edge_diff_mm=excluded.edge_diff_mm,
			edge_tolerance_mm=excluded.edge_tolerance_mm,
			edge_in_tolerance=excluded.edge_in_tolerance,
			sector_x_m=excluded.sector_x_m,
			sector_y_m=excluded.sector_y_m
	`,
		c.DeviceID, string(c.CircleType), c.TargetRadius, c.Station.X, c.Station.Y,
		boolToInt(c.CentreSet), lastCentre,
		edgeMeasured, edgeDiff, edgeTol, edgeInTol,
		sectorX, sectorY,
	)
	if err != nil {
		return fmt.Errorf("calibration: save %s: %w", c.DeviceID, err)
	}
	return nil
}

func (s *SQLitePersister) Load(deviceID string) (Calibration, bool, error) {
	row := s.db.QueryRow(`
		SELECT device_id, circle_type, target_radius_m, station_x_m, station_y_m,
			centre_set, last_centre_at,
			edge_measured_m, edge_diff_mm, edge_tolerance_mm, edge_in_tolerance,
			sector_x_m, sector_y_m
		FROM calibration WHERE device_id = ?`, deviceID)
	c, ok, err := scanCalibration(row)
	if err != nil || !ok {
		return Calibration{}, false, err
	}
	return c, true, nil
}

func (s *SQLitePersister) LoadAll() (map[string]Calibration, error) {
	rows, err := s.db.Query(`
		SELECT device_id, circle_type, target_radius_m, station_x_m, station_y_m,
			centre_set, last_centre_at,
			edge_measured_m, edge_diff_mm, edge_tolerance_mm, edge_in_tolerance,
			sector_x_m, sector_y_m
		FROM calibration`)
	if err != nil {
		return nil, fmt.Errorf("calibration: load all: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Calibration)
	for rows.Next() {
		c, ok, err := scanCalibration(rows)
		if err != nil {
			return nil, err
		}
		if !ok {
			// unknown circle type: silently discard the record rather than
			// fail the whole reload.
			continue
		}
		out[c.DeviceID] = c
	}
	return out, rows.Err()
}

func (s *SQLitePersister) Delete(deviceID string) error {
	_, err := s.db.Exec(`DELETE FROM calibration WHERE device_id = ?`, deviceID)
	if err != nil {
		return fmt.Errorf("calibration: delete %s: %w", deviceID, err)
	}
	return nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows, which present
// identically-shaped but differently-typed Scan methods.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalibration(row rowScanner) (Calibration, bool, error) {
	var (
		deviceID, circleType              string
		targetRadius, stationX, stationY  float64
		centreSetInt                      int64
		lastCentre                        sql.NullString
		edgeMeasured, edgeDiff, edgeTol   sql.NullFloat64
		edgeInTol                         sql.NullInt64
		sectorX, sectorY                  sql.NullFloat64
	)
	err := row.Scan(
		&deviceID, &circleType, &targetRadius, &stationX, &stationY,
		&centreSetInt, &lastCentre,
		&edgeMeasured, &edgeDiff, &edgeTol, &edgeInTol,
		&sectorX, &sectorY,
	)
	if err == sql.ErrNoRows {
		return Calibration{}, false, nil
	}
	if err != nil {
		return Calibration{}, false, fmt.Errorf("calibration: scan row: %w", err)
	}

	ct := CircleType(circleType)
	if _, known := TargetRadius(ct); !known {
		return Calibration{}, false, nil
	}

	c := Calibration{
		DeviceID:     deviceID,
		CircleType:   ct,
		TargetRadius: targetRadius,
		Station:      geometry.Point{X: stationX, Y: stationY},
		CentreSet:    centreSetInt != 0,
	}
	if lastCentre.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastCentre.String); err == nil {
			c.LastCentreAt = t
		}
	}
	if edgeMeasured.Valid && edgeDiff.Valid && edgeTol.Valid && edgeInTol.Valid {
		c.Edge = &EdgeVerification{
			MeasuredRadius: edgeMeasured.Float64,
			DifferenceMm:   edgeDiff.Float64,
			ToleranceMm:    edgeTol.Float64,
			InTolerance:    edgeInTol.Int64 != 0,
		}
	}
	if sectorX.Valid && sectorY.Valid {
		p := geometry.Point{X: sectorX.Float64, Y: sectorY.Float64}
		c.SectorPoint = &p
	}
	return c, true, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
