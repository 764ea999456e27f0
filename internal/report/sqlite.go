package report

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS Info (
		MzDeconVersion TEXT
	);

	CREATE TABLE IF NOT EXISTS Precursor (
		PrecursorId INTEGER PRIMARY KEY,
		SpecIndex INTEGER,
		Ms1Index INTEGER,
		OriginalMz DOUBLE,
		MonoisotopicMz DOUBLE,
		RefinedMz DOUBLE,
		NeutralMass DOUBLE,
		Charge INTEGER,
		Score DOUBLE,
		Intensity DOUBLE,
		SignalToNoise DOUBLE,
		MissedPeaks INTEGER,
		PeakIndex INTEGER,
		Model TEXT
	);

	CREATE TABLE IF NOT EXISTS EnvelopePeak (
		PrecursorId INTEGER REFERENCES Precursor(PrecursorId),
		Position INTEGER,
		Mz DOUBLE,
		Intensity DOUBLE
	);

	CREATE TABLE IF NOT EXISTS Feature (
		Ms1Index INTEGER,
		NeutralMass DOUBLE,
		Charge INTEGER,
		Intensity DOUBLE
	);
	`

// WriteSQLite writes r to a new SQLite database. An existing file is
// replaced. All rows are inserted in a single transaction.
func WriteSQLite(filename string, r *Report) error {
	if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old report: %w", err)
	}
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := insertReport(tx, r); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return db.Close()
}

func insertReport(tx *sql.Tx, r *Report) error {
	if _, err := tx.Exec(`INSERT INTO Info (MzDeconVersion) VALUES (?)`,
		r.MzDeconVersion); err != nil {
		return fmt.Errorf("failed to insert info: %w", err)
	}

	precStmt, err := tx.Prepare(`
		INSERT INTO Precursor (
			PrecursorId, SpecIndex, Ms1Index, OriginalMz, MonoisotopicMz,
			RefinedMz, NeutralMass, Charge, Score, Intensity, SignalToNoise,
			MissedPeaks, PeakIndex, Model
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare precursor statement: %w", err)
	}
	defer precStmt.Close()

	envStmt, err := tx.Prepare(`
		INSERT INTO EnvelopePeak (PrecursorId, Position, Mz, Intensity)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare envelope statement: %w", err)
	}
	defer envStmt.Close()

	featStmt, err := tx.Prepare(`
		INSERT INTO Feature (Ms1Index, NeutralMass, Charge, Intensity)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature statement: %w", err)
	}
	defer featStmt.Close()

	for i, p := range r.Precursors {
		id := i + 1
		if _, err := precStmt.Exec(id, p.SpecIndex, p.Ms1Index, p.OriginalMz,
			p.MonoisotopicMz, p.RefinedMz, p.NeutralMass, p.Charge, p.Score,
			p.Intensity, p.SignalToNoise, p.MissedPeaks, p.PeakIndex, p.Model); err != nil {
			return fmt.Errorf("failed to insert precursor %d: %w", p.SpecIndex, err)
		}
		for j, e := range p.Envelope {
			if _, err := envStmt.Exec(id, j, e.Mz, e.Intensity); err != nil {
				return fmt.Errorf("failed to insert envelope of precursor %d: %w",
					p.SpecIndex, err)
			}
		}
	}
	for _, f := range r.Features {
		if _, err := featStmt.Exec(f.Ms1Index, f.NeutralMass, f.Charge, f.Intensity); err != nil {
			return fmt.Errorf("failed to insert feature of spectrum %d: %w", f.Ms1Index, err)
		}
	}
	return nil
}
