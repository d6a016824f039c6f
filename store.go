// Persistence for the numeric output artifacts. The
// SweepTable, the scaling fit and the oscillation series are stored as
// flat numeric rows in SQLite for the downstream plot/report
// consumers, with CSV writers for the same rows as the lightweight
// interchange format.
package primebench

import (
	"fmt"
	"io"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection for result persistence.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweep_results (
		sigma_idx INTEGER NOT NULL,
		t_idx INTEGER NOT NULL,
		t REAL NOT NULL,
		sigma REAL NOT NULL,
		value REAL NOT NULL,
		err_estimate REAL NOT NULL,
		upper REAL NOT NULL,
		nodes INTEGER NOT NULL,
		PRIMARY KEY (sigma_idx, t_idx)
	);

	CREATE TABLE IF NOT EXISTS fit_results (
		sigma REAL PRIMARY KEY,
		c_fit REAL NOT NULL,
		c_theory REAL NOT NULL,
		residual REAL NOT NULL,
		exponent REAL NOT NULL,
		exponent_theory REAL NOT NULL,
		r_squared REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fit_meta (
		key TEXT PRIMARY KEY,
		value REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS oscillation (
		t REAL PRIMARY KEY,
		osc REAL NOT NULL,
		rel_osc REAL NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveSweep writes the full table (full replace).
func (s *Store) SaveSweep(tb *SweepTable) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sweep_results"); err != nil {
		return err
	}

	stmt := `INSERT INTO sweep_results
		(sigma_idx, t_idx, t, sigma, value, err_estimate, upper, nodes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	n := len(tb.TValues)
	for i, e := range tb.Entries {
		if _, err := tx.Exec(stmt, i/n, i%n, e.T, e.Sigma,
			e.Result.Value, e.Result.ErrEstimate, e.Result.Upper, e.Result.Nodes); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type sweepRow struct {
	SigmaIdx    int     `db:"sigma_idx"`
	TIdx        int     `db:"t_idx"`
	T           float64 `db:"t"`
	Sigma       float64 `db:"sigma"`
	Value       float64 `db:"value"`
	ErrEstimate float64 `db:"err_estimate"`
	Upper       float64 `db:"upper"`
	Nodes       int     `db:"nodes"`
}

// LoadSweep reads the stored table back in grid order.
func (s *Store) LoadSweep() (*SweepTable, error) {
	var rows []sweepRow
	err := s.conn.Select(&rows, `SELECT sigma_idx, t_idx, t, sigma, value, err_estimate, upper, nodes
		FROM sweep_results ORDER BY sigma_idx, t_idx`)
	if err != nil {
		return nil, fmt.Errorf("load sweep: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("load sweep: no stored results")
	}

	var tValues, sigmaValues []float64
	entries := make([]SweepEntry, 0, len(rows))
	for _, r := range rows {
		if r.SigmaIdx == 0 {
			tValues = append(tValues, r.T)
		}
		if r.TIdx == 0 {
			sigmaValues = append(sigmaValues, r.Sigma)
		}
		entries = append(entries, SweepEntry{
			T:     r.T,
			Sigma: r.Sigma,
			Result: IntegrationResult{
				T:           r.T,
				Sigma:       r.Sigma,
				Value:       r.Value,
				ErrEstimate: r.ErrEstimate,
				Upper:       r.Upper,
				Nodes:       r.Nodes,
			},
		})
	}
	if len(entries) != len(tValues)*len(sigmaValues) {
		return nil, fmt.Errorf("load sweep: stored grid is ragged (%d entries for %d×%d)",
			len(entries), len(sigmaValues), len(tValues))
	}

	return newSweepTable(tValues, sigmaValues, entries), nil
}

// SaveAnalysis writes the scaling fit (full replace).
func (s *Store) SaveAnalysis(an Analysis) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fit_results"); err != nil {
		return err
	}
	for _, f := range an.Fits {
		if _, err := tx.Exec(`INSERT INTO fit_results
			(sigma, c_fit, c_theory, residual, exponent, exponent_theory, r_squared)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.Sigma, f.C, f.CTheory, f.Residual, f.Exponent, f.ExponentTheory, f.RSquared); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO fit_meta (key, value) VALUES ('amplitude', ?)`,
		an.Amplitude); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAnalysis reads the stored scaling fit back, σ-ordered.
func (s *Store) LoadAnalysis() (Analysis, error) {
	type fitRow struct {
		Sigma          float64 `db:"sigma"`
		CFit           float64 `db:"c_fit"`
		CTheory        float64 `db:"c_theory"`
		Residual       float64 `db:"residual"`
		Exponent       float64 `db:"exponent"`
		ExponentTheory float64 `db:"exponent_theory"`
		RSquared       float64 `db:"r_squared"`
	}

	var rows []fitRow
	if err := s.conn.Select(&rows, `SELECT sigma, c_fit, c_theory, residual, exponent, exponent_theory, r_squared
		FROM fit_results`); err != nil {
		return Analysis{}, fmt.Errorf("load analysis: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sigma < rows[j].Sigma })

	an := Analysis{Fits: make([]FitResult, 0, len(rows))}
	for _, r := range rows {
		an.Fits = append(an.Fits, FitResult{
			Sigma:          r.Sigma,
			C:              r.CFit,
			CTheory:        r.CTheory,
			Residual:       r.Residual,
			Exponent:       r.Exponent,
			ExponentTheory: r.ExponentTheory,
			RSquared:       r.RSquared,
		})
	}
	if err := s.conn.Get(&an.Amplitude, `SELECT value FROM fit_meta WHERE key = 'amplitude'`); err != nil {
		return Analysis{}, fmt.Errorf("load analysis amplitude: %w", err)
	}
	return an, nil
}

// SaveOscillation writes the residual series (full replace).
func (s *Store) SaveOscillation(o OscillationResult) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM oscillation"); err != nil {
		return err
	}
	for i, T := range o.TValues {
		if _, err := tx.Exec(`INSERT INTO oscillation (t, osc, rel_osc) VALUES (?, ?, ?)`,
			T, o.Osc[i], o.RelOsc[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// WriteSweepCSV emits the table as `T, sigma, I, err_estimate` rows.
func WriteSweepCSV(w io.Writer, tb *SweepTable) error {
	if _, err := fmt.Fprintln(w, "t,sigma,value,err_estimate"); err != nil {
		return err
	}
	for _, e := range tb.Entries {
		if _, err := fmt.Fprintf(w, "%g,%g,%.17g,%.17g\n",
			e.T, e.Sigma, e.Result.Value, e.Result.ErrEstimate); err != nil {
			return err
		}
	}
	return nil
}

// WriteFitCSV emits `sigma, C_fit, C_theory, residual` rows.
func WriteFitCSV(w io.Writer, an Analysis) error {
	if _, err := fmt.Fprintln(w, "sigma,c_fit,c_theory,residual"); err != nil {
		return err
	}
	for _, f := range an.Fits {
		if _, err := fmt.Fprintf(w, "%g,%.17g,%.17g,%.17g\n",
			f.Sigma, f.C, f.CTheory, f.Residual); err != nil {
			return err
		}
	}
	return nil
}
