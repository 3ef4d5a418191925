package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// CLI flags
var (
	facilitiesPath = flag.String("facilities", "", "Path to the facilities CSV")
	tenantsPath    = flag.String("tenants", "", "Path to the tenants CSV")
	accountsPath   = flag.String("accounts", "", "Path to the geocoded master accounts CSV")
	dsn            = flag.String("dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	dryRun         = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm        = flag.Bool("confirm", false, "Required to perform destructive replace")
	advisoryKey    = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
)

type Counts struct {
	Facilities int64
	Tenants    int64
	Accounts   int64
}

type input struct {
	facilities []FacilityCSV
	tenants    []TenantCSV
	accounts   []AccountCSV
}

var log = logging.Module("seed")

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	logging.Init("geo-tenants-seed", "")

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *facilitiesPath == "" && *tenantsPath == "" && *accountsPath == "" {
		log.Fatal("at least one of --facilities, --tenants, --accounts is required")
	}
	if *dsn == "" && !*dryRun {
		log.Fatal("--dsn not provided and DATABASE_URL not set")
	}

	in, err := loadInput()
	if err != nil {
		log.Fatalf("CSV error: %v", err)
	}

	if *dryRun {
		printPlan(in)
		log.Info("Dry run complete. No changes made.")
		return
	}

	if !*confirm {
		log.Fatal("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, in); err != nil {
		log.Fatal(err)
	}
	log.Info("Seed complete")
}

func loadInput() (input, error) {
	var in input
	var err error

	load := func(path string, parse func(io.Reader) error) error {
		if path == "" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := parse(f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	if err = load(*facilitiesPath, func(r io.Reader) (err error) {
		in.facilities, err = parseFacilities(r)
		return err
	}); err != nil {
		return in, err
	}
	if err = load(*tenantsPath, func(r io.Reader) (err error) {
		in.tenants, err = parseTenants(r)
		return err
	}); err != nil {
		return in, err
	}
	if err = load(*accountsPath, func(r io.Reader) (err error) {
		in.accounts, err = parseAccounts(r)
		return err
	}); err != nil {
		return in, err
	}

	if err := validateFacilities(in.facilities); err != nil {
		return in, err
	}
	// Site codes are only checked when both files are loaded together.
	var known map[string]struct{}
	if in.facilities != nil {
		known = make(map[string]struct{}, len(in.facilities))
		for _, f := range in.facilities {
			known[f.RD] = struct{}{}
		}
	}
	if err := validateTenants(in.tenants, known); err != nil {
		return in, err
	}
	return in, nil
}

func printPlan(in input) {
	fmt.Println("Plan preview:")
	if *facilitiesPath != "" {
		fmt.Printf("  tenants.facilities: replace with %d rows\n", len(in.facilities))
	}
	if *tenantsPath != "" {
		fmt.Printf("  tenants.tenants: replace with %d rows\n", len(in.tenants))
	}
	if *accountsPath != "" {
		fmt.Printf("  accounts.master_accounts: replace with %d rows\n", len(in.accounts))
	}
}

func run(ctx context.Context, in input) error {
	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
	}

	before, err := countAll(ctx, tx)
	if err != nil {
		return fmt.Errorf("pre-count: %w", err)
	}
	log.Infof("Before: facilities=%d tenants=%d accounts=%d", before.Facilities, before.Tenants, before.Accounts)

	if *facilitiesPath != "" {
		if err := replaceFacilities(ctx, tx, in.facilities); err != nil {
			return err
		}
	}
	if *tenantsPath != "" {
		if err := replaceTenants(ctx, tx, in.tenants); err != nil {
			return err
		}
	}
	if *accountsPath != "" {
		if err := replaceAccounts(ctx, tx, in.accounts); err != nil {
			return err
		}
	}

	after, err := countAll(ctx, tx)
	if err != nil {
		return fmt.Errorf("post-count: %w", err)
	}
	log.Infof("After:  facilities=%d tenants=%d accounts=%d", after.Facilities, after.Tenants, after.Accounts)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func countAll(ctx context.Context, tx *sql.Tx) (Counts, error) {
	var c Counts
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM tenants.facilities`).Scan(&c.Facilities); err != nil {
		return c, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM tenants.tenants`).Scan(&c.Tenants); err != nil {
		return c, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM accounts.master_accounts`).Scan(&c.Accounts); err != nil {
		return c, err
	}
	return c, nil
}

func replaceFacilities(ctx context.Context, tx *sql.Tx, rows []FacilityCSV) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tenants.facilities`); err != nil {
		return fmt.Errorf("delete tenants.facilities: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tenants.facilities (rd, latitude, longitude, acq_date) VALUES ($1,$2,$3,$4)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.RD, r.Latitude, r.Longitude, r.AcqDate); err != nil {
			return fmt.Errorf("insert facility '%s': %w", r.RD, err)
		}
	}
	return nil
}

func replaceTenants(ctx context.Context, tx *sql.Tx, rows []TenantCSV) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tenants.tenants`); err != nil {
		return fmt.Errorf("delete tenants.tenants: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tenants.tenants
		(id, site_code, move_in_date, moved_out, moved_out_at, bad_debt, write_offs)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.SiteCode, r.MoveInDate, r.MovedOut, r.MovedOutAt, r.BadDebt, r.WriteOffs); err != nil {
			return fmt.Errorf("insert tenant %d: %w", r.ID, err)
		}
	}
	return nil
}

func replaceAccounts(ctx context.Context, tx *sql.Tx, rows []AccountCSV) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts.master_accounts`); err != nil {
		return fmt.Errorf("delete accounts.master_accounts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO accounts.master_accounts
		(account_id, lat, lng, full_fips, updated_at) VALUES ($1,$2,$3,$4,now())`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.AccountID, r.Lat, r.Lng, r.FullFIPS); err != nil {
			return fmt.Errorf("insert account %d: %w", r.AccountID, err)
		}
	}
	return nil
}
