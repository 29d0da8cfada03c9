package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/danthegoodman1/icescore/gologger"
	// ensure "pgx" driver is loaded
	_ "github.com/jackc/pgx/v4/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	//go:embed *.sql
	migrations embed.FS

	ErrMigrationsNotRun = fmt.Errorf("not all migrations applied")

	logger = gologger.NewLogger()
)

func source() (migrate.EmbedFileSystemMigrationSource, migrate.MigrationSet) {
	return migrate.EmbedFileSystemMigrationSource{
			FileSystem: migrations,
			Root:       ".",
		}, migrate.MigrationSet{
			TableName: "migrations",
		}
}

// RunMigrations applies every pending migration of the run log schema.
func RunMigrations(crdbDsn string) (int, error) {
	db, err := sql.Open("pgx", crdbDsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	src, ms := source()
	n, err := ms.Exec(db, "postgres", src, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("error in migrate Exec: %w", err)
	}
	logger.Debug().Int("applied", n).Msg("ran migrations")
	return n, nil
}

func CheckMigrations(crdbDsn string) error {
	db, err := sql.Open("pgx", crdbDsn)
	if err != nil {
		return err
	}
	defer db.Close()
	src, ms := source()
	migration, _, err := ms.PlanMigration(db, "postgres", src, migrate.Up, 0)
	if err != nil {
		return err
	}
	if len(migration) > 0 {
		for _, mig := range migration {
			logger.Warn().Str("migrationID", mig.Id).Msg("missing migration")
		}
		return ErrMigrationsNotRun
	}
	return nil
}

// Planned lists the embedded migration ids in the order they apply.
func Planned() ([]string, error) {
	src, _ := source()
	ms, err := src.FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("error in FindMigrations: %w", err)
	}
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.Id
	}
	return ids, nil
}
