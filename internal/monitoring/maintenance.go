package monitoring

import (
	"database/sql"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Maintenance runs periodic housekeeping on the database: a nightly
// VACUUM and a row-count snapshot in the log.
type Maintenance struct {
	db   *sql.DB
	cron *cron.Cron
}

// NewMaintenance creates a new maintenance runner.
func NewMaintenance(db *sql.DB) *Maintenance {
	return &Maintenance{db: db, cron: cron.New()}
}

// Start schedules the nightly job and runs one stats snapshot
// immediately so the log shows the store state at boot.
func (m *Maintenance) Start() error {
	if _, err := m.cron.AddFunc("0 3 * * *", m.run); err != nil {
		return err
	}
	m.cron.Start()
	m.logStats()
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) run() {
	if _, err := m.db.Exec("VACUUM"); err != nil {
		log.Error().Err(err).Msg("Database VACUUM failed")
	}
	m.logStats()
}

func (m *Maintenance) logStats() {
	var users, tasks, comments int
	row := m.db.QueryRow("SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM tasks), (SELECT COUNT(*) FROM comments)")
	if err := row.Scan(&users, &tasks, &comments); err != nil {
		log.Error().Err(err).Msg("Failed to collect store stats")
		return
	}
	log.Info().Int("users", users).Int("tasks", tasks).Int("comments", comments).Msg("Store stats")
}
