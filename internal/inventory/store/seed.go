package store

import (
	"context"
	"database/sql"
	"fmt"
)

// boardUnit pairs a unit code with its launch status.
type boardUnit struct {
	code   string
	status string
}

// defaultBoard is the project's launch inventory: ground-floor shops,
// floors 2-5 and private garage spots, with the sale statuses recorded at
// cutover.
var defaultBoard = []boardUnit{
	{"L01", "available"}, {"L02", "available"}, {"L03", "sold"},

	{"201", "sold"}, {"202", "sold"}, {"203", "available"}, {"204", "available"},
	{"205", "sold"}, {"206", "reserved"}, {"207", "reserved"}, {"208", "sold"},
	{"209", "sold"}, {"210", "sold"}, {"211", "available"}, {"212", "available"},
	{"213", "reserved"}, {"214", "sold"}, {"215", "sold"}, {"216", "available"},
	{"217", "available"}, {"218", "sold"},

	{"301", "sold"}, {"302", "sold"}, {"303", "available"}, {"304", "available"},
	{"305", "available"}, {"306", "available"}, {"307", "reserved"}, {"308", "available"},
	{"309", "available"}, {"310", "reserved"}, {"311", "sold"}, {"312", "reserved"},
	{"313", "available"}, {"314", "reserved"}, {"315", "available"}, {"316", "sold"},
	{"317", "available"}, {"318", "sold"},

	{"401", "sold"}, {"402", "available"}, {"403", "available"}, {"404", "available"},
	{"405", "available"}, {"406", "available"}, {"407", "available"}, {"408", "available"},
	{"409", "available"}, {"410", "available"}, {"411", "reserved"}, {"412", "available"},
	{"413", "available"}, {"414", "available"}, {"415", "available"}, {"416", "available"},
	{"417", "sold"}, {"418", "sold"},

	{"501", "available"}, {"502", "available"}, {"503", "reserved"}, {"504", "sold"},
	{"505", "available"}, {"506", "available"}, {"507", "sold"}, {"508", "available"},
	{"509", "sold"},

	{"VG01", "available"}, {"VG02", "available"}, {"VG03", "available"}, {"VG04", "available"},
}

// SeedDefaultBoard inserts the launch inventory when the units table is
// empty. Safe to call on every startup.
func SeedDefaultBoard(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&count); err != nil {
		return fmt.Errorf("count units: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, u := range defaultBoard {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO units (code, status) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			u.code, u.status); err != nil {
			return fmt.Errorf("seed unit %s: %w", u.code, err)
		}
	}
	return nil
}
