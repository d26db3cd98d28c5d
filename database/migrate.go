package database

import (
	"fmt"

	"github.com/yeremiapane/franchise-menu-sync/models"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

// appendOnlyTables may be inserted into but never have rows deleted.
var appendOnlyTables = []string{"menu_versions", "sync_run_logs"}

// Migrate creates or updates every table and installs the append-only guards.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Location{},
		&models.MasterMenu{},
		&models.MasterCategory{},
		&models.MasterMenuItem{},
		&models.MenuVersion{},
		&models.BranchSync{},
		&models.BranchOverride{},
		&models.SyncRunLog{},
		&models.MenuCategory{},
		&models.Menu{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return ExecuteTriggers(db)
}

// ExecuteTriggers installs a BEFORE DELETE trigger on each append-only table.
func ExecuteTriggers(db *gorm.DB) error {
	for _, table := range appendOnlyTables {
		for _, stmt := range triggerStatements(db.Dialector.Name(), table) {
			if err := db.Exec(stmt).Error; err != nil {
				utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
				return fmt.Errorf("install trigger on %s: %w", table, err)
			}
		}
		utils.InfoLogger.Printf("Append-only trigger installed on %s", table)
	}
	return nil
}

func triggerStatements(dialect, table string) []string {
	name := table + "_append_only"
	message := table + " is append-only"

	switch dialect {
	case "sqlite":
		return []string{
			fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name),
			fmt.Sprintf(`CREATE TRIGGER %s BEFORE DELETE ON %s
BEGIN
    SELECT RAISE(ABORT, '%s');
END`, name, table, message),
		}
	case "mysql":
		return []string{
			fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name),
			fmt.Sprintf(`CREATE TRIGGER %s BEFORE DELETE ON %s FOR EACH ROW
SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = '%s'`, name, table, message),
		}
	case "postgres":
		return []string{
			`CREATE OR REPLACE FUNCTION reject_append_only_delete() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION '% is append-only', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql`,
			fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", name, table),
			fmt.Sprintf("CREATE TRIGGER %s BEFORE DELETE ON %s FOR EACH ROW EXECUTE FUNCTION reject_append_only_delete()", name, table),
		}
	}
	return nil
}
