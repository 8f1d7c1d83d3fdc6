package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oakridge-cabinets/migrate/internal/migration/dedup"
	"github.com/oakridge-cabinets/migrate/internal/migration/normalize"
	"github.com/oakridge-cabinets/migrate/internal/migration/source"
	"github.com/oakridge-cabinets/migrate/pkg/composables"
	"github.com/oakridge-cabinets/migrate/pkg/mapping"
)

// cellText trims a raw cell without null-token filtering. Lookup names like
// "NA" are legitimate values, not absent markers.
func cellText(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// ClientRecord is one row of the Client sheet mapped to the client table.
type ClientRecord struct {
	LegacyID  string
	FirstName *string
	// LastName is required in the target schema; unnamed clients become
	// "Unknown".
	LastName  string
	Street    *string
	City      *string
	Province  *string
	Zip       *string
	Phone1    *string
	Phone2    *string
	Email1    *string
	Email2    *string
	Designer  *string
	CreatedAt time.Time
}

// NewClientRecord maps a Client sheet row; rows without a legacy ID are
// discarded (nil). A missing entry date defaults to the import time.
func NewClientRecord(row source.Row, now time.Time) *ClientRecord {
	legacyID := normalize.Text(row.Get("CLIENT_ID"))
	if legacyID == nil {
		return nil
	}
	createdAt := now
	if d := normalize.Date(row.Get("DATEENTER")); d != nil {
		createdAt = *d
	}
	return &ClientRecord{
		LegacyID:  *legacyID,
		FirstName: normalize.Text(row.Get("FIRST_NAME")),
		LastName:  mapping.Or(normalize.Text(row.Get("LAST_NAME")), "Unknown"),
		Street:    normalize.Text(row.Get("ADDRESS")),
		City:      normalize.Text(row.Get("CITY")),
		Province:  normalize.Text(row.Get("PROV")),
		Zip:       normalize.Text(row.Get("ZIP")),
		Phone1:    normalize.Text(row.Get("PHONE1")),
		Phone2:    normalize.Text(row.Get("PHONE2")),
		Email1:    normalize.Text(row.Get("EMAIL1")),
		Email2:    normalize.Text(row.Get("EMAIL2")),
		Designer:  normalize.Text(row.Get("REP")),
		CreatedAt: createdAt,
	}
}

var clientColumns = []string{
	"legacy_id", `"firstName"`, `"lastName"`, "street", "city", "province",
	"zip", "phone1", "phone2", "email1", "email2", "designer",
	`"createdAt"`, `"updatedAt"`,
}

// LoadClients dedups the Client sheet against itself and the target store
// by legacy ID, then inserts the remainder. Returns the inserted count.
func LoadClients(ctx context.Context, rows []source.Row, log *logrus.Entry) (int, error) {
	records := make([]*ClientRecord, 0, len(rows))
	for _, row := range rows {
		if rec := NewClientRecord(row, time.Now().UTC()); rec != nil {
			records = append(records, rec)
		}
	}

	inserted := 0
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		existing, err := fetchKeys(txCtx, tx, `SELECT legacy_id FROM client`)
		if err != nil {
			return wrapStoreErr(err, "fetch existing client keys")
		}
		fresh := dedup.Filter(records, func(r *ClientRecord) string { return r.LegacyID }, dedup.Set(existing))
		log.WithFields(logrus.Fields{"source": len(records), "new": len(fresh)}).Info("deduplicated clients")
		if len(fresh) == 0 {
			return nil
		}

		insertRowsArgs := make([][]any, len(fresh))
		for i, r := range fresh {
			insertRowsArgs[i] = []any{
				r.LegacyID, r.FirstName, r.LastName, r.Street, r.City, r.Province,
				r.Zip, r.Phone1, r.Phone2, r.Email1, r.Email2, r.Designer,
				r.CreatedAt, r.CreatedAt,
			}
		}
		if err := insertRows(txCtx, tx, "client", clientColumns, insertRowsArgs); err != nil {
			return wrapStoreErr(err, "insert clients")
		}
		inserted = len(fresh)
		return nil
	})
	return inserted, err
}

// InstallerRecord is one row of the Installers sheet.
type InstallerRecord struct {
	LegacyID      string
	FirstName     *string
	LastName      *string
	Street        *string
	City          *string
	Zip           *string
	Phone         *string
	Email         *string
	IsActive      bool
	Notes         *string
	HasFirstAid   *bool
	HasInsurance  *bool
	Company       *string
	GSTNumber     *string
	WCBNumber     *string
	AccountNumber *string
}

// NewInstallerRecord maps an Installers sheet row; rows without a legacy ID
// are discarded. Installers default to active when the flag is absent.
func NewInstallerRecord(row source.Row) *InstallerRecord {
	legacyID := normalize.Text(row.Get("INSTALL_ID"))
	if legacyID == nil {
		return nil
	}
	return &InstallerRecord{
		LegacyID:      *legacyID,
		FirstName:     normalize.Text(row.Get("FIRST_NAME")),
		LastName:      normalize.Text(row.Get("LAST_NAME")),
		Street:        normalize.Text(row.Get("ADDRESS")),
		City:          normalize.Text(row.Get("CITY")),
		Zip:           normalize.Text(row.Get("POSTAL")),
		Phone:         normalize.Text(row.Get("CELL")),
		Email:         normalize.Text(row.Get("EMAIL")),
		IsActive:      mapping.Or(normalize.Boolean(row.Get("ACTIVE")), true),
		Notes:         normalize.Text(row.Get("NOTE")),
		HasFirstAid:   normalize.Boolean(row.Get("FIRSTAID")),
		HasInsurance:  normalize.Boolean(row.Get("INSURANCE")),
		Company:       normalize.Text(row.Get("COMPANY")),
		GSTNumber:     normalize.Text(row.Get("GSTNUMBER")),
		WCBNumber:     normalize.Text(row.Get("WCBNUMBER")),
		AccountNumber: normalize.Text(row.Get("ACCOUNTNUMBER")),
	}
}

var installerColumns = []string{
	"legacy_installer_id", "first_name", "last_name", "street_address", "city",
	"zip_code", "phone_number", "email", "is_active", "notes",
	"has_first_aid", "has_insurance", "company_name", "gst_number",
	"wcb_number", "acc_number",
}

// LoadInstallers dedups and inserts the Installers sheet by legacy ID.
func LoadInstallers(ctx context.Context, rows []source.Row, log *logrus.Entry) (int, error) {
	records := make([]*InstallerRecord, 0, len(rows))
	for _, row := range rows {
		if rec := NewInstallerRecord(row); rec != nil {
			records = append(records, rec)
		}
	}

	inserted := 0
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		existing, err := fetchKeys(txCtx, tx, `SELECT legacy_installer_id FROM installers WHERE legacy_installer_id IS NOT NULL`)
		if err != nil {
			return wrapStoreErr(err, "fetch existing installer keys")
		}
		fresh := dedup.Filter(records, func(r *InstallerRecord) string { return r.LegacyID }, dedup.Set(existing))
		log.WithFields(logrus.Fields{"source": len(records), "new": len(fresh)}).Info("deduplicated installers")
		if len(fresh) == 0 {
			return nil
		}

		args := make([][]any, len(fresh))
		for i, r := range fresh {
			args[i] = []any{
				r.LegacyID, r.FirstName, r.LastName, r.Street, r.City,
				r.Zip, r.Phone, r.Email, r.IsActive, r.Notes,
				r.HasFirstAid, r.HasInsurance, r.Company, r.GSTNumber,
				r.WCBNumber, r.AccountNumber,
			}
		}
		if err := insertRows(txCtx, tx, "installers", installerColumns, args); err != nil {
			return wrapStoreErr(err, "insert installers")
		}
		inserted = len(fresh)
		return nil
	})
	return inserted, err
}

// LookupEntry is one append-only row for the species/colors/door-styles
// tables, deduplicated by normalized name.
type LookupEntry struct {
	Name        string
	Prefinished bool
}

// NewSpeciesEntries maps the Species sheet. Names are trimmed only; tokens
// like "NA" name real species.
func NewSpeciesEntries(rows []source.Row) []LookupEntry {
	entries := make([]LookupEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LookupEntry{
			Name:        cellText(row.Get("Species")),
			Prefinished: mapping.Value(normalize.Boolean(row.Get("Prefinished"))),
		})
	}
	return entries
}

// NewColorEntries maps the Colors sheet.
func NewColorEntries(rows []source.Row) []LookupEntry {
	entries := make([]LookupEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LookupEntry{Name: cellText(row.Get("COLOR"))})
	}
	return entries
}

// NewDoorStyleEntries maps the DoorStyles sheet.
func NewDoorStyleEntries(rows []source.Row) []LookupEntry {
	entries := make([]LookupEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LookupEntry{Name: cellText(row.Get("LOWER_DOOR"))})
	}
	return entries
}

func loadLookupTable(ctx context.Context, name string, entries []LookupEntry, existingQuery string, insert func(context.Context, composables.DB, []LookupEntry) error, log *logrus.Entry) (int, error) {
	inserted := 0
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		existing, err := fetchKeys(txCtx, tx, existingQuery)
		if err != nil {
			return wrapStoreErr(err, "fetch existing "+name)
		}
		fresh := dedup.Filter(entries, func(e LookupEntry) string { return e.Name }, dedup.Set(existing))
		log.WithFields(logrus.Fields{"source": len(entries), "new": len(fresh)}).Info("deduplicated " + name)
		if len(fresh) == 0 {
			return nil
		}
		if err := insert(txCtx, tx, fresh); err != nil {
			return wrapStoreErr(err, "insert "+name)
		}
		inserted = len(fresh)
		return nil
	})
	return inserted, err
}

// LoadSpecies appends new species by name.
func LoadSpecies(ctx context.Context, rows []source.Row, log *logrus.Entry) (int, error) {
	return loadLookupTable(ctx, "species", NewSpeciesEntries(rows),
		`SELECT "Species" FROM species`,
		func(txCtx context.Context, db composables.DB, fresh []LookupEntry) error {
			args := make([][]any, len(fresh))
			for i, e := range fresh {
				args[i] = []any{e.Name, e.Prefinished}
			}
			return insertRows(txCtx, db, "species", []string{`"Species"`, `"Prefinished"`}, args)
		}, log)
}

// LoadColors appends new colors by name.
func LoadColors(ctx context.Context, rows []source.Row, log *logrus.Entry) (int, error) {
	return loadLookupTable(ctx, "colors", NewColorEntries(rows),
		`SELECT "Name" FROM colors`,
		func(txCtx context.Context, db composables.DB, fresh []LookupEntry) error {
			args := make([][]any, len(fresh))
			for i, e := range fresh {
				args[i] = []any{e.Name}
			}
			return insertRows(txCtx, db, "colors", []string{`"Name"`}, args)
		}, log)
}

// LoadDoorStyles appends new door styles by name. The legacy sheet has no
// model or sourcing info, so model mirrors the name and both manufacturing
// flags start false.
func LoadDoorStyles(ctx context.Context, rows []source.Row, log *logrus.Entry) (int, error) {
	return loadLookupTable(ctx, "door styles", NewDoorStyleEntries(rows),
		`SELECT name FROM door_styles`,
		func(txCtx context.Context, db composables.DB, fresh []LookupEntry) error {
			args := make([][]any, len(fresh))
			for i, e := range fresh {
				args[i] = []any{e.Name, e.Name, false, false}
			}
			return insertRows(txCtx, db, "door_styles", []string{"name", "model", "is_pre_manufactured", "is_made_in_house"}, args)
		}, log)
}
