package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/merko/merko-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestMigrationsContainLifecycleConstraints(t *testing.T) {
	cases := map[string][]string{
		"*_create_users_products.sql": {
			"CONSTRAINT chk_products_stock_non_negative CHECK (stock_quantity >= 0)",
			"ux_products_sku",
		},
		"*_create_carts.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_active_user ON carts (user_id) WHERE status = 'ACTIVE'",
			"ux_cart_items_cart_product ON cart_items (cart_id, product_id)",
		},
		"*_create_orders.sql": {
			"ux_orders_order_number",
			"chk_order_items_status",
		},
		"*_create_fulfillment.sql": {
			"ux_delivery_entries_confirmed_order ON delivery_entries (confirmed_order_id)",
			"FOREIGN KEY (delivery_entry_id) REFERENCES delivery_entries(id),",
			"DROP TABLE IF EXISTS route_stops",
		},
	}
	for pattern, wants := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil || len(matches) != 1 {
			t.Fatalf("expected one migration for %s, got %v (%v)", pattern, matches, err)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read %s: %v", matches[0], err)
		}
		for _, want := range wants {
			if !strings.Contains(string(data), want) {
				t.Errorf("%s missing %q", matches[0], want)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Route Notes!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_route_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for empty sanitized name")
	}
}

func TestCreateSQLMigrationSortsAfterFutureVersions(t *testing.T) {
	dir := t.TempDir()
	future := "29991231235959_from_the_future.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err := migrate.CreateSQLMigration(dir, "next")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := filepath.Base(path); got <= future {
		t.Fatalf("expected %s to sort after %s", got, future)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded(), "migrations"); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	if len(onDisk) != len(embedded) {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(onDisk))
	}
}

func TestValidateDirChecksAnnotations(t *testing.T) {
	cases := map[string]string{
		"missing down":     "-- +goose Up\nSELECT 1;\n",
		"down before up":   "-- +goose Down\n-- +goose Up\n",
		"unclosed block":   "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"stray end":        "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
		"two up sections":  "-- +goose Up\n-- +goose Up\n-- +goose Down\n",
		"unterminated eof": "-- +goose Up\n-- +goose Down\n-- +goose StatementBegin\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "20260101000000_case.sql"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := migrate.ValidateDir(dir); err == nil {
				t.Fatal("expected annotation error")
			}
		})
	}
}
