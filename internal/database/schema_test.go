package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_products_table.sql",
		"00002_create_customers_table.sql",
		"00003_create_orders_table.sql",
		"00004_create_order_items_table.sql",
		"00005_create_store_config_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"products":     "00001_create_products_table.sql",
		"customers":    "00002_create_customers_table.sql",
		"orders":       "00003_create_orders_table.sql",
		"order_items":  "00004_create_order_items_table.sql",
		"store_config": "00005_create_store_config_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00001_create_products_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"name VARCHAR",
		"price DECIMAL",
		"stock INTEGER",
		"category VARCHAR",
		"sku VARCHAR",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}

	// Stock must be nullable so untracked products can skip inventory checks
	if strings.Contains(contentStr, "stock INTEGER NOT NULL") {
		t.Error("Products stock column must be nullable for untracked products")
	}
}

func TestOrdersTableHasPaymentMethodConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00003_create_orders_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)

	// Check for payment method constraint with valid values
	requiredMethods := []string{"cash", "card", "other"}
	for _, method := range requiredMethods {
		if !strings.Contains(contentStr, method) {
			t.Errorf("Orders table payment_method constraint missing value: %s", method)
		}
	}

	// Duplicate checkout submissions are rejected at the database level
	if !strings.Contains(contentStr, "idempotency_key UUID UNIQUE") {
		t.Error("Orders table missing unique constraint on idempotency_key")
	}
}

func TestOrderItemsTableReferencesOrders(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00004_create_order_items_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read order_items migration: %v", err)
	}

	contentStr := string(content)

	if !strings.Contains(contentStr, "FOREIGN KEY (order_id)") {
		t.Error("Order items table missing foreign key constraint to orders")
	}

	if !strings.Contains(contentStr, "UNIQUE (order_id, position)") {
		t.Error("Order items table missing unique constraint on (order_id, position)")
	}
}

func TestStoreConfigSeedsSingletonRow(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_store_config_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read store_config migration: %v", err)
	}

	contentStr := string(content)

	if !strings.Contains(contentStr, "CHECK (id = 1)") {
		t.Error("Store config table missing singleton check constraint")
	}

	if !strings.Contains(contentStr, "CHECK (low_stock_threshold >= 1)") {
		t.Error("Store config table must require a threshold of at least one")
	}

	if !strings.Contains(contentStr, "INSERT INTO store_config") {
		t.Error("Store config migration does not seed the singleton row")
	}

	if !strings.Contains(contentStr, "ON CONFLICT (id) DO NOTHING") {
		t.Error("Store config seed is not idempotent")
	}
}
