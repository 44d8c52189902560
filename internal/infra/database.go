package infra

import (
	"fmt"

	"mediocusto/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig sizes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// NewDatabase opens a GORM connection backed by pgx and brings the schema up
// to date (see RunMigrations).
func NewDatabase(dsn string, pool PoolConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table with AutoMigrate and then
// applies the Postgres-only patches AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Produto{},
		&model.Fornecedor{},
		&model.Material{},
		&model.EntradaNF{},
		&model.CalculoNF{},
		&model.HistoricoCalculo{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL: every statement is guarded by an
// existence check, so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// listing and distribution order, undated entries last
		{"idx_entrada_nf_data_created", `
CREATE INDEX IF NOT EXISTS idx_entrada_nf_data_created
    ON entrada_nf (data DESC NULLS LAST, created_at DESC)`},

		// product filter and product-wide distribution compare lowercase names
		{"idx_entrada_nf_produto_lower", `
CREATE INDEX IF NOT EXISTS idx_entrada_nf_produto_lower
    ON entrada_nf (LOWER(produto))`},

		// databases created before the cascade tag keep a plain FK; swap it
		{"fk_calculo_nfs_entrada cascade", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_calculo_nfs_entrada'
             AND confdeltype <> 'c') THEN
    ALTER TABLE calculo_nfs DROP CONSTRAINT fk_calculo_nfs_entrada;
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_calculo_nfs_entrada') THEN
    ALTER TABLE calculo_nfs
      ADD CONSTRAINT fk_calculo_nfs_entrada
      FOREIGN KEY (entrada_id) REFERENCES entrada_nf(id) ON DELETE CASCADE;
  END IF;
END $$`},

		// stock never goes negative, whatever path wrote it
		{"chk_calculo_nfs_estoque", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_calculo_nfs_estoque') THEN
    ALTER TABLE calculo_nfs
      ADD CONSTRAINT chk_calculo_nfs_estoque
      CHECK (quantidade_estoque IS NULL OR quantidade_estoque >= 0) NOT VALID;
  END IF;
END $$`},

		{"chk_calculo_historico_tipo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_calculo_historico_tipo') THEN
    ALTER TABLE calculo_historico
      ADD CONSTRAINT chk_calculo_historico_tipo
      CHECK (tipo IN ('adicionar', 'subtrair')) NOT VALID;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
