// import_stock recibe stock desde una planilla XLSX o CSV usando la misma lógica que POST /api/stock/import.
//
// Uso: go run ./cmd/import_stock -user admin ruta/stock.xlsx
// El usuario debe existir, estar activo y tener permiso de importación.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/backend"
	infraexcel "github.com/jhoicas/pharmacy-api/internal/infrastructure/excel"
	"github.com/jhoicas/pharmacy-api/pkg/config"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

func main() {
	username := flag.String("user", "", "usuario que registra la recepción (admin)")
	flag.Parse()
	if *username == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_stock -user <usuario> <archivo.xlsx|archivo.csv>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.DB.Driver == "memory" {
		log.Fatal().Msg("import_stock requiere DB_DRIVER=postgres")
	}

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	user, err := store.Users.GetByUsername(ctx, *username)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar usuario")
	}
	if user == nil || !user.Active {
		log.Fatal().Str("user", *username).Msg("usuario inexistente o inactivo")
	}
	actor := entity.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
	if !actor.Can(entity.CapImportStock) {
		log.Fatal().Str("user", *username).Str("role", string(user.Role)).Msg("el usuario no puede importar stock")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir archivo")
	}
	defer f.Close()

	ledger := inventory.NewLedgerUseCase(store.TxRunner, store.Movements, inventory.LedgerConfig{
		ReceiptPrefix:          cfg.Pharmacy.ReceiptPrefix,
		DefaultExpiryAlertDays: cfg.Pharmacy.DefaultExpiryAlertDays,
	}, log)
	importer := inventory.NewImportUseCase(ledger, store.Products, store.Suppliers, infraexcel.NewStockReader())

	summary, err := importer.ImportFile(ctx, actor, f, filepath.Base(path))
	if err != nil {
		log.Error().Err(err).Msg("importación interrumpida")
	}
	if summary == nil {
		os.Exit(1)
	}
	for _, fail := range summary.Failed {
		log.Warn().Int("line", fail.Line).Str("reason", fail.Reason).Msg("fila rechazada")
	}
	log.Info().Int("received", summary.Received).Int("failed", len(summary.Failed)).Str("file", path).Msg("importación finalizada")
	if err != nil {
		os.Exit(1)
	}
}
