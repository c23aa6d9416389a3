// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/core/entity"
	"github.com/shabani2/salemanagement-api/internal/core/id"
	"github.com/shabani2/salemanagement-api/internal/core/types"
	"github.com/shabani2/salemanagement-api/internal/domain/auth"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/internal/domain/orders"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/order_repo"
	"github.com/shabani2/salemanagement-api/pkg/config"
	"github.com/shabani2/salemanagement-api/pkg/logger"
	"github.com/shabani2/salemanagement-api/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	var alreadySeeded bool
	err = pool.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cat_products)`,
	).Scan(&alreadySeeded)
	if err != nil {
		log.Fatalw("failed to check existing data", "error", err)
	}
	if alreadySeeded {
		log.Info("catalog already contains products, skipping demo seed")
		printDemoToken(log)
		return
	}

	if err := seedDemoData(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	printDemoToken(log)
	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	productRepo := catalog_repo.NewProductRepo(txManager)
	regionRepo := catalog_repo.NewRegionRepo(txManager)
	posRepo := catalog_repo.NewPointOfSaleRepo(txManager)
	locations := catalog_repo.NewLocationChecker(regionRepo, posRepo)
	ledgerRepo := ledger_repo.NewRepo(txManager)
	orderRepo := order_repo.NewRepo(txManager)
	numbers := order_repo.NewOrderNumbers(txManager)

	ledgerService := ledger.NewService(ledgerRepo, productRepo, locations, txManager, config.StockPolicyAllowNegative)
	orderService := orders.NewService(orderRepo, productRepo, ledgerService, numbers, nil, txManager)

	// 1. Regions
	regionNames := []string{"Kinshasa", "Lubumbashi", "Goma"}
	regionIDs := make(map[string]id.ID, len(regionNames))
	for _, name := range regionNames {
		r := region.New(name)
		if err := regionRepo.Create(ctx, r); err != nil {
			return fmt.Errorf("seed region %s: %w", name, err)
		}
		regionIDs[name] = r.ID
		log.Infow("region created", "name", name, "region_id", r.ID)
	}

	// 2. Points of sale
	posSeeds := []struct {
		name    string
		region  string
		address string
	}{
		{"Depot Gombe", "Kinshasa", "Avenue du Commerce 12, Gombe"},
		{"Marche Central", "Kinshasa", "Boulevard du 30 Juin"},
		{"Kenya Market", "Lubumbashi", "Avenue Kasavubu 3"},
		{"Virunga Shop", "Goma", "Avenue des Volcans 7"},
	}

	posIDs := make(map[string]id.ID, len(posSeeds))
	for _, p := range posSeeds {
		pos := pointofsale.New(p.name, regionIDs[p.region])
		pos.Address = p.address
		if err := posRepo.Create(ctx, pos); err != nil {
			return fmt.Errorf("seed point of sale %s: %w", p.name, err)
		}
		posIDs[p.name] = pos.ID
		log.Infow("point of sale created", "name", p.name, "pos_id", pos.ID)
	}

	// 3. Products
	productSeeds := []struct {
		name      string
		purchase  string
		sale      string
		vat       string
		unit      string
		threshold types.Quantity
	}{
		{"Coca-Cola 50cl", "300", "500", "16", "bottle", 48},
		{"Bralima Primus 72cl", "900", "1500", "16", "bottle", 24},
		{"Eau Swissta 1.5L", "400", "700", "16", "bottle", 36},
		{"Farine de mais 25kg", "18000", "24000", "0", "bag", 10},
		{"Sucre Kwilu 1kg", "1200", "1800", "0", "kg", 20},
		{"Huile vegetale 5L", "7500", "10500", "16", "can", 12},
	}

	productIDs := make([]id.ID, 0, len(productSeeds))
	for _, p := range productSeeds {
		prod := product.New(p.name, types.MustMoney(p.purchase), types.MustMoney(p.sale), p.unit)
		prod.VATRate = types.MustMoney(p.vat)
		prod.ReorderThreshold = p.threshold
		if err := productRepo.Create(ctx, prod); err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
		productIDs = append(productIDs, prod.ID)
		log.Infow("product created", "name", p.name, "product_id", prod.ID)
	}

	// 4. Opening stock: bulk-copy entries at the depot and one stocked shop,
	// then fold them into snapshots in the same transaction.
	if err := seedOpeningStock(ctx, txManager, productIDs, posIDs["Depot Gombe"]); err != nil {
		return fmt.Errorf("seed opening stock: %w", err)
	}
	log.Info("opening stock recorded")

	// 5. A demo order with pending lines. The order sequence starts at 100
	// so seeded numbers stand apart from real ones.
	numSvc := numerator.New(txManager.GetQuerier(ctx))
	if err := numSvc.SetNextNumber(ctx, numerator.DefaultConfig("ORD"), time.Now().UTC(), 100); err != nil {
		return fmt.Errorf("seed order sequence: %w", err)
	}

	requesterID := id.New()
	order, err := orderService.Create(ctx, orders.CreateOrderCommand{
		Destination: entity.PointOfSaleLocation(posIDs["Marche Central"]),
		Lines: []orders.CreateLineInput{
			{ProductID: productIDs[0], Quantity: 24},
			{ProductID: productIDs[2], Quantity: 12},
		},
		RequesterID: &requesterID,
	})
	if err != nil {
		return fmt.Errorf("seed demo order: %w", err)
	}
	log.Infow("demo order created", "number", order.Number, "order_id", order.ID)

	return nil
}

// seedOpeningStock writes validated entry movements for every product at the
// central depot plus a stocked point of sale, using COPY for the entry rows.
func seedOpeningStock(ctx context.Context, txManager *postgres.TxManager, productIDs []id.ID, stockedPOS id.ID) error {
	inserter := postgres.NewBatchInserter(txManager)
	now := time.Now().UTC()

	depot := entity.CentralDepot()
	shop := entity.PointOfSaleLocation(stockedPOS)

	columns := []string{
		"id", "product_id", "location_kind", "location_id",
		"type", "quantity", "amount", "status", "created_at",
	}

	var rows [][]any
	for i, productID := range productIDs {
		depotQty := int64(200 + 50*i)
		shopQty := int64(40 + 10*i)
		rows = append(rows,
			[]any{id.New(), productID, depot.Kind, depot.ID, ledger.TypeEntry, depotQty,
				types.MoneyFromInt(depotQty * 1000), ledger.MovementStatusValidated, now},
			[]any{id.New(), productID, shop.Kind, shop.ID, ledger.TypeEntry, shopQty,
				types.MoneyFromInt(shopQty * 1000), ledger.MovementStatusValidated, now},
		)
	}

	return txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		copied, err := inserter.CopyFromSlice(txCtx, "movement_entries", columns, rows)
		if err != nil {
			return err
		}
		if copied != int64(len(rows)) {
			return fmt.Errorf("copied %d of %d entry rows", copied, len(rows))
		}

		// Snapshots start empty, so the fold is a plain grouped insert.
		_, err = txManager.GetQuerier(txCtx).Exec(txCtx, `
			INSERT INTO stock_snapshots (product_id, location_kind, location_id, quantity, amount, updated_at)
			SELECT product_id, location_kind, location_id, SUM(quantity), SUM(amount), now()
			FROM movement_entries
			WHERE status = 'validated'
			GROUP BY product_id, location_kind, location_id
			ON CONFLICT (product_id, location_kind, location_id) DO NOTHING
		`)
		return err
	})
}

// printDemoToken prints an unrestricted access token when JWT_SECRET is set.
func printDemoToken(log *logger.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Info("JWT_SECRET not set, skipping demo token")
		return
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(secret, os.Getenv("JWT_ISSUER")))
	token, expiresAt, err := jwtService.GenerateAccessToken(&appctx.UserContext{
		UserID: id.New(),
		Email:  "admin@salemanagement.local",
		Role:   appctx.RoleSuperAdmin,
	})
	if err != nil {
		log.Warnw("failed to generate demo token", "error", err)
		return
	}

	log.Infow("demo access token", "token", token, "expires_at", expiresAt)
}
