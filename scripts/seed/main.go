package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/homebite/orderdesk/internal/app"
	"github.com/homebite/orderdesk/internal/menu"
	"github.com/homebite/orderdesk/internal/offers"
	"github.com/homebite/orderdesk/internal/orders"
)

func main() {
	days := flag.Int("days", 60, "days of demo orders to generate, ending yesterday")
	force := flag.Bool("force", false, "seed orders even when the store already has some")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open stores: %v", err)
	}
	defer stores.Close()
	loc := cfg.Location()

	fmt.Println("→ Seeding menu...")
	if _, err := menu.NewService(stores.Docs, logger).Replace(ctx, demoMenu()); err != nil {
		log.Fatalf("seed menu: %v", err)
	}

	fmt.Println("→ Seeding offers...")
	today := time.Now().In(loc)
	if _, err := offers.NewService(stores.Docs, loc, logger).Replace(ctx, demoOffers(today)); err != nil {
		log.Fatalf("seed offers: %v", err)
	}

	orderService := orders.NewService(stores.Orders, nil, orders.NewValidator(loc), logger)
	existing, err := orderService.List(ctx)
	if err != nil {
		log.Fatalf("list orders: %v", err)
	}
	if len(existing) > 0 && !*force {
		fmt.Printf("→ Skipping orders: store already holds %d (use -force)\n", len(existing))
		return
	}

	fmt.Println("→ Seeding orders...")
	n, err := seedOrders(ctx, orderService, today, *days)
	if err != nil {
		log.Fatalf("seed orders: %v", err)
	}
	fmt.Printf("✓ Seeded %d orders\n", n)
}

func demoMenu() []menu.Category {
	return []menu.Category{
		{Category: "Breakfast", Icon: "🍳", Items: []menu.Item{
			{Name: "Poha", Price: 60, IsAvailable: true},
			{Name: "Aloo Paratha", Price: 80, IsAvailable: true},
		}},
		{Category: "Lunch", Icon: "🍛", Tag: "Popular", Items: []menu.Item{
			{Name: "Veg Thali", Price: 120, IsAvailable: true},
			{Name: "Rajma Chawal", Price: 110, IsAvailable: true},
		}},
		{Category: "Dinner", Icon: "🍲", Items: []menu.Item{
			{Name: "Dal Khichdi", Price: 100, IsAvailable: true},
			{Name: "Paneer Roti Combo", Price: 140, IsAvailable: false},
		}},
	}
}

func demoOffers(today time.Time) []offers.Offer {
	return []offers.Offer{
		{
			Title:           "Weekday Lunch Saver",
			Description:     "10% off every lunch thali Monday to Friday.",
			DiscountPercent: 10,
			Code:            "LUNCH10",
			StartDate:       orders.NewDate(today.AddDate(0, 0, -7)),
			EndDate:         orders.NewDate(today.AddDate(0, 1, 0)),
			IsActive:        true,
		},
		{
			Title:           "Festive Dinner",
			DiscountPercent: 15,
			Code:            "FEAST15",
			IsActive:        false,
		},
	}
}

func seedOrders(ctx context.Context, svc *orders.Service, today time.Time, days int) (int, error) {
	addresses := []string{"A3-1206", "B1-402", "C2-118", "Tower D-905", "Villa 12"}
	modes := []string{"Breakfast", "Lunch", "Dinner"}
	count := 0
	for d := days; d >= 1; d-- {
		day := today.AddDate(0, 0, -d).Format("2006-01-02")
		for i, addr := range addresses {
			if (d+i)%3 == 0 {
				continue
			}
			mode := modes[(d+i)%len(modes)]
			qty := 1 + (d*i)%3
			price := 120.0
			status := "Paid"
			paymentMode := "Online"
			if d <= 3 || (d+i)%7 == 0 {
				status, paymentMode = "Unpaid", ""
			}
			if _, err := svc.Create(ctx, orders.Payload{
				Date:            &day,
				DeliveryAddress: &addr,
				Quantity:        &qty,
				UnitPrice:       &price,
				Mode:            &mode,
				Status:          &status,
				PaymentMode:     &paymentMode,
			}); err != nil {
				return count, fmt.Errorf("%s %s: %w", day, addr, err)
			}
			count++
		}
	}
	return count, nil
}
