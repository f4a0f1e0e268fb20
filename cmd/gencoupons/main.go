package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"biju-kart/internal/coupon"

	"github.com/shopspring/decimal"
)

// Writes sample gzipped policy files. Later files override earlier ones when
// loaded in order, so WELCOME in seasonal.gz turns into free shipping.
func main() {
	dataDir := "data/coupons"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string]map[string]coupon.Effect{
		"base.gz": {
			"WELCOME": percent("0.15"),
			"AMIGA5":  percent("0.05"),
		},
		"seasonal.gz": {
			"NATAL25": percent("0.25"),
			"VERAO":   coupon.Effect{Type: coupon.EffectFreeShipping, Rate: decimal.Zero},
			"WELCOME": coupon.Effect{Type: coupon.EffectFreeShipping, Rate: decimal.Zero},
			"BLACK50": percent("0.50"),
		},
	}

	for filename, policies := range files {
		set := coupon.NewMapPolicySet(len(policies))
		for code, effect := range policies {
			set.Add(code, effect)
		}

		filePath := filepath.Join(dataDir, filename)
		if err := coupon.WritePolicyFile(filePath, set); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, set.Size())
	}

	fmt.Println("\nSample coupon files created successfully!")
	fmt.Printf("Load them with COUPON_FILES=%s,%s\n",
		filepath.Join(dataDir, "base.gz"), filepath.Join(dataDir, "seasonal.gz"))
}

func percent(rate string) coupon.Effect {
	return coupon.Effect{Type: coupon.EffectPercentDiscount, Rate: decimal.RequireFromString(rate)}
}
