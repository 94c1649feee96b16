package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raghav0014/AI-Feedback/errs"
)

// VerificationResult is the payload returned by a purchase verification.
type VerificationResult struct {
	Verified     bool    `json:"verified"`
	ProductName  string  `json:"productName"`
	PurchaseDate string  `json:"purchaseDate"`
	OrderID      string  `json:"orderId"`
	Retailer     string  `json:"retailer"`
	Price        float64 `json:"price"`
	Warranty     string  `json:"warranty"`
}

// PurchaseVerifier checks a QR code against a purchase record. There is no
// real retailer integration behind the demo implementation; anything that
// needs a trustworthy answer must plug in its own.
type PurchaseVerifier interface {
	Verify(ctx context.Context, qrCode string) (*VerificationResult, error)
}

var demoRetailers = []string{"TechMart", "ShopHub", "MegaStore", "QuickBuy"}

// DemoPurchaseVerifier simulates verification: well-formed codes succeed
// about 80% of the time with generated purchase details.
type DemoPurchaseVerifier struct {
	rng         *rand.Rand
	successRate float64
}

func NewDemoPurchaseVerifier() *DemoPurchaseVerifier {
	return &DemoPurchaseVerifier{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: 0.8,
	}
}

// Verify requires the PRODUCT_ prefix; anything else is a validation error.
func (v *DemoPurchaseVerifier) Verify(_ context.Context, qrCode string) (*VerificationResult, error) {
	if !strings.HasPrefix(qrCode, "PRODUCT_") {
		return nil, errs.Validation("QR code must start with PRODUCT_")
	}

	productName := strings.ReplaceAll(strings.TrimPrefix(qrCode, "PRODUCT_"), "_", " ")

	if v.rng.Float64() >= v.successRate {
		return &VerificationResult{Verified: false, ProductName: productName}, nil
	}

	purchaseDate := time.Now().AddDate(0, 0, -v.rng.Intn(90))
	return &VerificationResult{
		Verified:     true,
		ProductName:  productName,
		PurchaseDate: purchaseDate.Format("2006-01-02"),
		OrderID:      "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		Retailer:     demoRetailers[v.rng.Intn(len(demoRetailers))],
		Price:        float64(v.rng.Intn(95000)+5000) / 100,
		Warranty:     fmt.Sprintf("%d months", 6*(v.rng.Intn(4)+1)),
	}, nil
}
