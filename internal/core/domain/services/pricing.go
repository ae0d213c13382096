package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/pkg/errs"
)

// DefaultVATRate is the Swiss VAT rate applied to orders.
const DefaultVATRate = 0.081

// squareMetersPerSquareKm converts areas of the projected SRID, whose units
// are meters, to the square kilometres area-based prices are quoted in.
const squareMetersPerSquareKm = 1_000_000

// PricingEngine is a domain service calculating item prices and order
// totals.
//
// Key responsibilities:
//   - Pricing each item from its product's pricing kind
//   - Leaving manually quoted items unpriced for the operator
//   - Deriving order totals: processing fee, VAT and rounded totals
//
// Business rules:
//   - The processing fee is the maximum base fee among the order's items
//   - Area-based prices are quoted per square kilometre of the billable
//     area, the part of the polygon outside the client's ownership grants
//   - Totals are rounded to the nearest 0.05
type PricingEngine struct {
	vatRate decimal.Decimal
}

// NewPricingEngine creates a PricingEngine with the given VAT rate.
// The rate is a fraction, e.g. 0.081 for 8.1 %.
func NewPricingEngine(vatRate float64) (PricingEngine, error) {
	if vatRate < 0 || vatRate >= 1 {
		return PricingEngine{}, errs.NewValueIsInvalidErrorWithCause("vatRate",
			fmt.Errorf("%f is not a fraction in [0, 1)", vatRate))
	}
	return PricingEngine{vatRate: decimal.NewFromFloat(vatRate)}, nil
}

// ItemPrice is the outcome of pricing one item. Calculated is false for
// manually quoted products, whose price stays pending until an operator
// sets it.
type ItemPrice struct {
	BaseFee    kernel.Money
	Price      kernel.Money
	Calculated bool
}

// PriceItem prices one item of the given product for the given billable
// area (in square units of the working SRID).
func (e PricingEngine) PriceItem(p *product.Product, billableArea float64) (ItemPrice, error) {
	if err := p.Validate(); err != nil {
		return ItemPrice{}, err
	}
	if billableArea < 0 {
		return ItemPrice{}, errs.NewValueIsInvalidErrorWithCause("billableArea",
			fmt.Errorf("%f is negative", billableArea))
	}

	zero := kernel.ZeroMoney(kernel.DefaultCurrency)
	switch p.PricingKind() {
	case product.PricingFree:
		return ItemPrice{BaseFee: zero, Price: zero, Calculated: true}, nil

	case product.PricingSingle:
		return ItemPrice{BaseFee: p.BaseFee(), Price: p.UnitPrice(), Calculated: true}, nil

	case product.PricingByArea:
		squareKm := decimal.NewFromFloat(billableArea / squareMetersPerSquareKm)
		return ItemPrice{
			BaseFee:    p.BaseFee(),
			Price:      p.UnitPrice().Mul(squareKm),
			Calculated: true,
		}, nil

	case product.PricingManual:
		return ItemPrice{BaseFee: zero, Price: zero, Calculated: false}, nil

	default:
		return ItemPrice{}, errs.NewValueIsInvalidErrorWithCause("pricing kind",
			fmt.Errorf("%d is not a valid pricing kind", p.PricingKind()))
	}
}

// OrderTotals holds the derived money figures of a fully priced order.
type OrderTotals struct {
	ProcessingFee   kernel.Money
	TotalWithoutVAT kernel.Money
	VATPart         kernel.Money
	TotalWithVAT    kernel.Money
}

// ComputeTotals derives the order totals from its items. Every item price
// must be settled.
//
// The processing fee is the maximum base fee among the items. The total
// without VAT is the item prices plus the fee, rounded to 0.05; the VAT
// part is the rounded total times the VAT rate, rounded again, and the
// total with VAT is their sum.
func (e PricingEngine) ComputeTotals(items []*order.OrderItem) (OrderTotals, error) {
	fee := kernel.ZeroMoney(kernel.DefaultCurrency)
	sum := kernel.ZeroMoney(kernel.DefaultCurrency)

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return OrderTotals{}, err
		}
		if item.PriceStatus() != order.PriceCalculated {
			return OrderTotals{}, errs.NewOperationForbiddenError(
				"compute order totals",
				fmt.Sprintf("item %s has no calculated price", item.ID()),
			)
		}

		higher, err := item.BaseFee().GreaterThan(fee)
		if err != nil {
			return OrderTotals{}, err
		}
		if higher {
			fee = item.BaseFee()
		}

		sum, err = sum.Add(item.Price())
		if err != nil {
			return OrderTotals{}, err
		}
	}

	totalWithout, err := sum.Add(fee)
	if err != nil {
		return OrderTotals{}, err
	}
	totalWithout = totalWithout.RoundCash()

	vatPart := totalWithout.Mul(e.vatRate).RoundCash()

	totalWith, err := totalWithout.Add(vatPart)
	if err != nil {
		return OrderTotals{}, err
	}

	return OrderTotals{
		ProcessingFee:   fee,
		TotalWithoutVAT: totalWithout,
		VATPart:         vatPart,
		TotalWithVAT:    totalWith,
	}, nil
}

// PriceOrder prices every item of the order against the given products and
// stores the totals on the order once all prices are settled. billableArea
// is the area the ownership resolver left after removing the client's
// grants; area-based items are billed on it. Items of manually quoted
// products are left pending and no totals are stored; the order then goes
// through the quote flow.
func (e PricingEngine) PriceOrder(
	o *order.Order,
	products map[kernel.UUID]*product.Product,
	billableArea float64,
) error {
	if err := o.Validate(); err != nil {
		return err
	}

	for _, item := range o.Items() {
		p, ok := products[item.ProductID()]
		if !ok {
			return errs.NewObjectNotFoundError("product", item.ProductID())
		}

		itemPrice, err := e.PriceItem(p, billableArea)
		if err != nil {
			return err
		}
		if !itemPrice.Calculated {
			continue
		}
		if err := o.PriceItem(item.ID(), itemPrice.BaseFee, itemPrice.Price); err != nil {
			return err
		}
	}

	if !o.AllPricesCalculated() {
		return nil
	}

	totals, err := e.ComputeTotals(o.Items())
	if err != nil {
		return err
	}
	return o.SetTotals(totals.ProcessingFee, totals.TotalWithoutVAT,
		totals.VATPart, totals.TotalWithVAT)
}
