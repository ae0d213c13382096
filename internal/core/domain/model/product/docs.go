// Package product contains the product catalog aggregate: products, the
// product tree used for group expansion, and geographic ownership grants.
package product
