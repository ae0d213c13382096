package kernel

import (
	"fmt"

	"geoshop/internal/pkg/errs"

	"github.com/peterstace/simplefeatures/geom"
)

// DefaultSRID is the projected coordinate system all order and product
// geometries live in (EPSG:2056, Swiss LV95). Coordinates are metres, so
// Area() is square metres.
const DefaultSRID = 2056

// ErrGeometryIsNotConstructed indicates that a Geometry was not created through
// one of the constructor functions.
var ErrGeometryIsNotConstructed = errs.NewValueIsRequiredError(
	"geometry must be created via GeometryFromWKT or NewEmptyGeometry")

// Geometry is a value object wrapping a polygonal geometry in a fixed
// projected spatial reference system.
//
// Construction parses but does not reject topologically invalid input:
// orders with self-intersecting polygons are accepted, persisted, and only
// reported through CheckTopology.
//
// Geometry is immutable; set operations return new values.
type Geometry struct {
	g             geom.Geometry
	srid          int
	isConstructed bool
}

// GeometryFromWKT parses a geometry from its WKT representation in the given
// SRID. Structurally malformed WKT is an error; topological invalidity
// (e.g. a self-intersecting ring) is not, see CheckTopology.
func GeometryFromWKT(wkt string, srid int) (Geometry, error) {
	if wkt == "" {
		return Geometry{}, errs.NewValueIsRequiredError("wkt")
	}
	if srid <= 0 {
		return Geometry{}, errs.NewValueIsInvalidErrorWithCause("srid",
			fmt.Errorf("%d is not a valid spatial reference id", srid))
	}

	g, err := geom.UnmarshalWKT(wkt, geom.NoValidate{})
	if err != nil {
		return Geometry{}, errs.NewValueIsInvalidErrorWithCause("wkt", err)
	}

	return Geometry{g: g, srid: srid, isConstructed: true}, nil
}

// NewEmptyGeometry returns the empty geometry in the given SRID.
// It is the identity element for Union.
func NewEmptyGeometry(srid int) Geometry {
	return Geometry{g: geom.Geometry{}, srid: srid, isConstructed: true}
}

// Validate ensures the Geometry was created through a constructor function.
func (g Geometry) Validate() error {
	if !g.isConstructed {
		return ErrGeometryIsNotConstructed
	}
	return nil
}

// CheckTopology reports whether the geometry is topologically valid.
// A non-nil result never blocks persistence; callers use it to raise
// data-quality notifications.
func (g Geometry) CheckTopology() error {
	return g.g.Validate()
}

// SRID returns the spatial reference id the coordinates are expressed in.
func (g Geometry) SRID() int {
	return g.srid
}

// IsEmpty reports whether the geometry covers no area.
func (g Geometry) IsEmpty() bool {
	return g.g.IsEmpty()
}

// Area returns the planar area in the units of the SRID (square metres for
// the default LV95 system).
func (g Geometry) Area() float64 {
	return g.g.Area()
}

// AsWKT returns the WKT representation.
func (g Geometry) AsWKT() string {
	return g.g.AsText()
}

// Union returns the set union of the two geometries.
// Both operands must share the same SRID.
func (g Geometry) Union(other Geometry) (Geometry, error) {
	if err := g.compatibleWith(other); err != nil {
		return Geometry{}, err
	}

	united, err := geom.Union(g.g, other.g)
	if err != nil {
		return Geometry{}, errs.NewValueIsInvalidErrorWithCause("geometry union", err)
	}
	return Geometry{g: united, srid: g.srid, isConstructed: true}, nil
}

// Difference returns the part of g not covered by other.
// Both operands must share the same SRID.
func (g Geometry) Difference(other Geometry) (Geometry, error) {
	if err := g.compatibleWith(other); err != nil {
		return Geometry{}, err
	}

	diff, err := geom.Difference(g.g, other.g)
	if err != nil {
		return Geometry{}, errs.NewValueIsInvalidErrorWithCause("geometry difference", err)
	}
	return Geometry{g: diff, srid: g.srid, isConstructed: true}, nil
}

// Intersects reports whether the two geometries share any point.
func (g Geometry) Intersects(other Geometry) bool {
	if other.IsEmpty() || g.IsEmpty() {
		return false
	}
	return geom.Intersects(g.g, other.g)
}

func (g Geometry) compatibleWith(other Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := other.Validate(); err != nil {
		return err
	}
	if g.srid != other.srid {
		return errs.NewValueIsInvalidErrorWithCause("srid",
			fmt.Errorf("mixed spatial reference systems: %d and %d", g.srid, other.srid))
	}
	return nil
}
