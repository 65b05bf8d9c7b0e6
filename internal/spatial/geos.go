package spatial

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// toGEOS hands a go-geom geometry to GEOS through WKB.
func toGEOS(gctx *geos.Context, g geom.T) (*geos.Geom, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: encode WKB")
	}
	out, err := gctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: decode WKB in GEOS")
	}
	return out, nil
}

// polygonsFromGEOS returns the polygonal parts of a GEOS result as go-geom
// polygons, one per component. Non-polygonal parts are dropped.
func polygonsFromGEOS(g *geos.Geom) ([]*geom.Polygon, error) {
	if g == nil || g.IsEmpty() {
		return nil, nil
	}
	t, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, eris.Wrap(err, "spatial: decode GEOS WKB")
	}
	return collectPolygons(t), nil
}

func collectPolygons(t geom.T) []*geom.Polygon {
	switch v := t.(type) {
	case *geom.Polygon:
		if v.Empty() {
			return nil
		}
		return []*geom.Polygon{v}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, v.NumPolygons())
		for i := 0; i < v.NumPolygons(); i++ {
			if p := v.Polygon(i); !p.Empty() {
				out = append(out, p)
			}
		}
		return out
	case *geom.GeometryCollection:
		var out []*geom.Polygon
		for _, child := range v.Geoms() {
			out = append(out, collectPolygons(child)...)
		}
		return out
	default:
		return nil
	}
}

// multiPolygon assembles polygons into a single XY MultiPolygon.
func multiPolygon(polys []*geom.Polygon) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(geom.XY)
	for _, p := range polys {
		if err := mp.Push(p); err != nil {
			return nil, eris.Wrap(err, "spatial: assemble multipolygon")
		}
	}
	return mp, nil
}
