package sweep

import (
	"math"

	"github.com/ungerik/go3d/float64/vec2"
	"github.com/ungerik/go3d/float64/vec3"
)

// AttributeSource supplies named per-element attributes from the host
// model database. Lookups return false when the element does not carry
// the attribute; every attribute consumed here is optional.
type AttributeSource interface {
	Vector(elementID uint64, name string) (vec3.T, bool)
	Scalar(elementID uint64, name string) (float64, bool)
	String(elementID uint64, name string) (string, bool)
}

// PolygonProcessor resolves raw catalogue wires into a sweepable
// profile: fillet expansion, winding normalization, degenerate vertex
// removal. Implementations live with the catalogue, not here.
type PolygonProcessor interface {
	Process(wires [][]vec2.T, fillets [][]float64) (Profile, error)
}

// Overrides collects the optional per-element attributes that modify
// how an element is framed and swept. Nil pointer fields mean the
// attribute is absent and the documented default applies.
type Overrides struct {
	StartCapNormal *vec3.T // DRNS: start cap plane normal
	EndCapNormal   *vec3.T // DRNE: end cap plane normal
	SecondaryRef   *vec3.T // YDIR: secondary orientation hint
	OperatingDir   *vec3.T // OPDI: operating direction, beats YDIR
	CutPlane       *vec3.T // CUTP: joint cut plane direction

	Roll        float64 // BANG, radians
	PosOffset   vec3.T  // NPOS: world-space position offset
	LocalOffset vec3.T  // DELP: offset in the element frame
	AxialOffset float64 // ZDIS: offset along the element forward axis
	Mirror      bool    // LMIRR
}

// attribute names as the host model spells them.
const (
	attrStartCapNormal = "DRNS"
	attrEndCapNormal   = "DRNE"
	attrSecondaryRef   = "YDIR"
	attrOperatingDir   = "OPDI"
	attrCutPlane       = "CUTP"
	attrRoll           = "BANG"
	attrPosOffset      = "NPOS"
	attrLocalOffset    = "DELP"
	attrAxialOffset    = "ZDIS"
	attrMirror         = "LMIRR"
)

// ResolveOverrides reads the sweep-relevant attributes of an element.
// Roll is stored in degrees in the model and converted here.
func ResolveOverrides(src AttributeSource, elementID uint64) Overrides {
	var o Overrides
	if src == nil {
		return o
	}

	vecPtr := func(name string) *vec3.T {
		v, ok := src.Vector(elementID, name)
		if !ok || v.LengthSqr() < zeroTol {
			return nil
		}
		return &v
	}
	o.StartCapNormal = vecPtr(attrStartCapNormal)
	o.EndCapNormal = vecPtr(attrEndCapNormal)
	o.SecondaryRef = vecPtr(attrSecondaryRef)
	o.OperatingDir = vecPtr(attrOperatingDir)
	o.CutPlane = vecPtr(attrCutPlane)

	if bang, ok := src.Scalar(elementID, attrRoll); ok {
		o.Roll = bang * math.Pi / 180
	}
	if npos, ok := src.Vector(elementID, attrPosOffset); ok {
		o.PosOffset = npos
	}
	if delp, ok := src.Vector(elementID, attrLocalOffset); ok {
		o.LocalOffset = delp
	}
	if zdis, ok := src.Scalar(elementID, attrAxialOffset); ok {
		o.AxialOffset = zdis
	}
	if lm, ok := src.Scalar(elementID, attrMirror); ok {
		o.Mirror = lm != 0
	}
	return o
}

// ResolveFrame derives the element frame from the overrides.
// OperatingDir, when present, replaces the forward axis outright;
// otherwise the frame follows forward with SecondaryRef (then the
// fallback chain) as the up hint. A CutPlane override re-derives the
// frame from the resolved forward last, matching the host model's
// attribute priority.
func (o Overrides) ResolveFrame(forward vec3.T) (Frame, error) {
	var (
		f   Frame
		err error
	)
	switch {
	case o.OperatingDir != nil:
		f, err = ResolveOpDir(*o.OperatingDir)
	case o.SecondaryRef != nil:
		f, err = ResolveYDir(forward, *o.SecondaryRef)
	default:
		f, err = Resolve(forward, nil)
	}
	if err != nil {
		return Frame{}, err
	}
	if o.CutPlane != nil {
		return ResolveCutPlane(f.Forward, *o.CutPlane)
	}
	return f, nil
}

// ApplyPosition offsets an element position by the override offsets:
// the world-space offset, the local offset rotated into the element
// frame, and the axial offset along the frame's forward axis.
func (o Overrides) ApplyPosition(base vec3.T, f Frame) vec3.T {
	p := vec3.Add(&base, &o.PosOffset)
	local := vec3.T{
		f.Right[0]*o.LocalOffset[0] + f.Up[0]*o.LocalOffset[1] + f.Forward[0]*o.LocalOffset[2],
		f.Right[1]*o.LocalOffset[0] + f.Up[1]*o.LocalOffset[1] + f.Forward[1]*o.LocalOffset[2],
		f.Right[2]*o.LocalOffset[0] + f.Up[2]*o.LocalOffset[1] + f.Forward[2]*o.LocalOffset[2],
	}
	p = vec3.Add(&p, &local)
	p[0] += f.Forward[0] * o.AxialOffset
	p[1] += f.Forward[1] * o.AxialOffset
	p[2] += f.Forward[2] * o.AxialOffset
	return p
}
