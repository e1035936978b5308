package scripting

import (
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/data"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Pricing answers cost, refund and build-spec questions from the catalog,
// letting the Lua rules adjust the numbers. A nil engine means catalog
// values only.
type Pricing struct {
	catalog *data.Catalog
	engine  *Engine
	log     *zap.Logger
}

func NewPricing(catalog *data.Catalog, engine *Engine, log *zap.Logger) *Pricing {
	return &Pricing{catalog: catalog, engine: engine, log: log}
}

// BuildCost returns 0 for kinds the catalog does not list.
func (p *Pricing) BuildCost(kind grid.UnitKind) int {
	b := p.catalog.Get(kind)
	if b == nil {
		p.log.Warn("unit kind not in catalog", zap.Stringer("kind", kind))
		return 0
	}
	if p.engine == nil {
		return b.Cost
	}
	return p.engine.CalcBuildCost(CostContext{
		Kind:         kind.String(),
		Base:         b.Cost,
		Cells:        int(b.Footprint.W * b.Footprint.H),
		BuildSeconds: b.BuildSeconds,
	})
}

func (p *Pricing) RefundFor(kind grid.UnitKind, paid int) int {
	b := p.catalog.Get(kind)
	if b == nil {
		return 0
	}
	if p.engine == nil {
		if b.Refundable {
			return paid
		}
		return 0
	}
	return p.engine.CalcRefund(RefundContext{Kind: kind.String(), Paid: paid, Refundable: b.Refundable})
}

func (p *Pricing) Spec(kind grid.UnitKind) build.UnitSpec {
	b := p.catalog.Get(kind)
	if b == nil {
		return build.UnitSpec{Prefab: kind.String(), Footprint: grid.Size{W: 1, H: 1}}
	}
	return build.UnitSpec{Prefab: b.Prefab, Footprint: b.Footprint, BuildTime: b.BuildTime()}
}
