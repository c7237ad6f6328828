package strategy

import (
	"options-lab/internal/models"
)

// Default strike offsets from spot.
const (
	spreadWidth    = 5.0
	condorNearWing = 10.0
	condorFarWing  = 20.0
)

func buildLongCall(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	strike := p.strike(ParamStrike, ctx.UnderlyingPrice)
	return assemble(LongCall, symbol, ctx, p,
		legSpec{models.Call, models.Buy, strike},
	)
}

func buildLongPut(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	strike := p.strike(ParamStrike, ctx.UnderlyingPrice)
	return assemble(LongPut, symbol, ctx, p,
		legSpec{models.Put, models.Buy, strike},
	)
}

func buildBullCallSpread(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	spot := ctx.UnderlyingPrice
	long := p.strike(ParamLongStrike, spot-spreadWidth)
	short := p.strike(ParamShortStrike, spot+spreadWidth)
	return assemble(BullCallSpread, symbol, ctx, p,
		legSpec{models.Call, models.Buy, long},
		legSpec{models.Call, models.Sell, short},
	)
}

func buildBearPutSpread(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	spot := ctx.UnderlyingPrice
	long := p.strike(ParamLongStrike, spot+spreadWidth)
	short := p.strike(ParamShortStrike, spot-spreadWidth)
	return assemble(BearPutSpread, symbol, ctx, p,
		legSpec{models.Put, models.Buy, long},
		legSpec{models.Put, models.Sell, short},
	)
}

func buildIronCondor(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	spot := ctx.UnderlyingPrice
	return assemble(IronCondor, symbol, ctx, p,
		legSpec{models.Put, models.Buy, p.strike(ParamPutLongStrike, spot-condorFarWing)},
		legSpec{models.Put, models.Sell, p.strike(ParamPutShortStrike, spot-condorNearWing)},
		legSpec{models.Call, models.Sell, p.strike(ParamCallShortStrike, spot+condorNearWing)},
		legSpec{models.Call, models.Buy, p.strike(ParamCallLongStrike, spot+condorFarWing)},
	)
}

func buildLongStraddle(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	strike := p.strike(ParamStrike, ctx.UnderlyingPrice)
	return assemble(LongStraddle, symbol, ctx, p,
		legSpec{models.Call, models.Buy, strike},
		legSpec{models.Put, models.Buy, strike},
	)
}

// The covered shares are owned by the caller and are not a leg.
func buildCoveredCall(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	strike := p.strike(ParamStrike, ctx.UnderlyingPrice+spreadWidth)
	return assemble(CoveredCall, symbol, ctx, p,
		legSpec{models.Call, models.Sell, strike},
	)
}

// The securing cash is held by the caller and is not a leg.
func buildCashSecuredPut(symbol string, ctx models.StrategyContext, p Params) (*models.Strategy, error) {
	strike := p.strike(ParamStrike, ctx.UnderlyingPrice-spreadWidth)
	return assemble(CashSecuredPut, symbol, ctx, p,
		legSpec{models.Put, models.Sell, strike},
	)
}
