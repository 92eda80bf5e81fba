package businessflow

import (
	"context"
	"errors"
	"time"

	"github.com/andescargo/freight-quotes/app/dto"
	"github.com/andescargo/freight-quotes/models"
	"github.com/andescargo/freight-quotes/repository"
	"github.com/andescargo/freight-quotes/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteFlow defines the pricing operations of the engine
type QuoteFlow interface {
	// CalculateQuote prices a shipment against a caller-supplied rate
	// without touching the catalog or persisting anything. Pure.
	CalculateQuote(ctx context.Context, req *dto.CalculateQuoteRequest) (*dto.QuoteResultResponse, error)
	// CreateQuote resolves today's effective rate (and weight tier, when
	// the version carries tiers), prices the shipment and persists the
	// quote together with its items.
	CreateQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.CreateQuoteResponse, error)
	// ListQuotes pages persisted quotes newest first, optionally scoped
	// to one creator.
	ListQuotes(ctx context.Context, req *dto.ListQuotesRequest) (*dto.ListQuotesResponse, error)
}

type QuoteFlowImpl struct {
	quoteRepo              repository.QuoteRepository
	rateVersionRepo        repository.RateVersionRepository
	weightTierRepo         repository.WeightTierRepository
	tx                     repository.TxRunner
	validator              *validator.Validate
	defaultVolumetricRatio decimal.Decimal
	logger                 *zap.Logger
}

func NewQuoteFlow(
	quoteRepo repository.QuoteRepository,
	rateVersionRepo repository.RateVersionRepository,
	weightTierRepo repository.WeightTierRepository,
	tx repository.TxRunner,
	defaultVolumetricFactor decimal.Decimal,
	logger *zap.Logger,
) QuoteFlow {
	if !defaultVolumetricFactor.IsPositive() {
		defaultVolumetricFactor = decimal.RequireFromString(utils.DefaultVolumetricFactor)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteFlowImpl{
		quoteRepo:              quoteRepo,
		rateVersionRepo:        rateVersionRepo,
		weightTierRepo:         weightTierRepo,
		tx:                     tx,
		validator:              validator.New(),
		defaultVolumetricRatio: defaultVolumetricFactor,
		logger:                 logger,
	}
}

func (f *QuoteFlowImpl) CalculateQuote(ctx context.Context, req *dto.CalculateQuoteRequest) (*dto.QuoteResultResponse, error) {
	if err := f.validator.Struct(req); err != nil {
		return nil, NewBusinessError("QUOTE_REQUEST_INVALID", "Invalid quote request", err)
	}
	if req.PiecesCount != nil && *req.PiecesCount != len(req.Pieces) {
		return nil, NewBusinessError("QUOTE_PIECE_COUNT_MISMATCH", "Declared piece count does not match supplied pieces", ErrPieceCountMismatch)
	}
	if !req.RateAmount.IsPositive() {
		return nil, NewBusinessError("RATE_AMOUNT_INVALID", "Rate amount must be greater than zero", ErrInvalidRateAmount)
	}

	factor := req.VolumetricFactor
	if factor.IsZero() {
		factor = f.defaultVolumetricRatio
	}

	totals, err := AggregateShipment(toPieceInputs(req.Pieces), factor)
	if err != nil {
		return nil, NewBusinessError("QUOTE_SHIPMENT_INVALID", "Invalid shipment", err)
	}

	result := priceShipment(req.TransportMode, totals, Quantize(req.RateAmount, utils.ScaleRate))
	quotesCalculatedTotal.WithLabelValues(result.TransportMode, result.ChargeableBasis).Inc()
	return result, nil
}

// CreateQuote resolves the rate as of today. When the version carries active
// weight tiers the matching tier's rate replaces the version rate; a version
// with tiers but no band covering the chargeable value is a hard failure.
// Tiers are matched against the chargeable value as the basis rule computes
// it, so on a VOLUME basis the lookup quantity is the cubic-meter total.
func (f *QuoteFlowImpl) CreateQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.CreateQuoteResponse, error) {
	if err := f.validator.Struct(req); err != nil {
		return nil, NewBusinessError("QUOTE_REQUEST_INVALID", "Invalid quote request", err)
	}
	if req.PiecesCount != nil && *req.PiecesCount != len(req.Pieces) {
		return nil, NewBusinessError("QUOTE_PIECE_COUNT_MISMATCH", "Declared piece count does not match supplied pieces", ErrPieceCountMismatch)
	}

	key, err := pricingKeyFromParts(req.LocationCode, req.OriginCode, req.DestinationCode, req.TransportMode)
	if err != nil {
		return nil, err
	}

	factor := f.defaultVolumetricRatio
	if req.VolumetricFactor != nil {
		factor = *req.VolumetricFactor
	}

	totals, err := AggregateShipment(toPieceInputs(req.Pieces), factor)
	if err != nil {
		return nil, NewBusinessError("QUOTE_SHIPMENT_INVALID", "Invalid shipment", err)
	}

	version, err := f.rateVersionRepo.EffectiveAsOf(ctx, key, utils.Today())
	if err != nil {
		return nil, NewBusinessError("RATE_LOOKUP_FAILED", "Failed to look up effective rate", err)
	}
	if version == nil {
		return nil, NewBusinessError("RATE_NOT_FOUND", "No effective rate version covers today", ErrRateNotFound)
	}

	rateApplied := Quantize(version.RateAmount, utils.ScaleRate)
	chargeableValue := chargeableValueOf(totals)

	var appliedTierID *uint
	tiers, err := f.weightTierRepo.ActiveByRateVersion(ctx, version.ID)
	if err != nil {
		return nil, NewBusinessError("TIER_LOOKUP_FAILED", "Failed to load weight tiers", err)
	}
	if len(tiers) > 0 {
		tier := matchTier(tiers, chargeableValue)
		if tier == nil {
			return nil, NewBusinessError("TIER_NOT_FOUND", "No weight tier matches the chargeable weight", ErrTierNotFound)
		}
		rateApplied = Quantize(tier.RateAmount, utils.ScaleRate)
		appliedTierID = &tier.ID
	}

	result := priceShipment(req.TransportMode, totals, rateApplied)

	quote := &models.Quote{
		TransportMode:           result.TransportMode,
		PricingKey:              key.String(),
		AppliedRateVersionID:    &version.ID,
		AppliedTierID:           appliedTierID,
		PiecesCount:             result.PiecesCount,
		ActualWeightTotalKg:     result.ActualWeightTotalKg,
		VolumetricWeightTotalKg: result.VolumetricWeightTotalKg,
		VolumeTotalM3:           result.VolumeTotalM3,
		ChargeableBasis:         result.ChargeableBasis,
		ChargeableValue:         result.ChargeableValue,
		RateApplied:             result.RateApplied,
		TotalAmount:             result.TotalAmount,
		CreatedBy:               req.CreatedBy,
		CreatedAt:               utils.UTCNow(),
		Items:                   make([]models.QuoteItem, 0, len(totals.Pieces)),
	}
	for _, piece := range totals.Pieces {
		quote.Items = append(quote.Items, models.QuoteItem{
			WeightKg:           piece.WeightKg,
			LengthCm:           piece.LengthCm,
			WidthCm:            piece.WidthCm,
			HeightCm:           piece.HeightCm,
			VolumeCm3:          piece.VolumeCm3,
			VolumetricWeightKg: piece.VolumetricWeightKg,
		})
	}

	err = f.tx.WithTx(ctx, func(txCtx context.Context) error {
		return f.quoteRepo.Save(txCtx, quote)
	})
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("QUOTE_SAVE_FAILED", "Failed to persist quote", err)
	}

	quotesCalculatedTotal.WithLabelValues(result.TransportMode, result.ChargeableBasis).Inc()
	quotesPersistedTotal.Inc()
	f.logger.Info("quote persisted",
		zap.String("uuid", quote.UUID.String()),
		zap.String("pricing_key", quote.PricingKey),
		zap.String("basis", quote.ChargeableBasis),
		zap.String("total_amount", quote.TotalAmount.String()),
	)

	return &dto.CreateQuoteResponse{
		Message:                "Quote created successfully",
		UUID:                   quote.UUID.String(),
		AppliedRateVersionUUID: version.UUID.String(),
		AppliedTierID:          appliedTierID,
		Result:                 *result,
		CreatedAt:              quote.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (f *QuoteFlowImpl) ListQuotes(ctx context.Context, req *dto.ListQuotesRequest) (*dto.ListQuotesResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var quotes []*models.Quote
	var err error
	if req.CreatedBy != "" {
		quotes, err = f.quoteRepo.ListByCreator(ctx, req.CreatedBy, limit, offset)
	} else {
		quotes, err = f.quoteRepo.ListRecent(ctx, limit, offset)
	}
	if err != nil {
		return nil, NewBusinessError("QUOTE_LIST_FAILED", "Failed to list quotes", err)
	}

	items := make([]dto.QuoteDTO, 0, len(quotes))
	for _, quote := range quotes {
		items = append(items, dto.QuoteDTO{
			UUID:            quote.UUID.String(),
			TransportMode:   quote.TransportMode,
			PricingKey:      quote.PricingKey,
			PiecesCount:     quote.PiecesCount,
			ChargeableBasis: quote.ChargeableBasis,
			ChargeableValue: quote.ChargeableValue,
			RateApplied:     quote.RateApplied,
			TotalAmount:     quote.TotalAmount,
			CreatedBy:       quote.CreatedBy,
			CreatedAt:       quote.CreatedAt,
		})
	}
	return &dto.ListQuotesResponse{
		Message: "Quotes retrieved successfully",
		Items:   items,
	}, nil
}

// chargeableValueOf applies the basis decision: weight wins on ties, and the
// actual weight total in kg is compared directly against the volume total in
// cubic meters. The kg-to-m3 comparison is the catalog's historical pricing
// rule and must stay exactly as is.
func chargeableValueOf(totals *ShipmentTotals) decimal.Decimal {
	if totals.ActualWeightTotalKg.GreaterThanOrEqual(totals.VolumeTotalM3) {
		return Quantize(totals.ActualWeightTotalKg, utils.ScaleWeight)
	}
	return Quantize(totals.VolumeTotalM3, utils.ScaleWeight)
}

func priceShipment(transportMode string, totals *ShipmentTotals, rateApplied decimal.Decimal) *dto.QuoteResultResponse {
	basis := models.ChargeableBasisVolume
	if totals.ActualWeightTotalKg.GreaterThanOrEqual(totals.VolumeTotalM3) {
		basis = models.ChargeableBasisWeight
	}
	chargeableValue := chargeableValueOf(totals)
	totalAmount := Quantize(chargeableValue.Mul(rateApplied), utils.ScaleMoney)

	items := make([]dto.PieceCalculationDTO, 0, len(totals.Pieces))
	for _, piece := range totals.Pieces {
		items = append(items, dto.PieceCalculationDTO{
			WeightKg:           piece.WeightKg,
			LengthCm:           piece.LengthCm,
			WidthCm:            piece.WidthCm,
			HeightCm:           piece.HeightCm,
			VolumeCm3:          piece.VolumeCm3,
			VolumetricWeightKg: piece.VolumetricWeightKg,
		})
	}

	return &dto.QuoteResultResponse{
		TransportMode:           transportMode,
		PiecesCount:             len(totals.Pieces),
		ActualWeightTotalKg:     totals.ActualWeightTotalKg,
		VolumetricWeightTotalKg: totals.VolumetricWeightTotalKg,
		VolumeTotalM3:           totals.VolumeTotalM3,
		ChargeableBasis:         basis,
		ChargeableValue:         chargeableValue,
		RateApplied:             rateApplied,
		TotalAmount:             totalAmount,
		Items:                   items,
	}
}

func toPieceInputs(pieces []dto.PieceDTO) []PieceInput {
	inputs := make([]PieceInput, 0, len(pieces))
	for _, piece := range pieces {
		inputs = append(inputs, PieceInput{
			WeightKg: piece.WeightKg,
			LengthCm: piece.LengthCm,
			WidthCm:  piece.WidthCm,
			HeightCm: piece.HeightCm,
		})
	}
	return inputs
}
