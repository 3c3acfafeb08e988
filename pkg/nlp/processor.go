package nlp

import (
	"context"
	"math"
)

// Slot weights in hundredths so threshold comparisons stay exact.
const (
	weightProduct  = 30
	weightQuantity = 30
	weightDelivery = 20
	weightPayment  = 20

	clarificationCeiling    = 0.5
	clarificationConfidence = 0.8
)

// OrderThreshold is the minimum confidence for an order result to reach item
// resolution and order creation.
const OrderThreshold = 0.7

// Classify turns extracted slots into a ProcessedCommand. General and
// confirmation matches short-circuit with full confidence; otherwise each
// present slot adds its weight.
func Classify(raw RawSlots, dialogue DialogueContext) ProcessedCommand {
	if raw.General != "" {
		return ProcessedCommand{Type: CommandGeneral, Confidence: 1, GeneralType: raw.General}
	}
	if raw.Confirmation != "" {
		return ProcessedCommand{Type: CommandConfirmation, Confidence: 1, ConfirmationType: raw.Confirmation}
	}

	cmd := scoreExtracted(raw.Extracted)
	if cmd.Confidence < clarificationCeiling && dialogue.PreviousCommand != "" {
		cmd.Type = CommandClarification
		cmd.Confidence = clarificationConfidence
	}
	return cmd
}

func scoreExtracted(e Extracted) ProcessedCommand {
	cmd := ProcessedCommand{Type: CommandUnknown, Extracted: e}

	score := 0
	if e.Product != nil {
		score += weightProduct
		cmd.Type = CommandProduct
	}
	if e.Quantity != nil {
		score += weightQuantity
		cmd.Type = CommandOrder
	}
	if e.Delivery != nil {
		score += weightDelivery
		cmd.Type = CommandOrder
	}
	if e.Payment != nil {
		score += weightPayment
		cmd.Type = CommandOrder
	}

	cmd.Confidence = math.Min(float64(score)/100, 1)
	return cmd
}

// ShouldCreateOrder reports whether a result may trigger item resolution.
func (c ProcessedCommand) ShouldCreateOrder() bool {
	return c.Type == CommandOrder && c.Confidence >= OrderThreshold
}

// Normalize coerces a command from an untrusted source into a valid shape.
func (c ProcessedCommand) Normalize() ProcessedCommand {
	switch c.Type {
	case CommandOrder, CommandProduct, CommandConfirmation, CommandGeneral, CommandClarification, CommandUnknown:
	default:
		c.Type = CommandUnknown
	}

	if math.IsNaN(c.Confidence) || c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}

	switch c.ConfirmationType {
	case "", ConfirmYes, ConfirmNo, ConfirmMaybe:
	default:
		c.ConfirmationType = ""
	}
	switch c.GeneralType {
	case "", GeneralHelp, GeneralCancel, GeneralRepeat:
	default:
		c.GeneralType = ""
	}

	switch c.Type {
	case CommandGeneral:
		if c.GeneralType == "" {
			c.Type = CommandUnknown
		}
		c.ConfirmationType = ""
		c.Extracted = Extracted{}
	case CommandConfirmation:
		if c.ConfirmationType == "" {
			c.Type = CommandUnknown
		}
		c.GeneralType = ""
		c.Extracted = Extracted{}
	default:
		c.GeneralType = ""
		c.ConfirmationType = ""
	}
	return c
}

// RuleEngine is the offline engine: deterministic extraction and
// classification with no network access.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

func (e *RuleEngine) Process(ctx context.Context, req Request) (*ProcessedCommand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := Classify(Extract(req.Text, req.Locale), req.Context)
	return &cmd, nil
}
