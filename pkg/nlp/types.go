package nlp

import "context"

type CommandType string

const (
	CommandOrder         CommandType = "order"
	CommandProduct       CommandType = "product"
	CommandConfirmation  CommandType = "confirmation"
	CommandGeneral       CommandType = "general"
	CommandClarification CommandType = "clarification"
	CommandUnknown       CommandType = "unknown"
)

type ConfirmationType string

const (
	ConfirmYes   ConfirmationType = "yes"
	ConfirmNo    ConfirmationType = "no"
	ConfirmMaybe ConfirmationType = "maybe"
)

type GeneralType string

const (
	GeneralHelp   GeneralType = "help"
	GeneralCancel GeneralType = "cancel"
	GeneralRepeat GeneralType = "repeat"
)

type QuantityKind string

const (
	QuantityExact       QuantityKind = "exact"
	QuantityApproximate QuantityKind = "approximate"
	QuantityRange       QuantityKind = "range"
)

type ProductSlot struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// QuantitySlot carries Value for exact and approximate kinds, Min and Max for ranges.
type QuantitySlot struct {
	Kind  QuantityKind `json:"type"`
	Value *float64     `json:"value,omitempty"`
	Min   *float64     `json:"min,omitempty"`
	Max   *float64     `json:"max,omitempty"`
	Unit  string       `json:"unit,omitempty"`
}

type DeliverySlot struct {
	Address      string `json:"address,omitempty"`
	Time         string `json:"time,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type PaymentSlot struct {
	Method     string `json:"method,omitempty"`
	SplitCount int    `json:"splitCount,omitempty"`
}

type Extracted struct {
	Product  *ProductSlot  `json:"product,omitempty"`
	Quantity *QuantitySlot `json:"quantity,omitempty"`
	Delivery *DeliverySlot `json:"delivery,omitempty"`
	Payment  *PaymentSlot  `json:"payment,omitempty"`
}

func (e Extracted) IsEmpty() bool {
	return e.Product == nil && e.Quantity == nil && e.Delivery == nil && e.Payment == nil
}

type ProcessedCommand struct {
	Type             CommandType      `json:"type"`
	Confidence       float64          `json:"confidence"`
	Extracted        Extracted        `json:"extracted"`
	GeneralType      GeneralType      `json:"generalType,omitempty"`
	ConfirmationType ConfirmationType `json:"confirmationType,omitempty"`
}

// ResetsContext reports whether the command discards the accumulated dialogue.
func (c ProcessedCommand) ResetsContext() bool {
	return c.ConfirmationType == ConfirmNo || c.GeneralType == GeneralCancel
}

// RawSlots is the extractor output before classification.
type RawSlots struct {
	Extracted    Extracted
	Confirmation ConfirmationType
	General      GeneralType
}

type Locale struct {
	Language string `json:"language"`
	Dialect  string `json:"dialect"`
}

type Request struct {
	Text    string          `json:"text"`
	Locale  Locale          `json:"locale"`
	Context DialogueContext `json:"context"`
}

// Engine turns an utterance into a ProcessedCommand. The rule engine runs
// locally; remote providers satisfy the same contract.
type Engine interface {
	Process(ctx context.Context, req Request) (*ProcessedCommand, error)
}
