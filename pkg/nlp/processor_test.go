package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySpokenOrder(t *testing.T) {
	raw := Extract("order 2 kg of rice delivered to 12 MG Road by tomorrow evening pay by cash", english)
	cmd := Classify(raw, DialogueContext{})

	assert.Equal(t, CommandOrder, cmd.Type)
	assert.Equal(t, 1.0, cmd.Confidence)
	assert.True(t, cmd.ShouldCreateOrder())
}

func TestClassifyWeights(t *testing.T) {
	qty := 2.0
	product := &ProductSlot{Name: "rice"}
	quantity := &QuantitySlot{Kind: QuantityExact, Value: &qty, Unit: "kg"}
	delivery := &DeliverySlot{Address: "12 MG Road"}
	payment := &PaymentSlot{Method: "upi"}

	tests := []struct {
		name       string
		extracted  Extracted
		typ        CommandType
		confidence float64
	}{
		{"nothing", Extracted{}, CommandUnknown, 0},
		{"product only", Extracted{Product: product}, CommandProduct, 0.3},
		{"quantity only", Extracted{Quantity: quantity}, CommandOrder, 0.3},
		{"payment only", Extracted{Payment: payment}, CommandOrder, 0.2},
		{"product and delivery", Extracted{Product: product, Delivery: delivery}, CommandOrder, 0.5},
		{"product quantity", Extracted{Product: product, Quantity: quantity}, CommandOrder, 0.6},
		{"product delivery payment", Extracted{Product: product, Delivery: delivery, Payment: payment}, CommandOrder, 0.7},
		{"all", Extracted{Product: product, Quantity: quantity, Delivery: delivery, Payment: payment}, CommandOrder, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Classify(RawSlots{Extracted: tt.extracted}, DialogueContext{})
			assert.Equal(t, tt.typ, cmd.Type)
			assert.Equal(t, tt.confidence, cmd.Confidence)
			assert.GreaterOrEqual(t, cmd.Confidence, 0.0)
			assert.LessOrEqual(t, cmd.Confidence, 1.0)
		})
	}
}

func TestClassifyThresholdGate(t *testing.T) {
	qty := 1.0
	product := &ProductSlot{Name: "milk"}
	delivery := &DeliverySlot{Address: "home"}
	payment := &PaymentSlot{Method: "card"}

	atThreshold := Classify(RawSlots{Extracted: Extracted{Product: product, Delivery: delivery, Payment: payment}}, DialogueContext{})
	assert.True(t, atThreshold.ShouldCreateOrder())

	below := Classify(RawSlots{Extracted: Extracted{Product: product, Quantity: &QuantitySlot{Kind: QuantityExact, Value: &qty}}}, DialogueContext{})
	assert.Equal(t, CommandOrder, below.Type)
	assert.False(t, below.ShouldCreateOrder())

	productOnly := Classify(RawSlots{Extracted: Extracted{Product: product}}, DialogueContext{})
	assert.False(t, productOnly.ShouldCreateOrder())
}

func TestClassifyClarificationNeedsPriorTurn(t *testing.T) {
	raw := Extract("hmm the red one", english)

	cmd := Classify(raw, DialogueContext{})
	assert.Equal(t, CommandUnknown, cmd.Type)
	assert.Equal(t, 0.0, cmd.Confidence)

	cmd = Classify(raw, DialogueContext{PreviousCommand: "buy apples"})
	assert.Equal(t, CommandClarification, cmd.Type)
	assert.Equal(t, 0.8, cmd.Confidence)

	// 0.5 is not below the ceiling.
	cmd = Classify(RawSlots{Extracted: Extracted{Product: &ProductSlot{Name: "x"}, Payment: &PaymentSlot{Method: "upi"}}},
		DialogueContext{PreviousCommand: "buy apples"})
	assert.Equal(t, CommandOrder, cmd.Type)
	assert.Equal(t, 0.5, cmd.Confidence)
}

func TestClassifyShortCircuits(t *testing.T) {
	cmd := Classify(Extract("cancel", english), DialogueContext{PreviousCommand: "buy rice"})
	assert.Equal(t, CommandGeneral, cmd.Type)
	assert.Equal(t, GeneralCancel, cmd.GeneralType)
	assert.Empty(t, cmd.ConfirmationType)
	assert.Equal(t, 1.0, cmd.Confidence)
	assert.True(t, cmd.Extracted.IsEmpty())

	cmd = Classify(Extract("yes", english), DialogueContext{})
	assert.Equal(t, CommandConfirmation, cmd.Type)
	assert.Equal(t, ConfirmYes, cmd.ConfirmationType)
	assert.Empty(t, cmd.GeneralType)
	assert.Equal(t, 1.0, cmd.Confidence)
}

func TestNormalize(t *testing.T) {
	cmd := ProcessedCommand{Type: "purchase", Confidence: 3}.Normalize()
	assert.Equal(t, CommandUnknown, cmd.Type)
	assert.Equal(t, 1.0, cmd.Confidence)

	cmd = ProcessedCommand{
		Type:             CommandConfirmation,
		Confidence:       -1,
		ConfirmationType: ConfirmYes,
		GeneralType:      GeneralHelp,
		Extracted:        Extracted{Product: &ProductSlot{Name: "rice"}},
	}.Normalize()
	assert.Equal(t, CommandConfirmation, cmd.Type)
	assert.Equal(t, 0.0, cmd.Confidence)
	assert.Empty(t, cmd.GeneralType)
	assert.True(t, cmd.Extracted.IsEmpty())

	cmd = ProcessedCommand{Type: CommandGeneral, Confidence: 1}.Normalize()
	assert.Equal(t, CommandUnknown, cmd.Type)

	cmd = ProcessedCommand{Type: CommandOrder, Confidence: 0.9, ConfirmationType: ConfirmNo}.Normalize()
	assert.Equal(t, CommandOrder, cmd.Type)
	assert.Empty(t, cmd.ConfirmationType)
}

func TestRuleEngineProcess(t *testing.T) {
	engine := NewRuleEngine()

	cmd, err := engine.Process(context.Background(), Request{
		Text:   "buy 2 kg sugar pay by cash",
		Locale: english,
	})
	require.NoError(t, err)
	assert.Equal(t, CommandOrder, cmd.Type)
	assert.Equal(t, 0.8, cmd.Confidence)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Process(ctx, Request{Text: "yes"})
	assert.ErrorIs(t, err, context.Canceled)
}
