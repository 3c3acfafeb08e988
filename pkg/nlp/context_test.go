package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(t *testing.T, dialogue DialogueContext, utterance string) (ProcessedCommand, DialogueContext) {
	t.Helper()
	cmd := Classify(Extract(utterance, english), dialogue)
	return cmd, Merge(dialogue, cmd, utterance)
}

func TestMergeAccumulatesAcrossTurns(t *testing.T) {
	var dialogue DialogueContext

	_, dialogue = turn(t, dialogue, "buy 2 kg of rice")
	require.NotNil(t, dialogue.Product)
	require.NotNil(t, dialogue.Quantity)
	assert.Nil(t, dialogue.Delivery)
	assert.Equal(t, "buy 2 kg of rice", dialogue.PreviousCommand)

	_, dialogue = turn(t, dialogue, "deliver to 12 MG Road")
	require.NotNil(t, dialogue.Delivery)
	assert.Equal(t, "12 MG Road", dialogue.Delivery.Address)
	assert.Equal(t, "rice", dialogue.Product.Name)

	_, dialogue = turn(t, dialogue, "pay by upi")
	require.NotNil(t, dialogue.Payment)
	assert.Equal(t, "upi", dialogue.Payment.Method)

	effective := dialogue.Command()
	assert.Equal(t, CommandOrder, effective.Type)
	assert.Equal(t, 1.0, effective.Confidence)
}

func TestMergeReplacesSlotWhole(t *testing.T) {
	var dialogue DialogueContext
	_, dialogue = turn(t, dialogue, "deliver to 12 MG Road by tomorrow")
	require.Equal(t, "tomorrow", dialogue.Delivery.Time)

	_, dialogue = turn(t, dialogue, "deliver to 5 Park Street")
	assert.Equal(t, "5 Park Street", dialogue.Delivery.Address)
	assert.Empty(t, dialogue.Delivery.Time)
}

func TestMergeResets(t *testing.T) {
	var dialogue DialogueContext
	_, dialogue = turn(t, dialogue, "buy 2 kg of rice pay by cash")
	require.False(t, dialogue.IsEmpty())

	for _, utterance := range []string{"no", "cancel", "nope"} {
		cmd, next := turn(t, dialogue, utterance)
		assert.True(t, cmd.ResetsContext(), utterance)
		assert.True(t, next.IsEmpty(), utterance)
	}

	_, kept := turn(t, dialogue, "maybe")
	assert.Equal(t, dialogue.Product, kept.Product)
	assert.Equal(t, "maybe", kept.PreviousCommand)
}

func TestMergeIsIdempotent(t *testing.T) {
	var dialogue DialogueContext
	_, dialogue = turn(t, dialogue, "buy 3 pieces of bread")

	cmd := Classify(Extract("deliver to 9 Lake Road pay by card", english), dialogue)
	once := Merge(dialogue, cmd, "deliver to 9 Lake Road pay by card")
	twice := Merge(once, cmd, "deliver to 9 Lake Road pay by card")
	assert.Equal(t, once, twice)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	v := 2.0
	dialogue := DialogueContext{
		Quantity:        &QuantitySlot{Kind: QuantityExact, Value: &v, Unit: "kg"},
		PreviousCommand: "buy 2 kg rice",
	}
	snapshot := dialogue

	next := Merge(dialogue, ProcessedCommand{Type: CommandOrder}, "and some salt")
	*next.Quantity.Value = 5

	assert.Equal(t, 2.0, *dialogue.Quantity.Value)
	assert.Equal(t, snapshot.PreviousCommand, dialogue.PreviousCommand)
}
