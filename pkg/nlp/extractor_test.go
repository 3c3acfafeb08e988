package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var english = Locale{Language: "english", Dialect: "standard"}

func TestExtractFullOrderUtterance(t *testing.T) {
	slots := Extract("order 2 kg of rice delivered to 12 MG Road by tomorrow evening pay by cash", english)

	e := slots.Extracted
	require.NotNil(t, e.Product)
	assert.Equal(t, "rice", e.Product.Name)

	require.NotNil(t, e.Quantity)
	assert.Equal(t, QuantityExact, e.Quantity.Kind)
	require.NotNil(t, e.Quantity.Value)
	assert.Equal(t, 2.0, *e.Quantity.Value)
	assert.Equal(t, "kg", e.Quantity.Unit)

	require.NotNil(t, e.Delivery)
	assert.Equal(t, "12 MG Road", e.Delivery.Address)
	assert.Equal(t, "tomorrow evening", e.Delivery.Time)

	require.NotNil(t, e.Payment)
	assert.Equal(t, "cash_on_delivery", e.Payment.Method)

	assert.Empty(t, slots.General)
	assert.Empty(t, slots.Confirmation)
}

func TestExtractDecimalQuantityKeepsProduct(t *testing.T) {
	raw := Extract("order 1.5 kg of rice delivered to 12 MG Road by tomorrow evening pay by cash", english)

	e := raw.Extracted
	require.NotNil(t, e.Product)
	assert.Equal(t, "rice", e.Product.Name)
	require.NotNil(t, e.Quantity)
	require.NotNil(t, e.Quantity.Value)
	assert.Equal(t, 1.5, *e.Quantity.Value)
	assert.Equal(t, "kg", e.Quantity.Unit)
	require.NotNil(t, e.Delivery)
	assert.Equal(t, "12 MG Road", e.Delivery.Address)
	assert.Equal(t, "tomorrow evening", e.Delivery.Time)
	require.NotNil(t, e.Payment)
	assert.Equal(t, "cash_on_delivery", e.Payment.Method)

	cmd := Classify(raw, DialogueContext{})
	assert.Equal(t, CommandOrder, cmd.Type)
	assert.Equal(t, 1.0, cmd.Confidence)

	e = Extract("buy 0.5 l of milk and deliver to Abbey Road pay by upi", english).Extracted
	require.NotNil(t, e.Product)
	assert.Equal(t, "milk", e.Product.Name)
	require.NotNil(t, e.Payment)
	assert.Equal(t, "upi", e.Payment.Method)

	// A sentence-ending dot still closes the clause.
	p := Extract("Buy sugar. Deliver to 3 Beach Road", english).Extracted.Product
	require.NotNil(t, p)
	assert.Equal(t, "sugar", p.Name)
}

func TestExtractQuantityKinds(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		kind      QuantityKind
		value     float64
		min, max  float64
		unit      string
	}{
		{name: "exact", utterance: "buy 3 pieces of bread", kind: QuantityExact, value: 3, unit: "piece"},
		{name: "exact decimal no space", utterance: "get 1.5l milk", kind: QuantityExact, value: 1.5, unit: "l"},
		{name: "approximate", utterance: "order around 5 kg onions", kind: QuantityApproximate, value: 5, unit: "kg"},
		{name: "range", utterance: "buy between 2 and 4 litres of oil", kind: QuantityRange, min: 2, max: 4, unit: "l"},
		{name: "reversed range", utterance: "buy from 6 to 3 units of soap", kind: QuantityRange, min: 3, max: 6, unit: "unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Extract(tt.utterance, english).Extracted.Quantity
			require.NotNil(t, q)
			assert.Equal(t, tt.kind, q.Kind)
			assert.Equal(t, tt.unit, q.Unit)
			if tt.kind == QuantityRange {
				require.NotNil(t, q.Min)
				require.NotNil(t, q.Max)
				assert.Equal(t, tt.min, *q.Min)
				assert.Equal(t, tt.max, *q.Max)
				assert.Nil(t, q.Value)
				return
			}
			require.NotNil(t, q.Value)
			assert.Equal(t, tt.value, *q.Value)
		})
	}
}

func TestExtractProductName(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"buy 3 pieces of bread", "bread"},
		{"I want to buy Basmati Rice please", "Basmati Rice"},
		{"order some sugar for tonight", "sugar"},
		{"get 2 packets of biscuits and pay by upi", "biscuits"},
		{"I want to place an order for rice", "rice"},
		{"order of 2 kg atta", "atta"},
	}
	for _, tt := range tests {
		p := Extract(tt.utterance, english).Extracted.Product
		require.NotNil(t, p, tt.utterance)
		assert.Equal(t, tt.want, p.Name, tt.utterance)
	}
}

func TestExtractProductFilters(t *testing.T) {
	p := Extract("buy toor dal from category pulses under price of rs 150", english).Extracted.Product
	require.NotNil(t, p)
	assert.Equal(t, "toor dal", p.Name)
	assert.Equal(t, "pulses", p.Category)
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 150.0, *p.MaxPrice)

	p = Extract("show me something in the dairy section below 80 rupees", english).Extracted.Product
	require.NotNil(t, p)
	assert.Empty(t, p.Name)
	assert.Equal(t, "dairy", p.Category)
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 80.0, *p.MaxPrice)
}

func TestExtractDelivery(t *testing.T) {
	d := Extract("ship it to Flat 4B, Lake View by friday please", english).Extracted.Delivery
	require.NotNil(t, d)
	assert.Equal(t, "Flat 4B, Lake View", d.Address)
	assert.Equal(t, "friday", d.Time)

	d = Extract("deliver by 6 pm to Anna Nagar", english).Extracted.Delivery
	require.NotNil(t, d)
	assert.Equal(t, "Anna Nagar", d.Address)
	assert.Equal(t, "6 pm", d.Time)

	d = Extract("delivery instructions: leave it with the guard", english).Extracted.Delivery
	require.NotNil(t, d)
	assert.Empty(t, d.Address)
	assert.Equal(t, "leave it with the guard", d.Instructions)
}

func TestExtractDeliveryClockTimeAfterAt(t *testing.T) {
	tests := []struct {
		utterance string
		address   string
		time      string
	}{
		{"deliver at 5 pm", "", "5 pm"},
		{"send to my home at 5 pm", "my home", "5 pm"},
		{"deliver at 10:30 am to Anna Nagar", "Anna Nagar", "10:30 am"},
		{"deliver at 12 MG Road by noon", "12 MG Road", "noon"},
		{"deliver to Lake View by tomorrow at 7 pm", "Lake View", "tomorrow at 7 pm"},
		{"deliver at the office next to the station", "the office next to the station", ""},
	}
	for _, tt := range tests {
		d := Extract(tt.utterance, english).Extracted.Delivery
		require.NotNil(t, d, tt.utterance)
		assert.Equal(t, tt.address, d.Address, tt.utterance)
		assert.Equal(t, tt.time, d.Time, tt.utterance)
	}
}

func TestExtractPayment(t *testing.T) {
	tests := []struct {
		utterance string
		method    string
		split     int
	}{
		{"pay by cash", "cash_on_delivery", 0},
		{"payment using UPI", "upi", 0},
		{"pay with credit card thanks", "card", 0},
		{"pay via net banking", "net banking", 0},
		{"split the bill into 3 parts", "", 3},
	}
	for _, tt := range tests {
		p := Extract(tt.utterance, english).Extracted.Payment
		require.NotNil(t, p, tt.utterance)
		assert.Equal(t, tt.method, p.Method, tt.utterance)
		assert.Equal(t, tt.split, p.SplitCount, tt.utterance)
	}
}

func TestExtractWholeUtteranceMatches(t *testing.T) {
	assert.Equal(t, ConfirmYes, Extract("Yes!", english).Confirmation)
	assert.Equal(t, ConfirmNo, Extract("nope", english).Confirmation)
	assert.Equal(t, ConfirmMaybe, Extract("not sure", english).Confirmation)
	assert.Equal(t, ConfirmYes, Extract("हाँ", Locale{Language: "hindi"}).Confirmation)
	assert.Equal(t, ConfirmNo, Extract("नहीं", Locale{Language: "hindi"}).Confirmation)

	assert.Equal(t, GeneralHelp, Extract("help", english).General)
	assert.Equal(t, GeneralCancel, Extract("  Cancel. ", english).General)
	assert.Equal(t, GeneralRepeat, Extract("say again", english).General)

	// Only whole utterances count.
	assert.Empty(t, Extract("yes deliver it to 5 Park Street", english).Confirmation)
	assert.Empty(t, Extract("I need help with my order", english).General)
}

func TestExtractNothing(t *testing.T) {
	slots := Extract("the weather is nice", english)
	assert.True(t, slots.Extracted.IsEmpty())
	assert.Empty(t, slots.General)
	assert.Empty(t, slots.Confirmation)

	assert.True(t, Extract("", english).Extracted.IsEmpty())
}

func TestExtractIsDeterministic(t *testing.T) {
	const utterance = "order around 3 kg tomatoes delivered to 7 Hill Road by noon pay by card"
	first := Extract(utterance, english)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(utterance, english))
	}
}

func TestFoldCaseKeepsOffsets(t *testing.T) {
	for _, s := range []string{"Order 2 KG Rice", "हाँ ठीक है", "İstanbul Çay"} {
		assert.Len(t, foldCase(s), len(s))
	}
}
