package nlp

// DialogueContext accumulates slots across the turns of one conversation.
type DialogueContext struct {
	Product         *ProductSlot  `json:"product,omitempty"`
	Quantity        *QuantitySlot `json:"quantity,omitempty"`
	Delivery        *DeliverySlot `json:"delivery,omitempty"`
	Payment         *PaymentSlot  `json:"payment,omitempty"`
	PreviousCommand string        `json:"previousCommand,omitempty"`
}

func (d DialogueContext) IsEmpty() bool {
	return d == DialogueContext{}
}

// Merge returns the context after one turn. A negative confirmation or a
// general cancel yields the empty context; otherwise every slot present in
// the command replaces the stored one whole. The input is never modified.
func Merge(dialogue DialogueContext, cmd ProcessedCommand, utterance string) DialogueContext {
	if cmd.ResetsContext() {
		return DialogueContext{}
	}

	next := DialogueContext{
		Product:         cloneProduct(dialogue.Product),
		Quantity:        cloneQuantity(dialogue.Quantity),
		Delivery:        cloneDelivery(dialogue.Delivery),
		Payment:         clonePayment(dialogue.Payment),
		PreviousCommand: utterance,
	}

	e := cmd.Extracted
	if e.Product != nil {
		next.Product = cloneProduct(e.Product)
	}
	if e.Quantity != nil {
		next.Quantity = cloneQuantity(e.Quantity)
	}
	if e.Delivery != nil {
		next.Delivery = cloneDelivery(e.Delivery)
	}
	if e.Payment != nil {
		next.Payment = clonePayment(e.Payment)
	}
	return next
}

func (d DialogueContext) Extracted() Extracted {
	return Extracted{
		Product:  cloneProduct(d.Product),
		Quantity: cloneQuantity(d.Quantity),
		Delivery: cloneDelivery(d.Delivery),
		Payment:  clonePayment(d.Payment),
	}
}

// Command scores the accumulated slots as if they had arrived in one utterance.
func (d DialogueContext) Command() ProcessedCommand {
	return scoreExtracted(d.Extracted())
}

func cloneProduct(p *ProductSlot) *ProductSlot {
	if p == nil {
		return nil
	}
	c := *p
	if p.MaxPrice != nil {
		v := *p.MaxPrice
		c.MaxPrice = &v
	}
	return &c
}

func cloneQuantity(q *QuantitySlot) *QuantitySlot {
	if q == nil {
		return nil
	}
	c := *q
	c.Value = cloneFloat(q.Value)
	c.Min = cloneFloat(q.Min)
	c.Max = cloneFloat(q.Max)
	return &c
}

func cloneDelivery(d *DeliverySlot) *DeliverySlot {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func clonePayment(p *PaymentSlot) *PaymentSlot {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
