package nlp

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	msgHelp          = "help"
	msgCancel        = "cancel"
	msgRepeatEmpty   = "repeat_empty"
	msgRepeat        = "repeat"
	msgYes           = "yes"
	msgNo            = "no"
	msgMaybe         = "maybe"
	msgOrderSummary  = "order_summary"
	msgProduct       = "product"
	msgClarification = "clarification"
	msgUnknown       = "unknown"
	msgApology       = "apology"
	msgConfirmPrompt = "confirm_prompt"
	msgConfirmed     = "confirmed"
	msgCancelled     = "cancelled"
	msgSynced        = "synced"
	msgQueued        = "queued"
	msgMissing       = "missing_details"
	msgNotFound      = "not_found"
)

// phrasebook is keyed by language, then message; "<message>.colloquial"
// overrides the standard phrasing for the colloquial dialect.
var phrasebook = map[string]map[string]string{
	"english": {
		msgHelp:                     "You can order products by saying what you need, how much, where to deliver and how you will pay. For example: order 2 kg of rice delivered to 12 MG Road, pay by cash.",
		msgHelp + ".colloquial":     "Just tell me what you want, how much, where to send it and how you'll pay.",
		msgCancel:                   "Okay, I have cancelled that. What would you like to do next?",
		msgCancel + ".colloquial":   "Done, cancelled. Anything else?",
		msgRepeatEmpty:              "There is nothing to repeat yet. What would you like to order?",
		msgRepeat:                   "So far I have: %s.",
		msgYes:                      "Great! Your order is confirmed.",
		msgYes + ".colloquial":      "Done! Order confirmed.",
		msgNo:                       "Okay, I have cleared that order. What would you like instead?",
		msgMaybe:                    "Take your time. Say yes to confirm or no to cancel.",
		msgOrderSummary:             "I will place an order for %s. Is that correct?",
		msgOrderSummary + ".colloquial": "Got it, %s. Shall I go ahead?",
		msgProduct:                  "You asked for %s. How much would you like?",
		msgClarification:            "Could you please tell me a little more about your order?",
		msgUnknown:                  "Sorry, I did not understand that. Could you please say it again?",
		msgUnknown + ".colloquial":  "Sorry, didn't get that. Say it again?",
		msgApology:                  "I apologize, but I had trouble processing that. Could you please try again?",
		msgConfirmPrompt:            "Please confirm your order: %s. Total amount: ₹%s. Say yes to confirm or no to cancel.",
		msgConfirmed:                "Order confirmed successfully. Your order number is %s. Thank you for shopping with us!",
		msgCancelled:                "Your order %s has been cancelled.",
		msgSynced:                   "%d orders synced successfully",
		msgQueued:                   "Your order has been saved and will be placed when you are back online.",
		msgMissing:                  "So far I have %s. Please tell me how much you need, where to deliver or how you will pay.",
		msgMissing + ".colloquial":  "Got %s. How much, where to send it, and how will you pay?",
		msgNotFound:                 "Sorry, I could not find %s. Could you name another product?",
	},
	"hindi": {
		msgHelp:          "आप बोलकर ऑर्डर कर सकते हैं: क्या चाहिए, कितना, कहाँ भेजना है और भुगतान कैसे करेंगे।",
		msgCancel:        "ठीक है, रद्द कर दिया। और क्या करना है?",
		msgYes:           "बढ़िया! आपका ऑर्डर पक्का हो गया।",
		msgNo:            "ठीक है, ऑर्डर हटा दिया। आपको क्या चाहिए?",
		msgMaybe:         "कोई बात नहीं। पक्का करने के लिए हाँ बोलिए, रद्द करने के लिए नहीं।",
		msgOrderSummary:  "मैं %s का ऑर्डर कर रहा हूँ। क्या यह सही है?",
		msgClarification: "कृपया अपने ऑर्डर के बारे में थोड़ा और बताइए।",
		msgUnknown:       "माफ़ कीजिए, मैं समझ नहीं पाया। कृपया फिर से बोलिए।",
		msgApology:       "माफ़ कीजिए, कुछ गड़बड़ हो गई। कृपया फिर से कोशिश करें।",
		msgConfirmPrompt: "कृपया अपना ऑर्डर पक्का करें: %s। कुल राशि: ₹%s। पक्का करने के लिए हाँ बोलिए या रद्द करने के लिए नहीं।",
		msgConfirmed:     "ऑर्डर पक्का हो गया। आपका ऑर्डर नंबर %s है। धन्यवाद!",
		msgNotFound:      "माफ़ कीजिए, %s नहीं मिला। कोई और सामान बताइए।",
	},
}

func phrase(locale Locale, key string) string {
	for _, lang := range []string{strings.ToLower(locale.Language), fallbackLanguage} {
		book, ok := phrasebook[lang]
		if !ok {
			continue
		}
		if locale.Dialect == "colloquial" {
			if p, ok := book[key+".colloquial"]; ok {
				return p
			}
		}
		if p, ok := book[key]; ok {
			return p
		}
	}
	return ""
}

// GenerateResponseText renders the spoken reply for a processed command.
func GenerateResponseText(cmd ProcessedCommand, dialogue DialogueContext, locale Locale) string {
	switch cmd.Type {
	case CommandGeneral:
		switch cmd.GeneralType {
		case GeneralHelp:
			return phrase(locale, msgHelp)
		case GeneralCancel:
			return phrase(locale, msgCancel)
		case GeneralRepeat:
			summary := SummarizeOrder(dialogue.Extracted())
			if summary == "" {
				return phrase(locale, msgRepeatEmpty)
			}
			return fmt.Sprintf(phrase(locale, msgRepeat), summary)
		}
	case CommandConfirmation:
		switch cmd.ConfirmationType {
		case ConfirmYes:
			return phrase(locale, msgYes)
		case ConfirmNo:
			return phrase(locale, msgNo)
		case ConfirmMaybe:
			return phrase(locale, msgMaybe)
		}
	case CommandOrder:
		return fmt.Sprintf(phrase(locale, msgOrderSummary), SummarizeOrder(dialogue.Extracted()))
	case CommandProduct:
		if cmd.Extracted.Product != nil && cmd.Extracted.Product.Name != "" {
			return fmt.Sprintf(phrase(locale, msgProduct), cmd.Extracted.Product.Name)
		}
	case CommandClarification:
		return phrase(locale, msgClarification)
	}
	return phrase(locale, msgUnknown)
}

func ApologyText(locale Locale) string {
	return phrase(locale, msgApology)
}

func ConfirmationPrompt(locale Locale, items string, total float64) string {
	return fmt.Sprintf(phrase(locale, msgConfirmPrompt), items, FormatAmount(total))
}

func OrderConfirmedText(locale Locale, orderNumber string) string {
	return fmt.Sprintf(phrase(locale, msgConfirmed), orderNumber)
}

func OrderCancelledText(locale Locale, orderNumber string) string {
	return fmt.Sprintf(phrase(locale, msgCancelled), orderNumber)
}

func SyncedText(n int) string {
	return fmt.Sprintf(phrase(Locale{Language: fallbackLanguage}, msgSynced), n)
}

func QueuedText(locale Locale) string {
	return phrase(locale, msgQueued)
}

// MissingDetailsText asks for the slots still needed before an order can be
// placed. An empty summary falls back to the generic clarification prompt.
func MissingDetailsText(locale Locale, summary string) string {
	if summary == "" {
		return phrase(locale, msgClarification)
	}
	return fmt.Sprintf(phrase(locale, msgMissing), summary)
}

func ItemNotFoundText(locale Locale, name string) string {
	return fmt.Sprintf(phrase(locale, msgNotFound), name)
}

// SummarizeOrder describes the extracted slots in one English clause list.
func SummarizeOrder(e Extracted) string {
	var parts []string

	item := ""
	if e.Quantity != nil {
		item = describeQuantity(e.Quantity)
	}
	if e.Product != nil && e.Product.Name != "" {
		if item != "" {
			item += " of "
		}
		item += e.Product.Name
	}
	if item != "" {
		parts = append(parts, item)
	}

	if e.Delivery != nil {
		if e.Delivery.Address != "" {
			parts = append(parts, "delivered to "+e.Delivery.Address)
		}
		if e.Delivery.Time != "" {
			parts = append(parts, "by "+e.Delivery.Time)
		}
	}
	if e.Payment != nil && e.Payment.Method != "" {
		parts = append(parts, "paying by "+strings.ReplaceAll(e.Payment.Method, "_", " "))
	}
	return strings.Join(parts, ", ")
}

func describeQuantity(q *QuantitySlot) string {
	unit := q.Unit
	if unit != "" {
		unit = " " + unit
	}
	switch q.Kind {
	case QuantityRange:
		if q.Min != nil && q.Max != nil {
			return "between " + FormatAmount(*q.Min) + " and " + FormatAmount(*q.Max) + unit
		}
	case QuantityApproximate:
		if q.Value != nil {
			return "about " + FormatAmount(*q.Value) + unit
		}
	default:
		if q.Value != nil {
			return FormatAmount(*q.Value) + unit
		}
	}
	return ""
}

// FormatAmount drops a zero fractional part: 2 -> "2", 2.5 -> "2.5".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
